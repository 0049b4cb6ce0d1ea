// Package config loads logwatch settings from the environment.
//
// Every setting is read from a LOGWATCH_ prefixed variable. A double
// underscore separates sections, so LOGWATCH_SENTRY__DSN sets sentry.dsn
// and LOGWATCH_ROUTER__RATE_LIMIT sets router.rate_limit.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"

	"github.com/strongdm/ai-cxdb-logwatch/pkg/logwatch"
)

const envPrefix = "LOGWATCH_"

// Backends accepted by Config.Backend.
const (
	BackendSentry = "sentry"
	BackendCXDB   = "cxdb"
	BackendStderr = "stderr"
	BackendNoop   = "noop"
)

type Config struct {
	Backend string       `koanf:"backend" validate:"required,oneof=sentry cxdb stderr noop"`
	Sentry  SentryConfig `koanf:"sentry"`
	CXDB    CXDBConfig   `koanf:"cxdb"`
	Router  RouterConfig `koanf:"router"`
	Log     LogConfig    `koanf:"log"`
}

type SentryConfig struct {
	DSN            string        `koanf:"dsn"`
	Environment    string        `koanf:"environment"`
	Release        string        `koanf:"release"`
	Debug          bool          `koanf:"debug"`
	SampleRate     float64       `koanf:"sample_rate" validate:"gt=0,lte=1"`
	MaxBreadcrumbs int           `koanf:"max_breadcrumbs" validate:"gte=1,lte=100"`
	FlushTimeout   time.Duration `koanf:"flush_timeout" validate:"gt=0"`
}

type CXDBConfig struct {
	Addr      string `koanf:"addr"`
	ClientTag string `koanf:"client_tag" validate:"required"`
	Labels    string `koanf:"labels"`
}

// LabelList splits the comma separated labels.
func (c CXDBConfig) LabelList() []string {
	var labels []string
	for _, l := range strings.Split(c.Labels, ",") {
		if l = strings.TrimSpace(l); l != "" {
			labels = append(labels, l)
		}
	}
	return labels
}

type RouterConfig struct {
	CaptureThreshold string  `koanf:"capture_threshold" validate:"required"`
	RateLimit        float64 `koanf:"rate_limit" validate:"gte=0"`
	Burst            int     `koanf:"burst" validate:"gte=0"`
	Scrub            bool    `koanf:"scrub"`
	Async            bool    `koanf:"async"`
	Echo             bool    `koanf:"echo"`
	QueueSize        int     `koanf:"queue_size" validate:"gt=0"`
}

// Threshold returns the parsed capture threshold.
func (c RouterConfig) Threshold() logwatch.Severity {
	s, _ := logwatch.ParseSeverity(c.CaptureThreshold)
	return s
}

type LogConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error fatal panic disabled"`
	Format string `koanf:"format" validate:"oneof=json console"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Backend: BackendSentry,
		Sentry: SentryConfig{
			SampleRate:     1.0,
			MaxBreadcrumbs: 100,
			FlushTimeout:   2 * time.Second,
		},
		CXDB: CXDBConfig{
			Addr:      "localhost:9009",
			ClientTag: "logwatch",
			Labels:    "error,logwatch",
		},
		Router: RouterConfig{
			CaptureThreshold: "warning",
			QueueSize:        1000,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads configuration from the environment. When envFile is set, it is
// loaded first without overriding variables that are already present.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("load env file %s: %w", envFile, err)
		}
	}

	k := koanf.New(".")
	err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, envPrefix))
		return strings.ReplaceAll(key, "__", ".")
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("load env variables: %w", err)
	}

	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.Sentry.DSN == "" {
		cfg.Sentry.DSN = os.Getenv("SENTRY_DSN")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field constraints and the settings each backend needs.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if _, ok := logwatch.ParseSeverity(c.Router.CaptureThreshold); !ok {
		return fmt.Errorf("invalid config: unknown capture threshold %q", c.Router.CaptureThreshold)
	}
	if c.Backend == BackendCXDB && c.CXDB.Addr == "" {
		return errors.New("invalid config: cxdb backend requires cxdb.addr")
	}
	return nil
}

// Descriptor returns the string handed to the client factory of the
// selected backend. An empty descriptor leaves reporting disabled.
func (c *Config) Descriptor() string {
	switch c.Backend {
	case BackendSentry:
		return c.Sentry.DSN
	case BackendCXDB:
		return c.CXDB.Addr
	default:
		return c.Backend
	}
}
