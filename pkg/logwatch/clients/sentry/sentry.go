// Package sentry provides a client that reports to Sentry through a sentry-go Hub.
package sentry

import (
	"context"
	"errors"
	"fmt"
	"time"

	sentrygo "github.com/getsentry/sentry-go"

	"github.com/strongdm/ai-cxdb-logwatch/pkg/logwatch"
)

// Hub is the subset of *sentrygo.Hub used by the client.
type Hub interface {
	CaptureException(exception error) *sentrygo.EventID
	CaptureEvent(event *sentrygo.Event) *sentrygo.EventID
	AddBreadcrumb(breadcrumb *sentrygo.Breadcrumb, hint *sentrygo.BreadcrumbHint)
	Flush(timeout time.Duration) bool
}

// Option configures the Sentry client and factory.
type Option func(*sentryConfig)

type sentryConfig struct {
	environment    string
	release        string
	serverName     string
	debug          bool
	sampleRate     float64
	maxBreadcrumbs int
	flushTimeout   time.Duration
}

// WithEnvironment sets the environment reported with every event.
func WithEnvironment(env string) Option {
	return func(c *sentryConfig) {
		c.environment = env
	}
}

// WithRelease sets the release reported with every event.
func WithRelease(release string) Option {
	return func(c *sentryConfig) {
		c.release = release
	}
}

// WithServerName overrides the server name reported with every event.
func WithServerName(name string) Option {
	return func(c *sentryConfig) {
		c.serverName = name
	}
}

// WithDebug enables sentry-go's internal debug output.
func WithDebug(debug bool) Option {
	return func(c *sentryConfig) {
		c.debug = debug
	}
}

// WithSampleRate sets the event sample rate in (0, 1] (default: 1).
func WithSampleRate(rate float64) Option {
	return func(c *sentryConfig) {
		if rate > 0 && rate <= 1 {
			c.sampleRate = rate
		}
	}
}

// WithMaxBreadcrumbs sets how many breadcrumbs the hub retains (default: 100).
func WithMaxBreadcrumbs(n int) Option {
	return func(c *sentryConfig) {
		if n > 0 {
			c.maxBreadcrumbs = n
		}
	}
}

// WithFlushTimeout sets the flush timeout used when the context has no deadline (default: 2s).
func WithFlushTimeout(d time.Duration) Option {
	return func(c *sentryConfig) {
		if d > 0 {
			c.flushTimeout = d
		}
	}
}

func newConfig(opts []Option) *sentryConfig {
	cfg := &sentryConfig{
		sampleRate:     1.0,
		maxBreadcrumbs: 100,
		flushTimeout:   2 * time.Second,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Factory returns a ClientFactory that builds a dedicated Sentry client and
// hub for a DSN. The global sentry-go hub is left untouched.
func Factory(opts ...Option) logwatch.ClientFactory {
	return func(dsn string) (logwatch.Client, error) {
		cfg := newConfig(opts)

		client, err := sentrygo.NewClient(sentrygo.ClientOptions{
			Dsn:            dsn,
			Environment:    cfg.environment,
			Release:        cfg.release,
			ServerName:     cfg.serverName,
			Debug:          cfg.debug,
			SampleRate:     cfg.sampleRate,
			MaxBreadcrumbs: cfg.maxBreadcrumbs,
		})
		if err != nil {
			return nil, fmt.Errorf("create sentry client: %w", err)
		}

		hub := sentrygo.NewHub(client, sentrygo.NewScope())
		return NewClient(hub, opts...), nil
	}
}

// sentryClient forwards records to a Sentry hub.
type sentryClient struct {
	hub          Hub
	flushTimeout time.Duration
}

// NewClient wraps a hub as a logwatch client.
func NewClient(hub Hub, opts ...Option) logwatch.Client {
	cfg := newConfig(opts)
	return &sentryClient{
		hub:          hub,
		flushTimeout: cfg.flushTimeout,
	}
}

// CaptureException reports err through the hub.
func (c *sentryClient) CaptureException(err error) (logwatch.EventID, error) {
	return eventID(c.hub.CaptureException(err)), nil
}

// CaptureEvent reports a message event through the hub.
func (c *sentryClient) CaptureEvent(record logwatch.CaptureRecord) (logwatch.EventID, error) {
	event := sentrygo.NewEvent()
	event.Message = record.Message
	event.Level = toSentryLevel(record.Level)
	if len(record.Extra) > 0 {
		event.Extra = record.Extra
	}
	return eventID(c.hub.CaptureEvent(event)), nil
}

// AddBreadcrumb records a breadcrumb on the hub's scope.
func (c *sentryClient) AddBreadcrumb(record logwatch.BreadcrumbRecord) error {
	c.hub.AddBreadcrumb(&sentrygo.Breadcrumb{
		Type:      "default",
		Category:  record.Category,
		Message:   record.Message,
		Data:      record.Data,
		Level:     toSentryBreadcrumbLevel(record.Level),
		Timestamp: time.Now(),
	}, nil)
	return nil
}

// Flush waits for queued events, bounded by the context deadline or the
// configured flush timeout.
func (c *sentryClient) Flush(ctx context.Context) error {
	timeout := c.flushTimeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
	}
	if timeout <= 0 {
		return context.DeadlineExceeded
	}
	if !c.hub.Flush(timeout) {
		return errors.New("sentry: flush timed out")
	}
	return nil
}

// Close flushes pending events.
func (c *sentryClient) Close() error {
	if !c.hub.Flush(c.flushTimeout) {
		return errors.New("sentry: flush timed out")
	}
	return nil
}

func eventID(id *sentrygo.EventID) logwatch.EventID {
	if id == nil {
		return ""
	}
	return logwatch.EventID(*id)
}

func toSentryLevel(l logwatch.Level) sentrygo.Level {
	switch l {
	case logwatch.LevelDebug:
		return sentrygo.LevelDebug
	case logwatch.LevelWarning:
		return sentrygo.LevelWarning
	case logwatch.LevelError:
		return sentrygo.LevelError
	case logwatch.LevelFatal:
		return sentrygo.LevelFatal
	default:
		return sentrygo.LevelInfo
	}
}

func toSentryBreadcrumbLevel(l logwatch.BreadcrumbLevel) sentrygo.Level {
	switch l {
	case logwatch.BreadcrumbDebug:
		return sentrygo.LevelDebug
	case logwatch.BreadcrumbWarning:
		return sentrygo.LevelWarning
	case logwatch.BreadcrumbError:
		return sentrygo.LevelError
	case logwatch.BreadcrumbFatal:
		return sentrygo.LevelFatal
	default:
		return sentrygo.LevelInfo
	}
}
