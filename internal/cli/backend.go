package cli

import (
	"fmt"

	"github.com/rs/zerolog"
	cxdbclient "github.com/strongdm/ai-cxdb/clients/go"

	"github.com/strongdm/ai-cxdb-logwatch/internal/config"
	"github.com/strongdm/ai-cxdb-logwatch/pkg/logwatch"
	"github.com/strongdm/ai-cxdb-logwatch/pkg/logwatch/clients/async"
	"github.com/strongdm/ai-cxdb-logwatch/pkg/logwatch/clients/cxdb"
	"github.com/strongdm/ai-cxdb-logwatch/pkg/logwatch/clients/multi"
	"github.com/strongdm/ai-cxdb-logwatch/pkg/logwatch/clients/noop"
	"github.com/strongdm/ai-cxdb-logwatch/pkg/logwatch/clients/sentry"
	"github.com/strongdm/ai-cxdb-logwatch/pkg/logwatch/clients/stderr"
)

// BuildFactory returns the client factory for the configured backend.
// router.echo adds a stderr copy and router.async puts a bounded queue in front.
func BuildFactory(cfg *config.Config, log zerolog.Logger) logwatch.ClientFactory {
	var factory logwatch.ClientFactory
	switch cfg.Backend {
	case config.BackendSentry:
		factory = sentry.Factory(
			sentry.WithEnvironment(cfg.Sentry.Environment),
			sentry.WithRelease(cfg.Sentry.Release),
			sentry.WithDebug(cfg.Sentry.Debug),
			sentry.WithSampleRate(cfg.Sentry.SampleRate),
			sentry.WithMaxBreadcrumbs(cfg.Sentry.MaxBreadcrumbs),
			sentry.WithFlushTimeout(cfg.Sentry.FlushTimeout),
		)
	case config.BackendCXDB:
		factory = cxdbFactory(cfg.CXDB)
	case config.BackendStderr:
		var opts []stderr.Option
		if log.GetLevel() <= zerolog.DebugLevel {
			opts = append(opts, stderr.WithVerbose())
		}
		factory = stderr.Factory(opts...)
	default:
		factory = noop.Factory()
	}

	if cfg.Router.Echo && cfg.Backend != config.BackendStderr {
		factory = echoFactory(factory)
	}

	if !cfg.Router.Async {
		return factory
	}
	return async.Factory(factory,
		async.WithQueueSize(cfg.Router.QueueSize),
		async.WithOnDropped(func(count int) {
			log.Warn().Int("dropped", count).Msg("monitoring queue full")
		}),
	)
}

// echoFactory also prints every record to stderr.
func echoFactory(factory logwatch.ClientFactory) logwatch.ClientFactory {
	return func(descriptor string) (logwatch.Client, error) {
		primary, err := factory(descriptor)
		if err != nil || primary == nil {
			return primary, err
		}
		return multi.NewClient(primary, stderr.NewClient(stderr.WithVerbose())), nil
	}
}

func cxdbFactory(cfg config.CXDBConfig) logwatch.ClientFactory {
	return func(addr string) (logwatch.Client, error) {
		conn, err := cxdbclient.Dial(addr, cxdbclient.WithClientTag(cfg.ClientTag))
		if err != nil {
			return nil, fmt.Errorf("dial cxdb %s: %w", addr, err)
		}
		return cxdb.NewClient(conn,
			cxdb.WithClientTag(cfg.ClientTag),
			cxdb.WithLabels(cfg.LabelList()),
		), nil
	}
}

// BuildRouter wires the gate, scrubbing and provider for cfg around factory.
func BuildRouter(cfg *config.Config, factory logwatch.ClientFactory) *logwatch.Router {
	var gate logwatch.CaptureGate = logwatch.ThresholdGate{Min: cfg.Router.Threshold()}
	if cfg.Router.RateLimit > 0 {
		gate = logwatch.NewRateLimitGate(gate, cfg.Router.RateLimit, cfg.Router.Burst)
	}

	opts := []logwatch.RouterOption{logwatch.WithGate(gate)}
	if cfg.Router.Scrub {
		opts = append(opts, logwatch.WithDefaultScrubbing())
	}
	return logwatch.New(logwatch.StaticDescriptor(cfg.Descriptor()), factory, opts...)
}
