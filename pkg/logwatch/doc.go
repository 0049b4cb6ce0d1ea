// Package logwatch forwards structured log events to an error-monitoring
// backend such as Sentry.
//
// Each log event is either captured as a first-class backend event, or
// recorded as a breadcrumb that the backend attaches to later captures in
// the same session. A pluggable CaptureGate makes the decision.
//
// # Core Components
//
//   - LogEvent: a log record with a Severity, a message and a context map
//   - Severity: the ordered scale debug < info < notice < warning < error < critical < alert < emergency
//   - CaptureGate: capture vs breadcrumb policy (DefaultGate captures warning and above)
//   - Provider: lazily builds the Client from a descriptor such as a DSN
//   - Router: the listener tying it all together
//   - Client: the backend (sentry, cxdb, stderr, async, multi, noop)
//
// # Quick Start
//
//	router := logwatch.New(
//	    logwatch.StaticDescriptor(os.Getenv("SENTRY_DSN")),
//	    sentry.Factory(sentry.WithEnvironment("production")),
//	)
//	dispatcher := events.NewDispatcher()
//	logwatch.Register(dispatcher, router)
//	defer router.Flush(ctx)
//
//	dispatcher.Dispatch(logwatch.LogEvent{
//	    Severity: logwatch.SeverityError,
//	    Message:  "checkout failed",
//	    Context:  map[string]any{"user_id": 42},
//	})
//
// # Design Principles
//
//   - Zero blast radius: Router.Handle never returns an error, never panics
//     and never logs. Backend failures are silently discarded.
//   - Lazy, one-shot initialization: the descriptor is read once, on the
//     first event. An empty descriptor or a failing client disables the
//     router for its lifetime; there is no retry. Events that arrive while
//     the client is being built are queued and delivered once it is ready.
//   - Fixed mappings: severities map to backend levels through tables that
//     cannot change at runtime; unknown values map to info.
package logwatch
