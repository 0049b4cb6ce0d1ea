// event.go defines the log event consumed by the router.

package logwatch

// LogEventKind is the event kind under which log events are dispatched.
const LogEventKind = "log.item_logged"

// ExceptionKey is the well-known context key holding an error value.
// When present on a captured event, only the error is forwarded.
const ExceptionKey = "exception"

// LogEvent is a structured log record produced by the host application.
// It is treated as immutable once handed to the router.
type LogEvent struct {
	// Severity is the ordinal urgency of the event.
	Severity Severity

	// Message is the human-readable log message. May be empty.
	Message string

	// Context carries arbitrary structured data. It may contain an error
	// under ExceptionKey.
	Context map[string]any
}

// Kind implements events.Event.
func (e LogEvent) Kind() string {
	return LogEventKind
}

// Exception returns the error stored under ExceptionKey, or nil.
// Values under the key that are not errors are ignored.
func (e LogEvent) Exception() error {
	err, _ := e.Context[ExceptionKey].(error)
	return err
}

// cloneContext returns a shallow copy of the context map.
// A nil or empty map yields an empty, non-nil map.
func cloneContext(ctx map[string]any) map[string]any {
	out := make(map[string]any, len(ctx))
	for k, v := range ctx {
		out[k] = v
	}
	return out
}
