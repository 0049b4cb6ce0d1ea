// Package zerologhook feeds zerolog output into a log event listener,
// typically a logwatch.Router or a dispatcher.
package zerologhook

import (
	"github.com/rs/zerolog"

	"github.com/strongdm/ai-cxdb-logwatch/pkg/logwatch"
	"github.com/strongdm/ai-cxdb-logwatch/pkg/logwatch/events"
)

// Option configures the hook.
type Option func(*Hook)

// WithFields attaches static context to every event the hook emits.
func WithFields(fields map[string]any) Option {
	return func(h *Hook) {
		h.fields = fields
	}
}

// WithMinLevel skips zerolog events below level.
func WithMinLevel(level zerolog.Level) Option {
	return func(h *Hook) {
		h.minLevel = level
	}
}

// Hook implements zerolog.Hook.
//
// zerolog does not expose the fields already added to an event, so the
// emitted context carries only the static fields and the zerolog level.
type Hook struct {
	listener events.Listener
	fields   map[string]any
	minLevel zerolog.Level
}

var _ zerolog.Hook = (*Hook)(nil)

// New creates a hook that forwards to listener.
func New(listener events.Listener, opts ...Option) *Hook {
	h := &Hook{
		listener: listener,
		minLevel: zerolog.TraceLevel,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Run is called by zerolog for every enabled event.
func (h *Hook) Run(e *zerolog.Event, level zerolog.Level, msg string) {
	if h == nil || h.listener == nil || level == zerolog.Disabled {
		return
	}
	if level != zerolog.NoLevel && level < h.minLevel {
		return
	}

	ctx := make(map[string]any, len(h.fields)+1)
	for k, v := range h.fields {
		ctx[k] = v
	}
	ctx["zerolog_level"] = level.String()

	h.listener.Handle(logwatch.LogEvent{
		Severity: Severity(level),
		Message:  msg,
		Context:  ctx,
	})
}

// Severity maps a zerolog level onto the logwatch scale.
func Severity(level zerolog.Level) logwatch.Severity {
	switch level {
	case zerolog.TraceLevel, zerolog.DebugLevel:
		return logwatch.SeverityDebug
	case zerolog.WarnLevel:
		return logwatch.SeverityWarning
	case zerolog.ErrorLevel:
		return logwatch.SeverityError
	case zerolog.FatalLevel:
		return logwatch.SeverityCritical
	case zerolog.PanicLevel:
		return logwatch.SeverityAlert
	default:
		return logwatch.SeverityInfo
	}
}
