// Package logrushook feeds logrus entries into a log event listener.
package logrushook

import (
	"github.com/sirupsen/logrus"

	"github.com/strongdm/ai-cxdb-logwatch/pkg/logwatch"
	"github.com/strongdm/ai-cxdb-logwatch/pkg/logwatch/events"
)

// Hook implements logrus.Hook.
type Hook struct {
	listener events.Listener
	levels   []logrus.Level
}

var _ logrus.Hook = (*Hook)(nil)

// New creates a hook that forwards entries at the given levels to listener.
// With no levels, every level is forwarded.
func New(listener events.Listener, levels ...logrus.Level) *Hook {
	if len(levels) == 0 {
		levels = logrus.AllLevels
	}
	return &Hook{listener: listener, levels: levels}
}

// Levels reports which levels logrus should fire the hook for.
func (h *Hook) Levels() []logrus.Level {
	return h.levels
}

// Fire forwards the entry. It never returns an error, so logrus never
// reports a failure of the monitoring path on its own output.
func (h *Hook) Fire(entry *logrus.Entry) error {
	if h.listener == nil || entry == nil {
		return nil
	}

	ctx := make(map[string]any, len(entry.Data))
	for k, v := range entry.Data {
		ctx[k] = v
	}
	// WithError stores the error under logrus.ErrorKey.
	if err, ok := ctx[logrus.ErrorKey].(error); ok {
		delete(ctx, logrus.ErrorKey)
		ctx[logwatch.ExceptionKey] = err
	}

	h.listener.Handle(logwatch.LogEvent{
		Severity: Severity(entry.Level),
		Message:  entry.Message,
		Context:  ctx,
	})
	return nil
}

// Severity maps a logrus level onto the logwatch scale.
func Severity(level logrus.Level) logwatch.Severity {
	switch level {
	case logrus.TraceLevel, logrus.DebugLevel:
		return logwatch.SeverityDebug
	case logrus.WarnLevel:
		return logwatch.SeverityWarning
	case logrus.ErrorLevel:
		return logwatch.SeverityError
	case logrus.FatalLevel:
		return logwatch.SeverityCritical
	case logrus.PanicLevel:
		return logwatch.SeverityAlert
	default:
		return logwatch.SeverityInfo
	}
}
