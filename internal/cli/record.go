package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/strongdm/ai-cxdb-logwatch/pkg/logwatch"
)

// Keys recognised in a JSON log record, in lookup order.
var (
	severityKeys  = []string{"severity", "level"}
	messageKeys   = []string{"message", "msg"}
	exceptionKeys = []string{logwatch.ExceptionKey, "error", "err"}
)

// parseRecord converts one JSON log line into a LogEvent. Unknown or missing
// severities fall back to info; remaining fields become context.
func parseRecord(line []byte) (logwatch.LogEvent, error) {
	var fields map[string]any
	if err := json.Unmarshal(line, &fields); err != nil {
		return logwatch.LogEvent{}, fmt.Errorf("decode record: %w", err)
	}
	if fields == nil {
		return logwatch.LogEvent{}, errors.New("decode record: not an object")
	}

	event := logwatch.LogEvent{Severity: logwatch.SeverityInfo}
	if v, ok := take(fields, severityKeys); ok {
		event.Severity = severityOf(v)
	}
	if v, ok := take(fields, messageKeys); ok {
		event.Message = fmt.Sprint(v)
	}
	if v, ok := take(fields, exceptionKeys); ok {
		// Strings become errors; structured values stay as they are and are
		// reported as a message capture with full context.
		if s, isString := v.(string); isString {
			fields[logwatch.ExceptionKey] = errors.New(s)
		} else {
			fields[logwatch.ExceptionKey] = v
		}
	}
	event.Context = fields
	return event, nil
}

// take removes and returns the first present key.
func take(fields map[string]any, keys []string) (any, bool) {
	for _, k := range keys {
		if v, ok := fields[k]; ok {
			delete(fields, k)
			return v, true
		}
	}
	return nil, false
}

func severityOf(v any) logwatch.Severity {
	switch val := v.(type) {
	case string:
		s, _ := logwatch.ParseSeverity(val)
		return s
	case float64:
		if s := logwatch.Severity(int(val)); s.Valid() {
			return s
		}
	}
	return logwatch.SeverityInfo
}

// parseFields turns k=v pairs into a context map.
func parseFields(pairs []string) (map[string]any, error) {
	ctx := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		k, v, ok := strings.Cut(pair, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid field %q, expected key=value", pair)
		}
		ctx[k] = v
	}
	return ctx, nil
}
