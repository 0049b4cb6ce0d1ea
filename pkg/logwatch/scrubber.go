// scrubber.go implements sensitive data redaction for log messages and context.

package logwatch

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"unicode/utf8"
)

// ScrubberConfig controls scrubbing behavior.
type ScrubberConfig struct {
	// SensitiveKeys contains additional substrings marking a context key as sensitive.
	SensitiveKeys []string

	// MaxMessageSize is the maximum length for messages (default: 4096).
	MaxMessageSize int

	// MaxValueSize is the maximum length for string context values (default: 1024).
	MaxValueSize int

	// ScrubMessages enables pattern scrubbing of messages and string values (default: true).
	ScrubMessages bool
}

// DefaultScrubberConfig returns production-safe defaults.
func DefaultScrubberConfig() ScrubberConfig {
	return ScrubberConfig{
		MaxMessageSize: 4096,
		MaxValueSize:   1024,
		ScrubMessages:  true,
	}
}

// Compiled regex patterns for message scrubbing (compiled once at package init)
var messageScrubPatterns = []*regexp.Regexp{
	// API keys and tokens
	regexp.MustCompile(`(?i)(api[_-]?key|token)[=:\s]+['"]?[\w\-\.]+['"]?`),
	regexp.MustCompile(`(?i)(authorization|bearer)[=:\s]+['"]?[\w\-\.]+['"]?[\s]+['"]?[\w\-\.]+['"]?`),
	regexp.MustCompile(`(?i)sk-[a-zA-Z0-9_-]{20,}`),
	regexp.MustCompile(`(?i)gh[po]_[a-zA-Z0-9]{36}`),
	regexp.MustCompile(`(?i)xox[baprs]-[a-zA-Z0-9\-]{10,}`),
	regexp.MustCompile(`(?i)eyJ[a-zA-Z0-9_-]*\.eyJ[a-zA-Z0-9_-]*\.[a-zA-Z0-9_-]*`), // JWT

	// Credentials
	regexp.MustCompile(`(?i)(password|passwd|secret|credential)[=:\s]+['"]?[^\s'",]+['"]?`),

	// DSN-style URLs with embedded credentials
	regexp.MustCompile(`(?i)([a-z][a-z0-9+.-]*://)[^/\s:@]+(:[^/\s@]*)?@`),

	// PII
	regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`), // Email
	regexp.MustCompile(`\b\d{4}[\s-]?\d{4}[\s-]?\d{4}[\s-]?\d{4}\b`),       // Credit card
}

// Sensitive context key patterns (case-insensitive substring match)
var sensitiveKeyPatterns = []string{
	"token",
	"secret",
	"password",
	"passwd",
	"credential",
	"auth",
	"api_key",
	"apikey",
	"cookie",
}

// Scrubber redacts sensitive data before it leaves the process.
type Scrubber struct {
	cfg  ScrubberConfig
	keys []string
}

// NewScrubber creates a new scrubber with the given configuration.
func NewScrubber(cfg ScrubberConfig) *Scrubber {
	keys := append([]string(nil), sensitiveKeyPatterns...)
	for _, k := range cfg.SensitiveKeys {
		keys = append(keys, strings.ToLower(k))
	}
	return &Scrubber{cfg: cfg, keys: keys}
}

// ScrubMessage truncates msg and redacts sensitive patterns.
func (s *Scrubber) ScrubMessage(msg string) string {
	if s.cfg.MaxMessageSize > 0 && len(msg) > s.cfg.MaxMessageSize {
		msg = truncateWithMarker(msg, s.cfg.MaxMessageSize)
	}
	if !s.cfg.ScrubMessages {
		return msg
	}
	for _, pattern := range messageScrubPatterns {
		msg = pattern.ReplaceAllString(msg, "[REDACTED]")
	}
	return msg
}

// ScrubError returns err unchanged when its message needs no scrubbing.
// Otherwise it returns an error whose message is scrubbed and which still
// matches err under errors.Is and errors.As.
func (s *Scrubber) ScrubError(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	scrubbed := s.ScrubMessage(msg)
	if scrubbed == msg {
		return err
	}
	return &scrubbedError{msg: scrubbed, err: err}
}

// scrubbedError hides the original message. It has no Unwrap method because
// backends that walk the chain would report the unscrubbed inner messages.
type scrubbedError struct {
	msg string
	err error
}

func (e *scrubbedError) Error() string { return e.msg }

func (e *scrubbedError) Is(target error) bool { return errors.Is(e.err, target) }

func (e *scrubbedError) As(target any) bool { return errors.As(e.err, target) }

// StackTrace exposes the stack of the original error, if any.
func (e *scrubbedError) StackTrace() []uintptr {
	var st interface{ StackTrace() []uintptr }
	if errors.As(e.err, &st) {
		return st.StackTrace()
	}
	return nil
}

// ErrorType names the dynamic type of err, looking through scrubbing.
func ErrorType(err error) string {
	if se, ok := err.(*scrubbedError); ok {
		err = se.err
	}
	if err == nil {
		return "<nil>"
	}
	return reflect.TypeOf(err).String()
}

// ScrubContext returns a scrubbed copy of ctx. Values under sensitive keys
// are replaced, string values are pattern-scrubbed, nested maps are walked.
// Error values are kept as-is so exceptions reach the backend intact.
func (s *Scrubber) ScrubContext(ctx map[string]any) map[string]any {
	if ctx == nil {
		return nil
	}
	result := make(map[string]any, len(ctx))
	for key, value := range ctx {
		if key != ExceptionKey && s.isSensitiveKey(key) {
			result[key] = "[REDACTED]"
			continue
		}
		result[key] = s.scrubValue(value)
	}
	return result
}

func (s *Scrubber) scrubValue(val any) any {
	switch v := val.(type) {
	case string:
		return s.scrubString(v)
	case map[string]any:
		return s.ScrubContext(v)
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = s.scrubValue(item)
		}
		return out
	case []string:
		out := make([]string, len(v))
		for i, item := range v {
			out[i] = s.scrubString(item)
		}
		return out
	case error:
		return v
	case fmt.Stringer:
		return s.scrubString(v.String())
	default:
		return v
	}
}

func (s *Scrubber) scrubString(v string) string {
	if s.cfg.MaxValueSize > 0 && len(v) > s.cfg.MaxValueSize {
		v = truncateWithMarker(v, s.cfg.MaxValueSize)
	}
	if !s.cfg.ScrubMessages {
		return v
	}
	for _, pattern := range messageScrubPatterns {
		v = pattern.ReplaceAllString(v, "[REDACTED]")
	}
	return v
}

// isSensitiveKey checks if a context key matches sensitive patterns.
func (s *Scrubber) isSensitiveKey(key string) bool {
	keyLower := strings.ToLower(key)
	for _, pattern := range s.keys {
		if strings.Contains(keyLower, pattern) {
			return true
		}
	}
	return false
}

// truncateWithMarker truncates a string and adds a truncation marker. The
// result never exceeds maxLen bytes and never splits a UTF-8 sequence.
func truncateWithMarker(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	marker := "...[TRUNCATED]"
	if maxLen <= len(marker) {
		return marker[:maxLen]
	}
	return TruncateUTF8(s, maxLen-len(marker)) + marker
}

// TruncateUTF8 returns the longest prefix of s that fits in n bytes and
// ends on a rune boundary.
func TruncateUTF8(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 0 {
		return ""
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
