// severity.go defines the ordered severity scale and its fixed mappings onto
// backend event levels and breadcrumb levels.

package logwatch

import "strings"

// Severity is the ordinal urgency attached to a log event.
// Values are ordered ascending, so ordinary integer comparison applies.
type Severity int

const (
	SeverityDebug Severity = iota
	SeverityInfo
	SeverityNotice
	SeverityWarning
	SeverityError
	SeverityCritical
	SeverityAlert
	SeverityEmergency
)

// Level is the event level vocabulary understood by the monitoring backend.
type Level string

const (
	LevelDebug   Level = "debug"
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
	LevelFatal   Level = "fatal"
)

// BreadcrumbLevel is the level vocabulary used for breadcrumbs.
type BreadcrumbLevel string

const (
	BreadcrumbDebug   BreadcrumbLevel = "debug"
	BreadcrumbInfo    BreadcrumbLevel = "info"
	BreadcrumbWarning BreadcrumbLevel = "warning"
	BreadcrumbError   BreadcrumbLevel = "error"
	BreadcrumbFatal   BreadcrumbLevel = "fatal"
)

var severityNames = [...]string{
	SeverityDebug:     "debug",
	SeverityInfo:      "info",
	SeverityNotice:    "notice",
	SeverityWarning:   "warning",
	SeverityError:     "error",
	SeverityCritical:  "critical",
	SeverityAlert:     "alert",
	SeverityEmergency: "emergency",
}

var backendLevels = [...]Level{
	SeverityDebug:     LevelDebug,
	SeverityInfo:      LevelInfo,
	SeverityNotice:    LevelInfo,
	SeverityWarning:   LevelWarning,
	SeverityError:     LevelError,
	SeverityCritical:  LevelFatal,
	SeverityAlert:     LevelFatal,
	SeverityEmergency: LevelFatal,
}

var breadcrumbLevels = [...]BreadcrumbLevel{
	SeverityDebug:     BreadcrumbDebug,
	SeverityInfo:      BreadcrumbInfo,
	SeverityNotice:    BreadcrumbInfo,
	SeverityWarning:   BreadcrumbWarning,
	SeverityError:     BreadcrumbError,
	SeverityCritical:  BreadcrumbFatal,
	SeverityAlert:     BreadcrumbFatal,
	SeverityEmergency: BreadcrumbFatal,
}

// Severities returns every member of the scale in ascending order.
func Severities() []Severity {
	return []Severity{
		SeverityDebug, SeverityInfo, SeverityNotice, SeverityWarning,
		SeverityError, SeverityCritical, SeverityAlert, SeverityEmergency,
	}
}

// Valid reports whether s is a member of the scale.
func (s Severity) Valid() bool {
	return s >= SeverityDebug && s <= SeverityEmergency
}

// String returns the lowercase name of the severity.
func (s Severity) String() string {
	if !s.Valid() {
		return "unknown"
	}
	return severityNames[s]
}

// AtLeast reports whether s is at or above threshold on the scale.
func (s Severity) AtLeast(threshold Severity) bool {
	return Compare(s, threshold) >= 0
}

// Level maps s onto the backend event level.
// Unknown severities map to info.
func (s Severity) Level() Level {
	if !s.Valid() {
		return LevelInfo
	}
	return backendLevels[s]
}

// BreadcrumbLevel maps s onto the breadcrumb level.
// Unknown severities map to info.
func (s Severity) BreadcrumbLevel() BreadcrumbLevel {
	if !s.Valid() {
		return BreadcrumbInfo
	}
	return breadcrumbLevels[s]
}

// Compare returns -1 if a orders before b, +1 if after, and 0 if equal.
func Compare(a, b Severity) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// ParseSeverity converts a severity name (case-insensitive) to a Severity.
// Common aliases from other logging libraries are accepted.
func ParseSeverity(name string) (Severity, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug", "trace":
		return SeverityDebug, true
	case "info", "information":
		return SeverityInfo, true
	case "notice":
		return SeverityNotice, true
	case "warning", "warn":
		return SeverityWarning, true
	case "error", "err":
		return SeverityError, true
	case "critical", "crit", "fatal":
		return SeverityCritical, true
	case "alert", "panic":
		return SeverityAlert, true
	case "emergency", "emerg":
		return SeverityEmergency, true
	default:
		return SeverityInfo, false
	}
}
