// gate.go provides capture policies deciding capture vs breadcrumb per event.

package logwatch

import (
	"time"

	"golang.org/x/time/rate"
)

// CaptureGate decides whether an event warrants a full capture.
// Events not captured are recorded as breadcrumbs.
// Implementations must be safe for concurrent use.
type CaptureGate interface {
	ShouldCapture(event LogEvent) bool
}

// GateFunc adapts a function to the CaptureGate interface.
type GateFunc func(event LogEvent) bool

// ShouldCapture calls f(event).
func (f GateFunc) ShouldCapture(event LogEvent) bool {
	return f(event)
}

// ThresholdGate captures events at or above Min.
type ThresholdGate struct {
	Min Severity
}

// ShouldCapture reports whether the event severity reaches the threshold.
func (g ThresholdGate) ShouldCapture(event LogEvent) bool {
	return event.Severity.AtLeast(g.Min)
}

// DefaultGate captures warnings and above.
func DefaultGate() CaptureGate {
	return ThresholdGate{Min: SeverityWarning}
}

// RateLimitGate caps the rate of captures passed by an inner gate.
// Events the inner gate would capture beyond the limit become breadcrumbs.
type RateLimitGate struct {
	inner   CaptureGate
	limiter *rate.Limiter
}

// NewRateLimitGate wraps inner with a token bucket allowing perSecond
// captures with the given burst. A nil inner gate uses DefaultGate.
func NewRateLimitGate(inner CaptureGate, perSecond float64, burst int) *RateLimitGate {
	if inner == nil {
		inner = DefaultGate()
	}
	if burst < 1 {
		burst = 1
	}
	return &RateLimitGate{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Limit(perSecond), burst),
	}
}

// ShouldCapture consults the inner gate, then the token bucket.
func (g *RateLimitGate) ShouldCapture(event LogEvent) bool {
	if !g.inner.ShouldCapture(event) {
		return false
	}
	return g.limiter.AllowN(time.Now(), 1)
}
