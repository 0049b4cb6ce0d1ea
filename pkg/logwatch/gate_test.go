package logwatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestDefaultGate_CapturesWarningAndAbove(t *testing.T) {
	gate := DefaultGate()

	for _, s := range []Severity{SeverityWarning, SeverityError, SeverityCritical, SeverityAlert, SeverityEmergency} {
		assert.True(t, gate.ShouldCapture(LogEvent{Severity: s, Message: "test"}), s.String())
	}
}

func TestDefaultGate_DoesNotCaptureBelowWarning(t *testing.T) {
	gate := DefaultGate()

	for _, s := range []Severity{SeverityDebug, SeverityInfo, SeverityNotice} {
		assert.False(t, gate.ShouldCapture(LogEvent{Severity: s, Message: "test"}), s.String())
	}
}

func TestDefaultGate_Property(t *testing.T) {
	gate := DefaultGate()
	rapid.Check(t, func(t *rapid.T) {
		s := genSeverity().Draw(t, "s")
		msg := rapid.String().Draw(t, "msg")
		got := gate.ShouldCapture(LogEvent{Severity: s, Message: msg})
		if got != (s >= SeverityWarning) {
			t.Fatalf("ShouldCapture(%v) = %v", s, got)
		}
	})
}

func TestThresholdGate(t *testing.T) {
	gate := ThresholdGate{Min: SeverityCritical}

	assert.False(t, gate.ShouldCapture(LogEvent{Severity: SeverityError}))
	assert.True(t, gate.ShouldCapture(LogEvent{Severity: SeverityCritical}))
	assert.True(t, gate.ShouldCapture(LogEvent{Severity: SeverityEmergency}))
}

func TestGateFunc(t *testing.T) {
	gate := GateFunc(func(e LogEvent) bool { return e.Context["capture"] == true })

	assert.True(t, gate.ShouldCapture(LogEvent{Context: map[string]any{"capture": true}}))
	assert.False(t, gate.ShouldCapture(LogEvent{Severity: SeverityEmergency}))
}

func TestRateLimitGate_CapsCaptures(t *testing.T) {
	// A near-zero refill rate leaves only the burst.
	gate := NewRateLimitGate(nil, 0.0001, 2)
	event := LogEvent{Severity: SeverityError}

	assert.True(t, gate.ShouldCapture(event))
	assert.True(t, gate.ShouldCapture(event))
	assert.False(t, gate.ShouldCapture(event))
}

func TestRateLimitGate_BelowThresholdDoesNotSpendTokens(t *testing.T) {
	gate := NewRateLimitGate(DefaultGate(), 0.0001, 1)

	for i := 0; i < 10; i++ {
		assert.False(t, gate.ShouldCapture(LogEvent{Severity: SeverityInfo}))
	}
	assert.True(t, gate.ShouldCapture(LogEvent{Severity: SeverityError}))
}
