// client.go defines the monitoring client capability and the records sent to it.

package logwatch

import "context"

// BreadcrumbCategory is the category attached to every breadcrumb.
const BreadcrumbCategory = "log"

// EventID identifies an event accepted by the backend. Empty when the
// backend did not assign one.
type EventID string

// CaptureRecord is a message-based capture payload.
type CaptureRecord struct {
	// Message is the log message.
	Message string

	// Level is the backend level mapped from the event severity.
	Level Level

	// Extra is the event context. Nil when the context is empty.
	Extra map[string]any
}

// BreadcrumbRecord is a trail entry kept by the backend for context.
type BreadcrumbRecord struct {
	// Level is the breadcrumb level mapped from the event severity.
	Level BreadcrumbLevel

	// Category is always BreadcrumbCategory for log events.
	Category string

	// Message is the log message.
	Message string

	// Data is the full event context. Never nil.
	Data map[string]any
}

// Client is the external monitoring backend.
// Implementations must be safe for concurrent use.
type Client interface {
	// CaptureException reports an error as a first-class event.
	CaptureException(err error) (EventID, error)

	// CaptureEvent reports a message-based event.
	CaptureEvent(record CaptureRecord) (EventID, error)

	// AddBreadcrumb records a breadcrumb for inclusion with later captures.
	AddBreadcrumb(record BreadcrumbRecord) error

	// Flush ensures any buffered events are delivered.
	// For synchronous clients, this may be a no-op.
	Flush(ctx context.Context) error

	// Close releases resources held by the client.
	Close() error
}
