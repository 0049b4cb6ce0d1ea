// trail.go keeps the most recent breadcrumbs in a ring buffer so they can be
// attached to the next capture.

package cxdb

import (
	"time"

	"github.com/strongdm/ai-cxdb-logwatch/pkg/logwatch"
)

// breadcrumbEntry is a breadcrumb as persisted alongside a capture.
type breadcrumbEntry struct {
	Timestamp time.Time      `json:"timestamp"`
	Level     string         `json:"level"`
	Category  string         `json:"category"`
	Message   string         `json:"message"`
	Data      map[string]any `json:"data,omitempty"`
}

func newBreadcrumbEntry(record logwatch.BreadcrumbRecord, at time.Time) breadcrumbEntry {
	return breadcrumbEntry{
		Timestamp: at,
		Level:     string(record.Level),
		Category:  record.Category,
		Message:   record.Message,
		Data:      jsonSafe(record.Data),
	}
}

// breadcrumbTrail is a bounded ring buffer (not safe for concurrent use).
type breadcrumbTrail struct {
	entries  []breadcrumbEntry
	maxSize  int
	writeIdx int
}

// Add appends an entry, evicting the oldest if the trail is full.
func (b *breadcrumbTrail) Add(entry breadcrumbEntry) {
	if b.maxSize <= 0 {
		return
	}
	if len(b.entries) < b.maxSize {
		b.entries = append(b.entries, entry)
		return
	}
	b.entries[b.writeIdx] = entry
	b.writeIdx = (b.writeIdx + 1) % b.maxSize
}

// GetAll returns entries in chronological order (oldest first).
func (b *breadcrumbTrail) GetAll() []breadcrumbEntry {
	if len(b.entries) == 0 {
		return []breadcrumbEntry{}
	}

	result := make([]breadcrumbEntry, len(b.entries))
	if len(b.entries) < b.maxSize {
		copy(result, b.entries)
		return result
	}

	// writeIdx points to the oldest entry once the trail is full
	copy(result, b.entries[b.writeIdx:])
	copy(result[len(b.entries)-b.writeIdx:], b.entries[:b.writeIdx])
	return result
}
