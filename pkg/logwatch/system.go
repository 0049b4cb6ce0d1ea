// system.go snapshots process metrics for attaching to captures.

package logwatch

import (
	"os"
	"runtime"
	"time"
)

// SystemState is a point-in-time view of the reporting process.
type SystemState struct {
	MemoryBytes    int64  // heap bytes allocated and not yet freed
	GoroutineCount int    // live goroutines
	UptimeMs       int64  // time since startTime, never negative
	HostName       string // empty when the hostname cannot be read
}

// CaptureSystemState reads current process metrics. Uptime is measured from
// startTime.
func CaptureSystemState(startTime time.Time) *SystemState {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	host, _ := os.Hostname()

	return &SystemState{
		MemoryBytes:    int64(mem.Alloc),
		GoroutineCount: runtime.NumGoroutine(),
		UptimeMs:       max(time.Since(startTime).Milliseconds(), 0),
		HostName:       host,
	}
}

// Map renders the state with snake_case keys, as attached to capture details.
func (s *SystemState) Map() map[string]any {
	if s == nil {
		return nil
	}
	return map[string]any{
		"memory_bytes":    s.MemoryBytes,
		"goroutine_count": s.GoroutineCount,
		"uptime_ms":       s.UptimeMs,
		"host_name":       s.HostName,
	}
}
