package zerologhook

import (
	"context"
	"sync"

	"github.com/strongdm/ai-cxdb-logwatch/pkg/logwatch"
)

// countingClient counts calls per operation.
type countingClient struct {
	mu          sync.Mutex
	captures    int
	breadcrumbs int
}

func (c *countingClient) CaptureException(error) (logwatch.EventID, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.captures++
	return "id", nil
}

func (c *countingClient) CaptureEvent(logwatch.CaptureRecord) (logwatch.EventID, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.captures++
	return "id", nil
}

func (c *countingClient) AddBreadcrumb(logwatch.BreadcrumbRecord) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.breadcrumbs++
	return nil
}

func (c *countingClient) Flush(context.Context) error { return nil }
func (c *countingClient) Close() error                { return nil }
