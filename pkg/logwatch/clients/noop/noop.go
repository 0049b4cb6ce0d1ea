// Package noop provides a client that discards everything.
// Useful for testing and for disabling reporting without unhooking the router.
package noop

import (
	"context"

	"github.com/strongdm/ai-cxdb-logwatch/pkg/logwatch"
)

// noopClient discards all records.
type noopClient struct{}

// NewClient creates a client that discards all records.
// All methods return zero values and perform no operations.
func NewClient() logwatch.Client {
	return &noopClient{}
}

// Factory returns a ClientFactory that always yields a noop client.
func Factory() logwatch.ClientFactory {
	return func(string) (logwatch.Client, error) {
		return NewClient(), nil
	}
}

func (c *noopClient) CaptureException(err error) (logwatch.EventID, error) {
	return "", nil
}

func (c *noopClient) CaptureEvent(record logwatch.CaptureRecord) (logwatch.EventID, error) {
	return "", nil
}

func (c *noopClient) AddBreadcrumb(record logwatch.BreadcrumbRecord) error {
	return nil
}

func (c *noopClient) Flush(ctx context.Context) error {
	return nil
}

func (c *noopClient) Close() error {
	return nil
}
