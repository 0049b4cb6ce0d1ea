// Package multi provides a client that fans out to multiple clients.
// All clients receive every record; errors are aggregated.
package multi

import (
	"context"
	"errors"

	"github.com/strongdm/ai-cxdb-logwatch/pkg/logwatch"
)

// multiClient fans out to multiple clients.
type multiClient struct {
	clients []logwatch.Client
}

// NewClient creates a client that forwards to every non-nil client given.
// Errors are aggregated via errors.Join; the first non-empty event ID wins.
func NewClient(clients ...logwatch.Client) logwatch.Client {
	kept := make([]logwatch.Client, 0, len(clients))
	for _, c := range clients {
		if c != nil {
			kept = append(kept, c)
		}
	}
	return &multiClient{clients: kept}
}

// CaptureException forwards err to all clients.
func (m *multiClient) CaptureException(err error) (logwatch.EventID, error) {
	return m.fanOut(func(c logwatch.Client) (logwatch.EventID, error) {
		return c.CaptureException(err)
	})
}

// CaptureEvent forwards the record to all clients.
func (m *multiClient) CaptureEvent(record logwatch.CaptureRecord) (logwatch.EventID, error) {
	return m.fanOut(func(c logwatch.Client) (logwatch.EventID, error) {
		return c.CaptureEvent(record)
	})
}

func (m *multiClient) fanOut(call func(logwatch.Client) (logwatch.EventID, error)) (logwatch.EventID, error) {
	var (
		id   logwatch.EventID
		errs []error
	)
	for _, c := range m.clients {
		got, err := call(c)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if id == "" {
			id = got
		}
	}
	return id, errors.Join(errs...)
}

// AddBreadcrumb forwards the breadcrumb to all clients.
func (m *multiClient) AddBreadcrumb(record logwatch.BreadcrumbRecord) error {
	var errs []error
	for _, c := range m.clients {
		if err := c.AddBreadcrumb(record); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Flush calls Flush on all clients, collecting any errors.
func (m *multiClient) Flush(ctx context.Context) error {
	var errs []error
	for _, c := range m.clients {
		if err := c.Flush(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close calls Close on all clients, collecting any errors.
func (m *multiClient) Close() error {
	var errs []error
	for _, c := range m.clients {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
