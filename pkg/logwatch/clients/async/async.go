// Package async provides a client wrapper with a bounded queue so that the
// logging call site never waits on the network.
// Records are forwarded in the background; the oldest are dropped when full.
package async

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/strongdm/ai-cxdb-logwatch/pkg/logwatch"
)

// ErrClosed is returned for records submitted after Close.
var ErrClosed = errors.New("async client is closed")

// Option configures the async client.
type Option func(*asyncConfig)

type asyncConfig struct {
	queueSize int
	onDropped func(count int)
}

// WithQueueSize sets the maximum number of queued records (default: 1000).
func WithQueueSize(size int) Option {
	return func(c *asyncConfig) {
		if size > 0 {
			c.queueSize = size
		}
	}
}

// WithOnDropped sets a callback invoked when records are dropped due to queue overflow.
func WithOnDropped(fn func(count int)) Option {
	return func(c *asyncConfig) {
		c.onDropped = fn
	}
}

// operation is one deferred call against the inner client.
type operation func(logwatch.Client)

// asyncClient wraps a client with a bounded queue.
type asyncClient struct {
	inner     logwatch.Client
	queue     chan operation
	done      chan struct{}
	closeOnce sync.Once
	closeMu   sync.RWMutex
	closed    bool
	wg        sync.WaitGroup
	pending   atomic.Int64
	onDropped func(count int)
}

// NewClient wraps a client with a bounded queue for background delivery.
// Capture calls return an empty event ID since delivery has not happened yet.
func NewClient(inner logwatch.Client, opts ...Option) logwatch.Client {
	cfg := &asyncConfig{queueSize: 1000}
	for _, opt := range opts {
		opt(cfg)
	}

	c := &asyncClient{
		inner:     inner,
		queue:     make(chan operation, cfg.queueSize),
		done:      make(chan struct{}),
		onDropped: cfg.onDropped,
	}

	c.wg.Add(1)
	go c.processLoop()

	return c
}

// Factory wraps every client built by factory.
func Factory(factory logwatch.ClientFactory, opts ...Option) logwatch.ClientFactory {
	return func(descriptor string) (logwatch.Client, error) {
		inner, err := factory(descriptor)
		if err != nil || inner == nil {
			return inner, err
		}
		return NewClient(inner, opts...), nil
	}
}

// processLoop drains the queue into the inner client.
func (c *asyncClient) processLoop() {
	defer c.wg.Done()
	for {
		select {
		case op := <-c.queue:
			c.run(op)
		case <-c.done:
			for {
				select {
				case op := <-c.queue:
					c.run(op)
				default:
					return
				}
			}
		}
	}
}

// run applies op, containing any panic from the inner client.
func (c *asyncClient) run(op operation) {
	defer c.pending.Add(-1)
	defer func() { _ = recover() }()
	op(c.inner)
}

// CaptureException enqueues err.
func (c *asyncClient) CaptureException(err error) (logwatch.EventID, error) {
	return "", c.enqueue(func(inner logwatch.Client) {
		_, _ = inner.CaptureException(err)
	})
}

// CaptureEvent enqueues a message capture.
func (c *asyncClient) CaptureEvent(record logwatch.CaptureRecord) (logwatch.EventID, error) {
	return "", c.enqueue(func(inner logwatch.Client) {
		_, _ = inner.CaptureEvent(record)
	})
}

// AddBreadcrumb enqueues a breadcrumb so it stays ordered with captures.
func (c *asyncClient) AddBreadcrumb(record logwatch.BreadcrumbRecord) error {
	return c.enqueue(func(inner logwatch.Client) {
		_ = inner.AddBreadcrumb(record)
	})
}

// enqueue returns immediately. If the queue is full, the oldest record is dropped.
func (c *asyncClient) enqueue(op operation) error {
	c.closeMu.RLock()
	defer c.closeMu.RUnlock()
	if c.closed {
		return ErrClosed
	}

	c.pending.Add(1)
	select {
	case c.queue <- op:
		return nil
	default:
		c.dropOldestAndEnqueue(op)
		return nil
	}
}

// dropOldestAndEnqueue drops the oldest record and enqueues the new one.
func (c *asyncClient) dropOldestAndEnqueue(op operation) {
	select {
	case <-c.queue:
		c.dropped()
	default:
		// drained by the processor in the meantime
	}

	select {
	case c.queue <- op:
	default:
		c.dropped()
	}
}

func (c *asyncClient) dropped() {
	c.pending.Add(-1)
	if c.onDropped != nil {
		c.onDropped(1)
	}
}

// Flush blocks until every queued record has been handed to the inner
// client, then flushes it.
func (c *asyncClient) Flush(ctx context.Context) error {
	ticker := time.NewTicker(5 * time.Millisecond)
	defer ticker.Stop()

	for c.pending.Load() > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return c.inner.Flush(ctx)
}

// Close stops the processor after draining the queue and closes the inner client.
func (c *asyncClient) Close() error {
	c.closeOnce.Do(func() {
		c.closeMu.Lock()
		c.closed = true
		c.closeMu.Unlock()

		close(c.done)
		c.wg.Wait()
	})

	return c.inner.Close()
}
