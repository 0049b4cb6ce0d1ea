package async

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/strongdm/ai-cxdb-logwatch/pkg/logwatch"
)

// gatedClient records messages and can block until released.
type gatedClient struct {
	mu       sync.Mutex
	messages []string
	started  chan struct{}
	release  chan struct{}
	once     sync.Once
	closed   atomic.Bool
	flushed  atomic.Int32
}

func newGatedClient(blocking bool) *gatedClient {
	c := &gatedClient{started: make(chan struct{}), release: make(chan struct{})}
	if !blocking {
		close(c.release)
	}
	return c
}

func (c *gatedClient) record(msg string) {
	c.once.Do(func() { close(c.started) })
	<-c.release
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, msg)
}

func (c *gatedClient) CaptureException(err error) (logwatch.EventID, error) {
	c.record("exception:" + err.Error())
	return "id", nil
}

func (c *gatedClient) CaptureEvent(record logwatch.CaptureRecord) (logwatch.EventID, error) {
	c.record(record.Message)
	return "id", nil
}

func (c *gatedClient) AddBreadcrumb(record logwatch.BreadcrumbRecord) error {
	c.record("crumb:" + record.Message)
	return nil
}

func (c *gatedClient) Flush(ctx context.Context) error {
	c.flushed.Add(1)
	return nil
}

func (c *gatedClient) Close() error {
	c.closed.Store(true)
	return nil
}

func (c *gatedClient) getMessages() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	result := make([]string, len(c.messages))
	copy(result, c.messages)
	return result
}

func capture(msg string) logwatch.CaptureRecord {
	return logwatch.CaptureRecord{Message: msg, Level: logwatch.LevelError}
}

func TestAsyncClient_ImplementsClientInterface(t *testing.T) {
	var _ logwatch.Client = NewClient(newGatedClient(false))
}

func TestAsyncClient_ReturnsWithoutWaiting(t *testing.T) {
	inner := newGatedClient(true)
	client := NewClient(inner, WithQueueSize(10))
	defer func() {
		close(inner.release)
		client.Close()
	}()

	start := time.Now()
	id, err := client.CaptureEvent(capture("slow"))
	if err != nil {
		t.Fatalf("CaptureEvent returned error: %v", err)
	}
	if id != "" {
		t.Errorf("id = %q, want empty for queued capture", id)
	}
	if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
		t.Errorf("CaptureEvent took %v while the inner client was blocked", elapsed)
	}
}

func TestAsyncClient_PreservesOrder(t *testing.T) {
	inner := newGatedClient(false)
	client := NewClient(inner)

	_ = client.AddBreadcrumb(logwatch.BreadcrumbRecord{Message: "step"})
	_, _ = client.CaptureEvent(capture("boom"))
	_, _ = client.CaptureException(errors.New("bad"))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := client.Flush(ctx); err != nil {
		t.Fatalf("Flush returned error: %v", err)
	}

	got := inner.getMessages()
	want := []string{"crumb:step", "boom", "exception:bad"}
	if len(got) != len(want) {
		t.Fatalf("messages = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("messages[%d] = %q, want %q", i, got[i], want[i])
		}
	}
	if inner.flushed.Load() != 1 {
		t.Errorf("inner Flush calls = %d, want 1", inner.flushed.Load())
	}
	client.Close()
}

func TestAsyncClient_DropsOldest_WhenQueueFull(t *testing.T) {
	inner := newGatedClient(true)
	var droppedCount atomic.Int32
	client := NewClient(inner,
		WithQueueSize(2),
		WithOnDropped(func(count int) {
			droppedCount.Add(int32(count))
		}),
	)

	_, _ = client.CaptureEvent(capture("a"))
	<-inner.started // processor holds "a"

	for _, msg := range []string{"b", "c", "d"} {
		_, _ = client.CaptureEvent(capture(msg))
	}
	close(inner.release)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := client.Flush(ctx); err != nil {
		t.Fatalf("Flush returned error: %v", err)
	}

	if droppedCount.Load() != 1 {
		t.Errorf("dropped = %d, want 1", droppedCount.Load())
	}
	got := inner.getMessages()
	want := []string{"a", "c", "d"}
	if len(got) != len(want) {
		t.Fatalf("messages = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("messages[%d] = %q, want %q", i, got[i], want[i])
		}
	}
	client.Close()
}

func TestAsyncClient_FlushHonorsContext(t *testing.T) {
	inner := newGatedClient(true)
	client := NewClient(inner)
	defer func() {
		close(inner.release)
		client.Close()
	}()

	_, _ = client.CaptureEvent(capture("stuck"))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := client.Flush(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Flush error = %v, want deadline exceeded", err)
	}
}

func TestAsyncClient_CloseDrainsAndRejects(t *testing.T) {
	inner := newGatedClient(false)
	client := NewClient(inner)

	for i := 0; i < 5; i++ {
		_, _ = client.CaptureEvent(capture("queued"))
	}
	if err := client.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}

	if n := len(inner.getMessages()); n != 5 {
		t.Errorf("delivered %d records before close, want 5", n)
	}
	if !inner.closed.Load() {
		t.Error("inner client should be closed")
	}
	if _, err := client.CaptureEvent(capture("late")); !errors.Is(err, ErrClosed) {
		t.Errorf("CaptureEvent after Close error = %v, want ErrClosed", err)
	}
}

type panickyClient struct{ *gatedClient }

func (p *panickyClient) CaptureEvent(logwatch.CaptureRecord) (logwatch.EventID, error) {
	panic("inner exploded")
}

func TestAsyncClient_InnerPanicDoesNotStopProcessing(t *testing.T) {
	inner := &panickyClient{gatedClient: newGatedClient(false)}
	client := NewClient(inner)

	_, _ = client.CaptureEvent(capture("panics"))
	_ = client.AddBreadcrumb(logwatch.BreadcrumbRecord{Message: "after"})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := client.Flush(ctx); err != nil {
		t.Fatalf("Flush returned error: %v", err)
	}
	got := inner.getMessages()
	if len(got) != 1 || got[0] != "crumb:after" {
		t.Errorf("messages = %v, want [crumb:after]", got)
	}
	client.Close()
}

func TestFactory_WrapsInner(t *testing.T) {
	inner := newGatedClient(false)
	factory := Factory(func(string) (logwatch.Client, error) { return inner, nil })

	client, err := factory("anything")
	if err != nil {
		t.Fatalf("factory returned error: %v", err)
	}
	if client == logwatch.Client(inner) {
		t.Error("factory should wrap the inner client")
	}
	client.Close()

	wantErr := errors.New("nope")
	_, err = Factory(func(string) (logwatch.Client, error) { return nil, wantErr })("x")
	if !errors.Is(err, wantErr) {
		t.Errorf("err = %v, want %v", err, wantErr)
	}
}
