package logwatch

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/strongdm/ai-cxdb-logwatch/pkg/logwatch/events"
)

// mockListener captures events for verification in recover tests.
type mockListener struct {
	mu     sync.Mutex
	events []events.Event
}

func (l *mockListener) Handle(event events.Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, event)
}

func (l *mockListener) getEvents() []events.Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	result := make([]events.Event, len(l.events))
	copy(result, l.events)
	return result
}

func TestRecover_ReportsPanic(t *testing.T) {
	listener := &mockListener{}

	func() {
		defer Recover(listener)
		panic("test panic")
	}()

	got := listener.getEvents()
	if len(got) != 1 {
		t.Fatalf("Expected 1 event, got %d", len(got))
	}
	event, ok := got[0].(LogEvent)
	if !ok {
		t.Fatalf("event type = %T, want LogEvent", got[0])
	}
	if event.Severity != SeverityCritical {
		t.Errorf("Severity = %v, want critical", event.Severity)
	}
	if event.Message != "panic: test panic" {
		t.Errorf("Message = %q", event.Message)
	}
	if err := event.Exception(); err == nil || err.Error() != "test panic" {
		t.Errorf("Exception = %v, want test panic", err)
	}
	var panicErr *PanicError
	if !errors.As(event.Exception(), &panicErr) {
		t.Fatalf("Exception type = %T, want *PanicError", event.Exception())
	}
	if panicErr.Value != "test panic" {
		t.Errorf("Value = %v, want test panic", panicErr.Value)
	}
	if len(panicErr.StackTrace()) == 0 {
		t.Error("StackTrace should hold program counters")
	}
	stack := ErrorStack(event.Exception())
	if !strings.Contains(stack, "goroutine") || !strings.Contains(stack, "TestRecover_ReportsPanic") {
		t.Errorf("stack should contain the panicking goroutine, got %q", stack)
	}
}

func TestRecover_PreservesErrorValue(t *testing.T) {
	listener := &mockListener{}
	want := errors.New("typed failure")

	func() {
		defer Recover(listener)
		panic(want)
	}()

	event := listener.getEvents()[0].(LogEvent)
	if !errors.Is(event.Exception(), want) {
		t.Errorf("Exception = %v, want it to wrap the panicked error", event.Exception())
	}
	if event.Exception().Error() != "typed failure" {
		t.Errorf("Error() = %q", event.Exception().Error())
	}
}

func TestRecover_NoPanic(t *testing.T) {
	listener := &mockListener{}

	func() {
		defer Recover(listener)
	}()

	if len(listener.getEvents()) != 0 {
		t.Errorf("Expected no events without a panic")
	}
}

func TestRecover_ThroughRouter(t *testing.T) {
	client := &recordingClient{}
	router := NewRouter(nil, WithClient(client))

	func() {
		defer Recover(router)
		panic("worker died")
	}()

	exceptions, captures, _ := client.counts()
	if exceptions != 1 || captures != 0 {
		t.Fatalf("exceptions=%d captures=%d, want 1 and 0", exceptions, captures)
	}
	client.mu.Lock()
	got := client.exceptions[0]
	client.mu.Unlock()
	if stack := ErrorStack(got); !strings.Contains(stack, "TestRecover_ThroughRouter") {
		t.Errorf("client should receive the panic stack, got %q", stack)
	}
}

func TestErrorStack_NoStack(t *testing.T) {
	if got := ErrorStack(errors.New("plain")); got != "" {
		t.Errorf("ErrorStack = %q, want empty", got)
	}
	if got := ErrorStack(nil); got != "" {
		t.Errorf("ErrorStack(nil) = %q, want empty", got)
	}
}

type panickingListener struct{}

func (panickingListener) Handle(events.Event) { panic("listener exploded") }

func TestRecover_ListenerPanicIsContained(t *testing.T) {
	func() {
		defer func() {
			if p := recover(); p != nil {
				t.Errorf("panic escaped Recover: %v", p)
			}
		}()
		func() {
			defer Recover(panickingListener{})
			panic("original")
		}()
	}()
}

func TestFormatRecovered(t *testing.T) {
	if got := formatRecovered(nil); got != "<nil>" {
		t.Errorf("got %q", got)
	}
	if got := formatRecovered(errors.New("e")); got != "e" {
		t.Errorf("got %q", got)
	}
	if got := formatRecovered(42); got != "42" {
		t.Errorf("got %q", got)
	}
}
