// recover.go provides panic handling: the silent boundary used by the router
// and the Recover helper for reporting host panics.

package logwatch

import (
	"errors"
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/strongdm/ai-cxdb-logwatch/pkg/logwatch/events"
)

// maxPanicFrames bounds the program counters kept for a panic.
const maxPanicFrames = 64

// PanicError is the exception Recover reports for a recovered panic. It
// carries the stack of the panicking goroutine.
type PanicError struct {
	// Value is the value passed to panic.
	Value any

	pcs   []uintptr
	stack []byte
}

// newPanicError captures the current stack. It must be called from the
// deferred function handling the panic.
func newPanicError(value any) *PanicError {
	pcs := make([]uintptr, maxPanicFrames)
	n := runtime.Callers(3, pcs)
	return &PanicError{
		Value: value,
		pcs:   pcs[:n],
		stack: debug.Stack(),
	}
}

func (e *PanicError) Error() string {
	return formatRecovered(e.Value)
}

// Unwrap returns the panic value when it is an error.
func (e *PanicError) Unwrap() error {
	err, _ := e.Value.(error)
	return err
}

// StackTrace returns the program counters of the panicking goroutine.
// sentry-go reads this method to build the exception stack trace.
func (e *PanicError) StackTrace() []uintptr {
	return e.pcs
}

// Stack returns the formatted goroutine stack.
func (e *PanicError) Stack() string {
	return string(e.stack)
}

// absorb discards a panic raised while forwarding. It must be deferred directly.
func absorb() {
	_ = recover()
}

// Recover captures a panic, reports it through listener as a critical log
// event and returns the recovered value. The event's exception is a
// *PanicError, so the stack trace travels with it to the client.
// Recover does NOT re-panic.
//
// Use in defer:
//
//	func worker() {
//	    defer logwatch.Recover(router)
//	    // code that might panic
//	}
func Recover(listener events.Listener) any {
	r := recover()
	if r == nil {
		return nil
	}
	if listener == nil {
		return r
	}

	event := LogEvent{
		Severity: SeverityCritical,
		Message:  "panic: " + formatRecovered(r),
		Context: map[string]any{
			ExceptionKey: newPanicError(r),
		},
	}

	func() {
		defer absorb()
		listener.Handle(event)
	}()

	return r
}

// ErrorStack returns the formatted stack carried by err or anything in its
// chain, or "" when there is none.
func ErrorStack(err error) string {
	var st interface{ Stack() string }
	if errors.As(err, &st) {
		return st.Stack()
	}
	return ""
}

// formatRecovered formats a recovered panic value as a string.
func formatRecovered(recovered any) string {
	if recovered == nil {
		return "<nil>"
	}
	if err, ok := recovered.(error); ok {
		return err.Error()
	}
	return fmt.Sprintf("%v", recovered)
}
