// Package events provides a minimal synchronous event dispatcher.
// Listeners are registered per event kind and invoked in registration order.
package events

import "sync"

// Event is anything that can be dispatched.
type Event interface {
	// Kind identifies the event type listeners subscribe to.
	Kind() string
}

// Listener handles dispatched events.
type Listener interface {
	Handle(event Event)
}

// ListenerFunc adapts a function to the Listener interface.
type ListenerFunc func(event Event)

// Handle calls f(event).
func (f ListenerFunc) Handle(event Event) {
	f(event)
}

// Dispatcher routes events to the listeners registered for their kind.
// It is safe for concurrent use. The zero value is ready to use.
type Dispatcher struct {
	mu        sync.RWMutex
	listeners map[string][]Listener
}

// NewDispatcher creates an empty dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		listeners: make(map[string][]Listener),
	}
}

// Listen registers l for events of the given kind.
func (d *Dispatcher) Listen(kind string, l Listener) {
	if l == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.listeners == nil {
		d.listeners = make(map[string][]Listener)
	}
	d.listeners[kind] = append(d.listeners[kind], l)
}

// Dispatch synchronously delivers event to every listener registered for its kind.
func (d *Dispatcher) Dispatch(event Event) {
	if event == nil {
		return
	}
	d.mu.RLock()
	listeners := d.listeners[event.Kind()]
	d.mu.RUnlock()

	for _, l := range listeners {
		l.Handle(event)
	}
}

// Listeners returns the number of listeners registered for kind.
func (d *Dispatcher) Listeners(kind string) int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.listeners[kind])
}
