// router.go implements the Router, which classifies log events and forwards
// them to the monitoring client as captures or breadcrumbs.

package logwatch

import (
	"context"
	"sync"

	"github.com/strongdm/ai-cxdb-logwatch/pkg/logwatch/events"
)

// maxPendingEvents bounds the events queued during client initialization.
const maxPendingEvents = 256

// routerState is the one-way lifecycle of a Router.
type routerState int

const (
	stateUninitialized routerState = iota
	stateInitializing
	stateActive
	stateDisabled
)

// RouterOption configures a Router.
type RouterOption func(*routerConfig)

type routerConfig struct {
	gate     CaptureGate
	client   Client
	scrubber *Scrubber
}

// WithGate sets the capture policy. Defaults to DefaultGate.
func WithGate(gate CaptureGate) RouterOption {
	return func(c *routerConfig) {
		c.gate = gate
	}
}

// WithClient supplies a client up front. The router starts active and
// never consults its provider.
func WithClient(client Client) RouterOption {
	return func(c *routerConfig) {
		c.client = client
	}
}

// WithScrubber redacts message and context data with a custom configuration
// before records are built.
func WithScrubber(cfg ScrubberConfig) RouterOption {
	return func(c *routerConfig) {
		c.scrubber = NewScrubber(cfg)
	}
}

// WithDefaultScrubbing enables scrubbing with production-safe defaults.
func WithDefaultScrubbing() RouterOption {
	return func(c *routerConfig) {
		c.scrubber = NewScrubber(DefaultScrubberConfig())
	}
}

// Router consumes log events and forwards them to a monitoring client.
//
// The client is obtained lazily from the provider on the first handled
// event. If it is unavailable then, the router is disabled for the rest of
// its lifetime and every later event is a no-op. Events handled while the
// lookup is in flight are queued and delivered once the client is ready.
//
// Monitoring is best-effort: Handle never returns an error, never panics and
// never logs. Any failure raised by the gate or the client is discarded at
// the Handle boundary.
type Router struct {
	provider Provider
	gate     CaptureGate
	scrubber *Scrubber

	mu      sync.Mutex
	state   routerState
	client  Client
	pending []LogEvent
}

var _ events.Listener = (*Router)(nil)

// NewRouter creates a Router that obtains its client from provider.
func NewRouter(provider Provider, opts ...RouterOption) *Router {
	cfg := &routerConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.gate == nil {
		cfg.gate = DefaultGate()
	}

	r := &Router{
		provider: provider,
		gate:     cfg.gate,
		scrubber: cfg.scrubber,
	}
	if cfg.client != nil {
		r.client = cfg.client
		r.state = stateActive
	}
	return r
}

// Handle processes one event. Events that are not log events are ignored.
func (r *Router) Handle(event events.Event) {
	logEvent, ok := asLogEvent(event)
	if !ok {
		return
	}

	client, initialized, ok := r.acquire(logEvent)
	if !ok {
		return
	}

	r.deliver(client, logEvent)
	if initialized {
		r.drainPending(client)
	}
}

// deliver forwards one event. Client errors and panics stop here.
func (r *Router) deliver(client Client, event LogEvent) {
	defer absorb()
	r.forward(client, event)
}

// Flush flushes the client if the router is active.
func (r *Router) Flush(ctx context.Context) error {
	client, ok := r.activeClient()
	if !ok {
		return nil
	}
	return client.Flush(ctx)
}

// Close closes the client if the router is active.
func (r *Router) Close() error {
	client, ok := r.activeClient()
	if !ok {
		return nil
	}
	return client.Close()
}

func (r *Router) activeClient() (Client, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.client, r.state == stateActive
}

// acquire returns the client for event, performing the one-time provider
// lookup on the first call. initialized reports that this call did the
// lookup and must drain the pending queue.
//
// Events arriving while the lookup is in flight, concurrently or
// re-entrantly from the client factory, are queued without blocking and
// delivered once the client is active. The queue holds at most
// maxPendingEvents; later arrivals are dropped.
func (r *Router) acquire(event LogEvent) (client Client, initialized, ok bool) {
	r.mu.Lock()
	switch r.state {
	case stateActive:
		client := r.client
		r.mu.Unlock()
		return client, false, true
	case stateDisabled:
		r.mu.Unlock()
		return nil, false, false
	case stateInitializing:
		if len(r.pending) < maxPendingEvents {
			r.pending = append(r.pending, event)
		}
		r.mu.Unlock()
		return nil, false, false
	}
	r.state = stateInitializing
	r.mu.Unlock()

	client, ok = r.lookupClient()

	r.mu.Lock()
	defer r.mu.Unlock()
	if !ok {
		r.state = stateDisabled
		r.pending = nil
		return nil, false, false
	}
	// The state stays initializing until the queue is drained, so queued
	// events keep their order relative to later ones.
	r.client = client
	return client, true, true
}

// drainPending delivers queued events, then marks the router active.
func (r *Router) drainPending(client Client) {
	for {
		r.mu.Lock()
		batch := r.pending
		r.pending = nil
		if len(batch) == 0 {
			r.state = stateActive
			r.mu.Unlock()
			return
		}
		r.mu.Unlock()

		for _, event := range batch {
			r.deliver(client, event)
		}
	}
}

func (r *Router) lookupClient() (client Client, ok bool) {
	defer func() {
		if rec := recover(); rec != nil {
			client, ok = nil, false
		}
	}()
	if r.provider == nil {
		return nil, false
	}
	return r.provider.Client()
}

// forward routes the event to a capture or a breadcrumb.
func (r *Router) forward(client Client, event LogEvent) {
	if r.gate.ShouldCapture(event) {
		r.capture(client, event)
		return
	}
	_ = client.AddBreadcrumb(r.buildBreadcrumb(event))
}

// capture forwards the exception when present, otherwise a message payload.
func (r *Router) capture(client Client, event LogEvent) {
	if err := event.Exception(); err != nil {
		_, _ = client.CaptureException(r.exception(err))
		return
	}
	_, _ = client.CaptureEvent(r.buildCapture(event))
}

func (r *Router) buildCapture(event LogEvent) CaptureRecord {
	record := CaptureRecord{
		Message: r.message(event),
		Level:   event.Severity.Level(),
	}
	if len(event.Context) > 0 {
		record.Extra = r.context(event)
	}
	return record
}

func (r *Router) buildBreadcrumb(event LogEvent) BreadcrumbRecord {
	return BreadcrumbRecord{
		Level:    event.Severity.BreadcrumbLevel(),
		Category: BreadcrumbCategory,
		Message:  r.message(event),
		Data:     r.context(event),
	}
}

func (r *Router) message(event LogEvent) string {
	if r.scrubber == nil {
		return event.Message
	}
	return r.scrubber.ScrubMessage(event.Message)
}

// exception returns err, or a scrubbed stand-in when scrubbing is on.
func (r *Router) exception(err error) error {
	if r.scrubber == nil {
		return err
	}
	return r.scrubber.ScrubError(err)
}

// context returns a copy of the event context, scrubbed if configured.
func (r *Router) context(event LogEvent) map[string]any {
	data := cloneContext(event.Context)
	if r.scrubber == nil {
		return data
	}
	return r.scrubber.ScrubContext(data)
}

// asLogEvent recognizes log events passed by value or by pointer.
func asLogEvent(event events.Event) (LogEvent, bool) {
	switch e := event.(type) {
	case LogEvent:
		return e, true
	case *LogEvent:
		if e == nil {
			return LogEvent{}, false
		}
		return *e, true
	default:
		return LogEvent{}, false
	}
}
