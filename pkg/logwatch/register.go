// register.go wires routers into an event dispatcher.

package logwatch

import "github.com/strongdm/ai-cxdb-logwatch/pkg/logwatch/events"

// Register subscribes router to log events on d.
func Register(d *events.Dispatcher, router *Router) {
	d.Listen(LogEventKind, router)
}

// New wires a Router from a descriptor source and a client factory.
// It is shorthand for NewRouter(NewProvider(source, factory), opts...).
func New(source DescriptorSource, factory ClientFactory, opts ...RouterOption) *Router {
	return NewRouter(NewProvider(source, factory), opts...)
}
