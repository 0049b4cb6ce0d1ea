// provider.go builds the monitoring client from a connection descriptor.

package logwatch

import "strings"

// DescriptorSource supplies the connection descriptor (e.g. a DSN).
// An empty descriptor means monitoring is not configured.
type DescriptorSource interface {
	Descriptor() string
}

// DescriptorFunc adapts a function to the DescriptorSource interface.
type DescriptorFunc func() string

// Descriptor calls f().
func (f DescriptorFunc) Descriptor() string {
	return f()
}

// StaticDescriptor is a fixed descriptor.
type StaticDescriptor string

// Descriptor returns the descriptor value.
func (d StaticDescriptor) Descriptor() string {
	return string(d)
}

// ClientFactory constructs a client for a non-empty descriptor.
type ClientFactory func(descriptor string) (Client, error)

// Provider produces the monitoring client, or reports it unavailable.
type Provider interface {
	// Client returns a live client and true, or nil and false when
	// monitoring is unavailable. It never panics.
	Client() (Client, bool)
}

// descriptorProvider reads a descriptor and hands it to a factory.
type descriptorProvider struct {
	source  DescriptorSource
	factory ClientFactory
}

// NewProvider creates a Provider that reads the descriptor from source and
// builds the client with factory. A blank descriptor, a factory error, a
// nil client or a panic during construction all yield "unavailable".
// The provider has no retry policy; each call re-reads the source.
func NewProvider(source DescriptorSource, factory ClientFactory) Provider {
	return &descriptorProvider{
		source:  source,
		factory: factory,
	}
}

// Client reads the descriptor and builds the client.
func (p *descriptorProvider) Client() (client Client, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			client, ok = nil, false
		}
	}()

	if p.source == nil || p.factory == nil {
		return nil, false
	}

	descriptor := strings.TrimSpace(p.source.Descriptor())
	if descriptor == "" {
		return nil, false
	}

	c, err := p.factory(descriptor)
	if err != nil || c == nil {
		return nil, false
	}
	return c, true
}
