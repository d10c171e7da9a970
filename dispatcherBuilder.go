// dispatcherBuilder
package actor

import (
	"github.com/pkg/errors"
)

// Builder for Dispatcher.
type DispatcherBuilder struct {
	d   *Dispatcher
	err error
}

// Start building a dispatcher over the given transport. The transport
// is required: it is the fallback for every handle whose fast path
// does not resolve.
func BuildDispatcher(transport Transport) *DispatcherBuilder {
	b := &DispatcherBuilder{d: &Dispatcher{transport: transport}}
	if transport == nil {
		b.err = errors.New("dispatcher needs a transport")
	}
	return b
}

// Add a metadata lookup service for method-cache misses.
func (b *DispatcherBuilder) WithResolver(r MethodResolver) *DispatcherBuilder {
	if b.err == nil {
		b.d.resolver = r
	}
	return b
}

// Add an address table consulted for proxy routing.
func (b *DispatcherBuilder) WithTable(t *AddressTable) *DispatcherBuilder {
	if b.err == nil {
		b.d.table = t
	}
	return b
}

// This must be the last call in the builder chain.
func (b *DispatcherBuilder) Run() (*Dispatcher, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.d, nil
}
