// environmentBuilder
package actor

import (
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Builder for Environment.
type EnvironmentBuilder struct {
	env *Environment
	err error
}

// Start building an environment for the given address. The address
// is the one the process supervisor assigned to this process.
func BuildEnvironment(address Address) *EnvironmentBuilder {
	b := &EnvironmentBuilder{
		env: &Environment{
			address: address,
			locks:   make(map[UID]*actorLock),
			slots:   make(map[UID]instanceSlot),
			buffers: newStorageRegistry("buffer"),
			files:   newStorageRegistry("file"),
			bus:     NewEventBus(),
		},
	}
	if !address.IsValid() {
		b.err = errors.Wrap(ErrInvalidAddress, "build environment")
	}
	return b
}

// Subscribe a lifecycle listener before the environment starts, so
// no early register/adopt event is missed.
func (b *EnvironmentBuilder) WithSubscriber(pattern string, fn func(BusEvent)) *EnvironmentBuilder {
	if b.err == nil {
		_, b.err = b.env.bus.Subscribe(pattern, fn)
	}
	return b
}

// This must be the last call in the builder chain.
func (b *EnvironmentBuilder) Run() (*Environment, error) {
	if b.err != nil {
		log.Error(b.err)
		return nil, b.err
	}
	b.env.bus.Publish(EnvLifecycle, string(b.env.address)+" started")
	return b.env, nil
}
