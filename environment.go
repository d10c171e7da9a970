// environment
package actor

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"go.uber.org/atomic"
)

// Receiver is the message-handling entry point of an actor instance.
// The runtime always holds the actor's lock while Receive runs, so a
// given instance sees at most one call at a time, in submission order.
type Receiver interface {
	Receive(ctx context.Context, msg interface{}) (interface{}, error)
}

// slot for a resident actor instance, tagged with the generation
// issued when it was adopted
type instanceSlot struct {
	recv Receiver
	gen  uint64
}

// Environment is the per-process concurrency registry: it owns the
// exclusive execution lock of every actor hosted at its address, the
// slots that back the local fast path, and the transfer-resource
// registries scoped to the same address space. One Environment exists
// per host process; the process supervisor creates it at startup and
// closes it at shutdown.
//
// The Environment's own mutex only guards the maps. It is held for
// map insert/remove/lookup, never while a message handler runs.
type Environment struct {
	address Address
	mu      sync.Mutex
	locks   map[UID]*actorLock
	slots   map[UID]instanceSlot
	gens    atomic.Uint64
	buffers *storageRegistry
	files   *storageRegistry
	bus     *EventBus
	closed  bool
}

// NewEnvironment creates an environment for the given address. This
// is a convenience for BuildEnvironment(address).Run().
func NewEnvironment(address Address) (*Environment, error) {
	return BuildEnvironment(address).Run()
}

// Address returns the address this environment hosts.
func (env *Environment) Address() Address {
	return env.address
}

// Bus returns the lifecycle event bus.
func (env *Environment) Bus() *EventBus {
	return env.bus
}

// Register creates the execution lock for uid. The supervisor calls
// this when it spawns an actor whose instance is hosted elsewhere in
// the process tree; actors resident in this process use Adopt instead.
func (env *Environment) Register(uid UID) error {
	env.mu.Lock()
	if env.closed {
		env.mu.Unlock()
		return errors.Wrap(ErrEnvClosed, "register")
	}
	if _, ok := env.locks[uid]; ok {
		env.mu.Unlock()
		return errors.Wrapf(ErrDuplicateActor, "register %v", uid)
	}
	env.locks[uid] = newActorLock()
	env.mu.Unlock()

	env.bus.Publish(ActorLifecycle, uid.String()+" registered")
	return nil
}

// Adopt registers uid and installs recv as the resident instance,
// making it reachable through the local fast path. The returned
// BaseActor is bound to (address, uid) for the instance's lifetime.
func (env *Environment) Adopt(uid UID, recv Receiver) (*BaseActor, error) {
	env.mu.Lock()
	if env.closed {
		env.mu.Unlock()
		return nil, errors.Wrap(ErrEnvClosed, "adopt")
	}
	if _, ok := env.locks[uid]; ok {
		env.mu.Unlock()
		return nil, errors.Wrapf(ErrDuplicateActor, "adopt %v", uid)
	}
	env.locks[uid] = newActorLock()
	gen := env.gens.Inc()
	env.slots[uid] = instanceSlot{recv: recv, gen: gen}
	env.mu.Unlock()

	env.bus.Publish(ActorLifecycle, uid.String()+" adopted")
	return &BaseActor{address: env.address, uid: uid, gen: gen, env: env}, nil
}

// Unregister removes uid's lock and instance slot. Waiters queued on
// the lock fail with ErrActorNotFound rather than blocking forever.
// Unregistering an unknown uid is a hard error, including the second
// of two Unregister calls.
func (env *Environment) Unregister(uid UID) error {
	env.mu.Lock()
	if env.closed {
		env.mu.Unlock()
		return errors.Wrap(ErrEnvClosed, "unregister")
	}
	l, ok := env.locks[uid]
	if !ok {
		env.mu.Unlock()
		return errors.Wrapf(ErrActorNotFound, "unregister %v", uid)
	}
	delete(env.locks, uid)
	delete(env.slots, uid)
	env.mu.Unlock()

	l.teardown()
	env.bus.Publish(ActorLifecycle, uid.String()+" unregistered")
	return nil
}

// Acquire takes uid's execution lock, waiting in FIFO order behind
// earlier acquirers. The wait suspends only the caller and is aborted
// by ctx cancellation, in which case the waiter leaves the queue with
// no side effects. Re-entrant under a caller-stamped context (see
// WithCaller); a bare context acquires with a one-off identity.
//
// The returned release function must run on every exit path of the
// critical section. Acquiring an unregistered uid fails with
// ErrActorNotFound - a lock is never created implicitly.
func (env *Environment) Acquire(ctx context.Context, uid UID) (func(), error) {
	env.mu.Lock()
	if env.closed {
		env.mu.Unlock()
		return nil, errors.Wrap(ErrEnvClosed, "acquire")
	}
	l, ok := env.locks[uid]
	env.mu.Unlock()
	if !ok {
		return nil, errors.Wrapf(ErrActorNotFound, "acquire %v", uid)
	}
	token := callerToken(ctx)
	if token == 0 {
		token = nextCallerToken()
	}
	return l.acquire(ctx, token)
}

// Dispatch runs fn inside uid's critical section. It stamps a caller
// token when the context has none, so self-calls made by fn through
// the same context re-enter the lock instead of deadlocking. Release
// is guaranteed on every exit path, panics included.
func (env *Environment) Dispatch(ctx context.Context, uid UID, fn func(context.Context) (interface{}, error)) (interface{}, error) {
	if callerToken(ctx) == 0 {
		ctx = WithCaller(ctx)
	}
	release, err := env.Acquire(ctx, uid)
	if err != nil {
		return nil, err
	}
	defer release()
	return fn(ctx)
}

// Deliver hands a message to the resident instance for uid, inside
// its critical section. This is the entry point transports use once
// a message reaches its final address.
func (env *Environment) Deliver(ctx context.Context, uid UID, msg interface{}) (interface{}, error) {
	return env.Dispatch(ctx, uid, func(ctx context.Context) (interface{}, error) {
		// re-check under the lock: the instance may have been torn
		// down while we waited
		env.mu.Lock()
		slot, ok := env.slots[uid]
		env.mu.Unlock()
		if !ok {
			return nil, errors.Wrapf(ErrActorNotFound, "deliver %v", uid)
		}
		return slot.recv.Receive(ctx, msg)
	})
}

// waiters reports how many acquirers are queued on uid's lock.
func (env *Environment) waiters(uid UID) int {
	env.mu.Lock()
	l, ok := env.locks[uid]
	env.mu.Unlock()
	if !ok {
		return 0
	}
	return l.pending()
}

// upgrade resolves the local fast path: return the resident instance
// for uid only when the caller's generation matches the slot's. A
// torn-down or re-adopted uid fails the match and the caller falls
// back to the general path.
func (env *Environment) upgrade(uid UID, gen uint64) (Receiver, bool) {
	env.mu.Lock()
	defer env.mu.Unlock()
	if env.closed {
		return nil, false
	}
	slot, ok := env.slots[uid]
	if !ok || slot.gen != gen {
		return nil, false
	}
	return slot.recv, true
}

// Close tears the environment down: every pending lock waiter fails,
// the instance slots and transfer registries are dropped, and all
// further operations return ErrEnvClosed. Called by the supervisor at
// process shutdown.
func (env *Environment) Close() {
	env.mu.Lock()
	if env.closed {
		env.mu.Unlock()
		return
	}
	env.closed = true
	locks := make([]*actorLock, 0, len(env.locks))
	for _, l := range env.locks {
		locks = append(locks, l)
	}
	env.locks = map[UID]*actorLock{}
	env.slots = map[UID]instanceSlot{}
	env.mu.Unlock()

	for _, l := range locks {
		l.teardown()
	}
	env.buffers.clear()
	env.files.clear()
	env.bus.Publish(EnvLifecycle, string(env.address)+" closed")
	log.WithFields(log.Fields{
		"address": env.address,
	}).Info("environment closed")
}
