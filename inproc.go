// inproc
package actor

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// InprocTransport is the Transport for environments living in the
// same OS process: a registry of environments keyed by address, with
// delivery going straight to the target environment's dispatch entry
// point. Useful for single-process multi-pool setups and as the
// transport under test suites; network transports live outside this
// package.
type InprocTransport struct {
	sync.Mutex
	envs  map[Address]*Environment
	table *AddressTable
}

// NewInprocTransport returns an empty in-process transport. The
// optional table maps external addresses to the internal ones
// environments attached under.
func NewInprocTransport(table *AddressTable) *InprocTransport {
	return &InprocTransport{
		envs:  make(map[Address]*Environment),
		table: table,
	}
}

// Attach makes env reachable at its address.
func (t *InprocTransport) Attach(env *Environment) error {
	t.Lock()
	defer t.Unlock()
	if _, ok := t.envs[env.Address()]; ok {
		return errors.Errorf("address %v already attached", env.Address())
	}
	t.envs[env.Address()] = env
	return nil
}

// Detach removes the environment at addr; later sends to it fail
// with ErrNoRoute.
func (t *InprocTransport) Detach(addr Address) {
	t.Lock()
	delete(t.envs, addr)
	t.Unlock()
}

func (t *InprocTransport) lookup(addr Address) (*Environment, error) {
	if t.table != nil {
		addr = t.table.Resolve(addr)
	}
	t.Lock()
	env, ok := t.envs[addr]
	t.Unlock()
	if !ok {
		return nil, errors.Wrapf(ErrNoRoute, "send to %v", addr)
	}
	return env, nil
}

// Send implements Transport. The message is relayed through each hop
// in order - every hop must host a reachable environment - and then
// delivered at the final address under the target actor's lock.
func (t *InprocTransport) Send(ctx context.Context, addr Address, hops []Address, uid UID, e Envelope) (interface{}, error) {
	if len(hops) > 0 {
		relay, err := t.lookup(hops[0])
		if err != nil {
			return nil, err
		}
		log.WithFields(log.Fields{
			"hop":  relay.Address(),
			"addr": addr,
			"uid":  uid,
		}).Debug("relaying through proxy hop")
		return t.Send(ctx, addr, hops[1:], uid, e)
	}
	env, err := t.lookup(addr)
	if err != nil {
		return nil, err
	}
	return env.Deliver(ctx, uid, e.unwrap())
}
