// dispatch
package actor

import (
	"context"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// Transport is the external collaborator that moves a message to a
// non-resident actor: addr is the final delivery address, hops the
// proxy addresses still to traverse. The response travels back on the
// same call.
type Transport interface {
	Send(ctx context.Context, addr Address, hops []Address, uid UID, e Envelope) (interface{}, error)
}

// MethodResolver is the external metadata lookup service consulted on
// a method-cache miss.
type MethodResolver interface {
	Lookup(ctx context.Context, ref *ActorRef, name string) (MethodInfo, error)
}

// Dispatcher resolves a handle at use-time to the cheapest path that
// reaches its actor: the in-process fast path when the instance is
// resident, otherwise the transport. Callers never see which path
// ran - they get a response, a typed failure, or their context error.
type Dispatcher struct {
	transport Transport
	resolver  MethodResolver
	table     *AddressTable
	inflight  singleflight.Group
}

// Send delivers payload to the actor named by ref and returns the
// handler's response.
//
// The fast path upgrades the handle's weak link, then runs the
// handler under the actor's lock via the owning environment - the
// same lock the general path takes, so local and remote senders
// serialize identically. The strong reference obtained by the
// upgrade lives only for this one dispatch. When the upgrade fails
// the message goes to the transport with (address, hops, uid) alone.
func (d *Dispatcher) Send(ctx context.Context, ref *ActorRef, payload interface{}) (interface{}, error) {
	return d.send(ctx, ref, Envelope{Payload: payload})
}

func (d *Dispatcher) send(ctx context.Context, ref *ActorRef, e Envelope) (interface{}, error) {
	if recv, ok := ref.Upgrade(); ok {
		if callerToken(ctx) == 0 {
			ctx = WithCaller(ctx)
		}
		release, err := ref.link.env.Acquire(ctx, ref.uid)
		if err == nil {
			// the handler runs exactly once; its errors propagate
			// untouched, retry decisions belong to the caller
			return func() (interface{}, error) {
				defer release()
				return recv.Receive(ctx, e.unwrap())
			}()
		}
		if !errors.Is(err, ErrActorNotFound) && !errors.Is(err, ErrEnvClosed) {
			return nil, err
		}
		// torn down between upgrade and acquire; take the general path
	}
	addr, hops := ref.Address(), ref.Proxy().Remaining()
	if d.table != nil {
		addr, hops = d.table.Route(ref)
	}
	log.WithFields(log.Fields{
		"addr": addr,
		"uid":  ref.UID(),
		"hops": len(hops),
	}).Debug("dispatching via transport")
	return d.transport.Send(ctx, addr, hops, ref.UID(), e)
}

// Call invokes method on the actor named by ref. Invocation metadata
// comes from the handle's cache; on a miss the resolver is consulted
// once per (actor, method) even under concurrent misses, and the
// result is memoized on the handle. Without a resolver every call is
// treated as a plain request/response - the cache is an optimization,
// never a correctness dependency.
func (d *Dispatcher) Call(ctx context.Context, ref *ActorRef, method string, params interface{}) (interface{}, error) {
	info, ok := ref.ResolveMethod(method)
	if !ok {
		info = MethodInfo{Name: method, Kind: MethodCall, Arity: -1}
		if d.resolver != nil {
			v, err, _ := d.inflight.Do(ref.ID().String()+"#"+method, func() (interface{}, error) {
				return d.resolver.Lookup(ctx, ref, method)
			})
			if err != nil {
				return nil, err
			}
			info = v.(MethodInfo)
		}
		ref.PutMethod(info)
	}

	rsp, err := d.send(ctx, ref, Envelope{Method: info.Name, Payload: params})
	if err != nil {
		return nil, err
	}
	if info.Kind == MethodTell || info.OneWay {
		return nil, nil
	}
	return rsp, nil
}
