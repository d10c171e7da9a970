// actorRef
package actor

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// ActorRef is the handle callers use to reach an actor: the target's
// address and uid, plus the proxy hops a message must traverse to get
// there. Handles are logically immutable - the only mutable piece is
// the method cache, which is pure memoization and may be discarded at
// any time.
//
// Two handles name the same actor iff their (address, uid) pairs are
// equal; proxy hops and cache contents never participate in identity.
type ActorRef struct {
	address Address
	uid     UID
	proxy   ProxyChain
	methods *methodCache
	link    *localLink // non-nil only for handles minted in-process
}

// NewActorRef creates a handle for the actor uid at address, routed
// through the given hops. An empty address is rejected here rather
// than at dispatch time.
func NewActorRef(address Address, uid UID, hops ...Address) (*ActorRef, error) {
	if !address.IsValid() {
		return nil, errors.Wrap(ErrInvalidAddress, "new actor ref")
	}
	return &ActorRef{
		address: address,
		uid:     uid,
		proxy:   NewProxyChain(hops...),
		methods: newMethodCache(),
	}, nil
}

// Address returns the final delivery address.
func (ref *ActorRef) Address() Address {
	return ref.address
}

// UID returns the actor identifier.
func (ref *ActorRef) UID() UID {
	return ref.uid
}

// ID returns the handle's identity pair.
func (ref *ActorRef) ID() ID {
	return ID{Address: ref.address, UID: ref.uid}
}

// Proxy returns the handle's proxy chain.
func (ref *ActorRef) Proxy() ProxyChain {
	return ref.proxy
}

// Equal reports whether both handles name the same actor. Proxy hops
// and method cache contents are ignored.
func (ref *ActorRef) Equal(other *ActorRef) bool {
	if ref == nil || other == nil {
		return ref == other
	}
	return ref.address == other.address && ref.uid == other.uid
}

// WithProxy returns a new handle that relays through hop after the
// hops already present. The receiver is not modified; the new handle
// starts with an empty method cache.
func (ref *ActorRef) WithProxy(hop Address) *ActorRef {
	return &ActorRef{
		address: ref.address,
		uid:     ref.uid,
		proxy:   ref.proxy.Append(hop),
		methods: newMethodCache(),
	}
}

// ResolveMethod returns cached invocation metadata for name. A miss
// is the normal first-call outcome: the dispatch layer fetches the
// metadata out-of-band and stores it with PutMethod.
func (ref *ActorRef) ResolveMethod(name string) (MethodInfo, bool) {
	return ref.methods.lookup(name)
}

// PutMethod stores invocation metadata in the handle's cache.
func (ref *ActorRef) PutMethod(info MethodInfo) {
	ref.methods.put(info)
}

// ClearMethods discards the method cache. Safe at any time.
func (ref *ActorRef) ClearMethods() {
	ref.methods.clear()
}

func (ref *ActorRef) String() string {
	return "ref:" + ref.ID().String()
}

// wire form - exactly (address, uid, proxy hops). The method cache
// and the local link are process-local and rebuild empty.
type refWire struct {
	Address Address   `json:"address"`
	UID     UID       `json:"uid"`
	Proxy   []Address `json:"proxy,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (ref *ActorRef) MarshalJSON() ([]byte, error) {
	return json.Marshal(refWire{
		Address: ref.address,
		UID:     ref.uid,
		Proxy:   ref.proxy.Hops(),
	})
}

// UnmarshalJSON implements json.Unmarshaler. The decoded handle is
// always the remote variant with an empty method cache.
func (ref *ActorRef) UnmarshalJSON(data []byte) error {
	var w refWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if !w.Address.IsValid() {
		return errors.Wrap(ErrInvalidAddress, "decode actor ref")
	}
	ref.address = w.Address
	ref.uid = w.UID
	ref.proxy = NewProxyChain(w.Proxy...)
	ref.methods = newMethodCache()
	ref.link = nil
	return nil
}
