// actorBase
package actor

// BaseActor binds an actor instance to its address, uid and owning
// environment for the instance's lifetime. Business actors embed it
// and implement Receiver; the embedded value is produced by
// Environment.Adopt and carries the generation that makes the local
// fast path safe.
type BaseActor struct {
	address Address
	uid     UID
	gen     uint64
	env     *Environment
}

// Address returns the address hosting this actor.
func (a *BaseActor) Address() Address {
	return a.address
}

// UID returns this actor's identifier.
func (a *BaseActor) UID() UID {
	return a.uid
}

// Ref synthesizes this actor's own handle. Because it is constructed
// from within the owning process it is the local variant: dispatch
// through it takes the fast path while the instance is resident, and
// falls back to the general path once it is not. A handle for a
// non-resident actor is built with NewActorRef from (address, uid)
// alone.
func (a *BaseActor) Ref() *ActorRef {
	ref, _ := NewActorRef(a.address, a.uid)
	ref.link = &localLink{env: a.env, gen: a.gen}
	return ref
}
