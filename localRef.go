// localRef
package actor

// localLink is the non-owning connection from an in-process handle
// to the actor instance it names. It holds the owning environment
// and the generation token issued when the instance was adopted;
// the instance itself lives only in the environment's slot table,
// so a link never extends the instance's lifetime.
type localLink struct {
	env *Environment
	gen uint64
}

// Local reports whether the handle was minted in-process and may be
// eligible for the fast path. Handles received over the wire are
// never local, even when their address matches this process.
func (ref *ActorRef) Local() bool {
	return ref.link != nil
}

// Upgrade attempts to turn the handle's weak link into a strong
// reference to the target instance for the duration of a single
// dispatch. ok is false when the handle is not local, the instance
// has been torn down, or the uid has been re-adopted under a newer
// generation - in every such case the caller must fall back to the
// general dispatch path. Upgrade failure is a routing signal, not
// an error.
//
// The returned Receiver must not be retained beyond the dispatch
// that requested it.
func (ref *ActorRef) Upgrade() (Receiver, bool) {
	if ref.link == nil {
		return nil, false
	}
	return ref.link.env.upgrade(ref.uid, ref.link.gen)
}
