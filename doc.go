// actor project doc.go

/*
The actor package is the addressing, reference-resolution and
concurrency-control core of an actor runtime: it decides which actor a
message goes to, how that actor is reached, and how concurrent
deliveries to one actor are serialized without blocking the rest.

Actors are named by an ActorRef - a serializable handle carrying the
target's address, its uid within that address, and the proxy hops a
message must traverse to get there. A handle held by a caller in the
same process as the target resolves to a direct in-process invocation;
any other handle falls back to a Transport. Callers never need to know
which path ran.

Each process hosts one Environment, which owns an exclusive execution
lock per resident actor. Every delivery - fast path or transport -
runs inside the target's lock, so an actor handles one message at a
time in submission order while unrelated actors run concurrently.
Locks are re-entrant per logical caller, so an actor calling its own
methods mid-message does not deadlock.

The Environment also owns this address's transfer registries: large
buffers and file-like streams are registered once, named by a
TransferRef, fetched any number of times, and explicitly released,
keeping bulk payloads off the general message path.

The package consumes its collaborators through narrow interfaces: a
Transport moves messages between addresses (an in-process one is
included), and a MethodResolver supplies invocation metadata on
method-cache misses. Process supervision, wire encoding and payload
serialization live outside.
*/
package actor
