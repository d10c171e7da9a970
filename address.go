// address
package actor

import (
	"fmt"

	"github.com/google/uuid"
)

// Address is the location of a pool of actors or resources - a
// process-local token or a host:port style endpoint. Addresses are
// opaque to this package; the only constraint is that a handle's
// address must be non-empty. By convention values carry a scheme,
// e.g. "inproc://0" or "pool://10.0.0.1:9555".
type Address string

// IsValid reports whether the address can be used to construct a handle.
func (a Address) IsValid() bool {
	return a != ""
}

// kinds of actor identifier
const (
	uidNamed = iota + 1
	uidToken
)

// UID identifies one actor within an address's namespace. It is a
// closed variant over the two identifier kinds: a caller-supplied
// name, or a runtime-generated token. UIDs are comparable and can
// be used directly as map keys.
type UID struct {
	kind  int
	name  string
	token uuid.UUID
}

// NamedUID returns the identifier for a named actor.
func NamedUID(name string) UID {
	return UID{kind: uidNamed, name: name}
}

// NewUID returns a fresh generated identifier for an anonymous actor.
func NewUID() UID {
	return UID{kind: uidToken, token: uuid.New()}
}

// IsZero reports whether the UID was never assigned.
func (u UID) IsZero() bool {
	return u.kind == 0
}

// Named reports whether the UID was caller-supplied.
func (u UID) Named() bool {
	return u.kind == uidNamed
}

func (u UID) String() string {
	switch u.kind {
	case uidNamed:
		return "name:" + u.name
	case uidToken:
		return "token:" + u.token.String()
	}
	return "<zero uid>"
}

// MarshalText encodes the UID in its String form.
func (u UID) MarshalText() ([]byte, error) {
	if u.IsZero() {
		return nil, fmt.Errorf("cannot marshal zero uid")
	}
	return []byte(u.String()), nil
}

// UnmarshalText decodes a UID from its String form.
func (u *UID) UnmarshalText(text []byte) error {
	s := string(text)
	switch {
	case len(s) >= 5 && s[:5] == "name:":
		*u = NamedUID(s[5:])
		return nil
	case len(s) > 6 && s[:6] == "token:":
		tok, err := uuid.Parse(s[6:])
		if err != nil {
			return err
		}
		*u = UID{kind: uidToken, token: tok}
		return nil
	}
	return fmt.Errorf("malformed uid %q", s)
}

// ID is the global identity of an actor: its address paired with
// its uid. Handle equality is defined on ID alone.
type ID struct {
	Address Address
	UID     UID
}

func (id ID) String() string {
	return string(id.Address) + "/" + id.UID.String()
}

// ProxyChain is the ordered list of intermediate addresses a message
// traverses before reaching its final address. Chains are append-only;
// routing advances a cursor over the hops, it never removes them.
type ProxyChain struct {
	hops   []Address
	cursor int
}

// NewProxyChain builds a chain from the given hops.
func NewProxyChain(hops ...Address) ProxyChain {
	c := ProxyChain{}
	if len(hops) > 0 {
		c.hops = append([]Address(nil), hops...)
	}
	return c
}

// Append returns a new chain with hop added after the existing hops.
// The receiver is not modified.
func (c ProxyChain) Append(hop Address) ProxyChain {
	hops := make([]Address, 0, len(c.hops)+1)
	hops = append(hops, c.hops...)
	hops = append(hops, hop)
	return ProxyChain{hops: hops, cursor: c.cursor}
}

// Advance returns the next hop to traverse and a chain whose cursor
// has moved past it. ok is false when every hop has been traversed
// and delivery should proceed to the final address.
func (c ProxyChain) Advance() (next Address, rest ProxyChain, ok bool) {
	if c.cursor >= len(c.hops) {
		return "", c, false
	}
	return c.hops[c.cursor], ProxyChain{hops: c.hops, cursor: c.cursor + 1}, true
}

// Hops returns a copy of every hop in the chain, traversed or not.
func (c ProxyChain) Hops() []Address {
	if len(c.hops) == 0 {
		return nil
	}
	return append([]Address(nil), c.hops...)
}

// Remaining returns a copy of the hops not yet traversed.
func (c ProxyChain) Remaining() []Address {
	if c.cursor >= len(c.hops) {
		return nil
	}
	return append([]Address(nil), c.hops[c.cursor:]...)
}

// Len returns the total number of hops.
func (c ProxyChain) Len() int {
	return len(c.hops)
}
