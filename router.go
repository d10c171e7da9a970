// router
package actor

import (
	"strings"
	"sync"
)

// RouteRule inspects a final delivery address and returns the proxy
// hop it should be relayed through, if any.
type RouteRule func(Address) (Address, bool)

// AddressTable holds the routing knowledge a process accumulates from
// its supervisor: a mapping from external addresses to the internal
// addresses they are actually reachable at, and an ordered list of
// proxy rules for destinations that must be relayed through a
// gateway. Rules are tried in the order added; the first match wins.
type AddressTable struct {
	sync.Mutex
	mapping map[Address]Address
	rules   []RouteRule
}

// NewAddressTable returns an empty table.
func NewAddressTable() *AddressTable {
	return &AddressTable{mapping: make(map[Address]Address)}
}

// SetMapping records that external is reachable at internal.
func (t *AddressTable) SetMapping(external, internal Address) {
	t.Lock()
	t.mapping[external] = internal
	t.Unlock()
}

// RemoveMapping forgets an external address.
func (t *AddressTable) RemoveMapping(external Address) {
	t.Lock()
	delete(t.mapping, external)
	t.Unlock()
}

// Resolve returns the internal address for addr, or addr itself when
// no mapping is known.
func (t *AddressTable) Resolve(addr Address) Address {
	t.Lock()
	defer t.Unlock()
	if internal, ok := t.mapping[addr]; ok {
		return internal
	}
	return addr
}

// AddRule appends a proxy rule.
func (t *AddressTable) AddRule(fn RouteRule) *AddressTable {
	t.Lock()
	t.rules = append(t.rules, fn)
	t.Unlock()
	return t
}

// AddProxy is a convenience rule: addresses with the given prefix
// are relayed through via.
func (t *AddressTable) AddProxy(prefix string, via Address) *AddressTable {
	return t.AddRule(func(addr Address) (Address, bool) {
		if strings.HasPrefix(string(addr), prefix) {
			return via, true
		}
		return "", false
	})
}

// Route returns the delivery address and hop chain the dispatcher
// should hand to the transport for ref: the handle's own untraversed
// hops, with any rule-matched gateway hop prepended.
func (t *AddressTable) Route(ref *ActorRef) (Address, []Address) {
	addr := ref.Address()
	hops := ref.Proxy().Remaining()

	t.Lock()
	rules := make([]RouteRule, len(t.rules))
	copy(rules, t.rules)
	t.Unlock()

	for _, rule := range rules {
		if via, ok := rule(addr); ok {
			hops = append([]Address{via}, hops...)
			break
		}
	}
	return addr, hops
}
