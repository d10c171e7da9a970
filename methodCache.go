// methodCache
package actor

import (
	"sync"
)

// kinds of invocation metadata
const (
	// MethodTell is a one-way invocation with no response.
	MethodTell = iota
	// MethodCall is a request/response invocation.
	MethodCall
	// MethodStream is an invocation whose response arrives as a
	// sequence of chunks through a transfer reference.
	MethodStream
)

// MethodInfo is the resolved invocation metadata for one method on
// a remote actor. It is a tagged union over the known invocation
// shapes; Kind selects which of the optional fields are meaningful.
type MethodInfo struct {
	Name string
	Kind int
	// OneWay call sites do not wait for a response even when the
	// method kind is MethodCall.
	OneWay bool
	// Arity is the declared parameter count, or -1 when variadic.
	Arity int
}

// methodCache memoizes method name -> MethodInfo per handle. It is
// purely an optimization layer: a miss is a normal outcome, and the
// whole cache can be discarded at any time without affecting
// observable behavior. Never serialized.
type methodCache struct {
	sync.RWMutex
	methods map[string]MethodInfo
}

func newMethodCache() *methodCache {
	return &methodCache{}
}

// lookup returns the cached metadata, if any.
func (c *methodCache) lookup(name string) (MethodInfo, bool) {
	c.RLock()
	defer c.RUnlock()
	info, ok := c.methods[name]
	return info, ok
}

// put stores metadata fetched by the dispatch layer.
func (c *methodCache) put(info MethodInfo) {
	c.Lock()
	if c.methods == nil {
		c.methods = make(map[string]MethodInfo)
	}
	c.methods[info.Name] = info
	c.Unlock()
}

// clear drops every cached entry.
func (c *methodCache) clear() {
	c.Lock()
	c.methods = nil
	c.Unlock()
}
