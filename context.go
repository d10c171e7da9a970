// context
package actor

import (
	"context"

	"go.uber.org/atomic"
)

// Re-entrant lock acquisition needs a stable identity for the logical
// execution context doing the acquiring, so that an actor calling one
// of its own methods mid-message does not deadlock against its own
// lock. Goroutines carry no usable identity, so the runtime stamps a
// caller token into the context at the dispatch entry point and every
// nested acquire under that context is recognized as the same caller.

type callerKey struct{}

var callerTokens atomic.Uint64

// WithCaller returns a context stamped with a fresh caller token.
// Environment.Dispatch stamps automatically; direct users of Acquire
// only need this when they want re-entrancy across nested acquires.
func WithCaller(ctx context.Context) context.Context {
	return context.WithValue(ctx, callerKey{}, nextCallerToken())
}

func nextCallerToken() uint64 {
	return callerTokens.Inc()
}

// callerToken returns the token stamped into ctx, or zero.
func callerToken(ctx context.Context) uint64 {
	tok, _ := ctx.Value(callerKey{}).(uint64)
	return tok
}
