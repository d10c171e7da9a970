// lock
package actor

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// actorLock serializes message delivery to a single actor. Waiters
// are queued in arrival order and granted the lock one at a time,
// which is what gives per-actor FIFO delivery. The lock is re-entrant
// per caller token: a handler calling back into its own actor takes
// the lock again without queueing, and only the outermost release
// actually frees it.
type actorLock struct {
	mu    sync.Mutex
	owner uint64 // caller token holding the lock, 0 when free
	depth int
	queue []*lockWaiter
	gone  bool
}

type lockWaiter struct {
	token   uint64
	granted chan struct{}
	err     error // set before granted is closed
}

func newActorLock() *actorLock {
	return &actorLock{}
}

// acquire blocks until the caller holds the lock, the context is
// cancelled, or the lock is torn down. On success the caller must
// invoke the returned function on every exit path.
func (l *actorLock) acquire(ctx context.Context, token uint64) (func(), error) {
	l.mu.Lock()
	if l.gone {
		l.mu.Unlock()
		return nil, errors.Wrap(ErrActorNotFound, "acquire")
	}
	if l.owner == token {
		// re-entrant self-call
		l.depth++
		l.mu.Unlock()
		return func() { l.release(token) }, nil
	}
	if l.owner == 0 && len(l.queue) == 0 {
		l.owner = token
		l.depth = 1
		l.mu.Unlock()
		return func() { l.release(token) }, nil
	}
	w := &lockWaiter{token: token, granted: make(chan struct{})}
	l.queue = append(l.queue, w)
	l.mu.Unlock()

	select {
	case <-w.granted:
		if w.err != nil {
			return nil, w.err
		}
		return func() { l.release(token) }, nil
	case <-ctx.Done():
		return nil, l.cancel(w, ctx.Err())
	}
}

// cancel removes a pending waiter. If the grant raced the
// cancellation the lock is handed straight back, so the remaining
// queue is undisturbed either way.
func (l *actorLock) cancel(w *lockWaiter, cause error) error {
	l.mu.Lock()
	for i, q := range l.queue {
		if q == w {
			l.queue = append(l.queue[:i], l.queue[i+1:]...)
			l.mu.Unlock()
			return cause
		}
	}
	// not queued: the waiter was granted (or failed) before the
	// cancellation won the race. granted is already closed.
	<-w.granted
	if w.err == nil {
		l.grantNextLocked()
	}
	l.mu.Unlock()
	return cause
}

func (l *actorLock) release(token uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.gone {
		// torn down while held; nothing left to free
		return
	}
	if l.owner != token {
		log.WithFields(log.Fields{
			"owner": l.owner,
			"token": token,
		}).Warn("release by non-owner ignored")
		return
	}
	l.depth--
	if l.depth > 0 {
		return
	}
	l.grantNextLocked()
}

// grantNextLocked frees the lock and hands it to the head of the
// queue, if any. Caller holds l.mu.
func (l *actorLock) grantNextLocked() {
	l.owner = 0
	l.depth = 0
	if len(l.queue) == 0 {
		return
	}
	w := l.queue[0]
	l.queue = l.queue[1:]
	l.owner = w.token
	l.depth = 1
	close(w.granted)
}

// pending returns the current wait-queue length.
func (l *actorLock) pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queue)
}

// teardown fails every pending waiter and marks the lock dead. Any
// later acquire fails with ErrActorNotFound instead of blocking.
func (l *actorLock) teardown() {
	l.mu.Lock()
	l.gone = true
	l.owner = 0
	l.depth = 0
	for _, w := range l.queue {
		w.err = errors.Wrap(ErrActorNotFound, "lock torn down")
		close(w.granted)
	}
	l.queue = nil
	l.mu.Unlock()
}
