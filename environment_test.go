// environment_test
package actor

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func testEnv(t *testing.T) *Environment {
	t.Helper()
	env, err := NewEnvironment("inproc://test")
	require.NoError(t, err)
	t.Cleanup(env.Close)
	return env
}

func TestEnvironmentRejectsEmptyAddress(t *testing.T) {
	_, err := NewEnvironment("")
	assert.True(t, errors.Is(err, ErrInvalidAddress))
}

func TestRegisterUnregisterErrors(t *testing.T) {
	env := testEnv(t)
	uid := NamedUID("a")

	require.NoError(t, env.Register(uid))
	assert.True(t, errors.Is(env.Register(uid), ErrDuplicateActor))

	require.NoError(t, env.Unregister(uid))
	assert.True(t, errors.Is(env.Unregister(uid), ErrActorNotFound))
}

func TestAcquireUnknownUID(t *testing.T) {
	env := testEnv(t)

	_, err := env.Acquire(context.Background(), NamedUID("ghost"))
	assert.True(t, errors.Is(err, ErrActorNotFound))
}

// N concurrent submissions to one actor must run as N sequential,
// non-overlapping critical sections in submission order.
func TestFIFOOrderingAndMutualExclusion(t *testing.T) {
	env := testEnv(t)
	uid := NamedUID("a")
	require.NoError(t, env.Register(uid))

	// hold the lock so submissions queue behind us in a known order
	hold, err := env.Acquire(WithCaller(context.Background()), uid)
	require.NoError(t, err)

	const n = 8
	var mu sync.Mutex
	var order []int
	inFlight := 0

	var g errgroup.Group
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			release, err := env.Acquire(context.Background(), uid)
			if err != nil {
				return err
			}
			defer release()
			mu.Lock()
			inFlight++
			if inFlight != 1 {
				mu.Unlock()
				return errors.New("overlapping critical sections")
			}
			order = append(order, i)
			inFlight--
			mu.Unlock()
			return nil
		})
		// wait for waiter i to be queued before submitting i+1
		require.Eventually(t, func() bool {
			return env.waiters(uid) == i+1
		}, time.Second, time.Millisecond)
	}

	hold()
	require.NoError(t, g.Wait())

	for i := 0; i < n; i++ {
		assert.Equal(t, i, order[i])
	}
}

// messages to a different actor may overlap with A's critical section
func TestDistinctActorsRunConcurrently(t *testing.T) {
	env := testEnv(t)
	a, b := NamedUID("a"), NamedUID("b")
	require.NoError(t, env.Register(a))
	require.NoError(t, env.Register(b))

	holdA, err := env.Acquire(context.Background(), a)
	require.NoError(t, err)
	defer holdA()

	// B proceeds while A's lock is held
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	releaseB, err := env.Acquire(ctx, b)
	require.NoError(t, err)
	releaseB()
}

func TestSelfCallReentrancy(t *testing.T) {
	env := testEnv(t)
	uid := NamedUID("a")
	require.NoError(t, env.Register(uid))

	var steps []string
	var mu sync.Mutex
	record := func(s string) {
		mu.Lock()
		steps = append(steps, s)
		mu.Unlock()
	}

	otherDone := make(chan error, 1)
	_, err := env.Dispatch(context.Background(), uid, func(ctx context.Context) (interface{}, error) {
		// an unrelated sender queues up mid-message
		go func() {
			_, err := env.Dispatch(context.Background(), uid, func(context.Context) (interface{}, error) {
				record("other")
				return nil, nil
			})
			otherDone <- err
		}()
		require.Eventually(t, func() bool {
			return env.waiters(uid) == 1
		}, time.Second, time.Millisecond)

		// self-call through the same context re-enters without deadlock
		_, err := env.Dispatch(ctx, uid, func(context.Context) (interface{}, error) {
			record("inner")
			return nil, nil
		})
		require.NoError(t, err)
		record("outer done")
		return nil, nil
	})
	require.NoError(t, err)
	require.NoError(t, <-otherDone)

	// the unrelated sender never interleaves inside the outer section
	assert.Equal(t, []string{"inner", "outer done", "other"}, steps)
}

// a cancelled waiter leaves the queue without disturbing FIFO order
// for the remaining waiters
func TestCancelledWaiterPreservesOrder(t *testing.T) {
	env := testEnv(t)
	uid := NamedUID("a")
	require.NoError(t, env.Register(uid))

	hold, err := env.Acquire(context.Background(), uid)
	require.NoError(t, err)

	var mu sync.Mutex
	var order []string
	run := func(name string, done chan error) {
		release, err := env.Acquire(context.Background(), uid)
		if err != nil {
			done <- err
			return
		}
		mu.Lock()
		order = append(order, name)
		mu.Unlock()
		release()
		done <- nil
	}

	doneA, doneC := make(chan error, 1), make(chan error, 1)
	go run("a", doneA)
	require.Eventually(t, func() bool { return env.waiters(uid) == 1 }, time.Second, time.Millisecond)

	ctxB, cancelB := context.WithCancel(context.Background())
	errB := make(chan error, 1)
	go func() {
		_, err := env.Acquire(ctxB, uid)
		errB <- err
	}()
	require.Eventually(t, func() bool { return env.waiters(uid) == 2 }, time.Second, time.Millisecond)

	go run("c", doneC)
	require.Eventually(t, func() bool { return env.waiters(uid) == 3 }, time.Second, time.Millisecond)

	// cancel the middle waiter before it is granted
	cancelB()
	assert.True(t, errors.Is(<-errB, context.Canceled))
	require.Eventually(t, func() bool { return env.waiters(uid) == 2 }, time.Second, time.Millisecond)

	hold()
	require.NoError(t, <-doneA)
	require.NoError(t, <-doneC)
	assert.Equal(t, []string{"a", "c"}, order)
}

// a waiter whose context expires before the grant observes the
// context error, not the critical section
func TestAcquireTimeout(t *testing.T) {
	env := testEnv(t)
	uid := NamedUID("a")
	require.NoError(t, env.Register(uid))

	hold, err := env.Acquire(context.Background(), uid)
	require.NoError(t, err)
	defer hold()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = env.Acquire(ctx, uid)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

// unregister fails queued waiters instead of blocking them forever
func TestUnregisterWakesWaiters(t *testing.T) {
	env := testEnv(t)
	uid := NamedUID("a")
	require.NoError(t, env.Register(uid))

	hold, err := env.Acquire(context.Background(), uid)
	require.NoError(t, err)
	defer hold()

	waiterErr := make(chan error, 1)
	go func() {
		_, err := env.Acquire(context.Background(), uid)
		waiterErr <- err
	}()
	require.Eventually(t, func() bool { return env.waiters(uid) == 1 }, time.Second, time.Millisecond)

	require.NoError(t, env.Unregister(uid))
	assert.True(t, errors.Is(<-waiterErr, ErrActorNotFound))
}

func TestDispatchReleasesOnError(t *testing.T) {
	env := testEnv(t)
	uid := NamedUID("a")
	require.NoError(t, env.Register(uid))

	boom := errors.New("boom")
	_, err := env.Dispatch(context.Background(), uid, func(context.Context) (interface{}, error) {
		return nil, boom
	})
	assert.True(t, errors.Is(err, boom))

	// the lock must be free again
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	release, err := env.Acquire(ctx, uid)
	require.NoError(t, err)
	release()
}

func TestCloseRejectsFurtherOperations(t *testing.T) {
	env, err := NewEnvironment("inproc://closing")
	require.NoError(t, err)
	uid := NamedUID("a")
	require.NoError(t, env.Register(uid))

	hold, err := env.Acquire(context.Background(), uid)
	require.NoError(t, err)
	defer hold()

	waiterErr := make(chan error, 1)
	go func() {
		_, err := env.Acquire(context.Background(), uid)
		waiterErr <- err
	}()
	require.Eventually(t, func() bool { return env.waiters(uid) == 1 }, time.Second, time.Millisecond)

	env.Close()
	assert.True(t, errors.Is(<-waiterErr, ErrActorNotFound))

	assert.True(t, errors.Is(env.Register(NamedUID("b")), ErrEnvClosed))
	_, err = env.Acquire(context.Background(), uid)
	assert.True(t, errors.Is(err, ErrEnvClosed))
	_, err = env.Adopt(NamedUID("b"), nil)
	assert.True(t, errors.Is(err, ErrEnvClosed))
}

func TestLifecycleEvents(t *testing.T) {
	var mu sync.Mutex
	var seen []string
	env, err := BuildEnvironment("inproc://events").
		WithSubscriber(ActorLifecycle, func(e BusEvent) {
			mu.Lock()
			seen = append(seen, e.Data.(string))
			mu.Unlock()
		}).
		Run()
	require.NoError(t, err)
	defer env.Close()

	uid := NamedUID("a")
	require.NoError(t, env.Register(uid))
	require.NoError(t, env.Unregister(uid))

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, seen, 2)
	assert.Equal(t, "name:a registered", seen[0])
	assert.Equal(t, "name:a unregistered", seen[1])
}
