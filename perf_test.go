// perf_test
package actor

import (
	"context"
	"testing"
)

func BenchmarkLocalFastPath(b *testing.B) {
	env, err := NewEnvironment("inproc://bench")
	if err != nil {
		b.Fatal(err)
	}
	defer env.Close()

	a := &greeter{}
	base, err := env.Adopt(NamedUID("greeter"), a)
	if err != nil {
		b.Fatal(err)
	}
	a.BaseActor = base

	d, err := BuildDispatcher(NewInprocTransport(nil)).Run()
	if err != nil {
		b.Fatal(err)
	}
	ref := base.Ref()
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := d.Send(ctx, ref, "world"); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkGeneralPath(b *testing.B) {
	env, err := NewEnvironment("inproc://bench")
	if err != nil {
		b.Fatal(err)
	}
	defer env.Close()

	a := &greeter{}
	base, err := env.Adopt(NamedUID("greeter"), a)
	if err != nil {
		b.Fatal(err)
	}
	a.BaseActor = base

	transport := NewInprocTransport(nil)
	if err := transport.Attach(env); err != nil {
		b.Fatal(err)
	}
	d, err := BuildDispatcher(transport).Run()
	if err != nil {
		b.Fatal(err)
	}

	// a deserialized handle never qualifies for the fast path
	ref, err := NewActorRef(env.Address(), NamedUID("greeter"))
	if err != nil {
		b.Fatal(err)
	}
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := d.Send(ctx, ref, "world"); err != nil {
			b.Fatal(err)
		}
	}
}
