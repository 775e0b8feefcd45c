package keystate

import (
	"sync"
	"testing"
)

func TestRegistry_AddPreservesRegistrationOrder(t *testing.T) {
	r := newRegistry[counter]()

	subs := []*recordingSub{{}, {}, {}}
	ids := make([]string, len(subs))
	for i, s := range subs {
		ids[i] = r.add(s).ID()
	}

	snap := r.snapshot()
	if len(snap) != len(subs) {
		t.Fatalf("snapshot length = %d, want %d", len(snap), len(subs))
	}
	for i, e := range snap {
		if e.id != ids[i] {
			t.Errorf("snapshot[%d].id = %q, want %q", i, e.id, ids[i])
		}
	}
}

func TestRegistry_RemoveUnknown(t *testing.T) {
	r := newRegistry[counter]()
	if r.remove("missing") {
		t.Error("remove(unknown) = true, want false")
	}
}

func TestRegistry_SnapshotImmuneToMutation(t *testing.T) {
	r := newRegistry[counter]()

	h1 := r.add(&recordingSub{})
	r.add(&recordingSub{})

	snap := r.snapshot()
	if !r.remove(h1.ID()) {
		t.Fatal("remove(known) = false, want true")
	}

	// The earlier snapshot still holds both entries.
	if len(snap) != 2 {
		t.Errorf("old snapshot length = %d, want 2", len(snap))
	}
	if got := r.count(); got != 1 {
		t.Errorf("count() = %d, want 1", got)
	}
}

func TestRegistry_ConcurrentAddRemove(t *testing.T) {
	r := newRegistry[counter]()

	const perG = 100
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perG; j++ {
				h := r.add(&recordingSub{})
				// Interleave with snapshot reads.
				_ = r.snapshot()
				r.remove(h.ID())
			}
		}()
	}
	wg.Wait()

	if got := r.count(); got != 0 {
		t.Errorf("count() after balanced add/remove = %d, want 0", got)
	}
}
