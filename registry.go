package keystate

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// Subscription identifies a registered subscriber for later removal.
// Unsubscribing an unknown or already-removed subscription is a no-op.
type Subscription struct {
	id string
}

// ID returns the unique subscription identifier.
func (s *Subscription) ID() string {
	return s.id
}

// entry pairs a subscriber with its subscription id. Entries are kept in
// registration order.
type entry[S any] struct {
	id  string
	sub Subscriber[S]
}

// registry is a copy-on-write subscriber collection: one mutable slot
// holding an immutable slice. Every add/remove swaps in a new slice, and
// every notification pass reads one snapshot and iterates it, immune to
// concurrent mutation.
type registry[S any] struct {
	mu   sync.Mutex // serializes writers
	snap atomic.Pointer[[]entry[S]]
}

// newRegistry creates an empty registry.
func newRegistry[S any]() *registry[S] {
	r := &registry[S]{}
	r.snap.Store(&[]entry[S]{})
	return r
}

// add registers a subscriber and returns its subscription handle.
func (r *registry[S]) add(sub Subscriber[S]) *Subscription {
	r.mu.Lock()
	defer r.mu.Unlock()

	old := *r.snap.Load()
	next := make([]entry[S], len(old), len(old)+1)
	copy(next, old)

	id := uuid.NewString()
	next = append(next, entry[S]{id: id, sub: sub})
	r.snap.Store(&next)

	return &Subscription{id: id}
}

// remove deletes the subscription with the given id.
// Returns false if the id is unknown.
func (r *registry[S]) remove(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	old := *r.snap.Load()
	for i, e := range old {
		if e.id != id {
			continue
		}
		next := make([]entry[S], 0, len(old)-1)
		next = append(next, old[:i]...)
		next = append(next, old[i+1:]...)
		r.snap.Store(&next)
		return true
	}
	return false
}

// snapshot returns the current immutable entry slice, in registration
// order. Callers must not modify it.
func (r *registry[S]) snapshot() []entry[S] {
	return *r.snap.Load()
}

// count returns the number of registered subscribers.
func (r *registry[S]) count() int {
	return len(*r.snap.Load())
}
