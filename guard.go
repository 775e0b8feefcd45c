package keystate

import "sync/atomic"

// guard is the dispatch guard. It tracks which goroutine, if any, owns the
// dispatch critical section and whether the reducer is currently executing
// on it. Per-goroutine state machine: Idle -> Reducing -> Idle, the
// transition back guaranteed even when the reducer panics.
//
// Only the owning goroutine can ever observe owner == its own id, so the
// separate owner/reducing loads are consistent for the case that matters.
type guard struct {
	owner    atomic.Int64 // goroutine inside the critical section, 0 if none
	reducing atomic.Bool  // true while the reducer runs on owner
}

// enter marks gid as the owner of the critical section.
// Called with the dispatch mutex held.
func (g *guard) enter(gid int64) {
	g.owner.Store(gid)
}

// exit clears critical-section ownership.
func (g *guard) exit() {
	g.owner.Store(0)
}

// beginReduce marks the owner as executing the reducer.
func (g *guard) beginReduce() {
	g.reducing.Store(true)
}

// endReduce clears the reducing mark. Paired with beginReduce on every
// path, including reducer panic.
func (g *guard) endReduce() {
	g.reducing.Store(false)
}

// check rejects op when the calling goroutine is currently inside the
// reducer on this store.
func (g *guard) check(op string, gid int64) error {
	if g.reducing.Load() && g.owner.Load() == gid {
		return &ReentrancyError{Op: op, Goroutine: gid, InReducer: true}
	}
	return nil
}

// checkDispatch rejects Dispatch when the calling goroutine already owns
// the critical section: from the reducer it is a reentrancy fault, and from
// a subscriber notification it would self-deadlock on the dispatch mutex.
func (g *guard) checkDispatch(gid int64) error {
	if g.owner.Load() != gid {
		return nil
	}
	return &ReentrancyError{Op: "dispatch", Goroutine: gid, InReducer: g.reducing.Load()}
}
