package keystate

import (
	"errors"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"github.com/dshills/keystate/internal/goid"
)

// Store is a thread-safe, single-writer state container. S is the state
// type, C the command type. All methods are safe for concurrent use; at
// most one reducer invocation is in flight per store at any time.
//
// The zero value is not usable; construct stores with New.
type Store[S, C any] struct {
	reducer Reducer[S]
	cfg     config

	// mu serializes dispatch: reducer execution, state publish and
	// subscriber notification all happen inside it, so every subscriber
	// observes committed states in commit order.
	mu    sync.Mutex
	state atomic.Pointer[S]
	reg   *registry[S]
	guard guard

	dispatches        atomic.Uint64
	transitions       atomic.Uint64
	noOps             atomic.Uint64
	notifications     atomic.Uint64
	commandsSent      atomic.Uint64
	commandsDelivered atomic.Uint64
	reentrancyFaults  atomic.Uint64
	reducerFaults     atomic.Uint64
}

// New creates a store holding initial and transitioning through reducer.
// The store owns its state cell for its whole lifetime; callers only ever
// see snapshots. Panics if reducer is nil.
func New[S, C any](initial S, reducer Reducer[S], opts ...Option) *Store[S, C] {
	if reducer == nil {
		panic(ErrNilReducer)
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	s := &Store[S, C]{
		reducer: reducer,
		cfg:     cfg,
		reg:     newRegistry[S](),
	}
	s.state.Store(&initial)
	return s
}

// Dispatch submits an action for processing. It blocks until the reducer
// has run and, on commit, every subscriber has been notified with the new
// state. If the reducer result is value-equal to the current state the
// transition is a no-op. Returns the action unchanged for chaining.
//
// Dispatch fails with ErrReentrantCall when called from inside the reducer
// or from inside a subscriber notification on the dispatching goroutine,
// and with ErrReducerFault (a *ReducerError) when the reducer panics; a
// faulted reducer leaves the state unchanged and the store usable.
func (s *Store[S, C]) Dispatch(action Action) (Action, error) {
	gid := goid.ID()
	if err := s.guard.checkDispatch(gid); err != nil {
		s.reentrancyFaults.Add(1)
		return action, err
	}
	s.tracef("dispatch", gid, "action=%v", action)

	s.mu.Lock()
	s.guard.enter(gid)
	defer func() {
		s.guard.exit()
		s.mu.Unlock()
	}()

	s.dispatches.Add(1)
	prev := *s.state.Load()

	next, err := s.reduce(prev, action)
	if err != nil {
		s.reducerFaults.Add(1)
		return action, err
	}

	if s.cfg.equal(prev, next) {
		s.noOps.Add(1)
		return action, nil
	}

	committed := next
	s.state.Store(&committed)
	s.transitions.Add(1)

	// Publish before snapshotting the registry: a subscriber the snapshot
	// misses was added afterwards and reads the committed state itself
	// (see Subscribe).
	for _, e := range s.reg.snapshot() {
		e.sub.OnNewState(committed)
		s.notifications.Add(1)
	}
	return action, nil
}

// reduce runs the reducer inside the guard's reducing window. Panics are
// captured so the guard is always released and no partial state escapes.
func (s *Store[S, C]) reduce(prev S, action Action) (next S, err error) {
	s.guard.beginReduce()
	defer s.guard.endReduce()
	defer func() {
		if r := recover(); r != nil {
			err = &ReducerError{Action: action, Value: r, Stack: debug.Stack()}
		}
	}()
	return s.reducer.Reduce(prev, action), nil
}

// State returns the latest published state snapshot. Concurrent readers
// always see a fully-formed, previously-published value.
func (s *Store[S, C]) State() (S, error) {
	gid := goid.ID()
	if err := s.guard.check("getState", gid); err != nil {
		s.reentrancyFaults.Add(1)
		var zero S
		return zero, err
	}
	return *s.state.Load(), nil
}

// Subscribe registers a subscriber and synchronously delivers exactly one
// OnNewState call with the current state before returning the handle, even
// if no dispatch has ever occurred.
func (s *Store[S, C]) Subscribe(sub Subscriber[S]) (*Subscription, error) {
	gid := goid.ID()
	if err := s.guard.check("subscribe", gid); err != nil {
		s.reentrancyFaults.Add(1)
		return nil, err
	}
	if sub == nil {
		return nil, ErrNilSubscriber
	}
	s.tracef("subscribe", gid, "")

	handle := s.reg.add(sub)

	// Register first, read second: a concurrent dispatch whose registry
	// snapshot missed this subscriber committed before the add, so the
	// load below observes that state.
	current := *s.state.Load()
	sub.OnNewState(current)
	s.notifications.Add(1)

	return handle, nil
}

// Unsubscribe removes the subscriber identified by handle. Removing an
// unknown, already-removed or nil handle is a no-op.
func (s *Store[S, C]) Unsubscribe(handle *Subscription) error {
	gid := goid.ID()
	if err := s.guard.check("unsubscribe", gid); err != nil {
		s.reentrancyFaults.Add(1)
		return err
	}
	if handle == nil {
		return nil
	}
	s.tracef("unsubscribe", gid, "id=%s", handle.id)

	s.reg.remove(handle.id)
	return nil
}

// SendCommand delivers cmd to every currently-registered subscriber that
// implements CommandSubscriber, in registration order, exactly once per
// call. Commands bypass the reducer and never mutate state. Returns the
// command unchanged for chaining.
//
// Under WithStrictCommands, every subscriber lacking a command handler
// contributes a *MissingHandlerError to the returned (joined) error;
// delivery to the remaining subscribers is unaffected.
func (s *Store[S, C]) SendCommand(cmd C) (C, error) {
	gid := goid.ID()
	if err := s.guard.check("sendCommand", gid); err != nil {
		s.reentrancyFaults.Add(1)
		return cmd, err
	}
	s.tracef("sendCommand", gid, "command=%v", cmd)
	s.commandsSent.Add(1)

	var errs []error
	for _, e := range s.reg.snapshot() {
		cs, ok := e.sub.(CommandSubscriber[S, C])
		if !ok {
			if s.cfg.strictCommands {
				errs = append(errs, &MissingHandlerError{SubscriptionID: e.id, Command: cmd})
			}
			continue
		}
		cs.OnCommandReceived(cmd)
		s.commandsDelivered.Add(1)
	}
	return cmd, errors.Join(errs...)
}

// Stats returns current store statistics.
func (s *Store[S, C]) Stats() Stats {
	return Stats{
		Dispatches:        s.dispatches.Load(),
		Transitions:       s.transitions.Load(),
		NoOps:             s.noOps.Load(),
		Notifications:     s.notifications.Load(),
		CommandsSent:      s.commandsSent.Load(),
		CommandsDelivered: s.commandsDelivered.Load(),
		ReentrancyFaults:  s.reentrancyFaults.Load(),
		ReducerFaults:     s.reducerFaults.Load(),
		Subscribers:       s.reg.count(),
	}
}
