package keystate

// Action describes something that happened. Actions carry no behavior;
// the reducer decides what, if anything, they mean for the state.
type Action = any

// Reducer computes the next state from the current state and an action.
// Implementations must be pure: no side effects, and never a call back
// into the store that invoked them.
type Reducer[S any] interface {
	// Reduce returns the state that results from applying action to state.
	Reduce(state S, action Action) S
}

// ReducerFunc is a function adapter for Reducer.
type ReducerFunc[S any] func(state S, action Action) S

// Reduce implements the Reducer interface.
func (f ReducerFunc[S]) Reduce(state S, action Action) S {
	return f(state, action)
}

// Subscriber receives state change notifications from a store.
type Subscriber[S any] interface {
	// OnNewState is called with the freshly committed state. It runs
	// synchronously on the dispatching goroutine, so it should be quick.
	OnNewState(state S)
}

// SubscriberFunc is a function adapter for Subscriber.
type SubscriberFunc[S any] func(state S)

// OnNewState implements the Subscriber interface.
func (f SubscriberFunc[S]) OnNewState(state S) {
	f(state)
}

// CommandSubscriber is a Subscriber that also receives commands.
// Subscribers that do not implement it are skipped during command
// delivery (or faulted, under WithStrictCommands).
type CommandSubscriber[S, C any] interface {
	Subscriber[S]

	// OnCommandReceived is called once per SendCommand for each
	// registered command subscriber. Commands never touch state.
	OnCommandReceived(cmd C)
}

// EqualFunc reports whether two states are value-equal. A dispatch whose
// reducer result is equal to the current state commits nothing and
// notifies nobody. The arguments are always two values of the store's
// state type.
type EqualFunc func(a, b any) bool

// Dispatcher is the capability handed to asynchronous tasks: dispatch and
// read, nothing else. *Store satisfies it.
type Dispatcher[S any] interface {
	// Dispatch submits an action for processing.
	Dispatch(action Action) (Action, error)

	// State returns the latest published state snapshot.
	State() (S, error)
}

// Stats contains store statistics.
type Stats struct {
	// Dispatches is the total number of Dispatch calls that entered the
	// critical section.
	Dispatches uint64

	// Transitions is the number of dispatches that committed a new state.
	Transitions uint64

	// NoOps is the number of dispatches whose result was value-equal to
	// the prior state.
	NoOps uint64

	// Notifications is the total number of OnNewState calls made.
	Notifications uint64

	// CommandsSent is the total number of SendCommand calls.
	CommandsSent uint64

	// CommandsDelivered is the total number of OnCommandReceived calls made.
	CommandsDelivered uint64

	// ReentrancyFaults is the number of operations rejected by the
	// dispatch guard.
	ReentrancyFaults uint64

	// ReducerFaults is the number of dispatches aborted by a reducer panic.
	ReducerFaults uint64

	// Subscribers is the current number of registered subscribers.
	Subscribers int
}
