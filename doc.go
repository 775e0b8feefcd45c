// Package keystate provides a thread-safe, single-writer state container
// for Go applications.
//
// A Store holds one immutable state value and serializes every transition
// through a pure reducer function. Components observe the store instead of
// each other: the store is the single source of truth, and subscribers are
// notified synchronously whenever a dispatched action produces a state that
// differs from the current one.
//
// # Architecture
//
// The store is built from four small parts:
//
//   - State cell: one atomically-published snapshot of the current state.
//     Readers always see a fully-formed value, never a partial update.
//   - Dispatch guard: detects calls made from inside an in-flight reducer
//     (reentrancy) and fails them instead of deadlocking or corrupting state.
//   - Subscriber registry: a copy-on-write list iterated during notification,
//     immune to concurrent subscribe/unsubscribe.
//   - Launcher: a worker pool that runs multi-step asynchronous tasks,
//     handing them bound Dispatch/State capabilities.
//
// # Basic Usage
//
//	type Counter struct{ Count int }
//
//	store := keystate.New[Counter, string](Counter{}, keystate.ReducerFunc[Counter](
//	    func(s Counter, a keystate.Action) Counter {
//	        switch a {
//	        case "increment":
//	            s.Count++
//	        case "decrement":
//	            s.Count--
//	        }
//	        return s
//	    },
//	))
//
//	sub, _ := store.Subscribe(keystate.SubscriberFunc[Counter](func(s Counter) {
//	    fmt.Println("count:", s.Count)
//	}))
//	defer store.Unsubscribe(sub)
//
//	store.Dispatch("increment")
//
// # Dispatch Semantics
//
// Dispatch acquires an exclusive section, invokes the reducer with the
// current state and the action, and publishes the result. If the result is
// value-equal to the previous state the transition is a no-op: nothing is
// published and no subscriber is notified. The critical section is held
// through notification, so every subscriber observes committed states in
// commit order, at the cost of one slow subscriber delaying concurrent
// dispatchers.
//
// A reducer must be pure. It must never call back into the store that
// invoked it; every store operation checks for this and returns
// ErrReentrantCall rather than deadlocking. A panic inside the reducer
// aborts the transition (state unchanged) and is returned from Dispatch as
// a *ReducerError.
//
// # Commands
//
// SendCommand delivers an ephemeral value to subscribers that implement
// CommandSubscriber, bypassing the reducer and the state cell entirely.
// Commands are for one-shot side-effect signaling (navigation, toasts,
// focus changes) that has no business living in state. Subscribers without
// a command handler are skipped by default; WithStrictCommands makes that
// a *MissingHandlerError instead.
//
// # Asynchronous Tasks
//
// Multi-step logic (fetch, then dispatch) runs on a Launcher. A task
// receives a context and the store's Dispatch/State capabilities, and its
// returned error is reported through the TaskHandle:
//
//	l := keystate.NewLauncher(store)
//	l.Start()
//	defer l.Stop(context.Background())
//
//	h, _ := l.DispatchAsync(func(ctx context.Context, s keystate.Dispatcher[Counter]) error {
//	    // ... fetch something ...
//	    _, err := s.Dispatch("increment")
//	    return err
//	})
//	<-h.Done()
//
// Tasks are ordinary external callers: calling Dispatch or State from a
// task is never a reentrancy fault.
//
// # Thread Safety
//
// All Store and Launcher methods are safe for concurrent use. At most one
// reducer invocation is in flight per store at any time, and no interleaving
// of concurrent dispatches loses an update. Individual subscribers must
// manage their own internal thread safety.
//
// # Subpackages
//
//   - stream: push-based, restartable channel adapters over Subscribe
package keystate
