package keystate_test

import (
	"context"
	"fmt"

	"github.com/dshills/keystate"
)

type appState struct {
	Count int
}

func appReducer(s appState, a keystate.Action) appState {
	switch a {
	case "increment":
		s.Count++
	case "decrement":
		s.Count--
	}
	return s
}

// Example_basicUsage demonstrates dispatching actions and observing state.
func Example_basicUsage() {
	store := keystate.New[appState, string](appState{Count: 1}, keystate.ReducerFunc[appState](appReducer))

	sub, err := store.Subscribe(keystate.SubscriberFunc[appState](func(s appState) {
		fmt.Println("count:", s.Count)
	}))
	if err != nil {
		fmt.Println("subscribe failed:", err)
		return
	}
	defer store.Unsubscribe(sub)

	store.Dispatch("increment")
	store.Dispatch("increment")
	store.Dispatch("decrement")

	// Output:
	// count: 1
	// count: 2
	// count: 3
	// count: 2
}

// toastSubscriber handles commands but ignores state changes.
type toastSubscriber struct{}

func (toastSubscriber) OnNewState(appState) {}

func (toastSubscriber) OnCommandReceived(cmd string) {
	fmt.Println("toast:", cmd)
}

// Example_commands demonstrates the ephemeral command channel.
func Example_commands() {
	store := keystate.New[appState, string](appState{}, keystate.ReducerFunc[appState](appReducer))

	sub, _ := store.Subscribe(toastSubscriber{})
	defer store.Unsubscribe(sub)

	store.SendCommand("saved")

	st, _ := store.State()
	fmt.Println("count still:", st.Count)

	// Output:
	// toast: saved
	// count still: 0
}

// Example_asyncTask demonstrates running multi-step logic on a Launcher.
func Example_asyncTask() {
	store := keystate.New[appState, string](appState{}, keystate.ReducerFunc[appState](appReducer))

	l := keystate.NewLauncher(store)
	if err := l.Start(); err != nil {
		fmt.Println("start failed:", err)
		return
	}
	defer l.Stop(context.Background())

	h, _ := l.DispatchAsync(func(ctx context.Context, s keystate.Dispatcher[appState]) error {
		for i := 0; i < 3; i++ {
			if _, err := s.Dispatch("increment"); err != nil {
				return err
			}
		}
		return nil
	})

	if err := h.Wait(context.Background()); err != nil {
		fmt.Println("task failed:", err)
		return
	}

	st, _ := store.State()
	fmt.Println("count:", st.Count)

	// Output:
	// count: 3
}
