package keystate

import (
	"errors"
	"fmt"
)

// Sentinel errors for the store and launcher.
var (
	// ErrReentrantCall is returned when a store operation is invoked from
	// inside an in-flight reducer call on the same store, or when Dispatch
	// is nested inside a subscriber notification on the dispatching
	// goroutine (which would otherwise self-deadlock).
	ErrReentrantCall = errors.New("reentrant store call")

	// ErrReducerFault is returned when the reducer panics. The transition
	// is aborted and the state is unchanged.
	ErrReducerFault = errors.New("reducer fault")

	// ErrMissingCommandHandler is returned under the strict command policy
	// when a subscriber has no OnCommandReceived handler.
	ErrMissingCommandHandler = errors.New("missing command handler")

	// ErrNilReducer is returned by New when no reducer is provided.
	ErrNilReducer = errors.New("reducer cannot be nil")

	// ErrNilSubscriber is returned by Subscribe when the subscriber is nil.
	ErrNilSubscriber = errors.New("subscriber cannot be nil")

	// ErrNilTask is returned by DispatchAsync when the task is nil.
	ErrNilTask = errors.New("task cannot be nil")

	// ErrLauncherNotRunning is returned when tasks are submitted to a
	// stopped launcher.
	ErrLauncherNotRunning = errors.New("launcher is not running")

	// ErrLauncherAlreadyRunning is returned when Start is called on a
	// running launcher.
	ErrLauncherAlreadyRunning = errors.New("launcher is already running")

	// ErrQueueFull is returned when the launcher's task queue is at
	// capacity and cannot accept more tasks.
	ErrQueueFull = errors.New("task queue is full")

	// ErrTaskPanic is the fault recorded on a TaskHandle when its task
	// panicked into an installed TaskPanicHandler.
	ErrTaskPanic = errors.New("task panicked")
)

// ReentrancyError reports a store operation rejected by the dispatch guard.
type ReentrancyError struct {
	// Op is the rejected operation ("dispatch", "getState", "subscribe",
	// "unsubscribe", "sendCommand").
	Op string

	// Goroutine is the id of the offending goroutine.
	Goroutine int64

	// InReducer is true when the call came from inside the reducer, false
	// when a nested Dispatch came from a subscriber notification.
	InReducer bool
}

// Error implements the error interface.
func (e *ReentrancyError) Error() string {
	origin := "subscriber notification"
	if e.InReducer {
		origin = "reducer"
	}
	return fmt.Sprintf("%s called from inside %s on goroutine %d", e.Op, origin, e.Goroutine)
}

// Is allows errors.Is to match ReentrancyError with ErrReentrantCall.
func (e *ReentrancyError) Is(target error) bool {
	return target == ErrReentrantCall
}

// ReducerError wraps a panic raised by the reducer. Dispatch returns it to
// the caller; the state cell is untouched and the store remains usable.
type ReducerError struct {
	// Action is the action whose reduction panicked.
	Action Action

	// Value is the value passed to panic().
	Value any

	// Stack is the stack trace at the time of the panic.
	Stack []byte
}

// Error implements the error interface.
func (e *ReducerError) Error() string {
	return fmt.Sprintf("reducer panicked on action %v: %v", e.Action, e.Value)
}

// Is allows errors.Is to match ReducerError with ErrReducerFault.
func (e *ReducerError) Is(target error) bool {
	return target == ErrReducerFault
}

// TaskError wraps a panic recovered from an asynchronous task by an
// installed TaskPanicHandler.
type TaskError struct {
	// TaskID is the id of the panicking task's handle.
	TaskID string

	// Value is the value passed to panic().
	Value any

	// Stack is the stack trace at the time of the panic.
	Stack []byte
}

// Error implements the error interface.
func (e *TaskError) Error() string {
	return fmt.Sprintf("task %s panicked: %v", e.TaskID, e.Value)
}

// Is allows errors.Is to match TaskError with ErrTaskPanic.
func (e *TaskError) Is(target error) bool {
	return target == ErrTaskPanic
}

// MissingHandlerError identifies a subscriber that received a command but
// has no OnCommandReceived handler (strict command policy only). Delivery
// to other subscribers is unaffected.
type MissingHandlerError struct {
	// SubscriptionID is the id of the offending subscription.
	SubscriptionID string

	// Command is the command that could not be delivered.
	Command any
}

// Error implements the error interface.
func (e *MissingHandlerError) Error() string {
	return fmt.Sprintf("subscription %s has no command handler for %v", e.SubscriptionID, e.Command)
}

// Is allows errors.Is to match MissingHandlerError with ErrMissingCommandHandler.
func (e *MissingHandlerError) Is(target error) bool {
	return target == ErrMissingCommandHandler
}
