package keystate

import (
	"context"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// Task is caller-supplied multi-step logic run by a Launcher. It receives
// the launcher's lifecycle context and the store's bound Dispatch/State
// capabilities, and may call them zero or more times as an ordinary
// external caller (never a reentrancy fault).
//
// The returned error is reported through the TaskHandle; converting a
// sub-step failure into a dispatched action describing it is the task
// author's responsibility. There is no built-in cancellation beyond the
// context: once scheduled, a task runs to completion or fault.
type Task[S any] func(ctx context.Context, store Dispatcher[S]) error

// TaskPanicHandler is called when a task panics and a handler was
// installed with WithTaskPanicHandler. Without a handler, task panics are
// not intercepted and take the worker goroutine down.
type TaskPanicHandler func(taskID string, recovered any, stack []byte)

// TaskHandle represents the eventual completion of a scheduled task.
type TaskHandle struct {
	id   string
	done chan struct{}
	err  error // written once, before done is closed
}

// ID returns the unique task identifier.
func (h *TaskHandle) ID() string {
	return h.id
}

// Done returns a channel closed when the task has finished.
func (h *TaskHandle) Done() <-chan struct{} {
	return h.done
}

// Err returns the task's fault, if any. It is meaningful only after Done
// is closed; before that it is always nil.
func (h *TaskHandle) Err() error {
	select {
	case <-h.done:
		return h.err
	default:
		return nil
	}
}

// Wait blocks until the task finishes or ctx is cancelled, returning the
// task's fault or the context error.
func (h *TaskHandle) Wait(ctx context.Context) error {
	select {
	case <-h.done:
		return h.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// launch pairs a scheduled task with its handle.
type launch[S any] struct {
	task   Task[S]
	handle *TaskHandle
}

// Launcher runs tasks against a store on a bounded worker pool without
// blocking the submitting goroutine. Create one with NewLauncher, Start it,
// and Stop it when done; launchers are explicitly owned, there is no
// process-wide instance.
type Launcher[S, C any] struct {
	store *Store[S, C]

	queueSize    int
	workerCount  int
	panicHandler TaskPanicHandler

	mu      sync.Mutex // protects queue creation/teardown
	queue   chan launch[S]
	running atomic.Bool
	wg      sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc

	launched  atomic.Uint64
	completed atomic.Uint64
	failed    atomic.Uint64
}

// LauncherOption configures a Launcher.
type LauncherOption func(*launcherConfig)

// launcherConfig contains configuration for a launcher.
type launcherConfig struct {
	queueSize    int
	workerCount  int
	panicHandler TaskPanicHandler
}

// defaultLauncherConfig returns sensible launcher defaults.
func defaultLauncherConfig() launcherConfig {
	return launcherConfig{
		queueSize:   1024,
		workerCount: 4,
	}
}

// WithQueueSize sets the task queue capacity.
func WithQueueSize(size int) LauncherOption {
	return func(c *launcherConfig) {
		if size > 0 {
			c.queueSize = size
		}
	}
}

// WithWorkerCount sets the number of worker goroutines.
func WithWorkerCount(count int) LauncherOption {
	return func(c *launcherConfig) {
		if count > 0 {
			c.workerCount = count
		}
	}
}

// WithTaskPanicHandler installs a panic handler for task execution. The
// panic is recovered, reported to the handler and recorded as the task's
// fault. Without a handler, panics propagate on the worker goroutine.
func WithTaskPanicHandler(h TaskPanicHandler) LauncherOption {
	return func(c *launcherConfig) {
		c.panicHandler = h
	}
}

// NewLauncher creates a launcher bound to store.
func NewLauncher[S, C any](store *Store[S, C], opts ...LauncherOption) *Launcher[S, C] {
	cfg := defaultLauncherConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Launcher[S, C]{
		store:        store,
		queueSize:    cfg.queueSize,
		workerCount:  cfg.workerCount,
		panicHandler: cfg.panicHandler,
	}
}

// Start starts the worker pool.
func (l *Launcher[S, C]) Start() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.running.Load() {
		return ErrLauncherAlreadyRunning
	}

	l.queue = make(chan launch[S], l.queueSize)
	l.ctx, l.cancel = context.WithCancel(context.Background())
	l.running.Store(true)

	for i := 0; i < l.workerCount; i++ {
		l.wg.Add(1)
		go l.worker()
	}
	return nil
}

// Stop stops the worker pool gracefully. Queued tasks are drained; running
// tasks see their context cancelled once ctx expires. Stop returns when
// all workers have exited or ctx is cancelled.
func (l *Launcher[S, C]) Stop(ctx context.Context) error {
	l.mu.Lock()
	if !l.running.Load() {
		l.mu.Unlock()
		return ErrLauncherNotRunning
	}
	l.running.Store(false)
	close(l.queue)
	l.mu.Unlock()

	done := make(chan struct{})
	go func() {
		l.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		l.cancel()
		return nil
	case <-ctx.Done():
		// Give up waiting and cancel in-flight task contexts.
		l.cancel()
		return ctx.Err()
	}
}

// IsRunning returns true if the launcher is accepting tasks.
func (l *Launcher[S, C]) IsRunning() bool {
	return l.running.Load()
}

// DispatchAsync schedules task on the worker pool and returns immediately.
// The handle reports the task's eventual completion and fault. Returns
// ErrLauncherNotRunning when stopped and ErrQueueFull when the queue is at
// capacity.
func (l *Launcher[S, C]) DispatchAsync(task Task[S]) (*TaskHandle, error) {
	if task == nil {
		return nil, ErrNilTask
	}

	h := &TaskHandle{
		id:   uuid.NewString(),
		done: make(chan struct{}),
	}

	// Enqueue under the lifecycle mutex so a concurrent Stop cannot close
	// the queue between the running check and the send.
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.running.Load() {
		return nil, ErrLauncherNotRunning
	}

	select {
	case l.queue <- launch[S]{task: task, handle: h}:
		l.launched.Add(1)
		return h, nil
	default:
		return nil, ErrQueueFull
	}
}

// worker processes tasks from the queue until it is closed.
func (l *Launcher[S, C]) worker() {
	defer l.wg.Done()

	for ln := range l.queue {
		l.run(ln)
	}
}

// run executes one task and settles its handle.
func (l *Launcher[S, C]) run(ln launch[S]) {
	defer func() {
		if r := recover(); r != nil {
			if l.panicHandler == nil {
				// No handler installed: the fault surfaces through the
				// runtime's default channel.
				panic(r)
			}
			stack := debug.Stack()
			ln.handle.err = &TaskError{TaskID: ln.handle.id, Value: r, Stack: stack}
			l.failed.Add(1)
			close(ln.handle.done)
			func() {
				defer func() { _ = recover() }()
				l.panicHandler(ln.handle.id, r, stack)
			}()
		}
	}()

	err := ln.task(l.ctx, l.store)
	ln.handle.err = err
	if err != nil {
		l.failed.Add(1)
	} else {
		l.completed.Add(1)
	}
	close(ln.handle.done)
}

// LauncherStats contains launcher statistics.
type LauncherStats struct {
	// Launched is the number of tasks accepted by DispatchAsync.
	Launched uint64

	// Completed is the number of tasks that returned nil.
	Completed uint64

	// Failed is the number of tasks that returned an error or panicked
	// into an installed panic handler.
	Failed uint64

	// QueueDepth is the current number of tasks waiting for a worker.
	QueueDepth int
}

// Stats returns current launcher statistics.
func (l *Launcher[S, C]) Stats() LauncherStats {
	depth := 0
	if l.running.Load() {
		depth = len(l.queue)
	}
	return LauncherStats{
		Launched:   l.launched.Load(),
		Completed:  l.completed.Load(),
		Failed:     l.failed.Load(),
		QueueDepth: depth,
	}
}
