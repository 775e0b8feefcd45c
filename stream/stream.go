// Package stream adapts a keystate.Store into lazy, push-based channel
// sequences.
//
// Each call to States or Commands subscribes to the store on the spot and
// unsubscribes when the supplied context is cancelled, so sequences are
// restartable: cancel, then call again for a fresh subscription with a
// fresh initial state.
//
// State sequences conflate: when the consumer lags, older values are
// dropped so the channel always converges to the latest published state,
// like a watch channel. Widen the window with WithBuffer if intermediate
// states matter.
package stream

import (
	"context"
	"sync"

	"github.com/dshills/keystate"
)

// Option configures a stream.
type Option func(*config)

// config contains stream configuration.
type config struct {
	buffer int
}

// defaultConfig returns the default stream configuration.
func defaultConfig() config {
	return config{buffer: 1}
}

// WithBuffer sets the channel capacity. The default of 1 keeps only the
// latest value when the consumer lags.
func WithBuffer(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.buffer = n
		}
	}
}

// States subscribes to store and returns a receive-only channel of state
// snapshots. The current state is delivered first (subscription semantics
// of the store), then every committed transition. The channel is closed
// and the subscription removed when ctx is cancelled.
func States[S, C any](ctx context.Context, store *keystate.Store[S, C], opts ...Option) (<-chan S, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	l := &listener[S]{ch: make(chan S, cfg.buffer)}
	sub, err := store.Subscribe(keystate.SubscriberFunc[S](l.push))
	if err != nil {
		return nil, err
	}

	go func() {
		<-ctx.Done()
		// Unsubscribe before closing; a notification already in flight on a
		// stale registry snapshot is absorbed by the listener's closed flag.
		_ = store.Unsubscribe(sub)
		l.close()
	}()

	return l.ch, nil
}

// Commands subscribes to store and returns a receive-only channel of
// commands. Commands are ephemeral: only those sent while the subscription
// is live are delivered, and there is no initial value. The channel is
// closed and the subscription removed when ctx is cancelled.
func Commands[S, C any](ctx context.Context, store *keystate.Store[S, C], opts ...Option) (<-chan C, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	l := &listener[C]{ch: make(chan C, cfg.buffer)}
	sub, err := store.Subscribe(&commandListener[S, C]{sink: l})
	if err != nil {
		return nil, err
	}

	go func() {
		<-ctx.Done()
		_ = store.Unsubscribe(sub)
		l.close()
	}()

	return l.ch, nil
}

// listener owns one outbound channel and guards it against the
// send-after-close race between a dispatcher's notification and the
// cancellation goroutine.
type listener[T any] struct {
	mu     sync.Mutex
	closed bool
	ch     chan T
}

// push delivers v, dropping the oldest buffered value when the consumer
// lags. Runs on the dispatching goroutine, so it never blocks.
func (l *listener[T]) push(v T) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	for {
		select {
		case l.ch <- v:
			return
		default:
		}
		select {
		case <-l.ch:
		default:
		}
	}
}

// close closes the outbound channel exactly once.
func (l *listener[T]) close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	l.closed = true
	close(l.ch)
}

// commandListener bridges the store's command channel into a listener.
// State notifications, including the initial one at subscribe time, are
// deliberately ignored.
type commandListener[S, C any] struct {
	sink *listener[C]
}

// OnNewState implements keystate.Subscriber.
func (c *commandListener[S, C]) OnNewState(S) {}

// OnCommandReceived implements keystate.CommandSubscriber.
func (c *commandListener[S, C]) OnCommandReceived(cmd C) {
	c.sink.push(cmd)
}
