package keystate

import (
	"io"
	"os"
	"reflect"
)

// Option configures a Store.
type Option func(*config)

// config contains configuration for a store.
type config struct {
	// equal decides whether a reducer result is a no-op.
	equal EqualFunc

	// strictCommands makes command delivery to a subscriber without a
	// handler a MissingHandlerError instead of a silent skip.
	strictCommands bool

	// trace enables human-readable trace lines for every store operation.
	trace bool

	// traceOut is where trace lines are written.
	traceOut io.Writer
}

// defaultConfig returns the default store configuration.
func defaultConfig() config {
	return config{
		equal:    reflect.DeepEqual,
		traceOut: os.Stderr,
	}
}

// WithEqualFunc sets the state equality predicate used to detect no-op
// transitions. The default is reflect.DeepEqual.
func WithEqualFunc(eq EqualFunc) Option {
	return func(c *config) {
		if eq != nil {
			c.equal = eq
		}
	}
}

// WithStrictCommands makes SendCommand report a MissingHandlerError for
// every subscriber lacking an OnCommandReceived handler. The default is to
// skip such subscribers silently.
func WithStrictCommands() Option {
	return func(c *config) {
		c.strictCommands = true
	}
}

// WithTracing enables a human-readable trace line for every dispatch,
// subscribe, unsubscribe and sendCommand call, identifying the calling
// goroutine. Purely observational; no behavioral effect.
func WithTracing() Option {
	return func(c *config) {
		c.trace = true
	}
}

// WithTraceOutput sets the destination for trace lines.
// The default is os.Stderr.
func WithTraceOutput(w io.Writer) Option {
	return func(c *config) {
		if w != nil {
			c.traceOut = w
		}
	}
}
