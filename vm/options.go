package vm

import "github.com/rs/zerolog"

// Option is a configuration function for a Machine.
type Option func(*Machine)

// WithNoOutputting suppresses the effect of outputting builtins. Their
// arguments are still consumed and their normal result is still pushed, so
// a program replayed this way reaches the same state minus the output.
func WithNoOutputting() Option {
	return func(m *Machine) {
		m.noOutputting = true
	}
}

// WithLogger sets the logger used for internal diagnostics.
func WithLogger(logger zerolog.Logger) Option {
	return func(m *Machine) {
		m.logger = logger
	}
}

// WithObserver sets an observer for execution events. Observer methods are
// called synchronously after each step, so implementations should be fast.
func WithObserver(observer Observer) Option {
	return func(m *Machine) {
		m.observer = observer
	}
}

// WithArgChecker replaces the lambda argument checker.
func WithArgChecker(checker ArgChecker) Option {
	return func(m *Machine) {
		m.argChecker = checker
	}
}

// WithMaxSteps bounds the number of instructions Complete will dispatch.
// Zero means unlimited.
func WithMaxSteps(n int) Option {
	return func(m *Machine) {
		m.maxSteps = n
	}
}

// WithContextCheckInterval sets how often Complete checks ctx.Done(), in
// instructions. The default is DefaultContextCheckInterval. Values <= 0 check
// on every instruction.
func WithContextCheckInterval(interval int) Option {
	return func(m *Machine) {
		m.contextCheckInterval = interval
	}
}
