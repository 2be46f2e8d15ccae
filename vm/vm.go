// Package vm implements the ben virtual machine.
//
// Execution is a pure function over program state: Step takes a *State and
// returns the next *State, leaving its input untouched. Because every State
// shares structure with its predecessor, a caller can retain any number of
// states and resume, rewind or fork from any of them.
//
// A Machine holds only configuration (output suppression, argument checking,
// logging, observation) and is safe for concurrent use.
package vm

import (
	"errors"

	"github.com/rs/zerolog"
)

// DefaultContextCheckInterval is the number of instructions Complete runs
// between checks of ctx.Done().
const DefaultContextCheckInterval = 1000

var (
	// ErrStepLimit is returned by Complete when WithMaxSteps is exceeded.
	ErrStepLimit = errors.New("step limit exceeded")

	// ErrHalted is returned by Complete when an observer asks to stop.
	ErrHalted = errors.New("execution halted by observer")
)

// Machine steps program states.
type Machine struct {
	noOutputting         bool
	logger               zerolog.Logger
	observer             Observer
	observerConfig       ObserverConfig
	argChecker           ArgChecker
	maxSteps             int
	contextCheckInterval int
}

// New returns a Machine configured with the given options.
func New(options ...Option) *Machine {
	m := &Machine{
		logger:               zerolog.Nop(),
		argChecker:           CheckLambdaArgs,
		contextCheckInterval: DefaultContextCheckInterval,
	}
	for _, opt := range options {
		opt(m)
	}
	if m.argChecker == nil {
		m.argChecker = CheckLambdaArgs
	}
	if m.observer != nil {
		m.observerConfig = NormalizeConfig(m.observer.Config())
	}
	return m
}

// NoOutputting reports whether outputting builtins are suppressed.
func (m *Machine) NoOutputting() bool {
	return m.noOutputting
}

var defaultMachine = New()

// Step advances s by one instruction using the default Machine.
func Step(s *State) *State {
	return defaultMachine.Step(s)
}
