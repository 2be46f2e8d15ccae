// Package debug drives the ben VM one instruction at a time while retaining
// every state it produces, so execution can be stepped backward as well as
// forward, rewound, or forked.
package debug

import (
	"context"
	"errors"

	"github.com/benlang/ben/vm"
)

// ErrAtStart is returned by Back when no earlier state is retained.
var ErrAtStart = errors.New("already at the first state")

// Session is a cursor over a run's history. States are never recomputed once
// produced: stepping forward after Back revisits the retained successors.
//
// A Session is not safe for concurrent use; Fork gives each goroutine its own.
type Session struct {
	machine *vm.Machine
	history []*vm.State
	pos     int
}

// NewSession starts a session at the given initial state.
func NewSession(machine *vm.Machine, initial *vm.State) *Session {
	if machine == nil {
		machine = vm.New()
	}
	return &Session{machine: machine, history: []*vm.State{initial}}
}

// State returns the state at the cursor.
func (s *Session) State() *vm.State {
	return s.history[s.pos]
}

// Position returns the cursor's index in the history. The initial state is
// at position 0.
func (s *Session) Position() int {
	return s.pos
}

// Len returns the number of retained states.
func (s *Session) Len() int {
	return len(s.history)
}

// Done is true when the state at the cursor cannot be stepped.
func (s *Session) Done() bool {
	st := s.State()
	return st.IsComplete() || st.IsCrashed()
}

// Step moves the cursor one instruction forward and returns the new state.
// It reports false, leaving the cursor in place, when the current state is
// terminal.
func (s *Session) Step() (*vm.State, bool) {
	if s.pos < len(s.history)-1 {
		s.pos++
		return s.State(), true
	}
	if s.Done() {
		return s.State(), false
	}
	s.history = append(s.history, s.machine.Step(s.State()))
	s.pos++
	return s.State(), true
}

// Back moves the cursor one state backward.
func (s *Session) Back() (*vm.State, error) {
	if s.pos == 0 {
		return s.State(), ErrAtStart
	}
	s.pos--
	return s.State(), nil
}

// Rewind moves the cursor to the initial state. The history is kept.
func (s *Session) Rewind() *vm.State {
	s.pos = 0
	return s.State()
}

// Seek moves the cursor to position n, stepping forward as needed. It stops
// early if the run ends before n.
func (s *Session) Seek(n int) *vm.State {
	if n < 0 {
		n = 0
	}
	if n < len(s.history) {
		s.pos = n
		return s.State()
	}
	s.pos = len(s.history) - 1
	for s.pos < n {
		if _, ok := s.Step(); !ok {
			break
		}
	}
	return s.State()
}

// Continue steps until the run completes or crashes.
func (s *Session) Continue(ctx context.Context) (*vm.State, error) {
	return s.ContinueUntil(ctx, nil)
}

// ContinueUntil steps until the run ends or stop returns true for the state
// just produced.
func (s *Session) ContinueUntil(ctx context.Context, stop func(*vm.State) bool) (*vm.State, error) {
	for i := 0; ; i++ {
		if i%vm.DefaultContextCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return s.State(), err
			}
		}
		st, ok := s.Step()
		if !ok {
			return st, nil
		}
		if stop != nil && stop(st) {
			return st, nil
		}
	}
}

// Fork returns an independent session whose history is this session's
// history up to and including the cursor. Stepping either session never
// affects the other.
func (s *Session) Fork() *Session {
	history := make([]*vm.State, s.pos+1)
	copy(history, s.history[:s.pos+1])
	return &Session{machine: s.machine, history: history, pos: s.pos}
}

// Truncate drops every retained state after the cursor.
func (s *Session) Truncate() {
	s.history = s.history[:s.pos+1]
}

// Replay re-derives the state reached n steps after initial with outputting
// builtins suppressed, so replaying a run does not repeat its side effects.
func Replay(initial *vm.State, n int, options ...vm.Option) *vm.State {
	m := vm.New(append(options, vm.WithNoOutputting())...)
	st := initial
	for i := 0; i < n && !st.IsComplete() && !st.IsCrashed(); i++ {
		st = m.Step(st)
	}
	return st
}
