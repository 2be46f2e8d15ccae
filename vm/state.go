package vm

import (
	"github.com/benbjohnson/immutable"
	"github.com/benlang/ben/bytecode"
	"github.com/benlang/ben/errz"
	"github.com/benlang/ben/object"
	"github.com/benlang/ben/scope"
)

// StackEntry is an operand stack slot: a value plus the span of the
// instruction that produced it.
type StackEntry struct {
	Value object.Value
	Span  bytecode.Span
}

// CallFrame is one activation record. Pointer is the index of the next
// instruction to execute in Code. A tail call reuses the frame but gives it
// a fresh Scope; the previous scope is not deleted, since closures created
// in it may still be live.
type CallFrame struct {
	Code    *bytecode.Code
	Pointer int
	Scope   scope.ID
	Tail    bool
}

// State is a complete, immutable snapshot of a running program. Every
// transition produces a new State that shares structure with its
// predecessor, so any State may be retained, resumed, or forked.
type State struct {
	stack     *immutable.List[StackEntry]
	callStack *immutable.List[CallFrame]
	scopes    *scope.Table[object.Value]
	code      string
	current   bytecode.Instruction
	exception *errz.RuntimeError
	output    *immutable.List[string]
	steps     int
}

// NewState returns the initial state for running main. The globals become
// the bindings of the root scope, which is owned by the main frame.
func NewState(source string, main *bytecode.Code, globals map[string]object.Value) *State {
	frame := CallFrame{Code: main, Pointer: 0, Scope: scope.Root}
	return &State{
		stack:     immutable.NewList[StackEntry](),
		callStack: immutable.NewList(frame),
		scopes:    scope.NewTable(globals),
		code:      source,
		output:    immutable.NewList[string](),
	}
}

func (s *State) clone() *State {
	c := *s
	return &c
}

// Stack returns a copy of the operand stack, bottom first.
func (s *State) Stack() []StackEntry {
	entries := make([]StackEntry, 0, s.stack.Len())
	itr := s.stack.Iterator()
	for !itr.Done() {
		_, entry := itr.Next()
		entries = append(entries, entry)
	}
	return entries
}

// StackLen returns the depth of the operand stack.
func (s *State) StackLen() int {
	return s.stack.Len()
}

// Top returns the top of the operand stack.
func (s *State) Top() (StackEntry, bool) {
	if s.stack.Len() == 0 {
		return StackEntry{}, false
	}
	return s.stack.Get(s.stack.Len() - 1), true
}

// CallStack returns a copy of the call stack, outermost frame first.
func (s *State) CallStack() []CallFrame {
	frames := make([]CallFrame, 0, s.callStack.Len())
	itr := s.callStack.Iterator()
	for !itr.Done() {
		_, frame := itr.Next()
		frames = append(frames, frame)
	}
	return frames
}

// CallDepth returns the number of live call frames.
func (s *State) CallDepth() int {
	return s.callStack.Len()
}

// Frame returns the innermost call frame.
func (s *State) Frame() (CallFrame, bool) {
	if s.callStack.Len() == 0 {
		return CallFrame{}, false
	}
	return s.callStack.Get(s.callStack.Len() - 1), true
}

// Scopes returns the scope table. Scopes superseded by tail calls are never
// removed, so the table grows by one scope per tail iteration.
func (s *State) Scopes() *scope.Table[object.Value] {
	return s.scopes
}

// Code returns the program source text.
func (s *State) Code() string {
	return s.code
}

// CurrentInstruction returns the most recently dispatched instruction, or nil
// before the first step.
func (s *State) CurrentInstruction() bytecode.Instruction {
	return s.current
}

// Exception returns the runtime error that crashed the program, if any.
func (s *State) Exception() *errz.RuntimeError {
	return s.exception
}

// Output returns the lines written by outputting builtins, in order.
func (s *State) Output() []string {
	lines := make([]string, 0, s.output.Len())
	itr := s.output.Iterator()
	for !itr.Done() {
		_, line := itr.Next()
		lines = append(lines, line)
	}
	return lines
}

// Steps returns the number of instructions dispatched so far.
func (s *State) Steps() int {
	return s.steps
}

// IsComplete is true once the call stack is empty.
func (s *State) IsComplete() bool {
	return s.callStack.Len() == 0
}

// IsCrashed is true when the program stopped on a runtime error.
func (s *State) IsCrashed() bool {
	return s.exception != nil
}

// Result returns the value on top of the operand stack.
func (s *State) Result() (object.Value, bool) {
	entry, ok := s.Top()
	if !ok {
		return nil, false
	}
	return entry.Value, true
}

// WithOutput returns a copy of the state with line appended to the output
// log. Outputting builtins use this to perform their side effect.
func (s *State) WithOutput(line string) *State {
	c := s.clone()
	c.output = s.output.Append(line)
	return c
}

func (s *State) push(entry StackEntry) *State {
	c := s.clone()
	c.stack = s.stack.Append(entry)
	return c
}

func (s *State) pop() (*State, StackEntry, bool) {
	n := s.stack.Len()
	if n == 0 {
		return s, StackEntry{}, false
	}
	c := s.clone()
	entry := s.stack.Get(n - 1)
	c.stack = s.stack.Slice(0, n-1)
	return c, entry, true
}

func (s *State) setFrame(frame CallFrame) *State {
	c := s.clone()
	c.callStack = s.callStack.Set(s.callStack.Len()-1, frame)
	return c
}

func (s *State) pushFrame(frame CallFrame) *State {
	c := s.clone()
	c.callStack = s.callStack.Append(frame)
	return c
}

func (s *State) popFrame() *State {
	c := s.clone()
	c.callStack = s.callStack.Slice(0, s.callStack.Len()-1)
	return c
}

func (s *State) withScopes(scopes *scope.Table[object.Value]) *State {
	c := s.clone()
	c.scopes = scopes
	return c
}

func (s *State) crash(err *errz.RuntimeError) *State {
	c := s.clone()
	c.exception = err
	return c
}
