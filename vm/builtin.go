package vm

import (
	"fmt"

	"github.com/benlang/ben/object"
)

// BuiltinFunc is the native operation behind a Builtin. It receives the
// current state and the call's arguments in call order, and returns the
// (possibly updated) state together with the call's result.
type BuiltinFunc func(s *State, args []object.Value) (*State, object.Value, error)

// ResultFunc computes the value an outputting builtin returns without
// performing its effect. It must be pure.
type ResultFunc func(args []object.Value) (object.Value, error)

// Builtin is a native function value. Outputting builtins have an external
// side effect. In no-outputting mode their BuiltinFunc is never called; the
// ResultFunc supplies the value pushed in its place.
type Builtin struct {
	name       string
	fn         BuiltinFunc
	result     ResultFunc
	outputting bool
}

func (b *Builtin) Type() object.Type {
	return object.BUILTIN
}

func (b *Builtin) Name() string {
	return b.name
}

func (b *Builtin) IsOutputting() bool {
	return b.outputting
}

func (b *Builtin) Call(s *State, args []object.Value) (*State, object.Value, error) {
	return b.fn(s, args)
}

// Result returns the value Call would return, without calling the native
// operation. It fails for an outputting builtin that has no ResultFunc.
func (b *Builtin) Result(args []object.Value) (object.Value, error) {
	if b.result == nil {
		return nil, fmt.Errorf("%s cannot run with output suppressed", b.name)
	}
	return b.result(args)
}

func (b *Builtin) Inspect() string {
	return fmt.Sprintf("builtin(%s)", b.name)
}

func (b *Builtin) String() string {
	return b.Inspect()
}

func (b *Builtin) Interface() any {
	return b.fn
}

func (b *Builtin) Equals(other object.Value) bool {
	return b == other
}

// NewBuiltin returns a builtin without external side effects.
func NewBuiltin(name string, fn BuiltinFunc) *Builtin {
	return &Builtin{name: name, fn: fn}
}

// NewOutputtingBuiltin returns a builtin with an external side effect. In
// no-outputting mode fn is skipped and result computes the pushed value, so
// replays never repeat the effect. A nil result makes suppressed calls fail.
func NewOutputtingBuiltin(name string, fn BuiltinFunc, result ResultFunc) *Builtin {
	return &Builtin{name: name, fn: fn, result: result, outputting: true}
}
