package object

import (
	"fmt"

	"github.com/benlang/ben/bytecode"
	"github.com/benlang/ben/scope"
)

// Lambda is a function value: a compiled template paired with the scope that
// was active when the lambda was created. The closure scope is fixed at
// construction and never changes.
type Lambda struct {
	fn           *bytecode.Function
	closureScope scope.ID
}

func (l *Lambda) Type() Type {
	return LAMBDA
}

// Function returns the compiled template the lambda was built from.
func (l *Lambda) Function() *bytecode.Function {
	return l.fn
}

// Code returns the lambda's bytecode. Tail-call detection compares this
// pointer, so lambdas built from the same template share it.
func (l *Lambda) Code() *bytecode.Code {
	return l.fn.Code()
}

func (l *Lambda) Name() string {
	return l.fn.Name()
}

func (l *Lambda) Parameters() []string {
	return l.fn.Parameters()
}

func (l *Lambda) ParameterCount() int {
	return l.fn.ParameterCount()
}

// ClosureScope returns the ID of the captured scope.
func (l *Lambda) ClosureScope() scope.ID {
	return l.closureScope
}

func (l *Lambda) Inspect() string {
	return fmt.Sprintf("lambda(%s)", l.fn)
}

func (l *Lambda) String() string {
	return l.Inspect()
}

func (l *Lambda) Interface() any {
	return nil
}

func (l *Lambda) Equals(other Value) bool {
	return l == other
}

// NewLambda returns a lambda over fn that resolves free names starting at
// closureScope.
func NewLambda(fn *bytecode.Function, closureScope scope.ID) *Lambda {
	return &Lambda{fn: fn, closureScope: closureScope}
}
