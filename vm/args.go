package vm

import (
	"github.com/benlang/ben/bytecode"
	"github.com/benlang/ben/errz"
	"github.com/benlang/ben/object"
)

// ArgChecker validates the arguments of a lambda invocation before its frame
// is pushed. fn is the invoked entry and span is the invoke instruction's.
type ArgChecker func(fn StackEntry, args []StackEntry, span bytecode.Span) error

// CheckLambdaArgs is the default ArgChecker. It requires the argument count to
// match the lambda's parameter count exactly.
func CheckLambdaArgs(fn StackEntry, args []StackEntry, span bytecode.Span) error {
	lambda, ok := fn.Value.(*object.Lambda)
	if !ok {
		return nil
	}
	want := lambda.ParameterCount()
	if len(args) == want {
		return nil
	}
	name := lambda.Name()
	if name == "" {
		name = "this action"
	}
	return errz.Newf(errz.ErrArity, span, "%s takes %d %s but got %d",
		name, want, pluralize("argument", want), len(args))
}

func pluralize(word string, count int) string {
	if count == 1 {
		return word
	}
	return word + "s"
}
