// Package object provides the value types of the ben language.
//
// A value is one of number, string, boolean, lambda or builtin. Lambdas and
// builtins are "invokable": first-class values that may be pushed, bound and
// passed around like any other value, and called by the invoke instruction.
// The builtin type is defined by the vm package, since its native operation
// is expressed in terms of program state.
//
// Values are immutable. Type-switch on the concrete type to get at the
// underlying Go value:
//
//	switch v := v.(type) {
//	case *object.Number:
//		// do something with v.Value()
//	case *object.String:
//		// do something with v.Value()
//	}
package object

import (
	"fmt"

	"github.com/benlang/ben/bytecode"
)

// Type of a value as a string.
type Type string

// Type constants
const (
	ARG_START Type = "arg_start"
	BOOL      Type = "bool"
	BUILTIN   Type = "builtin"
	LAMBDA    Type = "lambda"
	NUMBER    Type = "number"
	STRING    Type = "string"
)

// Value is the interface that all ben values implement.
type Value interface {
	// Type of the value.
	Type() Type

	// Inspect returns a string representation of the value.
	Inspect() string

	// Interface converts the value to a native Go value.
	Interface() any

	// Equals returns true if the given value is equal to this value.
	Equals(other Value) bool
}

// IsInvokable returns true if the value can be called by the invoke
// instruction, i.e. it is a lambda or a builtin.
func IsInvokable(v Value) bool {
	if v == nil {
		return false
	}
	switch v.Type() {
	case LAMBDA, BUILTIN:
		return true
	default:
		return false
	}
}

// FromLiteral converts a bytecode literal into a value.
func FromLiteral(literal any) (Value, error) {
	literal, err := bytecode.NormalizeLiteral(literal)
	if err != nil {
		return nil, err
	}
	switch literal := literal.(type) {
	case float64:
		return NewNumber(literal), nil
	case string:
		return NewString(literal), nil
	case bool:
		return NewBool(literal), nil
	default:
		return nil, fmt.Errorf("unsupported literal type: %T", literal)
	}
}
