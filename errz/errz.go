// Package errz defines the runtime error raised by the ben virtual machine.
//
// There is a single error type, RuntimeError, parameterized by a category, a
// human-readable message and the source span of the instruction or operand
// that caused it.
package errz

import (
	"errors"
	"fmt"
	"strings"

	"github.com/benlang/ben/bytecode"
)

// ErrorKind represents the category of a runtime error.
type ErrorKind int

const (
	// ErrUnbound indicates an identifier with no binding in the scope chain.
	ErrUnbound ErrorKind = iota
	// ErrNotInvokable indicates an invoke of a value that is not a lambda
	// or builtin.
	ErrNotInvokable
	// ErrArity indicates an argument count mismatch.
	ErrArity
	// ErrUnapplied indicates an invokable left on the stack uncalled.
	ErrUnapplied
	// ErrMalformed indicates bytecode that breaks the compiler/VM contract.
	ErrMalformed
	// ErrBuiltin indicates a failure reported by a builtin operation.
	ErrBuiltin
	// ErrInternal indicates an unexpected failure inside the VM itself.
	ErrInternal
)

// String returns the string representation of the error kind.
func (k ErrorKind) String() string {
	switch k {
	case ErrUnbound:
		return "unbound identifier"
	case ErrNotInvokable:
		return "not invokable"
	case ErrArity:
		return "argument error"
	case ErrUnapplied:
		return "unapplied action"
	case ErrMalformed:
		return "malformed bytecode"
	case ErrBuiltin:
		return "builtin error"
	case ErrInternal:
		return "internal error"
	default:
		return "error"
	}
}

// RuntimeError is raised while executing a single instruction. It is stored
// on the program state rather than unwinding the driver.
type RuntimeError struct {
	Kind    ErrorKind
	Message string
	Span    bytecode.Span
	Cause   error
}

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *RuntimeError) Unwrap() error {
	return e.Cause
}

// IsFatal reports whether the error ends execution. Every runtime error
// leaves the program state terminal.
func (e *RuntimeError) IsFatal() bool {
	return true
}

// Snippet returns the source text covered by the error's span.
func (e *RuntimeError) Snippet(source string) string {
	return e.Span.Slice(source)
}

// FriendlyErrorMessage returns the error rendered against the source text
// without colors.
func (e *RuntimeError) FriendlyErrorMessage(source string) string {
	return NewFormatter(false).Format(e, source)
}

// New creates a new RuntimeError.
func New(kind ErrorKind, span bytecode.Span, message string) *RuntimeError {
	return &RuntimeError{Kind: kind, Message: message, Span: span}
}

// Newf creates a new RuntimeError with a formatted message.
func Newf(kind ErrorKind, span bytecode.Span, format string, args ...any) *RuntimeError {
	return &RuntimeError{Kind: kind, Message: fmt.Sprintf(format, args...), Span: span}
}

// WithCause wraps the error with a cause.
func (e *RuntimeError) WithCause(cause error) *RuntimeError {
	e.Cause = cause
	return e
}

// Wrap converts any error into a RuntimeError. An error that already is (or
// wraps) a RuntimeError is returned as is; anything else becomes the cause of
// a new error of the given kind.
func Wrap(err error, kind ErrorKind, span bytecode.Span) *RuntimeError {
	if err == nil {
		return nil
	}
	if rerr, ok := As(err); ok {
		return rerr
	}
	return New(kind, span, err.Error()).WithCause(err)
}

// As returns the RuntimeError in err's chain, if any.
func As(err error) (*RuntimeError, bool) {
	var rerr *RuntimeError
	if errors.As(err, &rerr) {
		return rerr, true
	}
	return nil, false
}

// Locate converts a byte offset into a 1-based line and column.
func Locate(source string, offset int) (line, column int) {
	if offset < 0 {
		offset = 0
	}
	if offset > len(source) {
		offset = len(source)
	}
	before := source[:offset]
	line = strings.Count(before, "\n") + 1
	column = offset - strings.LastIndex(before, "\n")
	return line, column
}
