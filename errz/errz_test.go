package errz

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/benlang/ben/bytecode"
)

func TestRuntimeError(t *testing.T) {
	err := Newf(ErrUnbound, bytecode.Span{Start: 6, End: 7}, "never heard of %s", "x")
	require.Equal(t, "unbound identifier: never heard of x", err.Error())
	require.True(t, err.IsFatal())
	require.Equal(t, "x", err.Snippet("print(x)"))
	require.Nil(t, err.Unwrap())
}

func TestWrap(t *testing.T) {
	require.Nil(t, Wrap(nil, ErrBuiltin, bytecode.Span{}))

	cause := errors.New("division by zero")
	wrapped := Wrap(cause, ErrBuiltin, bytecode.Span{Start: 1, End: 2})
	require.Equal(t, ErrBuiltin, wrapped.Kind)
	require.Equal(t, "division by zero", wrapped.Message)
	require.ErrorIs(t, wrapped, cause)

	original := New(ErrArity, bytecode.Span{}, "expected 1 argument")
	again := Wrap(fmt.Errorf("call failed: %w", original), ErrBuiltin, bytecode.Span{})
	require.Same(t, original, again)

	found, ok := As(fmt.Errorf("outer: %w", original))
	require.True(t, ok)
	require.Same(t, original, found)

	_, ok = As(cause)
	require.False(t, ok)
}

func TestErrorKindStrings(t *testing.T) {
	kinds := map[ErrorKind]string{
		ErrUnbound:      "unbound identifier",
		ErrNotInvokable: "not invokable",
		ErrArity:        "argument error",
		ErrUnapplied:    "unapplied action",
		ErrMalformed:    "malformed bytecode",
		ErrBuiltin:      "builtin error",
		ErrInternal:     "internal error",
		ErrorKind(99):   "error",
	}
	for kind, want := range kinds {
		require.Equal(t, want, kind.String())
	}
}

func TestLocate(t *testing.T) {
	source := "a = 1\nprint(b)"
	line, col := Locate(source, 0)
	require.Equal(t, 1, line)
	require.Equal(t, 1, col)

	line, col = Locate(source, 12)
	require.Equal(t, 2, line)
	require.Equal(t, 7, col)

	line, col = Locate(source, 1000)
	require.Equal(t, 2, line)
	require.Equal(t, 9, col)
}

func TestFriendlyErrorMessage(t *testing.T) {
	source := "a = 1\nprint(b)"
	err := New(ErrUnbound, bytecode.Span{Start: 12, End: 13}, "never heard of b")
	expected := "unbound identifier: never heard of b\n" +
		"  --> 2:7\n" +
		"  |\n" +
		"2 | print(b)\n" +
		"  |       ^\n"
	require.Equal(t, expected, err.FriendlyErrorMessage(source))
}

func TestFormatWithoutSource(t *testing.T) {
	err := New(ErrInternal, bytecode.Span{}, "boom")
	require.Equal(t, "internal error: boom\n", NewFormatter(false).Format(err, ""))
}

func TestFormatWithColor(t *testing.T) {
	err := New(ErrUnapplied, bytecode.Span{Start: 0, End: 5}, "This is an action.")
	out := NewFormatter(true).Format(err, "print")
	require.Contains(t, out, "\x1b[")
	require.Contains(t, out, "This is an action.")
}
