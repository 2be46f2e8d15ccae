package vm

import (
	"testing"

	"github.com/benlang/ben/bytecode"
	"github.com/benlang/ben/object"
	"github.com/benlang/ben/scope"
	"github.com/stretchr/testify/require"
)

func TestNewState(t *testing.T) {
	main := code("main", bytecode.Return{})
	globals := testGlobals()
	s := NewState("src", main, globals)

	require.Equal(t, "src", s.Code())
	require.Nil(t, s.CurrentInstruction())
	require.Nil(t, s.Exception())
	require.False(t, s.IsComplete())
	require.False(t, s.IsCrashed())
	require.Equal(t, 0, s.StackLen())
	require.Empty(t, s.Output())

	frames := s.CallStack()
	require.Len(t, frames, 1)
	require.Equal(t, CallFrame{Code: main, Pointer: 0, Scope: scope.Root}, frames[0])

	root, ok := s.Scopes().Frame(scope.Root)
	require.True(t, ok)
	_, hasParent := root.Parent()
	require.False(t, hasParent)
	require.Equal(t, len(globals), root.Len())

	_, ok = s.Result()
	require.False(t, ok)
}

func TestWithOutput(t *testing.T) {
	s := NewState("", code("main", bytecode.Return{}), nil)
	a := s.WithOutput("one")
	b := a.WithOutput("two")
	fork := a.WithOutput("other")

	require.Empty(t, s.Output())
	require.Equal(t, []string{"one"}, a.Output())
	require.Equal(t, []string{"one", "two"}, b.Output())
	require.Equal(t, []string{"one", "other"}, fork.Output())
}

func TestStackHelpers(t *testing.T) {
	s := NewState("", code("main", bytecode.Return{}), nil)
	one := StackEntry{Value: object.NewNumber(1), Span: span(0, 1)}
	two := StackEntry{Value: object.NewNumber(2), Span: span(2, 3)}

	pushed := s.push(one).push(two)
	require.Equal(t, []StackEntry{one, two}, pushed.Stack())
	top, ok := pushed.Top()
	require.True(t, ok)
	require.Equal(t, two, top)

	popped, entry, ok := pushed.pop()
	require.True(t, ok)
	require.Equal(t, two, entry)
	require.Equal(t, []StackEntry{one}, popped.Stack())
	require.Equal(t, 2, pushed.StackLen())

	_, _, ok = s.pop()
	require.False(t, ok)
}
