package builtins

import (
	"testing"

	"github.com/benlang/ben/bytecode"
	"github.com/benlang/ben/object"
	"github.com/benlang/ben/vm"
	"github.com/stretchr/testify/require"
)

func emptyState() *vm.State {
	return vm.NewState("", bytecode.NewCode(bytecode.CodeParams{Name: "main"}), nil)
}

func num(f float64) object.Value {
	return object.NewNumber(f)
}

func TestBuiltins(t *testing.T) {
	m := Builtins()
	for _, name := range []string{"+", "-", "*", "/", "=", "<", ">", "not", "print"} {
		v, ok := m[name]
		require.True(t, ok, name)
		require.True(t, object.IsInvokable(v))
	}
	require.True(t, m["print"].(*vm.Builtin).IsOutputting())
	require.False(t, m["+"].(*vm.Builtin).IsOutputting())
}

func TestArithmetic(t *testing.T) {
	s := emptyState()
	tests := []struct {
		name string
		fn   vm.BuiltinFunc
		args []object.Value
		want object.Value
	}{
		{"add", Add, []object.Value{num(5), num(3)}, num(8)},
		{"add many", Add, []object.Value{num(1), num(2), num(3)}, num(6)},
		{"concat", Add, []object.Value{object.NewString("a"), object.NewString("b")}, object.NewString("ab")},
		{"subtract", Subtract, []object.Value{num(5), num(3)}, num(2)},
		{"negate", Subtract, []object.Value{num(5)}, num(-5)},
		{"multiply", Multiply, []object.Value{num(4), num(2.5)}, num(10)},
		{"divide", Divide, []object.Value{num(9), num(2)}, num(4.5)},
		{"equal", Equal, []object.Value{num(1), num(1)}, object.True},
		{"not equal", Equal, []object.Value{num(1), object.NewString("1")}, object.False},
		{"less", Less, []object.Value{num(1), num(2)}, object.True},
		{"greater", Greater, []object.Value{num(1), num(2)}, object.False},
		{"not", Not, []object.Value{object.False}, object.True},
		{"not number", Not, []object.Value{num(1)}, object.True},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, got, err := tt.fn(s, tt.args)
			require.NoError(t, err)
			require.Same(t, s, next)
			require.True(t, tt.want.Equals(got), "got %s, want %s", got.Inspect(), tt.want.Inspect())
		})
	}
}

func TestArithmeticErrors(t *testing.T) {
	s := emptyState()
	_, _, err := Add(s, []object.Value{num(1), object.NewString("x")})
	require.EqualError(t, err, "type error: +: expected number (string given)")

	_, _, err = Add(s, []object.Value{object.NewString("x"), num(1)})
	require.EqualError(t, err, "type error: +: cannot add number to string")

	_, _, err = Divide(s, []object.Value{num(1), num(0)})
	require.EqualError(t, err, "value error: division by zero")

	_, _, err = Equal(s, []object.Value{num(1)})
	require.EqualError(t, err, "=: expected 2 arguments, got 1")

	_, _, err = Subtract(s, nil)
	require.EqualError(t, err, "-: expected 1 or 2 arguments, got 0")
}

func TestPrint(t *testing.T) {
	s := emptyState()
	next, got, err := Print(s, []object.Value{object.NewString("hi"), num(3), object.True})
	require.NoError(t, err)
	require.Equal(t, "hi 3 true", got.(*object.String).Value())
	require.Equal(t, []string{"hi 3 true"}, next.Output())
	require.Empty(t, s.Output())
}

func TestPrintResult(t *testing.T) {
	got, err := PrintResult([]object.Value{object.NewString("hi"), num(3)})
	require.NoError(t, err)
	require.Equal(t, "hi 3", got.(*object.String).Value())
}
