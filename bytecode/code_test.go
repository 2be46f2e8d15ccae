package bytecode

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/benlang/ben/op"
)

func TestNewCodeCopiesInstructions(t *testing.T) {
	instructions := []Instruction{
		Push{Value: 1.0},
		Return{},
	}
	code := NewCode(CodeParams{Name: "main", Instructions: instructions})
	instructions[0] = Pop{}

	require.Equal(t, "main", code.Name())
	require.Equal(t, 2, code.InstructionCount())
	require.Equal(t, op.Push, code.InstructionAt(0).Opcode())
}

func TestFunctionParameters(t *testing.T) {
	body := NewCode(CodeParams{Name: "add", Instructions: []Instruction{Return{}}})
	params := []string{"a", "b"}
	fn := NewFunction(FunctionParams{Name: "add", Parameters: params, Code: body})
	params[0] = "z"

	require.Equal(t, 2, fn.ParameterCount())
	require.Equal(t, "a", fn.Parameter(0))
	require.Equal(t, []string{"a", "b"}, fn.Parameters())
	require.Same(t, body, fn.Code())
	require.Equal(t, "add(a, b)", fn.String())

	anon := NewFunction(FunctionParams{Code: body})
	require.Equal(t, "<anonymous>()", anon.String())
}

func TestCodeFunctions(t *testing.T) {
	body := NewCode(CodeParams{Instructions: []Instruction{Return{}}})
	f := NewFunction(FunctionParams{Name: "f", Code: body})
	g := NewFunction(FunctionParams{Name: "g", Code: body})
	main := NewCode(CodeParams{Name: "main", Instructions: []Instruction{
		PushLambda{Function: f},
		SetEnv{Name: "f"},
		PushLambda{Function: g},
		SetEnv{Name: "g"},
		Return{},
	}})
	require.Equal(t, []*Function{f, g}, main.Functions())
}

func TestInstructionStrings(t *testing.T) {
	tests := []struct {
		instr Instruction
		want  string
	}{
		{Push{Value: 5.0}, "push 5"},
		{Push{Value: "hi"}, `push "hi"`},
		{Push{Value: true}, "push true"},
		{Pop{}, "pop"},
		{ArgStart{}, "arg_start"},
		{GetEnv{Name: "x"}, "get_env x"},
		{SetEnv{Name: "x"}, "set_env x"},
		{Invoke{}, "invoke"},
		{Invoke{Tail: true}, "invoke tail"},
		{IfNotTrueJump{Offset: 2}, "if_not_true_jump +2"},
		{Jump{Offset: -3}, "jump -3"},
		{Return{}, "return"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, tt.instr.String())
	}
}

func TestNormalizeLiteral(t *testing.T) {
	v, err := NormalizeLiteral(int64(3))
	require.NoError(t, err)
	require.Equal(t, 3.0, v)

	v, err = NormalizeLiteral(uint64(7))
	require.NoError(t, err)
	require.Equal(t, 7.0, v)

	v, err = NormalizeLiteral("s")
	require.NoError(t, err)
	require.Equal(t, "s", v)

	_, err = NormalizeLiteral([]int{1})
	require.Error(t, err)

	_, err = NormalizeLiteral(nil)
	require.Error(t, err)
}

func TestSpanSlice(t *testing.T) {
	source := "print(x)"
	require.Equal(t, "print", Span{Start: 0, End: 5}.Slice(source))
	require.Equal(t, "x)", Span{Start: 6, End: 100}.Slice(source))
	require.Equal(t, "", Span{Start: 5, End: 2}.Slice(source))
	require.True(t, Span{}.IsZero())
	require.Equal(t, "0-5", Span{Start: 0, End: 5}.String())
}
