package dis

import (
	"bytes"
	"strings"
	"testing"

	"github.com/benlang/ben/bytecode"
	"github.com/benlang/ben/op"
	"github.com/fatih/color"
	"github.com/stretchr/testify/require"
)

func sample() *bytecode.Code {
	body := bytecode.NewCode(bytecode.CodeParams{
		Name: "double",
		Instructions: []bytecode.Instruction{
			bytecode.ArgStart{},
			bytecode.GetEnv{Name: "x"},
			bytecode.GetEnv{Name: "x"},
			bytecode.GetEnv{Name: "+"},
			bytecode.Invoke{},
			bytecode.Return{},
		},
	})
	fn := bytecode.NewFunction(bytecode.FunctionParams{Name: "double", Parameters: []string{"x"}, Code: body})
	return bytecode.NewCode(bytecode.CodeParams{
		Name: "main",
		Instructions: []bytecode.Instruction{
			bytecode.PushLambda{Function: fn, Span: bytecode.Span{Start: 0, End: 20}},
			bytecode.SetEnv{Name: "double"},
			bytecode.Push{Value: true},
			bytecode.IfNotTrueJump{Offset: 3},
			bytecode.ArgStart{},
			bytecode.Push{Value: "hi"},
			bytecode.Jump{Offset: -2},
			bytecode.Invoke{Tail: true},
			bytecode.Return{},
		},
	})
}

func TestDisassemble(t *testing.T) {
	instructions := Disassemble(sample())
	require.Len(t, instructions, 9)

	require.Equal(t, op.PushLambda, instructions[0].Opcode)
	require.Equal(t, "double(x)", instructions[0].Operand)
	require.NotNil(t, instructions[0].Function)
	require.Equal(t, bytecode.Span{Start: 0, End: 20}, instructions[0].Span)

	require.Equal(t, "set_env", instructions[1].Name)
	require.Equal(t, "double", instructions[1].Operand)
	require.Equal(t, "true", instructions[2].Operand)
	require.Equal(t, "+3", instructions[3].Operand)
	require.Equal(t, "-> 7", instructions[3].Annotation)
	require.Equal(t, `"hi"`, instructions[5].Operand)
	require.Equal(t, "-> 5", instructions[6].Annotation)
	require.Equal(t, "tail", instructions[7].Annotation)
}

func TestPrint(t *testing.T) {
	noColor := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = noColor }()

	body := bytecode.NewCode(bytecode.CodeParams{
		Instructions: []bytecode.Instruction{
			bytecode.Push{Value: 42, Span: bytecode.Span{Start: 1, End: 3}},
			bytecode.GetEnv{Name: "f", Span: bytecode.Span{Start: 4, End: 5}},
			bytecode.Return{Span: bytecode.Span{Start: 0, End: 5}},
		},
	})
	var buf bytes.Buffer
	Print(Disassemble(body), &buf)

	expected := strings.TrimSpace(`
+--------+---------+---------+------+------+
| OFFSET | OPCODE  | OPERAND | INFO | SPAN |
+--------+---------+---------+------+------+
|      0 | push    | 42      |      |  1-3 |
|      1 | get_env | f       |      |  4-5 |
|      2 | return  |         |      |  0-5 |
+--------+---------+---------+------+------+
`)
	require.Equal(t, expected+"\n", buf.String())
}

func TestPrintCodeIncludesFunctions(t *testing.T) {
	noColor := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = noColor }()

	var buf bytes.Buffer
	PrintCode(sample(), &buf)
	out := buf.String()
	require.True(t, strings.HasPrefix(out, "main\n"))
	require.Contains(t, out, "\ndouble(x)\n")
	require.Equal(t, 2, strings.Count(out, "| OFFSET |"))
}
