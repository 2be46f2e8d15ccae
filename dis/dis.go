// Package dis supports analysis of ben bytecode by disassembling it.
package dis

import (
	"fmt"
	"io"
	"strconv"

	"github.com/benlang/ben/bytecode"
	"github.com/benlang/ben/internal/table"
	"github.com/benlang/ben/op"
	"github.com/fatih/color"
)

// Instruction is one disassembled instruction.
type Instruction struct {
	Offset     int
	Name       string
	Opcode     op.Code
	Operand    string
	Annotation string
	Span       bytecode.Span
	Function   *bytecode.Function
}

var (
	opcodeColor   = color.New(color.Bold)
	numberColor   = color.New(color.FgYellow)
	stringColor   = color.New(color.FgGreen)
	functionColor = color.New(color.FgMagenta)
	nameColor     = color.New(color.FgHiCyan)
)

// Disassemble returns a parsed representation of the given bytecode. Jump
// annotations give the absolute target index.
func Disassemble(code *bytecode.Code) []Instruction {
	count := code.InstructionCount()
	instructions := make([]Instruction, 0, count)
	for i := 0; i < count; i++ {
		instr := code.InstructionAt(i)
		if instr == nil {
			instructions = append(instructions, Instruction{Offset: i, Name: op.Invalid.String()})
			continue
		}
		d := Instruction{
			Offset: i,
			Name:   instr.Opcode().String(),
			Opcode: instr.Opcode(),
			Span:   instr.Location(),
		}
		switch instr := instr.(type) {
		case bytecode.Push:
			d.Operand = formatLiteral(instr.Value)
		case bytecode.PushLambda:
			d.Function = instr.Function
			if instr.Function != nil {
				d.Operand = instr.Function.String()
			}
		case bytecode.GetEnv:
			d.Operand = instr.Name
		case bytecode.SetEnv:
			d.Operand = instr.Name
		case bytecode.Invoke:
			if instr.Tail {
				d.Annotation = "tail"
			}
		case bytecode.IfNotTrueJump:
			d.Operand = fmt.Sprintf("%+d", instr.Offset)
			d.Annotation = fmt.Sprintf("-> %d", i+1+instr.Offset)
		case bytecode.Jump:
			d.Operand = fmt.Sprintf("%+d", instr.Offset)
			d.Annotation = fmt.Sprintf("-> %d", i+1+instr.Offset)
		}
		instructions = append(instructions, d)
	}
	return instructions
}

func formatLiteral(v any) string {
	v, err := bytecode.NormalizeLiteral(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	switch v := v.(type) {
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case string:
		if len(v) > 80 {
			v = v[:77] + "..."
		}
		return strconv.Quote(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func colorize(instr Instruction) string {
	switch instr.Opcode {
	case op.Push:
		if len(instr.Operand) > 0 && instr.Operand[0] == '"' {
			return stringColor.Sprint(instr.Operand)
		}
		return numberColor.Sprint(instr.Operand)
	case op.PushLambda:
		return functionColor.Sprint(instr.Operand)
	case op.GetEnv, op.SetEnv:
		return nameColor.Sprint(instr.Operand)
	default:
		return instr.Operand
	}
}

// Print a table of the given instructions to the given writer.
func Print(instructions []Instruction, writer io.Writer) {
	var lines [][]string
	for _, instr := range instructions {
		lines = append(lines, []string{
			strconv.Itoa(instr.Offset),
			opcodeColor.Sprint(instr.Name),
			colorize(instr),
			instr.Annotation,
			instr.Span.String(),
		})
	}
	table.NewTable(writer).
		WithHeader([]string{"OFFSET", "OPCODE", "OPERAND", "INFO", "SPAN"}).
		WithColumnAlignment([]table.Alignment{
			table.AlignRight,
			table.AlignLeft,
			table.AlignLeft,
			table.AlignLeft,
			table.AlignRight,
		}).
		WithHeaderAlignment([]table.Alignment{
			table.AlignCenter,
			table.AlignCenter,
			table.AlignCenter,
			table.AlignCenter,
			table.AlignCenter,
		}).
		WithRows(lines).
		Render()
}

// PrintCode disassembles code and every function nested in it, printing one
// titled table per code object. Codes shared by several functions are
// printed once.
func PrintCode(code *bytecode.Code, writer io.Writer) {
	seen := map[*bytecode.Code]bool{}
	var walk func(title string, c *bytecode.Code)
	walk = func(title string, c *bytecode.Code) {
		if c == nil || seen[c] {
			return
		}
		seen[c] = true
		if len(seen) > 1 {
			fmt.Fprintln(writer)
		}
		fmt.Fprintln(writer, title)
		Print(Disassemble(c), writer)
		for _, fn := range c.Functions() {
			walk(fn.String(), fn.Code())
		}
	}
	name := code.Name()
	if name == "" {
		name = "main"
	}
	walk(name, code)
}
