package bytecode

import "strings"

// Code represents a compiled instruction sequence (a program body or a lambda
// body). It is immutable after creation and safe for concurrent use.
type Code struct {
	name         string
	instructions []Instruction
}

// CodeParams contains parameters for creating a new Code.
type CodeParams struct {
	Name         string
	Instructions []Instruction
}

// NewCode creates a new immutable Code from the given parameters. The
// instruction slice is copied to ensure immutability.
func NewCode(params CodeParams) *Code {
	instructions := make([]Instruction, len(params.Instructions))
	copy(instructions, params.Instructions)
	return &Code{
		name:         params.Name,
		instructions: instructions,
	}
}

// Name returns the name of the code block, e.g. "main" or a lambda name.
func (c *Code) Name() string {
	return c.name
}

// InstructionCount returns the number of instructions.
func (c *Code) InstructionCount() int {
	return len(c.instructions)
}

// InstructionAt returns the instruction at the given index.
func (c *Code) InstructionAt(index int) Instruction {
	return c.instructions[index]
}

// Functions returns the function templates pushed by this code, in
// instruction order. Nested functions are not included.
func (c *Code) Functions() []*Function {
	var fns []*Function
	for _, instr := range c.instructions {
		if pl, ok := instr.(PushLambda); ok && pl.Function != nil {
			fns = append(fns, pl.Function)
		}
	}
	return fns
}

// String returns one instruction per line.
func (c *Code) String() string {
	lines := make([]string, 0, len(c.instructions))
	for _, instr := range c.instructions {
		lines = append(lines, instr.String())
	}
	return strings.Join(lines, "\n")
}

// Program is a compiled top-level Code together with the source text it was
// compiled from. Spans in the instructions index into Source.
type Program struct {
	Source string
	Main   *Code
}
