package bytecode

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fxamacker/cbor/v2"

	"github.com/benlang/ben/op"
)

// Marshal converts a Program into its JSON representation.
func Marshal(p *Program) ([]byte, error) {
	state, err := stateFromProgram(p)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(state, "", "  ")
}

// Unmarshal converts a JSON representation into a Program.
func Unmarshal(data []byte) (*Program, error) {
	var state programState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, err
	}
	return programFromState(&state)
}

// MarshalCBOR converts a Program into its CBOR representation.
func MarshalCBOR(p *Program) ([]byte, error) {
	state, err := stateFromProgram(p)
	if err != nil {
		return nil, err
	}
	return cbor.Marshal(state)
}

// UnmarshalCBOR converts a CBOR representation into a Program.
func UnmarshalCBOR(data []byte) (*Program, error) {
	var state programState
	if err := cbor.Unmarshal(data, &state); err != nil {
		return nil, err
	}
	return programFromState(&state)
}

// ReadFile loads a Program from a .json or .cbor file.
func ReadFile(path string) (*Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		return Unmarshal(data)
	case ".cbor":
		return UnmarshalCBOR(data)
	default:
		return nil, fmt.Errorf("unsupported bytecode file extension: %q", ext)
	}
}

// WriteFile saves a Program to a .json or .cbor file.
func WriteFile(path string, p *Program) error {
	var data []byte
	var err error
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		data, err = Marshal(p)
	case ".cbor":
		data, err = MarshalCBOR(p)
	default:
		return fmt.Errorf("unsupported bytecode file extension: %q", ext)
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Serialization types

type programState struct {
	Source string      `json:"source,omitempty" cbor:"source,omitempty"`
	Main   int         `json:"main" cbor:"main"`
	Codes  []codeState `json:"codes" cbor:"codes"`
}

type codeState struct {
	Name         string             `json:"name,omitempty" cbor:"name,omitempty"`
	Instructions []instructionState `json:"instructions" cbor:"instructions"`
}

type instructionState struct {
	Op       string         `json:"op" cbor:"op"`
	Value    any            `json:"value,omitempty" cbor:"value,omitempty"`
	Name     string         `json:"name,omitempty" cbor:"name,omitempty"`
	Offset   int            `json:"offset,omitempty" cbor:"offset,omitempty"`
	Tail     bool           `json:"tail,omitempty" cbor:"tail,omitempty"`
	Function *functionState `json:"function,omitempty" cbor:"function,omitempty"`
	Span     [2]int         `json:"span" cbor:"span"`
}

type functionState struct {
	Name       string   `json:"name,omitempty" cbor:"name,omitempty"`
	Parameters []string `json:"parameters" cbor:"parameters"`
	CodeIndex  int      `json:"code" cbor:"code"`
}

// encoder assigns each distinct *Code one slot in the codes table.
type encoder struct {
	indexes map[*Code]int
	codes   []codeState
}

func stateFromProgram(p *Program) (*programState, error) {
	if p == nil || p.Main == nil {
		return nil, fmt.Errorf("program has no main code")
	}
	enc := &encoder{indexes: map[*Code]int{}}
	main, err := enc.code(p.Main)
	if err != nil {
		return nil, err
	}
	return &programState{Source: p.Source, Main: main, Codes: enc.codes}, nil
}

func (e *encoder) code(c *Code) (int, error) {
	if index, ok := e.indexes[c]; ok {
		return index, nil
	}
	index := len(e.codes)
	e.indexes[c] = index
	e.codes = append(e.codes, codeState{Name: c.Name()})
	instructions := make([]instructionState, 0, c.InstructionCount())
	for i := 0; i < c.InstructionCount(); i++ {
		instr := c.InstructionAt(i)
		if instr == nil {
			return 0, fmt.Errorf("%s[%d]: nil instruction", c.Name(), i)
		}
		span := instr.Location()
		state := instructionState{
			Op:   instr.Opcode().String(),
			Span: [2]int{span.Start, span.End},
		}
		switch instr := instr.(type) {
		case Push:
			value, err := NormalizeLiteral(instr.Value)
			if err != nil {
				return 0, fmt.Errorf("%s[%d]: %w", c.Name(), i, err)
			}
			state.Value = value
		case PushLambda:
			if instr.Function == nil || instr.Function.Code() == nil {
				return 0, fmt.Errorf("%s[%d]: push_lambda without code", c.Name(), i)
			}
			codeIndex, err := e.code(instr.Function.Code())
			if err != nil {
				return 0, err
			}
			state.Function = &functionState{
				Name:       instr.Function.Name(),
				Parameters: instr.Function.Parameters(),
				CodeIndex:  codeIndex,
			}
		case GetEnv:
			state.Name = instr.Name
		case SetEnv:
			state.Name = instr.Name
		case Invoke:
			state.Tail = instr.Tail
		case IfNotTrueJump:
			state.Offset = instr.Offset
		case Jump:
			state.Offset = instr.Offset
		}
		instructions = append(instructions, state)
	}
	e.codes[index].Instructions = instructions
	return index, nil
}

// decoder builds each Code once, children first, so that every lambda that
// references the same table slot shares one *Code.
type decoder struct {
	state    *programState
	codes    map[int]*Code
	visiting map[int]bool
}

func programFromState(state *programState) (*Program, error) {
	dec := &decoder{
		state:    state,
		codes:    map[int]*Code{},
		visiting: map[int]bool{},
	}
	main, err := dec.code(state.Main)
	if err != nil {
		return nil, err
	}
	return &Program{Source: state.Source, Main: main}, nil
}

func (d *decoder) code(index int) (*Code, error) {
	if c, ok := d.codes[index]; ok {
		return c, nil
	}
	if index < 0 || index >= len(d.state.Codes) {
		return nil, fmt.Errorf("code index %d out of range", index)
	}
	if d.visiting[index] {
		return nil, fmt.Errorf("code %d contains itself", index)
	}
	d.visiting[index] = true
	defer delete(d.visiting, index)

	cs := d.state.Codes[index]
	instructions := make([]Instruction, 0, len(cs.Instructions))
	for i, is := range cs.Instructions {
		instr, err := d.instruction(is)
		if err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", cs.Name, i, err)
		}
		instructions = append(instructions, instr)
	}
	c := NewCode(CodeParams{Name: cs.Name, Instructions: instructions})
	d.codes[index] = c
	return c, nil
}

func (d *decoder) instruction(is instructionState) (Instruction, error) {
	code, ok := op.Lookup(is.Op)
	if !ok {
		return nil, fmt.Errorf("unknown instruction %q", is.Op)
	}
	span := Span{Start: is.Span[0], End: is.Span[1]}
	switch code {
	case op.Push:
		value, err := NormalizeLiteral(is.Value)
		if err != nil {
			return nil, err
		}
		return Push{Value: value, Span: span}, nil
	case op.PushLambda:
		if is.Function == nil {
			return nil, fmt.Errorf("push_lambda requires a function")
		}
		body, err := d.code(is.Function.CodeIndex)
		if err != nil {
			return nil, err
		}
		fn := NewFunction(FunctionParams{
			Name:       is.Function.Name,
			Parameters: is.Function.Parameters,
			Code:       body,
		})
		return PushLambda{Function: fn, Span: span}, nil
	case op.Pop:
		return Pop{Span: span}, nil
	case op.ArgStart:
		return ArgStart{Span: span}, nil
	case op.GetEnv:
		return GetEnv{Name: is.Name, Span: span}, nil
	case op.SetEnv:
		return SetEnv{Name: is.Name, Span: span}, nil
	case op.Invoke:
		return Invoke{Tail: is.Tail, Span: span}, nil
	case op.IfNotTrueJump:
		return IfNotTrueJump{Offset: is.Offset, Span: span}, nil
	case op.Jump:
		return Jump{Offset: is.Offset, Span: span}, nil
	case op.Return:
		return Return{Span: span}, nil
	default:
		return nil, fmt.Errorf("unknown instruction %q", is.Op)
	}
}
