package bytecode

import (
	"fmt"

	"github.com/benlang/ben/op"
)

// Instruction is a single compiled instruction. The set of implementations is
// closed: one concrete type per opcode, all defined in this package.
type Instruction interface {
	// Opcode returns the operation this instruction performs.
	Opcode() op.Code

	// Location returns the source span the instruction was compiled from.
	Location() Span

	fmt.Stringer

	sealed()
}

// Push pushes a literal number, string or boolean onto the operand stack.
type Push struct {
	Value any
	Span  Span
}

// PushLambda pushes a new lambda built from Function, capturing the scope
// of the frame that executes it.
type PushLambda struct {
	Function *Function
	Span     Span
}

// Pop discards the top of the operand stack.
type Pop struct {
	Span Span
}

// ArgStart pushes the marker that delimits the start of an argument list.
type ArgStart struct {
	Span Span
}

// GetEnv pushes the value bound to Name in the current scope chain.
type GetEnv struct {
	Name string
	Span Span
}

// SetEnv binds Name in the current scope to the top of the operand stack and
// pops it.
type SetEnv struct {
	Name string
	Span Span
}

// Invoke calls the invokable on top of the operand stack. Tail is set by the
// compiler when the call is in tail position.
type Invoke struct {
	Tail bool
	Span Span
}

// IfNotTrueJump pops the top of the stack and adds Offset to the instruction
// pointer unless the popped value is the boolean true.
type IfNotTrueJump struct {
	Offset int
	Span   Span
}

// Jump adds Offset to the instruction pointer.
type Jump struct {
	Offset int
	Span   Span
}

// Return ends the current call frame.
type Return struct {
	Span Span
}

func (Push) Opcode() op.Code          { return op.Push }
func (PushLambda) Opcode() op.Code    { return op.PushLambda }
func (Pop) Opcode() op.Code           { return op.Pop }
func (ArgStart) Opcode() op.Code      { return op.ArgStart }
func (GetEnv) Opcode() op.Code        { return op.GetEnv }
func (SetEnv) Opcode() op.Code        { return op.SetEnv }
func (Invoke) Opcode() op.Code        { return op.Invoke }
func (IfNotTrueJump) Opcode() op.Code { return op.IfNotTrueJump }
func (Jump) Opcode() op.Code          { return op.Jump }
func (Return) Opcode() op.Code        { return op.Return }

func (i Push) Location() Span          { return i.Span }
func (i PushLambda) Location() Span    { return i.Span }
func (i Pop) Location() Span           { return i.Span }
func (i ArgStart) Location() Span      { return i.Span }
func (i GetEnv) Location() Span        { return i.Span }
func (i SetEnv) Location() Span        { return i.Span }
func (i Invoke) Location() Span        { return i.Span }
func (i IfNotTrueJump) Location() Span { return i.Span }
func (i Jump) Location() Span          { return i.Span }
func (i Return) Location() Span        { return i.Span }

func (i Push) String() string {
	if s, ok := i.Value.(string); ok {
		return fmt.Sprintf("push %q", s)
	}
	return fmt.Sprintf("push %v", i.Value)
}

func (i PushLambda) String() string {
	if i.Function == nil {
		return "push_lambda <nil>"
	}
	return "push_lambda " + i.Function.String()
}

func (Pop) String() string      { return "pop" }
func (ArgStart) String() string { return "arg_start" }
func (Return) String() string   { return "return" }

func (i GetEnv) String() string        { return "get_env " + i.Name }
func (i SetEnv) String() string        { return "set_env " + i.Name }
func (i IfNotTrueJump) String() string { return fmt.Sprintf("if_not_true_jump %+d", i.Offset) }
func (i Jump) String() string          { return fmt.Sprintf("jump %+d", i.Offset) }

func (i Invoke) String() string {
	if i.Tail {
		return "invoke tail"
	}
	return "invoke"
}

func (Push) sealed()          {}
func (PushLambda) sealed()    {}
func (Pop) sealed()           {}
func (ArgStart) sealed()      {}
func (GetEnv) sealed()        {}
func (SetEnv) sealed()        {}
func (Invoke) sealed()        {}
func (IfNotTrueJump) sealed() {}
func (Jump) sealed()          {}
func (Return) sealed()        {}

// NormalizeLiteral converts a decoded literal to one of the three literal
// representations the VM understands: float64, string or bool. Integer types
// produced by decoders are widened to float64.
func NormalizeLiteral(v any) (any, error) {
	switch v := v.(type) {
	case float64, string, bool:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int8:
		return float64(v), nil
	case int16:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case uint:
		return float64(v), nil
	case uint8:
		return float64(v), nil
	case uint16:
		return float64(v), nil
	case uint32:
		return float64(v), nil
	case uint64:
		return float64(v), nil
	default:
		return nil, fmt.Errorf("unsupported literal type: %T", v)
	}
}
