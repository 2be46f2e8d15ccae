package bytecode

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// Validate checks code produced by a compiler, or decoded from a file, for
// contract violations the VM would otherwise only discover mid-run: unknown
// literal types, empty names, missing lambda bodies, duplicate parameters and
// jumps that leave the instruction sequence. All problems found are returned
// together as a *multierror.Error.
func Validate(code *Code) error {
	v := &validator{seen: map[*Code]bool{}}
	v.code(code)
	return v.result.ErrorOrNil()
}

type validator struct {
	seen   map[*Code]bool
	result *multierror.Error
}

func (v *validator) errorf(code *Code, index int, format string, args ...any) {
	name := code.Name()
	if name == "" {
		name = "<anonymous>"
	}
	err := fmt.Errorf("%s[%d]: %s", name, index, fmt.Sprintf(format, args...))
	v.result = multierror.Append(v.result, err)
}

func (v *validator) code(code *Code) {
	if code == nil {
		v.result = multierror.Append(v.result, fmt.Errorf("code is nil"))
		return
	}
	if v.seen[code] {
		return
	}
	v.seen[code] = true
	count := code.InstructionCount()
	for i := 0; i < count; i++ {
		switch instr := code.InstructionAt(i).(type) {
		case nil:
			v.errorf(code, i, "nil instruction")
		case Push:
			if _, err := NormalizeLiteral(instr.Value); err != nil {
				v.errorf(code, i, "%v", err)
			}
		case PushLambda:
			v.function(code, i, instr.Function)
		case GetEnv:
			if instr.Name == "" {
				v.errorf(code, i, "get_env requires a name")
			}
		case SetEnv:
			if instr.Name == "" {
				v.errorf(code, i, "set_env requires a name")
			}
		case IfNotTrueJump:
			v.jump(code, i, instr.Offset)
		case Jump:
			v.jump(code, i, instr.Offset)
		}
	}
}

func (v *validator) function(code *Code, index int, fn *Function) {
	if fn == nil {
		v.errorf(code, index, "push_lambda requires a function")
		return
	}
	if fn.Code() == nil {
		v.errorf(code, index, "function %s has no code", fn)
		return
	}
	params := map[string]bool{}
	for i := 0; i < fn.ParameterCount(); i++ {
		name := fn.Parameter(i)
		if name == "" {
			v.errorf(code, index, "function %s has an empty parameter name", fn)
		} else if params[name] {
			v.errorf(code, index, "function %s has duplicate parameter %q", fn, name)
		}
		params[name] = true
	}
	v.code(fn.Code())
}

// Jump offsets are relative to the instruction after the jump, since the VM
// advances the pointer before dispatch.
func (v *validator) jump(code *Code, index, offset int) {
	target := index + 1 + offset
	if target < 0 || target >= code.InstructionCount() {
		v.errorf(code, index, "jump target %d out of range [0, %d)",
			target, code.InstructionCount())
	}
}
