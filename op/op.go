// Package op defines the opcodes executed by the ben virtual machine.
package op

// Code is an integer opcode that indicates an operation to execute.
type Code uint8

const (
	Invalid Code = 0

	// Stack
	Push       Code = 1
	PushLambda Code = 2
	Pop        Code = 3
	ArgStart   Code = 4

	// Environment
	GetEnv Code = 10
	SetEnv Code = 11

	// Execution
	Invoke Code = 20
	Return Code = 21

	// Jump
	IfNotTrueJump Code = 30
	Jump          Code = 31
)

// Info contains information about an opcode.
type Info struct {
	Code         Code
	Name         string
	OperandCount int
}

var (
	infos  = make([]Info, 256)
	byName = map[string]Code{}
)

func init() {
	type opInfo struct {
		op    Code
		name  string
		count int
	}
	ops := []opInfo{
		{ArgStart, "arg_start", 0},
		{GetEnv, "get_env", 1},
		{IfNotTrueJump, "if_not_true_jump", 1},
		{Invoke, "invoke", 1},
		{Jump, "jump", 1},
		{Pop, "pop", 0},
		{Push, "push", 1},
		{PushLambda, "push_lambda", 1},
		{Return, "return", 0},
		{SetEnv, "set_env", 1},
	}
	for _, o := range ops {
		infos[o.op] = Info{
			Name:         o.name,
			Code:         o.op,
			OperandCount: o.count,
		}
		byName[o.name] = o.op
	}
}

// GetInfo returns information about the given opcode.
func GetInfo(op Code) Info {
	return infos[op]
}

// Lookup returns the opcode with the given wire name, e.g. "get_env".
func Lookup(name string) (Code, bool) {
	code, ok := byName[name]
	return code, ok
}

// String returns the wire name of the opcode.
func (c Code) String() string {
	if name := infos[c].Name; name != "" {
		return name
	}
	return "invalid"
}
