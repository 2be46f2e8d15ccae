// Package builtins defines the default set of global bindings.
package builtins

import (
	"fmt"
	"strings"

	"github.com/benlang/ben/object"
	"github.com/benlang/ben/vm"
)

// Add sums its number arguments, or concatenates them when the first is a
// string.
func Add(s *vm.State, args []object.Value) (*vm.State, object.Value, error) {
	if len(args) == 0 {
		return nil, nil, fmt.Errorf("+: expected at least 1 argument, got 0")
	}
	if _, ok := args[0].(*object.String); ok {
		var sb strings.Builder
		for _, arg := range args {
			str, ok := arg.(*object.String)
			if !ok {
				return nil, nil, fmt.Errorf("type error: +: cannot add %s to string", arg.Type())
			}
			sb.WriteString(str.Value())
		}
		return s, object.NewString(sb.String()), nil
	}
	nums, err := numbers("+", args)
	if err != nil {
		return nil, nil, err
	}
	var sum float64
	for _, n := range nums {
		sum += n
	}
	return s, object.NewNumber(sum), nil
}

// Subtract returns a - b, or -a with a single argument.
func Subtract(s *vm.State, args []object.Value) (*vm.State, object.Value, error) {
	nums, err := numbers("-", args)
	if err != nil {
		return nil, nil, err
	}
	switch len(nums) {
	case 1:
		return s, object.NewNumber(-nums[0]), nil
	case 2:
		return s, object.NewNumber(nums[0] - nums[1]), nil
	default:
		return nil, nil, fmt.Errorf("-: expected 1 or 2 arguments, got %d", len(nums))
	}
}

// Multiply returns the product of its arguments.
func Multiply(s *vm.State, args []object.Value) (*vm.State, object.Value, error) {
	if len(args) == 0 {
		return nil, nil, fmt.Errorf("*: expected at least 1 argument, got 0")
	}
	nums, err := numbers("*", args)
	if err != nil {
		return nil, nil, err
	}
	product := 1.0
	for _, n := range nums {
		product *= n
	}
	return s, object.NewNumber(product), nil
}

// Divide returns a / b. Dividing by zero is an error.
func Divide(s *vm.State, args []object.Value) (*vm.State, object.Value, error) {
	nums, err := numbers("/", args)
	if err != nil {
		return nil, nil, err
	}
	if len(nums) != 2 {
		return nil, nil, fmt.Errorf("/: expected 2 arguments, got %d", len(nums))
	}
	if nums[1] == 0 {
		return nil, nil, fmt.Errorf("value error: division by zero")
	}
	return s, object.NewNumber(nums[0] / nums[1]), nil
}

// Equal reports whether its two arguments are equal values.
func Equal(s *vm.State, args []object.Value) (*vm.State, object.Value, error) {
	if len(args) != 2 {
		return nil, nil, fmt.Errorf("=: expected 2 arguments, got %d", len(args))
	}
	return s, object.NewBool(args[0].Equals(args[1])), nil
}

// Less reports whether a < b.
func Less(s *vm.State, args []object.Value) (*vm.State, object.Value, error) {
	nums, err := numbers("<", args)
	if err != nil {
		return nil, nil, err
	}
	if len(nums) != 2 {
		return nil, nil, fmt.Errorf("<: expected 2 arguments, got %d", len(nums))
	}
	return s, object.NewBool(nums[0] < nums[1]), nil
}

// Greater reports whether a > b.
func Greater(s *vm.State, args []object.Value) (*vm.State, object.Value, error) {
	nums, err := numbers(">", args)
	if err != nil {
		return nil, nil, err
	}
	if len(nums) != 2 {
		return nil, nil, fmt.Errorf(">: expected 2 arguments, got %d", len(nums))
	}
	return s, object.NewBool(nums[0] > nums[1]), nil
}

// Not returns true for any argument other than the boolean true.
func Not(s *vm.State, args []object.Value) (*vm.State, object.Value, error) {
	if len(args) != 1 {
		return nil, nil, fmt.Errorf("not: expected 1 argument, got %d", len(args))
	}
	return s, object.NewBool(!object.IsTrue(args[0])), nil
}

// Print appends its arguments, space separated, to the state's output log
// and returns the printed line.
func Print(s *vm.State, args []object.Value) (*vm.State, object.Value, error) {
	line := printLine(args)
	return s.WithOutput(line), object.NewString(line), nil
}

// PrintResult returns the line Print would print, without printing it.
func PrintResult(args []object.Value) (object.Value, error) {
	return object.NewString(printLine(args)), nil
}

func printLine(args []object.Value) string {
	parts := make([]string, len(args))
	for i, arg := range args {
		if str, ok := arg.(*object.String); ok {
			parts[i] = str.Value()
		} else {
			parts[i] = arg.Inspect()
		}
	}
	return strings.Join(parts, " ")
}

func numbers(name string, args []object.Value) ([]float64, error) {
	nums := make([]float64, len(args))
	for i, arg := range args {
		n, ok := arg.(*object.Number)
		if !ok {
			return nil, fmt.Errorf("type error: %s: expected number (%s given)", name, arg.Type())
		}
		nums[i] = n.Value()
	}
	return nums, nil
}

// Builtins returns the default global bindings.
func Builtins() map[string]object.Value {
	return map[string]object.Value{
		"+":     vm.NewBuiltin("+", Add),
		"-":     vm.NewBuiltin("-", Subtract),
		"*":     vm.NewBuiltin("*", Multiply),
		"/":     vm.NewBuiltin("/", Divide),
		"=":     vm.NewBuiltin("=", Equal),
		"<":     vm.NewBuiltin("<", Less),
		">":     vm.NewBuiltin(">", Greater),
		"not":   vm.NewBuiltin("not", Not),
		"print": vm.NewOutputtingBuiltin("print", Print, PrintResult),
	}
}
