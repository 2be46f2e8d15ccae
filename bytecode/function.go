package bytecode

import (
	"fmt"
	"strings"
)

// Function represents a compiled lambda template. It is immutable after
// creation and contains all the static information needed to create lambda
// values at runtime.
type Function struct {
	name       string
	parameters []string
	code       *Code
}

// FunctionParams contains parameters for creating a new Function.
type FunctionParams struct {
	Name       string
	Parameters []string
	Code       *Code
}

// NewFunction creates a new immutable Function from the given parameters.
// Input slices are copied to ensure immutability.
func NewFunction(params FunctionParams) *Function {
	parameters := make([]string, len(params.Parameters))
	copy(parameters, params.Parameters)
	return &Function{
		name:       params.Name,
		parameters: parameters,
		code:       params.Code,
	}
}

// Name returns the function name, or empty string for anonymous functions.
func (f *Function) Name() string {
	return f.name
}

// Code returns the compiled bytecode for this function's body.
func (f *Function) Code() *Code {
	return f.code
}

// ParameterCount returns the number of parameters.
func (f *Function) ParameterCount() int {
	return len(f.parameters)
}

// Parameter returns the name of the parameter at the given index.
func (f *Function) Parameter(index int) string {
	return f.parameters[index]
}

// Parameters returns a copy of the parameter names.
func (f *Function) Parameters() []string {
	parameters := make([]string, len(f.parameters))
	copy(parameters, f.parameters)
	return parameters
}

// String returns a string representation of the function signature.
func (f *Function) String() string {
	name := f.name
	if name == "" {
		name = "<anonymous>"
	}
	return fmt.Sprintf("%s(%s)", name, strings.Join(f.parameters, ", "))
}
