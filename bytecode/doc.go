// Package bytecode provides immutable representations of compiled ben code.
//
// This package defines the input of the virtual machine: pure data structures
// produced by a compiler and shared safely across any number of program
// states. A lambda's identity for tail-call purposes is the identity of its
// *Code pointer, so a Code must never be copied once constructed.
//
// # Key Types
//
//   - [Instruction]: A closed sum type with one concrete type per opcode
//   - [Code]: An immutable instruction sequence (program body or lambda body)
//   - [Function]: A lambda template: parameter names plus a Code reference
//   - [Span]: Byte offsets into the original source text (value type)
//   - [Program]: The top-level Code together with its source text
//
// # Immutability Guarantees
//
// All types in this package are immutable after construction:
//
//   - All fields of Code and Function are unexported
//   - Constructors copy input slices to prevent caller mutation
//   - Index-based access is used for all collections
//
// # Wire Formats
//
// Programs can be serialized as JSON ([Marshal], [Unmarshal]) or CBOR
// ([MarshalCBOR], [UnmarshalCBOR]). Both formats share one schema in which
// every Code appears once in a table and lambdas reference it by index, so a
// round trip preserves Code identity.
package bytecode
