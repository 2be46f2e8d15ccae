package object

import "strconv"

// String wraps string and implements Value.
type String struct {
	value string
}

func (s *String) Type() Type {
	return STRING
}

func (s *String) Value() string {
	return s.value
}

func (s *String) Inspect() string {
	return strconv.Quote(s.value)
}

func (s *String) String() string {
	return s.value
}

func (s *String) Interface() any {
	return s.value
}

func (s *String) Equals(other Value) bool {
	o, ok := other.(*String)
	return ok && s.value == o.value
}

func NewString(value string) *String {
	return &String{value: value}
}
