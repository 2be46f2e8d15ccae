package object

import "strconv"

// Number wraps float64 and implements Value.
type Number struct {
	value float64
}

func (n *Number) Type() Type {
	return NUMBER
}

func (n *Number) Value() float64 {
	return n.value
}

func (n *Number) Inspect() string {
	return strconv.FormatFloat(n.value, 'f', -1, 64)
}

func (n *Number) String() string {
	return n.Inspect()
}

func (n *Number) Interface() any {
	return n.value
}

func (n *Number) Equals(other Value) bool {
	o, ok := other.(*Number)
	return ok && n.value == o.value
}

func NewNumber(value float64) *Number {
	return &Number{value: value}
}
