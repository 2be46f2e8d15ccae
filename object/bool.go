package object

var (
	True  = &Bool{value: true}
	False = &Bool{value: false}
)

// Bool wraps bool and implements Value.
type Bool struct {
	value bool
}

func (b *Bool) Type() Type {
	return BOOL
}

func (b *Bool) Value() bool {
	return b.value
}

func (b *Bool) Inspect() string {
	if b.value {
		return "true"
	}
	return "false"
}

func (b *Bool) String() string {
	return b.Inspect()
}

func (b *Bool) Interface() any {
	return b.value
}

func (b *Bool) Equals(other Value) bool {
	o, ok := other.(*Bool)
	return ok && b.value == o.value
}

// NewBool returns one of the True or False singletons.
func NewBool(value bool) *Bool {
	if value {
		return True
	}
	return False
}

// IsTrue returns true only for the boolean true. Every other value,
// including numbers and strings, is not true.
func IsTrue(v Value) bool {
	b, ok := v.(*Bool)
	return ok && b.value
}
