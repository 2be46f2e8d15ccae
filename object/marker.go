package object

// ArgStart is the sentinel pushed by the arg_start instruction. Invoke pops
// arguments back to the nearest ArgStart.
var ArgStart = &Marker{name: "ARG_START"}

// Marker is a sentinel operand-stack value. It is never invokable and never
// produced by user code.
type Marker struct {
	name string
}

func (m *Marker) Type() Type {
	return ARG_START
}

func (m *Marker) Inspect() string {
	return m.name
}

func (m *Marker) String() string {
	return m.name
}

func (m *Marker) Interface() any {
	return nil
}

func (m *Marker) Equals(other Value) bool {
	return m == other
}
