package debug

import (
	"github.com/benlang/ben/errz"
	"github.com/benlang/ben/object"
	"github.com/benlang/ben/vm"
)

// Snapshot is a serializable view of a program state for display.
type Snapshot struct {
	Steps       int        `json:"steps"`
	Complete    bool       `json:"complete"`
	Crashed     bool       `json:"crashed"`
	Instruction string     `json:"instruction,omitempty"`
	Stack       []Value    `json:"stack"`
	Frames      []Frame    `json:"frames"`
	Scopes      []Scope    `json:"scopes"`
	Exception   *Exception `json:"exception,omitempty"`
	Output      []string   `json:"output"`
}

type Value struct {
	Type   string `json:"type"`
	Repr   string `json:"repr"`
	Source string `json:"source,omitempty"`
}

type Frame struct {
	Code    string `json:"code"`
	Pointer int    `json:"pointer"`
	Scope   int    `json:"scope"`
	Tail    bool   `json:"tail"`
}

type Scope struct {
	ID       int               `json:"id"`
	Parent   *int              `json:"parent,omitempty"`
	Bindings map[string]string `json:"bindings"`
}

type Exception struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Source  string `json:"source"`
	Line    int    `json:"line"`
	Column  int    `json:"column"`
}

// SnapshotOption configures TakeSnapshot.
type SnapshotOption func(*snapshotConfig)

type snapshotConfig struct {
	skipRoot bool
}

// WithoutRootScope omits the root scope, which usually only holds the
// standard library.
func WithoutRootScope() SnapshotOption {
	return func(c *snapshotConfig) {
		c.skipRoot = true
	}
}

// TakeSnapshot captures s. The stack is listed bottom first and frames
// outermost first.
func TakeSnapshot(s *vm.State, options ...SnapshotOption) *Snapshot {
	var cfg snapshotConfig
	for _, opt := range options {
		opt(&cfg)
	}
	snap := &Snapshot{
		Steps:    s.Steps(),
		Complete: s.IsComplete(),
		Crashed:  s.IsCrashed(),
		Stack:    []Value{},
		Frames:   []Frame{},
		Scopes:   []Scope{},
		Output:   s.Output(),
	}
	if instr := s.CurrentInstruction(); instr != nil {
		snap.Instruction = instr.String()
	}
	for _, entry := range s.Stack() {
		snap.Stack = append(snap.Stack, Value{
			Type:   string(entry.Value.Type()),
			Repr:   entry.Value.Inspect(),
			Source: entry.Span.Slice(s.Code()),
		})
	}
	for _, frame := range s.CallStack() {
		snap.Frames = append(snap.Frames, Frame{
			Code:    frame.Code.Name(),
			Pointer: frame.Pointer,
			Scope:   int(frame.Scope),
			Tail:    frame.Tail,
		})
	}
	scopes := s.Scopes()
	for _, id := range scopes.IDs() {
		if cfg.skipRoot && id == 0 {
			continue
		}
		frame, _ := scopes.Frame(id)
		sc := Scope{ID: int(id), Bindings: map[string]string{}}
		if parent, ok := frame.Parent(); ok {
			p := int(parent)
			sc.Parent = &p
		}
		for _, name := range frame.Names() {
			v, _ := frame.Get(name)
			sc.Bindings[name] = inspect(v)
		}
		snap.Scopes = append(snap.Scopes, sc)
	}
	if exc := s.Exception(); exc != nil {
		snap.Exception = exception(exc, s.Code())
	}
	return snap
}

func inspect(v object.Value) string {
	if v == nil {
		return "<nil>"
	}
	return v.Inspect()
}

func exception(err *errz.RuntimeError, source string) *Exception {
	line, col := errz.Locate(source, err.Span.Start)
	return &Exception{
		Kind:    err.Kind.String(),
		Message: err.Message,
		Source:  err.Snippet(source),
		Line:    line,
		Column:  col,
	}
}
