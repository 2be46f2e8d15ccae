// Package scope implements the persistent scope store used by the virtual
// machine for lexical variable resolution and closure capture.
//
// Scopes live in an arena keyed by integer ID. Parent links and closures hold
// IDs, never pointers, so capture is by reference to an arena slot and no
// ownership cycles arise. Every operation that changes the table returns a
// new Table sharing structure with the old one; a Table is never mutated.
package scope

import (
	"errors"
	"fmt"
	"sort"

	"github.com/benbjohnson/immutable"
)

// ID identifies a scope frame within a Table.
type ID int

// Root is the ID of the global scope created by NewTable.
const Root ID = 0

var (
	// ErrNotFound is returned when a name is not bound anywhere in the chain.
	ErrNotFound = errors.New("name not found")

	// ErrNoScope is returned when an ID does not refer to a live scope.
	ErrNoScope = errors.New("scope does not exist")
)

// Frame is one scope: a set of bindings plus an optional parent.
type Frame[V any] struct {
	bindings  *immutable.Map[string, V]
	parent    ID
	hasParent bool
}

// Get returns the value bound to name in this frame only.
func (f *Frame[V]) Get(name string) (V, bool) {
	return f.bindings.Get(name)
}

// Parent returns the parent scope ID, if the frame has one.
func (f *Frame[V]) Parent() (ID, bool) {
	return f.parent, f.hasParent
}

// Len returns the number of bindings in the frame.
func (f *Frame[V]) Len() int {
	return f.bindings.Len()
}

// Names returns the names bound in this frame, sorted.
func (f *Frame[V]) Names() []string {
	names := make([]string, 0, f.bindings.Len())
	itr := f.bindings.Iterator()
	for !itr.Done() {
		name, _, _ := itr.Next()
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Table is a persistent map of scope IDs to frames.
type Table[V any] struct {
	frames *immutable.Map[ID, *Frame[V]]
	next   ID
}

// NewTable creates a table holding only the root scope, bound to globals.
func NewTable[V any](globals map[string]V) *Table[V] {
	t := &Table[V]{
		frames: immutable.NewMap[ID, *Frame[V]](immutable.NewHasher(Root)),
		next:   Root,
	}
	t, _ = t.create(globals, Root, false)
	return t
}

// Create adds a new scope with the given bindings whose parent is the given
// scope. IDs are never reused, even after Delete.
func (t *Table[V]) Create(bindings map[string]V, parent ID) (*Table[V], ID) {
	return t.create(bindings, parent, true)
}

func (t *Table[V]) create(bindings map[string]V, parent ID, hasParent bool) (*Table[V], ID) {
	m := immutable.NewMap[string, V](immutable.NewHasher(""))
	for name, value := range bindings {
		m = m.Set(name, value)
	}
	id := t.next
	frame := &Frame[V]{bindings: m, parent: parent, hasParent: hasParent}
	return &Table[V]{frames: t.frames.Set(id, frame), next: id + 1}, id
}

// Lookup resolves name starting at the given scope and walking parent links,
// returning the nearest enclosing binding.
func (t *Table[V]) Lookup(start ID, name string) (V, error) {
	var zero V
	id := start
	for {
		frame, ok := t.frames.Get(id)
		if !ok {
			return zero, fmt.Errorf("%w: %d", ErrNoScope, id)
		}
		if value, found := frame.Get(name); found {
			return value, nil
		}
		parent, ok := frame.Parent()
		if !ok {
			return zero, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		id = parent
	}
}

// Bind sets name in the given scope only, adding or overwriting the binding.
// Parent scopes are never searched or modified.
func (t *Table[V]) Bind(id ID, name string, value V) (*Table[V], error) {
	frame, ok := t.frames.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrNoScope, id)
	}
	updated := &Frame[V]{
		bindings:  frame.bindings.Set(name, value),
		parent:    frame.parent,
		hasParent: frame.hasParent,
	}
	return &Table[V]{frames: t.frames.Set(id, updated), next: t.next}, nil
}

// Delete removes the given scope. Deleting a missing scope is a no-op.
func (t *Table[V]) Delete(id ID) *Table[V] {
	return &Table[V]{frames: t.frames.Delete(id), next: t.next}
}

// Has returns true if the scope exists.
func (t *Table[V]) Has(id ID) bool {
	_, ok := t.frames.Get(id)
	return ok
}

// Frame returns the frame for the given scope.
func (t *Table[V]) Frame(id ID) (*Frame[V], bool) {
	return t.frames.Get(id)
}

// Len returns the number of live scopes.
func (t *Table[V]) Len() int {
	return t.frames.Len()
}

// Last returns the ID of the most recently created scope.
func (t *Table[V]) Last() ID {
	return t.next - 1
}

// IDs returns the IDs of all live scopes in ascending order.
func (t *Table[V]) IDs() []ID {
	ids := make([]ID, 0, t.frames.Len())
	itr := t.frames.Iterator()
	for !itr.Done() {
		id, _, _ := itr.Next()
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
