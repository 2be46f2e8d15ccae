package scope

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewTable(t *testing.T) {
	table := NewTable(map[string]int{"a": 1})
	require.Equal(t, 1, table.Len())
	require.True(t, table.Has(Root))
	require.Equal(t, Root, table.Last())

	frame, ok := table.Frame(Root)
	require.True(t, ok)
	_, hasParent := frame.Parent()
	require.False(t, hasParent)
	require.Equal(t, []string{"a"}, frame.Names())
}

func TestLookupWalksParents(t *testing.T) {
	table := NewTable(map[string]int{"a": 1, "b": 2})
	table, child := table.Create(map[string]int{"b": 20}, Root)
	table, grandchild := table.Create(map[string]int{"c": 300}, child)

	v, err := table.Lookup(grandchild, "a")
	require.NoError(t, err)
	require.Equal(t, 1, v)

	v, err = table.Lookup(grandchild, "b")
	require.NoError(t, err)
	require.Equal(t, 20, v, "nearest enclosing binding shadows the root")

	v, err = table.Lookup(Root, "b")
	require.NoError(t, err)
	require.Equal(t, 2, v)

	_, err = table.Lookup(grandchild, "zzz")
	require.True(t, errors.Is(err, ErrNotFound))
	require.Contains(t, err.Error(), "zzz")

	_, err = table.Lookup(ID(42), "a")
	require.True(t, errors.Is(err, ErrNoScope))
}

func TestBindIsLocal(t *testing.T) {
	table := NewTable(map[string]string{"x": "global"})
	table, child := table.Create(nil, Root)

	updated, err := table.Bind(child, "x", "local")
	require.NoError(t, err)

	v, err := updated.Lookup(child, "x")
	require.NoError(t, err)
	require.Equal(t, "local", v)

	v, err = updated.Lookup(Root, "x")
	require.NoError(t, err)
	require.Equal(t, "global", v, "bind never writes to a parent scope")

	_, err = table.Lookup(child, "x")
	require.NoError(t, err)
	frame, _ := table.Frame(child)
	require.Equal(t, 0, frame.Len(), "the previous table is unchanged")

	_, err = table.Bind(ID(99), "x", "nope")
	require.True(t, errors.Is(err, ErrNoScope))
}

func TestDeleteAndIDsAreNeverReused(t *testing.T) {
	table := NewTable[int](nil)
	table, first := table.Create(nil, Root)
	table = table.Delete(first)
	require.False(t, table.Has(first))

	table, second := table.Create(nil, Root)
	require.NotEqual(t, first, second)
	require.Equal(t, []ID{Root, second}, table.IDs())
	require.Equal(t, second, table.Last())

	same := table.Delete(ID(1000))
	require.Equal(t, table.Len(), same.Len())
}

func TestPersistence(t *testing.T) {
	base := NewTable(map[string]int{"n": 0})
	forkA, err := base.Bind(Root, "n", 1)
	require.NoError(t, err)
	forkB, err := base.Bind(Root, "n", 2)
	require.NoError(t, err)

	for table, want := range map[*Table[int]]int{base: 0, forkA: 1, forkB: 2} {
		v, err := table.Lookup(Root, "n")
		require.NoError(t, err)
		require.Equal(t, want, v)
	}
}
