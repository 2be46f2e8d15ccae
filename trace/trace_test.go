package trace

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/benlang/ben/builtins"
	"github.com/benlang/ben/bytecode"
	"github.com/benlang/ben/vm"
	"github.com/stretchr/testify/require"
)

func program() *bytecode.Code {
	return bytecode.NewCode(bytecode.CodeParams{
		Name: "main",
		Instructions: []bytecode.Instruction{
			bytecode.ArgStart{},
			bytecode.Push{Value: 2},
			bytecode.Push{Value: 3},
			bytecode.GetEnv{Name: "+"},
			bytecode.Invoke{Span: bytecode.Span{Start: 0, End: 7}},
			bytecode.Return{},
		},
	})
}

func record(t *testing.T, main *bytecode.Code, options ...RecorderOption) (*Recorder, *vm.State) {
	t.Helper()
	rec, err := NewRecorder("test.json", options...)
	require.NoError(t, err)
	m := vm.New(vm.WithObserver(rec))
	final, _ := m.Complete(context.Background(), vm.NewState("+(2, 3)", main, builtins.Builtins()))
	return rec, final
}

func TestRecorder(t *testing.T) {
	rec, final := record(t, program())
	require.True(t, final.IsComplete())
	require.Len(t, rec.ID(), 36)

	events := rec.Events()
	var steps, calls, returns int
	for i, e := range events {
		require.Equal(t, i, e.Seq)
		switch e.Kind {
		case KindStep:
			steps++
		case KindCall:
			calls++
			require.Equal(t, "+", e.Name)
			require.Equal(t, "builtin", e.Detail)
		case KindReturn:
			returns++
			require.Equal(t, "main", e.Name)
		}
	}
	require.Equal(t, 6, steps)
	require.Equal(t, 1, calls)
	require.Equal(t, 1, returns)

	session := rec.Session(final)
	require.Equal(t, rec.ID(), session.ID)
	require.Equal(t, "complete", session.Outcome)
	require.Equal(t, 6, session.Steps)
	require.Equal(t, len(events), session.Events)
}

func TestRecorderError(t *testing.T) {
	main := bytecode.NewCode(bytecode.CodeParams{
		Name:         "main",
		Instructions: []bytecode.Instruction{bytecode.GetEnv{Name: "x", Span: bytecode.Span{Start: 0, End: 1}}},
	})
	rec, final := record(t, main, WithStepMode(vm.StepNone))
	events := rec.Events()
	require.Len(t, events, 1)
	require.Equal(t, KindError, events[0].Kind)
	require.Equal(t, "unbound identifier", events[0].Name)
	require.Equal(t, "never heard of x", events[0].Detail)
	require.Equal(t, "crashed: unbound identifier: never heard of x", rec.Session(final).Outcome)
}

func TestRecorderLimit(t *testing.T) {
	rec, final := record(t, program(), WithLimit(3))
	require.Len(t, rec.Events(), 3)
	require.False(t, final.IsComplete())
	require.Equal(t, "incomplete", rec.Session(final).Outcome)
}

func TestStore(t *testing.T) {
	ctx := context.Background()
	store, err := Open(ctx, filepath.Join(t.TempDir(), "trace.db"))
	require.NoError(t, err)
	defer store.Close()

	rec, final := record(t, program())
	require.NoError(t, store.SaveRecorder(ctx, rec, final))

	sessions, err := store.Sessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	require.Equal(t, rec.ID(), sessions[0].ID)
	require.Equal(t, "test.json", sessions[0].Program)
	require.Equal(t, "complete", sessions[0].Outcome)
	require.True(t, rec.Session(final).Started.Equal(sessions[0].Started))

	events, err := store.Events(ctx, rec.ID())
	require.NoError(t, err)
	require.Equal(t, rec.Events(), events)

	// Saving again replaces rather than duplicates.
	require.NoError(t, store.SaveRecorder(ctx, rec, final))
	events, err = store.Events(ctx, rec.ID())
	require.NoError(t, err)
	require.Len(t, events, len(rec.Events()))

	got, err := store.Session(ctx, rec.ID())
	require.NoError(t, err)
	require.Equal(t, sessions[0].ID, got.ID)

	require.NoError(t, store.Delete(ctx, rec.ID()))
	_, err = store.Session(ctx, rec.ID())
	require.ErrorIs(t, err, ErrSessionNotFound)
	require.ErrorIs(t, store.Delete(ctx, rec.ID()), ErrSessionNotFound)
	events, err = store.Events(ctx, rec.ID())
	require.NoError(t, err)
	require.Empty(t, events)
}

func TestStoreInMemory(t *testing.T) {
	ctx := context.Background()
	store, err := Open(ctx, ":memory:")
	require.NoError(t, err)
	defer store.Close()

	sessions, err := store.Sessions(ctx)
	require.NoError(t, err)
	require.Empty(t, sessions)
}
