package vm

import (
	"context"
	"testing"

	"github.com/benlang/ben/bytecode"
	"github.com/benlang/ben/errz"
	"github.com/stretchr/testify/require"
)

// recorder is a test observer that records events.
type recorder struct {
	NoOpObserver
	config  ObserverConfig
	stopAt  int
	Steps   []StepEvent
	Calls   []CallEvent
	Returns []ReturnEvent
	Errors  []ErrorEvent
}

func newRecorder(mode StepMode) *recorder {
	return &recorder{config: NewObserverConfig(mode)}
}

func (r *recorder) Config() ObserverConfig {
	return r.config
}

func (r *recorder) OnStep(event StepEvent) bool {
	r.Steps = append(r.Steps, event)
	return r.stopAt == 0 || event.Step < r.stopAt
}

func (r *recorder) OnCall(event CallEvent) bool {
	r.Calls = append(r.Calls, event)
	return true
}

func (r *recorder) OnReturn(event ReturnEvent) bool {
	r.Returns = append(r.Returns, event)
	return true
}

func (r *recorder) OnError(event ErrorEvent) bool {
	r.Errors = append(r.Errors, event)
	return true
}

func TestObserverOnStep(t *testing.T) {
	obs := newRecorder(StepAll)
	s := run(t, "", countdown(2, true), WithObserver(obs))
	requireNumber(t, s, 0)
	require.Len(t, obs.Steps, s.Steps())
	for i, step := range obs.Steps {
		require.Equal(t, i+1, step.Step)
		require.NotEmpty(t, step.OpcodeName)
		require.Equal(t, step.Opcode.String(), step.OpcodeName)
	}
	require.Equal(t, "push_lambda", obs.Steps[0].OpcodeName)
	require.Equal(t, 0, obs.Steps[0].Pointer)
	require.Equal(t, "return", obs.Steps[len(obs.Steps)-1].OpcodeName)
	require.Equal(t, 0, obs.Steps[len(obs.Steps)-1].FrameDepth)
}

func TestObserverCallsAndReturns(t *testing.T) {
	obs := newRecorder(StepNone)
	run(t, "", countdown(2, true), WithObserver(obs))
	require.Empty(t, obs.Steps)

	var lambdaCalls, tailCalls int
	for _, call := range obs.Calls {
		if call.Builtin {
			continue
		}
		lambdaCalls++
		require.Equal(t, "f", call.FunctionName)
		require.Equal(t, 1, call.ArgCount)
		require.Equal(t, 2, call.FrameDepth)
		if call.TailCall {
			tailCalls++
		}
	}
	require.Equal(t, 3, lambdaCalls)
	require.Equal(t, 2, tailCalls)

	// f returns once, then main.
	require.Len(t, obs.Returns, 2)
	require.Equal(t, "f", obs.Returns[0].FunctionName)
	require.Equal(t, 1, obs.Returns[0].FrameDepth)
	require.Equal(t, "main", obs.Returns[1].FunctionName)
	require.Equal(t, 0, obs.Returns[1].FrameDepth)
}

func TestObserverSampled(t *testing.T) {
	obs := newRecorder(StepSampled)
	obs.config.SampleInterval = 5
	s := run(t, "", countdown(3, true), WithObserver(obs))
	require.Len(t, obs.Steps, s.Steps()/5)
	for _, step := range obs.Steps {
		require.Zero(t, step.Step%5)
	}
}

func TestObserverOnLine(t *testing.T) {
	source := "1\n2\n3"
	main := code("main",
		bytecode.Push{Value: 1, Span: span(0, 1)},
		bytecode.Pop{Span: span(0, 1)},
		bytecode.Push{Value: 2, Span: span(2, 3)},
		bytecode.Pop{Span: span(2, 3)},
		bytecode.Push{Value: 3, Span: span(4, 5)},
		bytecode.Return{Span: span(4, 5)},
	)
	obs := newRecorder(StepOnLine)
	run(t, source, main, WithObserver(obs))
	require.Len(t, obs.Steps, 3)
	require.Equal(t, 1, obs.Steps[0].Line)
	require.Equal(t, 2, obs.Steps[1].Line)
	require.Equal(t, 3, obs.Steps[2].Line)
}

func TestObserverOnError(t *testing.T) {
	obs := newRecorder(StepNone)
	s := run(t, "x", code("main", bytecode.GetEnv{Name: "x", Span: span(0, 1)}), WithObserver(obs))
	require.True(t, s.IsCrashed())
	require.Len(t, obs.Errors, 1)
	require.Equal(t, errz.ErrUnbound, obs.Errors[0].Error.Kind)
	require.Equal(t, 1, obs.Errors[0].Step)
}

func TestObserverHalt(t *testing.T) {
	obs := newRecorder(StepAll)
	obs.stopAt = 3
	m := New(WithObserver(obs))
	s, err := m.Complete(context.Background(), NewState("", countdown(2, true), testGlobals()))
	require.ErrorIs(t, err, ErrHalted)
	require.Equal(t, 3, s.Steps())

	// Halting is a driver decision; the state itself is still runnable.
	s, err = New().Complete(context.Background(), s)
	require.NoError(t, err)
	requireNumber(t, s, 0)
}
