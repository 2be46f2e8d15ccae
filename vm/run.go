package vm

import (
	"context"

	"github.com/benlang/ben/bytecode"
	"github.com/benlang/ben/errz"
	"github.com/benlang/ben/object"
)

// Complete steps s until it is complete or crashed and returns the final
// state. A crash is not an error here: inspect the state's Exception.
//
// The returned error is non-nil only when the run was cut short, by context
// cancellation, the step limit or an observer. The state reached so far is
// returned alongside it and may be resumed.
func (m *Machine) Complete(ctx context.Context, s *State) (*State, error) {
	interval := m.contextCheckInterval
	if interval <= 0 {
		interval = 1
	}
	start := s.Steps()
	for i := 0; !s.IsComplete() && !s.IsCrashed(); i++ {
		if i%interval == 0 {
			select {
			case <-ctx.Done():
				return s, ctx.Err()
			default:
			}
		}
		if m.maxSteps > 0 && s.Steps()-start >= m.maxSteps {
			return s, ErrStepLimit
		}
		next, ok := m.step(s)
		s = next
		if !ok {
			return s, ErrHalted
		}
	}
	return s, nil
}

// Complete runs s to completion using the default Machine.
func Complete(ctx context.Context, s *State) (*State, error) {
	return defaultMachine.Complete(ctx, s)
}

// Run builds the initial state for main and runs it to completion. Unlike
// Complete, a crash is reported as the returned error.
func Run(ctx context.Context, source string, main *bytecode.Code, globals map[string]object.Value, options ...Option) (*State, error) {
	m := New(options...)
	s, err := m.Complete(ctx, NewState(source, main, globals))
	if err != nil {
		return s, err
	}
	if exc := s.Exception(); exc != nil {
		return s, exc
	}
	return s, nil
}

// notify delivers the events of the step from prev to next and reports
// whether every observer callback asked to continue.
func (m *Machine) notify(prev, next *State, n *notifier) bool {
	cfg := m.observerConfig
	ok := true
	if instr := next.CurrentInstruction(); instr != nil && next.Steps() != prev.Steps() {
		if m.wantsStep(cfg, prev, next) {
			frame, _ := prev.Frame()
			line, _ := errz.Locate(next.Code(), instr.Location().Start)
			ok = m.observer.OnStep(StepEvent{
				Step:       next.Steps(),
				Pointer:    frame.Pointer,
				Opcode:     instr.Opcode(),
				OpcodeName: instr.Opcode().String(),
				Span:       instr.Location(),
				Line:       line,
				StackDepth: next.StackLen(),
				FrameDepth: next.CallDepth(),
			}) && ok
		}
	}
	if cfg.ObserveCalls {
		for _, e := range n.calls {
			ok = m.observer.OnCall(e) && ok
		}
	}
	if cfg.ObserveReturns {
		for _, e := range n.returns {
			ok = m.observer.OnReturn(e) && ok
		}
	}
	if cfg.ObserveErrors && next.IsCrashed() && !prev.IsCrashed() {
		ok = m.observer.OnError(ErrorEvent{
			Step:       next.Steps(),
			Error:      next.Exception(),
			FrameDepth: next.CallDepth(),
		}) && ok
	}
	return ok
}

func (m *Machine) wantsStep(cfg ObserverConfig, prev, next *State) bool {
	switch cfg.StepMode {
	case StepAll:
		return true
	case StepSampled:
		return next.Steps()%cfg.SampleInterval == 0
	case StepOnLine:
		before := prev.CurrentInstruction()
		if before == nil {
			return true
		}
		prevLine, _ := errz.Locate(prev.Code(), before.Location().Start)
		line, _ := errz.Locate(next.Code(), next.CurrentInstruction().Location().Start)
		return prevLine != line
	default:
		return false
	}
}
