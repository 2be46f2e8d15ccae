package vm

import (
	"errors"
	"fmt"

	"github.com/benlang/ben/bytecode"
	"github.com/benlang/ben/errz"
	"github.com/benlang/ben/object"
	"github.com/benlang/ben/scope"
)

// Step advances s by one instruction and returns the resulting state. s is
// not modified. A complete or crashed state is returned unchanged.
//
// The frame's pointer is advanced before the instruction runs. If the
// instruction fails, the returned state is that advanced state with the
// error stored as its exception and none of the instruction's effects.
func (m *Machine) Step(s *State) *State {
	next, _ := m.step(s)
	return next
}

// step is Step plus the observers' verdict on whether to keep going.
func (m *Machine) step(s *State) (*State, bool) {
	if s.IsCrashed() || s.IsComplete() {
		return s, true
	}
	var n *notifier
	if m.observer != nil {
		n = &notifier{}
	}
	next := m.dispatch(s, n)
	if m.observer == nil {
		return next, true
	}
	return next, m.notify(s, next, n)
}

func (m *Machine) dispatch(s *State, n *notifier) (next *State) {
	frame, _ := s.Frame()
	if frame.Code == nil || frame.Pointer < 0 || frame.Pointer >= frame.Code.InstructionCount() {
		c := s.clone()
		c.steps++
		return c.crash(errz.Newf(errz.ErrMalformed, bytecode.Span{},
			"instruction pointer %d out of range", frame.Pointer))
	}
	instr := frame.Code.InstructionAt(frame.Pointer)
	frame.Pointer++
	advanced := s.setFrame(frame)
	advanced.current = instr
	advanced.steps++
	if instr == nil {
		return advanced.crash(errz.Newf(errz.ErrMalformed, bytecode.Span{},
			"missing instruction at %d", frame.Pointer-1))
	}

	defer func() {
		if r := recover(); r != nil {
			m.logger.Error().
				Str("opcode", instr.Opcode().String()).
				Int("pointer", frame.Pointer-1).
				Interface("panic", r).
				Msg("internal error while stepping")
			if n != nil {
				*n = notifier{}
			}
			next = advanced.crash(errz.Newf(errz.ErrInternal, instr.Location(), "%v", r))
		}
	}()

	m.logger.Trace().
		Str("opcode", instr.Opcode().String()).
		Int("pointer", frame.Pointer-1).
		Int("depth", advanced.CallDepth()).
		Msg("step")

	result, err := m.exec(advanced, frame, instr, n)
	if err != nil {
		rerr := errz.Wrap(err, errz.ErrInternal, instr.Location())
		if rerr.Kind == errz.ErrInternal {
			m.logger.Error().
				Err(err).
				Str("opcode", instr.Opcode().String()).
				Int("pointer", frame.Pointer-1).
				Msg("internal error while stepping")
		}
		if n != nil {
			*n = notifier{}
		}
		return advanced.crash(rerr)
	}
	return result
}

func (m *Machine) exec(s *State, frame CallFrame, instr bytecode.Instruction, n *notifier) (*State, error) {
	switch instr := instr.(type) {
	case bytecode.Push:
		value, err := object.FromLiteral(instr.Value)
		if err != nil {
			return nil, errz.Wrap(err, errz.ErrMalformed, instr.Span)
		}
		return s.push(StackEntry{Value: value, Span: instr.Span}), nil

	case bytecode.PushLambda:
		if instr.Function == nil || instr.Function.Code() == nil {
			return nil, errz.New(errz.ErrMalformed, instr.Span, "push_lambda without a function")
		}
		lambda := object.NewLambda(instr.Function, frame.Scope)
		return s.push(StackEntry{Value: lambda, Span: instr.Span}), nil

	case bytecode.Pop:
		if err := checkUnapplied(s); err != nil {
			return nil, err
		}
		next, _, ok := s.pop()
		if !ok {
			return nil, errz.New(errz.ErrMalformed, instr.Span, "pop on empty stack")
		}
		return next, nil

	case bytecode.ArgStart:
		return s.push(StackEntry{Value: object.ArgStart, Span: instr.Span}), nil

	case bytecode.GetEnv:
		value, err := s.scopes.Lookup(frame.Scope, instr.Name)
		if errors.Is(err, scope.ErrNotFound) {
			return nil, errz.Newf(errz.ErrUnbound, instr.Span, "never heard of %s", instr.Name)
		} else if err != nil {
			return nil, errz.Wrap(err, errz.ErrInternal, instr.Span)
		}
		return s.push(StackEntry{Value: value, Span: instr.Span}), nil

	case bytecode.SetEnv:
		next, entry, ok := s.pop()
		if !ok {
			return nil, errz.New(errz.ErrMalformed, instr.Span, "set_env on empty stack")
		}
		scopes, err := next.scopes.Bind(frame.Scope, instr.Name, entry.Value)
		if err != nil {
			return nil, errz.Wrap(err, errz.ErrInternal, instr.Span)
		}
		return next.withScopes(scopes), nil

	case bytecode.Invoke:
		return m.invoke(s, instr, n)

	case bytecode.IfNotTrueJump:
		next, entry, ok := s.pop()
		if !ok {
			return nil, errz.New(errz.ErrMalformed, instr.Span, "if_not_true_jump on empty stack")
		}
		if object.IsTrue(entry.Value) {
			return next, nil
		}
		return jump(next, instr.Offset), nil

	case bytecode.Jump:
		return jump(s, instr.Offset), nil

	case bytecode.Return:
		if err := checkUnapplied(s); err != nil {
			return nil, err
		}
		next := s.withScopes(s.scopes.Delete(frame.Scope)).popFrame()
		n.ret(ReturnEvent{
			Step:         s.steps,
			FunctionName: frame.Code.Name(),
			Span:         instr.Span,
			FrameDepth:   next.CallDepth(),
		})
		return next, nil

	default:
		return nil, errz.New(errz.ErrMalformed, instr.Location(),
			fmt.Sprintf("I don't know how to run this instruction: %s", instr))
	}
}

func jump(s *State, offset int) *State {
	frame, _ := s.Frame()
	frame.Pointer += offset
	return s.setFrame(frame)
}

// checkUnapplied fails if any invokable value is left on the operand stack,
// naming the nearest one to the top.
func checkUnapplied(s *State) error {
	for i := s.stack.Len() - 1; i >= 0; i-- {
		entry := s.stack.Get(i)
		if object.IsInvokable(entry.Value) {
			return errz.Newf(errz.ErrUnapplied, entry.Span,
				"This is an action. Type %s() to run it.", entry.Span.Slice(s.code))
		}
	}
	return nil
}
