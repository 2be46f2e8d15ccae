package vm

import (
	"github.com/benlang/ben/bytecode"
	"github.com/benlang/ben/errz"
	"github.com/benlang/ben/object"
)

// invoke calls the value on top of the stack. The arguments sit below it, in
// call order, back to the nearest ARG_START marker.
func (m *Machine) invoke(s *State, instr bytecode.Invoke, n *notifier) (*State, error) {
	fn, ok := s.Top()
	if !ok {
		return nil, errz.New(errz.ErrMalformed, instr.Span, "invoke on empty stack")
	}
	if !object.IsInvokable(fn.Value) {
		return nil, errz.New(errz.ErrNotInvokable, fn.Span, "This is not an action")
	}
	popped, args, err := popArgs(s, instr.Span)
	if err != nil {
		return nil, err
	}
	switch callee := fn.Value.(type) {
	case *object.Lambda:
		return m.invokeLambda(popped, instr, fn, callee, args, n)
	case *Builtin:
		return m.invokeBuiltin(popped, instr, callee, args, n)
	default:
		return nil, errz.Newf(errz.ErrInternal, fn.Span, "unsupported invokable %s", fn.Value.Type())
	}
}

func (m *Machine) invokeLambda(
	s *State,
	instr bytecode.Invoke,
	fn StackEntry,
	lambda *object.Lambda,
	args []StackEntry,
	n *notifier,
) (*State, error) {
	if err := m.argChecker(fn, args, instr.Span); err != nil {
		return nil, errz.Wrap(err, errz.ErrArity, instr.Span)
	}
	if !s.scopes.Has(lambda.ClosureScope()) {
		return nil, errz.Newf(errz.ErrInternal, fn.Span,
			"closure scope %d of %s no longer exists", lambda.ClosureScope(), lambda.Name())
	}
	// A lenient checker may let counts differ: extra arguments are dropped
	// and missing parameters stay unbound.
	bindings := make(map[string]object.Value, len(args))
	for i, param := range lambda.Parameters() {
		if i < len(args) {
			bindings[param] = args[i].Value
		}
	}
	scopes, id := s.scopes.Create(bindings, lambda.ClosureScope())
	s = s.withScopes(scopes)

	code := lambda.Code()
	event := CallEvent{
		Step:         s.steps,
		FunctionName: lambda.Name(),
		ArgCount:     len(args),
		Span:         instr.Span,
	}
	if index, ok := tailCallIndex(s, code); ok {
		next := s.clone()
		next.callStack = s.callStack.Slice(0, index+1)
		frame := next.callStack.Get(index)
		frame.Scope = id
		frame.Pointer = 0
		next = next.setFrame(frame)
		m.logger.Debug().
			Str("function", lambda.Name()).
			Int("frame", index).
			Msg("tail call collapsed")
		event.TailCall = true
		event.FrameDepth = next.CallDepth()
		n.call(event)
		return next, nil
	}
	next := s.pushFrame(CallFrame{Code: code, Pointer: 0, Scope: id, Tail: instr.Tail})
	event.FrameDepth = next.CallDepth()
	n.call(event)
	return next, nil
}

func (m *Machine) invokeBuiltin(
	s *State,
	instr bytecode.Invoke,
	builtin *Builtin,
	args []StackEntry,
	n *notifier,
) (*State, error) {
	values := make([]object.Value, len(args))
	for i, arg := range args {
		values[i] = arg.Value
	}
	var next *State
	var result object.Value
	var err error
	if builtin.IsOutputting() && m.noOutputting {
		next = s
		result, err = builtin.Result(values)
	} else {
		next, result, err = builtin.Call(s, values)
	}
	if err != nil {
		return nil, errz.Wrap(err, errz.ErrBuiltin, instr.Span)
	}
	if next == nil {
		next = s
	}
	if result == nil {
		return nil, errz.Newf(errz.ErrBuiltin, instr.Span, "%s returned no value", builtin.Name())
	}
	n.call(CallEvent{
		Step:         s.steps,
		FunctionName: builtin.Name(),
		ArgCount:     len(args),
		Span:         instr.Span,
		FrameDepth:   next.CallDepth(),
		Builtin:      true,
	})
	return next.push(StackEntry{Value: result, Span: instr.Span}), nil
}

// popArgs removes the invoked value, its arguments and their ARG_START
// marker, returning the arguments in call order.
func popArgs(s *State, span bytecode.Span) (*State, []StackEntry, error) {
	n := s.stack.Len() - 1
	start := -1
	for i := n - 1; i >= 0; i-- {
		if s.stack.Get(i).Value == object.ArgStart {
			start = i
			break
		}
	}
	if start < 0 {
		return nil, nil, errz.New(errz.ErrMalformed, span, "invoke without arg_start")
	}
	args := make([]StackEntry, 0, n-start-1)
	for i := start + 1; i < n; i++ {
		args = append(args, s.stack.Get(i))
	}
	next := s.clone()
	next.stack = s.stack.Slice(0, start)
	return next, args, nil
}

// tailCallIndex finds the nearest frame running code. The call is a tail
// call only if that frame and every frame above it were entered in tail
// position.
func tailCallIndex(s *State, code *bytecode.Code) (int, bool) {
	for i := s.callStack.Len() - 1; i >= 0; i-- {
		frame := s.callStack.Get(i)
		if frame.Code == code {
			return i, frame.Tail
		}
		if !frame.Tail {
			return 0, false
		}
	}
	return 0, false
}
