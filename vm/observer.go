package vm

import (
	"github.com/benlang/ben/bytecode"
	"github.com/benlang/ben/errz"
	"github.com/benlang/ben/op"
)

// StepMode controls when OnStep callbacks are triggered.
type StepMode uint8

const (
	// StepAll calls OnStep for every instruction.
	// Use for: detailed tracing, instruction-level debugging.
	StepAll StepMode = iota

	// StepNone never calls OnStep.
	// Use for: profilers that only need Call/Return events.
	StepNone

	// StepSampled calls OnStep every N instructions.
	StepSampled

	// StepOnLine calls OnStep when the source line changes.
	// Use for: coverage tools and line-level debuggers.
	StepOnLine
)

// ObserverConfig specifies what events an observer wants to receive.
// Use NewObserverConfig() to create configs with safe defaults.
type ObserverConfig struct {
	// StepMode controls OnStep callback frequency.
	StepMode StepMode

	// SampleInterval is the number of instructions between OnStep calls
	// when StepMode is StepSampled. Values <= 0 are treated as 1.
	SampleInterval int

	// ObserveCalls enables OnCall callbacks.
	ObserveCalls bool

	// ObserveReturns enables OnReturn callbacks.
	ObserveReturns bool

	// ObserveErrors enables OnError callbacks.
	ObserveErrors bool
}

// NewObserverConfig creates a config with calls, returns and errors enabled.
func NewObserverConfig(mode StepMode) ObserverConfig {
	return ObserverConfig{
		StepMode:       mode,
		SampleInterval: 1000,
		ObserveCalls:   true,
		ObserveReturns: true,
		ObserveErrors:  true,
	}
}

// NormalizeConfig validates and clamps config values.
func NormalizeConfig(cfg ObserverConfig) ObserverConfig {
	if cfg.StepMode == StepSampled && cfg.SampleInterval <= 0 {
		cfg.SampleInterval = 1
	}
	return cfg
}

// Observer receives execution events from a Machine. Observers are a side
// channel: they see states but never change them. Returning false from any
// method asks the driver to stop; Machine.Complete then returns ErrHalted.
//
// Implementations can embed NoOpObserver for methods they don't need.
type Observer interface {
	// Config returns the observer's configuration. Called once when the
	// observer is attached.
	Config() ObserverConfig

	OnStep(event StepEvent) bool

	OnCall(event CallEvent) bool

	OnReturn(event ReturnEvent) bool

	OnError(event ErrorEvent) bool
}

// StepEvent describes one dispatched instruction.
type StepEvent struct {
	// Step is the 1-based index of the instruction in the run.
	Step int

	// Pointer is the index of the instruction within its code.
	Pointer int

	Opcode     op.Code
	OpcodeName string
	Span       bytecode.Span

	// Line is the 1-based source line of Span.
	Line int

	// StackDepth and FrameDepth are measured after the instruction ran.
	StackDepth int
	FrameDepth int
}

// CallEvent describes an invocation of a lambda or builtin.
type CallEvent struct {
	Step int

	// FunctionName is empty for anonymous lambdas.
	FunctionName string
	ArgCount     int
	Span         bytecode.Span

	// FrameDepth is the call stack depth after the call.
	FrameDepth int

	// Builtin is set for native calls, which push no frame.
	Builtin bool

	// TailCall is set when the call reused an existing frame.
	TailCall bool
}

// ReturnEvent describes a frame being popped by return.
type ReturnEvent struct {
	Step         int
	FunctionName string
	Span         bytecode.Span

	// FrameDepth is the call stack depth after returning.
	FrameDepth int
}

// ErrorEvent describes the runtime error that crashed a state.
type ErrorEvent struct {
	Step       int
	Error      *errz.RuntimeError
	FrameDepth int
}

// NoOpObserver is an Observer implementation that does nothing.
type NoOpObserver struct{}

func (NoOpObserver) Config() ObserverConfig {
	return NewObserverConfig(StepAll)
}

func (NoOpObserver) OnStep(StepEvent) bool     { return true }
func (NoOpObserver) OnCall(CallEvent) bool     { return true }
func (NoOpObserver) OnReturn(ReturnEvent) bool { return true }
func (NoOpObserver) OnError(ErrorEvent) bool   { return true }

var _ Observer = NoOpObserver{}

// notifier batches the events of a single step and delivers them once the
// step has produced its final state.
type notifier struct {
	calls   []CallEvent
	returns []ReturnEvent
}

func (n *notifier) call(e CallEvent) {
	if n != nil {
		n.calls = append(n.calls, e)
	}
}

func (n *notifier) ret(e ReturnEvent) {
	if n != nil {
		n.returns = append(n.returns, e)
	}
}
