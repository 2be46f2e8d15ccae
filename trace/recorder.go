// Package trace records VM execution events and persists them to SQLite for
// later inspection.
package trace

import (
	"fmt"
	"sync"
	"time"

	"github.com/benlang/ben/vm"
	"github.com/gofrs/uuid"
)

// Kind of a recorded event.
type Kind string

const (
	KindStep   Kind = "step"
	KindCall   Kind = "call"
	KindReturn Kind = "return"
	KindError  Kind = "error"
)

// Event is one recorded execution event. Name holds the opcode name for
// steps, the function name for calls and returns, and the error kind for
// errors.
type Event struct {
	Seq        int    `json:"seq"`
	Kind       Kind   `json:"kind"`
	Step       int    `json:"step"`
	Name       string `json:"name"`
	Pointer    int    `json:"pointer"`
	SpanStart  int    `json:"span_start"`
	SpanEnd    int    `json:"span_end"`
	StackDepth int    `json:"stack_depth"`
	FrameDepth int    `json:"frame_depth"`
	Detail     string `json:"detail,omitempty"`
}

// Session describes one recorded run.
type Session struct {
	ID      string    `json:"id"`
	Program string    `json:"program"`
	Started time.Time `json:"started"`
	Steps   int       `json:"steps"`
	Outcome string    `json:"outcome"`
	Events  int       `json:"events"`
}

// Recorder is a vm.Observer that keeps every event it sees in memory.
type Recorder struct {
	vm.NoOpObserver
	mu      sync.Mutex
	id      uuid.UUID
	program string
	started time.Time
	config  vm.ObserverConfig
	limit   int
	events  []Event
	steps   int
}

// RecorderOption configures a Recorder.
type RecorderOption func(*Recorder)

// WithStepMode selects which instruction steps are recorded.
func WithStepMode(mode vm.StepMode) RecorderOption {
	return func(r *Recorder) {
		r.config.StepMode = mode
	}
}

// WithSampleInterval sets the interval used by vm.StepSampled.
func WithSampleInterval(n int) RecorderOption {
	return func(r *Recorder) {
		r.config.SampleInterval = n
	}
}

// WithLimit caps the number of retained events. Once reached, the recorder
// asks the machine to halt.
func WithLimit(n int) RecorderOption {
	return func(r *Recorder) {
		r.limit = n
	}
}

// NewRecorder returns a recorder for a run of the named program.
func NewRecorder(program string, options ...RecorderOption) (*Recorder, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return nil, fmt.Errorf("generating session id: %w", err)
	}
	r := &Recorder{
		id:      id,
		program: program,
		started: time.Now().UTC(),
		config:  vm.NewObserverConfig(vm.StepAll),
	}
	for _, opt := range options {
		opt(r)
	}
	return r, nil
}

// ID returns the session id.
func (r *Recorder) ID() string {
	return r.id.String()
}

func (r *Recorder) Config() vm.ObserverConfig {
	return r.config
}

func (r *Recorder) record(e Event) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e.Step > r.steps {
		r.steps = e.Step
	}
	if r.limit > 0 && len(r.events) >= r.limit {
		return false
	}
	e.Seq = len(r.events)
	r.events = append(r.events, e)
	return r.limit == 0 || len(r.events) < r.limit
}

func (r *Recorder) OnStep(e vm.StepEvent) bool {
	return r.record(Event{
		Kind:       KindStep,
		Step:       e.Step,
		Name:       e.OpcodeName,
		Pointer:    e.Pointer,
		SpanStart:  e.Span.Start,
		SpanEnd:    e.Span.End,
		StackDepth: e.StackDepth,
		FrameDepth: e.FrameDepth,
	})
}

func (r *Recorder) OnCall(e vm.CallEvent) bool {
	var detail string
	switch {
	case e.Builtin:
		detail = "builtin"
	case e.TailCall:
		detail = "tail"
	}
	return r.record(Event{
		Kind:       KindCall,
		Step:       e.Step,
		Name:       e.FunctionName,
		SpanStart:  e.Span.Start,
		SpanEnd:    e.Span.End,
		FrameDepth: e.FrameDepth,
		Detail:     detail,
	})
}

func (r *Recorder) OnReturn(e vm.ReturnEvent) bool {
	return r.record(Event{
		Kind:       KindReturn,
		Step:       e.Step,
		Name:       e.FunctionName,
		SpanStart:  e.Span.Start,
		SpanEnd:    e.Span.End,
		FrameDepth: e.FrameDepth,
	})
}

func (r *Recorder) OnError(e vm.ErrorEvent) bool {
	return r.record(Event{
		Kind:       KindError,
		Step:       e.Step,
		Name:       e.Error.Kind.String(),
		SpanStart:  e.Error.Span.Start,
		SpanEnd:    e.Error.Span.End,
		FrameDepth: e.FrameDepth,
		Detail:     e.Error.Message,
	})
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	events := make([]Event, len(r.events))
	copy(events, r.events)
	return events
}

// Session summarizes the recording given the run's final state.
func (r *Recorder) Session(final *vm.State) Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	outcome := "incomplete"
	steps := r.steps
	if final != nil {
		steps = final.Steps()
		switch {
		case final.IsCrashed():
			outcome = "crashed: " + final.Exception().Error()
		case final.IsComplete():
			outcome = "complete"
		}
	}
	return Session{
		ID:      r.id.String(),
		Program: r.program,
		Started: r.started,
		Steps:   steps,
		Outcome: outcome,
		Events:  len(r.events),
	}
}

var _ vm.Observer = (*Recorder)(nil)
