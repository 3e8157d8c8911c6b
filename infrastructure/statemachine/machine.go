// Package statemachine models the per-step sampling loop as a statekit
// statechart.
package statemachine

import (
	"github.com/felixgeelhaar/statekit"
)

// Phase is a state of the sampling loop.
type Phase string

// Sampling loop phases.
const (
	PhaseIdle      Phase = "idle"
	PhaseSampling  Phase = "sampling"
	PhaseRejected  Phase = "rejected"
	PhaseBackoff   Phase = "backoff"
	PhaseValidated Phase = "validated"
	PhaseFailed    Phase = "failed"
	PhaseExhausted Phase = "exhausted"
	PhaseAborted   Phase = "aborted"
)

// Events understood by the sampling machine.
const (
	EventSample    statekit.EventType = "SAMPLE"
	EventValid     statekit.EventType = "VALID"
	EventReject    statekit.EventType = "REJECT"
	EventFail      statekit.EventType = "FAIL"
	EventTransient statekit.EventType = "TRANSIENT"
	EventRetry     statekit.EventType = "RETRY"
	EventExhaust   statekit.EventType = "EXHAUST"
	EventAbort     statekit.EventType = "ABORT"
)

// Context carries attempt accounting through the machine.
type Context struct {
	// MaxAttempts bounds the oracle calls for one sample.
	MaxAttempts int
	// RedFlagging makes malformed and illegal replies retryable.
	RedFlagging bool

	Attempts       int
	Rejections     int
	ProviderErrors int
	LastErr        error
}

// NewContext creates a machine context.
func NewContext(maxAttempts int, redFlagging bool) *Context {
	return &Context{MaxAttempts: maxAttempts, RedFlagging: redFlagging}
}

func id(p Phase) statekit.StateID {
	return statekit.StateID(p)
}

// NewSamplingMachine creates the sampling loop statechart:
//
//	idle -SAMPLE-> sampling
//	sampling -VALID-> validated
//	sampling -REJECT [redFlagging]-> rejected
//	sampling -FAIL-> failed
//	sampling -TRANSIENT-> backoff
//	rejected|backoff -RETRY [budgetRemaining]-> sampling
//	rejected|backoff -EXHAUST-> exhausted
//	any non-final -ABORT-> aborted
func NewSamplingMachine() (*statekit.MachineConfig[*Context], error) {
	return statekit.NewMachine[*Context]("sampling").
		WithInitial(id(PhaseIdle)).
		WithContext(&Context{}).
		WithAction("countAttempt", countAttempt).
		WithAction("recordRejection", recordRejection).
		WithAction("recordProviderError", recordProviderError).
		WithAction("recordFailure", recordFailure).
		WithGuard("redFlagging", guardRedFlagging).
		WithGuard("budgetRemaining", guardBudgetRemaining).
		State(id(PhaseIdle)).
			On(EventSample).Target(id(PhaseSampling)).Do("countAttempt").
			On(EventAbort).Target(id(PhaseAborted)).Do("recordFailure").
			Done().
		State(id(PhaseSampling)).
			On(EventValid).Target(id(PhaseValidated)).
			On(EventReject).Target(id(PhaseRejected)).Guard("redFlagging").Do("recordRejection").
			On(EventFail).Target(id(PhaseFailed)).Do("recordFailure").
			On(EventTransient).Target(id(PhaseBackoff)).Do("recordProviderError").
			On(EventAbort).Target(id(PhaseAborted)).Do("recordFailure").
			Done().
		State(id(PhaseRejected)).
			On(EventRetry).Target(id(PhaseSampling)).Guard("budgetRemaining").Do("countAttempt").
			On(EventExhaust).Target(id(PhaseExhausted)).
			On(EventAbort).Target(id(PhaseAborted)).Do("recordFailure").
			Done().
		State(id(PhaseBackoff)).
			On(EventRetry).Target(id(PhaseSampling)).Guard("budgetRemaining").Do("countAttempt").
			On(EventExhaust).Target(id(PhaseExhausted)).
			On(EventAbort).Target(id(PhaseAborted)).Do("recordFailure").
			Done().
		State(id(PhaseValidated)).Final().Done().
		State(id(PhaseFailed)).Final().Done().
		State(id(PhaseExhausted)).Final().Done().
		State(id(PhaseAborted)).Final().Done().
		Build()
}
