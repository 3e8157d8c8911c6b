package statemachine

import (
	"github.com/felixgeelhaar/statekit"
)

// Loop drives one sampling loop through the statechart.
type Loop struct {
	interp *statekit.Interpreter[*Context]
	ctx    *Context
}

// NewLoop creates a loop interpreter over machine with a fresh context.
func NewLoop(machine *statekit.MachineConfig[*Context], maxAttempts int, redFlagging bool) *Loop {
	ctx := NewContext(maxAttempts, redFlagging)
	interp := statekit.NewInterpreter(machine)
	interp.UpdateContext(func(c **Context) {
		*c = ctx
	})
	return &Loop{interp: interp, ctx: ctx}
}

// Start enters the idle state and begins the first attempt.
func (l *Loop) Start() {
	l.interp.Start()
	l.send(EventSample, nil)
}

// Stop stops the interpreter.
func (l *Loop) Stop() {
	l.interp.Stop()
}

// Phase returns the current phase.
func (l *Loop) Phase() Phase {
	return Phase(l.interp.State().Value)
}

// Matches reports whether the loop is in phase p.
func (l *Loop) Matches(p Phase) bool {
	return l.interp.Matches(id(p))
}

// Done reports whether the loop reached a final phase.
func (l *Loop) Done() bool {
	return l.interp.Done()
}

// Accept marks the current attempt as validated.
func (l *Loop) Accept() {
	l.send(EventValid, nil)
}

// Reject records a malformed or illegal reply. It reports whether the loop
// may resample; without red-flagging the loop fails instead.
func (l *Loop) Reject(err error) bool {
	l.send(EventReject, err)
	if l.Matches(PhaseRejected) {
		return true
	}
	l.send(EventFail, err)
	return false
}

// Transient records a provider failure.
func (l *Loop) Transient(err error) {
	l.send(EventTransient, err)
}

// Retry starts the next attempt. It returns false and moves to exhausted
// when the attempt budget is spent.
func (l *Loop) Retry() bool {
	l.send(EventRetry, nil)
	if l.Matches(PhaseSampling) {
		return true
	}
	l.send(EventExhaust, nil)
	return false
}

// Abort stops the loop because of cancellation.
func (l *Loop) Abort(err error) {
	l.send(EventAbort, err)
}

// Attempts returns the number of attempts started.
func (l *Loop) Attempts() int {
	return l.ctx.Attempts
}

// Context returns the loop context.
func (l *Loop) Context() *Context {
	return l.ctx
}

func (l *Loop) send(event statekit.EventType, payload any) {
	l.interp.Send(statekit.Event{Type: event, Payload: payload})
}
