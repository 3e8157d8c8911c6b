package statemachine

import (
	"errors"
	"testing"
)

func newTestLoop(t *testing.T, maxAttempts int, redFlagging bool) *Loop {
	t.Helper()

	machine, err := NewSamplingMachine()
	if err != nil {
		t.Fatalf("NewSamplingMachine() error = %v", err)
	}
	loop := NewLoop(machine, maxAttempts, redFlagging)
	loop.Start()
	t.Cleanup(loop.Stop)
	return loop
}

func TestNewSamplingMachine(t *testing.T) {
	t.Parallel()

	machine, err := NewSamplingMachine()
	if err != nil {
		t.Fatalf("NewSamplingMachine() error = %v", err)
	}
	if machine == nil {
		t.Fatal("NewSamplingMachine() returned nil machine")
	}
}

func TestLoop_StartCountsFirstAttempt(t *testing.T) {
	t.Parallel()

	loop := newTestLoop(t, 5, true)
	if loop.Phase() != PhaseSampling {
		t.Errorf("Phase() = %s, want sampling", loop.Phase())
	}
	if loop.Attempts() != 1 {
		t.Errorf("Attempts() = %d, want 1", loop.Attempts())
	}
}

func TestLoop_Accept(t *testing.T) {
	t.Parallel()

	loop := newTestLoop(t, 5, true)
	loop.Accept()

	if !loop.Matches(PhaseValidated) || !loop.Done() {
		t.Errorf("Phase() = %s, want final validated", loop.Phase())
	}
}

func TestLoop_RejectWithRedFlagging(t *testing.T) {
	t.Parallel()

	loop := newTestLoop(t, 5, true)
	cause := errors.New("malformed")

	if !loop.Reject(cause) {
		t.Fatal("Reject() should allow resampling with red-flagging")
	}
	if loop.Phase() != PhaseRejected {
		t.Errorf("Phase() = %s, want rejected", loop.Phase())
	}
	if !loop.Retry() {
		t.Fatal("Retry() should start a second attempt")
	}
	if loop.Attempts() != 2 || loop.Context().Rejections != 1 {
		t.Errorf("Attempts=%d Rejections=%d, want 2 and 1", loop.Attempts(), loop.Context().Rejections)
	}
	if !errors.Is(loop.Context().LastErr, cause) {
		t.Errorf("LastErr = %v, want %v", loop.Context().LastErr, cause)
	}
}

func TestLoop_RejectWithoutRedFlagging(t *testing.T) {
	t.Parallel()

	loop := newTestLoop(t, 5, false)
	cause := errors.New("illegal")

	if loop.Reject(cause) {
		t.Fatal("Reject() should fail without red-flagging")
	}
	if !loop.Matches(PhaseFailed) || !loop.Done() {
		t.Errorf("Phase() = %s, want final failed", loop.Phase())
	}
	if !errors.Is(loop.Context().LastErr, cause) {
		t.Errorf("LastErr = %v, want %v", loop.Context().LastErr, cause)
	}
}

func TestLoop_Exhaustion(t *testing.T) {
	t.Parallel()

	loop := newTestLoop(t, 3, true)
	for i := 1; i < 3; i++ {
		loop.Reject(errors.New("bad"))
		if !loop.Retry() {
			t.Fatalf("Retry() after attempt %d should succeed", i)
		}
	}

	loop.Transient(errors.New("timeout"))
	if loop.Phase() != PhaseBackoff {
		t.Errorf("Phase() = %s, want backoff", loop.Phase())
	}
	if loop.Retry() {
		t.Fatal("Retry() should fail once the budget is spent")
	}
	if !loop.Matches(PhaseExhausted) {
		t.Errorf("Phase() = %s, want exhausted", loop.Phase())
	}
	if loop.Attempts() != 3 || loop.Context().ProviderErrors != 1 {
		t.Errorf("Attempts=%d ProviderErrors=%d", loop.Attempts(), loop.Context().ProviderErrors)
	}
}

func TestLoop_Abort(t *testing.T) {
	t.Parallel()

	loop := newTestLoop(t, 3, true)
	loop.Transient(errors.New("timeout"))
	loop.Abort(errors.New("cancelled"))

	if !loop.Matches(PhaseAborted) || !loop.Done() {
		t.Errorf("Phase() = %s, want final aborted", loop.Phase())
	}
}
