package application

import (
	"errors"
	"fmt"
)

// Application errors.
var (
	// ErrProviderRequired is returned when an engine is built without a provider.
	ErrProviderRequired = errors.New("provider is required")

	// ErrExhaustedAttempts matches every *ExhaustedAttemptsError.
	ErrExhaustedAttempts = errors.New("exhausted sampling attempts")

	// ErrInvalidDiskCount is returned for a disk count outside 1..30.
	ErrInvalidDiskCount = errors.New("invalid disk count")

	// ErrInvalidStepCount is returned for a negative step count.
	ErrInvalidStepCount = errors.New("invalid step count")

	// ErrInvalidThreshold is returned for a vote threshold below 1.
	ErrInvalidThreshold = errors.New("invalid vote threshold")
)

// ExhaustedAttemptsError reports that no valid sample was obtained within
// the attempt budget. It is fatal for the run.
type ExhaustedAttemptsError struct {
	Attempts int
	Last     error
}

func (e *ExhaustedAttemptsError) Error() string {
	if e.Last == nil {
		return fmt.Sprintf("failed after %d attempts", e.Attempts)
	}
	return fmt.Sprintf("failed after %d attempts: %v", e.Attempts, e.Last)
}

// Is matches ErrExhaustedAttempts.
func (e *ExhaustedAttemptsError) Is(target error) bool {
	return target == ErrExhaustedAttempts
}

// Unwrap returns the last rejection or provider error.
func (e *ExhaustedAttemptsError) Unwrap() error {
	return e.Last
}

// StepError attaches the step index to a planning failure.
type StepError struct {
	Step int
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}
