package hanoi

import "fmt"

// Report is the outcome of re-simulating a whole plan.
type Report struct {
	// Valid is true when every step is legal and the goal is reached.
	Valid bool `json:"valid"`
	// Steps is the number of actions that were applied.
	Steps int `json:"steps"`
	// FailedStep is the index of the first illegal action, or -1.
	FailedStep int `json:"failed_step"`
	// Reason describes the failure, if any.
	Reason string `json:"reason,omitempty"`
	// Expected is the goal configuration.
	Expected Configuration `json:"expected"`
	// Actual is the configuration reached when simulation stopped.
	Actual Configuration `json:"actual"`
}

// Verify re-simulates plan from the canonical start configuration for
// diskCount disks and checks it ends at the canonical goal. A non-positive
// diskCount yields an invalid report.
func Verify(plan Plan, diskCount int) Report {
	if diskCount < 1 {
		return Report{FailedStep: -1, Reason: fmt.Sprintf("disk count must be positive, got %d", diskCount)}
	}
	state := Start(diskCount)
	report := Report{
		FailedStep: -1,
		Expected:   Goal(diskCount),
	}

	for i, a := range plan {
		if err := CheckMove(state, a); err != nil {
			report.FailedStep = i
			report.Reason = fmt.Sprintf("step %d: %v", i, err)
			report.Actual = state
			return report
		}
		state = Apply(state, a)
		report.Steps++
	}

	report.Actual = state
	if !state.Equal(report.Expected) {
		report.Reason = fmt.Sprintf("final configuration %s does not match goal %s", state, report.Expected)
		return report
	}

	report.Valid = true
	return report
}
