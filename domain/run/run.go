// Package run models a persisted solve and the store that keeps it.
package run

import (
	"time"

	"github.com/felixgeelhaar/maker-go/domain/hanoi"
	"github.com/felixgeelhaar/maker-go/domain/vote"
)

// Status is the lifecycle state of a run.
type Status string

// Run statuses.
const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// IsTerminal reports whether the run has finished.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// StepSummary records how one step was decided.
type StepSummary struct {
	Index    int          `json:"index"`
	Action   hanoi.Action `json:"action"`
	Rounds   int          `json:"rounds"`
	Votes    []vote.Entry `json:"votes"`
	TimedOut bool         `json:"timed_out"`
}

// Record is a single solve of an n-disk puzzle.
type Record struct {
	ID        string        `json:"id"`
	DiskCount int           `json:"disk_count"`
	K         int           `json:"k"`
	Model     string        `json:"model"`
	Status    Status        `json:"status"`
	Actions   hanoi.Plan    `json:"actions"`
	Steps     []StepSummary `json:"steps"`
	Verified  bool          `json:"verified"`
	Report    *hanoi.Report `json:"report,omitempty"`
	Error     string        `json:"error,omitempty"`
	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time,omitempty"`
}

// NewRecord creates a running record.
func NewRecord(id string, diskCount, k int, model string) *Record {
	return &Record{
		ID:        id,
		DiskCount: diskCount,
		K:         k,
		Model:     model,
		Status:    StatusRunning,
		Actions:   hanoi.Plan{},
		Steps:     []StepSummary{},
		StartTime: time.Now(),
	}
}

// AddStep appends a decided step and its action.
func (r *Record) AddStep(step StepSummary) error {
	if step.Index != len(r.Steps) {
		return ErrStepOutOfOrder
	}
	r.Steps = append(r.Steps, step)
	r.Actions = append(r.Actions, step.Action)
	return nil
}

// Complete marks the run as finished with a verification report.
func (r *Record) Complete(report hanoi.Report) {
	r.Status = StatusCompleted
	r.Verified = report.Valid
	r.Report = &report
	r.EndTime = time.Now()
}

// Fail marks the run as failed.
func (r *Record) Fail(err error) {
	r.Status = StatusFailed
	if err != nil {
		r.Error = err.Error()
	}
	r.EndTime = time.Now()
}

// Duration returns the elapsed time of the run. For a running record it is
// measured up to now.
func (r *Record) Duration() time.Duration {
	if r.EndTime.IsZero() {
		return time.Since(r.StartTime)
	}
	return r.EndTime.Sub(r.StartTime)
}

// TimedOutSteps counts steps that fell back to plurality.
func (r *Record) TimedOutSteps() int {
	n := 0
	for _, s := range r.Steps {
		if s.TimedOut {
			n++
		}
	}
	return n
}
