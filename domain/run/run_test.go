package run

import (
	"errors"
	"testing"
	"time"

	"github.com/felixgeelhaar/maker-go/domain/hanoi"
)

func TestRecord_Lifecycle(t *testing.T) {
	t.Parallel()

	r := NewRecord("run-1", 1, 3, "gpt-4.1")
	if r.Status != StatusRunning || r.Status.IsTerminal() {
		t.Fatalf("new record status = %s", r.Status)
	}

	step := StepSummary{Index: 0, Action: hanoi.Action{Disk: 1, From: 0, To: 2}, Rounds: 3}
	if err := r.AddStep(step); err != nil {
		t.Fatalf("AddStep() error = %v", err)
	}
	if len(r.Actions) != 1 || r.Actions[0] != step.Action {
		t.Errorf("Actions = %v", r.Actions)
	}

	r.Complete(hanoi.Verify(r.Actions, 1))
	if r.Status != StatusCompleted || !r.Verified || r.Report == nil {
		t.Errorf("after Complete: status=%s verified=%v", r.Status, r.Verified)
	}
	if r.EndTime.IsZero() || r.Duration() < 0 {
		t.Error("Complete() should set EndTime")
	}
}

func TestRecord_AddStepOutOfOrder(t *testing.T) {
	t.Parallel()

	r := NewRecord("run-1", 2, 3, "m")
	err := r.AddStep(StepSummary{Index: 1})
	if !errors.Is(err, ErrStepOutOfOrder) {
		t.Errorf("AddStep() error = %v, want ErrStepOutOfOrder", err)
	}
}

func TestRecord_Fail(t *testing.T) {
	t.Parallel()

	r := NewRecord("run-1", 2, 3, "m")
	r.Fail(errors.New("exhausted"))

	if r.Status != StatusFailed || r.Error != "exhausted" || r.Verified {
		t.Errorf("after Fail: %+v", r)
	}
}

func TestRecord_TimedOutSteps(t *testing.T) {
	t.Parallel()

	r := NewRecord("run-1", 2, 3, "m")
	for i, timedOut := range []bool{false, true, true} {
		_ = r.AddStep(StepSummary{Index: i, TimedOut: timedOut})
	}
	if got := r.TimedOutSteps(); got != 2 {
		t.Errorf("TimedOutSteps() = %d, want 2", got)
	}
}

func TestListFilter(t *testing.T) {
	t.Parallel()

	now := time.Now()
	records := []*Record{
		{ID: "a", DiskCount: 3, Status: StatusCompleted, StartTime: now},
		{ID: "b", DiskCount: 4, Status: StatusFailed, StartTime: now.Add(-time.Hour)},
		{ID: "c", DiskCount: 3, Status: StatusRunning, StartTime: now.Add(-2 * time.Hour)},
	}

	tests := []struct {
		name   string
		filter ListFilter
		want   []string
	}{
		{"all", ListFilter{}, []string{"a", "b", "c"}},
		{"by status", ListFilter{Status: []Status{StatusCompleted, StatusFailed}}, []string{"a", "b"}},
		{"by disks", ListFilter{DiskCount: 3}, []string{"a", "c"}},
		{"from time", ListFilter{FromTime: now.Add(-90 * time.Minute)}, []string{"a", "b"}},
		{"limit", ListFilter{Limit: 1}, []string{"a"}},
		{"offset", ListFilter{Offset: 2}, []string{"c"}},
		{"offset past end", ListFilter{Offset: 5}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var matched []*Record
			for _, r := range records {
				if tt.filter.Matches(r) {
					matched = append(matched, r)
				}
			}
			got := tt.filter.Paginate(matched)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d records, want %d", len(got), len(tt.want))
			}
			for i, r := range got {
				if r.ID != tt.want[i] {
					t.Errorf("record %d = %s, want %s", i, r.ID, tt.want[i])
				}
			}
		})
	}
}
