package hanoi

import "testing"

func TestVerify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		plan       Plan
		disks      int
		wantValid  bool
		wantFailed int
	}{
		{
			name:       "one disk",
			plan:       Plan{{Disk: 1, From: 0, To: 2}},
			disks:      1,
			wantValid:  true,
			wantFailed: -1,
		},
		{
			name: "two disks",
			plan: Plan{
				{Disk: 1, From: 0, To: 1},
				{Disk: 2, From: 0, To: 2},
				{Disk: 1, From: 1, To: 2},
			},
			disks:      2,
			wantValid:  true,
			wantFailed: -1,
		},
		{
			name: "illegal second step",
			plan: Plan{
				{Disk: 1, From: 0, To: 1},
				{Disk: 2, From: 0, To: 1},
				{Disk: 1, From: 1, To: 2},
			},
			disks:      2,
			wantFailed: 1,
		},
		{
			name:       "legal but incomplete",
			plan:       Plan{{Disk: 1, From: 0, To: 1}},
			disks:      1,
			wantFailed: -1,
		},
		{
			name:       "empty plan",
			disks:      2,
			wantFailed: -1,
		},
		{
			name:       "negative disk count",
			plan:       Plan{{Disk: 1, From: 0, To: 2}},
			disks:      -1,
			wantFailed: -1,
		},
		{
			name:       "zero disks",
			disks:      0,
			wantFailed: -1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := Verify(tt.plan, tt.disks)
			if r.Valid != tt.wantValid {
				t.Errorf("Valid = %v, want %v (reason: %s)", r.Valid, tt.wantValid, r.Reason)
			}
			if r.FailedStep != tt.wantFailed {
				t.Errorf("FailedStep = %d, want %d", r.FailedStep, tt.wantFailed)
			}
			if !r.Valid && r.Reason == "" {
				t.Error("invalid report should carry a reason")
			}
		})
	}
}

func TestVerify_OptimalThreeDisks(t *testing.T) {
	t.Parallel()

	plan := Plan{
		{1, 0, 2}, {2, 0, 1}, {1, 2, 1}, {3, 0, 2},
		{1, 1, 0}, {2, 1, 2}, {1, 0, 2},
	}
	r := Verify(plan, 3)
	if !r.Valid || r.Steps != OptimalLength(3) {
		t.Errorf("Verify() = %+v", r)
	}
}
