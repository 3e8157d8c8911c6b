package application

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/felixgeelhaar/maker-go/domain/hanoi"
	"github.com/felixgeelhaar/maker-go/domain/oracle"
	"github.com/felixgeelhaar/maker-go/domain/run"
	"github.com/felixgeelhaar/maker-go/infrastructure/provider"
	"github.com/felixgeelhaar/maker-go/infrastructure/storage/memory"
)

var twoDiskReplies = []string{
	"move = [1, 0, 1]\nnext_state = [[2], [1], []]",
	"move = [2, 0, 2]\nnext_state = [[], [1], [2]]",
	"move = [1, 1, 2]\nnext_state = [[], [], [2, 1]]",
}

func newTestEngine(t *testing.T, p oracle.Provider, opts ...Option) *Engine {
	t.Helper()

	base := []Option{
		WithProvider(p),
		WithSampling(testSampling()),
		WithK(1),
	}
	e, err := NewEngineWithOptions(append(base, opts...)...)
	if err != nil {
		t.Fatalf("NewEngineWithOptions() error = %v", err)
	}
	return e
}

func TestNewEngine_RequiresProvider(t *testing.T) {
	t.Parallel()

	if _, err := NewEngine(EngineConfig{}); !errors.Is(err, ErrProviderRequired) {
		t.Errorf("NewEngine() error = %v, want ErrProviderRequired", err)
	}
}

func TestNewEngine_Defaults(t *testing.T) {
	t.Parallel()

	e, err := NewEngine(EngineConfig{Provider: provider.NewScriptedProvider()})
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	if e.Voting().K != 3 || e.Voting().MaxRounds != 100 {
		t.Errorf("Voting() = %+v", e.Voting())
	}
	if e.Sampling().Model != "gpt-4.1" || e.Sampling().MaxAttempts != 50 {
		t.Errorf("Sampling() = %+v", e.Sampling())
	}
}

func TestNewEngineWithOptions(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, provider.NewScriptedProvider(),
		WithModel("local"),
		WithK(5),
		WithMaxRounds(20),
		WithConcurrency(4),
		WithTemperatures(0, 0.7),
		WithMaxAttempts(9),
		WithRedFlagging(false),
	)

	if v := e.Voting(); v.K != 5 || v.MaxRounds != 20 || v.Concurrency != 4 {
		t.Errorf("Voting() = %+v", v)
	}
	if s := e.Sampling(); s.Model != "local" || s.RestTemperature != 0.7 || s.MaxAttempts != 9 || s.RedFlagging {
		t.Errorf("Sampling() = %+v", s)
	}
}

func TestEngine_Plan(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		disks   int
		replies []string
		want    hanoi.Plan
	}{
		{
			name:    "one disk",
			disks:   1,
			replies: []string{"move = [1, 0, 2]\nnext_state = [[], [], [1]]"},
			want:    hanoi.Plan{{Disk: 1, From: 0, To: 2}},
		},
		{
			name:    "two disks",
			disks:   2,
			replies: twoDiskReplies,
			want: hanoi.Plan{
				{Disk: 1, From: 0, To: 1},
				{Disk: 2, From: 0, To: 2},
				{Disk: 1, From: 1, To: 2},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := provider.NewScriptedProvider(provider.Texts(tt.replies...)...)
			e := newTestEngine(t, p)

			plan, err := e.Plan(context.Background(), hanoi.Start(tt.disks), hanoi.OptimalLength(tt.disks), 1)
			if err != nil {
				t.Fatalf("Plan() error = %v", err)
			}
			if len(plan) != len(tt.want) {
				t.Fatalf("Plan() = %v, want %v", plan, tt.want)
			}
			for i := range plan {
				if plan[i] != tt.want[i] {
					t.Errorf("plan[%d] = %s, want %s", i, plan[i], tt.want[i])
				}
			}
			if report := e.Verify(plan, tt.disks); !report.Valid {
				t.Errorf("Verify() = %+v", report)
			}
		})
	}
}

func TestEngine_PlanPassesPreviousMove(t *testing.T) {
	t.Parallel()

	p := provider.NewScriptedProvider(provider.Texts(twoDiskReplies...)...)
	e := newTestEngine(t, p)

	if _, err := e.Plan(context.Background(), hanoi.Start(2), 3, 1); err != nil {
		t.Fatalf("Plan() error = %v", err)
	}

	requests := p.Requests()
	if !strings.Contains(requests[1].Prompt, "[1, 0, 1]") {
		t.Errorf("second prompt should mention the previous move:\n%s", requests[1].Prompt)
	}
	if !strings.Contains(requests[2].Prompt, "[[], [1], [2]]") {
		t.Errorf("third prompt should carry the current state:\n%s", requests[2].Prompt)
	}
}

func TestEngine_PlanArguments(t *testing.T) {
	t.Parallel()

	p := provider.NewScriptedProvider()
	e := newTestEngine(t, p)
	ctx := context.Background()

	plan, err := e.Plan(ctx, hanoi.Start(3), 0, 1)
	if err != nil || len(plan) != 0 {
		t.Errorf("Plan(0 steps) = %v, %v", plan, err)
	}
	if _, err := e.Plan(ctx, hanoi.Start(3), -1, 1); !errors.Is(err, ErrInvalidStepCount) {
		t.Errorf("Plan(-1 steps) error = %v", err)
	}
	if _, err := e.Plan(ctx, hanoi.Start(3), 1, 0); !errors.Is(err, ErrInvalidThreshold) {
		t.Errorf("Plan(k=0) error = %v", err)
	}
	if p.Calls() != 0 {
		t.Errorf("Calls() = %d, want 0", p.Calls())
	}
}

func TestEngine_PlanAbortsOnError(t *testing.T) {
	t.Parallel()

	p := provider.NewScriptedProvider(provider.Texts(twoDiskReplies[0], replyMalformed)...).Loop()
	e := newTestEngine(t, p, WithMaxAttempts(2))

	plan, err := e.Plan(context.Background(), hanoi.Start(2), 3, 1)
	if plan != nil {
		t.Errorf("Plan() should not return a partial plan, got %v", plan)
	}

	var stepErr *StepError
	if !errors.As(err, &stepErr) || stepErr.Step != 1 {
		t.Fatalf("Plan() error = %v, want failure at step 1", err)
	}
	if !errors.Is(err, ErrExhaustedAttempts) {
		t.Errorf("Plan() error = %v, want ErrExhaustedAttempts", err)
	}
}

func TestEngine_PlanCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e := newTestEngine(t, provider.NewScriptedProvider(provider.Texts(twoDiskReplies...)...))
	if _, err := e.Plan(ctx, hanoi.Start(2), 3, 1); !errors.Is(err, context.Canceled) {
		t.Errorf("Plan() error = %v, want context.Canceled", err)
	}
}

func TestEngine_Solve(t *testing.T) {
	t.Parallel()

	store := memory.NewRunStore()
	p := provider.NewScriptedProvider(provider.Texts(twoDiskReplies...)...)
	e := newTestEngine(t, p, WithRunStore(store))

	rec, err := e.Solve(context.Background(), 2)
	if err != nil {
		t.Fatalf("Solve() error = %v", err)
	}
	if rec.Status != run.StatusCompleted || !rec.Verified {
		t.Errorf("record = %+v", rec)
	}
	if rec.ID == "" || rec.K != 1 || rec.DiskCount != 2 {
		t.Errorf("record metadata = %+v", rec)
	}

	stored, err := store.Get(context.Background(), rec.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if stored.Status != run.StatusCompleted || len(stored.Steps) != 3 || len(stored.Actions) != 3 {
		t.Errorf("stored record = %+v", stored)
	}
	if stored.Report == nil || !stored.Report.Valid {
		t.Errorf("stored report = %+v", stored.Report)
	}
}

func TestEngine_SolveFailure(t *testing.T) {
	t.Parallel()

	store := memory.NewRunStore()
	p := provider.NewScriptedProvider(provider.Texts(replyMalformed)...).Loop()
	e := newTestEngine(t, p, WithRunStore(store), WithMaxAttempts(3))

	rec, err := e.Solve(context.Background(), 3)
	if !errors.Is(err, ErrExhaustedAttempts) {
		t.Fatalf("Solve() error = %v, want ErrExhaustedAttempts", err)
	}
	if rec == nil || rec.Status != run.StatusFailed || rec.Error == "" {
		t.Fatalf("record = %+v", rec)
	}

	stored, err := store.Get(context.Background(), rec.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if stored.Status != run.StatusFailed {
		t.Errorf("stored status = %s, want failed", stored.Status)
	}
}

func TestEngine_SolveInvalidDiskCount(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, provider.NewScriptedProvider())
	for _, n := range []int{0, -1, 31} {
		if _, err := e.Solve(context.Background(), n); !errors.Is(err, ErrInvalidDiskCount) {
			t.Errorf("Solve(%d) error = %v, want ErrInvalidDiskCount", n, err)
		}
	}
}

func TestEngine_VerifyReportsFailure(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, provider.NewScriptedProvider())
	report := e.Verify(hanoi.Plan{{Disk: 1, From: 0, To: 1}}, 1)
	if report.Valid {
		t.Error("Verify() should reject a plan that misses the goal")
	}
}

func TestProgressObserver(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	p := provider.NewScriptedProvider(provider.Texts(twoDiskReplies...)...)
	e := newTestEngine(t, p, WithObserver(ProgressObserver(&buf)))

	if _, err := e.Plan(context.Background(), hanoi.Start(2), 3, 1); err != nil {
		t.Fatalf("Plan() error = %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"Starting MAKER with k=1, 3 steps...",
		"Initial state: [[2, 1], [], []]",
		"Step 0: Move [1, 0, 1], State: [[2], [1], []]",
		"Step 2: Move [1, 1, 2], State: [[], [], [2, 1]]",
		"Final state: [[], [], [2, 1]]",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestProgressObserver_SkipsQuietSteps(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	o := ProgressObserver(&buf)
	for _, i := range []int{9, 10, 99, 100, 250, 300} {
		o.OnStep(StepEvent{Index: i, State: hanoi.Start(1)})
	}

	out := buf.String()
	for _, want := range []string{"Step 9:", "Step 100:", "Step 300:"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
	for _, skip := range []string{"Step 10:", "Step 99:", "Step 250:"} {
		if strings.Contains(out, skip) {
			t.Errorf("output should skip %q", skip)
		}
	}
}
