package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/felixgeelhaar/maker-go/domain/hanoi"
	"github.com/felixgeelhaar/maker-go/domain/run"
	"github.com/felixgeelhaar/maker-go/infrastructure/storage/memory"
)

func TestRunStore_SaveGet(t *testing.T) {
	t.Parallel()

	store := memory.NewRunStore()
	ctx := context.Background()
	r := run.NewRecord("run-1", 3, 3, "gpt-4.1")

	if err := store.Save(ctx, r); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := store.Save(ctx, r); !errors.Is(err, run.ErrRunExists) {
		t.Errorf("second Save() error = %v, want ErrRunExists", err)
	}

	got, err := store.Get(ctx, "run-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.DiskCount != 3 || got.Model != "gpt-4.1" || got.Status != run.StatusRunning {
		t.Errorf("Get() = %+v", got)
	}

	got.Model = "changed"
	again, _ := store.Get(ctx, "run-1")
	if again.Model != "gpt-4.1" {
		t.Error("Get() should not share memory with the store")
	}
}

func TestRunStore_Errors(t *testing.T) {
	t.Parallel()

	store := memory.NewRunStore()
	ctx := context.Background()

	if err := store.Save(ctx, &run.Record{}); !errors.Is(err, run.ErrInvalidRunID) {
		t.Errorf("Save() error = %v, want ErrInvalidRunID", err)
	}
	if _, err := store.Get(ctx, "nope"); !errors.Is(err, run.ErrRunNotFound) {
		t.Errorf("Get() error = %v, want ErrRunNotFound", err)
	}
	if err := store.Update(ctx, &run.Record{ID: "nope"}); !errors.Is(err, run.ErrRunNotFound) {
		t.Errorf("Update() error = %v, want ErrRunNotFound", err)
	}
	if err := store.Delete(ctx, "nope"); !errors.Is(err, run.ErrRunNotFound) {
		t.Errorf("Delete() error = %v, want ErrRunNotFound", err)
	}
	if err := store.AppendStep(ctx, "", run.StepSummary{}); !errors.Is(err, run.ErrInvalidRunID) {
		t.Errorf("AppendStep() error = %v, want ErrInvalidRunID", err)
	}
}

func TestRunStore_AppendStepAndUpdate(t *testing.T) {
	t.Parallel()

	store := memory.NewRunStore()
	ctx := context.Background()
	r := run.NewRecord("run-1", 1, 3, "m")
	_ = store.Save(ctx, r)

	step := run.StepSummary{Index: 0, Action: hanoi.Action{Disk: 1, From: 0, To: 2}, Rounds: 1}
	if err := store.AppendStep(ctx, "run-1", step); err != nil {
		t.Fatalf("AppendStep() error = %v", err)
	}
	if err := store.AppendStep(ctx, "run-1", step); !errors.Is(err, run.ErrStepOutOfOrder) {
		t.Errorf("duplicate AppendStep() error = %v, want ErrStepOutOfOrder", err)
	}

	got, _ := store.Get(ctx, "run-1")
	if len(got.Steps) != 1 || len(got.Actions) != 1 {
		t.Fatalf("stored steps = %d, actions = %d", len(got.Steps), len(got.Actions))
	}

	got.Complete(hanoi.Verify(got.Actions, 1))
	if err := store.Update(ctx, got); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	final, _ := store.Get(ctx, "run-1")
	if final.Status != run.StatusCompleted || !final.Verified {
		t.Errorf("after Update: status=%s verified=%v", final.Status, final.Verified)
	}
}

func TestRunStore_ListAndDelete(t *testing.T) {
	t.Parallel()

	store := memory.NewRunStore()
	ctx := context.Background()
	base := time.Now()

	for i, id := range []string{"old", "mid", "new"} {
		r := run.NewRecord(id, 3+i%2, 3, "m")
		r.StartTime = base.Add(time.Duration(i) * time.Minute)
		_ = store.Save(ctx, r)
	}

	all, err := store.List(ctx, run.ListFilter{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(all) != 3 || all[0].ID != "new" || all[2].ID != "old" {
		t.Errorf("List() order = %v", ids(all))
	}

	three, _ := store.List(ctx, run.ListFilter{DiskCount: 3})
	if len(three) != 2 {
		t.Errorf("List(DiskCount=3) = %v", ids(three))
	}

	if err := store.Delete(ctx, "mid"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if store.Len() != 2 {
		t.Errorf("Len() = %d, want 2", store.Len())
	}
}

func ids(records []*run.Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}
