package run

import (
	"context"
	"time"
)

// Store persists run records.
type Store interface {
	// Save persists a new run.
	Save(ctx context.Context, record *Record) error

	// Get retrieves a run by ID.
	Get(ctx context.Context, id string) (*Record, error)

	// Update replaces an existing run.
	Update(ctx context.Context, record *Record) error

	// AppendStep adds the next decided step to a stored run.
	AppendStep(ctx context.Context, id string, step StepSummary) error

	// Delete removes a run by ID.
	Delete(ctx context.Context, id string) error

	// List returns runs matching the filter, newest first.
	List(ctx context.Context, filter ListFilter) ([]*Record, error)
}

// ListFilter specifies criteria for listing runs.
type ListFilter struct {
	// Status filters by run status (empty means all).
	Status []Status

	// DiskCount filters by puzzle size (0 means all).
	DiskCount int

	// FromTime filters runs started at or after this time.
	FromTime time.Time

	// Limit is the maximum number of runs to return (0 = no limit).
	Limit int

	// Offset is the number of runs to skip.
	Offset int
}

// Matches reports whether r satisfies the filter, ignoring pagination.
func (f ListFilter) Matches(r *Record) bool {
	if len(f.Status) > 0 {
		found := false
		for _, s := range f.Status {
			if r.Status == s {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.DiskCount > 0 && r.DiskCount != f.DiskCount {
		return false
	}
	if !f.FromTime.IsZero() && r.StartTime.Before(f.FromTime) {
		return false
	}
	return true
}

// Paginate applies Offset and Limit to an already filtered slice.
func (f ListFilter) Paginate(records []*Record) []*Record {
	if f.Offset > 0 {
		if f.Offset >= len(records) {
			return []*Record{}
		}
		records = records[f.Offset:]
	}
	if f.Limit > 0 && len(records) > f.Limit {
		records = records[:f.Limit]
	}
	return records
}
