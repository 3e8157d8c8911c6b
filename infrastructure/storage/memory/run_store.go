// Package memory keeps solve records and cached steps in process memory.
package memory

import (
	"cmp"
	"context"
	"encoding/json"
	"slices"
	"sync"

	"github.com/felixgeelhaar/maker-go/domain/run"
)

// RunStore implements run.Store over a map of JSON documents, so a record
// returned by Get never aliases one held by the store.
type RunStore struct {
	mu   sync.RWMutex
	docs map[string][]byte
}

var _ run.Store = (*RunStore)(nil)

func NewRunStore() *RunStore {
	return &RunStore{docs: make(map[string][]byte)}
}

func guard(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if id == "" {
		return run.ErrInvalidRunID
	}
	return nil
}

func (s *RunStore) Save(ctx context.Context, r *run.Record) error {
	if err := guard(ctx, r.ID); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.docs[r.ID]; taken {
		return run.ErrRunExists
	}
	return s.encode(r)
}

func (s *RunStore) Get(ctx context.Context, id string) (*run.Record, error) {
	if err := guard(ctx, id); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.decode(id)
}

func (s *RunStore) Update(ctx context.Context, r *run.Record) error {
	if err := guard(ctx, r.ID); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[r.ID]; !ok {
		return run.ErrRunNotFound
	}
	return s.encode(r)
}

// AppendStep decodes, extends and re-encodes the record under one lock.
func (s *RunStore) AppendStep(ctx context.Context, id string, step run.StepSummary) error {
	if err := guard(ctx, id); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	r, err := s.decode(id)
	if err != nil {
		return err
	}
	if err := r.AddStep(step); err != nil {
		return err
	}
	return s.encode(r)
}

func (s *RunStore) Delete(ctx context.Context, id string) error {
	if err := guard(ctx, id); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[id]; !ok {
		return run.ErrRunNotFound
	}
	delete(s.docs, id)
	return nil
}

// List returns matching records newest first, ties broken by ID.
func (s *RunStore) List(ctx context.Context, filter run.ListFilter) ([]*run.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	out := make([]*run.Record, 0, len(s.docs))
	for id := range s.docs {
		if r, err := s.decode(id); err == nil && filter.Matches(r) {
			out = append(out, r)
		}
	}
	s.mu.RUnlock()

	slices.SortFunc(out, func(a, b *run.Record) int {
		if c := b.StartTime.Compare(a.StartTime); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return filter.Paginate(out), nil
}

// Len reports how many records are stored.
func (s *RunStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}

func (s *RunStore) encode(r *run.Record) error {
	doc, err := json.Marshal(r)
	if err != nil {
		return err
	}
	s.docs[r.ID] = doc
	return nil
}

func (s *RunStore) decode(id string) (*run.Record, error) {
	doc, ok := s.docs[id]
	if !ok {
		return nil, run.ErrRunNotFound
	}
	r := new(run.Record)
	if err := json.Unmarshal(doc, r); err != nil {
		return nil, err
	}
	return r, nil
}
