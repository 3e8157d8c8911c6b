// Package vote holds per-step vote accounting for first-to-ahead-by-k voting.
package vote

import "github.com/felixgeelhaar/maker-go/domain/hanoi"

// Candidate is a validated (action, next configuration) pair proposed for a step.
type Candidate struct {
	Action hanoi.Action        `json:"action"`
	Next   hanoi.Configuration `json:"next"`
}

// Key is the vote key of the candidate's action. Candidates whose actions are
// equal share a key regardless of their claimed next configuration.
func (c Candidate) Key() string {
	return c.Action.Key()
}

// Entry is one tallied key in a snapshot.
type Entry struct {
	Key       string    `json:"key"`
	Count     int       `json:"count"`
	Candidate Candidate `json:"candidate"`
}

// Tally counts votes per action key for a single step. The candidate stored
// for a key is the first one seen. Keys keep first-insertion order.
//
// A Tally is not safe for concurrent use.
type Tally struct {
	counts     map[string]int
	candidates map[string]Candidate
	order      []string
	total      int
}

// NewTally returns an empty tally.
func NewTally() *Tally {
	return &Tally{
		counts:     make(map[string]int),
		candidates: make(map[string]Candidate),
	}
}

// Add records one vote and returns the key's new count.
func (t *Tally) Add(c Candidate) int {
	key := c.Key()
	if _, ok := t.counts[key]; !ok {
		t.order = append(t.order, key)
		t.candidates[key] = c
	}
	t.counts[key]++
	t.total++
	return t.counts[key]
}

// Count returns the votes recorded for key.
func (t *Tally) Count(key string) int {
	return t.counts[key]
}

// Total returns the number of votes recorded.
func (t *Tally) Total() int {
	return t.total
}

// Len returns the number of distinct keys.
func (t *Tally) Len() int {
	return len(t.order)
}

// MaxOther returns the highest count among keys other than key, or 0.
func (t *Tally) MaxOther(key string) int {
	best := 0
	for k, n := range t.counts {
		if k != key && n > best {
			best = n
		}
	}
	return best
}

// Leads reports whether key is at least k votes ahead of every other key.
func (t *Tally) Leads(key string, k int) bool {
	return t.counts[key] >= k+t.MaxOther(key)
}

// Plurality returns the candidate with the most votes and its count. Ties go
// to the key seen first. ok is false on an empty tally.
func (t *Tally) Plurality() (Candidate, int, bool) {
	var bestKey string
	best := 0
	for _, key := range t.order {
		if n := t.counts[key]; n > best {
			best = n
			bestKey = key
		}
	}
	if best == 0 {
		return Candidate{}, 0, false
	}
	return t.candidates[bestKey], best, true
}

// Snapshot returns the tally entries in first-insertion order.
func (t *Tally) Snapshot() []Entry {
	entries := make([]Entry, 0, len(t.order))
	for _, key := range t.order {
		entries = append(entries, Entry{
			Key:       key,
			Count:     t.counts[key],
			Candidate: t.candidates[key],
		})
	}
	return entries
}
