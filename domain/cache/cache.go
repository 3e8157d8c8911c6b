// Package cache stores greedy steps that already passed validation, so a
// repeated zero-temperature query can skip the model call.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/felixgeelhaar/maker-go/domain/hanoi"
)

// Cache holds encoded entries by key.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value. A zero ttl keeps the entry until it is evicted or
	// cleared.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	Delete(ctx context.Context, key string) error

	// Clear removes every entry the cache owns and nothing else.
	Clear(ctx context.Context) error
}

// Stats describes a cache since it was opened. Entries is counted at the time
// of the call.
type Stats struct {
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
	Entries int64 `json:"entries"`
}

// Inspector is implemented by caches that report Stats.
type Inspector interface {
	Stats(ctx context.Context) (Stats, error)
}

// Entry is one cached greedy step.
type Entry struct {
	Action   hanoi.Action        `json:"action"`
	Next     hanoi.Configuration `json:"next"`
	Model    string              `json:"model,omitempty"`
	StoredAt time.Time           `json:"stored_at"`
}

// Encode serializes e.
func Encode(e Entry) ([]byte, error) {
	return json.Marshal(e)
}

// Decode parses an encoded entry. Anything that is not a complete entry is
// reported as ErrCorruptEntry.
func Decode(data []byte) (Entry, error) {
	var e Entry
	if err := json.Unmarshal(data, &e); err != nil {
		return Entry{}, fmt.Errorf("%w: %v", ErrCorruptEntry, err)
	}
	if e.Action == (hanoi.Action{}) {
		return Entry{}, fmt.Errorf("%w: no action", ErrCorruptEntry)
	}
	return e, nil
}

// StepKey derives the key of a greedy step from the model and the rendered
// prompt pair.
func StepKey(model, system, user string) string {
	h := sha256.New()
	for _, part := range []string{model, system, user} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return "step:" + hex.EncodeToString(h.Sum(nil))
}
