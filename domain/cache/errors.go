package cache

import "errors"

var (
	ErrInvalidKey = errors.New("cache: empty key")

	// ErrUnavailable is returned when a backend cannot be reached or opened.
	ErrUnavailable = errors.New("cache: backend unavailable")
	ErrTimeout     = errors.New("cache: operation timed out")

	// ErrCorruptEntry marks a stored value that does not decode to an Entry.
	// Callers treat it as a miss and evict the key.
	ErrCorruptEntry = errors.New("cache: corrupt entry")
)
