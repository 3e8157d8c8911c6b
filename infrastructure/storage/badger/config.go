// Package badger keeps greedy steps in an embedded BadgerDB, on disk or in
// memory.
package badger

import (
	"time"

	"github.com/dgraph-io/badger/v4"
)

// Config configures the database.
type Config struct {
	// Dir is the data directory. Empty together with InMemory unset is an
	// error from badger itself.
	Dir      string
	InMemory bool

	SyncWrites bool

	// GCInterval between value log collections; zero disables them. They are
	// never run for in-memory databases.
	GCInterval     time.Duration
	GCDiscardRatio float64

	KeyPrefix string

	// Logger receives badger's own output. Nil silences it.
	Logger badger.Logger
}

// Option adjusts a Config.
type Option func(*Config)

func WithDir(dir string) Option {
	return func(c *Config) { c.Dir = dir }
}

func WithInMemory() Option {
	return func(c *Config) { c.InMemory = true }
}

func WithKeyPrefix(prefix string) Option {
	return func(c *Config) { c.KeyPrefix = prefix }
}

func WithGCInterval(d time.Duration) Option {
	return func(c *Config) { c.GCInterval = d }
}

// DefaultConfig collects the value log every five minutes under the
// "maker:" prefix.
func DefaultConfig() Config {
	return Config{
		GCInterval:     5 * time.Minute,
		GCDiscardRatio: 0.5,
		KeyPrefix:      "maker:",
	}
}

func (c Config) options() badger.Options {
	opts := badger.DefaultOptions(c.Dir)
	if c.InMemory {
		opts = opts.WithDir("").WithValueDir("").WithInMemory(true)
	}
	return opts.WithSyncWrites(c.SyncWrites).WithLogger(c.Logger)
}
