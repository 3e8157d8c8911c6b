// Package sqlite persists solve records in a SQLite database file.
package sqlite

import (
	"database/sql"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Config describes the database file and its pragmas.
type Config struct {
	// Path is a file path. A "file:" URI is accepted and extended with the
	// pragmas below.
	Path string

	JournalMode string
	BusyTimeout time.Duration

	MaxOpenConns int

	// AutoMigrate brings the schema to the latest version on open.
	AutoMigrate bool
}

// Option adjusts a Config.
type Option func(*Config)

func WithPath(path string) Option {
	return func(c *Config) { c.Path = path }
}

func WithJournalMode(mode string) Option {
	return func(c *Config) { c.JournalMode = mode }
}

func WithBusyTimeout(d time.Duration) Option {
	return func(c *Config) { c.BusyTimeout = d }
}

// DefaultConfig opens runs.db in WAL mode.
func DefaultConfig() Config {
	return Config{
		Path:         "runs.db",
		JournalMode:  "WAL",
		BusyTimeout:  5 * time.Second,
		MaxOpenConns: 4,
		AutoMigrate:  true,
	}
}

// dsn renders the go-sqlite3 URI. Pragmas travel in the URI so that every
// pooled connection gets them, not only the first.
func (c Config) dsn() string {
	base, query, _ := strings.Cut(strings.TrimPrefix(c.Path, "file:"), "?")

	params, err := url.ParseQuery(query)
	if err != nil {
		params = url.Values{}
	}
	if params.Get("mode") == "" {
		params.Set("mode", "rwc")
	}
	if c.JournalMode != "" {
		params.Set("_journal_mode", c.JournalMode)
	}
	if c.BusyTimeout > 0 {
		params.Set("_busy_timeout", strconv.FormatInt(c.BusyTimeout.Milliseconds(), 10))
	}
	return "file:" + base + "?" + params.Encode()
}

func open(cfg Config) (*sql.DB, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("%w: empty path", ErrOpen)
	}

	db, err := sql.Open("sqlite3", cfg.dsn())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOpen, err)
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: %v", ErrOpen, err)
	}
	return db, nil
}
