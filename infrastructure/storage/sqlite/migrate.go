package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

var (
	ErrOpen      = errors.New("sqlite: cannot open database")
	ErrMigration = errors.New("sqlite: migration failed")
)

// migrations[i] moves the schema from user_version i to i+1.
var migrations = []string{
	`CREATE TABLE runs (
		id         TEXT PRIMARY KEY,
		disk_count INTEGER NOT NULL,
		k          INTEGER NOT NULL,
		model      TEXT NOT NULL,
		status     TEXT NOT NULL,
		verified   INTEGER NOT NULL DEFAULT 0,
		steps      INTEGER NOT NULL DEFAULT 0,
		data       BLOB NOT NULL,
		start_time INTEGER NOT NULL,
		end_time   INTEGER
	);
	CREATE INDEX idx_runs_status ON runs(status);
	CREATE INDEX idx_runs_start_time ON runs(start_time);`,
}

// SchemaVersion is the user_version of a fully migrated database.
var SchemaVersion = len(migrations)

func migrate(ctx context.Context, db *sql.DB) error {
	var version int
	if err := db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("%w: %v", ErrMigration, err)
	}
	if version > len(migrations) {
		return fmt.Errorf("%w: database is at version %d, newer than %d", ErrMigration, version, len(migrations))
	}

	for v := version; v < len(migrations); v++ {
		if err := step(ctx, db, v); err != nil {
			return fmt.Errorf("%w: to version %d: %v", ErrMigration, v+1, err)
		}
	}
	return nil
}

func step(ctx context.Context, db *sql.DB, from int) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, migrations[from]); err != nil {
		return err
	}
	// PRAGMA does not accept bound parameters.
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", from+1)); err != nil {
		return err
	}
	return tx.Commit()
}
