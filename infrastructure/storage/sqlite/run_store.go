package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"

	"github.com/mattn/go-sqlite3"

	"github.com/felixgeelhaar/maker-go/domain/run"
)

const (
	insertRun = `INSERT INTO runs (id, disk_count, k, model, status, verified, steps, data, start_time, end_time)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	updateRun = `UPDATE runs SET status = ?, verified = ?, steps = ?, data = ?, end_time = ? WHERE id = ?`
	selectRun = `SELECT data FROM runs WHERE id = ?`
	deleteRun = `DELETE FROM runs WHERE id = ?`
)

// RunStore implements run.Store. Each row carries the whole record as a
// JSON document next to the columns used for filtering and ordering.
type RunStore struct {
	db *sql.DB
}

var _ run.Store = (*RunStore)(nil)

// NewRunStore applies opts to cfg, opens the file and, with AutoMigrate,
// upgrades its schema.
func NewRunStore(cfg Config, opts ...Option) (*RunStore, error) {
	for _, opt := range opts {
		opt(&cfg)
	}

	db, err := open(cfg)
	if err != nil {
		return nil, err
	}
	if cfg.AutoMigrate {
		if err := migrate(context.Background(), db); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	return &RunStore{db: db}, nil
}

// NewRunStoreFromDB migrates db and stores runs in it. The caller keeps
// ownership of the pool.
func NewRunStoreFromDB(ctx context.Context, db *sql.DB) (*RunStore, error) {
	if err := migrate(ctx, db); err != nil {
		return nil, err
	}
	return &RunStore{db: db}, nil
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
	doc, err := json.Marshal(r)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, insertRun,
		r.ID, r.DiskCount, r.K, r.Model, string(r.Status), r.Verified, len(r.Steps),
		doc, r.StartTime.UnixNano(), endTime(r))
	if isUniqueViolation(err) {
		return run.ErrRunExists
	}
	return err
}

func (s *RunStore) Get(ctx context.Context, id string) (*run.Record, error) {
	if err := guard(ctx, id); err != nil {
		return nil, err
	}
	return scanRecord(s.db.QueryRowContext(ctx, selectRun, id))
}

func (s *RunStore) Update(ctx context.Context, r *run.Record) error {
	if err := guard(ctx, r.ID); err != nil {
		return err
	}
	return write(ctx, s.db, r)
}

// AppendStep reads, extends and rewrites the record in one transaction.
func (s *RunStore) AppendStep(ctx context.Context, id string, step run.StepSummary) error {
	if err := guard(ctx, id); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	r, err := scanRecord(tx.QueryRowContext(ctx, selectRun, id))
	if err != nil {
		return err
	}
	if err := r.AddStep(step); err != nil {
		return err
	}
	if err := write(ctx, tx, r); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *RunStore) Delete(ctx context.Context, id string) error {
	if err := guard(ctx, id); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, deleteRun, id)
	return affected(res, err)
}

// List returns matching records newest first. Rows whose document no
// longer decodes are skipped.
func (s *RunStore) List(ctx context.Context, filter run.ListFilter) ([]*run.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	query, args := listQuery(filter)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	out := []*run.Record{}
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		r := new(run.Record)
		if json.Unmarshal(doc, r) == nil {
			out = append(out, r)
		}
	}
	return out, rows.Err()
}

func (s *RunStore) Close() error {
	return s.db.Close()
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func write(ctx context.Context, db execer, r *run.Record) error {
	doc, err := json.Marshal(r)
	if err != nil {
		return err
	}
	res, err := db.ExecContext(ctx, updateRun,
		string(r.Status), r.Verified, len(r.Steps), doc, endTime(r), r.ID)
	return affected(res, err)
}

// affected turns a statement that touched no row into ErrRunNotFound.
func affected(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return run.ErrRunNotFound
	}
	return nil
}

func scanRecord(row *sql.Row) (*run.Record, error) {
	var doc []byte
	switch err := row.Scan(&doc); {
	case errors.Is(err, sql.ErrNoRows):
		return nil, run.ErrRunNotFound
	case err != nil:
		return nil, err
	}
	r := new(run.Record)
	if err := json.Unmarshal(doc, r); err != nil {
		return nil, err
	}
	return r, nil
}

func listQuery(f run.ListFilter) (string, []any) {
	var (
		where []string
		args  []any
	)
	if n := len(f.Status); n > 0 {
		where = append(where, "status IN (?"+strings.Repeat(", ?", n-1)+")")
		for _, st := range f.Status {
			args = append(args, string(st))
		}
	}
	if f.DiskCount > 0 {
		where = append(where, "disk_count = ?")
		args = append(args, f.DiskCount)
	}
	if !f.FromTime.IsZero() {
		where = append(where, "start_time >= ?")
		args = append(args, f.FromTime.UnixNano())
	}

	var b strings.Builder
	b.WriteString("SELECT data FROM runs")
	if len(where) > 0 {
		b.WriteString(" WHERE " + strings.Join(where, " AND "))
	}
	b.WriteString(" ORDER BY start_time DESC, id ASC")

	// SQLite only accepts OFFSET after a LIMIT; -1 means unbounded.
	switch {
	case f.Limit > 0:
		b.WriteString(" LIMIT ?")
		args = append(args, f.Limit)
	case f.Offset > 0:
		b.WriteString(" LIMIT -1")
	}
	if f.Offset > 0 {
		b.WriteString(" OFFSET ?")
		args = append(args, f.Offset)
	}
	return b.String(), args
}

func endTime(r *run.Record) sql.NullInt64 {
	if r.EndTime.IsZero() {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: r.EndTime.UnixNano(), Valid: true}
}

func isUniqueViolation(err error) bool {
	var e sqlite3.Error
	if !errors.As(err, &e) {
		return false
	}
	return e.ExtendedCode == sqlite3.ErrConstraintPrimaryKey || e.ExtendedCode == sqlite3.ErrConstraintUnique
}
