// Package sqlstore implements storage.Provider's data operations on top of
// sqlx. Queries are written with ? placeholders and rebound per driver, so a
// single implementation serves the SQLite and PostgreSQL backends.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/jmoiron/sqlx"

	apperrors "github.com/108city/habit-tracker/internal/errors"
	"github.com/108city/habit-tracker/internal/logger"
	"github.com/108city/habit-tracker/internal/migration"
)

// timeLayout keeps fractional seconds fixed-width so TEXT columns sort chronologically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Locker serializes log transitions on key inside tx. Backends whose
// transactions already serialize writers pass nil.
type Locker func(ctx context.Context, tx *sqlx.Tx, key string) error

// Store holds the shared database handle. Backends embed it and attach a
// connection once it is open.
type Store struct {
	db     *sqlx.DB
	schema fs.FS
	lock   Locker
	now    func() time.Time
}

// Attach wires an open connection, the backend's migration files and its
// optional transition lock.
func (s *Store) Attach(db *sqlx.DB, schema fs.FS, lock Locker) {
	s.db = db
	s.schema = schema
	s.lock = lock
	if s.now == nil {
		s.now = time.Now
	}
}

// DB returns the underlying handle, or nil before Attach.
func (s *Store) DB() *sqlx.DB {
	return s.db
}

// Close releases the connection. A closed store can be loaded again.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *Store) Ping(ctx context.Context) error {
	if s.db == nil {
		return apperrors.Persistence("ping", errors.New("storage not loaded"))
	}
	if err := s.db.PingContext(ctx); err != nil {
		return apperrors.Persistence("ping", err)
	}
	return nil
}

// Migrate applies pending schema migrations.
func (s *Store) Migrate(ctx context.Context, logFn func(string)) (int, error) {
	return migration.NewRunner(s.db, s.schema).ApplyMigrations(ctx, logFn)
}

// ValidateSchema fails when the database was migrated by a newer build.
func (s *Store) ValidateSchema(ctx context.Context) error {
	return migration.NewRunner(s.db, s.schema).ValidateVersion(ctx)
}

// SchemaVersion reports the applied and the latest known schema versions.
func (s *Store) SchemaVersion(ctx context.Context) (current, latest int, err error) {
	runner := migration.NewRunner(s.db, s.schema)
	if current, err = runner.GetCurrentVersion(ctx); err != nil {
		return 0, 0, apperrors.Persistence("schema version", err)
	}
	if latest, err = runner.GetLatestVersion(); err != nil {
		return 0, 0, err
	}
	return current, latest, nil
}

// withTx runs fn in a transaction, committing when fn returns nil.
func (s *Store) withTx(ctx context.Context, op string, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return apperrors.Persistence(op, err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			logger.Warn("Rollback failed", "op", op, "error", rbErr)
		}
		return apperrors.Persistence(op, err)
	}
	if err := tx.Commit(); err != nil {
		return apperrors.Persistence(op, err)
	}
	return nil
}

// mapErr converts sql.ErrNoRows into a NotFoundError and wraps anything else.
func mapErr(op, kind, id string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return apperrors.NotFound(kind, id)
	}
	return apperrors.Persistence(op, err)
}

// expectOne turns a zero-row update or delete into a NotFoundError.
func expectOne(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperrors.NotFound(kind, id)
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// parseTime accepts the stored layout and whatever database/sql renders for
// native timestamp columns.
func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02 15:04:05.999999999-07:00", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("failed to parse timestamp %q", s)
}
