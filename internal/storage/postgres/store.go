package postgres

import (
	"context"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/108city/habit-tracker/internal/constants"
	"github.com/108city/habit-tracker/internal/logger"
	"github.com/108city/habit-tracker/internal/storage"
	"github.com/108city/habit-tracker/internal/storage/sqlstore"
	"github.com/108city/habit-tracker/migrations"
)

var _ storage.Provider = (*Store)(nil)

type Store struct {
	sqlstore.Store
	connStr string
}

func New(connStr string) *Store {
	s := &Store{connStr: connStr}
	pinned, err := withSearchPath(connStr)
	if err != nil {
		logger.Warn("Failed to parse Postgres connection string", "error", err)
	} else {
		s.connStr = pinned
	}
	return s
}

// Init creates the application schema and applies pending migrations.
func (s *Store) Init(ctx context.Context) error {
	if err := s.open(ctx); err != nil {
		return err
	}

	if _, err := s.DB().ExecContext(ctx, "CREATE SCHEMA IF NOT EXISTS "+constants.AppName); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	if _, err := s.Migrate(ctx, func(msg string) { logger.Info(msg) }); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// Load connects and verifies the schema version.
func (s *Store) Load(ctx context.Context) error {
	if s.DB() != nil {
		return nil
	}
	if err := s.open(ctx); err != nil {
		return err
	}
	return s.ValidateSchema(ctx)
}

func (s *Store) open(ctx context.Context) error {
	db, err := sqlx.Open("postgres", s.connStr)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		if strings.Contains(err.Error(), "SSL is not enabled on the server") && !hasParam(s.connStr, "sslmode") {
			return fmt.Errorf("failed to connect to database: %w (hint: try adding ?sslmode=disable to your connection string)", err)
		}
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	schema, err := fs.Sub(migrations.FS, "postgres")
	if err != nil {
		db.Close()
		return fmt.Errorf("failed to access postgres migrations: %w", err)
	}

	s.Attach(db, schema, advisoryLock)
	logger.Debug("Connected to PostgreSQL")
	return nil
}

// advisoryLock holds a transaction-scoped lock on key until commit or rollback.
func advisoryLock(ctx context.Context, tx *sqlx.Tx, key string) error {
	_, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, key)
	return err
}

func (s *Store) GetConfigPath() string {
	// never expose the connection string
	return "postgresql"
}
