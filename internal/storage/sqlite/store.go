package sqlite

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/108city/habit-tracker/internal/logger"
	"github.com/108city/habit-tracker/internal/storage"
	"github.com/108city/habit-tracker/internal/storage/sqlstore"
	"github.com/108city/habit-tracker/migrations"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

var _ storage.Provider = (*Store)(nil)

type Store struct {
	sqlstore.Store
	path string
}

func NewStore(path string) *Store {
	return &Store{
		path: path,
	}
}

// Init creates the database file if needed and applies pending migrations.
func (s *Store) Init(ctx context.Context) error {
	if s.path != MemoryPath {
		dir := filepath.Dir(s.path)
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	if err := s.open(ctx); err != nil {
		return err
	}

	if _, err := s.Migrate(ctx, func(msg string) { logger.Info(msg) }); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// Load opens an existing database and verifies its schema version.
func (s *Store) Load(ctx context.Context) error {
	if s.DB() != nil {
		return nil
	}

	if s.path != MemoryPath {
		if _, err := os.Stat(s.path); os.IsNotExist(err) {
			return fmt.Errorf("storage not initialized, run 'grind init' first")
		}
	}

	if err := s.open(ctx); err != nil {
		return err
	}
	if s.path == MemoryPath {
		// nothing to validate against; a fresh memory database needs its schema
		_, err := s.Migrate(ctx, nil)
		return err
	}
	return s.ValidateSchema(ctx)
}

func (s *Store) open(ctx context.Context) error {
	db, err := sqlx.Open("sqlite", s.path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	// One connection serializes writers, and keeps :memory: databases alive.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return fmt.Errorf("failed to set busy timeout: %w", err)
	}

	schema, err := fs.Sub(migrations.FS, "sqlite")
	if err != nil {
		db.Close()
		return fmt.Errorf("failed to access sqlite migrations: %w", err)
	}

	s.Attach(db, schema, nil)
	logger.Debug("Opened SQLite database", "path", s.path)
	return nil
}

func (s *Store) GetConfigPath() string {
	return s.path
}
