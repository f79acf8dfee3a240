package migration

import (
	"context"
	"errors"
	"io/fs"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/108city/habit-tracker/migrations"
)

func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := sqlx.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	// :memory: databases are per connection
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

func mapFS(files map[string]string) fstest.MapFS {
	m := fstest.MapFS{}
	for name, content := range files {
		m[name] = &fstest.MapFile{Data: []byte(content)}
	}
	return m
}

func tableExists(t *testing.T, db *sqlx.DB, name string) bool {
	t.Helper()
	var count int
	if err := db.Get(&count, "SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name = ?", name); err != nil {
		t.Fatalf("query failed: %v", err)
	}
	return count == 1
}

func TestGetCurrentVersion(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	runner := NewRunner(db, mapFS(map[string]string{
		"001_test.sql": "CREATE TABLE test (id INTEGER);",
	}))

	version, err := runner.GetCurrentVersion(ctx)
	if err != nil {
		t.Fatalf("GetCurrentVersion failed: %v", err)
	}
	if version != 0 {
		t.Errorf("expected version 0, got %d", version)
	}

	if err := runner.SetVersion(ctx, 5); err != nil {
		t.Fatalf("SetVersion failed: %v", err)
	}

	version, err = runner.GetCurrentVersion(ctx)
	if err != nil {
		t.Fatalf("GetCurrentVersion failed: %v", err)
	}
	if version != 5 {
		t.Errorf("expected version 5, got %d", version)
	}
}

func TestReadMigrationFiles(t *testing.T) {
	runner := NewRunner(setupTestDB(t), mapFS(map[string]string{
		"001_init.sql":    "CREATE TABLE test1 (id INTEGER);",
		"002_update.sql":  "ALTER TABLE test1 ADD COLUMN name TEXT;",
		"003_another.sql": "CREATE TABLE test2 (id INTEGER);",
		"README.md":       "not a migration",
	}))

	migrations, err := runner.ReadMigrationFiles()
	if err != nil {
		t.Fatalf("ReadMigrationFiles failed: %v", err)
	}

	want := []struct {
		version int
		name    string
	}{
		{1, "init"},
		{2, "update"},
		{3, "another"},
	}
	if len(migrations) != len(want) {
		t.Fatalf("expected %d migrations, got %d", len(want), len(migrations))
	}
	for i, w := range want {
		if migrations[i].Version != w.version || migrations[i].Name != w.name {
			t.Errorf("migration %d: expected (%d, %s), got (%d, %s)", i, w.version, w.name, migrations[i].Version, migrations[i].Name)
		}
	}
}

func TestApplyMigrations(t *testing.T) {
	ctx := context.Background()

	t.Run("from scratch", func(t *testing.T) {
		db := setupTestDB(t)
		runner := NewRunner(db, mapFS(map[string]string{
			"001_init.sql":  "CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT);",
			"002_posts.sql": "CREATE TABLE posts (id INTEGER PRIMARY KEY, user_id INTEGER, content TEXT);",
		}))

		var logged []string
		count, err := runner.ApplyMigrations(ctx, func(msg string) { logged = append(logged, msg) })
		if err != nil {
			t.Fatalf("ApplyMigrations failed: %v", err)
		}
		if count != 2 {
			t.Errorf("expected 2 migrations applied, got %d", count)
		}
		if len(logged) == 0 {
			t.Error("expected progress messages")
		}

		version, err := runner.GetCurrentVersion(ctx)
		if err != nil {
			t.Fatalf("GetCurrentVersion failed: %v", err)
		}
		if version != 2 {
			t.Errorf("expected version 2, got %d", version)
		}
		if !tableExists(t, db, "users") || !tableExists(t, db, "posts") {
			t.Error("tables were not created")
		}
	})

	t.Run("incremental", func(t *testing.T) {
		db := setupTestDB(t)
		files := mapFS(map[string]string{
			"001_init.sql": "CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT);",
		})
		runner := NewRunner(db, files)

		if count, err := runner.ApplyMigrations(ctx, nil); err != nil || count != 1 {
			t.Fatalf("first ApplyMigrations = (%d, %v), want (1, nil)", count, err)
		}

		files["002_posts.sql"] = &fstest.MapFile{Data: []byte("CREATE TABLE posts (id INTEGER PRIMARY KEY);")}

		if count, err := runner.ApplyMigrations(ctx, nil); err != nil || count != 1 {
			t.Fatalf("second ApplyMigrations = (%d, %v), want (1, nil)", count, err)
		}
		if version, _ := runner.GetCurrentVersion(ctx); version != 2 {
			t.Errorf("expected version 2, got %d", version)
		}
	})

	t.Run("no-op when up to date", func(t *testing.T) {
		runner := NewRunner(setupTestDB(t), mapFS(map[string]string{
			"001_init.sql": "CREATE TABLE users (id INTEGER PRIMARY KEY);",
		}))
		if _, err := runner.ApplyMigrations(ctx, nil); err != nil {
			t.Fatalf("ApplyMigrations (1st) failed: %v", err)
		}
		count, err := runner.ApplyMigrations(ctx, nil)
		if err != nil {
			t.Fatalf("ApplyMigrations (2nd) failed: %v", err)
		}
		if count != 0 {
			t.Errorf("expected 0 migrations applied on second run, got %d", count)
		}
	})
}

func TestMigrationRollbackOnError(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	runner := NewRunner(db, mapFS(map[string]string{
		"001_init.sql": `
			CREATE TABLE users (id INTEGER PRIMARY KEY);
			THIS IS INVALID SQL;
		`,
	}))

	if _, err := runner.ApplyMigrations(ctx, nil); err == nil {
		t.Fatal("ApplyMigrations should have failed with invalid SQL")
	}

	version, err := runner.GetCurrentVersion(ctx)
	if err != nil {
		t.Fatalf("GetCurrentVersion failed: %v", err)
	}
	if version != 0 {
		t.Errorf("expected version 0 after failed migration, got %d", version)
	}
	if tableExists(t, db, "users") {
		t.Error("table should not exist after failed migration")
	}
}

func TestValidateVersionNewerDatabase(t *testing.T) {
	ctx := context.Background()
	runner := NewRunner(setupTestDB(t), mapFS(map[string]string{
		"001_init.sql": "CREATE TABLE users (id INTEGER PRIMARY KEY);",
	}))

	if err := runner.SetVersion(ctx, 10); err != nil {
		t.Fatalf("SetVersion failed: %v", err)
	}

	if err := runner.ValidateVersion(ctx); !errors.Is(err, ErrSchemaTooNew) {
		t.Fatalf("ValidateVersion() = %v, want ErrSchemaTooNew", err)
	}
	if _, err := runner.ApplyMigrations(ctx, nil); !errors.Is(err, ErrSchemaTooNew) {
		t.Fatalf("ApplyMigrations() = %v, want ErrSchemaTooNew", err)
	}
}

func TestGetLatestVersion(t *testing.T) {
	runner := NewRunner(setupTestDB(t), mapFS(map[string]string{
		"001_init.sql":   "CREATE TABLE users (id INTEGER);",
		"003_posts.sql":  "CREATE TABLE posts (id INTEGER);",
		"002_update.sql": "ALTER TABLE users ADD COLUMN name TEXT;",
	}))

	latest, err := runner.GetLatestVersion()
	if err != nil {
		t.Fatalf("GetLatestVersion failed: %v", err)
	}
	if latest != 3 {
		t.Errorf("expected latest version 3, got %d", latest)
	}
}

func TestMigrationFilenameValidation(t *testing.T) {
	tests := []struct {
		name    string
		files   map[string]string
		wantErr string
	}{
		{
			name:    "missing underscore",
			files:   map[string]string{"001init.sql": "SELECT 1;"},
			wantErr: "invalid migration filename format",
		},
		{
			name:    "zero version",
			files:   map[string]string{"000_init.sql": "SELECT 1;"},
			wantErr: "version must be at least 1",
		},
		{
			name:    "non-numeric version",
			files:   map[string]string{"abc_init.sql": "SELECT 1;"},
			wantErr: "invalid version number",
		},
		{
			name: "duplicate version",
			files: map[string]string{
				"001_init.sql":  "SELECT 1;",
				"001_other.sql": "SELECT 2;",
			},
			wantErr: "duplicate migration version",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := NewRunner(setupTestDB(t), mapFS(tt.files))
			_, err := runner.ReadMigrationFiles()
			if err == nil {
				t.Fatal("ReadMigrationFiles should have failed")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got: %v", tt.wantErr, err)
			}
		})
	}
}

func TestEmbeddedSQLiteMigrations(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)

	sub, err := fs.Sub(migrations.FS, "sqlite")
	if err != nil {
		t.Fatalf("fs.Sub failed: %v", err)
	}

	runner := NewRunner(db, sub)
	if _, err := runner.ApplyMigrations(ctx, nil); err != nil {
		t.Fatalf("ApplyMigrations failed: %v", err)
	}

	for _, table := range []string{"habits", "habit_logs", "milestones"} {
		if !tableExists(t, db, table) {
			t.Errorf("table %s was not created", table)
		}
	}

	// both backends must ship the same set of versions
	pg, err := fs.Sub(migrations.FS, "postgres")
	if err != nil {
		t.Fatalf("fs.Sub failed: %v", err)
	}
	sqliteLatest, _ := runner.GetLatestVersion()
	pgLatest, err := NewRunner(db, pg).GetLatestVersion()
	if err != nil {
		t.Fatalf("GetLatestVersion(postgres) failed: %v", err)
	}
	if sqliteLatest != pgLatest {
		t.Errorf("sqlite migrations at %d, postgres at %d", sqliteLatest, pgLatest)
	}
}
