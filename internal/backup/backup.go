// Package backup snapshots the SQLite database into a sibling backups/
// directory and restores it from there. PostgreSQL deployments are expected
// to use their own tooling.
package backup

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/108city/habit-tracker/internal/logger"
)

const (
	DefaultKeep = 14
	DirName     = "backups"
	FilePrefix  = "grind-"
	FileSuffix  = ".db"

	stampLayout = "20060102-150405"
)

type Info struct {
	Path      string    `json:"path"`
	Timestamp time.Time `json:"timestamp"`
	Size      int64     `json:"size"`
}

type Manager struct {
	dbPath string
	dir    string
	keep   int
	now    func() time.Time
}

type Option func(*Manager)

// WithKeep sets how many backups rotation retains. Values below one disable rotation.
func WithKeep(n int) Option {
	return func(m *Manager) { m.keep = n }
}

func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

func NewManager(dbPath string, opts ...Option) *Manager {
	m := &Manager{
		dbPath: dbPath,
		dir:    filepath.Join(filepath.Dir(dbPath), DirName),
		keep:   DefaultKeep,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) Dir() string {
	return m.dir
}

// Create writes a consistent copy of the database and rotates old copies.
func (m *Manager) Create(ctx context.Context) (string, error) {
	path, err := m.create(ctx)
	if err != nil {
		return "", err
	}
	if err := m.rotate(); err != nil {
		logger.Warn("Failed to rotate old backups", "dir", m.dir, "error", err)
	}
	return path, nil
}

func (m *Manager) create(ctx context.Context) (string, error) {
	if _, err := os.Stat(m.dbPath); err != nil {
		return "", fmt.Errorf("database does not exist: %s", m.dbPath)
	}
	if err := os.MkdirAll(m.dir, 0700); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	path, err := m.nextPath()
	if err != nil {
		return "", err
	}

	src, err := sqlx.Open("sqlite", m.dbPath+"?mode=ro")
	if err != nil {
		return "", fmt.Errorf("failed to open database: %w", err)
	}
	defer src.Close()

	if err := verify(ctx, src); err != nil {
		return "", fmt.Errorf("database appears to be corrupted: %w", err)
	}
	if _, err := src.ExecContext(ctx, "VACUUM INTO ?", path); err != nil {
		logger.Warn("VACUUM INTO failed, copying file", "error", err)
		if err := copyFile(m.dbPath, path); err != nil {
			return "", fmt.Errorf("failed to copy database: %w", err)
		}
	}

	logger.Debug("Created backup", "path", path)
	return path, nil
}

func (m *Manager) nextPath() (string, error) {
	stamp := m.now().Format(stampLayout)
	path := filepath.Join(m.dir, FilePrefix+stamp+FileSuffix)
	for n := 1; fileExists(path); n++ {
		if n > 100 {
			return "", fmt.Errorf("failed to generate unique backup filename")
		}
		path = filepath.Join(m.dir, fmt.Sprintf("%s%s-%d%s", FilePrefix, stamp, n, FileSuffix))
	}
	return path, nil
}

// List returns the backups in the backup directory, newest first. Files
// whose names do not carry a timestamp are ignored.
func (m *Manager) List() ([]Info, error) {
	entries, err := os.ReadDir(m.dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	var backups []Info
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ts, ok := parseName(entry.Name())
		if !ok {
			continue
		}
		fi, err := entry.Info()
		if err != nil {
			continue
		}
		backups = append(backups, Info{
			Path:      filepath.Join(m.dir, entry.Name()),
			Timestamp: ts,
			Size:      fi.Size(),
		})
	}

	sort.SliceStable(backups, func(i, j int) bool {
		if backups[i].Timestamp.Equal(backups[j].Timestamp) {
			return backups[i].Path > backups[j].Path
		}
		return backups[i].Timestamp.After(backups[j].Timestamp)
	})
	return backups, nil
}

// parseName extracts the timestamp from grind-YYYYMMDD-HHMMSS[-N].db.
func parseName(name string) (time.Time, bool) {
	if !strings.HasPrefix(name, FilePrefix) || !strings.HasSuffix(name, FileSuffix) {
		return time.Time{}, false
	}
	stamp := strings.TrimSuffix(strings.TrimPrefix(name, FilePrefix), FileSuffix)
	if len(stamp) > len(stampLayout) && stamp[len(stampLayout)] == '-' {
		if _, err := strconv.Atoi(stamp[len(stampLayout)+1:]); err != nil {
			return time.Time{}, false
		}
		stamp = stamp[:len(stampLayout)]
	}
	ts, err := time.ParseInLocation(stampLayout, stamp, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}

func (m *Manager) rotate() error {
	if m.keep < 1 {
		return nil
	}
	backups, err := m.List()
	if err != nil {
		return err
	}
	for i := m.keep; i < len(backups); i++ {
		if err := os.Remove(backups[i].Path); err != nil {
			return fmt.Errorf("failed to remove old backup %s: %w", backups[i].Path, err)
		}
	}
	return nil
}

// Resolve finds a backup given an absolute path, a path relative to the
// working directory, or a bare file name inside the backup directory.
func (m *Manager) Resolve(ref string) (string, error) {
	if filepath.IsAbs(ref) {
		if !fileExists(ref) {
			return "", fmt.Errorf("backup file not found: %s", ref)
		}
		return ref, nil
	}
	if fileExists(ref) {
		return filepath.Abs(ref)
	}
	if candidate := filepath.Join(m.dir, ref); fileExists(candidate) {
		return candidate, nil
	}
	return "", fmt.Errorf("backup file not found: tried current directory and %s", m.dir)
}

// Restore replaces the database with the backup at path. The current
// database is backed up first (without rotation). The caller must close
// any open connection to the database beforehand.
func (m *Manager) Restore(ctx context.Context, path string) (previous string, err error) {
	db, err := sqlx.Open("sqlite", path+"?mode=ro")
	if err != nil {
		return "", fmt.Errorf("failed to open backup: %w", err)
	}
	err = verifyHabitSchema(ctx, db)
	db.Close()
	if err != nil {
		return "", fmt.Errorf("backup file is corrupted or invalid: %w", err)
	}

	if fileExists(m.dbPath) {
		if previous, err = m.create(ctx); err != nil {
			return "", fmt.Errorf("failed to back up current database before restore: %w", err)
		}
	}

	tmp := m.dbPath + ".restore.tmp"
	if err := copyFile(path, tmp); err != nil {
		return previous, fmt.Errorf("failed to copy backup file: %w", err)
	}
	if err := os.Rename(tmp, m.dbPath); err != nil {
		if rmErr := os.Remove(tmp); rmErr != nil {
			logger.Warn("Failed to remove temporary file", "path", tmp, "error", rmErr)
		}
		return previous, fmt.Errorf("failed to restore database: %w", err)
	}
	logger.Info("Restored database", "from", path, "to", m.dbPath)
	return previous, nil
}

func verify(ctx context.Context, db *sqlx.DB) error {
	var n int
	return db.GetContext(ctx, &n, "SELECT COUNT(*) FROM sqlite_master")
}

func verifyHabitSchema(ctx context.Context, db *sqlx.DB) error {
	var n int
	if err := db.GetContext(ctx, &n, "SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'habits'"); err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("no habits table")
	}
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Sync(); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
