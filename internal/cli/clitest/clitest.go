// Package clitest builds command contexts backed by an in-memory store.
package clitest

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/108city/habit-tracker/internal/cli"
	"github.com/108city/habit-tracker/internal/config"
	"github.com/108city/habit-tracker/internal/constants"
	"github.com/108city/habit-tracker/internal/storage/sqlite"
	"github.com/108city/habit-tracker/internal/tracker"
)

// Now is the fixed instant every test context runs at.
var Now = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

// NewContext returns a context over a fresh database and the buffer that
// collects command output. A non-empty dbPath selects a file database
// instead of :memory:.
func NewContext(t *testing.T, dbPath string) (*cli.Context, *bytes.Buffer) {
	t.Helper()
	if dbPath == "" {
		dbPath = sqlite.MemoryPath
	}

	store := sqlite.NewStore(dbPath)
	if err := store.Init(context.Background()); err != nil {
		t.Fatalf("failed to initialize store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	cfgFile := filepath.Join(t.TempDir(), "config.yaml")
	if err := config.WriteDefault(cfgFile, false); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg := &config.Config{
		Database: dbPath,
		Timezone: "UTC",
		HTTP:     config.HTTPConfig{Addr: constants.DefaultHTTPAddr},
		Celebration: config.CelebrationConfig{
			Seconds: constants.DefaultCelebrationSeconds,
		},
		History: config.HistoryConfig{Days: constants.DefaultHistoryDays},
		File:    cfgFile,
	}

	out := &bytes.Buffer{}
	ctx := &cli.Context{
		Config: cfg,
		Store:  store,
		Tracker: tracker.New(store,
			tracker.WithClock(func() time.Time { return Now }),
			tracker.WithLocation(time.UTC),
			tracker.WithCelebrationWindow(cfg.CelebrationWindow()),
		),
		Out: out,
	}
	return ctx, out
}
