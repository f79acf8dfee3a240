package system

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/108city/habit-tracker/internal/backup"
	"github.com/108city/habit-tracker/internal/calendar"
	"github.com/108city/habit-tracker/internal/cli"
	"github.com/108city/habit-tracker/internal/models"
	"github.com/108city/habit-tracker/internal/validation"
)

// dbHandle is implemented by the SQL backends.
type dbHandle interface {
	DB() *sqlx.DB
}

type check struct {
	name     string
	needsDB  bool
	warnOnly bool
	run      func(context.Context, *cli.Context) error
}

var checks = []check{
	{name: "Configuration", run: checkConfig},
	{name: "Clock/timezone", run: checkClockTimezone},
	{name: "Schema version", needsDB: true, run: checkSchemaVersion},
	{name: "Migrations complete", needsDB: true, run: checkMigrationsComplete},
	{name: "Orphaned logs", needsDB: true, run: checkOrphanedLogs},
	{name: "Habit definitions", needsDB: true, run: checkHabitDefinitions},
	{name: "Milestone ranges", needsDB: true, run: checkMilestoneRanges},
	{name: "Backups present", warnOnly: true, run: checkBackupsPresent},
}

type DoctorCmd struct{}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	ctx.Println("Running diagnostics...")
	ctx.Println()

	hasError := false
	dbReachable := true
	if err := checkDBReachable(bg, ctx); err != nil {
		ctx.Printf("❌ Database reachable: FAIL\n   Error: %v\n", err)
		hasError = true
		dbReachable = false
	} else {
		ctx.Printf("✓ Database reachable: OK\n")
	}

	for _, c := range checks {
		if c.needsDB && !dbReachable {
			ctx.Printf("⊘ %s: SKIPPED (database not reachable)\n", c.name)
			continue
		}
		err := c.run(bg, ctx)
		switch {
		case err == nil:
			ctx.Printf("✓ %s: OK\n", c.name)
		case c.warnOnly:
			ctx.Printf("⚠ %s: WARNING\n   %v\n", c.name, err)
		default:
			ctx.Printf("❌ %s: FAIL\n   Error: %v\n", c.name, err)
			hasError = true
		}
	}

	ctx.Println()
	if hasError {
		ctx.Println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}
	ctx.Println("All diagnostics passed!")
	return nil
}

func checkDBReachable(bg context.Context, ctx *cli.Context) error {
	if err := ctx.Store.Load(bg); err != nil {
		return fmt.Errorf("failed to load database: %w", err)
	}
	return ctx.Store.Ping(bg)
}

func checkConfig(_ context.Context, ctx *cli.Context) error {
	if ctx.Config.File != "" {
		if _, err := os.Stat(ctx.Config.File); err != nil {
			return fmt.Errorf("config file %s: %w", ctx.Config.File, err)
		}
	}
	return ctx.Config.Validate()
}

func checkClockTimezone(_ context.Context, ctx *cli.Context) error {
	now := ctx.Tracker.Now()
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}
	if _, err := calendar.LoadLocation(ctx.Config.Timezone); err != nil {
		return err
	}
	return nil
}

func checkSchemaVersion(bg context.Context, ctx *cli.Context) error {
	current, latest, err := ctx.Store.SchemaVersion(bg)
	if err != nil {
		return err
	}
	if current > latest {
		return fmt.Errorf("database schema version (%d) is newer than supported version (%d)", current, latest)
	}
	return nil
}

func checkMigrationsComplete(bg context.Context, ctx *cli.Context) error {
	current, latest, err := ctx.Store.SchemaVersion(bg)
	if err != nil {
		return err
	}
	if current < latest {
		return fmt.Errorf("migrations incomplete: current version %d, latest version %d (run 'grind migrate')", current, latest)
	}
	return nil
}

func checkOrphanedLogs(bg context.Context, ctx *cli.Context) error {
	h, ok := ctx.Store.(dbHandle)
	if !ok || h.DB() == nil {
		return nil
	}
	var orphaned int
	err := h.DB().GetContext(bg, &orphaned, `
		SELECT COUNT(*)
		FROM habit_logs l
		LEFT JOIN habits h ON l.habit_id = h.id
		WHERE h.id IS NULL`)
	if err != nil {
		return fmt.Errorf("failed to check orphaned logs: %w", err)
	}
	if orphaned > 0 {
		return fmt.Errorf("found %d logs referencing missing habits", orphaned)
	}
	return nil
}

func checkHabitDefinitions(bg context.Context, ctx *cli.Context) error {
	habits, err := ctx.Store.ListHabits(bg, true)
	if err != nil {
		return err
	}
	for _, h := range habits {
		if err := validation.Habit(h); err != nil {
			return fmt.Errorf("habit %s: %w", h.ID, err)
		}
		if h.CreatedAt.IsZero() {
			return fmt.Errorf("habit %s has no creation time", h.ID)
		}
	}
	return nil
}

func checkMilestoneRanges(bg context.Context, ctx *cli.Context) error {
	milestones, err := ctx.Store.ListMilestones(bg)
	if err != nil {
		return err
	}
	var bad []models.Milestone
	for _, m := range milestones {
		if validation.Milestone(m) != nil {
			bad = append(bad, m)
		}
	}
	if len(bad) > 0 {
		return fmt.Errorf("found %d milestones with invalid title or date range (first: %s)", len(bad), bad[0].ID)
	}
	return nil
}

func checkBackupsPresent(_ context.Context, ctx *cli.Context) error {
	dbPath, err := cli.SQLitePath(ctx.Config)
	if err != nil {
		return fmt.Errorf("skipped: %v", err)
	}
	backups, err := backup.NewManager(dbPath).List()
	if err != nil {
		return err
	}
	if len(backups) == 0 {
		return fmt.Errorf("no backups found, consider creating one with 'grind backup create'")
	}
	return nil
}
