package logs

import (
	"context"
	"fmt"

	"github.com/108city/habit-tracker/internal/cli"
	"github.com/108city/habit-tracker/internal/models"
)

type LogCmd struct {
	Set   LogSetCmd   `cmd:"" help:"Set a day's status. Setting the current status again clears it."`
	Cycle LogCycleCmd `cmd:"" help:"Advance a day's status: unlogged, completed, skipped, unlogged."`
}

type LogSetCmd struct {
	Habit  string `arg:"" help:"Habit ID or name."`
	Status string `arg:"" help:"completed|skipped (also done, skip)."`
	Day    string `short:"d" help:"Day to log (YYYY-MM-DD, today, yesterday or -N)." default:"today"`
}

func (c *LogSetCmd) Run(ctx *cli.Context) error {
	status, ok := models.ParseStatus(c.Status)
	if !ok {
		return fmt.Errorf("invalid status %q, use completed or skipped", c.Status)
	}
	day, err := cli.ParseDay(c.Day, ctx.Tracker.Today())
	if err != nil {
		return err
	}

	bg := context.Background()
	h, err := ctx.Tracker.FindHabit(bg, c.Habit)
	if err != nil {
		return err
	}
	entry, err := ctx.Tracker.SetStatus(bg, h.ID, day, status)
	if err != nil {
		return err
	}
	report(ctx, h, day.String(), entry)
	return nil
}

type LogCycleCmd struct {
	Habit string `arg:"" help:"Habit ID or name."`
	Day   string `short:"d" help:"Day to log (YYYY-MM-DD, today, yesterday or -N)." default:"today"`
}

func (c *LogCycleCmd) Run(ctx *cli.Context) error {
	day, err := cli.ParseDay(c.Day, ctx.Tracker.Today())
	if err != nil {
		return err
	}

	bg := context.Background()
	h, err := ctx.Tracker.FindHabit(bg, c.Habit)
	if err != nil {
		return err
	}
	entry, err := ctx.Tracker.AdvanceStatus(bg, h.ID, day)
	if err != nil {
		return err
	}
	report(ctx, h, day.String(), entry)
	return nil
}

func report(ctx *cli.Context, h models.Habit, day string, entry *models.LogEntry) {
	status := models.StatusUnlogged
	if entry != nil {
		status = entry.Status
	}
	ctx.Printf("%s %s on %s: %s\n", cli.StatusSymbol(status), h.Name, day, status)
	if ctx.Tracker.CelebrationActive() {
		ctx.Println("🎉 All habits completed today!")
	}
}
