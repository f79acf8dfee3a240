package logs

import (
	"context"
	"fmt"

	"github.com/108city/habit-tracker/internal/cli"
	"github.com/108city/habit-tracker/internal/constants"
)

type HistoryCmd struct {
	Days int `short:"n" help:"Number of days to show (defaults to history.days from config)."`
}

func (c *HistoryCmd) Validate() error {
	if c.Days < 0 || c.Days > constants.MaxHistoryDays {
		return fmt.Errorf("days must be between 1 and %d", constants.MaxHistoryDays)
	}
	return nil
}

func (c *HistoryCmd) Run(ctx *cli.Context) error {
	days := c.Days
	if days == 0 {
		days = ctx.Config.History.Days
	}

	snap, err := ctx.Tracker.Snapshot(context.Background())
	if err != nil {
		return err
	}
	habits := snap.ActiveHabits()
	if len(habits) == 0 {
		ctx.Println("No active habits")
		return nil
	}

	start := snap.Today.AddDays(-(days - 1))
	header := []interface{}{"HABIT"}
	for d := start; !d.After(snap.Today); d = d.AddDays(1) {
		header = append(header, d.Format("02"))
	}
	header = append(header, "SUCCESS")

	table := cli.NewTable(header...)
	for _, h := range habits {
		row := []interface{}{h.Habit.Name}
		for d := start; !d.After(snap.Today); d = d.AddDays(1) {
			row = append(row, cli.StatusSymbol(h.StatusOn(d)))
		}
		row = append(row, fmt.Sprintf("%d%%", snap.SuccessRates[h.Habit.ID]))
		table.AddRow(row...)
	}

	ctx.Printf("History %s to %s (✓ completed, – skipped, · unlogged)\n\n", start, snap.Today)
	ctx.PrintTable(table)
	return nil
}
