package logs

import (
	"context"
	"fmt"

	"github.com/108city/habit-tracker/internal/cli"
)

type TodayCmd struct{}

func (c *TodayCmd) Run(ctx *cli.Context) error {
	snap, err := ctx.Tracker.Snapshot(context.Background())
	if err != nil {
		return err
	}

	ctx.Printf("Today: %s  %s  %s\n\n", snap.Today.Format("Mon Jan 2, 2006"),
		cli.FormatPercent(snap.TodayProgress, 20), snap.Consistency)

	habits := snap.ActiveHabits()
	if len(habits) == 0 {
		ctx.Println("No active habits. Add one with 'grind habit add'.")
		return nil
	}

	table := cli.NewTable("", "HABIT", "FREQUENCY", "STATUS", "SUCCESS")
	for _, h := range habits {
		status := snap.StatusToday(h.Habit.ID)
		table.AddRow(
			cli.StatusSymbol(status),
			h.Habit.Name,
			h.Habit.DescribeFrequency(),
			status.String(),
			fmt.Sprintf("%d%%", snap.SuccessRates[h.Habit.ID]),
		)
	}
	ctx.PrintTable(table)

	ctx.Printf("\n%d/%d completed\n", snap.CompletedToday, snap.ActiveCount)
	if snap.AllCompletedToday {
		ctx.Println("🎉 All habits completed today!")
	}
	return nil
}
