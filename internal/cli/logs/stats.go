package logs

import (
	"context"
	"fmt"

	"github.com/108city/habit-tracker/internal/cli"
)

type StatsCmd struct{}

func (c *StatsCmd) Run(ctx *cli.Context) error {
	snap, err := ctx.Tracker.Snapshot(context.Background())
	if err != nil {
		return err
	}

	scope := "since each habit was created"
	if snap.ActiveMilestone != nil {
		scope = fmt.Sprintf("since %s (milestone %q)", snap.ActiveMilestone.StartDate, snap.ActiveMilestone.Title)
	}
	ctx.Printf("Success rates %s\n\n", scope)

	if len(snap.Habits) == 0 {
		ctx.Println("No habits found")
	} else {
		table := cli.NewTable("HABIT", "STATE", "SUCCESS")
		for _, h := range snap.Habits {
			state := "active"
			if !h.IsActive {
				state = "archived"
			}
			table.AddRow(h.Name, state, cli.FormatPercent(snap.SuccessRates[h.ID], 20))
		}
		ctx.PrintTable(table)
	}

	if len(snap.Milestones) == 0 {
		return nil
	}

	ctx.Println()
	ctx.Println("Milestones")
	table := cli.NewTable("TITLE", "PHASE", "DAYS", "TIME", "SUCCESS", "COMPLETED")
	for _, m := range snap.Milestones {
		agg := snap.MilestoneAggregates[m.ID]
		table.AddRow(
			m.Title,
			string(agg.Phase),
			fmt.Sprintf("%d/%d", agg.DaysPassed, agg.TotalDays),
			cli.FormatPercent(agg.TimeProgress, 10),
			cli.FormatPercent(agg.SuccessRate, 10),
			fmt.Sprintf("%d/%d", agg.CompletedSum, agg.PossibleSum),
		)
	}
	ctx.PrintTable(table)
	return nil
}
