package milestones

import (
	"context"
	"fmt"

	"github.com/108city/habit-tracker/internal/calendar"
	"github.com/108city/habit-tracker/internal/cli"
	"github.com/108city/habit-tracker/internal/tracker"
)

type MilestoneCmd struct {
	Add    MilestoneAddCmd    `cmd:"" help:"Create a milestone."`
	Edit   MilestoneEditCmd   `cmd:"" help:"Edit a milestone."`
	List   MilestoneListCmd   `cmd:"" help:"List milestones with progress." default:"1"`
	Delete MilestoneDeleteCmd `cmd:"" help:"Delete a milestone."`
}

type MilestoneAddCmd struct {
	Title string `arg:"" help:"Milestone title."`
	Start string `short:"s" help:"Start date (YYYY-MM-DD, today, yesterday or -N)." default:"today"`
	End   string `short:"e" help:"End date (YYYY-MM-DD)." required:""`
}

func (c *MilestoneAddCmd) Run(ctx *cli.Context) error {
	today := ctx.Tracker.Today()
	start, err := cli.ParseDay(c.Start, today)
	if err != nil {
		return err
	}
	end, err := cli.ParseDay(c.End, today)
	if err != nil {
		return err
	}

	m, err := ctx.Tracker.CreateMilestone(context.Background(), tracker.MilestoneInput{
		Title:     c.Title,
		StartDate: start,
		EndDate:   end,
	})
	if err != nil {
		return err
	}
	ctx.Printf("Added milestone: %s (%s to %s, ID: %s)\n", m.Title, m.StartDate, m.EndDate, m.ID)
	return nil
}

type MilestoneEditCmd struct {
	Milestone string  `arg:"" help:"Milestone ID or title."`
	Title     *string `help:"New title."`
	Start     *string `short:"s" help:"New start date."`
	End       *string `short:"e" help:"New end date."`
}

func (c *MilestoneEditCmd) Run(ctx *cli.Context) error {
	today := ctx.Tracker.Today()
	patch := tracker.MilestonePatch{Title: c.Title}
	for _, f := range []struct {
		ref *string
		dst **calendar.Day
	}{{c.Start, &patch.StartDate}, {c.End, &patch.EndDate}} {
		if f.ref == nil {
			continue
		}
		day, err := cli.ParseDay(*f.ref, today)
		if err != nil {
			return err
		}
		*f.dst = &day
	}
	if patch.Title == nil && patch.StartDate == nil && patch.EndDate == nil {
		return fmt.Errorf("nothing to change, pass at least one of --title, --start, --end")
	}

	bg := context.Background()
	m, err := ctx.Tracker.FindMilestone(bg, c.Milestone)
	if err != nil {
		return err
	}
	updated, err := ctx.Tracker.UpdateMilestone(bg, m.ID, patch)
	if err != nil {
		return err
	}
	ctx.Printf("Updated milestone: %s (%s to %s)\n", updated.Title, updated.StartDate, updated.EndDate)
	return nil
}

type MilestoneListCmd struct{}

func (c *MilestoneListCmd) Run(ctx *cli.Context) error {
	snap, err := ctx.Tracker.Snapshot(context.Background())
	if err != nil {
		return err
	}
	if len(snap.Milestones) == 0 {
		ctx.Println("No milestones found")
		return nil
	}

	table := cli.NewTable("", "TITLE", "PHASE", "START", "END", "TIME", "SUCCESS", "ID")
	for _, m := range snap.Milestones {
		agg := snap.MilestoneAggregates[m.ID]
		marker := ""
		if snap.ActiveMilestone != nil && snap.ActiveMilestone.ID == m.ID {
			marker = "*"
		}
		table.AddRow(
			marker,
			m.Title,
			string(agg.Phase),
			m.StartDate.String(),
			m.EndDate.String(),
			cli.FormatPercent(agg.TimeProgress, 10),
			fmt.Sprintf("%d%%", agg.SuccessRate),
			m.ID,
		)
	}
	ctx.PrintTable(table)
	if snap.ActiveMilestone != nil {
		ctx.Println("\n* scopes success rates")
	}
	return nil
}

type MilestoneDeleteCmd struct {
	Milestone string `arg:"" help:"Milestone ID or title."`
}

func (c *MilestoneDeleteCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	m, err := ctx.Tracker.FindMilestone(bg, c.Milestone)
	if err != nil {
		return err
	}
	if err := ctx.Tracker.DeleteMilestone(bg, m.ID); err != nil {
		return err
	}
	ctx.Printf("Deleted milestone: %s\n", m.Title)
	return nil
}
