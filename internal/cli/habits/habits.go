package habits

import (
	"context"
	"fmt"

	"github.com/108city/habit-tracker/internal/cli"
	"github.com/108city/habit-tracker/internal/models"
	"github.com/108city/habit-tracker/internal/tracker"
)

type HabitCmd struct {
	Add        HabitAddCmd        `cmd:"" help:"Create a new habit."`
	Edit       HabitEditCmd       `cmd:"" help:"Edit a habit."`
	List       HabitListCmd       `cmd:"" help:"List habits." default:"1"`
	Archive    HabitArchiveCmd    `cmd:"" help:"Archive a habit (keeps its history)."`
	Reactivate HabitReactivateCmd `cmd:"" help:"Reactivate an archived habit."`
	Delete     HabitDeleteCmd     `cmd:"" help:"Delete a habit and all of its logs."`
}

type HabitAddCmd struct {
	Name      string `arg:"" help:"Habit name."`
	Frequency string `short:"f" help:"Frequency type (daily|weekly|specific_days)." default:"daily" enum:"daily,weekly,specific_days"`
	Times     int    `short:"n" help:"Times per week for weekly habits." default:"0"`
	Days      string `short:"w" help:"Comma-separated weekdays for specific_days habits (e.g. mon,wed,fri)."`
	Target    string `short:"t" help:"Optional target date (YYYY-MM-DD)."`
}

func (c *HabitAddCmd) Run(ctx *cli.Context) error {
	days, err := models.ParseWeekdays(c.Days)
	if err != nil {
		return err
	}
	target, err := cli.ParseOptionalDay(c.Target)
	if err != nil {
		return err
	}

	h, err := ctx.Tracker.CreateHabit(context.Background(), tracker.HabitInput{
		Name:           c.Name,
		FrequencyType:  models.FrequencyType(c.Frequency),
		FrequencyValue: c.Times,
		FrequencyDays:  days,
		TargetDate:     target,
	})
	if err != nil {
		return err
	}

	ctx.Printf("Added habit: %s (%s, ID: %s)\n", h.Name, h.DescribeFrequency(), h.ID)
	return nil
}

type HabitEditCmd struct {
	Habit     string  `arg:"" help:"Habit ID or name."`
	Name      *string `help:"New name."`
	Frequency *string `short:"f" help:"Frequency type (daily|weekly|specific_days)."`
	Times     *int    `short:"n" help:"Times per week for weekly habits."`
	Days      *string `short:"w" help:"Comma-separated weekdays for specific_days habits."`
	Target    *string `short:"t" help:"Target date (YYYY-MM-DD), empty to clear."`
}

func (c *HabitEditCmd) patch() (tracker.HabitPatch, error) {
	patch := tracker.HabitPatch{Name: c.Name, FrequencyValue: c.Times}
	if c.Frequency != nil {
		ft := models.FrequencyType(*c.Frequency)
		patch.FrequencyType = &ft
	}
	if c.Days != nil {
		days, err := models.ParseWeekdays(*c.Days)
		if err != nil {
			return patch, err
		}
		patch.FrequencyDays = &days
	}
	if c.Target != nil {
		target, err := cli.ParseOptionalDay(*c.Target)
		if err != nil {
			return patch, err
		}
		patch.TargetDate = &target
	}
	return patch, nil
}

func (c *HabitEditCmd) Run(ctx *cli.Context) error {
	patch, err := c.patch()
	if err != nil {
		return err
	}
	if patch.Empty() {
		return fmt.Errorf("nothing to change, pass at least one of --name, --frequency, --times, --days, --target")
	}

	bg := context.Background()
	h, err := ctx.Tracker.FindHabit(bg, c.Habit)
	if err != nil {
		return err
	}
	updated, err := ctx.Tracker.UpdateHabit(bg, h.ID, patch)
	if err != nil {
		return err
	}

	ctx.Printf("Updated habit: %s (%s)\n", updated.Name, updated.DescribeFrequency())
	return nil
}

type HabitListCmd struct {
	Archived bool `help:"Show archived habits instead of active ones."`
	All      bool `help:"Show active and archived habits."`
}

func (c *HabitListCmd) Run(ctx *cli.Context) error {
	snap, err := ctx.Tracker.Snapshot(context.Background())
	if err != nil {
		return err
	}

	var habits []models.HabitWithLogs
	switch {
	case c.All:
		habits = append(snap.ActiveHabits(), snap.ArchivedHabits()...)
	case c.Archived:
		habits = snap.ArchivedHabits()
	default:
		habits = snap.ActiveHabits()
	}

	if len(habits) == 0 {
		ctx.Println("No habits found")
		return nil
	}

	table := cli.NewTable("NAME", "FREQUENCY", "TODAY", "SUCCESS", "CREATED", "TARGET", "STATE", "ID")
	for _, h := range habits {
		state := "active"
		if !h.Habit.IsActive {
			state = "archived"
		}
		table.AddRow(
			h.Habit.Name,
			h.Habit.DescribeFrequency(),
			snap.StatusToday(h.Habit.ID).String(),
			fmt.Sprintf("%d%%", snap.SuccessRates[h.Habit.ID]),
			h.Habit.CreatedDay(ctx.Tracker.Location()).String(),
			cli.FormatDay(h.Habit.TargetDate),
			state,
			h.Habit.ID,
		)
	}
	ctx.PrintTable(table)
	return nil
}

type HabitArchiveCmd struct {
	Habit string `arg:"" help:"Habit ID or name."`
}

func (c *HabitArchiveCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	h, err := ctx.Tracker.FindHabit(bg, c.Habit)
	if err != nil {
		return err
	}
	if !h.IsActive {
		ctx.Printf("Habit already archived: %s\n", h.Name)
		return nil
	}
	if _, err := ctx.Tracker.ArchiveHabit(bg, h.ID); err != nil {
		return err
	}
	ctx.Printf("Archived habit: %s\n", h.Name)
	return nil
}

type HabitReactivateCmd struct {
	Habit string `arg:"" help:"Habit ID or name."`
}

func (c *HabitReactivateCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	h, err := ctx.Tracker.FindHabit(bg, c.Habit)
	if err != nil {
		return err
	}
	if h.IsActive {
		ctx.Printf("Habit already active: %s\n", h.Name)
		return nil
	}
	if _, err := ctx.Tracker.ReactivateHabit(bg, h.ID); err != nil {
		return err
	}
	ctx.Printf("Reactivated habit: %s\n", h.Name)
	return nil
}

type HabitDeleteCmd struct {
	Habit string `arg:"" help:"Habit ID or name."`
	Yes   bool   `short:"y" help:"Skip the confirmation prompt."`
}

func (c *HabitDeleteCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	h, err := ctx.Tracker.FindHabit(bg, c.Habit)
	if err != nil {
		return err
	}
	if !c.Yes {
		ok, err := cli.Confirm(ctx, fmt.Sprintf("Delete habit %q and all of its logs?", h.Name))
		if err != nil {
			return err
		}
		if !ok {
			ctx.Println("Delete cancelled.")
			return nil
		}
	}
	if err := ctx.Tracker.DeleteHabit(bg, h.ID); err != nil {
		return err
	}
	ctx.Printf("Deleted habit: %s\n", h.Name)
	return nil
}
