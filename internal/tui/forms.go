package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/108city/habit-tracker/internal/calendar"
	"github.com/108city/habit-tracker/internal/models"
	"github.com/108city/habit-tracker/internal/tracker"
)

func NewHabitForm(fm *HabitFormModel) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Habit Name").
				Value(&fm.Name).
				Validate(required("habit name")),
			huh.NewSelect[string]().
				Title("Frequency").
				Options(
					huh.NewOption("Daily", string(models.FrequencyDaily)),
					huh.NewOption("Times per week", string(models.FrequencyWeekly)),
					huh.NewOption("Specific days", string(models.FrequencySpecificDays)),
				).
				Value(&fm.Frequency),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Times per week").
				Description("Weekly habits only (1-7)").
				Value(&fm.Times),
			huh.NewInput().
				Title("Days").
				Description("Specific-days habits only, e.g. mon,wed,fri").
				Value(&fm.Days),
			huh.NewInput().
				Title("Target date").
				Description("Optional, YYYY-MM-DD").
				Value(&fm.Target).
				Validate(optionalDay),
		),
	).WithTheme(huh.ThemeDracula())
}

func NewMilestoneForm(fm *MilestoneFormModel) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Title").
				Value(&fm.Title).
				Validate(required("title")),
			huh.NewInput().
				Title("Start date").
				Description("YYYY-MM-DD").
				Value(&fm.Start).
				Validate(requiredDay),
			huh.NewInput().
				Title("End date").
				Description("YYYY-MM-DD").
				Value(&fm.End).
				Validate(requiredDay),
		),
	).WithTheme(huh.ThemeDracula())
}

func required(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s cannot be empty", field)
		}
		return nil
	}
}

func requiredDay(s string) error {
	_, err := calendar.Parse(strings.TrimSpace(s))
	return err
}

func optionalDay(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return requiredDay(s)
}

// Input converts the form's raw fields into a create request. Fields that do
// not apply to the chosen frequency are ignored.
func (fm HabitFormModel) Input() (tracker.HabitInput, error) {
	in := tracker.HabitInput{
		Name:          fm.Name,
		FrequencyType: models.FrequencyType(fm.Frequency),
	}
	switch in.FrequencyType {
	case models.FrequencyWeekly:
		n, err := strconv.Atoi(strings.TrimSpace(fm.Times))
		if err != nil {
			return tracker.HabitInput{}, fmt.Errorf("times per week must be a number")
		}
		in.FrequencyValue = n
	case models.FrequencySpecificDays:
		days, err := models.ParseWeekdays(fm.Days)
		if err != nil {
			return tracker.HabitInput{}, err
		}
		in.FrequencyDays = days
	}
	if t := strings.TrimSpace(fm.Target); t != "" {
		day, err := calendar.Parse(t)
		if err != nil {
			return tracker.HabitInput{}, err
		}
		in.TargetDate = day
	}
	return in, nil
}

func (fm MilestoneFormModel) Input() (tracker.MilestoneInput, error) {
	start, err := calendar.Parse(strings.TrimSpace(fm.Start))
	if err != nil {
		return tracker.MilestoneInput{}, err
	}
	end, err := calendar.Parse(strings.TrimSpace(fm.End))
	if err != nil {
		return tracker.MilestoneInput{}, err
	}
	return tracker.MilestoneInput{Title: fm.Title, StartDate: start, EndDate: end}, nil
}
