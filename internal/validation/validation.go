package validation

import (
	"strings"

	"github.com/108city/habit-tracker/internal/calendar"
	apperrors "github.com/108city/habit-tracker/internal/errors"
	"github.com/108city/habit-tracker/internal/models"
)

const (
	MinWeeklyFrequency = 1
	MaxWeeklyFrequency = 7
	MaxNameLength      = 200
)

// HabitName trims name and rejects empty or oversized values.
func HabitName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", apperrors.Validation("name", "habit name must not be empty")
	}
	if len(name) > MaxNameLength {
		return "", apperrors.Validation("name", "habit name must be at most %d characters", MaxNameLength)
	}
	return name, nil
}

// Frequency checks the recurrence fields. Only the field matching ft is
// inspected; the other is stored as-is.
func Frequency(ft models.FrequencyType, value int, days models.Weekdays) error {
	if !ft.Valid() {
		return apperrors.Validation("frequency", "unknown frequency type %q", ft)
	}
	switch ft {
	case models.FrequencyWeekly:
		if value < MinWeeklyFrequency || value > MaxWeeklyFrequency {
			return apperrors.Validation("frequency", "weekly frequency must be between %d and %d, got %d",
				MinWeeklyFrequency, MaxWeeklyFrequency, value)
		}
	case models.FrequencySpecificDays:
		if len(days) == 0 {
			return apperrors.Validation("frequency", "specific days frequency needs at least one weekday")
		}
		for _, d := range days {
			if d < 0 || d > 6 {
				return apperrors.Validation("frequency", "weekday index %d out of range 0-6", int(d))
			}
		}
	}
	return nil
}

// Habit validates a complete habit definition.
func Habit(h models.Habit) error {
	if _, err := HabitName(h.Name); err != nil {
		return err
	}
	return Frequency(h.FrequencyType, h.FrequencyValue, h.FrequencyDays)
}

// MilestoneTitle trims title and rejects empty values.
func MilestoneTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", apperrors.Validation("title", "milestone title must not be empty")
	}
	if len(title) > MaxNameLength {
		return "", apperrors.Validation("title", "milestone title must be at most %d characters", MaxNameLength)
	}
	return title, nil
}

// DateRange requires both bounds and end >= start.
func DateRange(start, end calendar.Day) error {
	if start.IsZero() {
		return apperrors.Validation("startDate", "start date is required")
	}
	if end.IsZero() {
		return apperrors.Validation("endDate", "end date is required")
	}
	if end.Before(start) {
		return apperrors.Validation("endDate", "end date %s is before start date %s", end, start)
	}
	return nil
}

// Milestone validates a complete milestone.
func Milestone(m models.Milestone) error {
	if _, err := MilestoneTitle(m.Title); err != nil {
		return err
	}
	return DateRange(m.StartDate, m.EndDate)
}

// LoggableStatus rejects statuses that cannot be stored on a log entry.
func LoggableStatus(s models.Status) error {
	if !s.Loggable() {
		return apperrors.Validation("status", "status must be %q or %q, got %q",
			models.StatusCompleted, models.StatusSkipped, string(s))
	}
	return nil
}

// LogDay rejects the zero day.
func LogDay(day calendar.Day) error {
	if day.IsZero() {
		return apperrors.Validation("day", "day is required")
	}
	return nil
}
