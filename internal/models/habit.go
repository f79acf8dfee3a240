package models

import (
	"database/sql/driver"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/108city/habit-tracker/internal/calendar"
)

type FrequencyType string

const (
	FrequencyDaily        FrequencyType = "daily"
	FrequencyWeekly       FrequencyType = "weekly"
	FrequencySpecificDays FrequencyType = "specific_days"
)

// Valid reports whether f is a known frequency type.
func (f FrequencyType) Valid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencySpecificDays:
		return true
	}
	return false
}

// Weekdays is a set of weekday indices (0=Sunday .. 6=Saturday).
// It is stored as a comma-separated list, e.g. "1,3,5".
type Weekdays []time.Weekday

// Normalize returns the set sorted and de-duplicated.
func (w Weekdays) Normalize() Weekdays {
	if len(w) == 0 {
		return nil
	}
	seen := make(map[time.Weekday]bool, len(w))
	out := make(Weekdays, 0, len(w))
	for _, d := range w {
		if seen[d] {
			continue
		}
		seen[d] = true
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (w Weekdays) Contains(d time.Weekday) bool {
	for _, x := range w {
		if x == d {
			return true
		}
	}
	return false
}

func (w Weekdays) String() string {
	parts := make([]string, len(w))
	for i, d := range w {
		parts[i] = strconv.Itoa(int(d))
	}
	return strings.Join(parts, ",")
}

// Value implements driver.Valuer.
func (w Weekdays) Value() (driver.Value, error) {
	return w.Normalize().String(), nil
}

// Scan implements sql.Scanner.
func (w *Weekdays) Scan(src any) error {
	var s string
	switch v := src.(type) {
	case nil:
		*w = nil
		return nil
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		return fmt.Errorf("models: cannot scan %T into Weekdays", src)
	}
	parsed, err := ParseWeekdays(s)
	if err != nil {
		return err
	}
	*w = parsed
	return nil
}

var weekdayNames = map[string]time.Weekday{
	"sun": time.Sunday, "sunday": time.Sunday,
	"mon": time.Monday, "monday": time.Monday,
	"tue": time.Tuesday, "tuesday": time.Tuesday,
	"wed": time.Wednesday, "wednesday": time.Wednesday,
	"thu": time.Thursday, "thursday": time.Thursday,
	"fri": time.Friday, "friday": time.Friday,
	"sat": time.Saturday, "saturday": time.Saturday,
}

// ParseWeekdays parses a comma-separated list of weekday names or indices (0=Sunday, 6=Saturday).
func ParseWeekdays(s string) (Weekdays, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	var days Weekdays
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(strings.ToLower(part))
		if part == "" {
			continue
		}
		if wd, ok := weekdayNames[part]; ok {
			days = append(days, wd)
			continue
		}
		num, err := strconv.Atoi(part)
		if err != nil || num < 0 || num > 6 {
			return nil, fmt.Errorf("invalid weekday: %s", part)
		}
		days = append(days, time.Weekday(num))
	}
	return days.Normalize(), nil
}

// Habit is a user-defined recurring commitment. The frequency fields are
// descriptive: they are displayed but never used to gate logging or scoring.
type Habit struct {
	ID             string        `db:"id" json:"id"`
	Name           string        `db:"name" json:"name"`
	FrequencyType  FrequencyType `db:"frequency_type" json:"frequencyType"`
	FrequencyValue int           `db:"frequency_value" json:"frequencyValue"`
	FrequencyDays  Weekdays      `db:"frequency_days" json:"frequencyDays"`
	CreatedAt      time.Time     `db:"created_at" json:"createdAt"`
	IsActive       bool          `db:"is_active" json:"isActive"`
	TargetDate     calendar.Day  `db:"target_date" json:"targetDate"`
}

// CreatedDay returns the local calendar day the habit was created on, or the
// zero Day when CreatedAt is unknown.
func (h Habit) CreatedDay(loc *time.Location) calendar.Day {
	return calendar.DayIn(h.CreatedAt, loc)
}

// DescribeFrequency renders the recurrence rule for display.
func (h Habit) DescribeFrequency() string {
	switch h.FrequencyType {
	case FrequencyWeekly:
		return fmt.Sprintf("%dx per week", h.FrequencyValue)
	case FrequencySpecificDays:
		if len(h.FrequencyDays) == 0 {
			return "specific days"
		}
		names := make([]string, len(h.FrequencyDays))
		for i, d := range h.FrequencyDays {
			names[i] = d.String()[:3]
		}
		return strings.Join(names, ", ")
	default:
		return "daily"
	}
}

// HabitWithLogs is a habit together with its log history.
type HabitWithLogs struct {
	Habit Habit      `json:"habit"`
	Logs  []LogEntry `json:"logs"`
}

// LogOn returns the entry for day, if any.
func (h HabitWithLogs) LogOn(day calendar.Day) (LogEntry, bool) {
	for _, l := range h.Logs {
		if l.Day.Equal(day) {
			return l, true
		}
	}
	return LogEntry{}, false
}

// StatusOn returns the status logged for day, or StatusUnlogged.
func (h HabitWithLogs) StatusOn(day calendar.Day) Status {
	if l, ok := h.LogOn(day); ok {
		return l.Status
	}
	return StatusUnlogged
}
