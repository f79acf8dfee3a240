// Package calendar provides the canonical local calendar-day type used for
// logging, scheduling and rate math. Instants are converted to a Day exactly
// once, in the configured location, and all comparisons happen on Days.
package calendar

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// DateFormat is the textual form of a Day (YYYY-MM-DD).
const DateFormat = "2006-01-02"

// Day is a calendar date without time-of-day or location.
// The zero Day is treated as "unknown" and is never a valid log day.
type Day struct {
	// t is always midnight UTC of the represented date so that day arithmetic
	// never crosses a DST boundary.
	t time.Time
}

// New returns the Day for the given year, month and day of month.
// Out-of-range values are normalized the same way time.Date normalizes them.
func New(year int, month time.Month, day int) Day {
	return Day{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DayOf truncates an instant to its calendar date in the instant's own location.
// Callers convert instants with In(loc) first when a specific zone is required.
func DayOf(t time.Time) Day {
	if t.IsZero() {
		return Day{}
	}
	y, m, d := t.Date()
	return New(y, m, d)
}

// DayIn truncates an instant to its calendar date in loc.
func DayIn(t time.Time, loc *time.Location) Day {
	if t.IsZero() {
		return Day{}
	}
	if loc == nil {
		loc = time.Local
	}
	return DayOf(t.In(loc))
}

// Parse parses a YYYY-MM-DD string.
func Parse(s string) (Day, error) {
	t, err := time.Parse(DateFormat, s)
	if err != nil {
		return Day{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD): %w", s, err)
	}
	return New(t.Year(), t.Month(), t.Day()), nil
}

// MustParse is like Parse but panics on error. Intended for tests and constants.
func MustParse(s string) Day {
	d, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}

func (d Day) IsZero() bool { return d.t.IsZero() }

func (d Day) Year() int             { return d.t.Year() }
func (d Day) Month() time.Month     { return d.t.Month() }
func (d Day) DayOfMonth() int       { return d.t.Day() }
func (d Day) Weekday() time.Weekday { return d.t.Weekday() }

// String returns the YYYY-MM-DD form, or "" for the zero Day.
func (d Day) String() string {
	if d.IsZero() {
		return ""
	}
	return d.t.Format(DateFormat)
}

// Format formats the day using a time layout.
func (d Day) Format(layout string) string {
	return d.t.Format(layout)
}

// Time returns midnight of the day in loc.
func (d Day) Time(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	return time.Date(d.Year(), d.Month(), d.DayOfMonth(), 0, 0, 0, 0, loc)
}

func (d Day) AddDays(n int) Day {
	if d.IsZero() {
		return d
	}
	return Day{t: d.t.AddDate(0, 0, n)}
}

func (d Day) Before(o Day) bool { return d.t.Before(o.t) }
func (d Day) After(o Day) bool  { return d.t.After(o.t) }
func (d Day) Equal(o Day) bool  { return d.t.Equal(o.t) }

// Compare returns -1, 0 or +1.
func (d Day) Compare(o Day) int { return d.t.Compare(o.t) }

// Within reports whether d lies in the inclusive range [start, end].
func (d Day) Within(start, end Day) bool {
	return !d.Before(start) && !d.After(end)
}

// DaysSince returns the whole number of days from o to d (negative when d is before o).
func (d Day) DaysSince(o Day) int {
	return int(d.t.Sub(o.t).Hours() / 24)
}

// InclusiveDayCount counts the days in [a, b], both ends included.
// It is only meaningful for b >= a; otherwise the result is <= 0.
func InclusiveDayCount(a, b Day) int {
	return b.DaysSince(a) + 1
}

// Max returns the later of two days. A zero Day loses to any valid day.
func Max(a, b Day) Day {
	if a.IsZero() {
		return b
	}
	if b.IsZero() || a.After(b) {
		return a
	}
	return b
}

// Min returns the earlier of two days. A zero Day loses to any valid day.
func Min(a, b Day) Day {
	if a.IsZero() {
		return b
	}
	if b.IsZero() || a.Before(b) {
		return a
	}
	return b
}

// Range returns every day in [start, end] in ascending order.
func Range(start, end Day) []Day {
	n := InclusiveDayCount(start, end)
	if start.IsZero() || end.IsZero() || n <= 0 {
		return nil
	}
	days := make([]Day, 0, n)
	for i := 0; i < n; i++ {
		days = append(days, start.AddDays(i))
	}
	return days
}

// MarshalText implements encoding.TextMarshaler.
func (d Day) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Empty input yields the zero Day.
func (d *Day) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*d = Day{}
		return nil
	}
	parsed, err := Parse(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Value implements driver.Valuer. The zero Day is stored as NULL.
func (d Day) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}
	return d.String(), nil
}

// Scan implements sql.Scanner for TEXT, DATE and NULL columns.
func (d *Day) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*d = Day{}
		return nil
	case string:
		return d.UnmarshalText([]byte(v))
	case []byte:
		return d.UnmarshalText(v)
	case time.Time:
		*d = DayOf(v)
		return nil
	default:
		return fmt.Errorf("calendar: cannot scan %T into Day", src)
	}
}
