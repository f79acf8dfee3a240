// Package progress turns habit log histories into display values. Every
// function here is pure over (habits, logs, milestones, now) and never
// returns an error: malformed input degrades to a safe value.
package progress

import (
	"math"
	"time"

	"github.com/108city/habit-tracker/internal/calendar"
	"github.com/108city/habit-tracker/internal/models"
)

// SuccessRate returns the 0-100 success rate of a habit.
//
// The counting window runs from max(creation day, scopeStart) through today.
// Completed days count toward the numerator; skipped days are removed from the
// denominator, which never drops below one. A zero scopeStart means "unscoped".
// Days are keyed in now's location.
func SuccessRate(h models.Habit, logs []models.LogEntry, scopeStart calendar.Day, now time.Time) int {
	today := calendar.DayOf(now)

	created := h.CreatedDay(now.Location())
	if created.IsZero() {
		// No usable start: count everything up to today against a single day.
		completed, _ := countStatuses(logs, calendar.Day{}, today)
		return percent(completed, 1)
	}

	start := calendar.Max(created, scopeStart)
	completed, skipped := countStatuses(logs, start, today)
	denominator := max(1, calendar.InclusiveDayCount(start, today)-skipped)
	return percent(completed, denominator)
}

// countStatuses counts completed and skipped entries with day in [from, to].
// A zero from leaves the range open at the start.
func countStatuses(logs []models.LogEntry, from, to calendar.Day) (completed, skipped int) {
	for _, l := range logs {
		if l.Day.IsZero() || l.Day.After(to) {
			continue
		}
		if !from.IsZero() && l.Day.Before(from) {
			continue
		}
		switch l.Status {
		case models.StatusCompleted:
			completed++
		case models.StatusSkipped:
			skipped++
		}
	}
	return completed, skipped
}

// percent returns round(100*num/den) clamped to [0, 100]; 0 when den <= 0.
func percent(num, den int) int {
	if den <= 0 {
		return 0
	}
	p := int(math.Round(100 * float64(num) / float64(den)))
	return min(100, max(0, p))
}
