package progress

import (
	"github.com/108city/habit-tracker/internal/calendar"
	"github.com/108city/habit-tracker/internal/constants"
	"github.com/108city/habit-tracker/internal/models"
)

// Consistency is the coarse label shown next to today's progress.
type Consistency string

const (
	ConsistencyReady  Consistency = "Ready"
	ConsistencyActive Consistency = "Active"
	ConsistencyElite  Consistency = "Elite"
)

// CountToday returns the number of active habits and how many of them have a
// completed entry on today.
func CountToday(habits []models.HabitWithLogs, today calendar.Day) (active, completed int) {
	for _, h := range habits {
		if !h.Habit.IsActive {
			continue
		}
		active++
		if h.StatusOn(today) == models.StatusCompleted {
			completed++
		}
	}
	return active, completed
}

// ShouldCelebrate reports whether every active habit is completed today.
// It is false when there are no active habits.
func ShouldCelebrate(habits []models.HabitWithLogs, today calendar.Day) bool {
	active, completed := CountToday(habits, today)
	return active > 0 && completed == active
}

// TodayProgress is the share of active habits completed today.
func TodayProgress(active, completed int) int {
	return percent(completed, active)
}

// ConsistencyFor labels today's progress.
func ConsistencyFor(active, todayProgress int) Consistency {
	switch {
	case active == 0:
		return ConsistencyReady
	case todayProgress > constants.EliteProgressThreshold:
		return ConsistencyElite
	default:
		return ConsistencyActive
	}
}
