package progress

import (
	"sort"
	"time"

	"github.com/108city/habit-tracker/internal/calendar"
	"github.com/108city/habit-tracker/internal/models"
)

// Snapshot is the read-only view handed to presentation layers.
type Snapshot struct {
	Today               calendar.Day                  `json:"today"`
	Habits              []models.Habit                `json:"habits"`
	LogsByHabit         map[string][]models.LogEntry  `json:"logsByHabit"`
	Milestones          []models.Milestone            `json:"milestones"`
	ActiveMilestone     *models.Milestone             `json:"activeMilestone"`
	SuccessRates        map[string]int                `json:"successRates"`
	MilestoneAggregates map[string]MilestoneAggregate `json:"milestoneAggregates"`
	ActiveCount         int                           `json:"activeCount"`
	CompletedToday      int                           `json:"completedToday"`
	TodayProgress       int                           `json:"todayProgress"`
	Consistency         Consistency                   `json:"consistency"`
	AllCompletedToday   bool                          `json:"allCompletedToday"`
	CelebrationActive   bool                          `json:"celebrationActive"`
}

// RecomputeSnapshot derives every display value from a full reload of
// habits, logs and milestones. Habits are ordered most recent first,
// milestones by start date descending, and each habit's logs by day.
func RecomputeSnapshot(habits []models.HabitWithLogs, milestones []models.Milestone, now time.Time) Snapshot {
	today := calendar.DayOf(now)

	ordered := make([]models.HabitWithLogs, len(habits))
	copy(ordered, habits)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Habit.CreatedAt.After(ordered[j].Habit.CreatedAt)
	})

	ms := make([]models.Milestone, len(milestones))
	copy(ms, milestones)
	sort.SliceStable(ms, func(i, j int) bool {
		return ms[i].StartDate.After(ms[j].StartDate)
	})

	active := ActiveMilestone(ms, today)
	scope := ScopeStart(active)

	snap := Snapshot{
		Today:               today,
		Habits:              make([]models.Habit, 0, len(ordered)),
		LogsByHabit:         make(map[string][]models.LogEntry, len(ordered)),
		Milestones:          ms,
		ActiveMilestone:     active,
		SuccessRates:        make(map[string]int, len(ordered)),
		MilestoneAggregates: make(map[string]MilestoneAggregate, len(ms)),
	}

	for i := range ordered {
		h := &ordered[i]
		logs := make([]models.LogEntry, len(h.Logs))
		copy(logs, h.Logs)
		sort.SliceStable(logs, func(a, b int) bool { return logs[a].Day.Before(logs[b].Day) })
		h.Logs = logs

		snap.Habits = append(snap.Habits, h.Habit)
		snap.LogsByHabit[h.Habit.ID] = logs
		snap.SuccessRates[h.Habit.ID] = SuccessRate(h.Habit, logs, scope, now)
	}

	for _, m := range ms {
		snap.MilestoneAggregates[m.ID] = AggregateMilestone(m, ordered, now)
	}

	snap.ActiveCount, snap.CompletedToday = CountToday(ordered, today)
	snap.TodayProgress = TodayProgress(snap.ActiveCount, snap.CompletedToday)
	snap.Consistency = ConsistencyFor(snap.ActiveCount, snap.TodayProgress)
	snap.AllCompletedToday = snap.ActiveCount > 0 && snap.CompletedToday == snap.ActiveCount

	return snap
}

// WithLogs returns the habit and its logs. Unknown ids yield ok == false so
// callers can drop stale references.
func (s Snapshot) WithLogs(id string) (models.HabitWithLogs, bool) {
	for _, h := range s.Habits {
		if h.ID == id {
			return models.HabitWithLogs{Habit: h, Logs: s.LogsByHabit[id]}, true
		}
	}
	return models.HabitWithLogs{}, false
}

// ActiveHabits returns active habits with their logs, most recent first.
func (s Snapshot) ActiveHabits() []models.HabitWithLogs {
	return s.filter(true)
}

// ArchivedHabits returns archived habits with their logs, most recent first.
func (s Snapshot) ArchivedHabits() []models.HabitWithLogs {
	return s.filter(false)
}

func (s Snapshot) filter(active bool) []models.HabitWithLogs {
	var out []models.HabitWithLogs
	for _, h := range s.Habits {
		if h.IsActive == active {
			out = append(out, models.HabitWithLogs{Habit: h, Logs: s.LogsByHabit[h.ID]})
		}
	}
	return out
}

// MilestonesIn returns the milestones in the given phase, preserving order.
func (s Snapshot) MilestonesIn(phase models.Phase) []models.Milestone {
	var out []models.Milestone
	for _, m := range s.Milestones {
		if m.PhaseOn(s.Today) == phase {
			out = append(out, m)
		}
	}
	return out
}

// StatusToday returns the status of habit id today.
func (s Snapshot) StatusToday(id string) models.Status {
	h, ok := s.WithLogs(id)
	if !ok {
		return models.StatusUnlogged
	}
	return h.StatusOn(s.Today)
}
