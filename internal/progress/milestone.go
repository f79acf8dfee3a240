package progress

import (
	"sort"
	"time"

	"github.com/108city/habit-tracker/internal/calendar"
	"github.com/108city/habit-tracker/internal/models"
)

// MilestoneAggregate holds the derived progress of one milestone.
type MilestoneAggregate struct {
	MilestoneID  string       `json:"milestoneId"`
	Phase        models.Phase `json:"phase"`
	TotalDays    int          `json:"totalDays"`
	DaysPassed   int          `json:"daysPassed"`
	TimeProgress int          `json:"timeProgress"`
	CompletedSum int          `json:"completedSum"`
	PossibleSum  int          `json:"possibleSum"`
	SuccessRate  int          `json:"successRate"`
}

// TimeProgress returns how many of the milestone's days have elapsed as of
// today, the milestone length, and the elapsed percentage. The percentage is
// 0 before the start and pinned at 100 after the end.
func TimeProgress(m models.Milestone, today calendar.Day) (daysPassed, totalDays, pct int) {
	totalDays = calendar.InclusiveDayCount(m.StartDate, m.EndDate)
	if m.StartDate.IsZero() || m.EndDate.IsZero() || totalDays <= 0 {
		return 0, 0, 0
	}
	if today.Before(m.StartDate) {
		return 0, totalDays, 0
	}
	daysPassed = min(totalDays, calendar.InclusiveDayCount(m.StartDate, calendar.Min(today, m.EndDate)))
	return daysPassed, totalDays, percent(daysPassed, totalDays)
}

// Contribution returns one habit's completed and possible days inside the
// overlap of its lifetime with the milestone, up to today.
func Contribution(h models.HabitWithLogs, m models.Milestone, now time.Time) (completed, possible int) {
	today := calendar.DayOf(now)
	overlapStart := calendar.Max(h.Habit.CreatedDay(now.Location()), m.StartDate)
	overlapEnd := calendar.Min(today, m.EndDate)
	if overlapStart.IsZero() || overlapEnd.IsZero() || overlapEnd.Before(overlapStart) {
		return 0, 0
	}

	completed, skipped := countStatuses(h.Logs, overlapStart, overlapEnd)
	possible = max(0, calendar.InclusiveDayCount(overlapStart, overlapEnd)-skipped)
	return completed, possible
}

// AggregateMilestone computes time progress and the cross-habit success rate
// for m. Archived habits participate so that history is preserved.
func AggregateMilestone(m models.Milestone, habits []models.HabitWithLogs, now time.Time) MilestoneAggregate {
	today := calendar.DayOf(now)
	daysPassed, totalDays, timePct := TimeProgress(m, today)

	agg := MilestoneAggregate{
		MilestoneID:  m.ID,
		Phase:        m.PhaseOn(today),
		TotalDays:    totalDays,
		DaysPassed:   daysPassed,
		TimeProgress: timePct,
	}
	for _, h := range habits {
		c, p := Contribution(h, m, now)
		agg.CompletedSum += c
		agg.PossibleSum += p
	}
	if agg.PossibleSum > 0 {
		agg.SuccessRate = percent(agg.CompletedSum, agg.PossibleSum)
	}
	return agg
}

// ActiveMilestone returns the current milestone that scopes success rates:
// the one with the latest start date, then the earliest end date, then the
// smallest id. It returns nil when no milestone contains today.
func ActiveMilestone(milestones []models.Milestone, today calendar.Day) *models.Milestone {
	var current []models.Milestone
	for _, m := range milestones {
		if m.PhaseOn(today) == models.PhaseCurrent {
			current = append(current, m)
		}
	}
	if len(current) == 0 {
		return nil
	}
	sort.Slice(current, func(i, j int) bool {
		a, b := current[i], current[j]
		if c := a.StartDate.Compare(b.StartDate); c != 0 {
			return c > 0
		}
		if c := a.EndDate.Compare(b.EndDate); c != 0 {
			return c < 0
		}
		return a.ID < b.ID
	})
	active := current[0]
	return &active
}

// ScopeStart returns the success-rate scope for the active milestone, or the
// zero Day when nothing scopes the view.
func ScopeStart(active *models.Milestone) calendar.Day {
	if active == nil {
		return calendar.Day{}
	}
	return active.StartDate
}
