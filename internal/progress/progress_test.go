package progress

import (
	"fmt"
	"testing"
	"time"

	"github.com/108city/habit-tracker/internal/calendar"
	"github.com/108city/habit-tracker/internal/models"
)

// at returns noon UTC on the given day, keeping every test in one location.
func at(day string) time.Time {
	d := calendar.MustParse(day)
	return time.Date(d.Year(), d.Month(), d.DayOfMonth(), 12, 0, 0, 0, time.UTC)
}

func habit(id, created string) models.Habit {
	return models.Habit{
		ID:            id,
		Name:          "habit " + id,
		FrequencyType: models.FrequencyDaily,
		CreatedAt:     at(created),
		IsActive:      true,
	}
}

func entry(habitID, day string, status models.Status) models.LogEntry {
	return models.LogEntry{
		ID:      fmt.Sprintf("%s-%s", habitID, day),
		HabitID: habitID,
		Day:     calendar.MustParse(day),
		Status:  status,
	}
}

func TestSuccessRate(t *testing.T) {
	h := habit("h1", "2024-03-01")

	tests := []struct {
		name  string
		logs  []models.LogEntry
		scope string
		now   string
		want  int
	}{
		{
			name: "no logs",
			now:  "2024-03-10",
			want: 0,
		},
		{
			name: "ten day window with one skip",
			logs: []models.LogEntry{
				entry("h1", "2024-03-01", models.StatusCompleted),
				entry("h1", "2024-03-03", models.StatusCompleted),
				entry("h1", "2024-03-05", models.StatusSkipped),
				entry("h1", "2024-03-09", models.StatusCompleted),
			},
			now:  "2024-03-10",
			want: 33,
		},
		{
			name: "every day completed",
			logs: []models.LogEntry{
				entry("h1", "2024-03-01", models.StatusCompleted),
				entry("h1", "2024-03-02", models.StatusCompleted),
				entry("h1", "2024-03-03", models.StatusCompleted),
			},
			now:  "2024-03-03",
			want: 100,
		},
		{
			name: "logs outside the window are ignored",
			logs: []models.LogEntry{
				entry("h1", "2024-02-20", models.StatusCompleted),
				entry("h1", "2024-03-02", models.StatusCompleted),
				entry("h1", "2024-03-20", models.StatusCompleted),
			},
			now:  "2024-03-04",
			want: 25,
		},
		{
			name: "milestone scope moves the start forward",
			logs: []models.LogEntry{
				entry("h1", "2024-03-01", models.StatusCompleted),
				entry("h1", "2024-03-06", models.StatusCompleted),
				entry("h1", "2024-03-07", models.StatusCompleted),
			},
			scope: "2024-03-06",
			now:   "2024-03-08",
			want:  67,
		},
		{
			name: "scope before creation uses creation day",
			logs: []models.LogEntry{
				entry("h1", "2024-03-01", models.StatusCompleted),
				entry("h1", "2024-03-02", models.StatusCompleted),
			},
			scope: "2024-01-01",
			now:   "2024-03-02",
			want:  100,
		},
		{
			name: "all days skipped floors denominator at one",
			logs: []models.LogEntry{
				entry("h1", "2024-03-01", models.StatusSkipped),
				entry("h1", "2024-03-02", models.StatusSkipped),
			},
			now:  "2024-03-02",
			want: 0,
		},
		{
			name: "scope in the future",
			logs: []models.LogEntry{
				entry("h1", "2024-03-02", models.StatusCompleted),
			},
			scope: "2024-04-01",
			now:   "2024-03-02",
			want:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var scope calendar.Day
			if tt.scope != "" {
				scope = calendar.MustParse(tt.scope)
			}
			got := SuccessRate(h, tt.logs, scope, at(tt.now))
			if got != tt.want {
				t.Errorf("SuccessRate() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestSuccessRateMissingCreatedAt(t *testing.T) {
	h := habit("h1", "2024-03-01")
	h.CreatedAt = time.Time{}

	if got := SuccessRate(h, nil, calendar.Day{}, at("2024-03-10")); got != 0 {
		t.Errorf("SuccessRate() with no logs = %d, want 0", got)
	}

	logs := []models.LogEntry{entry("h1", "2024-03-05", models.StatusCompleted)}
	if got := SuccessRate(h, logs, calendar.Day{}, at("2024-03-10")); got != 100 {
		t.Errorf("SuccessRate() = %d, want 100 (denominator falls back to 1)", got)
	}
}

func TestSuccessRateBounded(t *testing.T) {
	h := habit("h1", "2024-03-01")
	var logs []models.LogEntry
	for _, d := range calendar.Range(calendar.MustParse("2024-03-01"), calendar.MustParse("2024-03-31")) {
		logs = append(logs, models.LogEntry{HabitID: "h1", Day: d, Status: models.StatusCompleted})
	}
	for _, now := range []string{"2024-03-01", "2024-03-15", "2024-03-31", "2024-05-01"} {
		got := SuccessRate(h, logs, calendar.Day{}, at(now))
		if got < 0 || got > 100 {
			t.Errorf("SuccessRate() at %s = %d, out of bounds", now, got)
		}
	}
}

func milestone(id, start, end string) models.Milestone {
	return models.Milestone{
		ID:        id,
		Title:     "block " + id,
		StartDate: calendar.MustParse(start),
		EndDate:   calendar.MustParse(end),
	}
}

func TestTimeProgress(t *testing.T) {
	m := milestone("m1", "2024-03-01", "2024-03-10")

	tests := []struct {
		today      string
		daysPassed int
		pct        int
	}{
		{"2024-02-15", 0, 0},
		{"2024-03-01", 1, 10},
		{"2024-03-05", 5, 50},
		{"2024-03-10", 10, 100},
		{"2024-04-01", 10, 100},
	}

	for _, tt := range tests {
		t.Run(tt.today, func(t *testing.T) {
			passed, total, pct := TimeProgress(m, calendar.MustParse(tt.today))
			if total != 10 {
				t.Errorf("totalDays = %d, want 10", total)
			}
			if passed != tt.daysPassed || pct != tt.pct {
				t.Errorf("TimeProgress() = (%d, %d%%), want (%d, %d%%)", passed, pct, tt.daysPassed, tt.pct)
			}
		})
	}
}

func TestTimeProgressMonotonic(t *testing.T) {
	m := milestone("m1", "2024-03-01", "2024-03-20")
	prev := -1
	for _, d := range calendar.Range(calendar.MustParse("2024-02-20"), calendar.MustParse("2024-03-31")) {
		_, _, pct := TimeProgress(m, d)
		if pct < prev {
			t.Fatalf("time progress decreased on %s: %d < %d", d, pct, prev)
		}
		if pct < 0 || pct > 100 {
			t.Fatalf("time progress out of bounds on %s: %d", d, pct)
		}
		prev = pct
	}
	if prev != 100 {
		t.Errorf("time progress after end = %d, want 100", prev)
	}
}

func TestTimeProgressMalformed(t *testing.T) {
	m := milestone("m1", "2024-03-10", "2024-03-01")
	passed, total, pct := TimeProgress(m, calendar.MustParse("2024-03-05"))
	if passed != 0 || total != 0 || pct != 0 {
		t.Errorf("TimeProgress() on reversed range = (%d, %d, %d), want zeros", passed, total, pct)
	}
}

func TestAggregateMilestone(t *testing.T) {
	m := milestone("m1", "2024-03-01", "2024-03-20")
	now := at("2024-03-08")

	// created before the block: overlap 03-01..03-08 = 8 days, 4 completed, no skips
	first := models.HabitWithLogs{
		Habit: habit("a", "2024-02-01"),
		Logs: []models.LogEntry{
			entry("a", "2024-02-25", models.StatusCompleted),
			entry("a", "2024-03-01", models.StatusCompleted),
			entry("a", "2024-03-02", models.StatusCompleted),
			entry("a", "2024-03-04", models.StatusCompleted),
			entry("a", "2024-03-08", models.StatusCompleted),
		},
	}
	// created mid-block: overlap 03-06..03-08 = 3 days, one skipped -> possible 2
	second := models.HabitWithLogs{
		Habit: habit("b", "2024-03-06"),
		Logs: []models.LogEntry{
			entry("b", "2024-03-06", models.StatusCompleted),
			entry("b", "2024-03-07", models.StatusSkipped),
			entry("b", "2024-03-08", models.StatusCompleted),
		},
	}

	c, p := Contribution(first, m, now)
	if c != 4 || p != 8 {
		t.Errorf("first contribution = (%d, %d), want (4, 8)", c, p)
	}
	c, p = Contribution(second, m, now)
	if c != 2 || p != 2 {
		t.Errorf("second contribution = (%d, %d), want (2, 2)", c, p)
	}

	agg := AggregateMilestone(m, []models.HabitWithLogs{first, second}, now)
	if agg.CompletedSum != 6 || agg.PossibleSum != 10 {
		t.Errorf("sums = (%d, %d), want (6, 10)", agg.CompletedSum, agg.PossibleSum)
	}
	if agg.SuccessRate != 60 {
		t.Errorf("SuccessRate = %d, want 60", agg.SuccessRate)
	}
	if agg.Phase != models.PhaseCurrent {
		t.Errorf("Phase = %s, want current", agg.Phase)
	}
	if agg.DaysPassed != 8 || agg.TotalDays != 20 || agg.TimeProgress != 40 {
		t.Errorf("time = (%d/%d, %d%%), want (8/20, 40%%)", agg.DaysPassed, agg.TotalDays, agg.TimeProgress)
	}
}

func TestAggregateMilestoneNoOverlap(t *testing.T) {
	m := milestone("m1", "2024-03-01", "2024-03-10")

	late := models.HabitWithLogs{Habit: habit("late", "2024-03-15")}
	agg := AggregateMilestone(m, []models.HabitWithLogs{late}, at("2024-03-20"))
	if agg.PossibleSum != 0 || agg.SuccessRate != 0 {
		t.Errorf("habit created after the block contributed: %+v", agg)
	}

	upcoming := milestone("m2", "2024-04-01", "2024-04-10")
	agg = AggregateMilestone(upcoming, []models.HabitWithLogs{late}, at("2024-03-20"))
	if agg.Phase != models.PhaseUpcoming || agg.TimeProgress != 0 || agg.SuccessRate != 0 {
		t.Errorf("upcoming milestone aggregate = %+v", agg)
	}
}

func TestActiveMilestone(t *testing.T) {
	milestones := []models.Milestone{
		milestone("old", "2024-01-01", "2024-01-31"),
		milestone("long", "2024-02-01", "2024-06-30"),
		milestone("recent", "2024-03-01", "2024-03-31"),
		milestone("future", "2024-05-01", "2024-05-31"),
	}

	active := ActiveMilestone(milestones, calendar.MustParse("2024-03-15"))
	if active == nil || active.ID != "recent" {
		t.Fatalf("ActiveMilestone() = %v, want recent", active)
	}
	if got := ScopeStart(active); got.String() != "2024-03-01" {
		t.Errorf("ScopeStart() = %s", got)
	}

	if got := ActiveMilestone(milestones, calendar.MustParse("2024-07-15")); got != nil {
		t.Errorf("ActiveMilestone() = %v, want nil", got)
	}
	if got := ScopeStart(nil); !got.IsZero() {
		t.Errorf("ScopeStart(nil) = %s, want zero", got)
	}
}

func TestShouldCelebrate(t *testing.T) {
	today := calendar.MustParse("2024-03-05")
	done := func(id string) models.HabitWithLogs {
		return models.HabitWithLogs{
			Habit: habit(id, "2024-03-01"),
			Logs:  []models.LogEntry{entry(id, "2024-03-05", models.StatusCompleted)},
		}
	}
	skipped := models.HabitWithLogs{
		Habit: habit("s", "2024-03-01"),
		Logs:  []models.LogEntry{entry("s", "2024-03-05", models.StatusSkipped)},
	}
	archived := models.HabitWithLogs{Habit: habit("x", "2024-03-01")}
	archived.Habit.IsActive = false

	tests := []struct {
		name   string
		habits []models.HabitWithLogs
		want   bool
	}{
		{"no habits", nil, false},
		{"only archived", []models.HabitWithLogs{archived}, false},
		{"all completed", []models.HabitWithLogs{done("a"), done("b")}, true},
		{"archived habit ignored", []models.HabitWithLogs{done("a"), archived}, true},
		{"one skipped", []models.HabitWithLogs{done("a"), skipped}, false},
		{"one unlogged", []models.HabitWithLogs{done("a"), {Habit: habit("u", "2024-03-01")}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShouldCelebrate(tt.habits, today); got != tt.want {
				t.Errorf("ShouldCelebrate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestConsistency(t *testing.T) {
	tests := []struct {
		active, completed int
		progress          int
		label             Consistency
	}{
		{0, 0, 0, ConsistencyReady},
		{4, 1, 25, ConsistencyActive},
		{5, 4, 80, ConsistencyActive},
		{6, 5, 83, ConsistencyElite},
		{3, 3, 100, ConsistencyElite},
	}

	for _, tt := range tests {
		progress := TodayProgress(tt.active, tt.completed)
		if progress != tt.progress {
			t.Errorf("TodayProgress(%d, %d) = %d, want %d", tt.active, tt.completed, progress, tt.progress)
		}
		if got := ConsistencyFor(tt.active, progress); got != tt.label {
			t.Errorf("ConsistencyFor(%d, %d) = %s, want %s", tt.active, progress, got, tt.label)
		}
	}
}

func TestRecomputeSnapshot(t *testing.T) {
	older := models.HabitWithLogs{
		Habit: habit("older", "2024-03-01"),
		Logs: []models.LogEntry{
			entry("older", "2024-03-05", models.StatusCompleted),
			entry("older", "2024-03-02", models.StatusCompleted),
		},
	}
	newer := models.HabitWithLogs{
		Habit: habit("newer", "2024-03-04"),
		Logs:  []models.LogEntry{entry("newer", "2024-03-05", models.StatusCompleted)},
	}
	archived := models.HabitWithLogs{Habit: habit("archived", "2024-02-01")}
	archived.Habit.IsActive = false

	milestones := []models.Milestone{
		milestone("past", "2024-01-01", "2024-01-31"),
		milestone("now", "2024-03-04", "2024-03-13"),
	}

	snap := RecomputeSnapshot([]models.HabitWithLogs{older, archived, newer}, milestones, at("2024-03-05"))

	if snap.Today.String() != "2024-03-05" {
		t.Errorf("Today = %s", snap.Today)
	}
	if len(snap.Habits) != 3 || snap.Habits[0].ID != "newer" || snap.Habits[2].ID != "archived" {
		t.Errorf("habits not ordered most recent first: %+v", snap.Habits)
	}
	if logs := snap.LogsByHabit["older"]; len(logs) != 2 || logs[0].Day.String() != "2024-03-02" {
		t.Errorf("logs not ordered by day: %+v", logs)
	}
	if snap.ActiveMilestone == nil || snap.ActiveMilestone.ID != "now" {
		t.Fatalf("ActiveMilestone = %v, want now", snap.ActiveMilestone)
	}
	if snap.Milestones[0].ID != "now" {
		t.Errorf("milestones not ordered by start descending: %+v", snap.Milestones)
	}

	// scoped to 03-04..03-05: older has one completion over two days
	if got := snap.SuccessRates["older"]; got != 50 {
		t.Errorf("SuccessRates[older] = %d, want 50", got)
	}
	if got := snap.SuccessRates["newer"]; got != 50 {
		t.Errorf("SuccessRates[newer] = %d, want 50", got)
	}

	if snap.ActiveCount != 2 || snap.CompletedToday != 2 || !snap.AllCompletedToday {
		t.Errorf("today counts = %d/%d, all=%v", snap.CompletedToday, snap.ActiveCount, snap.AllCompletedToday)
	}
	if snap.TodayProgress != 100 || snap.Consistency != ConsistencyElite {
		t.Errorf("progress = %d %s", snap.TodayProgress, snap.Consistency)
	}
	if agg := snap.MilestoneAggregates["now"]; agg.DaysPassed != 2 || agg.TimeProgress != 20 {
		t.Errorf("aggregate = %+v", agg)
	}
	if got := len(snap.ArchivedHabits()); got != 1 {
		t.Errorf("ArchivedHabits() = %d, want 1", got)
	}
	if got := snap.StatusToday("older"); got != models.StatusCompleted {
		t.Errorf("StatusToday(older) = %v", got)
	}
	if _, ok := snap.WithLogs("gone"); ok {
		t.Error("WithLogs() found an unknown habit")
	}
	if got := snap.MilestonesIn(models.PhaseArchived); len(got) != 1 || got[0].ID != "past" {
		t.Errorf("MilestonesIn(archived) = %+v", got)
	}
}

func TestRecomputeSnapshotEmpty(t *testing.T) {
	snap := RecomputeSnapshot(nil, nil, at("2024-03-05"))
	if snap.ActiveCount != 0 || snap.AllCompletedToday || snap.Consistency != ConsistencyReady {
		t.Errorf("empty snapshot = %+v", snap)
	}
	if snap.SuccessRates == nil || snap.LogsByHabit == nil || snap.MilestoneAggregates == nil {
		t.Error("maps should be non-nil for JSON consumers")
	}
}
