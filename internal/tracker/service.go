// Package tracker is the command/query service in front of storage. Commands
// validate input, mutate through the provider and return the updated entity;
// Snapshot reloads everything and derives display values with package progress.
package tracker

import (
	"context"
	"time"

	"github.com/108city/habit-tracker/internal/calendar"
	"github.com/108city/habit-tracker/internal/celebration"
	"github.com/108city/habit-tracker/internal/constants"
	"github.com/108city/habit-tracker/internal/logger"
	"github.com/108city/habit-tracker/internal/models"
	"github.com/108city/habit-tracker/internal/progress"
	"github.com/108city/habit-tracker/internal/storage"
)

type Service struct {
	store       storage.Provider
	now         func() time.Time
	loc         *time.Location
	celebration *celebration.Trigger
}

type Option func(*Service)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLocation sets the zone that decides which calendar day "today" is.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithCelebrationWindow sets how long the all-done celebration stays active.
func WithCelebrationWindow(d time.Duration) Option {
	return func(s *Service) { s.celebration = celebration.NewTrigger(d) }
}

func New(store storage.Provider, opts ...Option) *Service {
	s := &Service{
		store:       store,
		now:         time.Now,
		loc:         time.Local,
		celebration: celebration.NewTrigger(constants.DefaultCelebrationWindow),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Now returns the current instant in the configured location.
func (s *Service) Now() time.Time {
	return s.now().In(s.loc)
}

func (s *Service) Today() calendar.Day {
	return calendar.DayOf(s.Now())
}

func (s *Service) Location() *time.Location {
	return s.loc
}

// Store exposes the provider for lifecycle commands such as doctor and migrate.
func (s *Service) Store() storage.Provider {
	return s.store
}

// CelebrationActive reports whether the all-done window is open right now.
func (s *Service) CelebrationActive() bool {
	return s.celebration.Active(s.now())
}

// CelebrationRemaining returns how long the current celebration stays up.
func (s *Service) CelebrationRemaining() time.Duration {
	return s.celebration.Remaining(s.now())
}

// DismissCelebration closes the celebration window early.
func (s *Service) DismissCelebration() {
	s.celebration.Reset()
}

// Snapshot reloads habits, logs and milestones and derives every display value.
func (s *Service) Snapshot(ctx context.Context) (progress.Snapshot, error) {
	habits, err := s.store.ListHabits(ctx, true)
	if err != nil {
		return progress.Snapshot{}, err
	}
	logs, err := s.store.ListLogs(ctx, storage.LogFilter{})
	if err != nil {
		return progress.Snapshot{}, err
	}
	milestones, err := s.store.ListMilestones(ctx)
	if err != nil {
		return progress.Snapshot{}, err
	}

	now := s.Now()
	snap := progress.RecomputeSnapshot(groupLogs(habits, logs), milestones, now)
	snap.CelebrationActive = s.celebration.Active(now)
	return snap, nil
}

// groupLogs pairs each habit with its entries. Entries for unknown habits are dropped.
func groupLogs(habits []models.Habit, logs []models.LogEntry) []models.HabitWithLogs {
	byHabit := make(map[string][]models.LogEntry, len(habits))
	for _, l := range logs {
		byHabit[l.HabitID] = append(byHabit[l.HabitID], l)
	}
	out := make([]models.HabitWithLogs, 0, len(habits))
	for _, h := range habits {
		out = append(out, models.HabitWithLogs{Habit: h, Logs: byHabit[h.ID]})
	}
	return out
}

// checkCelebration fires the trigger when every active habit is completed today.
func (s *Service) checkCelebration(ctx context.Context, today calendar.Day) {
	habits, err := s.store.ListHabits(ctx, false)
	if err != nil {
		logger.Warn("Skipping celebration check", "error", err)
		return
	}
	logs, err := s.store.ListLogs(ctx, storage.LogFilter{From: today, To: today})
	if err != nil {
		logger.Warn("Skipping celebration check", "error", err)
		return
	}
	if progress.ShouldCelebrate(groupLogs(habits, logs), today) {
		s.celebration.Fire(s.now())
		logger.Info("All habits completed today", "day", today, "habits", len(habits))
	}
}
