package tracker

import (
	"context"

	"github.com/108city/habit-tracker/internal/calendar"
	"github.com/108city/habit-tracker/internal/daystatus"
	"github.com/108city/habit-tracker/internal/logger"
	"github.com/108city/habit-tracker/internal/models"
	"github.com/108city/habit-tracker/internal/storage"
	"github.com/108city/habit-tracker/internal/validation"
)

// SetStatus applies the explicit-set policy: requesting the status already
// stored clears the day. It returns the resulting entry, or nil when the
// day ends up unlogged.
func (s *Service) SetStatus(ctx context.Context, habitID string, day calendar.Day, status models.Status) (*models.LogEntry, error) {
	if err := validation.LoggableStatus(status); err != nil {
		return nil, err
	}
	return s.transition(ctx, habitID, day, daystatus.Set(status))
}

// AdvanceStatus applies the cyclic policy used by the history grid:
// unlogged, completed, skipped, unlogged.
func (s *Service) AdvanceStatus(ctx context.Context, habitID string, day calendar.Day) (*models.LogEntry, error) {
	return s.transition(ctx, habitID, day, daystatus.Advance())
}

func (s *Service) transition(ctx context.Context, habitID string, day calendar.Day, policy daystatus.Policy) (*models.LogEntry, error) {
	if err := validation.LogDay(day); err != nil {
		return nil, err
	}

	entry, err := s.store.TransitionLog(ctx, habitID, day, policy)
	if err != nil {
		logger.Error("Failed to log status", "habit_id", habitID, "day", day, "error", err)
		return nil, err
	}

	status := models.StatusUnlogged
	if entry != nil {
		status = entry.Status
	}
	logger.Debug("Logged status", "habit_id", habitID, "day", day, "status", status)

	if today := s.Today(); day.Equal(today) && status == models.StatusCompleted {
		s.checkCelebration(ctx, today)
	}
	return entry, nil
}

// LogsFor returns a habit's entries in [from, to]; zero bounds are open.
func (s *Service) LogsFor(ctx context.Context, habitID string, from, to calendar.Day) ([]models.LogEntry, error) {
	if _, err := s.store.GetHabit(ctx, habitID); err != nil {
		return nil, err
	}
	return s.store.ListLogs(ctx, storage.LogFilter{HabitID: habitID, From: from, To: to})
}
