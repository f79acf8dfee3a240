package storage

import (
	"context"

	"github.com/108city/habit-tracker/internal/calendar"
	"github.com/108city/habit-tracker/internal/models"
)

// LogFilter narrows ListLogs. Zero fields do not filter.
type LogFilter struct {
	HabitID string
	From    calendar.Day
	To      calendar.Day
}

// Provider is the persistence collaborator. Implementations report missing
// rows as errors.NotFoundError and driver failures as errors.PersistenceError.
type Provider interface {
	// Lifecycle
	Init(ctx context.Context) error
	Load(ctx context.Context) error
	Close() error
	Ping(ctx context.Context) error
	SchemaVersion(ctx context.Context) (current, latest int, err error)

	// Habits
	AddHabit(ctx context.Context, h models.Habit) error
	GetHabit(ctx context.Context, id string) (models.Habit, error)
	// GetHabitByName returns the most recently created habit with the exact name.
	GetHabitByName(ctx context.Context, name string) (models.Habit, error)
	ListHabits(ctx context.Context, includeArchived bool) ([]models.Habit, error)
	UpdateHabit(ctx context.Context, h models.Habit) error
	SetHabitActive(ctx context.Context, id string, active bool) error
	// DeleteHabit removes the habit and all of its log entries atomically.
	DeleteHabit(ctx context.Context, id string) error

	// Habit logs
	GetLog(ctx context.Context, habitID string, day calendar.Day) (models.LogEntry, error)
	ListLogs(ctx context.Context, filter LogFilter) ([]models.LogEntry, error)
	// UpsertLog writes status for (habitID, day), replacing any existing entry.
	UpsertLog(ctx context.Context, habitID string, day calendar.Day, status models.Status) (models.LogEntry, error)
	DeleteLog(ctx context.Context, id string) error
	// TransitionLog reads the current status for (habitID, day), applies next
	// and writes the result in one transaction, so concurrent transitions on
	// the same pair serialize. A StatusUnlogged result removes the entry and
	// yields a nil entry.
	TransitionLog(ctx context.Context, habitID string, day calendar.Day, next func(models.Status) models.Status) (*models.LogEntry, error)

	// Milestones
	AddMilestone(ctx context.Context, m models.Milestone) error
	GetMilestone(ctx context.Context, id string) (models.Milestone, error)
	ListMilestones(ctx context.Context) ([]models.Milestone, error)
	UpdateMilestone(ctx context.Context, m models.Milestone) error
	DeleteMilestone(ctx context.Context, id string) error

	// Utils
	GetConfigPath() string
}
