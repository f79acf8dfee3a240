// Package storagetest holds the behavioural suite every storage.Provider
// backend must pass.
package storagetest

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/108city/habit-tracker/internal/calendar"
	"github.com/108city/habit-tracker/internal/daystatus"
	apperrors "github.com/108city/habit-tracker/internal/errors"
	"github.com/108city/habit-tracker/internal/models"
	"github.com/108city/habit-tracker/internal/storage"
)

// Factory returns a freshly initialized, empty provider. It should register
// its own cleanup.
type Factory func(t *testing.T) storage.Provider

// Run executes the suite against providers built by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Run("Habits", func(t *testing.T) { testHabits(t, newStore(t)) })
	t.Run("DeleteHabitRemovesLogs", func(t *testing.T) { testDeleteHabit(t, newStore(t)) })
	t.Run("TransitionLog", func(t *testing.T) { testTransitionLog(t, newStore(t)) })
	t.Run("TransitionLogConcurrent", func(t *testing.T) { testTransitionConcurrent(t, newStore(t)) })
	t.Run("ListLogs", func(t *testing.T) { testListLogs(t, newStore(t)) })
	t.Run("UpsertAndDeleteLog", func(t *testing.T) { testUpsertDeleteLog(t, newStore(t)) })
	t.Run("Milestones", func(t *testing.T) { testMilestones(t, newStore(t)) })
	t.Run("SchemaVersion", func(t *testing.T) { testSchemaVersion(t, newStore(t)) })
}

// NewHabit returns a valid daily habit created at createdAt.
func NewHabit(name string, createdAt time.Time) models.Habit {
	return models.Habit{
		ID:             uuid.NewString(),
		Name:           name,
		FrequencyType:  models.FrequencyDaily,
		FrequencyValue: 1,
		CreatedAt:      createdAt,
		IsActive:       true,
	}
}

func testHabits(t *testing.T, store storage.Provider) {
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 8, 30, 0, 0, time.UTC)

	read := NewHabit("Read", base)
	read.FrequencyType = models.FrequencySpecificDays
	read.FrequencyDays = models.Weekdays{time.Friday, time.Monday}
	read.TargetDate = calendar.MustParse("2024-12-31")
	require.NoError(t, store.AddHabit(ctx, read))

	run := NewHabit("Run", base.Add(time.Hour))
	require.NoError(t, store.AddHabit(ctx, run))

	got, err := store.GetHabit(ctx, read.ID)
	require.NoError(t, err)
	assert.Equal(t, "Read", got.Name)
	assert.Equal(t, models.FrequencySpecificDays, got.FrequencyType)
	assert.Equal(t, models.Weekdays{time.Monday, time.Friday}, got.FrequencyDays)
	assert.Equal(t, "2024-12-31", got.TargetDate.String())
	assert.True(t, got.CreatedAt.Equal(base), "created_at round-trips: %v", got.CreatedAt)
	assert.True(t, got.IsActive)

	byName, err := store.GetHabitByName(ctx, "Run")
	require.NoError(t, err)
	assert.Equal(t, run.ID, byName.ID)

	habits, err := store.ListHabits(ctx, false)
	require.NoError(t, err)
	require.Len(t, habits, 2)
	assert.Equal(t, run.ID, habits[0].ID, "most recent first")

	require.NoError(t, store.SetHabitActive(ctx, run.ID, false))
	active, err := store.ListHabits(ctx, false)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, read.ID, active[0].ID)

	all, err := store.ListHabits(ctx, true)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	read.Name = "Read 20 pages"
	read.FrequencyType = models.FrequencyWeekly
	read.FrequencyValue = 3
	read.FrequencyDays = nil
	read.TargetDate = calendar.Day{}
	read.CreatedAt = base.Add(48 * time.Hour)
	require.NoError(t, store.UpdateHabit(ctx, read))

	got, err = store.GetHabit(ctx, read.ID)
	require.NoError(t, err)
	assert.Equal(t, "Read 20 pages", got.Name)
	assert.Equal(t, 3, got.FrequencyValue)
	assert.Empty(t, got.FrequencyDays)
	assert.True(t, got.TargetDate.IsZero())
	assert.True(t, got.CreatedAt.Equal(base), "created_at is immutable")

	_, err = store.GetHabit(ctx, "missing")
	assert.True(t, apperrors.IsNotFound(err), "got %v", err)
	assert.True(t, apperrors.IsNotFound(store.SetHabitActive(ctx, "missing", true)))
	assert.True(t, apperrors.IsNotFound(store.UpdateHabit(ctx, NewHabit("ghost", base))))
	assert.True(t, apperrors.IsNotFound(store.DeleteHabit(ctx, "missing")))
}

func testDeleteHabit(t *testing.T, store storage.Provider) {
	ctx := context.Background()
	h := NewHabit("Meditate", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	other := NewHabit("Stretch", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, store.AddHabit(ctx, h))
	require.NoError(t, store.AddHabit(ctx, other))

	for _, d := range []string{"2024-03-01", "2024-03-02"} {
		_, err := store.TransitionLog(ctx, h.ID, calendar.MustParse(d), daystatus.Set(models.StatusCompleted))
		require.NoError(t, err)
	}
	_, err := store.TransitionLog(ctx, other.ID, calendar.MustParse("2024-03-01"), daystatus.Set(models.StatusSkipped))
	require.NoError(t, err)

	require.NoError(t, store.DeleteHabit(ctx, h.ID))

	logs, err := store.ListLogs(ctx, storage.LogFilter{HabitID: h.ID})
	require.NoError(t, err)
	assert.Empty(t, logs)

	remaining, err := store.ListLogs(ctx, storage.LogFilter{})
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, other.ID, remaining[0].HabitID)
}

func testTransitionLog(t *testing.T, store storage.Provider) {
	ctx := context.Background()
	h := NewHabit("Walk", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, store.AddHabit(ctx, h))
	day := calendar.MustParse("2024-03-05")

	entry, err := store.TransitionLog(ctx, h.ID, day, daystatus.Set(models.StatusCompleted))
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, models.StatusCompleted, entry.Status)
	firstID := entry.ID

	entry, err = store.TransitionLog(ctx, h.ID, day, daystatus.Set(models.StatusSkipped))
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, models.StatusSkipped, entry.Status)
	assert.Equal(t, firstID, entry.ID, "entry is updated in place")

	stored, err := store.GetLog(ctx, h.ID, day)
	require.NoError(t, err)
	assert.Equal(t, models.StatusSkipped, stored.Status)
	assert.Equal(t, day, stored.Day)

	// repeating the current status clears it
	entry, err = store.TransitionLog(ctx, h.ID, day, daystatus.Set(models.StatusSkipped))
	require.NoError(t, err)
	assert.Nil(t, entry)
	_, err = store.GetLog(ctx, h.ID, day)
	assert.True(t, apperrors.IsNotFound(err), "got %v", err)

	// three advances return to unlogged
	want := []models.Status{models.StatusCompleted, models.StatusSkipped, models.StatusUnlogged}
	for _, w := range want {
		entry, err = store.TransitionLog(ctx, h.ID, day, daystatus.Advance())
		require.NoError(t, err)
		if w == models.StatusUnlogged {
			assert.Nil(t, entry)
		} else {
			require.NotNil(t, entry)
			assert.Equal(t, w, entry.Status)
		}
	}

	_, err = store.TransitionLog(ctx, "missing", day, daystatus.Advance())
	assert.True(t, apperrors.IsNotFound(err), "got %v", err)

	_, err = store.TransitionLog(ctx, h.ID, calendar.Day{}, daystatus.Advance())
	assert.True(t, apperrors.IsValidation(err), "got %v", err)

	_, err = store.TransitionLog(ctx, h.ID, day, func(models.Status) models.Status { return "done" })
	assert.True(t, apperrors.IsValidation(err), "got %v", err)
}

func testTransitionConcurrent(t *testing.T, store storage.Provider) {
	ctx := context.Background()
	h := NewHabit("Water", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, store.AddHabit(ctx, h))
	day := calendar.MustParse("2024-03-05")

	// Six cyclic advances form two full cycles, so the pair must end unlogged
	// no matter how the transitions interleave.
	const n = 6
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.TransitionLog(ctx, h.ID, day, daystatus.Advance())
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	logs, err := store.ListLogs(ctx, storage.LogFilter{HabitID: h.ID})
	require.NoError(t, err)
	assert.Empty(t, logs)
}

func testListLogs(t *testing.T, store storage.Provider) {
	ctx := context.Background()
	a := NewHabit("A", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	b := NewHabit("B", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, store.AddHabit(ctx, a))
	require.NoError(t, store.AddHabit(ctx, b))

	for _, d := range []string{"2024-03-03", "2024-03-01", "2024-03-10"} {
		_, err := store.TransitionLog(ctx, a.ID, calendar.MustParse(d), daystatus.Set(models.StatusCompleted))
		require.NoError(t, err)
	}
	_, err := store.TransitionLog(ctx, b.ID, calendar.MustParse("2024-03-02"), daystatus.Set(models.StatusSkipped))
	require.NoError(t, err)

	all, err := store.ListLogs(ctx, storage.LogFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 4)

	ranged, err := store.ListLogs(ctx, storage.LogFilter{
		HabitID: a.ID,
		From:    calendar.MustParse("2024-03-01"),
		To:      calendar.MustParse("2024-03-05"),
	})
	require.NoError(t, err)
	require.Len(t, ranged, 2)
	assert.Equal(t, "2024-03-01", ranged[0].Day.String())
	assert.Equal(t, "2024-03-03", ranged[1].Day.String())

	fromOnly, err := store.ListLogs(ctx, storage.LogFilter{From: calendar.MustParse("2024-03-02")})
	require.NoError(t, err)
	assert.Len(t, fromOnly, 3)
}

func testUpsertDeleteLog(t *testing.T, store storage.Provider) {
	ctx := context.Background()
	h := NewHabit("Floss", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, store.AddHabit(ctx, h))
	day := calendar.MustParse("2024-03-02")

	first, err := store.UpsertLog(ctx, h.ID, day, models.StatusCompleted)
	require.NoError(t, err)
	again, err := store.UpsertLog(ctx, h.ID, day, models.StatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID, "upsert never toggles")
	assert.Equal(t, models.StatusCompleted, again.Status)

	_, err = store.UpsertLog(ctx, h.ID, day, models.StatusUnlogged)
	assert.True(t, apperrors.IsValidation(err), "got %v", err)

	require.NoError(t, store.DeleteLog(ctx, first.ID))
	assert.True(t, apperrors.IsNotFound(store.DeleteLog(ctx, first.ID)))

	logs, err := store.ListLogs(ctx, storage.LogFilter{HabitID: h.ID})
	require.NoError(t, err)
	assert.Empty(t, logs)
}

func testMilestones(t *testing.T, store storage.Provider) {
	ctx := context.Background()

	spring := models.Milestone{
		ID:        uuid.NewString(),
		Title:     "Spring block",
		StartDate: calendar.MustParse("2024-03-01"),
		EndDate:   calendar.MustParse("2024-05-31"),
		CreatedAt: time.Date(2024, 2, 20, 0, 0, 0, 0, time.UTC),
	}
	winter := models.Milestone{
		ID:        uuid.NewString(),
		Title:     "Winter block",
		StartDate: calendar.MustParse("2024-01-01"),
		EndDate:   calendar.MustParse("2024-02-29"),
		CreatedAt: time.Date(2023, 12, 20, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, store.AddMilestone(ctx, winter))
	require.NoError(t, store.AddMilestone(ctx, spring))

	list, err := store.ListMilestones(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, spring.ID, list[0].ID, "latest start first")

	got, err := store.GetMilestone(ctx, winter.ID)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-01", got.StartDate.String())
	assert.Equal(t, "2024-02-29", got.EndDate.String())

	spring.Title = "Spring push"
	spring.EndDate = calendar.MustParse("2024-04-30")
	require.NoError(t, store.UpdateMilestone(ctx, spring))
	got, err = store.GetMilestone(ctx, spring.ID)
	require.NoError(t, err)
	assert.Equal(t, "Spring push", got.Title)
	assert.Equal(t, "2024-04-30", got.EndDate.String())

	require.NoError(t, store.DeleteMilestone(ctx, winter.ID))
	_, err = store.GetMilestone(ctx, winter.ID)
	assert.True(t, apperrors.IsNotFound(err), "got %v", err)
	assert.True(t, apperrors.IsNotFound(store.DeleteMilestone(ctx, winter.ID)))
	assert.True(t, apperrors.IsNotFound(store.UpdateMilestone(ctx, winter)))
}

func testSchemaVersion(t *testing.T, store storage.Provider) {
	ctx := context.Background()
	require.NoError(t, store.Ping(ctx))

	current, latest, err := store.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, latest, current)
	assert.GreaterOrEqual(t, current, 1)
}
