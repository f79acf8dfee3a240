package tracker

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/108city/habit-tracker/internal/calendar"
	apperrors "github.com/108city/habit-tracker/internal/errors"
	"github.com/108city/habit-tracker/internal/logger"
	"github.com/108city/habit-tracker/internal/models"
	"github.com/108city/habit-tracker/internal/validation"
)

// HabitInput describes a new habit. An empty FrequencyType means daily.
type HabitInput struct {
	Name           string               `json:"name"`
	FrequencyType  models.FrequencyType `json:"frequencyType"`
	FrequencyValue int                  `json:"frequencyValue"`
	FrequencyDays  models.Weekdays      `json:"frequencyDays"`
	TargetDate     calendar.Day         `json:"targetDate"`
}

// HabitPatch carries a partial update; nil fields are left unchanged.
// A zero TargetDate clears it.
type HabitPatch struct {
	Name           *string               `json:"name"`
	FrequencyType  *models.FrequencyType `json:"frequencyType"`
	FrequencyValue *int                  `json:"frequencyValue"`
	FrequencyDays  *models.Weekdays      `json:"frequencyDays"`
	TargetDate     *calendar.Day         `json:"targetDate"`
}

// Empty reports whether the patch changes nothing.
func (p HabitPatch) Empty() bool {
	return p.Name == nil && p.FrequencyType == nil && p.FrequencyValue == nil &&
		p.FrequencyDays == nil && p.TargetDate == nil
}

// CreateHabit validates in, then stores an active habit created now.
func (s *Service) CreateHabit(ctx context.Context, in HabitInput) (models.Habit, error) {
	name, err := validation.HabitName(in.Name)
	if err != nil {
		return models.Habit{}, err
	}

	h := models.Habit{
		ID:             uuid.NewString(),
		Name:           name,
		FrequencyType:  in.FrequencyType,
		FrequencyValue: in.FrequencyValue,
		FrequencyDays:  in.FrequencyDays.Normalize(),
		CreatedAt:      s.Now(),
		IsActive:       true,
		TargetDate:     in.TargetDate,
	}
	if h.FrequencyType == "" {
		h.FrequencyType = models.FrequencyDaily
	}
	if h.FrequencyValue == 0 && h.FrequencyType != models.FrequencyWeekly {
		h.FrequencyValue = 1
	}
	if err := validation.Habit(h); err != nil {
		return models.Habit{}, err
	}

	if err := s.store.AddHabit(ctx, h); err != nil {
		logger.Error("Failed to create habit", "name", h.Name, "error", err)
		return models.Habit{}, err
	}
	logger.Debug("Created habit", "habit_id", h.ID, "name", h.Name)
	return h, nil
}

// UpdateHabit applies patch to the habit with id.
func (s *Service) UpdateHabit(ctx context.Context, id string, patch HabitPatch) (models.Habit, error) {
	h, err := s.store.GetHabit(ctx, id)
	if err != nil {
		return models.Habit{}, err
	}

	if patch.Name != nil {
		name, err := validation.HabitName(*patch.Name)
		if err != nil {
			return models.Habit{}, err
		}
		h.Name = name
	}
	if patch.FrequencyType != nil {
		h.FrequencyType = *patch.FrequencyType
	}
	if patch.FrequencyValue != nil {
		h.FrequencyValue = *patch.FrequencyValue
	}
	if patch.FrequencyDays != nil {
		h.FrequencyDays = patch.FrequencyDays.Normalize()
	}
	if patch.TargetDate != nil {
		h.TargetDate = *patch.TargetDate
	}
	if err := validation.Habit(h); err != nil {
		return models.Habit{}, err
	}

	if err := s.store.UpdateHabit(ctx, h); err != nil {
		logger.Error("Failed to update habit", "habit_id", id, "error", err)
		return models.Habit{}, err
	}
	logger.Debug("Updated habit", "habit_id", id)
	return h, nil
}

// ArchiveHabit hides the habit from today's scope while keeping its logs.
func (s *Service) ArchiveHabit(ctx context.Context, id string) (models.Habit, error) {
	return s.setActive(ctx, id, false)
}

func (s *Service) ReactivateHabit(ctx context.Context, id string) (models.Habit, error) {
	return s.setActive(ctx, id, true)
}

func (s *Service) setActive(ctx context.Context, id string, active bool) (models.Habit, error) {
	if err := s.store.SetHabitActive(ctx, id, active); err != nil {
		return models.Habit{}, err
	}
	logger.Debug("Changed habit state", "habit_id", id, "active", active)
	return s.store.GetHabit(ctx, id)
}

// DeleteHabit removes the habit and all of its logs.
func (s *Service) DeleteHabit(ctx context.Context, id string) error {
	if err := s.store.DeleteHabit(ctx, id); err != nil {
		if !apperrors.IsNotFound(err) {
			logger.Error("Failed to delete habit", "habit_id", id, "error", err)
		}
		return err
	}
	logger.Debug("Deleted habit", "habit_id", id)
	return nil
}

// ListActive returns active habits, most recent first.
func (s *Service) ListActive(ctx context.Context) ([]models.Habit, error) {
	return s.store.ListHabits(ctx, false)
}

// ListArchived returns archived habits, most recent first.
func (s *Service) ListArchived(ctx context.Context) ([]models.Habit, error) {
	all, err := s.store.ListHabits(ctx, true)
	if err != nil {
		return nil, err
	}
	var archived []models.Habit
	for _, h := range all {
		if !h.IsActive {
			archived = append(archived, h)
		}
	}
	return archived, nil
}

// FindHabit resolves ref as an id first and then as an exact name.
func (s *Service) FindHabit(ctx context.Context, ref string) (models.Habit, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return models.Habit{}, apperrors.Validation("habit", "habit id or name is required")
	}
	h, err := s.store.GetHabit(ctx, ref)
	if err == nil || !apperrors.IsNotFound(err) {
		return h, err
	}
	return s.store.GetHabitByName(ctx, ref)
}
