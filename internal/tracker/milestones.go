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

type MilestoneInput struct {
	Title     string       `json:"title"`
	StartDate calendar.Day `json:"startDate"`
	EndDate   calendar.Day `json:"endDate"`
}

// MilestonePatch carries a partial update; nil fields are left unchanged.
type MilestonePatch struct {
	Title     *string       `json:"title"`
	StartDate *calendar.Day `json:"startDate"`
	EndDate   *calendar.Day `json:"endDate"`
}

func (s *Service) CreateMilestone(ctx context.Context, in MilestoneInput) (models.Milestone, error) {
	title, err := validation.MilestoneTitle(in.Title)
	if err != nil {
		return models.Milestone{}, err
	}
	if err := validation.DateRange(in.StartDate, in.EndDate); err != nil {
		return models.Milestone{}, err
	}

	m := models.Milestone{
		ID:        uuid.NewString(),
		Title:     title,
		StartDate: in.StartDate,
		EndDate:   in.EndDate,
		CreatedAt: s.Now(),
	}
	if err := s.store.AddMilestone(ctx, m); err != nil {
		logger.Error("Failed to create milestone", "title", title, "error", err)
		return models.Milestone{}, err
	}
	logger.Debug("Created milestone", "milestone_id", m.ID, "start", m.StartDate, "end", m.EndDate)
	return m, nil
}

func (s *Service) UpdateMilestone(ctx context.Context, id string, patch MilestonePatch) (models.Milestone, error) {
	m, err := s.store.GetMilestone(ctx, id)
	if err != nil {
		return models.Milestone{}, err
	}

	if patch.Title != nil {
		m.Title = *patch.Title
	}
	if patch.StartDate != nil {
		m.StartDate = *patch.StartDate
	}
	if patch.EndDate != nil {
		m.EndDate = *patch.EndDate
	}
	if m.Title, err = validation.MilestoneTitle(m.Title); err != nil {
		return models.Milestone{}, err
	}
	if err := validation.DateRange(m.StartDate, m.EndDate); err != nil {
		return models.Milestone{}, err
	}

	if err := s.store.UpdateMilestone(ctx, m); err != nil {
		logger.Error("Failed to update milestone", "milestone_id", id, "error", err)
		return models.Milestone{}, err
	}
	logger.Debug("Updated milestone", "milestone_id", id)
	return m, nil
}

func (s *Service) DeleteMilestone(ctx context.Context, id string) error {
	if err := s.store.DeleteMilestone(ctx, id); err != nil {
		return err
	}
	logger.Debug("Deleted milestone", "milestone_id", id)
	return nil
}

// ListMilestones returns milestones by start date, latest first.
func (s *Service) ListMilestones(ctx context.Context) ([]models.Milestone, error) {
	return s.store.ListMilestones(ctx)
}

// FindMilestone resolves ref as an id first and then as an exact title.
func (s *Service) FindMilestone(ctx context.Context, ref string) (models.Milestone, error) {
	ref = strings.TrimSpace(ref)
	m, err := s.store.GetMilestone(ctx, ref)
	if err == nil || !apperrors.IsNotFound(err) {
		return m, err
	}
	all, err := s.store.ListMilestones(ctx)
	if err != nil {
		return models.Milestone{}, err
	}
	for _, candidate := range all {
		if candidate.Title == ref {
			return candidate, nil
		}
	}
	return models.Milestone{}, apperrors.NotFound("milestone", ref)
}
