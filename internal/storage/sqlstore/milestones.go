package sqlstore

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/108city/habit-tracker/internal/calendar"
	apperrors "github.com/108city/habit-tracker/internal/errors"
	"github.com/108city/habit-tracker/internal/models"
)

type milestoneRow struct {
	ID        string       `db:"id"`
	Title     string       `db:"title"`
	StartDate calendar.Day `db:"start_date"`
	EndDate   calendar.Day `db:"end_date"`
	CreatedAt string       `db:"created_at"`
}

const milestoneColumns = `id, title, start_date, end_date, created_at`

func (r milestoneRow) model() (models.Milestone, error) {
	createdAt, err := parseTime(r.CreatedAt)
	if err != nil {
		return models.Milestone{}, fmt.Errorf("milestone %s: %w", r.ID, err)
	}
	return models.Milestone{
		ID:        r.ID,
		Title:     r.Title,
		StartDate: r.StartDate,
		EndDate:   r.EndDate,
		CreatedAt: createdAt,
	}, nil
}

func (s *Store) AddMilestone(ctx context.Context, m models.Milestone) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = s.now()
	}
	_, err := s.db.ExecContext(ctx, s.db.Rebind(`
		INSERT INTO milestones (`+milestoneColumns+`)
		VALUES (?, ?, ?, ?, ?)`),
		m.ID, m.Title, m.StartDate, m.EndDate, formatTime(m.CreatedAt))
	if err != nil {
		return apperrors.Persistence("add milestone", err)
	}
	return nil
}

func (s *Store) GetMilestone(ctx context.Context, id string) (models.Milestone, error) {
	var row milestoneRow
	err := s.db.GetContext(ctx, &row, s.db.Rebind(`SELECT `+milestoneColumns+` FROM milestones WHERE id = ?`), id)
	if err != nil {
		return models.Milestone{}, mapErr("get milestone", "milestone", id, err)
	}
	return row.model()
}

// ListMilestones returns milestones by start date, latest first.
func (s *Store) ListMilestones(ctx context.Context) ([]models.Milestone, error) {
	var rows []milestoneRow
	if err := s.db.SelectContext(ctx, &rows, `SELECT `+milestoneColumns+` FROM milestones ORDER BY start_date DESC, id`); err != nil {
		return nil, apperrors.Persistence("list milestones", err)
	}
	out := make([]models.Milestone, 0, len(rows))
	for _, r := range rows {
		m, err := r.model()
		if err != nil {
			return nil, apperrors.Persistence("list milestones", err)
		}
		out = append(out, m)
	}
	return out, nil
}

func (s *Store) UpdateMilestone(ctx context.Context, m models.Milestone) error {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`
		UPDATE milestones SET title = ?, start_date = ?, end_date = ?
		WHERE id = ?`), m.Title, m.StartDate, m.EndDate, m.ID)
	if err != nil {
		return apperrors.Persistence("update milestone", err)
	}
	if err := expectOne(res, "milestone", m.ID); err != nil {
		return apperrors.Persistence("update milestone", err)
	}
	return nil
}

func (s *Store) DeleteMilestone(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM milestones WHERE id = ?`), id)
	if err != nil {
		return apperrors.Persistence("delete milestone", err)
	}
	if err := expectOne(res, "milestone", id); err != nil {
		return apperrors.Persistence("delete milestone", err)
	}
	return nil
}
