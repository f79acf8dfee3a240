package sqlstore

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/108city/habit-tracker/internal/calendar"
	apperrors "github.com/108city/habit-tracker/internal/errors"
	"github.com/108city/habit-tracker/internal/models"
)

type habitRow struct {
	ID             string          `db:"id"`
	Name           string          `db:"name"`
	FrequencyType  string          `db:"frequency_type"`
	FrequencyValue int             `db:"frequency_value"`
	FrequencyDays  models.Weekdays `db:"frequency_days"`
	CreatedAt      string          `db:"created_at"`
	IsActive       bool            `db:"is_active"`
	TargetDate     calendar.Day    `db:"target_date"`
}

const habitColumns = `id, name, frequency_type, frequency_value, frequency_days, created_at, is_active, target_date`

func toHabitRow(h models.Habit) habitRow {
	return habitRow{
		ID:             h.ID,
		Name:           h.Name,
		FrequencyType:  string(h.FrequencyType),
		FrequencyValue: h.FrequencyValue,
		FrequencyDays:  h.FrequencyDays.Normalize(),
		CreatedAt:      formatTime(h.CreatedAt),
		IsActive:       h.IsActive,
		TargetDate:     h.TargetDate,
	}
}

func (r habitRow) model() (models.Habit, error) {
	createdAt, err := parseTime(r.CreatedAt)
	if err != nil {
		return models.Habit{}, fmt.Errorf("habit %s: %w", r.ID, err)
	}
	return models.Habit{
		ID:             r.ID,
		Name:           r.Name,
		FrequencyType:  models.FrequencyType(r.FrequencyType),
		FrequencyValue: r.FrequencyValue,
		FrequencyDays:  r.FrequencyDays,
		CreatedAt:      createdAt,
		IsActive:       r.IsActive,
		TargetDate:     r.TargetDate,
	}, nil
}

func habitsFromRows(rows []habitRow) ([]models.Habit, error) {
	habits := make([]models.Habit, 0, len(rows))
	for _, r := range rows {
		h, err := r.model()
		if err != nil {
			return nil, err
		}
		habits = append(habits, h)
	}
	return habits, nil
}

// AddHabit inserts h, assigning an id and creation time when they are unset.
func (s *Store) AddHabit(ctx context.Context, h models.Habit) error {
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	if h.CreatedAt.IsZero() {
		h.CreatedAt = s.now()
	}
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO habits (`+habitColumns+`)
		VALUES (:id, :name, :frequency_type, :frequency_value, :frequency_days, :created_at, :is_active, :target_date)`,
		toHabitRow(h))
	if err != nil {
		return apperrors.Persistence("add habit", err)
	}
	return nil
}

func (s *Store) GetHabit(ctx context.Context, id string) (models.Habit, error) {
	var row habitRow
	err := s.db.GetContext(ctx, &row, s.db.Rebind(`SELECT `+habitColumns+` FROM habits WHERE id = ?`), id)
	if err != nil {
		return models.Habit{}, mapErr("get habit", "habit", id, err)
	}
	return row.model()
}

func (s *Store) GetHabitByName(ctx context.Context, name string) (models.Habit, error) {
	var row habitRow
	err := s.db.GetContext(ctx, &row, s.db.Rebind(`
		SELECT `+habitColumns+` FROM habits
		WHERE name = ?
		ORDER BY created_at DESC, id
		LIMIT 1`), name)
	if err != nil {
		return models.Habit{}, mapErr("get habit by name", "habit", name, err)
	}
	return row.model()
}

// ListHabits returns habits most recent first.
func (s *Store) ListHabits(ctx context.Context, includeArchived bool) ([]models.Habit, error) {
	query := `SELECT ` + habitColumns + ` FROM habits`
	var args []any
	if !includeArchived {
		query += ` WHERE is_active = ?`
		args = append(args, true)
	}
	query += ` ORDER BY created_at DESC, id`

	var rows []habitRow
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		return nil, apperrors.Persistence("list habits", err)
	}
	return habitsFromRows(rows)
}

// UpdateHabit rewrites every mutable field. CreatedAt is immutable.
func (s *Store) UpdateHabit(ctx context.Context, h models.Habit) error {
	res, err := s.db.NamedExecContext(ctx, `
		UPDATE habits SET
			name = :name,
			frequency_type = :frequency_type,
			frequency_value = :frequency_value,
			frequency_days = :frequency_days,
			is_active = :is_active,
			target_date = :target_date
		WHERE id = :id`, toHabitRow(h))
	if err != nil {
		return apperrors.Persistence("update habit", err)
	}
	if err := expectOne(res, "habit", h.ID); err != nil {
		return apperrors.Persistence("update habit", err)
	}
	return nil
}

func (s *Store) SetHabitActive(ctx context.Context, id string, active bool) error {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`UPDATE habits SET is_active = ? WHERE id = ?`), active, id)
	if err != nil {
		return apperrors.Persistence("set habit active", err)
	}
	if err := expectOne(res, "habit", id); err != nil {
		return apperrors.Persistence("set habit active", err)
	}
	return nil
}

// DeleteHabit removes the habit's logs and then the habit in one transaction.
func (s *Store) DeleteHabit(ctx context.Context, id string) error {
	return s.withTx(ctx, "delete habit", func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM habit_logs WHERE habit_id = ?`), id); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM habits WHERE id = ?`), id)
		if err != nil {
			return err
		}
		return expectOne(res, "habit", id)
	})
}
