package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/108city/habit-tracker/internal/calendar"
	apperrors "github.com/108city/habit-tracker/internal/errors"
	"github.com/108city/habit-tracker/internal/models"
	"github.com/108city/habit-tracker/internal/storage"
)

type logRow struct {
	ID        string       `db:"id"`
	HabitID   string       `db:"habit_id"`
	Day       calendar.Day `db:"day"`
	Status    string       `db:"status"`
	UpdatedAt string       `db:"updated_at"`
}

const logColumns = `id, habit_id, day, status, updated_at`

func (r logRow) model() (models.LogEntry, error) {
	updatedAt, err := parseTime(r.UpdatedAt)
	if err != nil {
		return models.LogEntry{}, fmt.Errorf("log %s: %w", r.ID, err)
	}
	return models.LogEntry{
		ID:        r.ID,
		HabitID:   r.HabitID,
		Day:       r.Day,
		Status:    models.Status(r.Status),
		UpdatedAt: updatedAt,
	}, nil
}

func logKey(habitID string, day calendar.Day) string {
	return habitID + "@" + day.String()
}

func (s *Store) GetLog(ctx context.Context, habitID string, day calendar.Day) (models.LogEntry, error) {
	var row logRow
	err := s.db.GetContext(ctx, &row, s.db.Rebind(`
		SELECT `+logColumns+` FROM habit_logs
		WHERE habit_id = ? AND day = ?`), habitID, day)
	if err != nil {
		return models.LogEntry{}, mapErr("get log", "log", logKey(habitID, day), err)
	}
	return row.model()
}

// ListLogs returns matching entries ordered by habit and day.
func (s *Store) ListLogs(ctx context.Context, filter storage.LogFilter) ([]models.LogEntry, error) {
	var (
		where []string
		args  []any
	)
	if filter.HabitID != "" {
		where = append(where, "habit_id = ?")
		args = append(args, filter.HabitID)
	}
	if !filter.From.IsZero() {
		where = append(where, "day >= ?")
		args = append(args, filter.From)
	}
	if !filter.To.IsZero() {
		where = append(where, "day <= ?")
		args = append(args, filter.To)
	}

	query := `SELECT ` + logColumns + ` FROM habit_logs`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY habit_id, day`

	var rows []logRow
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		return nil, apperrors.Persistence("list logs", err)
	}

	entries := make([]models.LogEntry, 0, len(rows))
	for _, r := range rows {
		e, err := r.model()
		if err != nil {
			return nil, apperrors.Persistence("list logs", err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// UpsertLog unconditionally stores status for the pair.
func (s *Store) UpsertLog(ctx context.Context, habitID string, day calendar.Day, status models.Status) (models.LogEntry, error) {
	if !status.Loggable() {
		return models.LogEntry{}, apperrors.Validation("status", "unsupported status %q", status)
	}
	entry, err := s.TransitionLog(ctx, habitID, day, func(models.Status) models.Status { return status })
	if err != nil {
		return models.LogEntry{}, err
	}
	return *entry, nil
}

func (s *Store) DeleteLog(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM habit_logs WHERE id = ?`), id)
	if err != nil {
		return apperrors.Persistence("delete log", err)
	}
	if err := expectOne(res, "log", id); err != nil {
		return apperrors.Persistence("delete log", err)
	}
	return nil
}

// TransitionLog performs the read-modify-write for one (habit, day) pair.
// At most one entry exists per pair; an unlogged result deletes it.
func (s *Store) TransitionLog(ctx context.Context, habitID string, day calendar.Day, next func(models.Status) models.Status) (*models.LogEntry, error) {
	if day.IsZero() {
		return nil, apperrors.Validation("day", "a calendar day is required")
	}

	var result *models.LogEntry
	err := s.withTx(ctx, "transition log", func(tx *sqlx.Tx) error {
		if s.lock != nil {
			if err := s.lock(ctx, tx, logKey(habitID, day)); err != nil {
				return err
			}
		}

		var exists int
		if err := tx.GetContext(ctx, &exists, tx.Rebind(`SELECT COUNT(*) FROM habits WHERE id = ?`), habitID); err != nil {
			return err
		}
		if exists == 0 {
			return apperrors.NotFound("habit", habitID)
		}

		var row logRow
		found := true
		err := tx.GetContext(ctx, &row, tx.Rebind(`
			SELECT `+logColumns+` FROM habit_logs
			WHERE habit_id = ? AND day = ?`), habitID, day)
		if errors.Is(err, sql.ErrNoRows) {
			found = false
		} else if err != nil {
			return err
		}

		current := models.StatusUnlogged
		if found {
			current = models.Status(row.Status)
		}
		target := next(current)

		if target == models.StatusUnlogged {
			if found {
				_, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM habit_logs WHERE id = ?`), row.ID)
				return err
			}
			return nil
		}
		if !target.Loggable() {
			return apperrors.Validation("status", "unsupported status %q", target)
		}

		if found && target == current {
			entry, err := row.model()
			if err != nil {
				return err
			}
			result = &entry
			return nil
		}

		entry := models.LogEntry{
			ID:        row.ID,
			HabitID:   habitID,
			Day:       day,
			Status:    target,
			UpdatedAt: s.now(),
		}
		if !found {
			entry.ID = uuid.NewString()
		}
		_, err = tx.ExecContext(ctx, tx.Rebind(`
			INSERT INTO habit_logs (`+logColumns+`)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT (habit_id, day) DO UPDATE SET
				status = excluded.status,
				updated_at = excluded.updated_at`),
			entry.ID, entry.HabitID, entry.Day, string(entry.Status), formatTime(entry.UpdatedAt))
		if err != nil {
			return err
		}
		result = &entry
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
