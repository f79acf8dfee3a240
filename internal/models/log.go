package models

import (
	"time"

	"github.com/108city/habit-tracker/internal/calendar"
)

// Status is the logged outcome of a habit on one day. The empty status means
// no entry exists ("unlogged") and is never persisted.
type Status string

const (
	StatusUnlogged  Status = ""
	StatusCompleted Status = "completed"
	StatusSkipped   Status = "skipped"
)

// Loggable reports whether s may be stored on a LogEntry.
func (s Status) Loggable() bool {
	return s == StatusCompleted || s == StatusSkipped
}

func (s Status) String() string {
	if s == StatusUnlogged {
		return "unlogged"
	}
	return string(s)
}

// ParseStatus accepts "completed"/"done"/"c" and "skipped"/"skip"/"s".
func ParseStatus(s string) (Status, bool) {
	switch s {
	case "completed", "complete", "done", "c":
		return StatusCompleted, true
	case "skipped", "skip", "s":
		return StatusSkipped, true
	}
	return StatusUnlogged, false
}

// LogEntry is the per-day record of a habit. At most one exists per (HabitID, Day).
type LogEntry struct {
	ID        string       `db:"id" json:"id"`
	HabitID   string       `db:"habit_id" json:"habitId"`
	Day       calendar.Day `db:"day" json:"day"`
	Status    Status       `db:"status" json:"status"`
	UpdatedAt time.Time    `db:"updated_at" json:"updatedAt"`
}
