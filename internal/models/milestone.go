package models

import (
	"time"

	"github.com/108city/habit-tracker/internal/calendar"
)

// Phase classifies a milestone relative to today. It is always derived, never stored.
type Phase string

const (
	PhaseUpcoming Phase = "upcoming"
	PhaseCurrent  Phase = "current"
	PhaseArchived Phase = "archived"
)

// Milestone is a named, date-bounded window used to scope aggregation.
// It references no habits; overlap is computed at query time.
type Milestone struct {
	ID        string       `db:"id" json:"id"`
	Title     string       `db:"title" json:"title"`
	StartDate calendar.Day `db:"start_date" json:"startDate"`
	EndDate   calendar.Day `db:"end_date" json:"endDate"`
	CreatedAt time.Time    `db:"created_at" json:"createdAt"`
}

// PhaseOn classifies the milestone for the given day.
func (m Milestone) PhaseOn(today calendar.Day) Phase {
	switch {
	case today.Before(m.StartDate):
		return PhaseUpcoming
	case today.After(m.EndDate):
		return PhaseArchived
	default:
		return PhaseCurrent
	}
}
