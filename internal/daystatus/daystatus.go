// Package daystatus holds the two transition policies for a habit's log on a
// single day. Both are pure: they map the current status to the next one, and
// StatusUnlogged on either side means "no entry".
package daystatus

import "github.com/108city/habit-tracker/internal/models"

// Policy maps the current status of a (habit, day) to the status it should have next.
type Policy func(current models.Status) models.Status

// Explicit is the "log today's status" policy. Requesting the status that is
// already set clears the entry; any other request replaces it.
func Explicit(current, requested models.Status) models.Status {
	if current == requested {
		return models.StatusUnlogged
	}
	return requested
}

// Cyclic is the history-grid policy:
// unlogged -> completed -> skipped -> unlogged.
func Cyclic(current models.Status) models.Status {
	switch current {
	case models.StatusUnlogged:
		return models.StatusCompleted
	case models.StatusCompleted:
		return models.StatusSkipped
	default:
		return models.StatusUnlogged
	}
}

// Set returns the Explicit policy bound to requested.
func Set(requested models.Status) Policy {
	return func(current models.Status) models.Status {
		return Explicit(current, requested)
	}
}

// Advance returns the Cyclic policy.
func Advance() Policy {
	return Cyclic
}
