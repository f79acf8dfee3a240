package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/108city/habit-tracker/internal/calendar"
	apperrors "github.com/108city/habit-tracker/internal/errors"
	"github.com/108city/habit-tracker/internal/models"
	"github.com/108city/habit-tracker/internal/tracker"
)

type entryResponse struct {
	Entry *models.LogEntry `json:"entry"`
}

type statusRequest struct {
	Status models.Status `json:"status"`
}

func (s *Server) health(c *fiber.Ctx) error {
	if err := s.tracker.Store().Ping(c.UserContext()); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable", "error": err.Error()})
	}
	return c.JSON(fiber.Map{"status": "ok"})
}

func (s *Server) snapshot(c *fiber.Ctx) error {
	snap, err := s.tracker.Snapshot(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(snap)
}

func (s *Server) listHabits(c *fiber.Ctx) error {
	var (
		habits []models.Habit
		err    error
	)
	if c.QueryBool("archived") {
		habits, err = s.tracker.ListArchived(c.UserContext())
	} else {
		habits, err = s.tracker.ListActive(c.UserContext())
	}
	if err != nil {
		return err
	}
	if habits == nil {
		habits = []models.Habit{}
	}
	return c.JSON(habits)
}

func (s *Server) createHabit(c *fiber.Ctx) error {
	var in tracker.HabitInput
	if err := parseBody(c, &in); err != nil {
		return err
	}
	h, err := s.tracker.CreateHabit(c.UserContext(), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(h)
}

func (s *Server) updateHabit(c *fiber.Ctx) error {
	var patch tracker.HabitPatch
	if err := parseBody(c, &patch); err != nil {
		return err
	}
	h, err := s.tracker.UpdateHabit(c.UserContext(), c.Params("id"), patch)
	if err != nil {
		return err
	}
	return c.JSON(h)
}

func (s *Server) archiveHabit(c *fiber.Ctx) error {
	h, err := s.tracker.ArchiveHabit(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(h)
}

func (s *Server) reactivateHabit(c *fiber.Ctx) error {
	h, err := s.tracker.ReactivateHabit(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(h)
}

func (s *Server) deleteHabit(c *fiber.Ctx) error {
	if err := s.tracker.DeleteHabit(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) listLogs(c *fiber.Ctx) error {
	from, err := queryDay(c, "from")
	if err != nil {
		return err
	}
	to, err := queryDay(c, "to")
	if err != nil {
		return err
	}
	logs, err := s.tracker.LogsFor(c.UserContext(), c.Params("id"), from, to)
	if err != nil {
		return err
	}
	if logs == nil {
		logs = []models.LogEntry{}
	}
	return c.JSON(logs)
}

func (s *Server) setStatus(c *fiber.Ctx) error {
	day, err := paramDay(c)
	if err != nil {
		return err
	}
	var req statusRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	entry, err := s.tracker.SetStatus(c.UserContext(), c.Params("id"), day, req.Status)
	if err != nil {
		return err
	}
	return c.JSON(entryResponse{Entry: entry})
}

func (s *Server) advanceStatus(c *fiber.Ctx) error {
	day, err := paramDay(c)
	if err != nil {
		return err
	}
	entry, err := s.tracker.AdvanceStatus(c.UserContext(), c.Params("id"), day)
	if err != nil {
		return err
	}
	return c.JSON(entryResponse{Entry: entry})
}

func (s *Server) listMilestones(c *fiber.Ctx) error {
	ms, err := s.tracker.ListMilestones(c.UserContext())
	if err != nil {
		return err
	}
	if ms == nil {
		ms = []models.Milestone{}
	}
	return c.JSON(ms)
}

func (s *Server) createMilestone(c *fiber.Ctx) error {
	var in tracker.MilestoneInput
	if err := parseBody(c, &in); err != nil {
		return err
	}
	m, err := s.tracker.CreateMilestone(c.UserContext(), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(m)
}

func (s *Server) updateMilestone(c *fiber.Ctx) error {
	var patch tracker.MilestonePatch
	if err := parseBody(c, &patch); err != nil {
		return err
	}
	m, err := s.tracker.UpdateMilestone(c.UserContext(), c.Params("id"), patch)
	if err != nil {
		return err
	}
	return c.JSON(m)
}

func (s *Server) deleteMilestone(c *fiber.Ctx) error {
	if err := s.tracker.DeleteMilestone(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func parseBody(c *fiber.Ctx, v interface{}) error {
	if err := c.BodyParser(v); err != nil {
		return apperrors.Validation("body", "invalid request body: %v", err)
	}
	return nil
}

func paramDay(c *fiber.Ctx) (calendar.Day, error) {
	day, err := calendar.Parse(c.Params("day"))
	if err != nil {
		return calendar.Day{}, apperrors.Validation("day", "%v", err)
	}
	return day, nil
}

func queryDay(c *fiber.Ctx, key string) (calendar.Day, error) {
	raw := c.Query(key)
	if raw == "" {
		return calendar.Day{}, nil
	}
	day, err := calendar.Parse(raw)
	if err != nil {
		return calendar.Day{}, apperrors.Validation(key, "%v", err)
	}
	return day, nil
}
