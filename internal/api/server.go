// Package api serves the tracker over HTTP as JSON. Every mutation returns
// the updated entity; clients fetch /api/snapshot for derived values.
package api

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/108city/habit-tracker/internal/constants"
	apperrors "github.com/108city/habit-tracker/internal/errors"
	"github.com/108city/habit-tracker/internal/logger"
	"github.com/108city/habit-tracker/internal/tracker"
)

type Server struct {
	app     *fiber.App
	tracker *tracker.Service
}

func New(svc *tracker.Service) *Server {
	app := fiber.New(fiber.Config{
		AppName:               constants.AppName,
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
	})
	app.Use(recover.New())
	app.Use(requestLogger())

	s := &Server{app: app, tracker: svc}
	s.routes()
	return s
}

// App exposes the fiber application, mainly for app.Test.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) routes() {
	s.app.Get("/healthz", s.health)

	api := s.app.Group("/api")
	api.Get("/snapshot", s.snapshot)

	habits := api.Group("/habits")
	habits.Get("/", s.listHabits)
	habits.Post("/", s.createHabit)
	habits.Patch("/:id", s.updateHabit)
	habits.Post("/:id/archive", s.archiveHabit)
	habits.Post("/:id/reactivate", s.reactivateHabit)
	habits.Delete("/:id", s.deleteHabit)
	habits.Get("/:id/logs", s.listLogs)
	habits.Put("/:id/logs/:day", s.setStatus)
	habits.Post("/:id/logs/:day/advance", s.advanceStatus)

	milestones := api.Group("/milestones")
	milestones.Get("/", s.listMilestones)
	milestones.Post("/", s.createMilestone)
	milestones.Patch("/:id", s.updateMilestone)
	milestones.Delete("/:id", s.deleteMilestone)
}

// Listen serves on addr until ctx is cancelled.
func (s *Server) Listen(ctx context.Context, addr string) error {
	errc := make(chan error, 1)
	go func() { errc <- s.app.Listen(addr) }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		logger.Info("Shutting down HTTP server")
		return s.app.ShutdownWithTimeout(5 * time.Second)
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

// errorHandler maps error kinds onto status codes.
func errorHandler(c *fiber.Ctx, err error) error {
	code := statusFor(err)
	if code >= fiber.StatusInternalServerError {
		logger.Error("Request failed", "method", c.Method(), "path", c.Path(), "error", err)
	}
	return c.Status(code).JSON(errorResponse{Error: err.Error()})
}

func requestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			// the error handler has not run yet
			status = statusFor(err)
		}
		logger.Debug("HTTP request",
			"method", c.Method(),
			"path", c.Path(),
			"status", status,
			"latency", time.Since(start),
		)
		return err
	}
}

func statusFor(err error) int {
	var fe *fiber.Error
	switch {
	case apperrors.IsValidation(err):
		return fiber.StatusBadRequest
	case apperrors.IsNotFound(err):
		return fiber.StatusNotFound
	case errors.As(err, &fe):
		return fe.Code
	}
	return fiber.StatusInternalServerError
}
