package handler

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"exercises/internal/repository"
	"exercises/internal/service"
)

// PingFunc checks connectivity to the exercise store.
type PingFunc func(ctx context.Context) error

// exportRequest is the body accepted by POST /exports. All fields are optional.
type exportRequest struct {
	Filter     repository.Filter `json:"filter"`
	Projection string            `json:"projection"`
	Limit      int64             `json:"limit"`
}

// RegisterRoutes attaches the operational HTTP routes to the provided Fiber app.
// Exercise CRUD is consumed in-process through repository.ExerciseRepository and has no routes here.
func RegisterRoutes(app *fiber.App, ping PingFunc, gatherer prometheus.Gatherer, exportSvc service.ExportService) {
	app.Get("/health", HealthCheck(ping))
	app.Get("/healthz", LivenessProbe())
	app.Get("/metrics", Metrics(gatherer))
	app.Post("/exports", ExportExercises(exportSvc))
}

// HealthCheck reports whether the exercise store answers a ping.
func HealthCheck(ping PingFunc) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := ping(ctx); err != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// LivenessProbe always answers 200 while the process is serving.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

// Metrics exposes the collectors of gatherer in the Prometheus text format.
func Metrics(gatherer prometheus.Gatherer) fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
}

// ExportExercises snapshots the matching exercises to object storage.
func ExportExercises(exportSvc service.ExportService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req exportRequest
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&req); err != nil {
				return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
			}
		}

		proj, err := repository.ParseProjection(req.Projection)
		if err != nil {
			return writeValidationError(c, err)
		}

		res, err := exportSvc.Export(c.UserContext(), repository.FindQuery{
			Filter:     req.Filter,
			Projection: proj,
			Limit:      req.Limit,
		})
		if err != nil {
			switch {
			case errors.Is(err, repository.ErrValidation):
				return writeValidationError(c, err)
			case errors.Is(err, service.ErrExportDisabled):
				return writeError(c, fiber.StatusServiceUnavailable, "EXPORT_DISABLED", "export is disabled")
			default:
				return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
			}
		}
		return c.Status(fiber.StatusCreated).JSON(res)
	}
}
