package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/spec-kit/ticket-import/internal/api/http/handlers"
	"github.com/spec-kit/ticket-import/internal/auth"
	"github.com/spec-kit/ticket-import/internal/domain"
	"github.com/spec-kit/ticket-import/internal/observability"
	"github.com/spec-kit/ticket-import/internal/repository"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Imports        *handlers.ImportsHandler
	AuthMiddleware *auth.AuthMiddleware
	Rights         repository.RightsRepository
	Metrics        *observability.Metrics
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))
	}

	app.Post("/auth/login", cfg.Auth.Login)

	canRead := auth.RequireRight(cfg.Rights, domain.RightNameImport, domain.RightRead)
	canUpdate := auth.RequireRight(cfg.Rights, domain.RightNameImport, domain.RightUpdate)
	canCreate := auth.RequireRight(cfg.Rights, domain.RightNameImport, domain.RightCreate)

	imports := app.Group("/imports", cfg.AuthMiddleware.Handle)
	imports.Get("/fields", canRead, cfg.Imports.Fields)
	imports.Post("/mapping", canRead, cfg.Imports.Mapping)
	imports.Get("/config", canRead, cfg.Imports.GetDefaults)
	imports.Put("/config", canUpdate, cfg.Imports.SaveDefaults)
	imports.Get("/", canRead, cfg.Imports.List)
	imports.Get("/:id", canRead, cfg.Imports.Get)
	imports.Post("/", canCreate, cfg.Imports.Create)
}
