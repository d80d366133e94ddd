package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/osler-labs/clinsim-go-api/internal/config"
	"github.com/osler-labs/clinsim-go-api/internal/handler"
	"github.com/osler-labs/clinsim-go-api/internal/middleware"
	"github.com/osler-labs/clinsim-go-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AssignmentHandler *handler.AssignmentHandler
	ScoringHandler    *handler.ScoringHandler
	ReattemptHandler  *handler.ReattemptHandler
	AdminKeyHandler   *handler.AdminKeyHandler
	StatsHandler      *handler.StatsHandler
	JWTMiddleware     fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler())

	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.StatsHandler != nil {
		deps.StatsHandler.Register(api.Group("/stats"))
	}

	if deps.AssignmentHandler != nil {
		assignments := api.Group("/assignments", jwtMiddleware)
		deps.AssignmentHandler.Register(assignments)
	}

	if deps.ScoringHandler != nil {
		scoring := api.Group("/scoring", jwtMiddleware, middleware.RequireRole("admin", "instructor"))
		deps.ScoringHandler.Register(scoring)
	}

	if deps.ReattemptHandler != nil {
		reattempts := api.Group("/reattempts", jwtMiddleware)
		deps.ReattemptHandler.Register(reattempts)
	}

	if deps.AdminKeyHandler != nil {
		admin := api.Group("/admin", jwtMiddleware, middleware.RequireRole("admin"))
		deps.AdminKeyHandler.Register(admin)
	}
}
