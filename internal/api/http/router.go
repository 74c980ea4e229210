package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/complaint-service/internal/api/http/handlers"
	"github.com/spec-kit/complaint-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health        *handlers.HealthHandler
	Auth          *handlers.AuthHandler
	Complaints    *handlers.ComplaintsHandler
	Feedback      *handlers.FeedbackHandler
	Admin         *handlers.AdminHandler
	Authenticator *auth.Authenticator
}

// RegisterRoutes wires HTTP routes. Every /api route except register and
// login resolves the caller first; capability checks happen in the services.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/health/metrics", cfg.Health.Metrics)

	api := app.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Get("/me", cfg.Authenticator.Handle, cfg.Auth.Me)
	authGroup.Post("/logout", cfg.Authenticator.Handle, cfg.Auth.Logout)

	complaints := api.Group("/complaints", cfg.Authenticator.Handle)
	complaints.Get("/", cfg.Complaints.List)
	complaints.Post("/", cfg.Complaints.Create)
	complaints.Get("/:id", cfg.Complaints.Get)
	complaints.Put("/:id", cfg.Complaints.Update)
	complaints.Delete("/:id", cfg.Complaints.Delete)
	complaints.Get("/:id/history", cfg.Complaints.History)

	feedback := api.Group("/feedback", cfg.Authenticator.Handle)
	feedback.Get("/", cfg.Feedback.List)
	feedback.Post("/", cfg.Feedback.Create)
	feedback.Put("/:id", cfg.Feedback.Update)

	admin := api.Group("/admin", cfg.Authenticator.Handle)
	admin.Get("/users", cfg.Admin.ListUsers)
	admin.Post("/users", cfg.Admin.CreateUser)
	admin.Get("/stats", cfg.Admin.Stats)
	admin.Get("/insights", cfg.Admin.Insights)
}
