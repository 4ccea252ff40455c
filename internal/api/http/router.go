package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/senelec/reclamations-api/internal/api/http/handlers"
	"github.com/senelec/reclamations-api/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Users          *handlers.UsersHandler
	Dashboard      *handlers.DashboardHandler
	Categories     *handlers.CategoriesHandler
	Tickets        *handlers.TicketsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes. Every /api route resolves the optional
// session; role checks happen in the services.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/", handlers.Home)

	health := app.Group("/health")
	health.Get("/live", cfg.Health.Live)
	health.Get("/ready", cfg.Health.Ready)
	health.Get("/metrics", cfg.Health.Metrics)

	api := app.Group("/api", cfg.AuthMiddleware.Handle)
	authn := auth.RequireAuthenticated()

	api.Post("/login/", cfg.Auth.Login)
	api.Post("/logout/", cfg.Auth.Logout)
	api.Post("/send-credentials/", cfg.Auth.SendCredentials)
	api.Post("/change-password/", authn, cfg.Auth.ChangePassword)

	// add-user answers 403, not 401, to anonymous callers.
	api.Post("/add-user/", cfg.Users.AddUser)
	api.Get("/users/", authn, cfg.Users.List)
	api.Patch("/users/:id/", authn, cfg.Users.Update)
	api.Delete("/users/:id/", authn, cfg.Users.Delete)

	api.Get("/dashboard/", authn, cfg.Dashboard.Dashboard)
	api.Get("/dashboard/statistiques-generales/", authn, cfg.Dashboard.Statistics)

	api.Get("/categories/", authn, cfg.Categories.List)
	api.Post("/categories/", authn, cfg.Categories.Create)
	api.Patch("/categories/:id/", authn, cfg.Categories.Update)
	api.Delete("/categories/:id/", authn, cfg.Categories.Delete)

	api.Post("/reclamations/", authn, cfg.Tickets.CreateTicket)
	api.Get("/reclamations/", authn, cfg.Tickets.ListTickets)
	api.Get("/reclamations/:id/", authn, cfg.Tickets.GetTicket)
	api.Patch("/reclamations/:id/statut/", authn, cfg.Tickets.UpdateStatus)
	api.Patch("/reclamations/:id/technicien/", authn, cfg.Tickets.AssignTechnician)
	api.Get("/reclamations/:id/historique/", authn, cfg.Tickets.History)
}
