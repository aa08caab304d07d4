package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/campushelp/helpdesk-service/internal/api/http/handlers"
	"github.com/campushelp/helpdesk-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Tickets        *handlers.TicketsHandler
	Stats          *handlers.StatsHandler
	Staff          *handlers.StaffHandler
	AuthMiddleware *auth.AuthMiddleware

	// TicketCreateLimit is optional; nil disables throttling.
	TicketCreateLimit fiber.Handler
	// ProvisionGuard protects POST /it-staff with the provisioning key.
	ProvisionGuard fiber.Handler
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/health/metrics", cfg.Health.Metrics)

	app.Post("/it-staff", cfg.ProvisionGuard, cfg.Staff.ProvisionStaff)

	api := app.Group("", cfg.AuthMiddleware.Handle)

	tickets := api.Group("/tickets")
	if cfg.TicketCreateLimit != nil {
		tickets.Post("/", cfg.TicketCreateLimit, cfg.Tickets.CreateTicket)
	} else {
		tickets.Post("/", cfg.Tickets.CreateTicket)
	}
	tickets.Get("/", cfg.Tickets.ListTickets)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Patch("/:id", auth.RequireAdmin(), cfg.Tickets.UpdateTicket)
	tickets.Post("/:id/comments", cfg.Tickets.AddComment)
	tickets.Get("/:id/comments", cfg.Tickets.ListComments)

	api.Get("/stats", cfg.Stats.GetStats)
	api.Get("/it-staff", auth.RequireAdmin(), cfg.Staff.ListStaff)
}
