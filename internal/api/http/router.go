package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/facilitas/chamado-service/internal/api/http/handlers"
	"github.com/facilitas/chamado-service/internal/auth"
	"github.com/facilitas/chamado-service/internal/domain"
	"github.com/facilitas/chamado-service/internal/realtime"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Tickets        *handlers.TicketsHandler
	Sectors        *handlers.SectorsHandler
	Policies       *handlers.PoliciesHandler
	Dashboard      *handlers.DashboardHandler
	Hub            *realtime.Hub
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Users.Register)
	authGroup.Post("/login", cfg.Users.Login)
	authGroup.Post("/password/change", cfg.AuthMiddleware.Handle, cfg.Users.ChangePassword)
	authGroup.Get("/me", cfg.AuthMiddleware.Handle, cfg.Users.Me)

	app.Post("/usuarios", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleAdmin), cfg.Users.CreateUser)

	chamados := app.Group("/chamados", cfg.AuthMiddleware.Handle)
	chamados.Post("/", cfg.Tickets.CreateTicket)
	chamados.Get("/", cfg.Tickets.ListTickets)
	chamados.Get("/:id", cfg.Tickets.GetTicket)
	chamados.Post("/:id/iniciar", auth.RequireStaff(), cfg.Tickets.StartTicket)
	chamados.Post("/:id/concluir", auth.RequireStaff(), cfg.Tickets.CompleteTicket)
	chamados.Post("/:id/atribuir", auth.RequireRole(domain.RoleAdmin, domain.RoleManager), cfg.Tickets.AssignTicket)
	// No role guard: a sectorless requester may delete their own ticket, so
	// the decision belongs to CanDeleteTicket inside the service.
	chamados.Delete("/:id", cfg.Tickets.DeleteTicket)
	chamados.Get("/:id/historico", cfg.Tickets.ListHistory)

	setores := app.Group("/setores", cfg.AuthMiddleware.Handle)
	setores.Get("/", cfg.Sectors.ListSectors)
	setores.Get("/:id/usuarios", auth.RequireStaff(), cfg.Sectors.ListSectorUsers)
	setores.Post("/", auth.RequireRole(domain.RoleAdmin, domain.RoleManager), cfg.Sectors.CreateSector)
	setores.Put("/:id", auth.RequireRole(domain.RoleAdmin, domain.RoleManager), cfg.Sectors.UpdateSector)
	setores.Delete("/:id", auth.RequireRole(domain.RoleAdmin, domain.RoleManager), cfg.Sectors.DeleteSector)

	prazos := app.Group("/prazos", cfg.AuthMiddleware.Handle)
	prazos.Get("/", auth.RequireStaff(), cfg.Policies.ListPolicies)
	prazos.Post("/", auth.RequireRole(domain.RoleAdmin, domain.RoleManager), cfg.Policies.CreatePolicy)
	prazos.Put("/:id", auth.RequireRole(domain.RoleAdmin, domain.RoleManager), cfg.Policies.UpdatePolicy)
	prazos.Delete("/:id", auth.RequireRole(domain.RoleAdmin, domain.RoleManager), cfg.Policies.DeletePolicy)

	app.Get("/dashboard", cfg.AuthMiddleware.Handle, cfg.Dashboard.Summary)

	if cfg.Hub != nil {
		app.Use("/ws", func(c *fiber.Ctx) error {
			if websocket.IsWebSocketUpgrade(c) {
				return c.Next()
			}
			return fiber.ErrUpgradeRequired
		})
		app.Get("/ws/chamados", websocket.New(cfg.Hub.Serve))
	}
}
