package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/nightstudy-service/internal/api/http/handlers"
	"github.com/spec-kit/nightstudy-service/internal/auth"
	"github.com/spec-kit/nightstudy-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Roster         *handlers.RosterHandler
	Attendance     *handlers.AttendanceHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	api := app.Group("/api")
	requireAuth := cfg.AuthMiddleware.Handle
	adminOnly := auth.RequireRole(domain.RoleAdmin)
	checkoutOnly := auth.RequireRole(domain.RoleCheckout)

	// Guards are attached per route; a group-level Use would also catch
	// sibling paths that share the prefix.
	user := api.Group("/user")
	user.Post("/register", cfg.Users.Register)
	user.Post("/login", cfg.Users.Login)
	user.Post("/refresh", cfg.Users.Refresh)
	user.Post("/logout", cfg.Users.Logout)
	user.Get("/me", requireAuth, cfg.Users.Me)

	api.Get("/me/schedule", requireAuth, cfg.Roster.MySchedule)
	api.Get("/me/attendance", requireAuth, cfg.Attendance.Mine)

	api.Post("/checkout/attendance", requireAuth, checkoutOnly, cfg.Attendance.Record)

	api.Get("/users", requireAuth, adminOnly, cfg.Users.List)
	api.Patch("/users/:id/role", requireAuth, adminOnly, cfg.Users.UpdateRole)

	api.Get("/students", requireAuth, adminOnly, cfg.Roster.ListStudents)
	api.Post("/students", requireAuth, adminOnly, cfg.Roster.CreateStudent)
	api.Get("/students/:id", requireAuth, adminOnly, cfg.Roster.GetStudent)

	api.Get("/schedules", requireAuth, adminOnly, cfg.Roster.ListSchedules)
	api.Get("/schedules/:studentId", requireAuth, adminOnly, cfg.Roster.GetSchedule)
	api.Put("/schedules/:studentId", requireAuth, adminOnly, cfg.Roster.PutSchedule)

	api.Get("/attendance", requireAuth, adminOnly, cfg.Attendance.Query)
	api.Get("/metrics", requireAuth, adminOnly, cfg.Health.Metrics)
}
