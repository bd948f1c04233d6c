package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/salim0986/okr-production-sub000/internal/api/http/handlers"
	"github.com/salim0986/okr-production-sub000/internal/auth"
	"github.com/salim0986/okr-production-sub000/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Organization   *handlers.OrganizationHandler
	Teams          *handlers.TeamsHandler
	Users          *handlers.UsersHandler
	Objectives     *handlers.ObjectivesHandler
	CheckIns       *handlers.CheckInsHandler
	Comments       *handlers.CommentsHandler
	Notifications  *handlers.NotificationsHandler
	Dashboard      *handlers.DashboardHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)

	protected := app.Group("", cfg.AuthMiddleware.Handle, auth.RequireRole())
	protected.Get("/auth/me", cfg.Auth.Me)
	protected.Get("/dashboard", cfg.Dashboard.Get)

	adminOnly := auth.RequireRole(domain.RoleAdmin)
	reviewers := auth.RequireRole(domain.RoleAdmin, domain.RoleTeamLead)

	org := protected.Group("/organization")
	org.Get("", cfg.Organization.Get)
	org.Patch("", adminOnly, cfg.Organization.Rename)
	org.Get("/summary", adminOnly, cfg.Organization.Summary)

	teams := protected.Group("/teams")
	teams.Post("", adminOnly, cfg.Teams.Create)
	teams.Get("", cfg.Teams.List)
	teams.Get("/:id", cfg.Teams.Get)
	teams.Patch("/:id", adminOnly, cfg.Teams.Rename)
	teams.Delete("/:id", adminOnly, cfg.Teams.Delete)
	teams.Put("/:id/lead", adminOnly, cfg.Teams.AssignLead)
	teams.Get("/:id/members", cfg.Teams.Members)
	teams.Get("/:id/summary", cfg.Teams.Summary)

	users := protected.Group("/users")
	users.Post("", adminOnly, cfg.Users.Create)
	users.Get("", cfg.Users.List)
	users.Get("/:id", cfg.Users.Get)
	users.Patch("/:id", adminOnly, cfg.Users.Update)
	users.Delete("/:id", adminOnly, cfg.Users.Deactivate)
	users.Delete("/:id/purge", adminOnly, cfg.Users.Purge)
	users.Get("/:id/check-ins", cfg.Users.CheckIns)

	objectives := protected.Group("/objectives")
	objectives.Post("", reviewers, cfg.Objectives.Create)
	objectives.Get("", cfg.Objectives.List)
	objectives.Get("/:id", cfg.Objectives.Get)
	objectives.Patch("/:id", reviewers, cfg.Objectives.Update)
	objectives.Delete("/:id", reviewers, cfg.Objectives.Delete)
	objectives.Post("/:id/key-results", reviewers, cfg.Objectives.CreateKeyResult)

	keyResults := protected.Group("/key-results")
	keyResults.Get("/:id", cfg.Objectives.GetKeyResult)
	keyResults.Patch("/:id", reviewers, cfg.Objectives.UpdateKeyResult)
	keyResults.Delete("/:id", reviewers, cfg.Objectives.DeleteKeyResult)
	keyResults.Post("/:id/check-ins", cfg.CheckIns.Submit)
	keyResults.Get("/:id/check-ins", cfg.CheckIns.ListForKeyResult)
	keyResults.Post("/:id/comments", cfg.Comments.Create)
	keyResults.Get("/:id/comments", cfg.Comments.List)

	checkIns := protected.Group("/check-ins")
	checkIns.Get("/pending", reviewers, cfg.CheckIns.Pending)
	checkIns.Get("/:id", cfg.CheckIns.Get)
	checkIns.Post("/:id/approve", reviewers, cfg.CheckIns.Approve)
	checkIns.Post("/:id/reject", reviewers, cfg.CheckIns.Reject)

	comments := protected.Group("/comments")
	comments.Patch("/:id", cfg.Comments.Update)
	comments.Delete("/:id", cfg.Comments.Delete)

	notifications := protected.Group("/notifications")
	notifications.Get("", cfg.Notifications.List)
	notifications.Post("/read-all", cfg.Notifications.MarkAllRead)
	notifications.Post("/:id/read", cfg.Notifications.MarkRead)
}
