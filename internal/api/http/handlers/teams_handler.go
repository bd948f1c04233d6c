package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/salim0986/okr-production-sub000/internal/api/dto"
	"github.com/salim0986/okr-production-sub000/internal/auth"
	"github.com/salim0986/okr-production-sub000/internal/service"
)

// TeamsHandler manages team endpoints.
type TeamsHandler struct {
	teams     *service.TeamService
	dashboard *service.DashboardService
}

// NewTeamsHandler constructs handler.
func NewTeamsHandler(teams *service.TeamService, dashboard *service.DashboardService) *TeamsHandler {
	return &TeamsHandler{teams: teams, dashboard: dashboard}
}

// Create handles POST /teams.
func (h *TeamsHandler) Create(c *fiber.Ctx) error {
	principal, err := auth.MustPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.RenameRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	team, err := h.teams.Create(c.UserContext(), principal, req.Name)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": teamResponse(team)})
}

// List handles GET /teams.
func (h *TeamsHandler) List(c *fiber.Ctx) error {
	principal, err := auth.MustPrincipal(c)
	if err != nil {
		return err
	}
	teams, err := h.teams.List(c.UserContext(), principal)
	if err != nil {
		return err
	}
	items := make([]dto.TeamResponse, 0, len(teams))
	for i := range teams {
		items = append(items, teamResponse(&teams[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get handles GET /teams/:id.
func (h *TeamsHandler) Get(c *fiber.Ctx) error {
	principal, err := auth.MustPrincipal(c)
	if err != nil {
		return err
	}
	team, err := h.teams.Get(c.UserContext(), principal, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": teamResponse(team)})
}

// Rename handles PATCH /teams/:id.
func (h *TeamsHandler) Rename(c *fiber.Ctx) error {
	principal, err := auth.MustPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.RenameRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	team, err := h.teams.Rename(c.UserContext(), principal, c.Params("id"), req.Name)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": teamResponse(team)})
}

// Delete handles DELETE /teams/:id.
func (h *TeamsHandler) Delete(c *fiber.Ctx) error {
	principal, err := auth.MustPrincipal(c)
	if err != nil {
		return err
	}
	if err := h.teams.Delete(c.UserContext(), principal, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// AssignLead handles PUT /teams/:id/lead.
func (h *TeamsHandler) AssignLead(c *fiber.Ctx) error {
	principal, err := auth.MustPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.AssignLeadRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	team, err := h.teams.AssignLead(c.UserContext(), principal, c.Params("id"), req.UserID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": teamResponse(team)})
}

// Members handles GET /teams/:id/members.
func (h *TeamsHandler) Members(c *fiber.Ctx) error {
	principal, err := auth.MustPrincipal(c)
	if err != nil {
		return err
	}
	users, err := h.teams.Members(c.UserContext(), principal, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": usersResponse(users)})
}

// Summary handles GET /teams/:id/summary.
func (h *TeamsHandler) Summary(c *fiber.Ctx) error {
	principal, err := auth.MustPrincipal(c)
	if err != nil {
		return err
	}
	summary, err := h.dashboard.TeamSummary(c.UserContext(), principal, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": teamSummaryResponse(summary)})
}
