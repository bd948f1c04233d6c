package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/salim0986/okr-production-sub000/internal/api/dto"
	"github.com/salim0986/okr-production-sub000/internal/auth"
	"github.com/salim0986/okr-production-sub000/internal/service"
)

// DashboardHandler serves the role-specific landing view.
type DashboardHandler struct {
	dashboard *service.DashboardService
}

// NewDashboardHandler constructs handler.
func NewDashboardHandler(dashboard *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard}
}

// Get handles GET /dashboard.
func (h *DashboardHandler) Get(c *fiber.Ctx) error {
	principal, err := auth.MustPrincipal(c)
	if err != nil {
		return err
	}
	view, err := h.dashboard.Dashboard(c.UserContext(), principal)
	if err != nil {
		return err
	}
	out := dto.DashboardResponse{
		Role:           string(view.Role),
		RecentCheckIns: checkInsResponse(view.RecentCheckIns),
	}
	if view.Organization != nil {
		org := organizationSummaryResponse(view.Organization)
		out.Organization = &org
	}
	if view.Team != nil {
		team := teamSummaryResponse(view.Team)
		out.Team = &team
	}
	if view.Member != nil {
		member := memberSummaryResponse(view.Member)
		out.Member = &member
	}
	return c.JSON(fiber.Map{"data": out})
}
