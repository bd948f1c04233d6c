package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/salim0986/okr-production-sub000/internal/api/dto"
	"github.com/salim0986/okr-production-sub000/internal/auth"
	"github.com/salim0986/okr-production-sub000/internal/service"
)

// OrganizationHandler serves the caller's organization.
type OrganizationHandler struct {
	orgs      *service.OrganizationService
	dashboard *service.DashboardService
}

// NewOrganizationHandler constructs handler.
func NewOrganizationHandler(orgs *service.OrganizationService, dashboard *service.DashboardService) *OrganizationHandler {
	return &OrganizationHandler{orgs: orgs, dashboard: dashboard}
}

// Get handles GET /organization.
func (h *OrganizationHandler) Get(c *fiber.Ctx) error {
	principal, err := auth.MustPrincipal(c)
	if err != nil {
		return err
	}
	org, err := h.orgs.Get(c.UserContext(), principal)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": organizationResponse(org)})
}

// Rename handles PATCH /organization.
func (h *OrganizationHandler) Rename(c *fiber.Ctx) error {
	principal, err := auth.MustPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.RenameRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	org, err := h.orgs.Rename(c.UserContext(), principal, req.Name)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": organizationResponse(org)})
}

// Summary handles GET /organization/summary.
func (h *OrganizationHandler) Summary(c *fiber.Ctx) error {
	principal, err := auth.MustPrincipal(c)
	if err != nil {
		return err
	}
	summary, err := h.dashboard.OrganizationSummary(c.UserContext(), principal)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": organizationSummaryResponse(summary)})
}
