package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/salim0986/okr-production-sub000/internal/api/dto"
	"github.com/salim0986/okr-production-sub000/internal/auth"
	"github.com/salim0986/okr-production-sub000/internal/service"
	"github.com/salim0986/okr-production-sub000/internal/workflow"
)

// CheckInsHandler exposes the check-in workflow.
type CheckInsHandler struct {
	checkIns *service.CheckInService
}

// NewCheckInsHandler constructs handler.
func NewCheckInsHandler(checkIns *service.CheckInService) *CheckInsHandler {
	return &CheckInsHandler{checkIns: checkIns}
}

// Submit handles POST /key-results/:id/check-ins.
func (h *CheckInsHandler) Submit(c *fiber.Ctx) error {
	principal, err := auth.MustPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.SubmitCheckInRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	date, err := dto.ParseOptionalDate("check_in_date", req.CheckInDate)
	if err != nil {
		return err
	}
	checkIn, err := h.checkIns.Submit(c.UserContext(), principal, c.Params("id"), workflow.SubmitInput{
		ProgressValue: *req.ProgressValue,
		Comment:       req.Comment,
		CheckInDate:   date,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": checkInResponse(checkIn)})
}

// ListForKeyResult handles GET /key-results/:id/check-ins.
func (h *CheckInsHandler) ListForKeyResult(c *fiber.Ctx) error {
	principal, err := auth.MustPrincipal(c)
	if err != nil {
		return err
	}
	limit, offset := page(c)
	checkIns, err := h.checkIns.ListForKeyResult(c.UserContext(), principal, c.Params("id"), limit, offset)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": checkInsResponse(checkIns)})
}

// Pending handles GET /check-ins/pending.
func (h *CheckInsHandler) Pending(c *fiber.Ctx) error {
	principal, err := auth.MustPrincipal(c)
	if err != nil {
		return err
	}
	limit, offset := page(c)
	checkIns, err := h.checkIns.Pending(c.UserContext(), principal, limit, offset)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": checkInsResponse(checkIns)})
}

// Get handles GET /check-ins/:id.
func (h *CheckInsHandler) Get(c *fiber.Ctx) error {
	principal, err := auth.MustPrincipal(c)
	if err != nil {
		return err
	}
	checkIn, err := h.checkIns.Get(c.UserContext(), principal, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": checkInResponse(checkIn)})
}

// Approve handles POST /check-ins/:id/approve.
func (h *CheckInsHandler) Approve(c *fiber.Ctx) error {
	principal, err := auth.MustPrincipal(c)
	if err != nil {
		return err
	}
	review, err := h.checkIns.Approve(c.UserContext(), principal, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": reviewResponse(review)})
}

// Reject handles POST /check-ins/:id/reject.
func (h *CheckInsHandler) Reject(c *fiber.Ctx) error {
	principal, err := auth.MustPrincipal(c)
	if err != nil {
		return err
	}
	review, err := h.checkIns.Reject(c.UserContext(), principal, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": reviewResponse(review)})
}
