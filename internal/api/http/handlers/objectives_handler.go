package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/salim0986/okr-production-sub000/internal/api/dto"
	"github.com/salim0986/okr-production-sub000/internal/auth"
	"github.com/salim0986/okr-production-sub000/internal/domain"
	"github.com/salim0986/okr-production-sub000/internal/service"
	apperrors "github.com/salim0986/okr-production-sub000/pkg/util"
)

// ObjectivesHandler manages objectives and their key results.
type ObjectivesHandler struct {
	objectives *service.ObjectiveService
}

// NewObjectivesHandler constructs handler.
func NewObjectivesHandler(objectives *service.ObjectiveService) *ObjectivesHandler {
	return &ObjectivesHandler{objectives: objectives}
}

// Create handles POST /objectives.
func (h *ObjectivesHandler) Create(c *fiber.Ctx) error {
	principal, err := auth.MustPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.CreateObjectiveRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	start, err := dto.ParseDate("start_date", req.StartDate)
	if err != nil {
		return err
	}
	end, err := dto.ParseDate("end_date", req.EndDate)
	if err != nil {
		return err
	}
	objective, err := h.objectives.Create(c.UserContext(), principal, service.CreateObjectiveInput{
		TeamID:      req.TeamID,
		Title:       req.Title,
		Description: req.Description,
		StartDate:   start,
		EndDate:     end,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": objectiveResponse(objective)})
}

// List handles GET /objectives. status accepts a comma separated list.
func (h *ObjectivesHandler) List(c *fiber.Ctx) error {
	principal, err := auth.MustPrincipal(c)
	if err != nil {
		return err
	}
	statuses, err := parseStatuses(c.Query("status"))
	if err != nil {
		return err
	}
	limit, offset := page(c)
	objectives, err := h.objectives.List(c.UserContext(), principal, service.ObjectiveListFilter{
		TeamID:   optionalQuery(c, "team_id"),
		Statuses: statuses,
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		return err
	}
	items := make([]dto.ObjectiveResponse, 0, len(objectives))
	for i := range objectives {
		items = append(items, objectiveResponse(&objectives[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

func parseStatuses(raw string) ([]domain.Status, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var statuses []domain.Status
	for _, part := range strings.Split(raw, ",") {
		status, ok := domain.ParseStatus(strings.TrimSpace(part))
		if !ok {
			return nil, apperrors.NewValidationError("unknown status", map[string]any{"status": part})
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}

func parseOptionalStatus(raw *string) *domain.Status {
	if raw == nil {
		return nil
	}
	status := domain.Status(*raw)
	return &status
}

// Get handles GET /objectives/:id.
func (h *ObjectivesHandler) Get(c *fiber.Ctx) error {
	principal, err := auth.MustPrincipal(c)
	if err != nil {
		return err
	}
	detail, err := h.objectives.Get(c.UserContext(), principal, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": objectiveDetailResponse(detail)})
}

// Update handles PATCH /objectives/:id.
func (h *ObjectivesHandler) Update(c *fiber.Ctx) error {
	principal, err := auth.MustPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.UpdateObjectiveRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	start, err := dto.ParseOptionalDate("start_date", req.StartDate)
	if err != nil {
		return err
	}
	end, err := dto.ParseOptionalDate("end_date", req.EndDate)
	if err != nil {
		return err
	}
	objective, err := h.objectives.Update(c.UserContext(), principal, c.Params("id"), service.UpdateObjectiveInput{
		Title:       req.Title,
		Description: req.Description,
		StartDate:   start,
		EndDate:     end,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": objectiveResponse(objective)})
}

// Delete handles DELETE /objectives/:id.
func (h *ObjectivesHandler) Delete(c *fiber.Ctx) error {
	principal, err := auth.MustPrincipal(c)
	if err != nil {
		return err
	}
	if err := h.objectives.Delete(c.UserContext(), principal, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// CreateKeyResult handles POST /objectives/:id/key-results.
func (h *ObjectivesHandler) CreateKeyResult(c *fiber.Ctx) error {
	principal, err := auth.MustPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.CreateKeyResultRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	start, err := dto.ParseOptionalDate("start_date", req.StartDate)
	if err != nil {
		return err
	}
	end, err := dto.ParseOptionalDate("end_date", req.EndDate)
	if err != nil {
		return err
	}
	kr, err := h.objectives.CreateKeyResult(c.UserContext(), principal, c.Params("id"), service.CreateKeyResultInput{
		Title:       req.Title,
		TargetValue: req.TargetValue,
		Units:       req.Units,
		AssignedTo:  req.AssignedTo,
		StartDate:   start,
		EndDate:     end,
		Status:      parseOptionalStatus(req.Status),
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": keyResultResponse(kr)})
}

// GetKeyResult handles GET /key-results/:id.
func (h *ObjectivesHandler) GetKeyResult(c *fiber.Ctx) error {
	principal, err := auth.MustPrincipal(c)
	if err != nil {
		return err
	}
	detail, err := h.objectives.GetKeyResult(c.UserContext(), principal, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": keyResultResponse(&detail.KeyResult)})
}

// UpdateKeyResult handles PATCH /key-results/:id.
func (h *ObjectivesHandler) UpdateKeyResult(c *fiber.Ctx) error {
	principal, err := auth.MustPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.UpdateKeyResultRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	start, err := dto.ParseOptionalDate("start_date", req.StartDate)
	if err != nil {
		return err
	}
	end, err := dto.ParseOptionalDate("end_date", req.EndDate)
	if err != nil {
		return err
	}
	kr, err := h.objectives.UpdateKeyResult(c.UserContext(), principal, c.Params("id"), service.UpdateKeyResultInput{
		Title:       req.Title,
		TargetValue: req.TargetValue,
		Units:       req.Units,
		AssignedTo:  req.AssignedTo,
		Unassign:    req.Unassign,
		StartDate:   start,
		EndDate:     end,
		Status:      parseOptionalStatus(req.Status),
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": keyResultResponse(kr)})
}

// DeleteKeyResult handles DELETE /key-results/:id.
func (h *ObjectivesHandler) DeleteKeyResult(c *fiber.Ctx) error {
	principal, err := auth.MustPrincipal(c)
	if err != nil {
		return err
	}
	if err := h.objectives.DeleteKeyResult(c.UserContext(), principal, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
