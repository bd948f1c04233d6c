package dto

import (
	"time"

	"github.com/salim0986/okr-production-sub000/internal/domain"
)

// CreateObjectiveRequest payload.
type CreateObjectiveRequest struct {
	TeamID      string `json:"team_id" validate:"required"`
	Title       string `json:"title" validate:"required,max=255"`
	Description string `json:"description" validate:"max=5000"`
	StartDate   string `json:"start_date" validate:"required"`
	EndDate     string `json:"end_date" validate:"required"`
}

// UpdateObjectiveRequest payload.
type UpdateObjectiveRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=1,max=255"`
	Description *string `json:"description" validate:"omitempty,max=5000"`
	StartDate   *string `json:"start_date"`
	EndDate     *string `json:"end_date"`
}

// CreateKeyResultRequest payload.
type CreateKeyResultRequest struct {
	Title       string  `json:"title" validate:"required,max=255"`
	TargetValue float64 `json:"target_value" validate:"gt=0"`
	Units       string  `json:"units" validate:"max=50"`
	AssignedTo  *string `json:"assigned_to"`
	StartDate   *string `json:"start_date"`
	EndDate     *string `json:"end_date"`
	Status      *string `json:"status" validate:"omitempty,oneof=on_track at_risk ahead overdue completed"`
}

// UpdateKeyResultRequest payload. current_value is rejected: it only moves
// through approved check-ins.
type UpdateKeyResultRequest struct {
	Title        *string  `json:"title" validate:"omitempty,min=1,max=255"`
	TargetValue  *float64 `json:"target_value" validate:"omitempty,gt=0"`
	Units        *string  `json:"units" validate:"omitempty,max=50"`
	AssignedTo   *string  `json:"assigned_to"`
	Unassign     bool     `json:"unassign"`
	StartDate    *string  `json:"start_date"`
	EndDate      *string  `json:"end_date"`
	Status       *string  `json:"status" validate:"omitempty,oneof=on_track at_risk ahead overdue completed"`
	CurrentValue *float64 `json:"current_value" validate:"isdefault"`
}

// ObjectiveResponse representation. display_percent is progress bounded to
// [0, 100] for progress bars.
type ObjectiveResponse struct {
	ID             string        `json:"id"`
	TeamID         string        `json:"team_id"`
	Title          string        `json:"title"`
	Description    string        `json:"description"`
	StartDate      time.Time     `json:"start_date"`
	EndDate        time.Time     `json:"end_date"`
	Progress       int           `json:"progress"`
	DisplayPercent int           `json:"display_percent"`
	Status         domain.Status `json:"status"`
	CreatedBy      *string       `json:"created_by"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

// ObjectiveDetailResponse adds key results and live aggregates.
type ObjectiveDetailResponse struct {
	ObjectiveResponse
	Percent     int                 `json:"percent"`
	WorstStatus domain.Status       `json:"worst_status"`
	KeyResults  []KeyResultResponse `json:"key_results"`
}

// KeyResultResponse representation.
type KeyResultResponse struct {
	ID             string        `json:"id"`
	ObjectiveID    string        `json:"objective_id"`
	Title          string        `json:"title"`
	TargetValue    float64       `json:"target_value"`
	CurrentValue   float64       `json:"current_value"`
	Units          string        `json:"units"`
	AssignedTo     *string       `json:"assigned_to"`
	StartDate      *time.Time    `json:"start_date"`
	EndDate        *time.Time    `json:"end_date"`
	Status         domain.Status `json:"status"`
	Percent        int           `json:"percent"`
	DisplayPercent int           `json:"display_percent"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}
