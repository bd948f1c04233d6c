package dto

import (
	"time"

	"github.com/salim0986/okr-production-sub000/internal/domain"
)

// SubmitCheckInRequest payload. progress_value is required so an explicit
// zero is distinguishable from a missing field.
type SubmitCheckInRequest struct {
	ProgressValue *float64 `json:"progress_value" validate:"required"`
	Comment       *string  `json:"comment" validate:"omitempty,max=5000"`
	CheckInDate   *string  `json:"check_in_date"`
}

// CheckInResponse representation.
type CheckInResponse struct {
	ID            string               `json:"id"`
	KeyResultID   string               `json:"key_result_id"`
	UserID        string               `json:"user_id"`
	ProgressValue float64              `json:"progress_value"`
	Comment       *string              `json:"comment"`
	Status        domain.CheckInStatus `json:"status"`
	CheckInDate   time.Time            `json:"check_in_date"`
	ReviewedBy    *string              `json:"reviewed_by"`
	ReviewedAt    *time.Time           `json:"reviewed_at"`
	CreatedAt     time.Time            `json:"created_at"`
}

// ReviewResponse is returned by approve and reject.
type ReviewResponse struct {
	CheckIn   CheckInResponse    `json:"check_in"`
	KeyResult *KeyResultResponse `json:"key_result,omitempty"`
	Objective *ObjectiveResponse `json:"objective,omitempty"`
}
