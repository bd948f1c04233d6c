package dto

import "time"

// RenameRequest renames an organization or a team.
type RenameRequest struct {
	Name string `json:"name" validate:"required,max=200"`
}

// OrganizationResponse representation.
type OrganizationResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedBy *string   `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

// TeamResponse representation.
type TeamResponse struct {
	ID             string    `json:"id"`
	OrganizationID string    `json:"organization_id"`
	Name           string    `json:"name"`
	LeadID         *string   `json:"lead_id"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// AssignLeadRequest payload.
type AssignLeadRequest struct {
	UserID string `json:"user_id" validate:"required"`
}
