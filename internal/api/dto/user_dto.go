package dto

import "time"

// CreateUserRequest payload.
type CreateUserRequest struct {
	Name     string  `json:"name" validate:"required,max=200"`
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"required,min=8"`
	Role     string  `json:"role" validate:"required,oneof=admin team_lead employee"`
	TeamID   *string `json:"team_id"`
}

// UpdateUserRequest payload. Absent fields are left unchanged; clear_team
// removes the user from their team.
type UpdateUserRequest struct {
	Name      *string `json:"name" validate:"omitempty,min=1,max=200"`
	Email     *string `json:"email" validate:"omitempty,email"`
	Password  *string `json:"password" validate:"omitempty,min=8"`
	Role      *string `json:"role" validate:"omitempty,oneof=admin team_lead employee"`
	TeamID    *string `json:"team_id"`
	ClearTeam bool    `json:"clear_team"`
}

// UserResponse representation. Password hashes never leave the service.
type UserResponse struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Email          string     `json:"email"`
	Role           string     `json:"role"`
	OrganizationID string     `json:"organization_id"`
	TeamID         *string    `json:"team_id"`
	IsDeleted      bool       `json:"is_deleted"`
	LastLogin      *time.Time `json:"last_login"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}
