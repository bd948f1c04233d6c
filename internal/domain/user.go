package domain

import "time"

// User is a member of an organization.
type User struct {
	ID             string
	Name           string
	Email          string
	PasswordHash   string
	Role           Role
	OrganizationID string
	TeamID         *string
	IsDeleted      bool
	LastLogin      *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Principal builds the access-control identity for the user.
func (u *User) Principal() Principal {
	return Principal{
		ID:             u.ID,
		Role:           u.Role,
		OrganizationID: u.OrganizationID,
		TeamID:         u.TeamID,
	}
}
