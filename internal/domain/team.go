package domain

import "time"

// Team groups users inside an organization and owns objectives.
type Team struct {
	ID             string
	OrganizationID string
	Name           string
	LeadID         *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
