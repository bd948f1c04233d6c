package domain

import "time"

// Organization is the tenancy root every team belongs to.
type Organization struct {
	ID        string
	Name      string
	CreatedBy *string
	CreatedAt time.Time
}
