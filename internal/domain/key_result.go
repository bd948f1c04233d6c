package domain

import "time"

// KeyResult is a measurable target under an objective.
type KeyResult struct {
	ID           string
	ObjectiveID  string
	Title        string
	TargetValue  float64
	CurrentValue float64
	AssignedTo   *string
	Units        string
	StartDate    *time.Time
	EndDate      *time.Time
	Status       Status
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
