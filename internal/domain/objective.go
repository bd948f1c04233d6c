package domain

import "time"

// Status classifies objective and key result health.
type Status string

const (
	StatusOnTrack   Status = "on_track"
	StatusAtRisk    Status = "at_risk"
	StatusAhead     Status = "ahead"
	StatusOverdue   Status = "overdue"
	StatusCompleted Status = "completed"
)

// ParseStatus validates an external status value.
func ParseStatus(value string) (Status, bool) {
	switch Status(value) {
	case StatusOnTrack, StatusAtRisk, StatusAhead, StatusOverdue, StatusCompleted:
		return Status(value), true
	default:
		return "", false
	}
}

// Objective is a qualitative goal owned by a team.
type Objective struct {
	ID          string
	TeamID      string
	Title       string
	Description string
	StartDate   time.Time
	EndDate     time.Time
	Progress    int
	Status      Status
	CreatedBy   *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
