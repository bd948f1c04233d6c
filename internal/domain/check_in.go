package domain

import "time"

// CheckInStatus is the review state of a check-in.
type CheckInStatus string

const (
	CheckInPending  CheckInStatus = "pending"
	CheckInApproved CheckInStatus = "approved"
	CheckInRejected CheckInStatus = "rejected"
)

// Terminal reports whether no transition may leave s.
func (s CheckInStatus) Terminal() bool {
	return s == CheckInApproved || s == CheckInRejected
}

// CheckIn is a progress claim against a key result awaiting review.
type CheckIn struct {
	ID            string
	KeyResultID   string
	UserID        string
	ProgressValue float64
	Comment       *string
	Status        CheckInStatus
	CheckInDate   time.Time
	ReviewedBy    *string
	ReviewedAt    *time.Time
	CreatedAt     time.Time
}
