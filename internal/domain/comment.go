package domain

import "time"

// Comment is a discussion entry on a key result.
type Comment struct {
	ID          string
	KeyResultID string
	UserID      string
	Text        string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
