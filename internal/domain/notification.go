package domain

import "time"

// NotificationType tags what triggered a notification.
type NotificationType string

const (
	NotificationCheckInSubmitted NotificationType = "check_in_submitted"
	NotificationCheckInApproved  NotificationType = "check_in_approved"
	NotificationCheckInRejected  NotificationType = "check_in_rejected"
	NotificationKeyResultAssign  NotificationType = "key_result_assigned"
	NotificationCommentAdded     NotificationType = "comment_added"
	NotificationTeamLeadAssigned NotificationType = "team_lead_assigned"
)

// Notification is a message for a single recipient.
type Notification struct {
	ID        string
	UserID    string
	Title     string
	Message   string
	Type      NotificationType
	IsRead    bool
	CreatedAt time.Time
}
