package events

import (
	"time"

	"github.com/salim0986/okr-production-sub000/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventCheckInSubmitted  EventType = "check_in.submitted"
	EventCheckInApproved   EventType = "check_in.approved"
	EventCheckInRejected   EventType = "check_in.rejected"
	EventKeyResultAssigned EventType = "key_result.assigned"
	EventCommentAdded      EventType = "comment.added"
	EventTeamLeadAssigned  EventType = "team.lead_assigned"
)

// Event represents a domain event emitted by services after their writes commit.
type Event struct {
	ID             string    `json:"id"`
	Type           EventType `json:"type"`
	OrganizationID string    `json:"organization_id"`
	SubjectID      string    `json:"subject_id"`
	ActorID        string    `json:"actor_id"`
	Timestamp      time.Time `json:"timestamp"`
	Payload        any       `json:"payload"`
}

// CheckInSubmittedPayload payload.
type CheckInSubmittedPayload struct {
	KeyResultID    string  `json:"key_result_id"`
	KeyResultTitle string  `json:"key_result_title"`
	TeamID         *string `json:"team_id,omitempty"`
	SubmitterID    string  `json:"submitter_id"`
	ProgressValue  float64 `json:"progress_value"`
}

// CheckInReviewedPayload is carried by approved and rejected events.
type CheckInReviewedPayload struct {
	KeyResultID     string               `json:"key_result_id"`
	KeyResultTitle  string               `json:"key_result_title"`
	SubmitterID     string               `json:"submitter_id"`
	ReviewerID      string               `json:"reviewer_id"`
	Status          domain.CheckInStatus `json:"status"`
	ProgressValue   float64              `json:"progress_value"`
	ObjectiveID     string               `json:"objective_id"`
	ObjectiveStatus domain.Status        `json:"objective_status,omitempty"`
	ObjectivePct    int                  `json:"objective_progress,omitempty"`
}

// KeyResultAssignedPayload payload.
type KeyResultAssignedPayload struct {
	KeyResultID string `json:"key_result_id"`
	Title       string `json:"title"`
	AssigneeID  string `json:"assignee_id"`
}

// CommentAddedPayload payload.
type CommentAddedPayload struct {
	CommentID      string  `json:"comment_id"`
	KeyResultID    string  `json:"key_result_id"`
	KeyResultTitle string  `json:"key_result_title"`
	AuthorID       string  `json:"author_id"`
	AssigneeID     *string `json:"assignee_id,omitempty"`
	Preview        string  `json:"preview"`
}

// TeamLeadAssignedPayload payload.
type TeamLeadAssignedPayload struct {
	TeamID         string  `json:"team_id"`
	TeamName       string  `json:"team_name"`
	LeadID         string  `json:"lead_id"`
	PreviousLeadID *string `json:"previous_lead_id,omitempty"`
}
