package dto

import "time"

// CommentRequest payload for creating and editing comments.
type CommentRequest struct {
	CommentText string `json:"comment_text" validate:"required,max=5000"`
}

// CommentResponse representation.
type CommentResponse struct {
	ID          string    `json:"id"`
	KeyResultID string    `json:"key_result_id"`
	UserID      string    `json:"user_id"`
	CommentText string    `json:"comment_text"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
