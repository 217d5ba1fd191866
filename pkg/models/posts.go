package models

import "time"

// Scheduled post statuses. A post transitions scheduled -> posted or
// scheduled -> error at most once per dispatch pass and never leaves
// posted or error automatically.
const (
	PostStatusDraft     = "draft"
	PostStatusScheduled = "scheduled"
	PostStatusPosted    = "posted"
	PostStatusError     = "error"
)

// ScheduledPost represents a post authored for later (or immediate) delivery
type ScheduledPost struct {
	ID             string     `json:"id"`
	AccountID      string     `json:"account_id"`
	LaunchID       *string    `json:"launch_id,omitempty"`
	Content        string     `json:"content"`
	Status         string     `json:"status"`
	ScheduledAt    *time.Time `json:"scheduled_at,omitempty"`
	PostedAt       *time.Time `json:"posted_at,omitempty"`
	ExternalPostID *string    `json:"external_post_id,omitempty"`
	ErrorMessage   *string    `json:"error_message,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// ValidPostStatus reports whether s is a known scheduled post status
func ValidPostStatus(s string) bool {
	switch s {
	case PostStatusDraft, PostStatusScheduled, PostStatusPosted, PostStatusError:
		return true
	}
	return false
}

// DuePost is a scheduled post joined with its owner's posting credentials,
// as returned by the due-post query.
type DuePost struct {
	Post        ScheduledPost
	Credentials PostingCredentials
}

// CreatePostRequest represents the scheduled post creation payload
type CreatePostRequest struct {
	Content     string     `json:"content" binding:"required"`
	LaunchID    *string    `json:"launch_id"`
	ScheduledAt *time.Time `json:"scheduled_at"`
}

// UpdatePostRequest carries editable post fields. Only draft and scheduled
// posts may be edited.
type UpdatePostRequest struct {
	Content     *string    `json:"content"`
	ScheduledAt *time.Time `json:"scheduled_at"`
	Status      *string    `json:"status"`
}
