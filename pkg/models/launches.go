package models

import "time"

// Launch statuses
const (
	LaunchStatusPlanning = "planning"
	LaunchStatusActive   = "active"
	LaunchStatusEnded    = "ended"
)

// Launch represents a marketing campaign tied to one product
type Launch struct {
	ID          string     `json:"id"`
	AccountID   string     `json:"account_id"`
	ProductID   string     `json:"product_id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Goal        string     `json:"goal"`
	Status      string     `json:"status"`
	StartsAt    *time.Time `json:"starts_at,omitempty"`
	EndsAt      *time.Time `json:"ends_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// ValidLaunchStatus reports whether s is a known launch status
func ValidLaunchStatus(s string) bool {
	switch s {
	case LaunchStatusPlanning, LaunchStatusActive, LaunchStatusEnded:
		return true
	}
	return false
}

// CreateLaunchRequest represents the launch creation payload
type CreateLaunchRequest struct {
	ProductID   string     `json:"product_id" binding:"required"`
	Name        string     `json:"name" binding:"required"`
	Description string     `json:"description"`
	Goal        string     `json:"goal"`
	StartsAt    *time.Time `json:"starts_at"`
	EndsAt      *time.Time `json:"ends_at"`
}

// UpdateLaunchRequest carries editable launch fields
type UpdateLaunchRequest struct {
	Name        *string    `json:"name"`
	Description *string    `json:"description"`
	Goal        *string    `json:"goal"`
	Status      *string    `json:"status"`
	StartsAt    *time.Time `json:"starts_at"`
	EndsAt      *time.Time `json:"ends_at"`
}
