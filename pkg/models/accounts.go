package models

import (
	"time"
)

// Account represents a marketing assistant account. Identity (signup, login,
// token issuance) lives in the external identity provider; this row carries
// the marketing profile used to build AI prompts.
type Account struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	DisplayName    string    `json:"display_name"`
	Bio            string    `json:"bio"`
	Niche          string    `json:"niche"`
	TargetAudience string    `json:"target_audience"`
	BrandVoice     string    `json:"brand_voice"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// UpdateProfileRequest carries the editable profile fields. Pointer fields
// distinguish "not provided" from "set to empty"; unknown JSON fields are
// silently dropped.
type UpdateProfileRequest struct {
	DisplayName    *string `json:"display_name"`
	Bio            *string `json:"bio"`
	Niche          *string `json:"niche"`
	TargetAudience *string `json:"target_audience"`
	BrandVoice     *string `json:"brand_voice"`
}

// PostingCredentials holds the four posting API secrets for an account.
// All four are required for the credentials to be usable.
type PostingCredentials struct {
	AccountID         string `json:"-"`
	APIKey            string `json:"api_key"`
	APISecret         string `json:"api_secret"`
	AccessToken       string `json:"access_token"`
	AccessTokenSecret string `json:"access_token_secret"`
}

// Complete reports whether all four secrets are present.
func (pc PostingCredentials) Complete() bool {
	return pc.APIKey != "" && pc.APISecret != "" && pc.AccessToken != "" && pc.AccessTokenSecret != ""
}

// Missing lists the names of absent secrets.
func (pc PostingCredentials) Missing() []string {
	var missing []string
	if pc.APIKey == "" {
		missing = append(missing, "api_key")
	}
	if pc.APISecret == "" {
		missing = append(missing, "api_secret")
	}
	if pc.AccessToken == "" {
		missing = append(missing, "access_token")
	}
	if pc.AccessTokenSecret == "" {
		missing = append(missing, "access_token_secret")
	}
	return missing
}

// UpdateCredentialsRequest carries new posting secrets. All four must be
// provided together.
type UpdateCredentialsRequest struct {
	APIKey            string `json:"api_key" binding:"required"`
	APISecret         string `json:"api_secret" binding:"required"`
	AccessToken       string `json:"access_token" binding:"required"`
	AccessTokenSecret string `json:"access_token_secret" binding:"required"`
}

// CredentialsStatus reports which secrets are stored without exposing them.
type CredentialsStatus struct {
	HasAPIKey            bool       `json:"has_api_key"`
	HasAPISecret         bool       `json:"has_api_secret"`
	HasAccessToken       bool       `json:"has_access_token"`
	HasAccessTokenSecret bool       `json:"has_access_token_secret"`
	UpdatedAt            *time.Time `json:"updated_at,omitempty"`
}
