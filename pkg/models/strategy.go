package models

import "time"

// EducationStrategy is the structured content outline used to build AI
// prompts. Each account has one baseline strategy (LaunchID nil) and each
// launch can override it with its own row.
type EducationStrategy struct {
	ID             string    `json:"id"`
	AccountID      string    `json:"account_id"`
	LaunchID       *string   `json:"launch_id,omitempty"`
	CoreMessage    string    `json:"core_message"`
	AudiencePain   string    `json:"audience_pain"`
	Transformation string    `json:"transformation"`
	ProofPoints    string    `json:"proof_points"`
	Objections     string    `json:"objections"`
	ContentPillars string    `json:"content_pillars"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// UpdateStrategyRequest carries editable strategy fields
type UpdateStrategyRequest struct {
	CoreMessage    *string `json:"core_message"`
	AudiencePain   *string `json:"audience_pain"`
	Transformation *string `json:"transformation"`
	ProofPoints    *string `json:"proof_points"`
	Objections     *string `json:"objections"`
	ContentPillars *string `json:"content_pillars"`
}

// GenerateCopyRequest asks for AI-assisted post copy for a launch
type GenerateCopyRequest struct {
	LaunchID string `json:"launch_id" binding:"required"`
	Topic    string `json:"topic"`
	Count    int    `json:"count"`
}

// GenerateCopyResponse carries generated post drafts
type GenerateCopyResponse struct {
	Drafts []string `json:"drafts"`
}
