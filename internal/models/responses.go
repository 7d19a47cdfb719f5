package models

import (
	"time"

	"github.com/google/uuid"
)

// APIResponse is the standard API response wrapper
type APIResponse struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	Error     *APIError   `json:"error,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// APIError represents an error response
type APIError struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details string            `json:"details,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// ProfileSummary is the list/read view of a profile
type ProfileSummary struct {
	ID                            uuid.UUID     `json:"id"`
	Variant                       Variant       `json:"variant"`
	OwnerID                       uuid.UUID     `json:"owner_id"`
	Status                        ProfileStatus `json:"status"`
	CurrentStep                   Step          `json:"current_step"`
	NextStep                      Step          `json:"next_step"`
	CompletionPercentage          float64       `json:"completion_percentage"`
	BusinessProfileCompleted      bool          `json:"business_profile_completed"`
	IdentityVerificationCompleted bool          `json:"identity_verification_completed"`
	ContactDetailsCompleted       bool          `json:"contact_details_completed"`
	ReviewSubmissionCompleted     bool          `json:"review_submission_completed"`
	ReviewNotes                   string        `json:"review_notes"`
	CreatedAt                     time.Time     `json:"created_at"`
	UpdatedAt                     time.Time     `json:"updated_at"`
	SubmittedAt                   *time.Time    `json:"submitted_at,omitempty"`
	ReviewedAt                    *time.Time    `json:"reviewed_at,omitempty"`
}

// StatusSnapshot is the compact progress view served from cache
type StatusSnapshot struct {
	ProfileID            uuid.UUID     `json:"profile_id"`
	Status               ProfileStatus `json:"status"`
	CurrentStep          Step          `json:"current_step"`
	NextStep             Step          `json:"next_step"`
	CompletionPercentage float64       `json:"completion_percentage"`
	StepsCompleted       map[Step]bool `json:"steps_completed"`
}

// UserInfo is the owner block embedded in detail views
type UserInfo struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
}

// HistoryEntry is the display form of a status history row
type HistoryEntry struct {
	OldStatus      string    `json:"old_status"`
	NewStatus      string    `json:"new_status"`
	ChangedByEmail string    `json:"changed_by_email,omitempty"`
	ChangeReason   string    `json:"change_reason"`
	CreatedAt      time.Time `json:"created_at"`
}

// Completeness is the field-level fill ratio per sub-entity
type Completeness struct {
	BusinessProfile      float64  `json:"business_profile"`
	IdentityVerification float64  `json:"identity_verification"`
	ContactDetails       float64  `json:"contact_details"`
	Overall              float64  `json:"overall"`
	MissingFields        []string `json:"missing_fields"`
}

// ProfileDetail is the full read view of a profile
type ProfileDetail struct {
	ProfileSummary
	UserInfo             *UserInfo             `json:"user_info,omitempty"`
	BusinessProfile      *BusinessProfile      `json:"business_profile,omitempty"`
	IdentityVerification *IdentityVerification `json:"identity_verification,omitempty"`
	ContactDetails       *ContactDetails       `json:"contact_details,omitempty"`
	ReviewSubmission     *ReviewSubmission     `json:"review_submission,omitempty"`
	StatusHistory        []HistoryEntry        `json:"status_history"`
	Completeness         Completeness          `json:"field_completeness"`
}

// StepResult is returned after a step submission
type StepResult struct {
	Profile   ProfileSummary `json:"profile"`
	Step      Step           `json:"step"`
	Completed bool           `json:"completed"`
	Data      interface{}    `json:"data"`
	NextStep  Step           `json:"next_step"`
}

// BulkActionResult reports per-profile outcomes of a bulk action
type BulkActionResult struct {
	Action     string      `json:"action"`
	Updated    int         `json:"updated"`
	UpdatedIDs []uuid.UUID `json:"updated_ids"`
	NotFound   []uuid.UUID `json:"not_found_ids,omitempty"`
}

// AccountView combines the user with their profiles
type AccountView struct {
	User             UserInfo        `json:"user"`
	HostProfile      *ProfileSummary `json:"host_profile,omitempty"`
	VendorProfile    *ProfileSummary `json:"vendor_profile,omitempty"`
	IsVerifiedHost   bool            `json:"is_verified_host"`
	IsVerifiedVendor bool            `json:"is_verified_vendor"`
}

// MobileCodeResponse is returned after sending a mobile code
type MobileCodeResponse struct {
	MobileNumber string    `json:"mobile_number"`
	ExpiresAt    time.Time `json:"expires_at"`
	ExpiresIn    int       `json:"expires_in_seconds"`
}
