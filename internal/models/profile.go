package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Variant identifies which onboarding track a profile belongs to
type Variant string

const (
	VariantHost   Variant = "host"
	VariantVendor Variant = "vendor"
)

// Step is one stage of the onboarding sequence
type Step string

const (
	StepBusinessProfile      Step = "business_profile"
	StepIdentityVerification Step = "identity_verification"
	StepContactDetails       Step = "contact_details"
	StepReviewSubmission     Step = "review_submission"
	StepCompleted            Step = "completed"
)

// ProfileStatus is the review lifecycle state of a profile
type ProfileStatus string

const (
	StatusDraft     ProfileStatus = "draft"
	StatusSubmitted ProfileStatus = "submitted"
	StatusApproved  ProfileStatus = "approved"
	StatusRejected  ProfileStatus = "rejected"
	StatusPending   ProfileStatus = "pending"
	StatusOnHold    ProfileStatus = "on_hold"
)

// ReviewStatuses are the statuses an admin review may set
var ReviewStatuses = []ProfileStatus{StatusApproved, StatusRejected, StatusPending, StatusOnHold}

// IsReviewStatus reports whether s is a valid admin review decision
func IsReviewStatus(s ProfileStatus) bool {
	for _, rs := range ReviewStatuses {
		if rs == s {
			return true
		}
	}
	return false
}

// Workflow describes the ordered steps of one variant
type Workflow struct {
	Variant Variant
	Label   string
	Steps   []Step
}

var defaultSteps = []Step{
	StepBusinessProfile,
	StepIdentityVerification,
	StepContactDetails,
	StepReviewSubmission,
}

var workflows = map[Variant]Workflow{
	VariantHost:   {Variant: VariantHost, Label: "Host", Steps: defaultSteps},
	VariantVendor: {Variant: VariantVendor, Label: "Vendor", Steps: defaultSteps},
}

// WorkflowFor returns the workflow for a variant
func WorkflowFor(v Variant) (Workflow, bool) {
	wf, ok := workflows[v]
	return wf, ok
}

// ParseVariant accepts both singular and plural route forms ("host", "hosts")
func ParseVariant(s string) (Variant, bool) {
	switch s {
	case "host", "hosts":
		return VariantHost, true
	case "vendor", "vendors":
		return VariantVendor, true
	}
	return "", false
}

// FirstStep returns the entry step of the workflow
func (w Workflow) FirstStep() Step {
	return w.Steps[0]
}

// IndexOf returns the position of step in the workflow, or -1
func (w Workflow) IndexOf(step Step) int {
	for i, s := range w.Steps {
		if s == step {
			return i
		}
	}
	return -1
}

// Position is IndexOf with the completed marker placed after the last step
func (w Workflow) Position(step Step) int {
	if step == StepCompleted {
		return len(w.Steps)
	}
	return w.IndexOf(step)
}

// StepAfter returns the step following the given one, or StepCompleted for the last step
func (w Workflow) StepAfter(step Step) Step {
	idx := w.IndexOf(step)
	if idx < 0 || idx+1 >= len(w.Steps) {
		return StepCompleted
	}
	return w.Steps[idx+1]
}

// Profile is the onboarding aggregate root for one user in one variant
type Profile struct {
	ID      uuid.UUID     `gorm:"type:uuid;primary_key" json:"id"`
	OwnerID uuid.UUID     `gorm:"type:uuid;not null;uniqueIndex:idx_profiles_owner_variant" json:"owner_id"`
	Variant Variant       `gorm:"type:varchar(20);not null;uniqueIndex:idx_profiles_owner_variant;index" json:"variant"`
	Status  ProfileStatus `gorm:"type:varchar(20);not null;default:'draft';index" json:"status"`

	CurrentStep Step `gorm:"type:varchar(40);not null" json:"current_step"`

	BusinessProfileCompleted      bool `gorm:"not null;default:false" json:"business_profile_completed"`
	IdentityVerificationCompleted bool `gorm:"not null;default:false" json:"identity_verification_completed"`
	ContactDetailsCompleted       bool `gorm:"not null;default:false" json:"contact_details_completed"`
	ReviewSubmissionCompleted     bool `gorm:"not null;default:false" json:"review_submission_completed"`

	ReviewerID  *uuid.UUID `gorm:"type:uuid;index" json:"reviewer_id,omitempty"`
	ReviewNotes string     `gorm:"type:text" json:"review_notes"`

	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
	SubmittedAt *time.Time `gorm:"index" json:"submitted_at,omitempty"`
	ReviewedAt  *time.Time `json:"reviewed_at,omitempty"`

	Owner    *User `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE" json:"-"`
	Reviewer *User `gorm:"foreignKey:ReviewerID;constraint:OnDelete:SET NULL" json:"-"`

	BusinessProfile      *BusinessProfile      `gorm:"foreignKey:ProfileID;constraint:OnDelete:CASCADE" json:"business_profile,omitempty"`
	IdentityVerification *IdentityVerification `gorm:"foreignKey:ProfileID;constraint:OnDelete:CASCADE" json:"identity_verification,omitempty"`
	ContactDetails       *ContactDetails       `gorm:"foreignKey:ProfileID;constraint:OnDelete:CASCADE" json:"contact_details,omitempty"`
	ReviewSubmission     *ReviewSubmission     `gorm:"foreignKey:ProfileID;constraint:OnDelete:CASCADE" json:"review_submission,omitempty"`
	StatusHistory        []StatusHistory       `gorm:"foreignKey:ProfileID;constraint:OnDelete:CASCADE" json:"status_history,omitempty"`
}

// TableName specifies the table name
func (Profile) TableName() string {
	return "onboarding_profiles"
}

// BeforeCreate hook to generate UUID
func (p *Profile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// NewProfile builds a profile in its initial state
func NewProfile(owner uuid.UUID, wf Workflow) *Profile {
	return &Profile{
		OwnerID:     owner,
		Variant:     wf.Variant,
		Status:      StatusDraft,
		CurrentStep: wf.FirstStep(),
	}
}

// StepCompleted reports the completion flag of a step
func (p *Profile) StepCompleted(step Step) bool {
	switch step {
	case StepBusinessProfile:
		return p.BusinessProfileCompleted
	case StepIdentityVerification:
		return p.IdentityVerificationCompleted
	case StepContactDetails:
		return p.ContactDetailsCompleted
	case StepReviewSubmission:
		return p.ReviewSubmissionCompleted
	}
	return false
}

// MarkStepCompleted sets the completion flag of a step. Flags are never cleared.
func (p *Profile) MarkStepCompleted(step Step) {
	switch step {
	case StepBusinessProfile:
		p.BusinessProfileCompleted = true
	case StepIdentityVerification:
		p.IdentityVerificationCompleted = true
	case StepContactDetails:
		p.ContactDetailsCompleted = true
	case StepReviewSubmission:
		p.ReviewSubmissionCompleted = true
	}
}

// StepsCompleted returns the flag map keyed by step name
func (p *Profile) StepsCompleted(wf Workflow) map[Step]bool {
	out := make(map[Step]bool, len(wf.Steps))
	for _, s := range wf.Steps {
		out[s] = p.StepCompleted(s)
	}
	return out
}
