package models

import (
	"io"

	"github.com/google/uuid"
)

// FileUpload is an uploaded file handed to a step form
type FileUpload struct {
	Filename    string
	Size        int64
	ContentType string
	Content     io.Reader
}

// BusinessProfileRequest is the business step payload
type BusinessProfileRequest struct {
	BusinessName        string `form:"business_name" json:"business_name"`
	BusinessType        string `form:"business_type" json:"business_type"`
	LicenseNumber       string `form:"license_number" json:"license_number"`
	AddressLine1        string `form:"business_address_line1" json:"business_address_line1"`
	AddressLine2        string `form:"business_address_line2" json:"business_address_line2"`
	City                string `form:"business_city" json:"business_city"`
	State               string `form:"business_state" json:"business_state"`
	PostalCode          string `form:"business_postal_code" json:"business_postal_code"`
	Country             string `form:"business_country" json:"business_country"`
	BusinessDescription string `form:"business_description" json:"business_description"`

	LicenseDocument *FileUpload `form:"-" json:"-"`
	BusinessLogo    *FileUpload `form:"-" json:"-"`
}

// IdentityVerificationRequest is the identity step payload. Fields filled by
// the verification provider are deliberately absent.
type IdentityVerificationRequest struct {
	DocumentType   string `form:"document_type" json:"document_type"`
	DocumentNumber string `form:"document_number" json:"document_number"`

	DocumentImageFront *FileUpload `form:"-" json:"-"`
	DocumentImageBack  *FileUpload `form:"-" json:"-"`
}

// ContactDetailsRequest is the contact step payload. Channel verification
// flags cannot be set through it.
type ContactDetailsRequest struct {
	AddressLine1     string   `json:"address_line1"`
	AddressLine2     string   `json:"address_line2"`
	City             string   `json:"city"`
	State            string   `json:"state"`
	PostalCode       string   `json:"postal_code"`
	Country          string   `json:"country"`
	Latitude         *float64 `json:"latitude"`
	Longitude        *float64 `json:"longitude"`
	MobileNumber     string   `json:"mobile_number"`
	WhatsappNumber   string   `json:"whatsapp_number"`
	TelegramUsername string   `json:"telegram_username"`
	FacebookPageURL  string   `json:"facebook_page_url"`
}

// ReviewSubmissionRequest is the final step payload
type ReviewSubmissionRequest struct {
	AdditionalNotes       string `json:"additional_notes"`
	TermsAccepted         bool   `json:"terms_accepted"`
	PrivacyPolicyAccepted bool   `json:"privacy_policy_accepted"`
}

// AdminReviewRequest is a staff review decision
type AdminReviewRequest struct {
	Status      ProfileStatus `json:"status" binding:"required"`
	ReviewNotes string        `json:"review_notes"`
}

// Bulk review actions
const (
	BulkActionApprove     = "approve"
	BulkActionReject      = "reject"
	BulkActionMarkPending = "mark_pending"
)

// BulkActionRequest applies one review action to many profiles
type BulkActionRequest struct {
	Action     string      `json:"action" binding:"required"`
	ProfileIDs []uuid.UUID `json:"profile_ids" binding:"required,min=1"`
}

// SendMobileCodeRequest requests a fresh mobile code
type SendMobileCodeRequest struct {
	MobileNumber string `json:"mobile_number" binding:"required,max=20"`
}

// VerifyMobileCodeRequest confirms a mobile code
type VerifyMobileCodeRequest struct {
	VerificationCode string `json:"verification_code" binding:"required,len=6"`
}

// ProfileFilter narrows a staff profile listing
type ProfileFilter struct {
	Variant Variant
	Status  ProfileStatus
	IDs     []uuid.UUID
	Limit   int
	Offset  int
}
