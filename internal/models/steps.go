package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// VerificationStatus is the state of a single verification (identity or channel)
type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "pending"
	VerificationVerified VerificationStatus = "verified"
	VerificationRejected VerificationStatus = "rejected"
	VerificationFailed   VerificationStatus = "failed"
)

// Identity document types
const (
	DocumentTypeNationalID = "national_id"
	DocumentTypePassport   = "passport"
)

// BusinessProfile holds the business step fields
type BusinessProfile struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"-"`
	ProfileID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"-"`

	BusinessName        string `gorm:"type:varchar(255);not null" json:"business_name"`
	BusinessType        string `gorm:"type:varchar(100)" json:"business_type"`
	LicenseNumber       string `gorm:"type:varchar(100);not null" json:"license_number"`
	LicenseDocumentURL  string `gorm:"type:text" json:"license_document"`
	BusinessLogoURL     string `gorm:"type:text" json:"business_logo"`
	AddressLine1        string `gorm:"type:varchar(255);not null" json:"business_address_line1"`
	AddressLine2        string `gorm:"type:varchar(255)" json:"business_address_line2"`
	City                string `gorm:"type:varchar(100);not null" json:"business_city"`
	State               string `gorm:"type:varchar(100);not null" json:"business_state"`
	PostalCode          string `gorm:"type:varchar(20);not null" json:"business_postal_code"`
	Country             string `gorm:"type:varchar(100);not null" json:"business_country"`
	BusinessDescription string `gorm:"type:text" json:"business_description"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (BusinessProfile) TableName() string {
	return "onboarding_business_profiles"
}

func (b *BusinessProfile) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// IdentityVerification holds the identity step fields. Extracted fields are
// written only from a verification result.
type IdentityVerification struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"-"`
	ProfileID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"-"`

	DocumentType          string `gorm:"type:varchar(20);not null" json:"document_type"`
	DocumentNumber        string `gorm:"type:varchar(50);not null" json:"document_number"`
	DocumentImageFrontURL string `gorm:"type:text" json:"document_image_front"`
	DocumentImageBackURL  string `gorm:"type:text" json:"document_image_back"`

	VerificationStatus VerificationStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"verification_status"`
	VerificationNotes  string             `gorm:"type:text" json:"verification_notes"`
	Confidence         float64            `json:"confidence,omitempty"`
	ExtractedData      datatypes.JSON     `json:"-"`

	FullName        string     `gorm:"type:varchar(255)" json:"full_name"`
	FathersName     string     `gorm:"type:varchar(255)" json:"fathers_name"`
	DateOfBirth     *time.Time `gorm:"type:date" json:"date_of_birth,omitempty"`
	IDAddressLine1  string     `gorm:"type:varchar(255)" json:"id_address_line1"`
	IDAddressLine2  string     `gorm:"type:varchar(255)" json:"id_address_line2"`
	IDCity          string     `gorm:"type:varchar(100)" json:"id_city"`
	IDState         string     `gorm:"type:varchar(100)" json:"id_state"`
	IDPostalCode    string     `gorm:"type:varchar(20)" json:"id_postal_code"`
	IDCountry       string     `gorm:"type:varchar(100)" json:"id_country"`
	VerifiedAt      *time.Time `json:"verified_at,omitempty"`
	AttemptCount    int        `gorm:"not null;default:0" json:"attempt_count"`
	LastAttemptedAt *time.Time `json:"last_attempted_at,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (IdentityVerification) TableName() string {
	return "onboarding_identity_verifications"
}

func (i *IdentityVerification) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// ContactDetails holds the contact step fields and per-channel verification state
type ContactDetails struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"-"`
	ProfileID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"-"`

	AddressLine1 string   `gorm:"type:varchar(255);not null" json:"address_line1"`
	AddressLine2 string   `gorm:"type:varchar(255)" json:"address_line2"`
	City         string   `gorm:"type:varchar(100);not null" json:"city"`
	State        string   `gorm:"type:varchar(100);not null" json:"state"`
	PostalCode   string   `gorm:"type:varchar(20);not null" json:"postal_code"`
	Country      string   `gorm:"type:varchar(100);not null" json:"country"`
	Latitude     *float64 `json:"latitude,omitempty"`
	Longitude    *float64 `json:"longitude,omitempty"`

	MobileNumber             string             `gorm:"type:varchar(20);not null" json:"mobile_number"`
	MobileVerified           VerificationStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"mobile_verified"`
	MobileVerificationCode   string             `gorm:"type:varchar(6)" json:"-"`
	MobileVerificationSentAt *time.Time         `json:"-"`

	WhatsappNumber   string             `gorm:"type:varchar(20)" json:"whatsapp_number"`
	WhatsappVerified VerificationStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"whatsapp_verified"`

	TelegramUsername string             `gorm:"type:varchar(100)" json:"telegram_username"`
	TelegramVerified VerificationStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"telegram_verified"`

	FacebookPageURL  string             `gorm:"type:text" json:"facebook_page_url"`
	FacebookVerified VerificationStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"facebook_verified"`

	EmailVerified VerificationStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"email_verified"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (ContactDetails) TableName() string {
	return "onboarding_contact_details"
}

func (c *ContactDetails) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// ReviewSubmission records the final acknowledgements
type ReviewSubmission struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"-"`
	ProfileID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"-"`

	AdditionalNotes       string     `gorm:"type:text" json:"additional_notes"`
	TermsAccepted         bool       `gorm:"not null;default:false" json:"terms_accepted"`
	PrivacyPolicyAccepted bool       `gorm:"not null;default:false" json:"privacy_policy_accepted"`
	SubmittedAt           *time.Time `json:"submitted_at,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (ReviewSubmission) TableName() string {
	return "onboarding_review_submissions"
}

func (r *ReviewSubmission) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
