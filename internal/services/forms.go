package services

import (
	"fmt"
	"strings"

	"github.com/tesseract-hub/onboarding-service/internal/models"
)

// Step forms validate a payload and copy it onto the step's sub-entity.
// They never touch profile-level state.

type businessProfileForm struct{}

// Validate checks the payload; existing may be nil on the first submission
func (businessProfileForm) Validate(req *models.BusinessProfileRequest, existing *models.BusinessProfile) error {
	fe := FieldErrors{}
	required(fe, "business_name", req.BusinessName)
	maxLength(fe, "business_name", req.BusinessName, 255)
	maxLength(fe, "business_type", req.BusinessType, 100)
	required(fe, "license_number", req.LicenseNumber)
	maxLength(fe, "license_number", req.LicenseNumber, 100)
	required(fe, "business_address_line1", req.AddressLine1)
	maxLength(fe, "business_address_line1", req.AddressLine1, 255)
	maxLength(fe, "business_address_line2", req.AddressLine2, 255)
	required(fe, "business_city", req.City)
	maxLength(fe, "business_city", req.City, 100)
	required(fe, "business_state", req.State)
	maxLength(fe, "business_state", req.State, 100)
	required(fe, "business_postal_code", req.PostalCode)
	maxLength(fe, "business_postal_code", req.PostalCode, 20)
	required(fe, "business_country", req.Country)
	maxLength(fe, "business_country", req.Country, 100)

	if req.LicenseDocument != nil {
		if msg := licenseDocumentRule.Check(req.LicenseDocument); msg != "" {
			fe.Add("license_document", msg)
		}
	} else if existing == nil || existing.LicenseDocumentURL == "" {
		fe.Add("license_document", "This field is required.")
	}
	if req.BusinessLogo != nil {
		if msg := businessLogoRule.Check(req.BusinessLogo); msg != "" {
			fe.Add("business_logo", msg)
		}
	}
	return fe.Err()
}

// Persist copies the payload; empty URLs keep the previously stored file
func (businessProfileForm) Persist(bp *models.BusinessProfile, req *models.BusinessProfileRequest, licenseURL, logoURL string) {
	bp.BusinessName = strings.TrimSpace(req.BusinessName)
	bp.BusinessType = strings.TrimSpace(req.BusinessType)
	bp.LicenseNumber = strings.TrimSpace(req.LicenseNumber)
	bp.AddressLine1 = strings.TrimSpace(req.AddressLine1)
	bp.AddressLine2 = strings.TrimSpace(req.AddressLine2)
	bp.City = strings.TrimSpace(req.City)
	bp.State = strings.TrimSpace(req.State)
	bp.PostalCode = strings.TrimSpace(req.PostalCode)
	bp.Country = strings.TrimSpace(req.Country)
	bp.BusinessDescription = strings.TrimSpace(req.BusinessDescription)
	if licenseURL != "" {
		bp.LicenseDocumentURL = licenseURL
	}
	if logoURL != "" {
		bp.BusinessLogoURL = logoURL
	}
}

type identityVerificationForm struct{}

func (identityVerificationForm) Validate(req *models.IdentityVerificationRequest, existing *models.IdentityVerification) error {
	fe := FieldErrors{}
	switch req.DocumentType {
	case models.DocumentTypeNationalID, models.DocumentTypePassport:
	case "":
		fe.Add("document_type", "This field is required.")
	default:
		fe.Add("document_type", fmt.Sprintf("%q is not a valid choice.", req.DocumentType))
	}
	required(fe, "document_number", req.DocumentNumber)
	maxLength(fe, "document_number", req.DocumentNumber, 50)

	if req.DocumentImageFront != nil {
		if msg := identityImageRule.Check(req.DocumentImageFront); msg != "" {
			fe.Add("document_image_front", msg)
		}
	} else if existing == nil || existing.DocumentImageFrontURL == "" {
		fe.Add("document_image_front", "This field is required.")
	}
	if req.DocumentImageBack != nil {
		if msg := identityImageRule.Check(req.DocumentImageBack); msg != "" {
			fe.Add("document_image_back", msg)
		}
	}
	return fe.Err()
}

// Persist copies only client-owned fields; extracted identity fields are
// written from a verification result
func (identityVerificationForm) Persist(iv *models.IdentityVerification, req *models.IdentityVerificationRequest, frontURL, backURL string) {
	iv.DocumentType = req.DocumentType
	iv.DocumentNumber = strings.TrimSpace(req.DocumentNumber)
	if frontURL != "" {
		iv.DocumentImageFrontURL = frontURL
	}
	if backURL != "" {
		iv.DocumentImageBackURL = backURL
	}
}

type contactDetailsForm struct{}

func (contactDetailsForm) Validate(req *models.ContactDetailsRequest) error {
	fe := FieldErrors{}
	required(fe, "address_line1", req.AddressLine1)
	maxLength(fe, "address_line1", req.AddressLine1, 255)
	maxLength(fe, "address_line2", req.AddressLine2, 255)
	required(fe, "city", req.City)
	maxLength(fe, "city", req.City, 100)
	required(fe, "state", req.State)
	maxLength(fe, "state", req.State, 100)
	required(fe, "postal_code", req.PostalCode)
	maxLength(fe, "postal_code", req.PostalCode, 20)
	required(fe, "country", req.Country)
	maxLength(fe, "country", req.Country, 100)

	mobile := strings.TrimSpace(req.MobileNumber)
	if mobile == "" {
		fe.Add("mobile_number", "This field is required.")
	} else if !ValidPhoneNumber(mobile) {
		fe.Add("mobile_number", "Invalid mobile number format.")
	}
	if w := strings.TrimSpace(req.WhatsappNumber); w != "" && !ValidPhoneNumber(w) {
		fe.Add("whatsapp_number", "Invalid WhatsApp number format.")
	}
	if tg := NormalizeTelegramUsername(req.TelegramUsername); tg != "" && !ValidTelegramUsername(tg) {
		fe.Add("telegram_username", "Invalid Telegram username format.")
	}
	if fb := strings.TrimSpace(req.FacebookPageURL); fb != "" && !ValidFacebookPageURL(fb) {
		fe.Add("facebook_page_url", "Invalid Facebook page URL.")
	}
	if req.Latitude != nil && (*req.Latitude < -90 || *req.Latitude > 90) {
		fe.Add("latitude", "Latitude must be between -90 and 90.")
	}
	if req.Longitude != nil && (*req.Longitude < -180 || *req.Longitude > 180) {
		fe.Add("longitude", "Longitude must be between -180 and 180.")
	}
	return fe.Err()
}

// Persist copies the payload. Channel verification statuses are left alone;
// a pending mobile code is dropped when the number changes.
func (contactDetailsForm) Persist(cd *models.ContactDetails, req *models.ContactDetailsRequest) {
	mobile := strings.TrimSpace(req.MobileNumber)
	if mobile != cd.MobileNumber {
		cd.MobileVerificationCode = ""
		cd.MobileVerificationSentAt = nil
	}

	cd.AddressLine1 = strings.TrimSpace(req.AddressLine1)
	cd.AddressLine2 = strings.TrimSpace(req.AddressLine2)
	cd.City = strings.TrimSpace(req.City)
	cd.State = strings.TrimSpace(req.State)
	cd.PostalCode = strings.TrimSpace(req.PostalCode)
	cd.Country = strings.TrimSpace(req.Country)
	cd.Latitude = req.Latitude
	cd.Longitude = req.Longitude
	cd.MobileNumber = mobile
	cd.WhatsappNumber = strings.TrimSpace(req.WhatsappNumber)
	cd.TelegramUsername = NormalizeTelegramUsername(req.TelegramUsername)
	cd.FacebookPageURL = strings.TrimSpace(req.FacebookPageURL)
}

type reviewSubmissionForm struct{}

func (reviewSubmissionForm) Validate(req *models.ReviewSubmissionRequest) error {
	fe := FieldErrors{}
	if !req.TermsAccepted {
		fe.Add("terms_accepted", "You must accept the terms and conditions to proceed.")
	}
	if !req.PrivacyPolicyAccepted {
		fe.Add("privacy_policy_accepted", "You must accept the privacy policy to proceed.")
	}
	return fe.Err()
}

func (reviewSubmissionForm) Persist(rs *models.ReviewSubmission, req *models.ReviewSubmissionRequest) {
	rs.AdditionalNotes = strings.TrimSpace(req.AdditionalNotes)
	rs.TermsAccepted = req.TermsAccepted
	rs.PrivacyPolicyAccepted = req.PrivacyPolicyAccepted
}
