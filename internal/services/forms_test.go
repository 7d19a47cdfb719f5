package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tesseract-hub/onboarding-service/internal/models"
)

func TestBusinessProfileForm_Validate(t *testing.T) {
	form := businessProfileForm{}
	tests := []struct {
		name     string
		mutate   func(r *models.BusinessProfileRequest)
		existing *models.BusinessProfile
		field    string
		message  string
	}{
		{"missing license number", func(r *models.BusinessProfileRequest) { r.LicenseNumber = " " }, nil,
			"license_number", "This field is required."},
		{"missing license document", func(r *models.BusinessProfileRequest) { r.LicenseDocument = nil }, nil,
			"license_document", "This field is required."},
		{"license too large", func(r *models.BusinessProfileRequest) { r.LicenseDocument = upload("l.pdf", "", 6*megabyte) }, nil,
			"license_document", "License document size should not exceed 5MB."},
		{"logo wrong type", func(r *models.BusinessProfileRequest) { r.BusinessLogo = upload("logo.pdf", "", 100) }, nil,
			"business_logo", "Business logo must be JPG, JPEG, PNG, or GIF format."},
		{"logo too large", func(r *models.BusinessProfileRequest) { r.BusinessLogo = upload("logo.gif", "", 3*megabyte) }, nil,
			"business_logo", "Business logo size should not exceed 2MB."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validBusiness()
			tt.mutate(req)
			verr, ok := IsValidationError(form.Validate(req, tt.existing))
			require.True(t, ok)
			assert.Equal(t, tt.message, verr.Fields[tt.field])
		})
	}

	req := validBusiness()
	req.LicenseDocument = nil
	assert.NoError(t, form.Validate(req, &models.BusinessProfile{LicenseDocumentURL: "/media/licenses/x/l.pdf"}))
}

func TestIdentityVerificationForm_Validate(t *testing.T) {
	form := identityVerificationForm{}

	req := validIdentity()
	req.DocumentType = "driving_license"
	verr, ok := IsValidationError(form.Validate(req, nil))
	require.True(t, ok)
	assert.Equal(t, `"driving_license" is not a valid choice.`, verr.Fields["document_type"])

	req = validIdentity()
	req.DocumentImageFront = nil
	verr, ok = IsValidationError(form.Validate(req, nil))
	require.True(t, ok)
	assert.Equal(t, "This field is required.", verr.Fields["document_image_front"])
	assert.NoError(t, form.Validate(req, &models.IdentityVerification{DocumentImageFrontURL: "/media/front.jpg"}))

	req = validIdentity()
	req.DocumentImageBack = upload("back.gif", "", 100)
	verr, ok = IsValidationError(form.Validate(req, nil))
	require.True(t, ok)
	assert.Contains(t, verr.Fields, "document_image_back")
}

func TestContactDetailsForm_Validate(t *testing.T) {
	form := contactDetailsForm{}
	bad := 91.0
	tests := []struct {
		name   string
		mutate func(r *models.ContactDetailsRequest)
		field  string
	}{
		{"missing mobile", func(r *models.ContactDetailsRequest) { r.MobileNumber = "" }, "mobile_number"},
		{"bad mobile", func(r *models.ContactDetailsRequest) { r.MobileNumber = "call me" }, "mobile_number"},
		{"bad whatsapp", func(r *models.ContactDetailsRequest) { r.WhatsappNumber = "12" }, "whatsapp_number"},
		{"short telegram", func(r *models.ContactDetailsRequest) { r.TelegramUsername = "abc" }, "telegram_username"},
		{"bad facebook", func(r *models.ContactDetailsRequest) { r.FacebookPageURL = "https://example.com/page" }, "facebook_page_url"},
		{"latitude out of range", func(r *models.ContactDetailsRequest) { r.Latitude = &bad }, "latitude"},
		{"missing country", func(r *models.ContactDetailsRequest) { r.Country = "" }, "country"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validContact()
			tt.mutate(req)
			verr, ok := IsValidationError(form.Validate(req))
			require.True(t, ok)
			assert.Contains(t, verr.Fields, tt.field)
		})
	}
	assert.NoError(t, form.Validate(validContact()))
}

func TestContactDetailsForm_Persist(t *testing.T) {
	form := contactDetailsForm{}
	cd := &models.ContactDetails{
		MobileNumber:           "+923001234567",
		MobileVerified:         models.VerificationVerified,
		MobileVerificationCode: "123456",
		FacebookVerified:       models.VerificationVerified,
	}

	req := validContact()
	form.Persist(cd, req)
	assert.Equal(t, "123456", cd.MobileVerificationCode)

	req.MobileNumber = "+923111111111"
	form.Persist(cd, req)
	assert.Empty(t, cd.MobileVerificationCode)
	assert.Equal(t, models.VerificationVerified, cd.MobileVerified)
	assert.Equal(t, models.VerificationVerified, cd.FacebookVerified)
}

func TestReviewSubmissionForm_Validate(t *testing.T) {
	form := reviewSubmissionForm{}
	verr, ok := IsValidationError(form.Validate(&models.ReviewSubmissionRequest{TermsAccepted: true}))
	require.True(t, ok)
	assert.Len(t, verr.Fields, 1)
	assert.Contains(t, verr.Fields, "privacy_policy_accepted")
	assert.NoError(t, form.Validate(validReview()))
}
