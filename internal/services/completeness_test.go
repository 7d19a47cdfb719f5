package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/tesseract-hub/onboarding-service/internal/models"
)

func hostWorkflow() models.Workflow {
	wf, _ := models.WorkflowFor(models.VariantHost)
	return wf
}

func TestCompletionPercentage(t *testing.T) {
	wf := hostWorkflow()
	tests := []struct {
		name string
		done []models.Step
		want float64
		next models.Step
	}{
		{"none", nil, 0, models.StepBusinessProfile},
		{"one", []models.Step{models.StepBusinessProfile}, 25.0, models.StepIdentityVerification},
		{"two", []models.Step{models.StepBusinessProfile, models.StepIdentityVerification}, 50.0, models.StepContactDetails},
		{"gap", []models.Step{models.StepBusinessProfile, models.StepContactDetails}, 50.0, models.StepIdentityVerification},
		{"all", wf.Steps, 100.0, models.StepCompleted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := models.NewProfile(uuid.New(), wf)
			for _, s := range tt.done {
				p.MarkStepCompleted(s)
			}
			assert.Equal(t, tt.want, CompletionPercentage(wf, p))
			assert.Equal(t, tt.next, NextStep(wf, p))
		})
	}
}

func TestAdvance(t *testing.T) {
	wf := hostWorkflow()
	p := models.NewProfile(uuid.New(), wf)

	advance(wf, p, models.StepBusinessProfile)
	assert.Equal(t, models.StepIdentityVerification, p.CurrentStep)

	// resubmitting an earlier step leaves current_step alone
	advance(wf, p, models.StepBusinessProfile)
	assert.Equal(t, models.StepIdentityVerification, p.CurrentStep)

	advance(wf, p, models.StepIdentityVerification)
	advance(wf, p, models.StepContactDetails)
	advance(wf, p, models.StepReviewSubmission)
	assert.Equal(t, models.StepCompleted, p.CurrentStep)

	advance(wf, p, models.StepContactDetails)
	assert.Equal(t, models.StepCompleted, p.CurrentStep)
}

func TestFieldCompleteness(t *testing.T) {
	empty := FieldCompleteness(&models.Profile{})
	assert.Equal(t, 0.0, empty.Overall)
	assert.Len(t, empty.MissingFields, 15)

	lat := 1.5
	p := &models.Profile{
		BusinessProfile: &models.BusinessProfile{BusinessName: "A", LicenseNumber: "B", City: "C"},
		IdentityVerification: &models.IdentityVerification{
			DocumentType:       models.DocumentTypePassport,
			VerificationStatus: models.VerificationRejected,
		},
		ContactDetails: &models.ContactDetails{AddressLine1: "x", Latitude: &lat},
	}
	c := FieldCompleteness(p)
	assert.Equal(t, 50.0, c.BusinessProfile)
	assert.Equal(t, 25.0, c.IdentityVerification)
	assert.Equal(t, 40.0, c.ContactDetails)
	assert.Equal(t, 40.0, c.Overall)
	assert.Contains(t, c.MissingFields, "identity_verification.verification_status")
	assert.NotContains(t, c.MissingFields, "business_profile.business_name")
}
