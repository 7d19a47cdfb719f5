package services

import (
	"math"

	"github.com/tesseract-hub/onboarding-service/internal/models"
)

// CompletionPercentage is the share of completed steps, unrounded
func CompletionPercentage(wf models.Workflow, p *models.Profile) float64 {
	if len(wf.Steps) == 0 {
		return 0
	}
	done := 0
	for _, s := range wf.Steps {
		if p.StepCompleted(s) {
			done++
		}
	}
	return 100 * float64(done) / float64(len(wf.Steps))
}

// NextStep is the first incomplete step, or the completed marker
func NextStep(wf models.Workflow, p *models.Profile) models.Step {
	for _, s := range wf.Steps {
		if !p.StepCompleted(s) {
			return s
		}
	}
	return models.StepCompleted
}

// CanProceedToStep allows the current step, any earlier step, or exactly
// one step ahead. An unrecognised current step counts as the first.
func CanProceedToStep(wf models.Workflow, p *models.Profile, step models.Step) bool {
	target := wf.IndexOf(step)
	if target < 0 {
		return false
	}
	return target <= currentPosition(wf, p)+1
}

func currentPosition(wf models.Workflow, p *models.Profile) int {
	pos := wf.Position(p.CurrentStep)
	if pos < 0 {
		return 0
	}
	return pos
}

// advance marks step complete and moves current_step forward when the step
// is at or beyond it; editing an earlier step leaves current_step alone
func advance(wf models.Workflow, p *models.Profile, step models.Step) {
	p.MarkStepCompleted(step)
	if wf.IndexOf(step) >= currentPosition(wf, p) {
		p.CurrentStep = wf.StepAfter(step)
	}
}

type field struct {
	name   string
	filled bool
}

func ratio(prefix string, fields []field, missing *[]string) (int, int) {
	done := 0
	for _, f := range fields {
		if f.filled {
			done++
		} else {
			*missing = append(*missing, prefix+"."+f.name)
		}
	}
	return done, len(fields)
}

func percent(done, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(done)/float64(total)*10000) / 100
}

// FieldCompleteness reports how many of the key fields of each sub-entity
// are filled. Missing sub-entities count as entirely empty.
func FieldCompleteness(p *models.Profile) models.Completeness {
	bp := p.BusinessProfile
	if bp == nil {
		bp = &models.BusinessProfile{}
	}
	iv := p.IdentityVerification
	if iv == nil {
		iv = &models.IdentityVerification{}
	}
	cd := p.ContactDetails
	if cd == nil {
		cd = &models.ContactDetails{}
	}

	missing := []string{}
	bDone, bTotal := ratio("business_profile", []field{
		{"business_name", bp.BusinessName != ""},
		{"license_number", bp.LicenseNumber != ""},
		{"license_document", bp.LicenseDocumentURL != ""},
		{"business_address_line1", bp.AddressLine1 != ""},
		{"business_city", bp.City != ""},
		{"business_state", bp.State != ""},
	}, &missing)
	iDone, iTotal := ratio("identity_verification", []field{
		{"document_type", iv.DocumentType != ""},
		{"document_number", iv.DocumentNumber != ""},
		{"document_image_front", iv.DocumentImageFrontURL != ""},
		{"verification_status", iv.VerificationStatus == models.VerificationVerified},
	}, &missing)
	cDone, cTotal := ratio("contact_details", []field{
		{"address_line1", cd.AddressLine1 != ""},
		{"city", cd.City != ""},
		{"mobile_number", cd.MobileNumber != ""},
		{"latitude", cd.Latitude != nil},
		{"longitude", cd.Longitude != nil},
	}, &missing)

	return models.Completeness{
		BusinessProfile:      percent(bDone, bTotal),
		IdentityVerification: percent(iDone, iTotal),
		ContactDetails:       percent(cDone, cTotal),
		Overall:              percent(bDone+iDone+cDone, bTotal+iTotal+cTotal),
		MissingFields:        missing,
	}
}
