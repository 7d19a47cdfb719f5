package services

import (
	"github.com/tesseract-hub/onboarding-service/internal/models"
)

// Summarize builds the list/read view of a profile
func Summarize(wf models.Workflow, p *models.Profile) models.ProfileSummary {
	return models.ProfileSummary{
		ID:                            p.ID,
		Variant:                       p.Variant,
		OwnerID:                       p.OwnerID,
		Status:                        p.Status,
		CurrentStep:                   p.CurrentStep,
		NextStep:                      NextStep(wf, p),
		CompletionPercentage:          CompletionPercentage(wf, p),
		BusinessProfileCompleted:      p.BusinessProfileCompleted,
		IdentityVerificationCompleted: p.IdentityVerificationCompleted,
		ContactDetailsCompleted:       p.ContactDetailsCompleted,
		ReviewSubmissionCompleted:     p.ReviewSubmissionCompleted,
		ReviewNotes:                   p.ReviewNotes,
		CreatedAt:                     p.CreatedAt,
		UpdatedAt:                     p.UpdatedAt,
		SubmittedAt:                   p.SubmittedAt,
		ReviewedAt:                    p.ReviewedAt,
	}
}

// Snapshot builds the compact status view
func Snapshot(wf models.Workflow, p *models.Profile) models.StatusSnapshot {
	return models.StatusSnapshot{
		ProfileID:            p.ID,
		Status:               p.Status,
		CurrentStep:          p.CurrentStep,
		NextStep:             NextStep(wf, p),
		CompletionPercentage: CompletionPercentage(wf, p),
		StepsCompleted:       p.StepsCompleted(wf),
	}
}

// Detail builds the full view from a profile loaded with its relations
func Detail(wf models.Workflow, p *models.Profile) models.ProfileDetail {
	history := make([]models.HistoryEntry, len(p.StatusHistory))
	for i := range p.StatusHistory {
		h := &p.StatusHistory[i]
		history[i] = models.HistoryEntry{
			OldStatus:      h.OldStatus,
			NewStatus:      h.NewStatus,
			ChangedByEmail: h.ChangedByEmail(),
			ChangeReason:   h.ChangeReason,
			CreatedAt:      h.CreatedAt,
		}
	}

	detail := models.ProfileDetail{
		ProfileSummary:       Summarize(wf, p),
		BusinessProfile:      p.BusinessProfile,
		IdentityVerification: p.IdentityVerification,
		ContactDetails:       p.ContactDetails,
		ReviewSubmission:     p.ReviewSubmission,
		StatusHistory:        history,
		Completeness:         FieldCompleteness(p),
	}
	if p.Owner != nil {
		info := userInfo(p.Owner)
		detail.UserInfo = &info
	}
	return detail
}

func userInfo(u *models.User) models.UserInfo {
	return models.UserInfo{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}
