package services

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tesseract-hub/onboarding-service/internal/cache"
	"github.com/tesseract-hub/onboarding-service/internal/models"
	"github.com/tesseract-hub/onboarding-service/internal/storage"
	"github.com/tesseract-hub/onboarding-service/internal/templates"
	"github.com/tesseract-hub/onboarding-service/internal/verification"
)

func TestGetOrCreateProfile_Defaults(t *testing.T) {
	f := newFixture(t, nil)
	owner := f.user(t, "host@example.com", false)

	for _, variant := range []models.Variant{models.VariantHost, models.VariantVendor} {
		p, err := f.profiles.GetOrCreateProfile(context.Background(), variant, owner)
		require.NoError(t, err)
		assert.Equal(t, models.StatusDraft, p.Status)
		assert.Equal(t, models.StepBusinessProfile, p.CurrentStep)
		assert.Equal(t, models.StepBusinessProfile, p.NextStep)
		assert.Equal(t, 0.0, p.CompletionPercentage)
		assert.False(t, p.BusinessProfileCompleted)
	}

	_, err := f.profiles.GetOrCreateProfile(context.Background(), models.Variant("guide"), owner)
	assert.ErrorIs(t, err, ErrUnknownVariant)
}

func TestGetOrCreateProfile_ConcurrentFirstCalls(t *testing.T) {
	f := newFixture(t, nil)
	owner := f.user(t, "race@example.com", false)

	const workers = 6
	ids := make([]uuid.UUID, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p, err := f.profiles.GetOrCreateProfile(context.Background(), models.VariantVendor, owner)
			if assert.NoError(t, err) {
				ids[i] = p.ID
			}
		}(i)
	}
	wg.Wait()

	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}
}

func TestSubmitBusinessProfile_AdvancesAndResubmits(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	owner := f.user(t, "owner@example.com", false)

	res, err := f.profiles.SubmitBusinessProfile(ctx, models.VariantHost, owner, validBusiness())
	require.NoError(t, err)
	assert.True(t, res.Completed)
	assert.True(t, res.Profile.BusinessProfileCompleted)
	assert.Equal(t, models.StepIdentityVerification, res.Profile.CurrentStep)
	assert.Equal(t, models.StepIdentityVerification, res.NextStep)
	assert.Equal(t, 25.0, res.Profile.CompletionPercentage)

	bp := res.Data.(*models.BusinessProfile)
	assert.Contains(t, bp.LicenseDocumentURL, "/media/licenses/")

	// Re-submitting without a new file keeps the stored document
	again := validBusiness()
	again.LicenseDocument = nil
	again.BusinessName = "Sunrise Stays Ltd"
	res, err = f.profiles.SubmitBusinessProfile(ctx, models.VariantHost, owner, again)
	require.NoError(t, err)
	assert.True(t, res.Profile.BusinessProfileCompleted)
	assert.Equal(t, models.StepIdentityVerification, res.Profile.CurrentStep)

	stored, err := f.store.Steps.GetBusinessProfile(ctx, res.Profile.ID)
	require.NoError(t, err)
	assert.Equal(t, "Sunrise Stays Ltd", stored.BusinessName)
	assert.Equal(t, bp.LicenseDocumentURL, stored.LicenseDocumentURL)
}

// failingStore wraps a file store and fails uploads under one prefix
type failingStore struct {
	storage.FileStore
	failPrefix string
}

func (s *failingStore) Store(ctx context.Context, content io.Reader, path, contentType string) (string, error) {
	if s.failPrefix != "" && strings.HasPrefix(path, s.failPrefix) {
		return "", storage.ErrStorageUnavailable
	}
	return s.FileStore.Store(ctx, content, path, contentType)
}

func TestSubmitBusinessProfile_FailedResubmitKeepsSavedDocument(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	owner := f.user(t, "keep@example.com", false)

	dir := t.TempDir()
	local, err := storage.NewLocalStore(dir, "/media", logrus.New())
	require.NoError(t, err)
	files := &failingStore{FileStore: local}
	f.profiles.files = files

	res, err := f.profiles.SubmitBusinessProfile(ctx, models.VariantHost, owner, validBusiness())
	require.NoError(t, err)
	saved := res.Data.(*models.BusinessProfile).LicenseDocumentURL
	savedFile := filepath.Join(dir, filepath.FromSlash(strings.TrimPrefix(saved, "/media/")))
	_, err = os.Stat(savedFile)
	require.NoError(t, err)

	// Same license filename again, but the logo upload fails
	files.failPrefix = "business_logos/"
	again := validBusiness()
	again.BusinessLogo = upload("logo.png", "image/png", 512)
	_, err = f.profiles.SubmitBusinessProfile(ctx, models.VariantHost, owner, again)
	require.ErrorIs(t, err, ErrExternalServiceUnavailable)

	stored, err := f.store.Steps.GetBusinessProfile(ctx, res.Profile.ID)
	require.NoError(t, err)
	assert.Equal(t, saved, stored.LicenseDocumentURL)
	_, err = os.Stat(savedFile)
	assert.NoError(t, err, "saved license file must survive a failed resubmission")

	entries, err := os.ReadDir(filepath.Dir(savedFile))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "the second license upload is rolled back")
}

func TestSubmitBusinessProfile_ValidationLeavesNothingBehind(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	owner := f.user(t, "owner@example.com", false)

	req := validBusiness()
	req.BusinessName = ""
	req.LicenseDocument = upload("license.exe", "application/octet-stream", 1024)

	_, err := f.profiles.SubmitBusinessProfile(ctx, models.VariantHost, owner, req)
	verr, ok := IsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, "This field is required.", verr.Fields["business_name"])
	assert.Equal(t, "License document must be PDF, JPG, JPEG, or PNG format.", verr.Fields["license_document"])

	p, err := f.profiles.GetOrCreateProfile(ctx, models.VariantHost, owner)
	require.NoError(t, err)
	assert.False(t, p.BusinessProfileCompleted)
	_, err = f.store.Steps.GetBusinessProfile(ctx, p.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSubmitStep_Gating(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	owner := f.user(t, "skipper@example.com", false)

	_, err := f.profiles.SubmitContactDetails(ctx, models.VariantHost, owner, validContact())
	stepErr, ok := IsStepNotAccessible(err)
	require.True(t, ok)
	assert.Equal(t, models.StepContactDetails, stepErr.Step)
	assert.Equal(t, models.StepBusinessProfile, stepErr.CurrentStep)

	_, err = f.profiles.SubmitForReview(ctx, models.VariantHost, owner, validReview())
	_, ok = IsStepNotAccessible(err)
	assert.True(t, ok)

	// One step ahead is allowed
	_, err = f.profiles.SubmitIdentityVerification(ctx, models.VariantHost, owner, validIdentity())
	require.NoError(t, err)
}

func TestCanProceedToStep(t *testing.T) {
	wf, _ := models.WorkflowFor(models.VariantHost)
	tests := []struct {
		name    string
		current models.Step
		target  models.Step
		want    bool
	}{
		{"same step", models.StepBusinessProfile, models.StepBusinessProfile, true},
		{"one ahead", models.StepBusinessProfile, models.StepIdentityVerification, true},
		{"two ahead", models.StepBusinessProfile, models.StepContactDetails, false},
		{"three ahead", models.StepBusinessProfile, models.StepReviewSubmission, false},
		{"backwards", models.StepContactDetails, models.StepBusinessProfile, true},
		{"unknown current counts as first", models.Step("bogus"), models.StepIdentityVerification, true},
		{"unknown current blocks skipping", models.Step("bogus"), models.StepContactDetails, false},
		{"completed allows edits", models.StepCompleted, models.StepContactDetails, true},
		{"unknown target", models.StepBusinessProfile, models.Step("bogus"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &models.Profile{CurrentStep: tt.current}
			assert.Equal(t, tt.want, CanProceedToStep(wf, p, tt.target))
		})
	}
}

func TestSubmitStep_EarlierStepDoesNotRegress(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	owner := f.user(t, "editor@example.com", false)
	f.completeSteps(t, models.VariantVendor, owner)

	req := validBusiness()
	req.LicenseDocument = nil
	res, err := f.profiles.SubmitBusinessProfile(ctx, models.VariantVendor, owner, req)
	require.NoError(t, err)
	assert.Equal(t, models.StepReviewSubmission, res.Profile.CurrentStep)
	assert.Equal(t, 75.0, res.Profile.CompletionPercentage)
}

func TestSubmitIdentityVerification_Success(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	owner := f.user(t, "id@example.com", false)
	_, err := f.profiles.SubmitBusinessProfile(ctx, models.VariantHost, owner, validBusiness())
	require.NoError(t, err)

	res, err := f.profiles.SubmitIdentityVerification(ctx, models.VariantHost, owner, validIdentity())
	require.NoError(t, err)
	assert.True(t, res.Completed)
	assert.Equal(t, models.StepContactDetails, res.Profile.CurrentStep)

	iv := res.Data.(*models.IdentityVerification)
	assert.Equal(t, models.VerificationVerified, iv.VerificationStatus)
	assert.Equal(t, "John Doe", iv.FullName)
	assert.Equal(t, "Richard Doe", iv.FathersName)
	assert.Equal(t, 1, iv.AttemptCount)
	require.NotNil(t, iv.VerifiedAt)
	assert.Equal(t, f.clock.Now(), *iv.VerifiedAt)
}

func TestSubmitIdentityVerification_Failures(t *testing.T) {
	tests := []struct {
		name      string
		result    *verification.Result
		err       error
		wantNotes string
	}{
		{
			name:      "document rejected",
			result:    &verification.Result{Success: false, Error: "Invalid document number format"},
			wantNotes: "Invalid document number format",
		},
		{
			name:      "service unavailable",
			err:       errors.New("dial tcp: connection refused"),
			wantNotes: "Verification service unavailable",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verifier := &mockVerifier{}
			verifier.On("Verify", mock.Anything).Return(tt.result, tt.err)
			f := newFixture(t, verifier)
			ctx := context.Background()
			owner := f.user(t, "id@example.com", false)
			_, err := f.profiles.SubmitBusinessProfile(ctx, models.VariantHost, owner, validBusiness())
			require.NoError(t, err)

			res, err := f.profiles.SubmitIdentityVerification(ctx, models.VariantHost, owner, validIdentity())
			require.NoError(t, err)
			assert.False(t, res.Completed)
			assert.False(t, res.Profile.IdentityVerificationCompleted)
			assert.Equal(t, models.StepIdentityVerification, res.Profile.CurrentStep)

			iv := res.Data.(*models.IdentityVerification)
			assert.Equal(t, models.VerificationRejected, iv.VerificationStatus)
			assert.Equal(t, tt.wantNotes, iv.VerificationNotes)
			assert.Empty(t, iv.FullName)

			// Retries are not capped
			res, err = f.profiles.SubmitIdentityVerification(ctx, models.VariantHost, owner, validIdentity())
			require.NoError(t, err)
			assert.Equal(t, 2, res.Data.(*models.IdentityVerification).AttemptCount)
			verifier.AssertNumberOfCalls(t, "Verify", 2)
		})
	}
}

func TestSubmitIdentityVerification_ShortDocumentNumberRejected(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	owner := f.user(t, "id@example.com", false)
	_, err := f.profiles.SubmitBusinessProfile(ctx, models.VariantHost, owner, validBusiness())
	require.NoError(t, err)

	req := validIdentity()
	req.DocumentNumber = "123"
	res, err := f.profiles.SubmitIdentityVerification(ctx, models.VariantHost, owner, req)
	require.NoError(t, err)
	assert.False(t, res.Completed)
	iv := res.Data.(*models.IdentityVerification)
	assert.Equal(t, models.VerificationRejected, iv.VerificationStatus)
	assert.Equal(t, "Invalid document number format", iv.VerificationNotes)
	assert.Empty(t, iv.FullName)
	assert.Nil(t, iv.DateOfBirth)
}

func TestSubmitContactDetails_SendsMobileCode(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	owner := f.user(t, "contact@example.com", false)
	_, err := f.profiles.SubmitBusinessProfile(ctx, models.VariantHost, owner, validBusiness())
	require.NoError(t, err)
	_, err = f.profiles.SubmitIdentityVerification(ctx, models.VariantHost, owner, validIdentity())
	require.NoError(t, err)

	res, err := f.profiles.SubmitContactDetails(ctx, models.VariantHost, owner, validContact())
	require.NoError(t, err)
	assert.Equal(t, models.StepReviewSubmission, res.Profile.CurrentStep)

	cd := res.Data.(*models.ContactDetails)
	assert.Equal(t, "@sunrise_stays", cd.TelegramUsername)
	assert.Equal(t, models.VerificationPending, cd.MobileVerified)

	sms := f.gateway.byTemplate(templates.MobileVerificationCode)
	require.Len(t, sms, 1)
	assert.Equal(t, "+923001234567", sms[0].Recipient)
	assert.Len(t, sms[0].Context["code"], 6)

	stored, err := f.store.Steps.GetContactDetails(ctx, res.Profile.ID)
	require.NoError(t, err)
	assert.Equal(t, sms[0].Context["code"], stored.MobileVerificationCode)
}

func TestSubmitForReview_RequiresPriorSteps(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	owner := f.user(t, "early@example.com", false)

	// Force current_step to review without the flags
	p, err := f.profiles.GetOrCreateProfile(ctx, models.VariantHost, owner)
	require.NoError(t, err)
	raw, err := f.store.Profiles.GetByID(ctx, p.ID)
	require.NoError(t, err)
	raw.CurrentStep = models.StepReviewSubmission
	raw.BusinessProfileCompleted = true
	require.NoError(t, f.store.Profiles.Save(ctx, raw))

	_, err = f.profiles.SubmitForReview(ctx, models.VariantHost, owner, validReview())
	incomplete, ok := IsIncompleteSteps(err)
	require.True(t, ok)
	assert.Equal(t, []models.Step{models.StepIdentityVerification, models.StepContactDetails}, incomplete.Missing)
}

func TestSubmitForReview_Acknowledgements(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	owner := f.user(t, "terms@example.com", false)
	f.completeSteps(t, models.VariantHost, owner)

	_, err := f.profiles.SubmitForReview(ctx, models.VariantHost, owner, &models.ReviewSubmissionRequest{})
	verr, ok := IsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, "You must accept the terms and conditions to proceed.", verr.Fields["terms_accepted"])
	assert.Equal(t, "You must accept the privacy policy to proceed.", verr.Fields["privacy_policy_accepted"])

	p, err := f.profiles.GetOrCreateProfile(ctx, models.VariantHost, owner)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDraft, p.Status)
}

func TestSubmitForReview_Success(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	f.user(t, "staff1@example.com", true)
	f.user(t, "staff2@example.com", true)
	owner := f.user(t, "owner@example.com", false)
	f.completeSteps(t, models.VariantHost, owner)

	res, err := f.profiles.SubmitForReview(ctx, models.VariantHost, owner, validReview())
	require.NoError(t, err)
	assert.Equal(t, models.StatusSubmitted, res.Profile.Status)
	assert.Equal(t, models.StepCompleted, res.Profile.CurrentStep)
	assert.Equal(t, models.StepCompleted, res.NextStep)
	assert.Equal(t, 100.0, res.Profile.CompletionPercentage)
	require.NotNil(t, res.Profile.SubmittedAt)

	history, err := f.store.History.ListByProfile(ctx, res.Profile.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "draft", history[0].OldStatus)
	assert.Equal(t, "submitted", history[0].NewStatus)
	assert.Equal(t, ReasonSubmittedForReview, history[0].ChangeReason)
	require.NotNil(t, history[0].ChangedByID)
	assert.Equal(t, owner.UserID, *history[0].ChangedByID)

	ownerMail := f.gateway.byTemplate(templates.ProfileSubmitted)
	require.Len(t, ownerMail, 1)
	assert.Equal(t, "owner@example.com", ownerMail[0].Recipient)
	assert.Equal(t, "Host", ownerMail[0].Context["label"])
	assert.Len(t, f.gateway.byTemplate(templates.AdminNewSubmission), 2)

	f.events.AssertCalled(t, "PublishStatusChanged", mock.MatchedBy(func(e models.StatusChangedEvent) bool {
		return e.ProfileID == res.Profile.ID && e.OldStatus == models.StatusDraft && e.NewStatus == models.StatusSubmitted
	}))
}

func TestSubmitForReview_EventFailureDoesNotFail(t *testing.T) {
	f := newFixture(t, nil)
	f.events.ExpectedCalls = nil
	f.events.On("PublishStatusChanged", mock.Anything).Return(errors.New("nats down"))
	owner := f.user(t, "owner@example.com", false)
	f.completeSteps(t, models.VariantHost, owner)

	res, err := f.profiles.SubmitForReview(context.Background(), models.VariantHost, owner, validReview())
	require.NoError(t, err)
	assert.Equal(t, models.StatusSubmitted, res.Profile.Status)
}

func TestGetStatus_CachedAndRefreshed(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	owner := f.user(t, "status@example.com", false)

	snap, err := f.profiles.GetStatus(ctx, models.VariantHost, owner)
	require.NoError(t, err)
	assert.Equal(t, 0.0, snap.CompletionPercentage)
	assert.False(t, snap.StepsCompleted[models.StepBusinessProfile])
	assert.True(t, f.mr.Exists(cache.StatusCacheKey("host", owner.UserID)))

	_, err = f.profiles.SubmitBusinessProfile(ctx, models.VariantHost, owner, validBusiness())
	require.NoError(t, err)

	var cached models.StatusSnapshot
	found, err := f.profiles.cache.GetJSON(ctx, cache.StatusCacheKey("host", owner.UserID), &cached)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 25.0, cached.CompletionPercentage)

	snap, err = f.profiles.GetStatus(ctx, models.VariantHost, owner)
	require.NoError(t, err)
	assert.Equal(t, 25.0, snap.CompletionPercentage)
	assert.Equal(t, models.StepIdentityVerification, snap.NextStep)
	assert.True(t, snap.StepsCompleted[models.StepBusinessProfile])
}

func TestGetStatus_StaleReadDoesNotOverwriteCommittedSnapshot(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	owner := f.user(t, "race-status@example.com", false)
	key := cache.StatusCacheKey("host", owner.UserID)
	wf, ok := models.WorkflowFor(models.VariantHost)
	require.True(t, ok)

	// A status read loads the draft profile, then a submission commits
	// before that read gets to fill the cache.
	_, err := f.profiles.GetOrCreateProfile(ctx, models.VariantHost, owner)
	require.NoError(t, err)
	draft, err := f.store.Profiles.GetByOwner(ctx, owner.UserID, models.VariantHost)
	require.NoError(t, err)
	staleSnapshot := Snapshot(wf, draft)

	_, err = f.profiles.SubmitBusinessProfile(ctx, models.VariantHost, owner, validBusiness())
	require.NoError(t, err)

	f.profiles.fillStatus(ctx, key, staleSnapshot)

	snap, err := f.profiles.GetStatus(ctx, models.VariantHost, owner)
	require.NoError(t, err)
	assert.Equal(t, 25.0, snap.CompletionPercentage)
	assert.True(t, snap.StepsCompleted[models.StepBusinessProfile])

	// With the key gone the read fills it
	f.mr.Del(key)
	f.profiles.fillStatus(ctx, key, staleSnapshot)
	assert.True(t, f.mr.Exists(key))
}

func TestGetProfile_Access(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	owner := f.user(t, "owner@example.com", false)
	stranger := f.user(t, "stranger@example.com", false)
	staff := f.user(t, "staff@example.com", true)

	p, err := f.profiles.GetOrCreateProfile(ctx, models.VariantHost, owner)
	require.NoError(t, err)

	detail, err := f.profiles.GetProfile(ctx, models.VariantHost, owner, p.ID)
	require.NoError(t, err)
	require.NotNil(t, detail.UserInfo)
	assert.Equal(t, "owner@example.com", detail.UserInfo.Email)

	_, err = f.profiles.GetProfile(ctx, models.VariantHost, staff, p.ID)
	assert.NoError(t, err)

	_, err = f.profiles.GetProfile(ctx, models.VariantHost, stranger, p.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.profiles.GetProfile(ctx, models.VariantVendor, owner, p.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.profiles.GetProfile(ctx, models.VariantHost, owner, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListProfiles_StaffOnly(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	staff := f.user(t, "staff@example.com", true)
	a := f.user(t, "a@example.com", false)
	b := f.user(t, "b@example.com", false)
	for _, u := range []models.Actor{a, b} {
		_, err := f.profiles.GetOrCreateProfile(ctx, models.VariantVendor, u)
		require.NoError(t, err)
	}

	_, _, err := f.profiles.ListProfiles(ctx, models.VariantVendor, a, models.ProfileFilter{})
	assert.ErrorIs(t, err, ErrForbidden)

	list, total, err := f.profiles.ListProfiles(ctx, models.VariantVendor, staff, models.ProfileFilter{Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, list, 1)

	list, _, err = f.profiles.ListProfiles(ctx, models.VariantHost, staff, models.ProfileFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestAccountViewAndIsVerified(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	staff := f.user(t, "staff@example.com", true)
	owner, id := f.submitted(t, models.VariantHost, "owner@example.com")

	verified, err := f.profiles.IsVerified(ctx, models.VariantHost, owner.UserID)
	require.NoError(t, err)
	assert.False(t, verified)

	_, err = f.admin.Review(ctx, models.VariantHost, staff, id, &models.AdminReviewRequest{Status: models.StatusApproved})
	require.NoError(t, err)

	verified, err = f.profiles.IsVerified(ctx, models.VariantHost, owner.UserID)
	require.NoError(t, err)
	assert.True(t, verified)

	verified, err = f.profiles.IsVerified(ctx, models.VariantVendor, owner.UserID)
	require.NoError(t, err)
	assert.False(t, verified)

	view, err := f.profiles.GetAccountView(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, "owner@example.com", view.User.Email)
	require.NotNil(t, view.HostProfile)
	assert.Nil(t, view.VendorProfile)
	assert.True(t, view.IsVerifiedHost)
	assert.False(t, view.IsVerifiedVendor)
}
