package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/tesseract-hub/onboarding-service/internal/cache"
	"github.com/tesseract-hub/onboarding-service/internal/metrics"
	"github.com/tesseract-hub/onboarding-service/internal/models"
	"github.com/tesseract-hub/onboarding-service/internal/repository"
	"github.com/tesseract-hub/onboarding-service/internal/storage"
	"github.com/tesseract-hub/onboarding-service/internal/verification"
	"gorm.io/datatypes"
)

// DefaultStatusTTL is how long a status snapshot stays cached
const DefaultStatusTTL = 5 * time.Minute

const verificationUnavailableNote = "Verification service unavailable"

// MobileCodeSender sends a fresh mobile code for a profile's contact record
type MobileCodeSender interface {
	SendCodeForProfile(ctx context.Context, profileID uuid.UUID) (*models.MobileCodeResponse, error)
}

// ProfileService is the onboarding state machine shared by every variant
type ProfileService struct {
	store     *repository.Store
	files     storage.FileStore
	verifier  verification.Verifier
	notifier  *ProfileNotifier
	mobile    MobileCodeSender
	effects   *afterCommit
	cache     cache.Cache
	statusTTL time.Duration
	logger    *logrus.Entry
	now       func() time.Time

	business businessProfileForm
	identity identityVerificationForm
	contact  contactDetailsForm
	review   reviewSubmissionForm
}

// NewProfileService creates the state machine. events and mobile may be nil.
func NewProfileService(
	store *repository.Store,
	files storage.FileStore,
	verifier verification.Verifier,
	notifier *ProfileNotifier,
	mobile MobileCodeSender,
	events StatusEventPublisher,
	statusCache cache.Cache,
	logger *logrus.Logger,
) *ProfileService {
	if statusCache == nil {
		statusCache = cache.NewNoOpCache()
	}
	entry := logger.WithField("component", "profile_service")
	return &ProfileService{
		store:     store,
		files:     files,
		verifier:  verifier,
		notifier:  notifier,
		mobile:    mobile,
		effects:   &afterCommit{events: events, cache: statusCache, ttl: DefaultStatusTTL, logger: entry},
		cache:     statusCache,
		statusTTL: DefaultStatusTTL,
		logger:    entry,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// SetClock replaces the time source
func (s *ProfileService) SetClock(now func() time.Time) {
	s.now = now
}

// SetStatusTTL overrides the status snapshot lifetime
func (s *ProfileService) SetStatusTTL(ttl time.Duration) {
	if ttl > 0 {
		s.statusTTL = ttl
		s.effects.ttl = ttl
	}
}

func workflowFor(variant models.Variant) (models.Workflow, error) {
	wf, ok := models.WorkflowFor(variant)
	if !ok {
		return models.Workflow{}, ErrUnknownVariant
	}
	return wf, nil
}

func (s *ProfileService) ownProfile(ctx context.Context, wf models.Workflow, actor models.Actor) (*models.Profile, error) {
	profile, created, err := s.store.Profiles.GetOrCreate(ctx, actor.UserID, wf)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("failed to get or create profile: %w", err)
	}
	if created {
		s.logger.WithFields(logrus.Fields{
			"profile_id": profile.ID,
			"variant":    wf.Variant,
			"owner_id":   actor.UserID,
		}).Info("Created onboarding profile")
	}
	return profile, nil
}

// GetOrCreateProfile returns the caller's profile, creating it in draft on first use
func (s *ProfileService) GetOrCreateProfile(ctx context.Context, variant models.Variant, actor models.Actor) (*models.ProfileSummary, error) {
	wf, err := workflowFor(variant)
	if err != nil {
		return nil, err
	}
	profile, err := s.ownProfile(ctx, wf, actor)
	if err != nil {
		return nil, err
	}
	summary := Summarize(wf, profile)
	return &summary, nil
}

// GetStatus returns the caller's progress snapshot, served from cache when possible
func (s *ProfileService) GetStatus(ctx context.Context, variant models.Variant, actor models.Actor) (*models.StatusSnapshot, error) {
	wf, err := workflowFor(variant)
	if err != nil {
		return nil, err
	}

	key := cache.StatusCacheKey(string(variant), actor.UserID)
	var cached models.StatusSnapshot
	if found, err := s.cache.GetJSON(ctx, key, &cached); err != nil {
		s.logger.WithError(err).Warn("Failed to read status cache")
	} else if found {
		return &cached, nil
	}

	profile, err := s.ownProfile(ctx, wf, actor)
	if err != nil {
		return nil, err
	}
	snapshot := Snapshot(wf, profile)
	s.fillStatus(ctx, key, snapshot)
	return &snapshot, nil
}

// fillStatus caches a snapshot read outside any write. It never replaces an
// existing entry, since a write that committed after the read refreshes it.
func (s *ProfileService) fillStatus(ctx context.Context, key string, snapshot models.StatusSnapshot) {
	if _, err := s.cache.SetJSONIfAbsent(ctx, key, snapshot, s.statusTTL); err != nil {
		s.logger.WithError(err).Warn("Failed to write status cache")
	}
}

// GetProfile returns the full view of a profile to its owner or to staff
func (s *ProfileService) GetProfile(ctx context.Context, variant models.Variant, actor models.Actor, id uuid.UUID) (*models.ProfileDetail, error) {
	wf, err := workflowFor(variant)
	if err != nil {
		return nil, err
	}
	profile, err := s.store.Profiles.GetDetail(ctx, id)
	if err != nil {
		return nil, err
	}
	if profile.Variant != variant {
		return nil, ErrNotFound
	}
	if profile.OwnerID != actor.UserID && !actor.IsStaff {
		return nil, ErrForbidden
	}
	detail := Detail(wf, profile)
	return &detail, nil
}

// ListProfiles lists a variant's profiles for staff, newest first
func (s *ProfileService) ListProfiles(ctx context.Context, variant models.Variant, actor models.Actor, filter models.ProfileFilter) ([]models.ProfileSummary, int64, error) {
	wf, err := workflowFor(variant)
	if err != nil {
		return nil, 0, err
	}
	if !actor.IsStaff {
		return nil, 0, ErrForbidden
	}
	filter.Variant = variant
	profiles, total, err := s.store.Profiles.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list profiles: %w", err)
	}
	out := make([]models.ProfileSummary, len(profiles))
	for i := range profiles {
		out[i] = Summarize(wf, &profiles[i])
	}
	return out, total, nil
}

// GetAccountView combines the caller with whichever profiles they own
func (s *ProfileService) GetAccountView(ctx context.Context, actor models.Actor) (*models.AccountView, error) {
	user, err := s.store.Users.GetByID(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	profiles, err := s.store.Profiles.ListByOwner(ctx, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}

	view := &models.AccountView{User: userInfo(user)}
	for i := range profiles {
		p := &profiles[i]
		wf, ok := models.WorkflowFor(p.Variant)
		if !ok {
			continue
		}
		summary := Summarize(wf, p)
		switch p.Variant {
		case models.VariantHost:
			view.HostProfile = &summary
			view.IsVerifiedHost = p.Status == models.StatusApproved
		case models.VariantVendor:
			view.VendorProfile = &summary
			view.IsVerifiedVendor = p.Status == models.StatusApproved
		}
	}
	return view, nil
}

// IsVerified reports whether the user's profile of the variant is approved
func (s *ProfileService) IsVerified(ctx context.Context, variant models.Variant, userID uuid.UUID) (bool, error) {
	profile, err := s.store.Profiles.GetByOwner(ctx, userID, variant)
	if errors.Is(err, repository.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return profile.Status == models.StatusApproved, nil
}

// gate checks that the caller may submit step
func (s *ProfileService) gate(wf models.Workflow, profile *models.Profile, step models.Step) error {
	if !CanProceedToStep(wf, profile, step) {
		return &StepNotAccessibleError{Step: step, CurrentStep: profile.CurrentStep}
	}
	return nil
}

// uploads tracks stored files so a failed write can remove them again
type uploads struct {
	files  storage.FileStore
	paths  []string
	logger *logrus.Entry
}

func (u *uploads) store(ctx context.Context, field string, file *models.FileUpload, path string) (string, error) {
	if file == nil {
		return "", nil
	}
	contentType := file.ContentType
	if contentType == "" {
		contentType = storage.DetectContentType(file.Filename)
	}
	url, err := u.files.Store(ctx, file.Content, path, contentType)
	if err != nil {
		u.logger.WithError(err).WithField("field", field).Error("Failed to store uploaded file")
		return "", fmt.Errorf("failed to store %s: %w", field, ErrExternalServiceUnavailable)
	}
	u.paths = append(u.paths, path)
	return url, nil
}

func (u *uploads) rollback(ctx context.Context) {
	for _, path := range u.paths {
		if err := u.files.Delete(ctx, path); err != nil {
			u.logger.WithError(err).WithField("path", path).Warn("Failed to remove orphaned upload")
		}
	}
}

func (s *ProfileService) newUploads() *uploads {
	return &uploads{files: s.files, logger: s.logger}
}

// lockForStep re-reads the profile under a row lock and repeats the gate
// check against the locked state
func (s *ProfileService) lockForStep(ctx context.Context, tx *repository.Store, wf models.Workflow, id uuid.UUID, step models.Step) (*models.Profile, error) {
	locked, err := tx.Profiles.GetForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.gate(wf, locked, step); err != nil {
		return nil, err
	}
	return locked, nil
}

func stepOutcome(err error) string {
	if err == nil {
		return "completed"
	}
	if _, ok := IsValidationError(err); ok {
		return "invalid"
	}
	if _, ok := IsStepNotAccessible(err); ok {
		return "not_accessible"
	}
	if _, ok := IsIncompleteSteps(err); ok {
		return "incomplete"
	}
	return "error"
}

func observeStep(variant models.Variant, step models.Step, outcome string) {
	metrics.StepSubmissionsTotal.WithLabelValues(string(variant), string(step), outcome).Inc()
}

func ignoreNotFound(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	return err
}

// SubmitBusinessProfile saves the business step and advances the profile
func (s *ProfileService) SubmitBusinessProfile(ctx context.Context, variant models.Variant, actor models.Actor, req *models.BusinessProfileRequest) (result *models.StepResult, err error) {
	step := models.StepBusinessProfile
	defer func() { observeStep(variant, step, stepOutcome(err)) }()

	wf, err := workflowFor(variant)
	if err != nil {
		return nil, err
	}
	profile, err := s.ownProfile(ctx, wf, actor)
	if err != nil {
		return nil, err
	}
	if err := s.gate(wf, profile, step); err != nil {
		return nil, err
	}

	existing, err := s.store.Steps.GetBusinessProfile(ctx, profile.ID)
	if err = ignoreNotFound(err); err != nil {
		return nil, fmt.Errorf("failed to load business profile: %w", err)
	}
	if err := s.business.Validate(req, existing); err != nil {
		return nil, err
	}

	up := s.newUploads()
	var licenseURL, logoURL string
	if req.LicenseDocument != nil {
		licenseURL, err = up.store(ctx, "license_document", req.LicenseDocument, storage.LicensePath(profile.ID, req.LicenseDocument.Filename))
		if err != nil {
			return nil, err
		}
	}
	if req.BusinessLogo != nil {
		logoURL, err = up.store(ctx, "business_logo", req.BusinessLogo, storage.LogoPath(profile.ID, req.BusinessLogo.Filename))
		if err != nil {
			up.rollback(ctx)
			return nil, err
		}
	}

	var saved *models.BusinessProfile
	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		locked, err := s.lockForStep(ctx, tx, wf, profile.ID, step)
		if err != nil {
			return err
		}
		bp, err := tx.Steps.GetOrCreateBusinessProfile(ctx, locked.ID)
		if err != nil {
			return fmt.Errorf("failed to get business profile: %w", err)
		}
		s.business.Persist(bp, req, licenseURL, logoURL)
		if err := tx.Steps.Save(ctx, bp); err != nil {
			return fmt.Errorf("failed to save business profile: %w", err)
		}
		advance(wf, locked, step)
		if err := tx.Profiles.Save(ctx, locked); err != nil {
			return fmt.Errorf("failed to save profile: %w", err)
		}
		profile, saved = locked, bp
		return nil
	})
	if err != nil {
		up.rollback(ctx)
		return nil, err
	}

	s.effects.refresh(ctx, profile)
	return s.stepResult(wf, profile, step, true, saved), nil
}

// SubmitIdentityVerification saves the identity step and runs the document
// check. The step only completes when the check succeeds; a failed or
// unreachable verifier leaves the record rejected and the profile in place.
func (s *ProfileService) SubmitIdentityVerification(ctx context.Context, variant models.Variant, actor models.Actor, req *models.IdentityVerificationRequest) (result *models.StepResult, err error) {
	step := models.StepIdentityVerification
	defer func() { observeStep(variant, step, stepOutcome(err)) }()

	wf, err := workflowFor(variant)
	if err != nil {
		return nil, err
	}
	profile, err := s.ownProfile(ctx, wf, actor)
	if err != nil {
		return nil, err
	}
	if err := s.gate(wf, profile, step); err != nil {
		return nil, err
	}

	existing, err := s.store.Steps.GetIdentityVerification(ctx, profile.ID)
	if err = ignoreNotFound(err); err != nil {
		return nil, fmt.Errorf("failed to load identity verification: %w", err)
	}
	if err := s.identity.Validate(req, existing); err != nil {
		return nil, err
	}

	up := s.newUploads()
	var frontURL, backURL string
	if req.DocumentImageFront != nil {
		frontURL, err = up.store(ctx, "document_image_front", req.DocumentImageFront,
			storage.IdentityDocumentPath(profile.ID, "front", req.DocumentImageFront.Filename))
		if err != nil {
			return nil, err
		}
	}
	if req.DocumentImageBack != nil {
		backURL, err = up.store(ctx, "document_image_back", req.DocumentImageBack,
			storage.IdentityDocumentPath(profile.ID, "back", req.DocumentImageBack.Filename))
		if err != nil {
			up.rollback(ctx)
			return nil, err
		}
	}

	// The verifier is remote, so it runs before the row lock is taken
	vreq := verification.Request{
		DocumentType:   req.DocumentType,
		DocumentNumber: req.DocumentNumber,
		FrontImageURL:  frontURL,
		BackImageURL:   backURL,
	}
	if existing != nil {
		if vreq.FrontImageURL == "" {
			vreq.FrontImageURL = existing.DocumentImageFrontURL
		}
		if vreq.BackImageURL == "" {
			vreq.BackImageURL = existing.DocumentImageBackURL
		}
	}
	outcome := s.verify(ctx, profile.ID, vreq)

	var saved *models.IdentityVerification
	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		locked, err := s.lockForStep(ctx, tx, wf, profile.ID, step)
		if err != nil {
			return err
		}
		iv, err := tx.Steps.GetOrCreateIdentityVerification(ctx, locked.ID)
		if err != nil {
			return fmt.Errorf("failed to get identity verification: %w", err)
		}
		s.identity.Persist(iv, req, frontURL, backURL)
		outcome.apply(iv, s.now())
		if err := tx.Steps.Save(ctx, iv); err != nil {
			return fmt.Errorf("failed to save identity verification: %w", err)
		}
		if outcome.verified() {
			advance(wf, locked, step)
			if err := tx.Profiles.Save(ctx, locked); err != nil {
				return fmt.Errorf("failed to save profile: %w", err)
			}
		}
		profile, saved = locked, iv
		return nil
	})
	if err != nil {
		up.rollback(ctx)
		return nil, err
	}

	s.effects.refresh(ctx, profile)
	return s.stepResult(wf, profile, step, outcome.verified(), saved), nil
}

// verifyOutcome is a verifier answer ready to be applied inside a transaction
type verifyOutcome struct {
	result *verification.Result
	err    error
}

func (o verifyOutcome) verified() bool {
	return o.err == nil && o.result != nil && o.result.Success
}

func (o verifyOutcome) apply(iv *models.IdentityVerification, now time.Time) {
	iv.AttemptCount++
	iv.LastAttemptedAt = &now

	if !o.verified() {
		iv.VerificationStatus = models.VerificationRejected
		switch {
		case o.err != nil || o.result == nil:
			iv.VerificationNotes = verificationUnavailableNote
		case o.result.Error != "":
			iv.VerificationNotes = o.result.Error
		default:
			iv.VerificationNotes = "Verification failed"
		}
		return
	}

	iv.VerificationStatus = models.VerificationVerified
	iv.VerificationNotes = ""
	iv.VerifiedAt = &now
	if f := o.result.Fields; f != nil {
		iv.Confidence = f.Confidence
		iv.FullName = f.FullName
		iv.FathersName = f.FathersName
		iv.DateOfBirth = f.DateOfBirth
		iv.IDAddressLine1 = f.AddressLine1
		iv.IDAddressLine2 = f.AddressLine2
		iv.IDCity = f.City
		iv.IDState = f.State
		iv.IDPostalCode = f.PostalCode
		iv.IDCountry = f.Country
	}
	if len(o.result.Raw) > 0 {
		if raw, err := json.Marshal(o.result.Raw); err == nil {
			iv.ExtractedData = datatypes.JSON(raw)
		}
	}
}

func (s *ProfileService) verify(ctx context.Context, profileID uuid.UUID, req verification.Request) verifyOutcome {
	log := s.logger.WithFields(logrus.Fields{"profile_id": profileID, "document_type": req.DocumentType})

	res, err := s.verifier.Verify(ctx, req)
	switch {
	case err != nil:
		metrics.IdentityVerificationsTotal.WithLabelValues("error").Inc()
		log.WithError(err).Error("Identity verification service failed")
		return verifyOutcome{err: fmt.Errorf("%w: %v", ErrExternalServiceUnavailable, err)}
	case res == nil || !res.Success:
		metrics.IdentityVerificationsTotal.WithLabelValues("rejected").Inc()
		log.Info("Identity document rejected")
	default:
		metrics.IdentityVerificationsTotal.WithLabelValues("verified").Inc()
		log.Info("Identity document verified")
	}
	return verifyOutcome{result: res}
}

// SubmitContactDetails saves the contact step and advances the profile. An
// unverified mobile number gets a code right after the commit.
func (s *ProfileService) SubmitContactDetails(ctx context.Context, variant models.Variant, actor models.Actor, req *models.ContactDetailsRequest) (result *models.StepResult, err error) {
	step := models.StepContactDetails
	defer func() { observeStep(variant, step, stepOutcome(err)) }()

	wf, err := workflowFor(variant)
	if err != nil {
		return nil, err
	}
	profile, err := s.ownProfile(ctx, wf, actor)
	if err != nil {
		return nil, err
	}
	if err := s.gate(wf, profile, step); err != nil {
		return nil, err
	}
	if err := s.contact.Validate(req); err != nil {
		return nil, err
	}

	var saved *models.ContactDetails
	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		locked, err := s.lockForStep(ctx, tx, wf, profile.ID, step)
		if err != nil {
			return err
		}
		cd, err := tx.Steps.GetOrCreateContactDetails(ctx, locked.ID)
		if err != nil {
			return fmt.Errorf("failed to get contact details: %w", err)
		}
		s.contact.Persist(cd, req)
		if err := tx.Steps.Save(ctx, cd); err != nil {
			return fmt.Errorf("failed to save contact details: %w", err)
		}
		advance(wf, locked, step)
		if err := tx.Profiles.Save(ctx, locked); err != nil {
			return fmt.Errorf("failed to save profile: %w", err)
		}
		profile, saved = locked, cd
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.effects.refresh(ctx, profile)
	if s.mobile != nil && saved.MobileNumber != "" && saved.MobileVerified != models.VerificationVerified {
		if _, err := s.mobile.SendCodeForProfile(ctx, profile.ID); err != nil {
			s.logger.WithError(err).WithField("profile_id", profile.ID).Warn("Failed to send mobile verification code")
		}
	}
	return s.stepResult(wf, profile, step, true, saved), nil
}

// SubmitForReview completes the final step, moves the profile to submitted
// and records the transition
func (s *ProfileService) SubmitForReview(ctx context.Context, variant models.Variant, actor models.Actor, req *models.ReviewSubmissionRequest) (result *models.StepResult, err error) {
	step := models.StepReviewSubmission
	defer func() { observeStep(variant, step, stepOutcome(err)) }()

	wf, err := workflowFor(variant)
	if err != nil {
		return nil, err
	}
	profile, err := s.ownProfile(ctx, wf, actor)
	if err != nil {
		return nil, err
	}
	if err := s.checkReviewable(wf, profile); err != nil {
		return nil, err
	}
	if err := s.review.Validate(req); err != nil {
		return nil, err
	}

	var saved *models.ReviewSubmission
	var change statusChange
	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		locked, err := tx.Profiles.GetForUpdate(ctx, profile.ID)
		if err != nil {
			return err
		}
		if err := s.checkReviewable(wf, locked); err != nil {
			return err
		}

		now := s.now()
		rs, err := tx.Steps.GetOrCreateReviewSubmission(ctx, locked.ID)
		if err != nil {
			return fmt.Errorf("failed to get review submission: %w", err)
		}
		s.review.Persist(rs, req)
		rs.SubmittedAt = &now
		if err := tx.Steps.Save(ctx, rs); err != nil {
			return fmt.Errorf("failed to save review submission: %w", err)
		}

		change = statusChange{
			Profile:   locked,
			OldStatus: locked.Status,
			NewStatus: models.StatusSubmitted,
			ActorID:   actorRef(actor),
			Reason:    ReasonSubmittedForReview,
			At:        now,
		}
		advance(wf, locked, step)
		locked.Status = models.StatusSubmitted
		locked.SubmittedAt = &now
		if err := tx.Profiles.Save(ctx, locked); err != nil {
			return fmt.Errorf("failed to save profile: %w", err)
		}
		if err := record(ctx, tx, change); err != nil {
			return err
		}
		profile, saved = locked, rs
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"profile_id": profile.ID,
		"variant":    variant,
		"old_status": change.OldStatus,
		"new_status": change.NewStatus,
	}).Info("Profile submitted for review")

	s.effects.refresh(ctx, profile)
	s.effects.announce(ctx, change)
	if s.notifier != nil {
		s.notifier.Submitted(ctx, wf, profile)
	}
	return s.stepResult(wf, profile, step, true, saved), nil
}

func (s *ProfileService) checkReviewable(wf models.Workflow, p *models.Profile) error {
	if err := s.gate(wf, p, models.StepReviewSubmission); err != nil {
		return err
	}
	var missing []models.Step
	for _, st := range wf.Steps {
		if st == models.StepReviewSubmission {
			break
		}
		if !p.StepCompleted(st) {
			missing = append(missing, st)
		}
	}
	if len(missing) > 0 {
		return &IncompleteStepsError{Missing: missing}
	}
	return nil
}

func (s *ProfileService) stepResult(wf models.Workflow, p *models.Profile, step models.Step, completed bool, data interface{}) *models.StepResult {
	return &models.StepResult{
		Profile:   Summarize(wf, p),
		Step:      step,
		Completed: completed,
		Data:      data,
		NextStep:  NextStep(wf, p),
	}
}
