package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/tesseract-hub/onboarding-service/internal/cache"
	"github.com/tesseract-hub/onboarding-service/internal/models"
	"github.com/tesseract-hub/onboarding-service/internal/repository"
)

// AdminService holds the staff review operations
type AdminService struct {
	store    *repository.Store
	notifier *ProfileNotifier
	effects  *afterCommit
	logger   *logrus.Entry
	now      func() time.Time
}

// NewAdminService creates a new admin service. events may be nil.
func NewAdminService(store *repository.Store, notifier *ProfileNotifier, events StatusEventPublisher, statusCache cache.Cache, logger *logrus.Logger) *AdminService {
	if statusCache == nil {
		statusCache = cache.NewNoOpCache()
	}
	entry := logger.WithField("component", "admin_service")
	return &AdminService{
		store:    store,
		notifier: notifier,
		effects:  &afterCommit{events: events, cache: statusCache, ttl: DefaultStatusTTL, logger: entry},
		logger:   entry,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// SetClock replaces the time source
func (s *AdminService) SetClock(now func() time.Time) {
	s.now = now
}

// SetStatusTTL overrides the lifetime of status snapshots refreshed by reviews
func (s *AdminService) SetStatusTTL(ttl time.Duration) {
	if ttl > 0 {
		s.effects.ttl = ttl
	}
}

// ListReviewQueue lists submitted profiles, most recently submitted first
func (s *AdminService) ListReviewQueue(ctx context.Context, variant models.Variant, actor models.Actor, limit, offset int) ([]models.ProfileSummary, int64, error) {
	wf, err := workflowFor(variant)
	if err != nil {
		return nil, 0, err
	}
	if !actor.IsStaff {
		return nil, 0, ErrForbidden
	}
	profiles, total, err := s.store.Profiles.List(ctx, models.ProfileFilter{
		Variant: variant,
		Status:  models.StatusSubmitted,
		Limit:   limit,
		Offset:  offset,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list review queue: %w", err)
	}
	out := make([]models.ProfileSummary, len(profiles))
	for i := range profiles {
		out[i] = Summarize(wf, &profiles[i])
	}
	return out, total, nil
}

// GetReview returns the full view of a profile under review
func (s *AdminService) GetReview(ctx context.Context, variant models.Variant, actor models.Actor, id uuid.UUID) (*models.ProfileDetail, error) {
	wf, err := workflowFor(variant)
	if err != nil {
		return nil, err
	}
	if !actor.IsStaff {
		return nil, ErrForbidden
	}
	profile, err := s.store.Profiles.GetDetail(ctx, id)
	if err != nil {
		return nil, err
	}
	if profile.Variant != variant {
		return nil, ErrNotFound
	}
	detail := Detail(wf, profile)
	return &detail, nil
}

// Review records a staff decision on one profile
func (s *AdminService) Review(ctx context.Context, variant models.Variant, actor models.Actor, id uuid.UUID, req *models.AdminReviewRequest) (*models.ProfileSummary, error) {
	wf, err := workflowFor(variant)
	if err != nil {
		return nil, err
	}
	if !actor.IsStaff {
		return nil, ErrForbidden
	}
	if !models.IsReviewStatus(req.Status) {
		return nil, NewValidationError("status", "Invalid status for review.")
	}

	var profile *models.Profile
	var change statusChange
	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		locked, err := tx.Profiles.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if locked.Variant != variant {
			return ErrNotFound
		}

		now := s.now()
		change = statusChange{
			Profile:   locked,
			OldStatus: locked.Status,
			NewStatus: req.Status,
			ActorID:   actorRef(actor),
			Reason:    req.ReviewNotes,
			At:        now,
		}
		locked.Status = req.Status
		locked.ReviewNotes = req.ReviewNotes
		locked.ReviewedAt = &now
		locked.ReviewerID = actorRef(actor)
		if err := tx.Profiles.Save(ctx, locked); err != nil {
			return fmt.Errorf("failed to save profile: %w", err)
		}
		if err := record(ctx, tx, change); err != nil {
			return err
		}
		profile = locked
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"profile_id":  profile.ID,
		"variant":     variant,
		"old_status":  change.OldStatus,
		"new_status":  change.NewStatus,
		"reviewer_id": actor.UserID,
	}).Info("Profile reviewed")

	s.effects.refresh(ctx, profile)
	s.effects.announce(ctx, change)
	if s.notifier != nil {
		s.notifier.Reviewed(ctx, wf, profile)
	}
	summary := Summarize(wf, profile)
	return &summary, nil
}

type bulkRule struct {
	status      models.ProfileStatus
	reason      string
	setReviewer bool
}

var bulkRules = map[string]bulkRule{
	models.BulkActionApprove:     {models.StatusApproved, ReasonBulkApprove, true},
	models.BulkActionReject:      {models.StatusRejected, ReasonBulkReject, true},
	models.BulkActionMarkPending: {models.StatusPending, ReasonBulkMarkPending, false},
}

// BulkAction applies one review action to many profiles in one transaction.
// Ids that do not name a profile of the variant are reported, not fatal.
func (s *AdminService) BulkAction(ctx context.Context, variant models.Variant, actor models.Actor, req *models.BulkActionRequest) (*models.BulkActionResult, error) {
	wf, err := workflowFor(variant)
	if err != nil {
		return nil, err
	}
	if !actor.IsStaff {
		return nil, ErrForbidden
	}
	rule, ok := bulkRules[req.Action]
	if !ok {
		return nil, NewValidationError("action", fmt.Sprintf("%q is not a valid choice.", req.Action))
	}
	if len(req.ProfileIDs) == 0 {
		return nil, NewValidationError("profile_ids", "This field is required.")
	}

	var changes []statusChange
	result := &models.BulkActionResult{Action: req.Action, UpdatedIDs: []uuid.UUID{}}
	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		profiles, err := tx.Profiles.ListForUpdate(ctx, variant, req.ProfileIDs)
		if err != nil {
			return fmt.Errorf("failed to load profiles: %w", err)
		}

		found := make(map[uuid.UUID]bool, len(profiles))
		now := s.now()
		changes = make([]statusChange, 0, len(profiles))
		for i := range profiles {
			p := &profiles[i]
			found[p.ID] = true
			changes = append(changes, statusChange{
				Profile:   p,
				OldStatus: p.Status,
				NewStatus: rule.status,
				ActorID:   actorRef(actor),
				Reason:    rule.reason,
				At:        now,
			})
			p.Status = rule.status
			if rule.setReviewer {
				p.ReviewerID = actorRef(actor)
				p.ReviewedAt = &now
			}
			if err := tx.Profiles.Save(ctx, p); err != nil {
				return fmt.Errorf("failed to save profile %s: %w", p.ID, err)
			}
			result.UpdatedIDs = append(result.UpdatedIDs, p.ID)
		}
		for _, id := range req.ProfileIDs {
			if !found[id] {
				result.NotFound = append(result.NotFound, id)
			}
		}
		return recordBatch(ctx, tx, changes)
	})
	if err != nil {
		return nil, err
	}
	result.Updated = len(result.UpdatedIDs)

	s.logger.WithFields(logrus.Fields{
		"variant":   variant,
		"action":    req.Action,
		"updated":   result.Updated,
		"not_found": len(result.NotFound),
	}).Info("Bulk review action applied")

	for _, change := range changes {
		s.effects.refresh(ctx, change.Profile)
		s.effects.announce(ctx, change)
		if s.notifier != nil {
			s.notifier.Reviewed(ctx, wf, change.Profile)
		}
	}
	return result, nil
}
