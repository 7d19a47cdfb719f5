package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tesseract-hub/onboarding-service/internal/models"
	"github.com/tesseract-hub/onboarding-service/internal/repository"
)

// Status change reasons written by the state machine
const (
	ReasonSubmittedForReview = "submitted for review"
	ReasonBulkApprove        = "Approved via admin bulk action"
	ReasonBulkReject         = "Rejected via admin bulk action"
	ReasonBulkMarkPending    = "Marked as pending via admin bulk action"
)

// statusChange is one transition waiting to be recorded and announced
type statusChange struct {
	Profile   *models.Profile
	OldStatus models.ProfileStatus
	NewStatus models.ProfileStatus
	ActorID   *uuid.UUID
	Reason    string
	At        time.Time
}

func (c statusChange) entry() models.StatusHistory {
	return models.StatusHistory{
		ProfileID:    c.Profile.ID,
		OldStatus:    string(c.OldStatus),
		NewStatus:    string(c.NewStatus),
		ChangedByID:  c.ActorID,
		ChangeReason: c.Reason,
		CreatedAt:    c.At,
	}
}

func (c statusChange) event() models.StatusChangedEvent {
	return models.StatusChangedEvent{
		ProfileID: c.Profile.ID,
		Variant:   c.Profile.Variant,
		OwnerID:   c.Profile.OwnerID,
		OldStatus: c.OldStatus,
		NewStatus: c.NewStatus,
		ActorID:   c.ActorID,
		Reason:    c.Reason,
		Timestamp: c.At,
	}
}

// record appends one history entry on the caller's transaction store
func record(ctx context.Context, tx *repository.Store, change statusChange) error {
	entry := change.entry()
	if err := tx.History.Create(ctx, &entry); err != nil {
		return fmt.Errorf("failed to record status change: %w", err)
	}
	return nil
}

// recordBatch appends one history entry per change
func recordBatch(ctx context.Context, tx *repository.Store, changes []statusChange) error {
	entries := make([]models.StatusHistory, len(changes))
	for i, c := range changes {
		entries[i] = c.entry()
	}
	if err := tx.History.CreateBatch(ctx, entries); err != nil {
		return fmt.Errorf("failed to record status changes: %w", err)
	}
	return nil
}

func actorRef(actor models.Actor) *uuid.UUID {
	if actor.UserID == uuid.Nil {
		return nil
	}
	id := actor.UserID
	return &id
}
