package services

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tesseract-hub/onboarding-service/internal/cache"
	"github.com/tesseract-hub/onboarding-service/internal/metrics"
	"github.com/tesseract-hub/onboarding-service/internal/models"
)

// StatusEventPublisher publishes committed status changes
type StatusEventPublisher interface {
	PublishStatusChanged(ctx context.Context, event models.StatusChangedEvent) error
}

// afterCommit runs the side effects of a committed write. None of them can
// fail the operation that triggered them.
type afterCommit struct {
	events StatusEventPublisher
	cache  cache.Cache
	ttl    time.Duration
	logger *logrus.Entry
}

// refresh overwrites the cached status snapshot with the committed state.
// Readers only fill a missing key, so a read that raced this write cannot
// put an older snapshot back.
func (a *afterCommit) refresh(ctx context.Context, p *models.Profile) {
	key := cache.StatusCacheKey(string(p.Variant), p.OwnerID)
	if wf, ok := models.WorkflowFor(p.Variant); ok {
		err := a.cache.SetJSON(ctx, key, Snapshot(wf, p), a.ttl)
		if err == nil {
			return
		}
		a.logger.WithError(err).WithField("profile_id", p.ID).Warn("Failed to refresh status cache")
	}
	if err := a.cache.Delete(ctx, key); err != nil {
		a.logger.WithError(err).WithField("profile_id", p.ID).Warn("Failed to invalidate status cache")
	}
}

func (a *afterCommit) announce(ctx context.Context, change statusChange) {
	metrics.StatusTransitionsTotal.WithLabelValues(
		string(change.Profile.Variant), string(change.OldStatus), string(change.NewStatus),
	).Inc()

	if a.events == nil {
		return
	}
	if err := a.events.PublishStatusChanged(ctx, change.event()); err != nil {
		a.logger.WithError(err).WithFields(logrus.Fields{
			"profile_id": change.Profile.ID,
			"new_status": change.NewStatus,
		}).Warn("Failed to publish status change event")
	}
}
