package nats

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"
	"github.com/tesseract-hub/onboarding-service/internal/models"
)

// JetStreamPublisher is the publish half of a JetStream context
type JetStreamPublisher interface {
	Publish(subj string, data []byte, opts ...nats.PubOpt) (*nats.PubAck, error)
}

// EventPublisher publishes onboarding domain events
type EventPublisher struct {
	js     JetStreamPublisher
	logger *logrus.Entry
}

// NewEventPublisher creates a publisher over js
func NewEventPublisher(js JetStreamPublisher, logger *logrus.Logger) *EventPublisher {
	return &EventPublisher{js: js, logger: logger.WithField("component", "nats.events")}
}

// PublishStatusChanged publishes a status change. The message id makes
// redelivery of the same transition idempotent on the stream.
func (p *EventPublisher) PublishStatusChanged(ctx context.Context, event models.StatusChangedEvent) error {
	event.EventType = models.EventStatusChanged
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal status event: %w", err)
	}

	msgID := fmt.Sprintf("%s:%s:%d", event.ProfileID, event.NewStatus, event.Timestamp.UnixNano())
	if _, err := p.js.Publish(models.EventStatusChanged, data, nats.MsgId(msgID), nats.Context(ctx)); err != nil {
		return fmt.Errorf("failed to publish status event: %w", err)
	}

	p.logger.WithFields(logrus.Fields{
		"profile_id": event.ProfileID,
		"old_status": event.OldStatus,
		"new_status": event.NewStatus,
	}).Debug("Published status change event")
	return nil
}
