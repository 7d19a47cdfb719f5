package nats

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tesseract-hub/onboarding-service/internal/models"
)

type mockJetStream struct {
	mock.Mock
}

func (m *mockJetStream) Publish(subj string, data []byte, opts ...nats.PubOpt) (*nats.PubAck, error) {
	args := m.Called(subj, data)
	ack, _ := args.Get(0).(*nats.PubAck)
	return ack, args.Error(1)
}

func TestEventPublisher_PublishStatusChanged(t *testing.T) {
	js := &mockJetStream{}
	pub := NewEventPublisher(js, logrus.New())

	event := models.StatusChangedEvent{
		ProfileID: uuid.New(),
		Variant:   models.VariantHost,
		OwnerID:   uuid.New(),
		OldStatus: models.StatusDraft,
		NewStatus: models.StatusSubmitted,
		Reason:    "submitted for review",
		Timestamp: time.Now().UTC(),
	}

	js.On("Publish", models.EventStatusChanged, mock.MatchedBy(func(data []byte) bool {
		var decoded models.StatusChangedEvent
		if err := json.Unmarshal(data, &decoded); err != nil {
			return false
		}
		return decoded.EventType == models.EventStatusChanged &&
			decoded.ProfileID == event.ProfileID &&
			decoded.NewStatus == models.StatusSubmitted
	})).Return(&nats.PubAck{Stream: StreamEvents, Sequence: 1}, nil)

	require.NoError(t, pub.PublishStatusChanged(context.Background(), event))
	js.AssertExpectations(t)
}

func TestEventPublisher_PublishError(t *testing.T) {
	js := &mockJetStream{}
	js.On("Publish", models.EventStatusChanged, mock.Anything).Return(nil, errors.New("no responders"))

	err := NewEventPublisher(js, logrus.New()).PublishStatusChanged(context.Background(), models.StatusChangedEvent{})
	assert.Error(t, err)
}
