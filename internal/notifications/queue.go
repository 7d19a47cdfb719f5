package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"
	"github.com/tesseract-hub/onboarding-service/internal/metrics"
)

const (
	subjectPrefix = "onboarding.notifications."
	// SubjectWildcard matches every notification subject
	SubjectWildcard = subjectPrefix + ">"
	consumerQueue   = "onboarding-notification-workers"
	consumerDurable = "onboarding-notifications"
)

// Subject returns the subject a notification is queued on
func Subject(ch Channel) string {
	return subjectPrefix + string(ch)
}

// Publisher is the publish half of a JetStream context
type Publisher interface {
	Publish(subj string, data []byte, opts ...nats.PubOpt) (*nats.PubAck, error)
}

// QueueGateway enqueues notifications on JetStream for the consumer to deliver
type QueueGateway struct {
	js     Publisher
	logger *logrus.Logger
}

// NewQueueGateway creates a gateway publishing to js
func NewQueueGateway(js Publisher, logger *logrus.Logger) *QueueGateway {
	return &QueueGateway{js: js, logger: logger}
}

// Send enqueues n; enqueue failures are logged
func (g *QueueGateway) Send(ctx context.Context, n Notification) {
	data, err := json.Marshal(n)
	if err != nil {
		g.logger.WithError(err).Warn("Failed to marshal notification")
		return
	}
	if _, err := g.js.Publish(Subject(n.Channel), data, nats.Context(ctx)); err != nil {
		metrics.NotificationsTotal.WithLabelValues(string(n.Channel), "enqueue_failed").Inc()
		g.logger.WithError(err).WithFields(logrus.Fields{
			"channel":  n.Channel,
			"template": n.TemplateKey,
		}).Warn("Failed to enqueue notification")
		return
	}
	metrics.NotificationsTotal.WithLabelValues(string(n.Channel), "enqueued").Inc()
}

// Subscriber is the subscribe half of a JetStream context
type Subscriber interface {
	QueueSubscribe(subj, queue string, cb nats.MsgHandler, opts ...nats.SubOpt) (*nats.Subscription, error)
}

// Deliverer sends one notification and reports failure
type Deliverer interface {
	Deliver(ctx context.Context, n Notification) error
}

// Consumer drains the notification stream into a Deliverer
type Consumer struct {
	js       Subscriber
	stream   string
	delivery Deliverer
	logger   *logrus.Logger
	sub      *nats.Subscription
}

// NewConsumer creates a consumer bound to stream
func NewConsumer(js Subscriber, stream string, delivery Deliverer, logger *logrus.Logger) *Consumer {
	return &Consumer{js: js, stream: stream, delivery: delivery, logger: logger}
}

// Start subscribes with a durable queue consumer
func (c *Consumer) Start() error {
	sub, err := c.js.QueueSubscribe(
		SubjectWildcard,
		consumerQueue,
		c.handleMessage,
		nats.BindStream(c.stream),
		nats.Durable(consumerDurable),
		nats.DeliverNew(),
		nats.ManualAck(),
		nats.AckWait(30*time.Second),
		nats.MaxDeliver(3),
	)
	if err != nil {
		return fmt.Errorf("failed to subscribe to notifications: %w", err)
	}
	c.sub = sub
	c.logger.WithField("subject", SubjectWildcard).Info("Notification consumer started")
	return nil
}

// Stop unsubscribes, leaving the durable consumer in place
func (c *Consumer) Stop() {
	if c.sub != nil {
		_ = c.sub.Drain()
	}
}

// msgAcker is the ack surface of a message
type msgAcker interface {
	Ack(opts ...nats.AckOpt) error
	Nak(opts ...nats.AckOpt) error
}

func (c *Consumer) handleMessage(msg *nats.Msg) {
	c.process(msg.Data, msg)
}

// process acks malformed payloads so they are not redelivered, and naks
// delivery failures so JetStream retries up to MaxDeliver
func (c *Consumer) process(data []byte, acker msgAcker) {
	var n Notification
	if err := json.Unmarshal(data, &n); err != nil {
		c.logger.WithError(err).Warn("Dropping malformed notification")
		_ = acker.Ack()
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 25*time.Second)
	defer cancel()

	if err := c.delivery.Deliver(ctx, n); err != nil {
		c.logger.WithError(err).WithFields(logrus.Fields{
			"channel":  n.Channel,
			"template": n.TemplateKey,
		}).Warn("Notification delivery failed, will retry")
		_ = acker.Nak()
		return
	}
	_ = acker.Ack()
}
