package notifications

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/tesseract-hub/onboarding-service/internal/metrics"
	"github.com/tesseract-hub/onboarding-service/internal/templates"
)

// DirectGateway renders and sends notifications in the calling goroutine
type DirectGateway struct {
	renderer  *templates.Renderer
	providers map[Channel]Provider
	logger    *logrus.Logger
}

// NewDirectGateway creates a gateway over one provider per channel
func NewDirectGateway(renderer *templates.Renderer, email, sms Provider, logger *logrus.Logger) *DirectGateway {
	return &DirectGateway{
		renderer:  renderer,
		providers: map[Channel]Provider{ChannelEmail: email, ChannelSMS: sms},
		logger:    logger,
	}
}

// Send renders the template and hands it to the channel's provider
func (g *DirectGateway) Send(ctx context.Context, n Notification) {
	if err := g.Deliver(ctx, n); err != nil {
		g.logger.WithError(err).WithFields(logrus.Fields{
			"channel":  n.Channel,
			"template": n.TemplateKey,
		}).Warn("Failed to send notification")
	}
}

// Deliver is Send with the error returned, for callers that retry
func (g *DirectGateway) Deliver(ctx context.Context, n Notification) error {
	provider, ok := g.providers[n.Channel]
	if !ok || provider == nil {
		metrics.NotificationsTotal.WithLabelValues(string(n.Channel), "no_provider").Inc()
		return errUnknownChannel(n.Channel)
	}

	rendered, err := g.renderer.Render(n.TemplateKey, n.Context)
	if err != nil {
		metrics.NotificationsTotal.WithLabelValues(string(n.Channel), "render_failed").Inc()
		return err
	}

	result, err := provider.Send(ctx, &Message{
		To:       n.Recipient,
		Subject:  rendered.Subject,
		Body:     rendered.Body,
		BodyHTML: rendered.BodyHTML,
	})
	if err != nil {
		metrics.NotificationsTotal.WithLabelValues(string(n.Channel), "failed").Inc()
		return err
	}

	metrics.NotificationsTotal.WithLabelValues(string(n.Channel), "sent").Inc()
	g.logger.WithFields(logrus.Fields{
		"channel":     n.Channel,
		"template":    n.TemplateKey,
		"provider":    result.ProviderName,
		"provider_id": result.ProviderID,
	}).Debug("Notification sent")
	return nil
}
