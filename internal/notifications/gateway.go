package notifications

import (
	"context"
	"fmt"
)

// Channel is the delivery medium of a notification
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
)

// Notification is one message addressed to one recipient. Context carries
// the template variables.
type Notification struct {
	Channel     Channel           `json:"channel"`
	Recipient   string            `json:"recipient"`
	TemplateKey string            `json:"template_key"`
	Context     map[string]string `json:"context"`
}

// Gateway delivers notifications on a best-effort basis. Implementations log
// failures and never report them to the caller.
type Gateway interface {
	Send(ctx context.Context, n Notification)
}

func errUnknownChannel(ch Channel) error {
	return fmt.Errorf("no provider configured for channel %q", ch)
}
