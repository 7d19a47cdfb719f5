package notifications

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	sestypes "github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	snstypes "github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/sirupsen/logrus"
)

// Provider sends a rendered message on one channel
type Provider interface {
	Send(ctx context.Context, message *Message) (*SendResult, error)
	GetName() string
}

// Message is a rendered message
type Message struct {
	To       string
	Subject  string
	Body     string
	BodyHTML string
}

// SendResult is the outcome reported by a provider
type SendResult struct {
	ProviderID   string
	ProviderName string
}

// SESAPI is the subset of the SES client used here
type SESAPI interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// SESProvider sends email via AWS SES
type SESProvider struct {
	client   SESAPI
	from     string
	fromName string
}

// NewSESProvider creates an SES email provider
func NewSESProvider(client SESAPI, from, fromName string) *SESProvider {
	return &SESProvider{client: client, from: from, fromName: fromName}
}

// NewSESProviderFromConfig builds the SES client from an AWS config
func NewSESProviderFromConfig(cfg aws.Config, from, fromName string) *SESProvider {
	return NewSESProvider(ses.NewFromConfig(cfg), from, fromName)
}

func (p *SESProvider) GetName() string {
	return "AWS SES"
}

func (p *SESProvider) Send(ctx context.Context, message *Message) (*SendResult, error) {
	source := p.from
	if p.fromName != "" {
		source = fmt.Sprintf("%s <%s>", p.fromName, p.from)
	}

	body := &sestypes.Body{}
	if message.BodyHTML != "" {
		body.Html = &sestypes.Content{Charset: aws.String("UTF-8"), Data: aws.String(message.BodyHTML)}
	}
	if message.Body != "" {
		body.Text = &sestypes.Content{Charset: aws.String("UTF-8"), Data: aws.String(message.Body)}
	}

	result, err := p.client.SendEmail(ctx, &ses.SendEmailInput{
		Source:      aws.String(source),
		Destination: &sestypes.Destination{ToAddresses: []string{message.To}},
		Message: &sestypes.Message{
			Subject: &sestypes.Content{Charset: aws.String("UTF-8"), Data: aws.String(message.Subject)},
			Body:    body,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("SES send failed: %w", err)
	}

	return &SendResult{ProviderID: aws.ToString(result.MessageId), ProviderName: p.GetName()}, nil
}

// SNSAPI is the subset of the SNS client used here
type SNSAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SNSProvider sends SMS via AWS SNS
type SNSProvider struct {
	client   SNSAPI
	senderID string
}

// NewSNSProvider creates an SNS SMS provider
func NewSNSProvider(client SNSAPI, senderID string) *SNSProvider {
	return &SNSProvider{client: client, senderID: senderID}
}

// NewSNSProviderFromConfig builds the SNS client from an AWS config
func NewSNSProviderFromConfig(cfg aws.Config, senderID string) *SNSProvider {
	return NewSNSProvider(sns.NewFromConfig(cfg), senderID)
}

func (p *SNSProvider) GetName() string {
	return "AWS SNS"
}

func (p *SNSProvider) Send(ctx context.Context, message *Message) (*SendResult, error) {
	attrs := map[string]snstypes.MessageAttributeValue{
		// verification codes are transactional
		"AWS.SNS.SMS.SMSType": {DataType: aws.String("String"), StringValue: aws.String("Transactional")},
	}
	if p.senderID != "" {
		attrs["AWS.SNS.SMS.SenderID"] = snstypes.MessageAttributeValue{
			DataType:    aws.String("String"),
			StringValue: aws.String(p.senderID),
		}
	}

	result, err := p.client.Publish(ctx, &sns.PublishInput{
		Message:           aws.String(message.Body),
		PhoneNumber:       aws.String(message.To),
		MessageAttributes: attrs,
	})
	if err != nil {
		return nil, fmt.Errorf("SNS send failed: %w", err)
	}

	return &SendResult{ProviderID: aws.ToString(result.MessageId), ProviderName: p.GetName()}, nil
}

// LogProvider writes messages to the log instead of sending them
type LogProvider struct {
	channel Channel
	logger  *logrus.Logger
}

// NewLogProvider creates a provider for local development
func NewLogProvider(channel Channel, logger *logrus.Logger) *LogProvider {
	return &LogProvider{channel: channel, logger: logger}
}

func (p *LogProvider) GetName() string {
	return "log"
}

func (p *LogProvider) Send(ctx context.Context, message *Message) (*SendResult, error) {
	p.logger.WithFields(logrus.Fields{
		"channel": p.channel,
		"to":      message.To,
		"subject": message.Subject,
		"body":    message.Body,
	}).Info("Notification logged instead of sent")
	return &SendResult{ProviderName: p.GetName()}, nil
}
