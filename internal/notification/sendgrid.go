package notification

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"shopbooking-backend/internal/domain"
	"shopbooking-backend/internal/logger"
)

// SendGridChannel is the primary transactional email provider.
type SendGridChannel struct {
	client    *sendgrid.Client
	fromEmail string
	fromName  string
}

func NewSendGridChannel(apiKey, fromEmail, fromName string) *SendGridChannel {
	return &SendGridChannel{
		client:    sendgrid.NewSendClient(apiKey),
		fromEmail: fromEmail,
		fromName:  fromName,
	}
}

func (c *SendGridChannel) Name() string { return ChannelSendGrid }

func (c *SendGridChannel) Send(ctx context.Context, msg *domain.Message) error {
	if len(msg.To) == 0 {
		return ErrNoRecipients
	}

	m := buildSendGridMail(c.fromName, c.fromEmail, msg)

	logger.ExternalServiceCall("sendgrid", "send", "kind", msg.Kind, "recipients", len(msg.To))
	resp, err := c.client.SendWithContext(ctx, m)
	if err == nil && resp.StatusCode >= 300 {
		err = fmt.Errorf("sendgrid error: status %d, body: %s", resp.StatusCode, resp.Body)
	}
	logger.ExternalServiceResult("sendgrid", "send", err, "kind", msg.Kind)
	return err
}

func buildSendGridMail(fromName, fromEmail string, msg *domain.Message) *mail.SGMailV3 {
	m := mail.NewV3Mail()
	m.SetFrom(mail.NewEmail(fromName, fromEmail))
	m.Subject = msg.Subject

	p := mail.NewPersonalization()
	for _, to := range msg.To {
		p.AddTos(mail.NewEmail("", to))
	}
	m.AddPersonalizations(p)

	if msg.Text != "" {
		m.AddContent(mail.NewContent("text/plain", msg.Text))
	}
	m.AddContent(mail.NewContent("text/html", msg.HTML))
	return m
}
