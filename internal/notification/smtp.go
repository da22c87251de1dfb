package notification

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"shopbooking-backend/internal/domain"
	"shopbooking-backend/internal/logger"
)

// SMTPChannel sends through the local mail relay.
type SMTPChannel struct {
	dialer   *gomail.Dialer
	from     string
	fromName string
}

func NewSMTPChannel(host string, port int, username, password, from, fromName string) *SMTPChannel {
	return &SMTPChannel{
		dialer:   gomail.NewDialer(host, port, username, password),
		from:     from,
		fromName: fromName,
	}
}

func (c *SMTPChannel) Name() string { return ChannelSMTP }

func (c *SMTPChannel) Send(ctx context.Context, msg *domain.Message) error {
	if len(msg.To) == 0 {
		return ErrNoRecipients
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m := buildSMTPMessage(c.from, c.fromName, msg)

	logger.ExternalServiceCall("smtp", "send", "kind", msg.Kind, "host", c.dialer.Host)
	err := c.dialer.DialAndSend(m)
	if err != nil {
		err = fmt.Errorf("failed to send email via gomail: %w", err)
	}
	logger.ExternalServiceResult("smtp", "send", err, "kind", msg.Kind)
	return err
}

func buildSMTPMessage(from, fromName string, msg *domain.Message) *gomail.Message {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", from, fromName)
	m.SetHeader("To", msg.To...)
	m.SetHeader("Subject", msg.Subject)
	if msg.Text != "" {
		m.SetBody("text/plain", msg.Text)
		m.AddAlternative("text/html", msg.HTML)
	} else {
		m.SetBody("text/html", msg.HTML)
	}
	return m
}
