package notification

import (
	"context"
	"fmt"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"shopbooking-backend/internal/domain"
	"shopbooking-backend/internal/logger"
)

const maxSMSLength = 1600

type messageCreator interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

// SMSChannel texts the plain body to every phone on the message.
type SMSChannel struct {
	api  messageCreator
	from string
}

func NewSMSChannel(accountSID, authToken, from string) *SMSChannel {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &SMSChannel{api: client.Api, from: from}
}

func (c *SMSChannel) Name() string { return ChannelSMS }

func (c *SMSChannel) Send(ctx context.Context, msg *domain.Message) error {
	if len(msg.Phones) == 0 {
		return ErrNoRecipients
	}
	body := smsBody(msg)

	for _, phone := range msg.Phones {
		if err := ctx.Err(); err != nil {
			return err
		}
		params := &twilioApi.CreateMessageParams{}
		params.SetTo(phone)
		params.SetFrom(c.from)
		params.SetBody(body)

		logger.ExternalServiceCall("twilio", "create_message", "kind", msg.Kind)
		_, err := c.api.CreateMessage(params)
		logger.ExternalServiceResult("twilio", "create_message", err, "kind", msg.Kind)
		if err != nil {
			return fmt.Errorf("send sms: %w", err)
		}
	}
	return nil
}

func smsBody(msg *domain.Message) string {
	body := msg.Text
	if body == "" {
		body = msg.Subject
	}
	if r := []rune(body); len(r) > maxSMSLength {
		body = string(r[:maxSMSLength])
	}
	return body
}
