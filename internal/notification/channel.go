package notification

import (
	"context"
	"errors"

	"shopbooking-backend/internal/domain"
)

// Channel names as they appear in the notification.channels config list.
const (
	ChannelSendGrid = "sendgrid"
	ChannelSMTP     = "smtp"
	ChannelQueue    = "amqp"
	ChannelSMS      = "sms"
	ChannelPush     = "push"

	ChannelPreview   = "preview"
	ChannelManualLog = "manual_log"
	ChannelNone      = "none"
)

var (
	ErrNoRecipients = errors.New("message has no recipients for this channel")
	ErrNotForStaff  = errors.New("customer message cannot go to a staff channel")
)

// Channel is one link in the delivery chain. Send returns nil only when the
// provider accepted the message.
type Channel interface {
	Name() string
	Send(ctx context.Context, msg *domain.Message) error
}
