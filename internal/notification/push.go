package notification

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"

	"shopbooking-backend/internal/domain"
	"shopbooking-backend/internal/logger"
)

type pushSender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// PushChannel notifies the staff app through a topic. It refuses customer
// messages so they fall through to a channel addressed to the customer.
type PushChannel struct {
	client pushSender
	topic  string
}

func NewPushChannel(ctx context.Context, credentialsFile, topic string) (*PushChannel, error) {
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("init messaging client: %w", err)
	}
	return &PushChannel{client: client, topic: topic}, nil
}

func (c *PushChannel) Name() string { return ChannelPush }

func (c *PushChannel) Send(ctx context.Context, msg *domain.Message) error {
	if msg.Kind.CustomerFacing() {
		return ErrNotForStaff
	}

	data := map[string]string{"kind": string(msg.Kind)}
	if msg.BookingID != "" {
		data["booking_id"] = msg.BookingID
	}

	logger.ExternalServiceCall("fcm", "send", "topic", c.topic, "kind", msg.Kind)
	_, err := c.client.Send(ctx, &messaging.Message{
		Topic: c.topic,
		Notification: &messaging.Notification{
			Title: msg.Subject,
			Body:  msg.Text,
		},
		Data: data,
	})
	logger.ExternalServiceResult("fcm", "send", err, "topic", c.topic)
	return err
}
