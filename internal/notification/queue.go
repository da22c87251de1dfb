package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"shopbooking-backend/internal/domain"
	"shopbooking-backend/internal/logger"
)

type publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// QueueChannel hands the message to a broker queue drained by a separate
// mail worker. Acceptance by the broker counts as delivery.
type QueueChannel struct {
	mu    sync.Mutex
	conn  *amqp.Connection
	ch    publisher
	queue string
}

func NewQueueChannel(url, queue string) (*QueueChannel, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare queue: %w", err)
	}
	return &QueueChannel{conn: conn, ch: ch, queue: queue}, nil
}

func (c *QueueChannel) Name() string { return ChannelQueue }

func (c *QueueChannel) Send(ctx context.Context, msg *domain.Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	logger.ExternalServiceCall("amqp", "publish", "queue", c.queue, "kind", msg.Kind)
	err = c.ch.PublishWithContext(ctx, "", c.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Type:         string(msg.Kind),
		Timestamp:    time.Now(),
		Body:         body,
	})
	logger.ExternalServiceResult("amqp", "publish", err, "queue", c.queue)
	return err
}

func (c *QueueChannel) Close() error {
	if ch, ok := c.ch.(*amqp.Channel); ok && ch != nil {
		_ = ch.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
