package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"shopbooking-backend/internal/domain"
	"shopbooking-backend/internal/logger"
)

// DeliveryCache remembers webhook events that were already applied so a
// redelivery can be acknowledged without touching the database. It is an
// optimization only; the conditional writes in the store stay authoritative.
type DeliveryCache interface {
	Seen(ctx context.Context, evt *domain.PaymentEvent) bool
	Remember(ctx context.Context, evt *domain.PaymentEvent)
}

const keyPrefix = "shopbooking:payment-event"

func deliveryKey(evt *domain.PaymentEvent) string {
	return fmt.Sprintf("%s:%s:%s", keyPrefix, evt.Type, evt.Reference)
}

type redisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisDeliveryCache wraps an existing client. Errors from redis are
// logged and treated as a cache miss.
func NewRedisDeliveryCache(client *redis.Client, ttl time.Duration) DeliveryCache {
	return &redisCache{client: client, ttl: ttl}
}

func (c *redisCache) Seen(ctx context.Context, evt *domain.PaymentEvent) bool {
	n, err := c.client.Exists(ctx, deliveryKey(evt)).Result()
	if err != nil {
		logger.Warn("Delivery cache lookup failed", "reference", evt.Reference, "error", err)
		return false
	}
	return n > 0
}

func (c *redisCache) Remember(ctx context.Context, evt *domain.PaymentEvent) {
	if err := c.client.Set(ctx, deliveryKey(evt), time.Now().Unix(), c.ttl).Err(); err != nil {
		logger.Warn("Delivery cache write failed", "reference", evt.Reference, "error", err)
	}
}

type noopCache struct{}

// NewNoopDeliveryCache is used when redis is disabled.
func NewNoopDeliveryCache() DeliveryCache { return noopCache{} }

func (noopCache) Seen(context.Context, *domain.PaymentEvent) bool { return false }
func (noopCache) Remember(context.Context, *domain.PaymentEvent)  {}

// NewRedisClient connects and pings. A nil client means redis is unreachable
// and the caller should fall back to the noop cache.
func NewRedisClient(ctx context.Context, addr, password string, db int) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn("Redis unavailable, delivery cache disabled", "addr", addr, "error", err)
		_ = client.Close()
		return nil
	}
	return client
}
