// Package events publishes workflow notifications for the Gateway and any
// notification worker listening on Redis pub/sub.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

const (
	ChannelApplicationSubmitted = "EVENT_APPLICATION_SUBMITTED"
	ChannelStatusChanged        = "EVENT_APPLICATION_STATUS_CHANGED"
	ChannelPendingDigest        = "EVENT_PENDING_DIGEST"
)

// Publisher sends a JSON-encoded payload on a channel.
type Publisher interface {
	Publish(ctx context.Context, channel string, payload any) error
}

// RedisPublisher publishes on Redis pub/sub.
type RedisPublisher struct {
	rdb *redis.Client
}

func NewRedisPublisher(rdb *redis.Client) *RedisPublisher {
	return &RedisPublisher{rdb: rdb}
}

func (p *RedisPublisher) Publish(ctx context.Context, channel string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", channel, err)
	}
	if err := p.rdb.Publish(ctx, channel, body).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", channel, err)
	}
	return nil
}

// LogPublisher writes events to the structured log. Used when the service
// runs without Redis.
type LogPublisher struct{}

func (LogPublisher) Publish(_ context.Context, channel string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", channel, err)
	}
	slog.Info("event", "channel", channel, "payload", string(body))
	return nil
}
