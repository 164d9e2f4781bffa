package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	goRedis "github.com/redis/go-redis/v9"
)

// DefaultRedisChannel is the pub/sub channel the socket gateway listens on.
const DefaultRedisChannel = "events"

// NewRedisClient creates a Redis client and performs a health check.
func NewRedisClient(ctx context.Context, url string) (*goRedis.Client, error) {
	opts, err := goRedis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := goRedis.NewClient(opts)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

type redisPublisherClient interface {
	Publish(ctx context.Context, channel string, message interface{}) *goRedis.IntCmd
}

// RedisPublisher publishes JSON envelopes on a Redis pub/sub channel.
type RedisPublisher struct {
	client  redisPublisherClient
	channel string
}

func NewRedisPublisher(client redisPublisherClient, channel string) *RedisPublisher {
	if channel == "" {
		channel = DefaultRedisChannel
	}
	return &RedisPublisher{client: client, channel: channel}
}

func (p *RedisPublisher) Publish(ctx context.Context, user, event string, payload any) error {
	body, err := json.Marshal(newEnvelope(user, event, payload))
	if err != nil {
		return fmt.Errorf("marshal realtime event: %w", err)
	}
	if err := p.client.Publish(ctx, p.channel, body).Err(); err != nil {
		return fmt.Errorf("publish %s to %s: %w", event, Room(user), err)
	}
	return nil
}
