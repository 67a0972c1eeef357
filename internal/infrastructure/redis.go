package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"propdesk-backend/internal/config"
	"propdesk-backend/internal/domain"
	"propdesk-backend/internal/logger"
)

// RedisSink publishes events on a Redis pub/sub channel for live dashboards.
type RedisSink struct {
	client  *redis.Client
	channel string
}

func NewRedisSink(cfg config.RedisConfig) (*RedisSink, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisSinkWithClient(client, cfg.Channel), nil
}

func NewRedisSinkWithClient(client *redis.Client, channel string) *RedisSink {
	return &RedisSink{client: client, channel: channel}
}

func (s *RedisSink) Name() string { return "redis" }

func (s *RedisSink) Handle(ctx context.Context, e domain.Event) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	logger.ExternalServiceCall("Redis", "PUBLISH", "channel", s.channel, "eventID", e.ID)
	err = s.client.Publish(ctx, s.channel, data).Err()
	logger.ExternalServiceResult("Redis", "PUBLISH", err, "channel", s.channel)
	return err
}

func (s *RedisSink) Close() error {
	return s.client.Close()
}
