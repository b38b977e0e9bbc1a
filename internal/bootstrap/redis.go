package bootstrap

import (
	"context"

	goredis "github.com/redis/go-redis/v9"

	infracontext "github.com/visiona/review-classifier/infrastructure/context"
	infralogger "github.com/visiona/review-classifier/infrastructure/logger"
	infraredis "github.com/visiona/review-classifier/infrastructure/redis"
	"github.com/visiona/review-classifier/internal/config"
	"github.com/visiona/review-classifier/internal/events"
	"github.com/visiona/review-classifier/internal/telemetry"
)

// EventComponents holds the optional moderation event publisher.
type EventComponents struct {
	Publisher *events.Publisher
	client    *goredis.Client
}

// SetupEventPublisher creates an event publisher if Redis is enabled.
// Publisher is nil if Redis is disabled or unavailable.
func SetupEventPublisher(
	ctx context.Context,
	cfg *config.Config,
	log infralogger.Logger,
	tp *telemetry.Provider,
) *EventComponents {
	if !cfg.Redis.Enabled {
		return &EventComponents{}
	}

	client, err := infraredis.NewClient(ctx, infraredis.Config{
		Address:  cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Warn("Redis not available, events disabled",
			infralogger.String("redis_address", cfg.Redis.Address),
			infralogger.Error(err),
		)
		return &EventComponents{}
	}

	log.Info("Event publisher initialized",
		infralogger.String("redis_address", cfg.Redis.Address),
		infralogger.String("stream", cfg.Redis.Stream),
	)
	return &EventComponents{
		Publisher: events.NewPublisher(client, cfg.Redis.Stream, log, tp),
		client:    client,
	}
}

// PingFunc returns the Redis health check, or nil when events are disabled.
func (e *EventComponents) PingFunc() func() error {
	if e.client == nil {
		return nil
	}
	return func() error {
		ctx, cancel := infracontext.WithPingTimeout(context.Background())
		defer cancel()
		return e.client.Ping(ctx).Err()
	}
}

// Close releases the Redis client, if any.
func (e *EventComponents) Close(log infralogger.Logger) {
	if e.client == nil {
		return
	}
	if err := e.client.Close(); err != nil {
		log.Error("Failed to close redis client", infralogger.Error(err))
	}
}
