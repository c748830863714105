package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"lending-engine/internal/config"

	"github.com/redis/go-redis/v9"
)

// RedisInvalidator deletes cache keys from a shared Redis instance.
type RedisInvalidator struct {
	client *redis.Client
	logger *slog.Logger
}

func NewRedisInvalidator(ctx context.Context, cfg config.RedisConfig, logger *slog.Logger) (*RedisInvalidator, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
	}

	logger.Info("Connected to Redis", "addr", cfg.Addr)
	return &RedisInvalidator{
		client: client,
		logger: logger.With("component", "RedisInvalidator"),
	}, nil
}

func (r *RedisInvalidator) Invalidate(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		r.logger.ErrorContext(ctx, "Failed to invalidate cache keys", "keys", keys, "error", err)
		return fmt.Errorf("cache invalidation failed: %w", err)
	}
	r.logger.DebugContext(ctx, "Invalidated cache keys", "keys", keys)
	return nil
}

func (r *RedisInvalidator) Close() error {
	return r.client.Close()
}
