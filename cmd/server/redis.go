package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/aulaops/aula-api/internal/config"
)

// setupResultRedis connects to the Redis instance holding transient
// submission results and verifies the connection with a ping.
func setupResultRedis(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		if closeErr := client.Close(); closeErr != nil {
			logger.Error("Error closing redis client", "error", closeErr)
		}
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	logger.Info("Redis connection established", "addr", cfg.Redis.Addr)
	return client, nil
}
