// Package redis provides a Redis-backed implementation of the transient
// result store. Results live in Redis only between submission and
// completion; the completion handler persists the grade into PostgreSQL
// and the Redis key is free to expire.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/aulaops/aula-api/internal/domain"
	"github.com/aulaops/aula-api/internal/platform/logger"
	"github.com/aulaops/aula-api/internal/store"
)

// RedisResultStore implements the store.ResultStore interface using Redis
// as the storage backend. Each result is stored as a JSON value under a
// key derived from the activity and user, with a TTL so abandoned
// submissions do not accumulate.
type RedisResultStore struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewRedisResultStore creates a new Redis implementation of the ResultStore
// interface. The client should be initialized and managed by the caller.
// A ttl of zero stores results without expiration.
// If logger is nil, a default logger will be used.
func NewRedisResultStore(client *redis.Client, ttl time.Duration, logger *slog.Logger) *RedisResultStore {
	if client == nil {
		panic("client cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &RedisResultStore{
		client: client,
		ttl:    ttl,
		logger: logger.With(slog.String("component", "result_store")),
	}
}

// Ensure RedisResultStore implements store.ResultStore interface
var _ store.ResultStore = (*RedisResultStore)(nil)

func resultKey(activityID, userID uuid.UUID) string {
	return fmt.Sprintf("result:%s:%s", activityID, userID)
}

// SaveResult implements store.ResultStore.SaveResult
// A second submission for the same key replaces the first.
func (s *RedisResultStore) SaveResult(
	ctx context.Context,
	activityID, userID uuid.UUID,
	result *domain.ActivityResult,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := result.Validate(); err != nil {
		log.Warn("result validation failed during save",
			slog.String("error", err.Error()),
			slog.String("activity_id", activityID.String()),
			slog.String("user_id", userID.String()))
		return err
	}

	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal activity result: %w", err)
	}

	key := resultKey(activityID, userID)
	if err := s.client.Set(ctx, key, payload, s.ttl).Err(); err != nil {
		log.Error("failed to save activity result",
			slog.String("error", err.Error()),
			slog.String("key", key))
		return fmt.Errorf("failed to save activity result: %w", err)
	}

	log.Debug("activity result saved",
		slog.String("activity_id", activityID.String()),
		slog.String("user_id", userID.String()))
	return nil
}

// GetResult implements store.ResultStore.GetResult
// Returns store.ErrResultNotFound if no result has been submitted or the
// key has already expired.
func (s *RedisResultStore) GetResult(
	ctx context.Context,
	activityID, userID uuid.UUID,
) (*domain.ActivityResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	key := resultKey(activityID, userID)
	payload, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, store.ErrResultNotFound
		}
		log.Error("failed to get activity result",
			slog.String("error", err.Error()),
			slog.String("key", key))
		return nil, fmt.Errorf("failed to get activity result: %w", err)
	}

	var result domain.ActivityResult
	if err := json.Unmarshal(payload, &result); err != nil {
		log.Error("failed to unmarshal activity result",
			slog.String("error", err.Error()),
			slog.String("key", key))
		return nil, fmt.Errorf("failed to unmarshal activity result: %w", err)
	}

	return &result, nil
}

// DeleteResult implements store.ResultStore.DeleteResult
// Deleting an absent result is a no-op.
func (s *RedisResultStore) DeleteResult(ctx context.Context, activityID, userID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	key := resultKey(activityID, userID)
	if err := s.client.Del(ctx, key).Err(); err != nil {
		log.Error("failed to delete activity result",
			slog.String("error", err.Error()),
			slog.String("key", key))
		return fmt.Errorf("failed to delete activity result: %w", err)
	}

	return nil
}
