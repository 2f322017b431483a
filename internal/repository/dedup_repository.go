package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// DedupRepository tracks delivery dedup keys in Redis. Keys expire after the
// configured TTL; a missing Redis client degrades to marking every key as
// fresh, which keeps delivery at-least-once.
type DedupRepository struct {
	client *redis.Client
	logger *zap.Logger
}

// NewDedupRepository constructs a dedup repository.
func NewDedupRepository(client *redis.Client, logger *zap.Logger) *DedupRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DedupRepository{client: client, logger: logger}
}

// Acquire atomically claims the key. It returns true when this caller is the
// first to claim it inside the TTL window.
func (r *DedupRepository) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if r.client == nil {
		return true, nil
	}
	first, err := r.client.SetNX(ctx, fmt.Sprintf("notify:dedup:%s", key), 1, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx %s: %w", key, err)
	}
	return first, nil
}

// Close releases the underlying Redis connection if present.
func (r *DedupRepository) Close() error {
	if r.client == nil {
		return nil
	}
	return r.client.Close()
}
