package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// DefaultIdempotencyTTL is how long a submit idempotency token stays
	// replayable (24 hours)
	DefaultIdempotencyTTL = 24 * time.Hour
)

// GetIdempotency returns the resource ID previously recorded for a
// caller-supplied idempotency token, or "" on a miss.
func (s *Store) GetIdempotency(ctx context.Context, token string) (string, error) {
	id, err := s.client.Get(ctx, IdempotencyKey(token)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", fmt.Errorf("failed to get idempotency token: %w", err)
	}
	return id, nil
}

// PutIdempotency records the resource ID created for an idempotency token
func (s *Store) PutIdempotency(ctx context.Context, token, resourceID string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultIdempotencyTTL
	}
	if err := s.client.Set(ctx, IdempotencyKey(token), resourceID, ttl).Err(); err != nil {
		return fmt.Errorf("failed to record idempotency token: %w", err)
	}
	return nil
}
