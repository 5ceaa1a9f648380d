package redis

import (
	"context"
	"fmt"
)

// RegisterShard records a shard key in the registry set. The registry is how
// fan-out discovers shards: the platform contract is only "get the unit for
// key K", so every submit keeps this auxiliary index current.
func (s *Store) RegisterShard(ctx context.Context, shardKey string) error {
	if err := s.client.SAdd(ctx, ShardRegistryKey(), shardKey).Err(); err != nil {
		return fmt.Errorf("failed to register shard: %w", err)
	}
	return nil
}

// ShardKeys returns every known shard key
func (s *Store) ShardKeys(ctx context.Context) ([]string, error) {
	keys, err := s.client.SMembers(ctx, ShardRegistryKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list shard keys: %w", err)
	}
	return keys, nil
}
