package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/MrSnakeDoc/guide/internal/domain"
	"github.com/redis/go-redis/v9"
)

// SaveResource stores a resource record and tracks it in its shard's
// membership set. Called inside the owning shard's serialized operation, so
// two writers never race on the same record.
func (s *Store) SaveResource(ctx context.Context, shardKey string, res *domain.Resource) error {
	data, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("failed to marshal resource: %w", err)
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, ResourceKey(res.ID), data, 0)
	pipe.SAdd(ctx, ShardMembersKey(shardKey), res.ID)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save resource: %w", err)
	}
	return nil
}

// GetResource retrieves a resource record by ID
func (s *Store) GetResource(ctx context.Context, id string) (*domain.Resource, error) {
	data, err := s.client.Get(ctx, ResourceKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("resource %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get resource: %w", err)
	}

	var res domain.Resource
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, fmt.Errorf("failed to unmarshal resource: %w", err)
	}
	return &res, nil
}

// LoadShard retrieves every record belonging to a shard. Records that cannot
// be read are skipped; a missing membership set means an empty shard.
func (s *Store) LoadShard(ctx context.Context, shardKey string) ([]*domain.Resource, error) {
	ids, err := s.client.SMembers(ctx, ShardMembersKey(shardKey)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get shard members: %w", err)
	}

	resources := make([]*domain.Resource, 0, len(ids))
	for _, id := range ids {
		res, err := s.GetResource(ctx, id)
		if err != nil {
			continue
		}
		resources = append(resources, res)
	}
	return resources, nil
}
