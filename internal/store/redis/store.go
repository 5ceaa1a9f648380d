// Package redis persists the stateful units' records. Records are stored as
// JSON blobs without TTL: this is the authoritative copy that units rebuild
// from after a restart or an idle eviction, not a cache.
package redis

import (
	"github.com/redis/go-redis/v9"
)

// Store handles Redis persistence for resources, users and the shard registry
type Store struct {
	client *redis.Client
}

// NewStore creates a new Redis store
func NewStore(client *redis.Client) *Store {
	return &Store{
		client: client,
	}
}
