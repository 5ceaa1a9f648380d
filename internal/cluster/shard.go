package cluster

import (
	"fmt"
	"hash/fnv"
)

// DefaultShardCount is the number of resource shards when none is configured.
// The count is fixed for the lifetime of a deployment: shard placement is a
// pure function of the resource ID, so changing it would strand records.
const DefaultShardCount = 4

// ShardKeyFor maps a resource ID onto its owning shard key.
func ShardKeyFor(resourceID string, numShards int) string {
	if numShards <= 0 {
		numShards = DefaultShardCount
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(resourceID))
	return fmt.Sprintf("shard-%d", h.Sum32()%uint32(numShards))
}
