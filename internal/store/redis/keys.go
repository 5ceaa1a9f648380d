package redis

const (
	// KeyPrefixResource is the prefix for resource record keys
	KeyPrefixResource = "guide:resource:"
	// KeyPrefixShardMembers is the prefix for per-shard membership sets
	KeyPrefixShardMembers = "guide:shard:"
	// KeyPrefixUser is the prefix for user record keys
	KeyPrefixUser = "guide:user:"
	// KeyPrefixIdempotency is the prefix for submit idempotency keys
	KeyPrefixIdempotency = "guide:idem:"
	// KeyShardRegistry is the key for the set of known shard keys
	KeyShardRegistry = "guide:shards"
)

// ResourceKey returns the Redis key for a resource record
func ResourceKey(id string) string {
	return KeyPrefixResource + id
}

// ShardMembersKey returns the Redis key for a shard's membership set
func ShardMembersKey(shardKey string) string {
	return KeyPrefixShardMembers + shardKey + ":members"
}

// UserKey returns the Redis key for a user record
func UserKey(id string) string {
	return KeyPrefixUser + id
}

// IdempotencyKey returns the Redis key for a caller-supplied idempotency token
func IdempotencyKey(token string) string {
	return KeyPrefixIdempotency + token
}

// ShardRegistryKey returns the key for the set of known shard keys
func ShardRegistryKey() string {
	return KeyShardRegistry
}
