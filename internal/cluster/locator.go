// Package cluster provides the addressing layer for stateful units: given an
// entity type and a key it returns the one live unit instance for that key,
// creating it (and loading its durable state) on first touch. It also keeps
// the shard registry that fan-out reads enumerate, since the per-key contract
// alone cannot list instances.
package cluster

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/MrSnakeDoc/guide/internal/domain"
	"github.com/MrSnakeDoc/guide/internal/logger"
	"github.com/MrSnakeDoc/guide/internal/store/resource"
	"github.com/MrSnakeDoc/guide/internal/store/user"
	"github.com/google/uuid"
)

// Persistence is the durable storage surface the locator hands to the units
// it creates, plus the shard registry.
type Persistence interface {
	resource.Persistence
	user.Persistence
	RegisterShard(ctx context.Context, shardKey string) error
	ShardKeys(ctx context.Context) ([]string, error)
}

// Locator owns the map of live units. Units are created lazily, rebuilt from
// durable storage, and evicted again when idle; the map is an address book,
// never the source of truth.
type Locator struct {
	persist    Persistence
	log        logger.Logger
	numShards  int
	sessionTTL time.Duration

	mu        sync.Mutex
	resources map[string]*resource.Store
	users     map[string]*user.Store
}

// NewLocator creates the addressing layer.
func NewLocator(persist Persistence, numShards int, sessionTTL time.Duration, log logger.Logger) *Locator {
	if numShards <= 0 {
		numShards = DefaultShardCount
	}
	return &Locator{
		persist:    persist,
		log:        log,
		numShards:  numShards,
		sessionTTL: sessionTTL,
		resources:  make(map[string]*resource.Store),
		users:      make(map[string]*user.Store),
	}
}

// NewResourceID assigns an ID for a submit and the shard key that owns it.
// Assignment happens here rather than in the shard because placement is a
// function of the ID.
func (l *Locator) NewResourceID() (id, shardKey string) {
	id = uuid.NewString()
	return id, ShardKeyFor(id, l.numShards)
}

// ShardForResource returns the shard key owning an existing resource ID.
func (l *Locator) ShardForResource(resourceID string) string {
	return ShardKeyFor(resourceID, l.numShards)
}

// ResourceShard returns the live unit for a shard key, creating and loading
// it on first touch. Load failures are retried once, then surfaced as
// ErrUnavailable: the one routed call fails, nothing else.
func (l *Locator) ResourceShard(ctx context.Context, shardKey string) (*resource.Store, error) {
	l.mu.Lock()
	if s, ok := l.resources[shardKey]; ok {
		l.mu.Unlock()
		return s, nil
	}
	l.mu.Unlock()

	// Load without the map lock so one slow shard cannot stall lookups of
	// the others.
	s, err := resource.New(ctx, shardKey, l.persist)
	if err != nil {
		s, err = resource.New(ctx, shardKey, l.persist)
	}
	if err != nil {
		l.log.Warn("failed to open resource shard",
			logger.String("shard", shardKey),
			logger.Error(err))
		return nil, fmt.Errorf("shard %s: %v: %w", shardKey, err, domain.ErrUnavailable)
	}

	l.mu.Lock()
	if cur, ok := l.resources[shardKey]; ok {
		// Another caller published first. Theirs is the one live instance;
		// ours never received an operation and can be dropped.
		l.mu.Unlock()
		s.Stop()
		return cur, nil
	}
	l.resources[shardKey] = s
	l.mu.Unlock()

	l.log.Debug("resource shard loaded", logger.String("shard", shardKey))
	return s, nil
}

// UserStore returns the live unit for a user ID, creating and loading it on
// first touch.
func (l *Locator) UserStore(ctx context.Context, userID string) (*user.Store, error) {
	l.mu.Lock()
	if s, ok := l.users[userID]; ok {
		l.mu.Unlock()
		return s, nil
	}
	l.mu.Unlock()

	s, err := user.New(ctx, userID, l.sessionTTL, l.persist)
	if err != nil {
		s, err = user.New(ctx, userID, l.sessionTTL, l.persist)
	}
	if err != nil {
		l.log.Warn("failed to open user store",
			logger.String("user", userID),
			logger.Error(err))
		return nil, fmt.Errorf("user %s: %v: %w", userID, err, domain.ErrUnavailable)
	}

	l.mu.Lock()
	if cur, ok := l.users[userID]; ok {
		l.mu.Unlock()
		s.Stop()
		return cur, nil
	}
	l.users[userID] = s
	l.mu.Unlock()
	return s, nil
}

// RegisterShard records a shard key in the durable registry. Called on every
// submit; SAdd makes repeats free.
func (l *Locator) RegisterShard(ctx context.Context, shardKey string) error {
	return l.persist.RegisterShard(ctx, shardKey)
}

// KnownShards enumerates every shard key that has ever owned a resource.
// This is the fan-out target list for meta and search.
func (l *Locator) KnownShards(ctx context.Context) ([]string, error) {
	return l.persist.ShardKeys(ctx)
}

// EvictIdle stops and drops units idle for at least ttl. Their durable state
// stays put; the next touch rebuilds them. A caller holding a stale pointer
// gets unit.ErrStopped and retries through the locator.
func (l *Locator) EvictIdle(ttl time.Duration) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	evicted := 0
	for key, s := range l.resources {
		if s.Idle(ttl) {
			s.Stop()
			delete(l.resources, key)
			evicted++
		}
	}
	for key, s := range l.users {
		if s.Idle(ttl) {
			s.Stop()
			delete(l.users, key)
			evicted++
		}
	}
	return evicted
}

// LiveUnits reports how many units are currently resident.
func (l *Locator) LiveUnits() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.resources) + len(l.users)
}

// Shutdown stops every live unit.
func (l *Locator) Shutdown() {
	l.mu.Lock()
	defer l.mu.Unlock()

	for key, s := range l.resources {
		s.Stop()
		delete(l.resources, key)
	}
	for key, s := range l.users {
		s.Stop()
		delete(l.users, key)
	}
}
