package cluster

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/MrSnakeDoc/guide/internal/domain"
	"github.com/MrSnakeDoc/guide/internal/logger"
	"github.com/MrSnakeDoc/guide/internal/store/resource"
)

// loadGate lets a test hold a shard load in flight: LoadShard signals entered
// and then parks until release is closed.
type loadGate struct {
	entered chan struct{}
	release chan struct{}
}

type fakePersist struct {
	mu        sync.Mutex
	resources map[string]*domain.Resource
	users     map[string]*domain.User
	shards    map[string]struct{}
	failLoads int
	gates     map[string]*loadGate
}

func newFakePersist() *fakePersist {
	return &fakePersist{
		resources: make(map[string]*domain.Resource),
		users:     make(map[string]*domain.User),
		shards:    make(map[string]struct{}),
	}
}

func (f *fakePersist) SaveResource(_ context.Context, _ string, res *domain.Resource) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resources[res.ID] = res.Clone()
	return nil
}

func (f *fakePersist) LoadShard(_ context.Context, shardKey string) ([]*domain.Resource, error) {
	f.mu.Lock()
	if f.failLoads > 0 {
		f.failLoads--
		f.mu.Unlock()
		return nil, errors.New("storage down")
	}
	gate := f.gates[shardKey]
	f.mu.Unlock()

	if gate != nil {
		gate.entered <- struct{}{}
		<-gate.release
	}
	return nil, nil
}

func (f *fakePersist) SaveUser(_ context.Context, u *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[u.ID] = u.Clone()
	return nil
}

func (f *fakePersist) GetUser(_ context.Context, id string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.users[id].Clone(), nil
}

func (f *fakePersist) RegisterShard(_ context.Context, shardKey string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.shards[shardKey] = struct{}{}
	return nil
}

func (f *fakePersist) ShardKeys(_ context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	keys := make([]string, 0, len(f.shards))
	for k := range f.shards {
		keys = append(keys, k)
	}
	return keys, nil
}

func testLogger() logger.Logger { return logger.New("error", false) }

func TestShardKeyForIsStableAndBounded(t *testing.T) {
	key := ShardKeyFor("some-resource-id", 4)
	if key != ShardKeyFor("some-resource-id", 4) {
		t.Error("ShardKeyFor() must be deterministic")
	}
	if !strings.HasPrefix(key, "shard-") {
		t.Errorf("shard key = %q, want shard-N", key)
	}
}

func TestShardKeyForSpreadsKeys(t *testing.T) {
	seen := make(map[string]bool)
	for _, id := range []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"} {
		seen[ShardKeyFor(id, 4)] = true
	}
	if len(seen) < 2 {
		t.Errorf("ShardKeyFor() placed 10 ids on %d shard(s), want some spread", len(seen))
	}
}

func TestResourceShardGetOrCreate(t *testing.T) {
	l := NewLocator(newFakePersist(), 4, time.Hour, testLogger())
	defer l.Shutdown()
	ctx := context.Background()

	first, err := l.ResourceShard(ctx, "shard-0")
	if err != nil {
		t.Fatalf("ResourceShard() = %v", err)
	}
	second, err := l.ResourceShard(ctx, "shard-0")
	if err != nil {
		t.Fatalf("ResourceShard() = %v", err)
	}
	if first != second {
		t.Error("ResourceShard() must return the same instance for the same key")
	}
}

func TestResourceShardRetriesThenUnavailable(t *testing.T) {
	persist := newFakePersist()
	persist.failLoads = 1 // first attempt fails, retry succeeds
	l := NewLocator(persist, 4, time.Hour, testLogger())
	defer l.Shutdown()

	if _, err := l.ResourceShard(context.Background(), "shard-0"); err != nil {
		t.Errorf("ResourceShard() = %v, a single load failure should be retried", err)
	}

	persist.mu.Lock()
	persist.failLoads = 2 // both attempts fail
	persist.mu.Unlock()
	if _, err := l.ResourceShard(context.Background(), "shard-1"); !errors.Is(err, domain.ErrUnavailable) {
		t.Errorf("ResourceShard() = %v, want ErrUnavailable", err)
	}
}

// One shard stuck in a slow load must not stall lookups of other shards.
func TestResourceShardSlowLoadDoesNotBlockOthers(t *testing.T) {
	persist := newFakePersist()
	gate := &loadGate{entered: make(chan struct{}, 1), release: make(chan struct{})}
	persist.gates = map[string]*loadGate{"shard-0": gate}
	l := NewLocator(persist, 4, time.Hour, testLogger())
	defer l.Shutdown()
	ctx := context.Background()

	slowDone := make(chan error, 1)
	go func() {
		_, err := l.ResourceShard(ctx, "shard-0")
		slowDone <- err
	}()
	<-gate.entered // the slow load is now in flight

	fastDone := make(chan error, 1)
	go func() {
		_, err := l.ResourceShard(ctx, "shard-1")
		fastDone <- err
	}()

	select {
	case err := <-fastDone:
		if err != nil {
			t.Fatalf("ResourceShard(shard-1) = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("lookup of an unrelated shard waited on a slow load")
	}

	close(gate.release)
	if err := <-slowDone; err != nil {
		t.Fatalf("ResourceShard(shard-0) = %v", err)
	}
}

// Two callers racing the first load of the same shard must settle on one
// live instance.
func TestResourceShardConcurrentFirstLoadSettlesOnOne(t *testing.T) {
	persist := newFakePersist()
	gate := &loadGate{entered: make(chan struct{}), release: make(chan struct{})}
	persist.gates = map[string]*loadGate{"shard-0": gate}
	l := NewLocator(persist, 4, time.Hour, testLogger())
	defer l.Shutdown()
	ctx := context.Background()

	type result struct {
		s   *resource.Store
		err error
	}
	done := make(chan result, 2)
	for i := 0; i < 2; i++ {
		go func() {
			s, err := l.ResourceShard(ctx, "shard-0")
			done <- result{s, err}
		}()
	}
	// Both callers are past the map check and inside their own load.
	<-gate.entered
	<-gate.entered
	close(gate.release)

	first := <-done
	second := <-done
	if first.err != nil || second.err != nil {
		t.Fatalf("ResourceShard() = %v / %v", first.err, second.err)
	}
	if first.s != second.s {
		t.Error("concurrent first loads must return the same instance")
	}
	if l.LiveUnits() != 1 {
		t.Errorf("LiveUnits() = %d, want the losing load discarded", l.LiveUnits())
	}
}

func TestUserStoreGetOrCreate(t *testing.T) {
	l := NewLocator(newFakePersist(), 4, time.Hour, testLogger())
	defer l.Shutdown()
	ctx := context.Background()

	first, err := l.UserStore(ctx, "github:1")
	if err != nil {
		t.Fatalf("UserStore() = %v", err)
	}
	second, err := l.UserStore(ctx, "github:1")
	if err != nil {
		t.Fatalf("UserStore() = %v", err)
	}
	if first != second {
		t.Error("UserStore() must return the same instance for the same key")
	}
}

func TestNewResourceIDMatchesRouting(t *testing.T) {
	l := NewLocator(newFakePersist(), 4, time.Hour, testLogger())
	defer l.Shutdown()

	id, shardKey := l.NewResourceID()
	if id == "" {
		t.Fatal("NewResourceID() must assign an ID")
	}
	if got := l.ShardForResource(id); got != shardKey {
		t.Errorf("ShardForResource(%s) = %s, want %s", id, got, shardKey)
	}
}

func TestKnownShardsReflectsRegistry(t *testing.T) {
	l := NewLocator(newFakePersist(), 4, time.Hour, testLogger())
	defer l.Shutdown()
	ctx := context.Background()

	if err := l.RegisterShard(ctx, "shard-2"); err != nil {
		t.Fatalf("RegisterShard() = %v", err)
	}
	keys, err := l.KnownShards(ctx)
	if err != nil {
		t.Fatalf("KnownShards() = %v", err)
	}
	if len(keys) != 1 || keys[0] != "shard-2" {
		t.Errorf("KnownShards() = %v, want [shard-2]", keys)
	}
}

func TestEvictIdle(t *testing.T) {
	l := NewLocator(newFakePersist(), 4, time.Hour, testLogger())
	defer l.Shutdown()
	ctx := context.Background()

	if _, err := l.ResourceShard(ctx, "shard-0"); err != nil {
		t.Fatalf("ResourceShard() = %v", err)
	}
	if _, err := l.UserStore(ctx, "github:1"); err != nil {
		t.Fatalf("UserStore() = %v", err)
	}

	if n := l.EvictIdle(time.Hour); n != 0 {
		t.Errorf("EvictIdle(1h) = %d, nothing should be idle yet", n)
	}

	time.Sleep(20 * time.Millisecond)
	if n := l.EvictIdle(time.Millisecond); n != 2 {
		t.Errorf("EvictIdle(1ms) = %d, want 2", n)
	}
	if l.LiveUnits() != 0 {
		t.Errorf("LiveUnits() = %d, want 0 after eviction", l.LiveUnits())
	}
}
