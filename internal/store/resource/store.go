// Package resource implements the Resource Entity Store: the stateful unit
// that owns one shard of resource records. Every operation against a shard
// runs on its mailbox worker, one at a time, so counter adjustments and tag
// edits never race. Mutations are written through to durable storage before
// they are applied in memory; a shard rebuilt after eviction observes every
// acknowledged write.
package resource

import (
	"context"
	"fmt"
	"time"

	"github.com/MrSnakeDoc/guide/internal/domain"
	"github.com/MrSnakeDoc/guide/internal/unit"
)

// Persistence is what a shard needs from durable storage.
type Persistence interface {
	SaveResource(ctx context.Context, shardKey string, res *domain.Resource) error
	LoadShard(ctx context.Context, shardKey string) ([]*domain.Resource, error)
}

// TagPatch carries the optional fields of an updateTags operation.
// A nil field leaves the current value untouched.
type TagPatch struct {
	Category  *domain.Category
	Platforms *[]string
	Languages *[]string
}

// Store is one resource shard.
type Store struct {
	shardKey string
	runner   *unit.Unit
	persist  Persistence
	records  map[string]*domain.Resource

	now func() time.Time
}

// New loads the shard's records from durable storage and starts its worker.
func New(ctx context.Context, shardKey string, persist Persistence) (*Store, error) {
	loaded, err := persist.LoadShard(ctx, shardKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load shard %s: %w", shardKey, err)
	}

	records := make(map[string]*domain.Resource, len(loaded))
	for _, res := range loaded {
		records[res.ID] = res
	}

	return &Store{
		shardKey: shardKey,
		runner:   unit.New(shardKey, 0),
		persist:  persist,
		records:  records,
		now:      time.Now,
	}, nil
}

func (s *Store) ShardKey() string { return s.shardKey }

// Idle reports whether the shard qualifies for eviction.
func (s *Store) Idle(ttl time.Duration) bool { return s.runner.Idle(ttl) }

// Stop shuts the worker down. Durable state survives in storage.
func (s *Store) Stop() { s.runner.Stop() }

// Get returns the resource with the given ID, removed or not. Callers decide
// visibility policy for removed records.
func (s *Store) Get(ctx context.Context, id string) (*domain.Resource, error) {
	var out *domain.Resource
	err := s.runner.Do(ctx, func() error {
		res, ok := s.records[id]
		if !ok {
			return fmt.Errorf("resource %s: %w", id, domain.ErrNotFound)
		}
		out = res.Clone()
		return nil
	})
	return out, err
}

// Submit validates the draft and stores a new record under the given ID.
// The ID is assigned at routing time because shard placement is a function
// of the ID; the shard still guarantees it is unused.
func (s *Store) Submit(ctx context.Context, id string, draft *domain.Draft, submitterID string) (*domain.Resource, error) {
	if err := domain.ValidateDraft(draft); err != nil {
		return nil, err
	}
	if submitterID == "" {
		return nil, domain.Validationf("submitter required")
	}

	var out *domain.Resource
	err := s.runner.Do(ctx, func() error {
		if _, exists := s.records[id]; exists {
			return domain.Validationf("resource id %s already exists", id)
		}

		now := s.now().UTC()
		res := &domain.Resource{
			ID:          id,
			Title:       draft.Title,
			URL:         draft.URL,
			Category:    draft.Category,
			Platforms:   append([]string(nil), draft.Platforms...),
			Languages:   append([]string(nil), draft.Languages...),
			Description: draft.Description,
			SubmitterID: submitterID,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := s.persist.SaveResource(ctx, s.shardKey, res); err != nil {
			return err
		}
		s.records[res.ID] = res
		out = res.Clone()
		return nil
	})
	return out, err
}

// UpdateTags replaces the tag fields present in the patch.
func (s *Store) UpdateTags(ctx context.Context, id string, patch TagPatch) (*domain.Resource, error) {
	if patch.Category != nil && !domain.ValidCategory(*patch.Category) {
		return nil, domain.Validationf("category %q is not a known category", *patch.Category)
	}

	var out *domain.Resource
	err := s.runner.Do(ctx, func() error {
		res, ok := s.records[id]
		if !ok {
			return fmt.Errorf("resource %s: %w", id, domain.ErrNotFound)
		}

		next := res.Clone()
		if patch.Category != nil {
			next.Category = *patch.Category
		}
		if patch.Platforms != nil {
			next.Platforms = append([]string(nil), (*patch.Platforms)...)
		}
		if patch.Languages != nil {
			next.Languages = append([]string(nil), (*patch.Languages)...)
		}
		next.UpdatedAt = s.now().UTC()

		if err := s.persist.SaveResource(ctx, s.shardKey, next); err != nil {
			return err
		}
		s.records[id] = next
		out = next.Clone()
		return nil
	})
	return out, err
}

// AdjustVote applies a vote delta, clamped at zero.
func (s *Store) AdjustVote(ctx context.Context, id string, delta int64) (*domain.Resource, error) {
	return s.adjustCounter(ctx, id, delta, func(res *domain.Resource, v int64) { res.Votes = v }, func(res *domain.Resource) int64 { return res.Votes })
}

// AdjustBookmarkCount applies a bookmark-count delta, clamped at zero.
func (s *Store) AdjustBookmarkCount(ctx context.Context, id string, delta int64) (*domain.Resource, error) {
	return s.adjustCounter(ctx, id, delta, func(res *domain.Resource, v int64) { res.Bookmarks = v }, func(res *domain.Resource) int64 { return res.Bookmarks })
}

func (s *Store) adjustCounter(ctx context.Context, id string, delta int64, set func(*domain.Resource, int64), get func(*domain.Resource) int64) (*domain.Resource, error) {
	var out *domain.Resource
	err := s.runner.Do(ctx, func() error {
		res, ok := s.records[id]
		if !ok {
			return fmt.Errorf("resource %s: %w", id, domain.ErrNotFound)
		}

		next := res.Clone()
		v := get(next) + delta
		if v < 0 {
			v = 0
		}
		set(next, v)
		next.UpdatedAt = s.now().UTC()

		if err := s.persist.SaveResource(ctx, s.shardKey, next); err != nil {
			return err
		}
		s.records[id] = next
		out = next.Clone()
		return nil
	})
	return out, err
}

// Remove soft-deletes a resource. The ID stays addressable.
func (s *Store) Remove(ctx context.Context, id string) error {
	return s.runner.Do(ctx, func() error {
		res, ok := s.records[id]
		if !ok {
			return fmt.Errorf("resource %s: %w", id, domain.ErrNotFound)
		}
		if res.Removed {
			return nil // already removed, idempotent
		}

		next := res.Clone()
		next.Removed = true
		next.UpdatedAt = s.now().UTC()

		if err := s.persist.SaveResource(ctx, s.shardKey, next); err != nil {
			return err
		}
		s.records[id] = next
		return nil
	})
}

// ListMeta returns the distinct tags present in this shard's live records.
func (s *Store) ListMeta(ctx context.Context) (domain.Meta, error) {
	var out domain.Meta
	err := s.runner.Do(ctx, func() error {
		ms := domain.NewMetaSet()
		for _, res := range s.records {
			ms.Observe(res)
		}
		out = ms.Meta()
		return nil
	})
	return out, err
}
