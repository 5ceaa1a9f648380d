package facade

import (
	"context"
	"fmt"
	"sort"

	"github.com/MrSnakeDoc/guide/internal/domain"
	"github.com/MrSnakeDoc/guide/internal/logger"
)

// SearchResult is one page of a merged, globally ordered search.
type SearchResult struct {
	Resources  []*domain.Resource `json:"resources"`
	NextCursor string             `json:"next_cursor,omitempty"`
	// Partial is set when at least one shard did not answer within the
	// fan-out timeout; the page is then a degraded view, not an error.
	Partial bool `json:"partial,omitempty"`
}

// DefaultSearchLimit caps a page when the caller does not ask for a size.
const DefaultSearchLimit = 25

// MaxSearchLimit is the hard page-size ceiling.
const MaxSearchLimit = 100

// Meta fans listMeta out to every known shard and unions the per-shard sets.
// Unreachable shards are excluded and flagged, never fatal.
func (f *Facade) Meta(ctx context.Context) (domain.Meta, bool, error) {
	shards, err := f.locator.KnownShards(ctx)
	if err != nil {
		return domain.Meta{}, false, fmt.Errorf("shard registry: %v: %w", err, domain.ErrUnavailable)
	}

	type shardMeta struct {
		meta domain.Meta
		err  error
	}

	results := make(chan shardMeta, len(shards))
	for _, shardKey := range shards {
		go func(key string) {
			callCtx, cancel := context.WithTimeout(ctx, f.fanoutTimeout)
			defer cancel()

			s, err := f.locator.ResourceShard(callCtx, key)
			if err != nil {
				results <- shardMeta{err: err}
				return
			}
			meta, err := s.ListMeta(callCtx)
			results <- shardMeta{meta: meta, err: err}
		}(shardKey)
	}

	ms := domain.NewMetaSet()
	partial := false
	for range shards {
		r := <-results
		if r.err != nil {
			partial = true
			f.log.Warn("meta fan-out target skipped", logger.Error(r.err))
			continue
		}
		ms.Union(r.meta)
	}
	return ms.Meta(), partial, nil
}

// Search fans the filter out to every known shard, merges the per-shard
// ordered snapshots into the global order (creation descending, ties by ID)
// and returns one page. The cursor makes the merged sequence resumable:
// each call re-runs the shard queries strictly after the cursor, so no
// server-side iterator state is needed.
func (f *Facade) Search(ctx context.Context, filter domain.Filter, cursorToken string, limit int) (*SearchResult, error) {
	after, err := domain.DecodeCursor(cursorToken)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	if limit > MaxSearchLimit {
		limit = MaxSearchLimit
	}

	shards, err := f.locator.KnownShards(ctx)
	if err != nil {
		return nil, fmt.Errorf("shard registry: %v: %w", err, domain.ErrUnavailable)
	}

	type shardPage struct {
		resources []*domain.Resource
		err       error
	}

	results := make(chan shardPage, len(shards))
	for _, shardKey := range shards {
		go func(key string) {
			callCtx, cancel := context.WithTimeout(ctx, f.fanoutTimeout)
			defer cancel()

			s, err := f.locator.ResourceShard(callCtx, key)
			if err != nil {
				results <- shardPage{err: err}
				return
			}
			// A shard can contribute at most limit items to the page.
			page, err := s.Query(callCtx, filter, after, limit)
			results <- shardPage{resources: page, err: err}
		}(shardKey)
	}

	merged := make([]*domain.Resource, 0, limit*2)
	partial := false
	for range shards {
		r := <-results
		if r.err != nil {
			partial = true
			f.log.Warn("search fan-out target skipped", logger.Error(r.err))
			continue
		}
		merged = append(merged, r.resources...)
	}

	sort.Slice(merged, func(i, j int) bool {
		return domain.Newer(merged[i], merged[j])
	})

	if len(merged) > limit {
		merged = merged[:limit]
	}

	out := &SearchResult{Resources: merged, Partial: partial}
	// A full page may have more behind it; the next call finds out.
	if len(merged) == limit {
		last := merged[len(merged)-1]
		out.NextCursor = domain.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}.Encode()
	}
	return out, nil
}
