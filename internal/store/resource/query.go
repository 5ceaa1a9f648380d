package resource

import (
	"context"
	"sort"

	"github.com/MrSnakeDoc/guide/internal/domain"
)

// Query returns the shard's matching live resources in global order
// (creation time descending, ties by ID), starting strictly after the cursor
// when one is given and capped at limit when limit > 0.
//
// Each call produces a fresh snapshot, so a paginated merge can restart the
// shard query with a later cursor at any time.
func (s *Store) Query(ctx context.Context, filter domain.Filter, after *domain.Cursor, limit int) ([]*domain.Resource, error) {
	var out []*domain.Resource
	err := s.runner.Do(ctx, func() error {
		matched := make([]*domain.Resource, 0, len(s.records))
		for _, res := range s.records {
			if !filter.Match(res) {
				continue
			}
			if after != nil && !after.After(res) {
				continue
			}
			matched = append(matched, res)
		}

		sort.Slice(matched, func(i, j int) bool {
			return domain.Newer(matched[i], matched[j])
		})

		if limit > 0 && len(matched) > limit {
			matched = matched[:limit]
		}

		out = make([]*domain.Resource, len(matched))
		for i, res := range matched {
			out[i] = res.Clone()
		}
		return nil
	})
	return out, err
}
