package domain

import "sort"

// Meta is the aggregate tag view: the distinct categories, platforms and
// languages present in live resources. Per shard it is a snapshot; the façade
// unions the per-shard snapshots at query time.
type Meta struct {
	Categories []string `json:"categories"`
	Platforms  []string `json:"platforms"`
	Languages  []string `json:"languages"`
}

// MetaSet accumulates tag sets before they are flattened into a Meta.
type MetaSet struct {
	categories map[string]struct{}
	platforms  map[string]struct{}
	languages  map[string]struct{}
}

func NewMetaSet() *MetaSet {
	return &MetaSet{
		categories: make(map[string]struct{}),
		platforms:  make(map[string]struct{}),
		languages:  make(map[string]struct{}),
	}
}

// Observe folds one resource's tags into the set. Removed resources
// contribute nothing.
func (m *MetaSet) Observe(r *Resource) {
	if r == nil || r.Removed {
		return
	}
	if r.Category != "" {
		m.categories[string(r.Category)] = struct{}{}
	}
	for _, p := range r.Platforms {
		m.platforms[p] = struct{}{}
	}
	for _, l := range r.Languages {
		m.languages[l] = struct{}{}
	}
}

// Union folds an already-flattened Meta into the set. Used by the façade
// when merging per-shard results.
func (m *MetaSet) Union(other Meta) {
	for _, c := range other.Categories {
		m.categories[c] = struct{}{}
	}
	for _, p := range other.Platforms {
		m.platforms[p] = struct{}{}
	}
	for _, l := range other.Languages {
		m.languages[l] = struct{}{}
	}
}

// Meta flattens the set into sorted slices. Sorting keeps the output stable
// across shards and across calls.
func (m *MetaSet) Meta() Meta {
	return Meta{
		Categories: sortedKeys(m.categories),
		Platforms:  sortedKeys(m.platforms),
		Languages:  sortedKeys(m.languages),
	}
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
