package domain

import (
	"strings"
	"time"
)

// Category classifies a resource. The set is small and closed; new values
// require a deliberate product decision, not just a new submission.
type Category string

const (
	CategoryTutorial Category = "tutorial"
	CategoryExample  Category = "example"
	CategoryPackage  Category = "package"
	CategoryTemplate Category = "template"
	CategoryOther    Category = "other"
)

// KnownCategories lists every accepted category value.
var KnownCategories = []Category{
	CategoryTutorial,
	CategoryExample,
	CategoryPackage,
	CategoryTemplate,
	CategoryOther,
}

// ValidCategory reports whether c is one of the accepted category values.
func ValidCategory(c Category) bool {
	for _, known := range KnownCategories {
		if c == known {
			return true
		}
	}
	return false
}

// Resource is the canonical record of a submitted content item.
//
// A Resource is owned by exactly one resource shard; every mutation to it is
// serialized through that shard. It is never hard-deleted on the common path:
// Removed keeps the ID stable for external links.
type Resource struct {
	// ─────────────────────────────
	// Identity (immutable)
	// ─────────────────────────────

	// ID is the canonical unique identifier, assigned at submit time.
	ID string `json:"id"`

	// ─────────────────────────────
	// Content
	// ─────────────────────────────

	Title       string   `json:"title"`
	URL         string   `json:"url"`
	Category    Category `json:"category"`
	Platforms   []string `json:"platforms,omitempty"`
	Languages   []string `json:"languages,omitempty"`
	Description string   `json:"description,omitempty"`

	// ─────────────────────────────
	// Provenance
	// ─────────────────────────────

	// SubmitterID is the user who submitted the resource.
	SubmitterID string `json:"submitter_id"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// ─────────────────────────────
	// Mutable counters
	// ─────────────────────────────

	// Votes and Bookmarks are adjusted by deltas and clamped at zero.
	Votes     int64 `json:"votes"`
	Bookmarks int64 `json:"bookmarks"`

	// Removed marks a soft-deleted resource. Removed resources stay
	// addressable by ID but are excluded from search and metadata.
	Removed bool `json:"removed,omitempty"`
}

// Clone returns a deep copy so callers can never mutate store-owned state.
func (r *Resource) Clone() *Resource {
	if r == nil {
		return nil
	}
	dup := *r
	dup.Platforms = append([]string(nil), r.Platforms...)
	dup.Languages = append([]string(nil), r.Languages...)
	return &dup
}

// Newer reports whether a sorts before b in the global result order:
// creation time descending, ties broken by ID ascending.
func Newer(a, b *Resource) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID < b.ID
}

// Draft is the caller-supplied input of a submit operation.
type Draft struct {
	Title       string   `json:"title" validate:"required,max=256"`
	URL         string   `json:"url" validate:"required,url"`
	Category    Category `json:"category" validate:"required"`
	Platforms   []string `json:"platforms,omitempty"`
	Languages   []string `json:"languages,omitempty"`
	Description string   `json:"description,omitempty" validate:"max=2048"`
}

// Filter selects resources in a query operation. Zero-value fields match
// everything; Title is a case-insensitive substring match.
type Filter struct {
	Category Category `json:"category,omitempty"`
	Platform string   `json:"platform,omitempty"`
	Language string   `json:"language,omitempty"`
	Title    string   `json:"title,omitempty"`
}

// Match reports whether r satisfies the filter. Removed resources never match.
func (f Filter) Match(r *Resource) bool {
	if r == nil || r.Removed {
		return false
	}
	if f.Category != "" && r.Category != f.Category {
		return false
	}
	if f.Platform != "" && !containsFold(r.Platforms, f.Platform) {
		return false
	}
	if f.Language != "" && !containsFold(r.Languages, f.Language) {
		return false
	}
	if f.Title != "" && !strings.Contains(strings.ToLower(r.Title), strings.ToLower(f.Title)) {
		return false
	}
	return true
}

func containsFold(set []string, want string) bool {
	for _, v := range set {
		if strings.EqualFold(v, want) {
			return true
		}
	}
	return false
}
