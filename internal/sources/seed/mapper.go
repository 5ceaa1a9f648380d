package seed

import (
	"fmt"

	"github.com/MrSnakeDoc/guide/internal/domain"
)

// Mapper converts a seed catalog to submit drafts.
type Mapper struct{}

// NewMapper creates a new mapper instance
func NewMapper() *Mapper {
	return &Mapper{}
}

// MapDrafts converts a Catalog to domain drafts. Entries without a title or
// URL are skipped; unknown category names fall back to "other". Duplicate
// URLs within the file keep the first occurrence.
func (m *Mapper) MapDrafts(catalog Catalog) ([]*domain.Draft, error) {
	var drafts []*domain.Draft
	seen := make(map[string]bool)

	for _, categoryMap := range catalog {
		for categoryName, entries := range categoryMap {
			category := domain.Category(categoryName)
			if !domain.ValidCategory(category) {
				category = domain.CategoryOther
			}

			for _, entry := range entries {
				if entry.Title == "" || entry.URL == "" {
					continue
				}
				if seen[entry.URL] {
					continue
				}
				seen[entry.URL] = true

				drafts = append(drafts, &domain.Draft{
					Title:       entry.Title,
					URL:         entry.URL,
					Category:    category,
					Platforms:   entry.Platforms,
					Languages:   entry.Languages,
					Description: entry.Description,
				})
			}
		}
	}

	if len(drafts) == 0 {
		return nil, fmt.Errorf("no valid entries found in seed catalog")
	}

	return drafts, nil
}
