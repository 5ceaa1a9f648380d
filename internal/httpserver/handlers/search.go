package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/MrSnakeDoc/guide/internal/domain"
	"github.com/MrSnakeDoc/guide/internal/httpserver/deps"
)

type searchResponse struct {
	Resources  []*domain.Resource `json:"resources"`
	NextCursor string             `json:"next_cursor,omitempty"`
	Partial    bool               `json:"partial"`
}

// Search runs a filtered, cursor-paginated query across all shards.
// Filters: category, platform, language, q (title substring).
func Search(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		filter := domain.Filter{
			Category: domain.Category(strings.TrimSpace(q.Get("category"))),
			Platform: strings.TrimSpace(q.Get("platform")),
			Language: strings.TrimSpace(q.Get("language")),
			Title:    strings.TrimSpace(q.Get("q")),
		}

		limit := 0
		if raw := q.Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 1 {
				writeError(w, d, domain.Validationf("limit must be a positive integer"))
				return
			}
			limit = n
		}

		page, err := d.Facade.Search(r.Context(), filter, q.Get("cursor"), limit)
		if err != nil {
			writeError(w, d, err)
			return
		}

		resources := page.Resources
		if resources == nil {
			resources = []*domain.Resource{}
		}
		writeJSON(w, http.StatusOK, searchResponse{
			Resources:  resources,
			NextCursor: page.NextCursor,
			Partial:    page.Partial,
		})
	}
}
