package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/guide/internal/httpserver/deps"
)

type metaResponse struct {
	Categories []string `json:"categories"`
	Platforms  []string `json:"platforms"`
	Languages  []string `json:"languages"`
	Partial    bool     `json:"partial"`
}

// Meta aggregates tag vocabularies across all shards. Unreachable shards are
// reported through the partial flag rather than failing the call.
func Meta(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		meta, partial, err := d.Facade.Meta(r.Context())
		if err != nil {
			writeError(w, d, err)
			return
		}

		writeJSON(w, http.StatusOK, metaResponse{
			Categories: meta.Categories,
			Platforms:  meta.Platforms,
			Languages:  meta.Languages,
			Partial:    partial,
		})
	}
}
