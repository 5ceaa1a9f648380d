package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/guide/internal/domain"
	"github.com/MrSnakeDoc/guide/internal/httpserver/deps"
	"github.com/MrSnakeDoc/guide/internal/logger"
	"github.com/MrSnakeDoc/guide/internal/store/resource"
)

// GetResource returns a single resource by ID. Soft-removed resources stay
// addressable for their submitter; everyone else gets 410 Gone.
func GetResource(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		res, err := d.Facade.GetResource(r.Context(), id)
		if err != nil {
			writeError(w, d, err)
			return
		}

		if res.Removed {
			caller, ok := identify(w, r, d)
			if !ok {
				return
			}
			if caller == nil || caller.UserID != res.SubmitterID {
				writeJSON(w, http.StatusGone, errorResponse{Error: "resource removed"})
				return
			}
		}

		writeJSON(w, http.StatusOK, res)
	}
}

// Submit creates a new resource from a draft. An Idempotency-Key header makes
// retries replay the original result instead of duplicating.
func Submit(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := requireIdentity(w, r, d)
		if !ok {
			return
		}

		var draft domain.Draft
		if !decodeBody(w, r, d, &draft) {
			return
		}

		res, err := d.Facade.Submit(r.Context(), &draft, caller.UserID, r.Header.Get("Idempotency-Key"))
		if err != nil {
			writeError(w, d, err)
			return
		}

		d.Logger.Info("resource submitted",
			logger.String("resource_id", res.ID),
			logger.String("submitter", caller.UserID))
		writeJSON(w, http.StatusCreated, res)
	}
}

type tagPatchRequest struct {
	Category  *domain.Category `json:"category,omitempty"`
	Platforms *[]string        `json:"platforms,omitempty"`
	Languages *[]string        `json:"languages,omitempty"`
}

// UpdateTags patches a resource's classification. Absent fields keep their
// current value.
func UpdateTags(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := requireIdentity(w, r, d); !ok {
			return
		}

		var req tagPatchRequest
		if !decodeBody(w, r, d, &req) {
			return
		}

		res, err := d.Facade.UpdateTags(r.Context(), chi.URLParam(r, "id"), resource.TagPatch{
			Category:  req.Category,
			Platforms: req.Platforms,
			Languages: req.Languages,
		})
		if err != nil {
			writeError(w, d, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

type voteRequest struct {
	Delta int64 `json:"delta"`
}

// Vote adjusts a resource's vote counter by a signed delta.
func Vote(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := requireIdentity(w, r, d); !ok {
			return
		}

		var req voteRequest
		if !decodeBody(w, r, d, &req) {
			return
		}
		if req.Delta != 1 && req.Delta != -1 {
			writeError(w, d, domain.Validationf("delta must be 1 or -1"))
			return
		}

		res, err := d.Facade.AdjustVote(r.Context(), chi.URLParam(r, "id"), req.Delta)
		if err != nil {
			writeError(w, d, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

// Remove soft-removes a resource. Only the submitter may do this.
func Remove(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := requireIdentity(w, r, d)
		if !ok {
			return
		}

		if err := d.Facade.Remove(r.Context(), chi.URLParam(r, "id"), caller.UserID); err != nil {
			writeError(w, d, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// Bookmark adds the resource to the caller's bookmark set.
func Bookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := requireIdentity(w, r, d)
		if !ok {
			return
		}

		res, err := d.Facade.Bookmark(r.Context(), caller.UserID, chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, d, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

// Unbookmark removes the resource from the caller's bookmark set.
func Unbookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := requireIdentity(w, r, d)
		if !ok {
			return
		}

		res, err := d.Facade.Unbookmark(r.Context(), caller.UserID, chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, d, err)
			return
		}
		// A nil resource means the bookmark was cleared but the record itself
		// no longer exists.
		if res == nil {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}
