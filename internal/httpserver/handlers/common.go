package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/MrSnakeDoc/guide/internal/domain"
	"github.com/MrSnakeDoc/guide/internal/httpserver/deps"
	"github.com/MrSnakeDoc/guide/internal/logger"
)

type errorResponse struct {
	Error  string   `json:"error"`
	Fields []string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps domain errors to HTTP statuses. Anything unrecognized is a
// 500 and gets logged; the mapped cases are the caller's fault or expected.
func writeError(w http.ResponseWriter, d deps.Deps, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: verr.Error(), Fields: verr.Fields})
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
	case errors.Is(err, domain.ErrUnauthenticated):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthenticated"})
	case errors.Is(err, domain.ErrUnavailable):
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "temporarily unavailable"})
	default:
		d.Logger.Error("request failed", logger.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, d deps.Deps, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, d, domain.Validationf("malformed request body"))
		return false
	}
	return true
}

// identify resolves the caller. A nil identity means anonymous.
func identify(w http.ResponseWriter, r *http.Request, d deps.Deps) (*domain.Identity, bool) {
	id, err := d.Gateway.Identify(r)
	if err != nil {
		writeError(w, d, err)
		return nil, false
	}
	return id, true
}

// requireIdentity is identify plus a 401 for anonymous callers.
func requireIdentity(w http.ResponseWriter, r *http.Request, d deps.Deps) (*domain.Identity, bool) {
	id, ok := identify(w, r, d)
	if !ok {
		return nil, false
	}
	if id == nil {
		writeError(w, d, domain.ErrUnauthenticated)
		return nil, false
	}
	return id, true
}
