package handlers

import (
	"net/http"
	"time"

	"github.com/MrSnakeDoc/guide/internal/auth"
	"github.com/MrSnakeDoc/guide/internal/domain"
	"github.com/MrSnakeDoc/guide/internal/httpserver/deps"
	"github.com/MrSnakeDoc/guide/internal/logger"
)

type loginRequest struct {
	Provider string `json:"provider"`
	Subject  string `json:"sub"`
	Name     string `json:"name"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Login exchanges an identity assertion for a fresh session. The credential
// is set as a cookie and also returned for bearer-style API clients.
func Login(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if !decodeBody(w, r, d, &req) {
			return
		}

		sess, id, err := d.Facade.Login(r.Context(), &domain.Assertion{
			Provider: req.Provider,
			Subject:  req.Subject,
			Name:     req.Name,
		})
		if err != nil {
			writeError(w, d, err)
			return
		}

		cred := auth.Credential{UserID: id.UserID, Token: sess.Token}
		auth.SetSession(w, cred, int(d.SessionTTL.Seconds()))

		d.Logger.Info("login",
			logger.String("user_id", id.UserID),
			logger.String("provider", req.Provider))
		writeJSON(w, http.StatusOK, loginResponse{
			Token:     cred.Encode(),
			UserID:    id.UserID,
			Name:      id.Name,
			ExpiresAt: sess.ExpiresAt,
		})
	}
}

// Logout invalidates the presented session and clears the cookie. Safe to
// call without a credential.
func Logout(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cred, ok := auth.CredentialFromRequest(r); ok {
			if err := d.Facade.Logout(r.Context(), cred.UserID, cred.Token); err != nil {
				writeError(w, d, err)
				return
			}
		}

		auth.ClearSession(w)
		w.WriteHeader(http.StatusNoContent)
	}
}

// Profile returns the caller's own record.
func Profile(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := requireIdentity(w, r, d)
		if !ok {
			return
		}

		user, err := d.Facade.Profile(r.Context(), caller.UserID)
		if err != nil {
			writeError(w, d, err)
			return
		}
		writeJSON(w, http.StatusOK, user)
	}
}
