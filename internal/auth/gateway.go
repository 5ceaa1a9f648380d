package auth

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"

	"github.com/MrSnakeDoc/guide/internal/domain"
	"github.com/MrSnakeDoc/guide/internal/logger"
)

// SessionCookie is the cookie carrying the encoded credential.
const SessionCookie = "guide_session"

const bearerPrefix = "Bearer "

// Credential pairs a user ID with their session token. Both travel together
// because session validation is routed to the owning user store.
type Credential struct {
	UserID string
	Token  string
}

// Encode packs the credential into a single opaque string suitable for a
// cookie value or bearer token.
func (c Credential) Encode() string {
	return base64.RawURLEncoding.EncodeToString([]byte(c.UserID)) + "." + c.Token
}

// DecodeCredential reverses Encode. Malformed input is an error, not a panic.
func DecodeCredential(raw string) (Credential, error) {
	dot := strings.LastIndex(raw, ".")
	if dot <= 0 || dot == len(raw)-1 {
		return Credential{}, errors.New("malformed credential")
	}
	userID, err := base64.RawURLEncoding.DecodeString(raw[:dot])
	if err != nil {
		return Credential{}, errors.New("malformed credential")
	}
	return Credential{UserID: string(userID), Token: raw[dot+1:]}, nil
}

// SessionChecker validates a token against the owning user store.
type SessionChecker interface {
	CheckSession(ctx context.Context, userID, token string) (*domain.Identity, error)
}

// Gateway extracts credentials from HTTP requests and resolves them to an
// identity. A missing, malformed, or stale credential yields the anonymous
// identity (nil), never an error, so that public routes keep working.
type Gateway struct {
	sessions SessionChecker
	log      logger.Logger
}

func NewGateway(sessions SessionChecker, log logger.Logger) *Gateway {
	return &Gateway{sessions: sessions, log: log}
}

// Identify resolves the request's caller. Returns (nil, nil) for anonymous
// callers and only errors when the backend could not be consulted.
func (g *Gateway) Identify(r *http.Request) (*domain.Identity, error) {
	cred, ok := CredentialFromRequest(r)
	if !ok {
		return nil, nil
	}
	id, err := g.sessions.CheckSession(r.Context(), cred.UserID, cred.Token)
	switch {
	case err == nil:
		return id, nil
	case errors.Is(err, domain.ErrUnauthenticated):
		return nil, nil
	default:
		g.log.Warn("session check failed",
			logger.String("user_id", cred.UserID),
			logger.Error(err),
		)
		return nil, err
	}
}

// SetSession writes the session cookie on a login response.
func SetSession(w http.ResponseWriter, cred Credential, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    cred.Encode(),
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSession expires the session cookie on logout.
func ClearSession(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// CredentialFromRequest checks the Authorization header first, then the
// cookie. A malformed credential counts as absent.
func CredentialFromRequest(r *http.Request) (Credential, bool) {
	raw := ""
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, bearerPrefix) {
		raw = strings.TrimPrefix(h, bearerPrefix)
	} else if c, err := r.Cookie(SessionCookie); err == nil && c.Value != "" {
		raw = c.Value
	}
	if raw == "" {
		return Credential{}, false
	}
	cred, err := DecodeCredential(raw)
	if err != nil {
		return Credential{}, false
	}
	return cred, true
}
