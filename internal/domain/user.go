package domain

import "time"

// Assertion is the identity-provider payload presented at login.
// The transport that carries it (OAuth callback, API call) is not our concern;
// by the time it reaches the user store it has already been verified upstream.
type Assertion struct {
	Provider string `json:"provider" validate:"required"`
	Subject  string `json:"subject" validate:"required"`
	Name     string `json:"name" validate:"required,max=128"`
}

// UserID derives the stable user identity from the assertion.
// The same external identity always maps to the same user store instance.
func (a Assertion) UserID() string {
	return a.Provider + ":" + a.Subject
}

// Session is the single session slot of a user.
//
// There is at most one live token per user: login rotates the slot and the
// previous token dies with it, logout clears it. Validity is decided by
// comparing against this stored value, never by inspecting the token itself.
type Session struct {
	Token     string    `json:"token"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Live reports whether the session is usable at the given instant.
func (s *Session) Live(now time.Time) bool {
	return s != nil && s.Token != "" && now.Before(s.ExpiresAt)
}

// User is the authoritative record of one authenticated principal,
// owned by exactly one user store instance.
type User struct {
	// ID is the canonical identity, derived from the external provider
	// (see Assertion.UserID). Immutable.
	ID string `json:"id"`

	Name string `json:"name"`

	// Session is the current session slot, nil when logged out.
	Session *Session `json:"session,omitempty"`

	// Bookmarks holds resource IDs in insertion order. Entries may dangle:
	// the resource can be removed later and the reference is tolerated.
	Bookmarks []string `json:"bookmarks,omitempty"`

	// Submissions is the append-only history of submitted resource IDs.
	Submissions []string `json:"submissions,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Clone returns a deep copy so callers can never mutate store-owned state.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	dup := *u
	if u.Session != nil {
		sess := *u.Session
		dup.Session = &sess
	}
	dup.Bookmarks = append([]string(nil), u.Bookmarks...)
	dup.Submissions = append([]string(nil), u.Submissions...)
	return &dup
}

// HasBookmark reports whether the resource is already bookmarked.
func (u *User) HasBookmark(resourceID string) bool {
	for _, id := range u.Bookmarks {
		if id == resourceID {
			return true
		}
	}
	return false
}

// Identity is the authenticated principal exposed to request handlers.
// A nil *Identity means anonymous, which is an expected outcome, not an error.
type Identity struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
}
