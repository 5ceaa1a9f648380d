// Package user implements the User Entity Store: one stateful unit per user,
// owning the session slot, the bookmark set and the submission history.
// Operations run one at a time on the unit's worker, which is what makes the
// session token a single-owner value: login rotates the slot atomically and
// no second token can ever be live at the same time.
package user

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/MrSnakeDoc/guide/internal/domain"
	"github.com/MrSnakeDoc/guide/internal/unit"
)

// DefaultSessionTTL applies when no TTL is configured.
const DefaultSessionTTL = 7 * 24 * time.Hour

// Persistence is what a user unit needs from durable storage.
type Persistence interface {
	SaveUser(ctx context.Context, user *domain.User) error
	// GetUser returns (nil, nil) when the user has never been created.
	GetUser(ctx context.Context, id string) (*domain.User, error)
}

// Store is one user's stateful unit.
type Store struct {
	userID     string
	runner     *unit.Unit
	persist    Persistence
	sessionTTL time.Duration

	// user is nil until the first successful login.
	user *domain.User

	now      func() time.Time
	newToken func() string
}

// New loads the user's record (if any) and starts the unit's worker.
func New(ctx context.Context, userID string, sessionTTL time.Duration, persist Persistence) (*Store, error) {
	existing, err := persist.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if sessionTTL <= 0 {
		sessionTTL = DefaultSessionTTL
	}
	return &Store{
		userID:     userID,
		runner:     unit.New(userID, 0),
		persist:    persist,
		sessionTTL: sessionTTL,
		user:       existing,
		now:        time.Now,
		newToken:   uuid.NewString,
	}, nil
}

func (s *Store) UserID() string { return s.userID }

// Idle reports whether the unit qualifies for eviction.
func (s *Store) Idle(ttl time.Duration) bool { return s.runner.Idle(ttl) }

// Stop shuts the worker down. Durable state survives in storage.
func (s *Store) Stop() { s.runner.Stop() }

// Login validates the assertion, creates the user record on first login, and
// rotates the session slot. Whatever token existed before is dead afterwards.
func (s *Store) Login(ctx context.Context, assertion *domain.Assertion) (*domain.Session, error) {
	if err := domain.ValidateAssertion(assertion); err != nil {
		return nil, err
	}
	if assertion.UserID() != s.userID {
		return nil, domain.Validationf("assertion identity %s does not match store %s", assertion.UserID(), s.userID)
	}

	var out *domain.Session
	err := s.runner.Do(ctx, func() error {
		now := s.now().UTC()

		next := s.user.Clone()
		if next == nil {
			next = &domain.User{
				ID:        s.userID,
				CreatedAt: now,
			}
		}
		next.Name = assertion.Name
		next.Session = &domain.Session{
			Token:     s.newToken(),
			IssuedAt:  now,
			ExpiresAt: now.Add(s.sessionTTL),
		}
		next.UpdatedAt = now

		if err := s.persist.SaveUser(ctx, next); err != nil {
			return err
		}
		s.user = next
		sess := *next.Session
		out = &sess
		return nil
	})
	return out, err
}

// ValidateSession returns the identity behind a token, or ErrUnauthenticated
// when the token is unknown, rotated away, or expired.
func (s *Store) ValidateSession(ctx context.Context, token string) (*domain.Identity, error) {
	var out *domain.Identity
	err := s.runner.Do(ctx, func() error {
		if token == "" || s.user == nil {
			return domain.ErrUnauthenticated
		}
		sess := s.user.Session
		if !sess.Live(s.now().UTC()) || sess.Token != token {
			return domain.ErrUnauthenticated
		}
		out = &domain.Identity{UserID: s.user.ID, Name: s.user.Name}
		return nil
	})
	return out, err
}

// Logout invalidates the token if it is the live one. Idempotent: an already
// dead token is not an error.
func (s *Store) Logout(ctx context.Context, token string) error {
	return s.runner.Do(ctx, func() error {
		if s.user == nil || s.user.Session == nil || s.user.Session.Token != token {
			return nil
		}

		next := s.user.Clone()
		next.Session = nil
		next.UpdatedAt = s.now().UTC()

		if err := s.persist.SaveUser(ctx, next); err != nil {
			return err
		}
		s.user = next
		return nil
	})
}

// Bookmark adds a resource to the bookmark set. Returns whether the set
// actually changed, so the caller knows whether to bump the resource counter.
func (s *Store) Bookmark(ctx context.Context, resourceID string) (bool, error) {
	var changed bool
	err := s.runner.Do(ctx, func() error {
		if s.user == nil {
			return domain.ErrUnauthenticated
		}
		if s.user.HasBookmark(resourceID) {
			return nil
		}

		next := s.user.Clone()
		next.Bookmarks = append(next.Bookmarks, resourceID)
		next.UpdatedAt = s.now().UTC()

		if err := s.persist.SaveUser(ctx, next); err != nil {
			return err
		}
		s.user = next
		changed = true
		return nil
	})
	return changed, err
}

// Unbookmark removes a resource from the bookmark set. Idempotent.
func (s *Store) Unbookmark(ctx context.Context, resourceID string) (bool, error) {
	var changed bool
	err := s.runner.Do(ctx, func() error {
		if s.user == nil {
			return domain.ErrUnauthenticated
		}
		if !s.user.HasBookmark(resourceID) {
			return nil
		}

		next := s.user.Clone()
		kept := next.Bookmarks[:0]
		for _, id := range next.Bookmarks {
			if id != resourceID {
				kept = append(kept, id)
			}
		}
		next.Bookmarks = kept
		next.UpdatedAt = s.now().UTC()

		if err := s.persist.SaveUser(ctx, next); err != nil {
			return err
		}
		s.user = next
		changed = true
		return nil
	})
	return changed, err
}

// RecordSubmission appends a resource ID to the submission history.
func (s *Store) RecordSubmission(ctx context.Context, resourceID string) error {
	return s.runner.Do(ctx, func() error {
		if s.user == nil {
			return domain.ErrUnauthenticated
		}

		next := s.user.Clone()
		next.Submissions = append(next.Submissions, resourceID)
		next.UpdatedAt = s.now().UTC()

		if err := s.persist.SaveUser(ctx, next); err != nil {
			return err
		}
		s.user = next
		return nil
	})
}

// Profile returns a copy of the user record, or ErrNotFound before first login.
func (s *Store) Profile(ctx context.Context) (*domain.User, error) {
	var out *domain.User
	err := s.runner.Do(ctx, func() error {
		if s.user == nil {
			return domain.ErrNotFound
		}
		out = s.user.Clone()
		return nil
	})
	return out, err
}
