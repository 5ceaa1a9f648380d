package user

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/MrSnakeDoc/guide/internal/domain"
)

type fakePersist struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

func newFakePersist() *fakePersist {
	return &fakePersist{users: make(map[string]*domain.User)}
}

func (f *fakePersist) SaveUser(_ context.Context, u *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[u.ID] = u.Clone()
	return nil
}

func (f *fakePersist) GetUser(_ context.Context, id string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.users[id].Clone(), nil
}

func assertion() *domain.Assertion {
	return &domain.Assertion{Provider: "github", Subject: "1234", Name: "octocat"}
}

func newTestStore(t *testing.T) (*Store, *fakePersist) {
	t.Helper()
	persist := newFakePersist()
	s, err := New(context.Background(), assertion().UserID(), time.Hour, persist)
	if err != nil {
		t.Fatalf("New() = %v", err)
	}
	t.Cleanup(s.Stop)
	return s, persist
}

func TestLoginThenValidateSession(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	sess, err := s.Login(ctx, assertion())
	if err != nil {
		t.Fatalf("Login() = %v", err)
	}
	if sess.Token == "" {
		t.Fatal("Login() should issue a token")
	}

	id, err := s.ValidateSession(ctx, sess.Token)
	if err != nil {
		t.Fatalf("ValidateSession() = %v", err)
	}
	if id.UserID != "github:1234" || id.Name != "octocat" {
		t.Errorf("identity = %+v, want the logged-in user", id)
	}
}

func TestLoginRotatesToken(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	first, err := s.Login(ctx, assertion())
	if err != nil {
		t.Fatalf("Login() = %v", err)
	}
	second, err := s.Login(ctx, assertion())
	if err != nil {
		t.Fatalf("Login() = %v", err)
	}
	if first.Token == second.Token {
		t.Fatal("Login() must rotate the token")
	}

	if _, err := s.ValidateSession(ctx, first.Token); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Errorf("old token = %v, want ErrUnauthenticated", err)
	}
	if _, err := s.ValidateSession(ctx, second.Token); err != nil {
		t.Errorf("new token = %v, want valid", err)
	}
}

func TestValidateSessionExpiry(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	sess, err := s.Login(ctx, assertion())
	if err != nil {
		t.Fatalf("Login() = %v", err)
	}

	s.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if _, err := s.ValidateSession(ctx, sess.Token); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Errorf("expired token = %v, want ErrUnauthenticated", err)
	}
}

func TestLogoutIsIdempotent(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	sess, err := s.Login(ctx, assertion())
	if err != nil {
		t.Fatalf("Login() = %v", err)
	}

	if err := s.Logout(ctx, sess.Token); err != nil {
		t.Fatalf("Logout() = %v", err)
	}
	if _, err := s.ValidateSession(ctx, sess.Token); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Errorf("ValidateSession() after logout = %v, want ErrUnauthenticated", err)
	}
	if err := s.Logout(ctx, sess.Token); err != nil {
		t.Errorf("second Logout() = %v, want nil", err)
	}
	if err := s.Logout(ctx, "never-issued"); err != nil {
		t.Errorf("Logout(unknown) = %v, want nil", err)
	}
}

func TestLoginRejectsForeignAssertion(t *testing.T) {
	s, _ := newTestStore(t)
	other := &domain.Assertion{Provider: "github", Subject: "9999", Name: "intruder"}
	if _, err := s.Login(context.Background(), other); !domain.IsValidation(err) {
		t.Errorf("Login() with foreign assertion = %v, want ValidationError", err)
	}
}

func TestBookmarkIsIdempotent(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	if _, err := s.Login(ctx, assertion()); err != nil {
		t.Fatalf("Login() = %v", err)
	}

	changed, err := s.Bookmark(ctx, "r1")
	if err != nil || !changed {
		t.Fatalf("Bookmark() = (%v, %v), want (true, nil)", changed, err)
	}
	changed, err = s.Bookmark(ctx, "r1")
	if err != nil || changed {
		t.Fatalf("second Bookmark() = (%v, %v), want (false, nil)", changed, err)
	}

	profile, err := s.Profile(ctx)
	if err != nil {
		t.Fatalf("Profile() = %v", err)
	}
	if len(profile.Bookmarks) != 1 {
		t.Errorf("Bookmarks = %v, want exactly one entry", profile.Bookmarks)
	}
}

func TestUnbookmarkIsIdempotent(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	if _, err := s.Login(ctx, assertion()); err != nil {
		t.Fatalf("Login() = %v", err)
	}
	if _, err := s.Bookmark(ctx, "r1"); err != nil {
		t.Fatalf("Bookmark() = %v", err)
	}

	changed, err := s.Unbookmark(ctx, "r1")
	if err != nil || !changed {
		t.Fatalf("Unbookmark() = (%v, %v), want (true, nil)", changed, err)
	}
	changed, err = s.Unbookmark(ctx, "r1")
	if err != nil || changed {
		t.Fatalf("second Unbookmark() = (%v, %v), want (false, nil)", changed, err)
	}
}

func TestRecordSubmission(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	if _, err := s.Login(ctx, assertion()); err != nil {
		t.Fatalf("Login() = %v", err)
	}

	if err := s.RecordSubmission(ctx, "r1"); err != nil {
		t.Fatalf("RecordSubmission() = %v", err)
	}
	if err := s.RecordSubmission(ctx, "r2"); err != nil {
		t.Fatalf("RecordSubmission() = %v", err)
	}

	profile, err := s.Profile(ctx)
	if err != nil {
		t.Fatalf("Profile() = %v", err)
	}
	if len(profile.Submissions) != 2 || profile.Submissions[0] != "r1" {
		t.Errorf("Submissions = %v, want [r1 r2] in order", profile.Submissions)
	}
}

func TestStateSurvivesRebuild(t *testing.T) {
	persist := newFakePersist()
	ctx := context.Background()

	s1, err := New(ctx, assertion().UserID(), time.Hour, persist)
	if err != nil {
		t.Fatalf("New() = %v", err)
	}
	sess, err := s1.Login(ctx, assertion())
	if err != nil {
		t.Fatalf("Login() = %v", err)
	}
	if _, err := s1.Bookmark(ctx, "r1"); err != nil {
		t.Fatalf("Bookmark() = %v", err)
	}
	s1.Stop()

	s2, err := New(ctx, assertion().UserID(), time.Hour, persist)
	if err != nil {
		t.Fatalf("New() after stop = %v", err)
	}
	defer s2.Stop()

	if _, err := s2.ValidateSession(ctx, sess.Token); err != nil {
		t.Errorf("ValidateSession() after rebuild = %v, session must survive", err)
	}
	profile, err := s2.Profile(ctx)
	if err != nil {
		t.Fatalf("Profile() = %v", err)
	}
	if !profile.HasBookmark("r1") {
		t.Error("bookmark must survive rebuild")
	}
}
