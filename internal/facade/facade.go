// Package facade is the single call surface request handlers use. It routes
// each operation to the owning stateful unit, fans reads out across shards,
// and merges partial results. The façade holds no state of its own beyond
// wiring: everything authoritative lives in the units, everything durable in
// storage.
package facade

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MrSnakeDoc/guide/internal/cluster"
	"github.com/MrSnakeDoc/guide/internal/domain"
	"github.com/MrSnakeDoc/guide/internal/logger"
	"github.com/MrSnakeDoc/guide/internal/store/resource"
	"github.com/MrSnakeDoc/guide/internal/store/user"
	"github.com/MrSnakeDoc/guide/internal/unit"
)

// DefaultFanoutTimeout bounds each per-shard call of a fan-out read.
const DefaultFanoutTimeout = 2 * time.Second

// IdempotencyStore records submit idempotency tokens.
type IdempotencyStore interface {
	GetIdempotency(ctx context.Context, token string) (string, error)
	PutIdempotency(ctx context.Context, token, resourceID string, ttl time.Duration) error
}

// Facade routes operations to stateful units.
type Facade struct {
	locator       *cluster.Locator
	idem          IdempotencyStore
	log           logger.Logger
	fanoutTimeout time.Duration
}

// New wires the façade.
func New(locator *cluster.Locator, idem IdempotencyStore, log logger.Logger, fanoutTimeout time.Duration) *Facade {
	if fanoutTimeout <= 0 {
		fanoutTimeout = DefaultFanoutTimeout
	}
	return &Facade{
		locator:       locator,
		idem:          idem,
		log:           log,
		fanoutTimeout: fanoutTimeout,
	}
}

// withShard runs fn against the owning shard of a resource. A unit evicted
// between lookup and call answers ErrStopped; one reroute through the
// locator covers that window.
func (f *Facade) withShard(ctx context.Context, shardKey string, fn func(s *resource.Store) error) error {
	for attempt := 0; attempt < 2; attempt++ {
		s, err := f.locator.ResourceShard(ctx, shardKey)
		if err != nil {
			return err
		}
		err = fn(s)
		if errors.Is(err, unit.ErrStopped) {
			continue
		}
		return err
	}
	return fmt.Errorf("shard %s: %w", shardKey, domain.ErrUnavailable)
}

// withUser runs fn against a user's own store, with the same one-reroute
// eviction window handling as withShard.
func (f *Facade) withUser(ctx context.Context, userID string, fn func(us *user.Store) error) error {
	for attempt := 0; attempt < 2; attempt++ {
		us, err := f.locator.UserStore(ctx, userID)
		if err != nil {
			return err
		}
		err = fn(us)
		if errors.Is(err, unit.ErrStopped) {
			continue
		}
		return err
	}
	return fmt.Errorf("user %s: %w", userID, domain.ErrUnavailable)
}

// GetResource routes a get to the owning shard.
func (f *Facade) GetResource(ctx context.Context, id string) (*domain.Resource, error) {
	var out *domain.Resource
	err := f.withShard(ctx, f.locator.ShardForResource(id), func(s *resource.Store) error {
		res, err := s.Get(ctx, id)
		if err != nil {
			return err
		}
		out = res
		return nil
	})
	return out, err
}

// Submit validates and stores a new resource, records the submission on the
// submitter's user store, and honors a caller-supplied idempotency token.
// The façade never retries a submit on its own; the token is what makes a
// caller retry safe.
func (f *Facade) Submit(ctx context.Context, draft *domain.Draft, submitterID, idemToken string) (*domain.Resource, error) {
	if idemToken != "" {
		replayID, err := f.idem.GetIdempotency(ctx, idemToken)
		if err != nil {
			f.log.Warn("idempotency lookup failed, continuing without replay", logger.Error(err))
		}
		if replayID != "" {
			return f.GetResource(ctx, replayID)
		}
	}

	id, shardKey := f.locator.NewResourceID()

	// Register before storing: an empty shard in the registry is harmless,
	// a stored resource missing from fan-out is not.
	if err := f.locator.RegisterShard(ctx, shardKey); err != nil {
		return nil, fmt.Errorf("failed to register shard: %w", err)
	}

	var out *domain.Resource
	err := f.withShard(ctx, shardKey, func(s *resource.Store) error {
		res, err := s.Submit(ctx, id, draft, submitterID)
		if err != nil {
			return err
		}
		out = res
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := f.withUser(ctx, submitterID, func(us *user.Store) error {
		return us.RecordSubmission(ctx, out.ID)
	}); err != nil {
		f.log.Warn("submission history not recorded",
			logger.String("user", submitterID),
			logger.Error(err))
	}

	if idemToken != "" {
		if err := f.idem.PutIdempotency(ctx, idemToken, out.ID, 0); err != nil {
			f.log.Warn("idempotency token not recorded", logger.Error(err))
		}
	}
	return out, nil
}

// UpdateTags routes a tag patch to the owning shard.
func (f *Facade) UpdateTags(ctx context.Context, id string, patch resource.TagPatch) (*domain.Resource, error) {
	var out *domain.Resource
	err := f.withShard(ctx, f.locator.ShardForResource(id), func(s *resource.Store) error {
		res, err := s.UpdateTags(ctx, id, patch)
		if err != nil {
			return err
		}
		out = res
		return nil
	})
	return out, err
}

// AdjustVote routes a vote delta to the owning shard.
func (f *Facade) AdjustVote(ctx context.Context, id string, delta int64) (*domain.Resource, error) {
	var out *domain.Resource
	err := f.withShard(ctx, f.locator.ShardForResource(id), func(s *resource.Store) error {
		res, err := s.AdjustVote(ctx, id, delta)
		if err != nil {
			return err
		}
		out = res
		return nil
	})
	return out, err
}

// Remove soft-deletes a resource. Only the submitter may remove it.
func (f *Facade) Remove(ctx context.Context, id, requesterID string) error {
	return f.withShard(ctx, f.locator.ShardForResource(id), func(s *resource.Store) error {
		res, err := s.Get(ctx, id)
		if err != nil {
			return err
		}
		if res.SubmitterID != requesterID {
			return fmt.Errorf("resource %s is not owned by %s: %w", id, requesterID, domain.ErrUnauthenticated)
		}
		return s.Remove(ctx, id)
	})
}

// Bookmark records the bookmark on the user store and, only when the set
// actually changed, bumps the resource's bookmark counter. Repeats are
// no-ops end to end, which is what makes the operation retry safe.
func (f *Facade) Bookmark(ctx context.Context, userID, resourceID string) (*domain.Resource, error) {
	return f.setBookmark(ctx, userID, resourceID, true)
}

// Unbookmark is the reverse of Bookmark, equally idempotent.
func (f *Facade) Unbookmark(ctx context.Context, userID, resourceID string) (*domain.Resource, error) {
	return f.setBookmark(ctx, userID, resourceID, false)
}

// setBookmark returns the resource's current record, or (nil, nil) when an
// unbookmark succeeded but the record itself no longer exists. The handler
// turns that nil into a bodiless response.
func (f *Facade) setBookmark(ctx context.Context, userID, resourceID string, add bool) (*domain.Resource, error) {
	// The resource must exist when bookmarking; removal later is tolerated,
	// so an unbookmark of a vanished record still clears the user's set.
	res, err := f.GetResource(ctx, resourceID)
	if err != nil {
		if add || !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
	}

	var changed bool
	if err := f.withUser(ctx, userID, func(us *user.Store) error {
		var uerr error
		if add {
			changed, uerr = us.Bookmark(ctx, resourceID)
		} else {
			changed, uerr = us.Unbookmark(ctx, resourceID)
		}
		return uerr
	}); err != nil {
		return nil, err
	}
	if !changed {
		return res, nil
	}

	delta := int64(1)
	if !add {
		delta = -1
	}
	updated, err := f.adjustBookmarkCounter(ctx, resourceID, delta)
	if err != nil {
		// The user-side write already committed; the counter catches up on
		// the next successful adjustment. Dangling references are tolerated.
		if errors.Is(err, domain.ErrNotFound) {
			return res, nil
		}
		return nil, err
	}
	return updated, nil
}

func (f *Facade) adjustBookmarkCounter(ctx context.Context, id string, delta int64) (*domain.Resource, error) {
	var out *domain.Resource
	err := f.withShard(ctx, f.locator.ShardForResource(id), func(s *resource.Store) error {
		res, err := s.AdjustBookmarkCount(ctx, id, delta)
		if err != nil {
			return err
		}
		out = res
		return nil
	})
	return out, err
}

// Login routes the assertion to the user's own store and returns the freshly
// rotated session.
func (f *Facade) Login(ctx context.Context, a *domain.Assertion) (*domain.Session, *domain.Identity, error) {
	if err := domain.ValidateAssertion(a); err != nil {
		return nil, nil, err
	}
	var sess *domain.Session
	err := f.withUser(ctx, a.UserID(), func(us *user.Store) error {
		s, err := us.Login(ctx, a)
		if err != nil {
			return err
		}
		sess = s
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return sess, &domain.Identity{UserID: a.UserID(), Name: a.Name}, nil
}

// Logout invalidates a session token on the user's store. Idempotent.
func (f *Facade) Logout(ctx context.Context, userID, token string) error {
	return f.withUser(ctx, userID, func(us *user.Store) error {
		return us.Logout(ctx, token)
	})
}

// CheckSession verifies a session token against the user's store and returns
// the caller's identity.
func (f *Facade) CheckSession(ctx context.Context, userID, token string) (*domain.Identity, error) {
	var out *domain.Identity
	err := f.withUser(ctx, userID, func(us *user.Store) error {
		id, err := us.ValidateSession(ctx, token)
		if err != nil {
			return err
		}
		out = id
		return nil
	})
	return out, err
}

// Profile returns a user's own record.
func (f *Facade) Profile(ctx context.Context, userID string) (*domain.User, error) {
	var out *domain.User
	err := f.withUser(ctx, userID, func(us *user.Store) error {
		u, err := us.Profile(ctx)
		if err != nil {
			return err
		}
		out = u
		return nil
	})
	return out, err
}
