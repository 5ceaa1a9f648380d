// Package unit implements the execution model of a stateful unit: a mailbox
// drained by one dedicated goroutine, so operations against the same key run
// one at a time in arrival order. This is the concurrency backbone that makes
// counter adjustments and session rotation safe without per-field locking.
package unit

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrStopped is returned for operations submitted to (or still queued on)
// a unit that has been stopped.
var ErrStopped = errors.New("unit stopped")

// DefaultMailboxSize bounds how many operations may queue per unit before
// callers block on enqueue.
const DefaultMailboxSize = 64

type task struct {
	fn   func() error
	done chan error
}

// Unit owns one mailbox and one worker goroutine.
type Unit struct {
	key     string
	mailbox chan task
	quit    chan struct{}
	exited  chan struct{}

	mu       sync.Mutex
	closed   bool
	lastBusy time.Time
}

// New starts a unit for the given key. A size of 0 uses DefaultMailboxSize.
func New(key string, size int) *Unit {
	if size <= 0 {
		size = DefaultMailboxSize
	}
	u := &Unit{
		key:      key,
		mailbox:  make(chan task, size),
		quit:     make(chan struct{}),
		exited:   make(chan struct{}),
		lastBusy: time.Now(),
	}
	go u.loop()
	return u
}

func (u *Unit) Key() string { return u.key }

func (u *Unit) loop() {
	defer close(u.exited)
	for {
		select {
		case t := <-u.mailbox:
			u.touch()
			t.done <- t.fn()
		case <-u.quit:
			// Reject everything still queued; the waiters are selecting
			// on quit as well, this just keeps the channels clean.
			for {
				select {
				case t := <-u.mailbox:
					t.done <- ErrStopped
				default:
					return
				}
			}
		}
	}
}

func (u *Unit) touch() {
	u.mu.Lock()
	u.lastBusy = time.Now()
	u.mu.Unlock()
}

// Do runs fn on the unit's worker goroutine and returns its error.
// Enqueueing and waiting both respect ctx; a cancelled caller stops waiting
// but an already-dequeued fn still runs to completion, so a unit is never
// left with a half-applied operation.
func (u *Unit) Do(ctx context.Context, fn func() error) error {
	t := task{fn: fn, done: make(chan error, 1)}

	select {
	case u.mailbox <- t:
	case <-u.quit:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-t.done:
		return err
	case <-u.quit:
		// Drained replies beat the quit signal if both are ready.
		select {
		case err := <-t.done:
			return err
		default:
			return ErrStopped
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Idle reports whether the unit has no queued work and has been untouched
// for at least ttl. Used by the eviction sweep.
func (u *Unit) Idle(ttl time.Duration) bool {
	u.mu.Lock()
	last := u.lastBusy
	u.mu.Unlock()
	return len(u.mailbox) == 0 && time.Since(last) >= ttl
}

// Stop shuts the worker down and waits for it to exit. Idempotent.
func (u *Unit) Stop() {
	u.mu.Lock()
	if !u.closed {
		u.closed = true
		close(u.quit)
	}
	u.mu.Unlock()
	<-u.exited
}
