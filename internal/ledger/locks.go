package ledger

import (
	"context"
	"sync"
	"time"
)

// accountLock is a capacity-1 semaphore. Unlike sync.Mutex it supports
// acquisition bounded by a timeout or context cancellation, which the
// per-account critical sections need so a stuck caller fails with
// ErrLockTimeout instead of blocking forever.
type accountLock struct {
	ch chan struct{}
}

func newAccountLock() *accountLock {
	return &accountLock{ch: make(chan struct{}, 1)}
}

// acquire blocks until the lock is held, ctx is done, or wait elapses.
// A wait of zero means no timeout.
func (l *accountLock) acquire(ctx context.Context, wait time.Duration) error {
	if wait <= 0 {
		select {
		case l.ch <- struct{}{}:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case l.ch <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return ErrLockTimeout
	}
}

func (l *accountLock) release() {
	<-l.ch
}

// lockRegistry hands out one accountLock per user id, created lazily.
// Mutations on the same account contend on the same lock; unrelated
// accounts never block each other.
type lockRegistry struct {
	mu    sync.Mutex // protects locks map itself
	locks map[int64]*accountLock
}

func newLockRegistry() *lockRegistry {
	return &lockRegistry{locks: make(map[int64]*accountLock)}
}

func (r *lockRegistry) get(userID int64) *accountLock {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, exists := r.locks[userID]
	if !exists {
		l = newAccountLock()
		r.locks[userID] = l
	}
	return l
}
