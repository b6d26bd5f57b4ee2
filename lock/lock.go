package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/gofrs/flock"
)

const retryDelay = 100 * time.Millisecond

// Locker provides mutual exclusion with context support.
type Locker interface {
	Lock(ctx context.Context) error
	Unlock(ctx context.Context) error
}

// WithLock runs fn while holding l.
func WithLock(ctx context.Context, l Locker, fn func() error) error {
	if err := l.Lock(ctx); err != nil {
		return err
	}
	defer l.Unlock(ctx) //nolint:errcheck
	return fn()
}

var _ Locker = (*FileLock)(nil)

// FileLock guards the state file against a second installer invocation on
// the same host. In-process exclusion uses a size-1 buffered channel so
// Lock can block with context awareness; cross-process exclusion uses
// flock(2) with a fresh fd per acquisition.
type FileLock struct {
	path string
	ch   chan struct{}
	// fl is the active flock fd, non-nil while the lock is held.
	fl *flock.Flock
}

// NewFile creates a FileLock for the given path.
func NewFile(path string) *FileLock {
	return &FileLock{path: path, ch: make(chan struct{}, 1)}
}

// Lock acquires the lock, blocking until available or ctx is cancelled.
func (l *FileLock) Lock(ctx context.Context) error {
	select {
	case l.ch <- struct{}{}:
	case <-ctx.Done():
		return fmt.Errorf("acquire lock %s: %w", l.path, ctx.Err())
	}

	fl := flock.New(l.path)
	ok, err := fl.TryLockContext(ctx, retryDelay)
	if err != nil {
		<-l.ch
		return fmt.Errorf("acquire flock %s: %w", l.path, err)
	}
	if !ok {
		<-l.ch
		return fmt.Errorf("acquire flock %s: %w", l.path, ctx.Err())
	}
	l.fl = fl
	return nil
}

// Unlock releases the lock.
func (l *FileLock) Unlock(_ context.Context) error {
	var err error
	if l.fl != nil {
		err = l.fl.Unlock()
		l.fl = nil
	}
	select {
	case <-l.ch:
	default:
	}
	if err != nil {
		return fmt.Errorf("release flock %s: %w", l.path, err)
	}
	return nil
}
