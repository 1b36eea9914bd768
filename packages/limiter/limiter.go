// Package limiter
package limiter

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// Limiter bounds the number of in-flight outbound requests. One instance
// is shared by both the listing enumerator and the detail harvester, so
// the cap holds across the whole run. It is constructed explicitly and
// passed to whoever needs it; tests get their own instance.
type Limiter struct {
	sem *semaphore.Weighted
	cap int
}

// New returns a limiter with the given capacity. Capacities below one are
// clamped to one.
func New(capacity int) *Limiter {
	if capacity < 1 {
		capacity = 1
	}
	return &Limiter{sem: semaphore.NewWeighted(int64(capacity)), cap: capacity}
}

// Cap reports the configured capacity.
func (l *Limiter) Cap() int { return l.cap }

// Acquire blocks until a permit is available or ctx is cancelled.
func (l *Limiter) Acquire(ctx context.Context) error {
	return l.sem.Acquire(ctx, 1)
}

// Release returns a permit to the pool.
func (l *Limiter) Release() {
	l.sem.Release(1)
}

// Do runs fn while holding a permit. The permit is released on every exit
// path, including a panic inside fn, so a failed fetch never permanently
// shrinks capacity.
func (l *Limiter) Do(ctx context.Context, fn func() error) error {
	if err := l.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer l.sem.Release(1)
	return fn()
}
