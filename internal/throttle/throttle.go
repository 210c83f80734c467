// Package throttle enforces a minimum wall-clock interval between upstream
// calls. The upstream provider rate-limits per API key across all endpoints,
// so a single Limiter is shared by every fetch path in the process.
package throttle

import (
	"context"
	"sync"
	"time"
)

// Limiter spaces out calls so that consecutive permitted calls start at
// least MinInterval apart.
type Limiter struct {
	mu       sync.Mutex
	interval time.Duration
	lastCall time.Time

	// now and sleep are swappable for tests.
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// New creates a Limiter with the given minimum interval.
func New(interval time.Duration) *Limiter {
	return &Limiter{
		interval: interval,
		now:      time.Now,
		sleep:    sleepCtx,
	}
}

// Acquire blocks until at least the configured interval has elapsed since
// the start of the previous permitted call, then records the new call slot.
// The slot is assigned under the lock before waiting, so concurrent callers
// can never share one: each caller reserves the next free slot and sleeps
// until it arrives. Returns ctx.Err() if the context is cancelled while
// waiting; a cancelled acquire does not consume its slot.
func (l *Limiter) Acquire(ctx context.Context) error {
	l.mu.Lock()
	now := l.now()
	slot := l.lastCall.Add(l.interval)
	if slot.Before(now) {
		slot = now
	}
	prev := l.lastCall
	l.lastCall = slot
	l.mu.Unlock()

	wait := slot.Sub(now)
	if wait <= 0 {
		return nil
	}
	if err := l.sleep(ctx, wait); err != nil {
		// Release the reserved slot if nobody claimed a later one.
		l.mu.Lock()
		if l.lastCall.Equal(slot) {
			l.lastCall = prev
		}
		l.mu.Unlock()
		return err
	}
	return nil
}

// Interval returns the configured minimum interval.
func (l *Limiter) Interval() time.Duration {
	return l.interval
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
