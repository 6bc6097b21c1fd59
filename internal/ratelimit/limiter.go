// Package ratelimit provides a fixed-interval dispatch limiter for outbound
// calls to shared upstream services. Unlike a token bucket, the limiter
// enforces a minimum wall-clock gap between successive dispatches, measured
// dispatch-to-dispatch: the timestamp is recorded before the caller proceeds,
// so slow upstream responses do not inflate the effective spacing.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// DefaultInterval is the minimum spacing between dispatches, matching the
// Nominatim fair-use limit of 1 request/second.
const DefaultInterval = time.Second

// Limiter enforces a minimum interval between successive Wait calls.
// A single shared Limiter instance enforces the spacing across all callers
// that route through it. Construct instances with New; the zero value is not
// usable.
type Limiter struct {
	mu       sync.Mutex
	interval time.Duration
	last     time.Time // last recorded dispatch time, zero before the first call

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// New creates a Limiter with the given minimum interval between dispatches.
// A non-positive interval falls back to DefaultInterval.
func New(interval time.Duration) *Limiter {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Limiter{
		interval: interval,
		now:      time.Now,
		sleep:    sleepContext,
	}
}

// NewWithClock creates a Limiter with an injected clock and sleep function,
// so tests can verify delays deterministically.
func NewWithClock(
	interval time.Duration,
	now func() time.Time,
	sleep func(ctx context.Context, d time.Duration) error,
) *Limiter {
	l := New(interval)
	l.now = now
	l.sleep = sleep
	return l
}

// Wait blocks until at least the configured interval has elapsed since the
// previous dispatch, then records the new dispatch timestamp and returns.
// The first call never waits. Wait never drops a request; it only delays.
//
// The mutex is held across the sleep so that concurrent callers are strictly
// serialized and each observes the spacing relative to the real previous
// dispatch. Returns the context error if the wait is cancelled, in which case
// no dispatch timestamp is recorded.
func (l *Limiter) Wait(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.last.IsZero() {
		elapsed := l.now().Sub(l.last)
		if elapsed < l.interval {
			if err := l.sleep(ctx, l.interval-elapsed); err != nil {
				return err
			}
		}
	}

	// Recorded before the caller dispatches, not after the response arrives.
	l.last = l.now()
	return nil
}

// Interval returns the configured minimum spacing between dispatches.
func (l *Limiter) Interval() time.Duration {
	return l.interval
}

// sleepContext sleeps for d or until the context is cancelled.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
