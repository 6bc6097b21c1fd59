package ratelimit_test

import (
	"context"
	"testing"
	"time"

	"github.com/brollyweather/brolly/internal/ratelimit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock is a manually advanced clock whose sleeps are recorded instead of
// actually waiting.
type fakeClock struct {
	now    time.Time
	sleeps []time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Unix(1700000000, 0)}
}

func (f *fakeClock) Now() time.Time {
	return f.now
}

func (f *fakeClock) Sleep(_ context.Context, d time.Duration) error {
	f.sleeps = append(f.sleeps, d)
	f.now = f.now.Add(d)
	return nil
}

func (f *fakeClock) Advance(d time.Duration) {
	f.now = f.now.Add(d)
}

func TestLimiter_Wait(t *testing.T) {
	ctx := context.Background()

	t.Run("first call never waits", func(t *testing.T) {
		clock := newFakeClock()
		limiter := ratelimit.NewWithClock(time.Second, clock.Now, clock.Sleep)

		require.NoError(t, limiter.Wait(ctx))
		assert.Empty(t, clock.sleeps)
	})

	t.Run("second call 200ms later is delayed by 800ms", func(t *testing.T) {
		clock := newFakeClock()
		limiter := ratelimit.NewWithClock(time.Second, clock.Now, clock.Sleep)

		require.NoError(t, limiter.Wait(ctx))
		clock.Advance(200 * time.Millisecond)
		require.NoError(t, limiter.Wait(ctx))

		require.Len(t, clock.sleeps, 1)
		assert.Equal(t, 800*time.Millisecond, clock.sleeps[0])
	})

	t.Run("second call after the interval is not delayed", func(t *testing.T) {
		clock := newFakeClock()
		limiter := ratelimit.NewWithClock(time.Second, clock.Now, clock.Sleep)

		require.NoError(t, limiter.Wait(ctx))
		clock.Advance(1500 * time.Millisecond)
		require.NoError(t, limiter.Wait(ctx))

		assert.Empty(t, clock.sleeps)
	})

	t.Run("spacing is measured dispatch to dispatch", func(t *testing.T) {
		clock := newFakeClock()
		limiter := ratelimit.NewWithClock(time.Second, clock.Now, clock.Sleep)

		require.NoError(t, limiter.Wait(ctx))
		// A slow upstream response: 3s pass before the next dispatch, so no
		// extra spacing is added on top of the elapsed time.
		clock.Advance(3 * time.Second)
		require.NoError(t, limiter.Wait(ctx))
		clock.Advance(100 * time.Millisecond)
		require.NoError(t, limiter.Wait(ctx))

		require.Len(t, clock.sleeps, 1)
		assert.Equal(t, 900*time.Millisecond, clock.sleeps[0])
	})

	t.Run("cancelled context aborts the wait", func(t *testing.T) {
		limiter := ratelimit.New(time.Hour)

		cancelled, cancel := context.WithCancel(context.Background())
		require.NoError(t, limiter.Wait(cancelled))

		cancel()
		err := limiter.Wait(cancelled)
		require.Error(t, err)
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("non-positive interval falls back to the default", func(t *testing.T) {
		limiter := ratelimit.New(0)
		assert.Equal(t, ratelimit.DefaultInterval, limiter.Interval())
	})
}
