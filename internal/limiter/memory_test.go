package limiter_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"notes/backend/internal/limiter"
)

func TestMemoryLimiter_DeniesAfterCapacity(t *testing.T) {
	clock := newFakeClock()
	l := limiter.NewMemoryLimiter(limiter.Config{Capacity: 2, Window: time.Minute}, clock.Now)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		d, err := l.Check(ctx, "k")
		require.NoError(t, err)
		require.True(t, d.Allowed)
		require.Equal(t, 1-i, d.Remaining)
	}

	d, err := l.Check(ctx, "k")
	require.NoError(t, err)
	require.False(t, d.Allowed)
	require.Equal(t, 2, d.Limit)
}

func TestMemoryLimiter_WindowExpiry(t *testing.T) {
	clock := newFakeClock()
	l := limiter.NewMemoryLimiter(limiter.Config{Capacity: 1, Window: time.Minute}, clock.Now)
	ctx := context.Background()

	first := clock.Now()
	d, err := l.Check(ctx, "k")
	require.NoError(t, err)
	require.True(t, d.Allowed)
	require.True(t, d.ResetAt.Equal(first.Add(time.Minute)))

	clock.Advance(time.Minute)
	d, err = l.Check(ctx, "k")
	require.NoError(t, err)
	require.False(t, d.Allowed)

	clock.Advance(time.Millisecond)
	d, err = l.Check(ctx, "k")
	require.NoError(t, err)
	require.True(t, d.Allowed)
}

func TestMemoryLimiter_DistinctKeys(t *testing.T) {
	clock := newFakeClock()
	l := limiter.NewMemoryLimiter(limiter.Config{Capacity: 1, Window: time.Minute}, clock.Now)
	ctx := context.Background()

	d, err := l.Check(ctx, "a")
	require.NoError(t, err)
	require.True(t, d.Allowed)

	d, err = l.Check(ctx, "b")
	require.NoError(t, err)
	require.True(t, d.Allowed)
}

func TestMemoryLimiter_ZeroCapacity(t *testing.T) {
	l := limiter.NewMemoryLimiter(limiter.Config{Capacity: 0}, nil)

	d, err := l.Check(context.Background(), "k")
	require.NoError(t, err)
	require.False(t, d.Allowed)
	require.Equal(t, 0, l.Len())
}

func TestMemoryLimiter_CanceledContext(t *testing.T) {
	l := limiter.NewMemoryLimiter(limiter.Config{Capacity: 5}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := l.Check(ctx, "k")
	require.ErrorIs(t, err, limiter.ErrUnavailable)
	require.ErrorIs(t, err, context.Canceled)
}

func TestMemoryLimiter_ClockStepBackKeepsOldestFirst(t *testing.T) {
	clock := newFakeClock()
	l := limiter.NewMemoryLimiter(limiter.Config{Capacity: 3, Window: time.Minute}, clock.Now)
	ctx := context.Background()
	base := clock.Now()

	clock.Advance(10 * time.Second)
	_, err := l.Check(ctx, "k")
	require.NoError(t, err)

	clock.Advance(-10 * time.Second)
	d, err := l.Check(ctx, "k")
	require.NoError(t, err)
	require.True(t, d.Allowed)
	require.True(t, d.ResetAt.Equal(base.Add(time.Minute)))

	// Only the admission at base has aged out.
	clock.Advance(time.Minute + time.Millisecond)
	d, err = l.Check(ctx, "k")
	require.NoError(t, err)
	require.True(t, d.Allowed)
	require.Equal(t, 1, d.Remaining)
	require.True(t, d.ResetAt.Equal(base.Add(10*time.Second+time.Minute)))
}

func TestMemoryLimiter_Cleanup(t *testing.T) {
	clock := newFakeClock()
	l := limiter.NewMemoryLimiter(limiter.Config{Capacity: 5, Window: time.Minute}, clock.Now)
	ctx := context.Background()

	_, err := l.Check(ctx, "old")
	require.NoError(t, err)
	clock.Advance(45 * time.Second)
	_, err = l.Check(ctx, "fresh")
	require.NoError(t, err)
	clock.Advance(30 * time.Second)

	removed, err := l.Cleanup(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, removed)
	require.Equal(t, 1, l.Len())
}

func TestMemoryLimiter_Concurrent(t *testing.T) {
	l := limiter.NewMemoryLimiter(limiter.Config{Capacity: 25, Window: time.Minute}, nil)

	var allowed atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d, err := l.Check(context.Background(), "shared")
			if err == nil && d.Allowed {
				allowed.Add(1)
			}
		}()
	}
	wg.Wait()

	require.Equal(t, int32(25), allowed.Load())
}
