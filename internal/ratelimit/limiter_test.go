package ratelimit

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	return f.now
}

func (f *fakeClock) advance(d time.Duration) {
	f.now = f.now.Add(d)
}

func testTiers() map[Tier]TierConfig {
	return map[Tier]TierConfig{
		TierDefault: {Window: 60000 * time.Millisecond, MaxRequests: 10},
		TierAPI:     {Window: time.Minute, MaxRequests: 3},
	}
}

func TestWindow_EleventhRequestRejected(t *testing.T) {
	t.Parallel()

	clk := &fakeClock{now: time.Unix(1000, 0)}
	w := NewWindow(clk, testTiers())

	key := "203.0.113.9:/p/K2.60"
	for i := 0; i < 10; i++ {
		res := w.Allow(key, TierDefault)
		require.True(t, res.Allowed, "request %d", i+1)
		require.Equal(t, 9-i, res.Remaining)
	}

	res := w.Allow(key, TierDefault)
	require.False(t, res.Allowed)
	require.Equal(t, 0, res.Remaining)
	require.Positive(t, res.RetryAfterSeconds)
	require.LessOrEqual(t, res.RetryAfterSeconds, 60)
}

func TestWindow_ResetsAfterWindow(t *testing.T) {
	t.Parallel()

	clk := &fakeClock{now: time.Unix(1000, 0)}
	w := NewWindow(clk, testTiers())

	key := "198.51.100.7:/api/leads"
	for i := 0; i < 3; i++ {
		require.True(t, w.Allow(key, TierAPI).Allowed)
	}
	require.False(t, w.Allow(key, TierAPI).Allowed)

	clk.advance(61 * time.Second)
	res := w.Allow(key, TierAPI)
	require.True(t, res.Allowed)
	require.Equal(t, 2, res.Remaining)
}

func TestWindow_KeysAreIndependent(t *testing.T) {
	t.Parallel()

	clk := &fakeClock{now: time.Unix(1000, 0)}
	w := NewWindow(clk, testTiers())

	for i := 0; i < 3; i++ {
		require.True(t, w.Allow("a:/api/leads", TierAPI).Allowed)
	}
	require.False(t, w.Allow("a:/api/leads", TierAPI).Allowed)

	// Different IP and different path both get fresh budgets.
	require.True(t, w.Allow("b:/api/leads", TierAPI).Allowed)
	require.True(t, w.Allow("a:/api/health", TierAPI).Allowed)
}

func TestWindow_UnknownTierUsesDefault(t *testing.T) {
	t.Parallel()

	clk := &fakeClock{now: time.Unix(1000, 0)}
	w := NewWindow(clk, testTiers())

	res := w.Allow("x:/", Tier("mystery"))
	require.True(t, res.Allowed)
	require.Equal(t, 9, res.Remaining)
}

func TestWindow_RetryAfterRoundsUp(t *testing.T) {
	t.Parallel()

	clk := &fakeClock{now: time.Unix(1000, 0)}
	w := NewWindow(clk, testTiers())

	key := "c:/p/H15"
	for i := 0; i < 10; i++ {
		w.Allow(key, TierDefault)
	}
	clk.advance(59*time.Second + 500*time.Millisecond)
	res := w.Allow(key, TierDefault)
	require.False(t, res.Allowed)
	require.Equal(t, 1, res.RetryAfterSeconds)
}

func TestWindow_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	clk := &fakeClock{now: time.Unix(1000, 0)}
	w := NewWindow(clk, map[Tier]TierConfig{
		TierDefault: {Window: time.Minute, MaxRequests: 1000},
	})

	done := make(chan int)
	for g := 0; g < 8; g++ {
		go func(id int) {
			allowed := 0
			for i := 0; i < 100; i++ {
				if w.Allow(fmt.Sprintf("ip-%d:/", id%2), TierDefault).Allowed {
					allowed++
				}
			}
			done <- allowed
		}(g)
	}
	total := 0
	for g := 0; g < 8; g++ {
		total += <-done
	}
	require.Equal(t, 800, total)
}
