package httpx

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type stepClock struct{ t time.Time }

func (c *stepClock) now() time.Time { return c.t }

func TestBucketsRefill(t *testing.T) {
	clk := &stepClock{t: time.Unix(1_700_000_000, 0)}
	b := newBuckets(RateLimitConfig{RequestsPerWindow: 6, Window: time.Minute, Burst: 2}, clk.now)

	ok, _ := b.take("k")
	require.True(t, ok)
	ok, _ = b.take("k")
	require.True(t, ok)

	ok, wait := b.take("k")
	require.False(t, ok)
	require.InDelta(t, float64(10*time.Second), float64(wait), float64(time.Millisecond))

	// A refused request does not spend the token that is refilling.
	clk.t = clk.t.Add(11 * time.Second)
	ok, _ = b.take("k")
	require.True(t, ok)
}

func TestBucketsSweepIdle(t *testing.T) {
	clk := &stepClock{t: time.Unix(1_700_000_000, 0)}
	b := newBuckets(RateLimitConfig{RequestsPerWindow: 5, Window: 2 * time.Minute, Burst: 5}, clk.now)

	for i := range 10 {
		b.take(fmt.Sprintf("idle-%d", i))
	}
	require.Equal(t, 10, b.size())

	// Within the window a sweep keeps everything.
	clk.t = clk.t.Add(90 * time.Second)
	b.take("active")
	require.Equal(t, 11, b.size())

	clk.t = clk.t.Add(time.Minute)
	b.take("active")
	require.Equal(t, 1, b.size(), "buckets idle for a full window are dropped")
}

func TestBucketsSweepKeepsExhausted(t *testing.T) {
	clk := &stepClock{t: time.Unix(1_700_000_000, 0)}
	b := newBuckets(RateLimitConfig{RequestsPerWindow: 1, Window: 5 * time.Minute, Burst: 1}, clk.now)

	b.take("k")
	ok, _ := b.take("k")
	require.False(t, ok)

	clk.t = clk.t.Add(90 * time.Second)
	ok, _ = b.take("k")
	require.False(t, ok, "sweeping must not reset a bucket that is still in use")
}
