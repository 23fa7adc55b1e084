package server

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRateLimiterBurstAndRefill(t *testing.T) {
	req := require.New(t)
	now := time.Unix(0, 0)
	rl := newRateLimiterWithClock(RateLimitConfig{Burst: 3, RefillInterval: 3 * time.Second}, func() time.Time { return now })

	// Given a full bucket of three tokens
	req.True(rl.allow())
	req.True(rl.allow())
	req.True(rl.allow())
	req.False(rl.allow())

	// When one second passes, one token comes back
	now = now.Add(time.Second)
	req.True(rl.allow())
	req.False(rl.allow())

	// The bucket never exceeds its capacity
	now = now.Add(time.Hour)
	for i := 0; i < 3; i++ {
		req.True(rl.allow())
	}
	req.False(rl.allow())
}

func TestRateLimiterDefaults(t *testing.T) {
	now := time.Unix(0, 0)
	rl := newRateLimiterWithClock(RateLimitConfig{}, func() time.Time { return now })

	require.True(t, rl.allow())
	require.False(t, rl.allow())
}
