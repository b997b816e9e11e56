package ratelimiter_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brokerops/dealflow/pkg/ratelimiter"
)

func TestMemory_AllowsUpToLimit(t *testing.T) {
	limiter := ratelimiter.NewMemory(ratelimiter.Config{Limit: 3, Window: time.Minute})

	for i := range 3 {
		ok, err := limiter.Allow(t.Context(), "10.0.0.1")
		require.NoError(t, err)
		assert.True(t, ok, "attempt %d should be allowed", i+1)
	}

	ok, err := limiter.Allow(t.Context(), "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, ok, "attempt over the limit should be denied")
}

func TestMemory_KeysAreIndependent(t *testing.T) {
	limiter := ratelimiter.NewMemory(ratelimiter.Config{Limit: 1, Window: time.Minute})

	ok, err := limiter.Allow(t.Context(), "10.0.0.1")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = limiter.Allow(t.Context(), "10.0.0.1")
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = limiter.Allow(t.Context(), "10.0.0.2")
	require.NoError(t, err)
	assert.True(t, ok, "a different key has its own window")
}

func TestMemory_WindowSlides(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	limiter := ratelimiter.NewMemory(
		ratelimiter.Config{Limit: 2, Window: time.Minute},
		ratelimiter.WithClock(func() time.Time { return now }),
	)

	for range 2 {
		ok, err := limiter.Allow(t.Context(), "10.0.0.1")
		require.NoError(t, err)
		require.True(t, ok)
	}

	ok, err := limiter.Allow(t.Context(), "10.0.0.1")
	require.NoError(t, err)
	require.False(t, ok)

	// Half the window later, still over the limit.
	now = now.Add(30 * time.Second)

	ok, err = limiter.Allow(t.Context(), "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, ok)

	// Once the original attempts fall out of the window, new attempts pass.
	now = now.Add(31 * time.Second)

	ok, err = limiter.Allow(t.Context(), "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, ok)
}
