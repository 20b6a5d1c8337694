package redisrepo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlidingWindowLimiter_Cooldown(t *testing.T) {
	client := setupTestRedis(t)
	ctx := context.Background()

	l := NewSlidingWindowLimiter(client, KeyTakeCooldown, 1, 300*time.Millisecond)

	ok, cur, retry, err := l.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(1), cur)
	assert.Zero(t, retry)

	ok, _, retry, err = l.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, ok, "second hit inside the window is refused")
	assert.Greater(t, retry, time.Duration(0))
	assert.LessOrEqual(t, retry, 300*time.Millisecond)

	ok, _, _, err = l.Allow(ctx, "10.0.0.2")
	require.NoError(t, err)
	assert.True(t, ok, "keys are independent")

	time.Sleep(350 * time.Millisecond)

	ok, _, _, err = l.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, ok, "allowed again once the window has passed")
}

func TestSlidingWindowLimiter_RejectedHitsDoNotExtendWindow(t *testing.T) {
	client := setupTestRedis(t)
	ctx := context.Background()

	l := NewSlidingWindowLimiter(client, KeyTakeCooldown, 1, 400*time.Millisecond)

	ok, _, _, err := l.Allow(ctx, "kiosk")
	require.NoError(t, err)
	require.True(t, ok)

	for i := 0; i < 3; i++ {
		time.Sleep(100 * time.Millisecond)
		ok, _, _, err = l.Allow(ctx, "kiosk")
		require.NoError(t, err)
		assert.False(t, ok)
	}

	time.Sleep(150 * time.Millisecond)

	ok, _, _, err = l.Allow(ctx, "kiosk")
	require.NoError(t, err)
	assert.True(t, ok)
}
