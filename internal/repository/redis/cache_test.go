package redisrepo

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kirinyoku/antrian-go/internal/domain"
)

type snapshot struct {
	Waiting []int `json:"waiting"`
}

func TestGetOrSetJSON_LoadsOnce(t *testing.T) {
	client := setupTestRedis(t)
	ctx := context.Background()
	c := New(client)

	var calls atomic.Int32
	loader := func(ctx context.Context) (snapshot, error) {
		calls.Add(1)
		time.Sleep(20 * time.Millisecond)
		return snapshot{Waiting: []int{3, 4}}, nil
	}

	key := KeyStatus("2025-01-02", 0)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := GetOrSetJSON(ctx, c, key, time.Minute, loader)
			assert.NoError(t, err)
			assert.Equal(t, []int{3, 4}, v.Waiting)
		}()
	}
	wg.Wait()

	v, err := GetOrSetJSON(ctx, c, key, time.Minute, loader)
	require.NoError(t, err)
	assert.Equal(t, []int{3, 4}, v.Waiting)
	assert.Equal(t, int32(1), calls.Load())
}

func TestGetOrSetJSON_LoaderError(t *testing.T) {
	client := setupTestRedis(t)
	c := New(client)

	boom := errors.New("db down")
	_, err := GetOrSetJSON(context.Background(), c, KeyOverview("2025-01-02", 0), time.Minute,
		func(ctx context.Context) (snapshot, error) { return snapshot{}, boom })
	assert.ErrorIs(t, err, boom)

	_, ok, err := c.GetString(context.Background(), KeyOverview("2025-01-02", 0))
	require.NoError(t, err)
	assert.False(t, ok, "failures are not cached")
}

func TestInvalidateDay(t *testing.T) {
	client := setupTestRedis(t)
	ctx := context.Background()
	c := New(client)

	day := domain.Day("2025-01-02")
	other := domain.Day("2025-01-03")

	gen, err := c.Generation(ctx, day)
	require.NoError(t, err)
	assert.Zero(t, gen)

	require.NoError(t, c.InvalidateDay(ctx, day))
	require.NoError(t, c.InvalidateDay(ctx, day))

	gen, err = c.Generation(ctx, day)
	require.NoError(t, err)
	assert.Equal(t, int64(2), gen)

	gen, err = c.Generation(ctx, other)
	require.NoError(t, err)
	assert.Zero(t, gen, "other days keep their generation")

	ttl, err := client.TTL(ctx, KeyGeneration(day)).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
}

// A load that began before an invalidation stores under the old generation,
// so readers of the new generation never see it.
func TestInvalidateDay_RetiresInflightLoad(t *testing.T) {
	client := setupTestRedis(t)
	ctx := context.Background()
	c := New(client)

	day := domain.Day("2025-01-02")

	before, err := c.Generation(ctx, day)
	require.NoError(t, err)

	stale := func(ctx context.Context) (snapshot, error) {
		require.NoError(t, c.InvalidateDay(ctx, day))
		return snapshot{Waiting: []int{1}}, nil
	}
	_, err = GetOrSetJSON(ctx, c, KeyStatus(day, before), time.Minute, stale)
	require.NoError(t, err)

	after, err := c.Generation(ctx, day)
	require.NoError(t, err)
	require.NotEqual(t, before, after)

	_, ok, err := GetJSON[snapshot](ctx, c, KeyStatus(day, after))
	require.NoError(t, err)
	assert.False(t, ok)
}
