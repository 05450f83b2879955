package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimitStore_Allow(t *testing.T) {
	client, _ := newTestRedis(t)

	now := time.Unix(1700000000, 0)
	store := NewRateLimitStore(client, 2, time.Second)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		ok, err := store.Allow(ctx, "10.0.0.1")
		require.NoError(t, err)
		assert.True(t, ok)
	}

	ok, err := store.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, ok, "third hit in the same window must be rejected")

	ok, err = store.Allow(ctx, "10.0.0.2")
	require.NoError(t, err)
	assert.True(t, ok, "keys are counted independently")

	now = now.Add(time.Second)
	ok, err = store.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, ok, "a new window resets the counter")
}

func TestRateLimitStore_SetsExpiry(t *testing.T) {
	client, mr := newTestRedis(t)

	store := NewRateLimitStore(client, 1, time.Minute)
	_, err := store.Allow(context.Background(), "k")
	require.NoError(t, err)

	keys := mr.Keys()
	require.Len(t, keys, 1)
	assert.Equal(t, time.Minute, mr.TTL(keys[0]))
}

func TestRateLimitStore_RedisDown(t *testing.T) {
	client, mr := newTestRedis(t)
	mr.Close()

	_, err := NewRateLimitStore(client, 1, time.Second).Allow(context.Background(), "k")
	assert.Error(t, err)
}
