package storage_test

import (
	"context"
	"testing"
	"time"

	"fitlog-backend/models"
	"fitlog-backend/storage"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedisStore(t *testing.T, limit int) (*storage.RedisActivityStore, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})

	return storage.NewRedisActivityStore(client, limit), mr
}

func TestRedisActivityStore_PushAndLoad(t *testing.T) {
	store, mr := setupRedisStore(t, 50)
	ctx := context.Background()

	feed, err := store.LoadFeed(ctx, 2)
	require.NoError(t, err)
	assert.Nil(t, feed)

	ts := time.UnixMilli(1000).UTC()
	require.NoError(t, store.PushActivity(ctx, 2, record(1, ts)))
	require.NoError(t, store.PushActivity(ctx, 2, record(1, ts.Add(time.Second))))

	feed, err = store.LoadFeed(ctx, 2)
	require.NoError(t, err)
	require.NotNil(t, feed)
	assert.True(t, feed.LastSeen.Equal(models.Epoch))
	require.Len(t, feed.Activity, 2)
	assert.True(t, feed.Activity[0].Timestamp.Equal(ts.Add(time.Second)))
	assert.Equal(t, "Alice", feed.Activity[1].ActingUserName)

	// lastSeen не перезаписывается последующими доставками
	got, err := mr.Get("activity:last_seen:2")
	require.NoError(t, err)
	assert.Equal(t, "0", got)
}

func TestRedisActivityStore_CapEvictsOldest(t *testing.T) {
	store, _ := setupRedisStore(t, 50)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 1; i <= 51; i++ {
		require.NoError(t, store.PushActivity(ctx, 2, record(1, base.Add(time.Duration(i)*time.Minute))))
	}

	feed, err := store.LoadFeed(ctx, 2)
	require.NoError(t, err)
	require.Len(t, feed.Activity, 50)
	assert.True(t, feed.Activity[0].Timestamp.Equal(base.Add(51*time.Minute)))
	assert.True(t, feed.Activity[49].Timestamp.Equal(base.Add(2*time.Minute)))
}

func TestRedisActivityStore_AdvanceLastSeen(t *testing.T) {
	store, _ := setupRedisStore(t, 50)
	ctx := context.Background()
	require.NoError(t, store.PushActivity(ctx, 2, record(1, time.UnixMilli(1000))))

	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	ok, err := store.AdvanceLastSeen(ctx, 2, models.Epoch, now)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.AdvanceLastSeen(ctx, 2, models.Epoch, now.Add(time.Minute))
	require.NoError(t, err)
	assert.False(t, ok)

	feed, err := store.LoadFeed(ctx, 2)
	require.NoError(t, err)
	assert.True(t, feed.LastSeen.Equal(now))

	ok, err = store.AdvanceLastSeen(ctx, 99, models.Epoch, now)
	require.NoError(t, err)
	assert.False(t, ok)
}
