package services_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"fitlog-backend/services"
	"fitlog-backend/storage"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fanoutEnv struct {
	db      *gorm.DB
	users   *services.UserService
	follows *services.FollowService
	logs    *services.LogService
	store   *storage.SQLActivityStore
	fanout  *services.FanoutService
}

func setupFanout(t *testing.T) *fanoutEnv {
	t.Helper()
	db := setupTestDB(t)
	env := &fanoutEnv{
		db:      db,
		users:   services.NewUserService(db),
		follows: services.NewFollowService(db),
		logs:    services.NewLogService(db),
		store:   storage.NewSQLActivityStore(db, 50),
	}
	env.fanout = services.NewFanoutService(env.users, env.follows, env.store, zap.NewNop(), 4)
	return env
}

func TestFanout_DeliversToFollowersOnly(t *testing.T) {
	env := setupFanout(t)
	ctx := context.Background()

	alice := createUser(t, env.db, "Alice")
	bob := createUser(t, env.db, "Bob")
	carol := createUser(t, env.db, "Carol")
	dave := createUser(t, env.db, "Dave")

	require.NoError(t, env.follows.Follow(ctx, bob, alice))
	require.NoError(t, env.follows.Follow(ctx, dave, alice))

	entry, err := env.logs.Append(ctx, alice, "5x5 squat @100kg")
	require.NoError(t, err)

	delivered := env.fanout.PushLogToFollowers(ctx, alice, entry.Timestamp)
	assert.Equal(t, 2, delivered)

	for _, follower := range []uint{bob, dave} {
		feed, err := env.store.LoadFeed(ctx, follower)
		require.NoError(t, err)
		require.NotNil(t, feed)
		require.Len(t, feed.Activity, 1)
		assert.Equal(t, alice, feed.Activity[0].ActingUserID)
		assert.Equal(t, "Alice", feed.Activity[0].ActingUserName)
		assert.True(t, feed.Activity[0].Timestamp.Equal(entry.Timestamp))
	}

	// Carol не подписана на Alice
	feed, err := env.store.LoadFeed(ctx, carol)
	require.NoError(t, err)
	assert.Nil(t, feed)

	// Сама Alice тоже ничего не получает
	feed, err = env.store.LoadFeed(ctx, alice)
	require.NoError(t, err)
	assert.Nil(t, feed)
}

func TestFanout_SameActivityIDForAllFollowers(t *testing.T) {
	env := setupFanout(t)
	ctx := context.Background()

	alice := createUser(t, env.db, "Alice")
	bob := createUser(t, env.db, "Bob")
	carol := createUser(t, env.db, "Carol")
	require.NoError(t, env.follows.Follow(ctx, bob, alice))
	require.NoError(t, env.follows.Follow(ctx, carol, alice))

	entry, err := env.logs.Append(ctx, alice, "Deadlift 1x5 @140kg")
	require.NoError(t, err)
	require.Equal(t, 2, env.fanout.PushLogToFollowers(ctx, alice, entry.Timestamp))

	bobFeed, err := env.store.LoadFeed(ctx, bob)
	require.NoError(t, err)
	carolFeed, err := env.store.LoadFeed(ctx, carol)
	require.NoError(t, err)
	assert.Equal(t, bobFeed.Activity[0].ActivityID, carolFeed.Activity[0].ActivityID)
}

func TestFanout_UnknownActingUserIsNoop(t *testing.T) {
	env := setupFanout(t)

	assert.Equal(t, 0, env.fanout.PushLogToFollowers(context.Background(), 999, time.Now()))

	var feeds int64
	require.NoError(t, env.db.Table("activity_feeds").Count(&feeds).Error)
	assert.Zero(t, feeds)
}

func TestFanout_NoFollowers(t *testing.T) {
	env := setupFanout(t)
	alice := createUser(t, env.db, "Alice")

	assert.Equal(t, 0, env.fanout.PushLogToFollowers(context.Background(), alice, time.Now()))
}

func TestFanout_CapAfterManyPosts(t *testing.T) {
	env := setupFanout(t)
	ctx := context.Background()

	alice := createUser(t, env.db, "Alice")
	bob := createUser(t, env.db, "Bob")
	require.NoError(t, env.follows.Follow(ctx, bob, alice))

	env.logs.WithClock(stepClock(time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC), time.Minute))

	var first, last time.Time
	for i := 0; i < 51; i++ {
		entry, err := env.logs.Append(ctx, alice, "set")
		require.NoError(t, err)
		if i == 0 {
			first = entry.Timestamp
		}
		last = entry.Timestamp
		require.Equal(t, 1, env.fanout.PushLogToFollowers(ctx, alice, entry.Timestamp))
	}

	feed, err := env.store.LoadFeed(ctx, bob)
	require.NoError(t, err)
	require.Len(t, feed.Activity, 50)
	assert.True(t, feed.Activity[0].Timestamp.Equal(last))
	for _, r := range feed.Activity {
		assert.False(t, r.Timestamp.Equal(first), "oldest record must be evicted")
	}
}

func TestFanout_PartialFailureIsSwallowed(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	users := services.NewUserService(db)
	follows := services.NewFollowService(db)

	alice := createUser(t, db, "Alice")
	bob := createUser(t, db, "Bob")
	carol := createUser(t, db, "Carol")
	require.NoError(t, follows.Follow(ctx, bob, alice))
	require.NoError(t, follows.Follow(ctx, carol, alice))

	store := newFakeStore()
	store.failPush[carol] = true
	notifier := &recordingNotifier{}

	fanout := services.NewFanoutService(users, follows, store, zap.NewNop(), 2)
	fanout.SetNotifier(notifier)

	delivered := fanout.PushLogToFollowers(ctx, alice, time.Now())
	assert.Equal(t, 1, delivered)
	assert.Len(t, store.records(bob), 1)
	assert.Empty(t, store.records(carol))

	// Уведомление уходит только после успешной записи в ленту
	assert.Equal(t, 1, notifier.count(bob))
	assert.Equal(t, 0, notifier.count(carol))
}

func TestAsyncDispatcher_DeliversInBackground(t *testing.T) {
	env := setupFanout(t)
	ctx := context.Background()

	alice := createUser(t, env.db, "Alice")
	bob := createUser(t, env.db, "Bob")
	require.NoError(t, env.follows.Follow(ctx, bob, alice))

	entry, err := env.logs.Append(ctx, alice, "Row 4x10 @60kg")
	require.NoError(t, err)

	dispatcher := services.NewAsyncDispatcher(env.fanout, zap.NewNop())
	dispatcher.Dispatch(alice, entry.Timestamp)
	dispatcher.Wait()

	feed, err := env.store.LoadFeed(ctx, bob)
	require.NoError(t, err)
	require.NotNil(t, feed)
	assert.Len(t, feed.Activity, 1)
}

func TestFanout_HandleLogCreated(t *testing.T) {
	env := setupFanout(t)
	ctx := context.Background()

	alice := createUser(t, env.db, "Alice")
	bob := createUser(t, env.db, "Bob")
	require.NoError(t, env.follows.Follow(ctx, bob, alice))

	entry, err := env.logs.Append(ctx, alice, "Pull-ups 5x8")
	require.NoError(t, err)

	t.Run("Некорректное сообщение", func(t *testing.T) {
		env.fanout.HandleLogCreated(&nats.Msg{Subject: "fitlog.log.created", Data: []byte("{broken")})
		env.fanout.HandleLogCreated(&nats.Msg{Subject: "fitlog.log.created", Data: []byte("{}")})

		feed, err := env.store.LoadFeed(ctx, bob)
		require.NoError(t, err)
		assert.Nil(t, feed)
	})

	t.Run("Событие доставляется подписчикам", func(t *testing.T) {
		data, err := json.Marshal(services.LogCreatedEvent{UserID: alice, Timestamp: entry.Timestamp})
		require.NoError(t, err)

		env.fanout.HandleLogCreated(&nats.Msg{Subject: "fitlog.log.created", Data: data})

		feed, err := env.store.LoadFeed(ctx, bob)
		require.NoError(t, err)
		require.NotNil(t, feed)
		require.Len(t, feed.Activity, 1)
		assert.True(t, feed.Activity[0].Timestamp.Equal(entry.Timestamp))
	})
}
