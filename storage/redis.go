package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"fitlog-backend/models"

	"github.com/redis/go-redis/v9"
)

// RedisActivityStore хранит ленту в sorted set (score = время в мс),
// а lastSeen отдельным ключом
type RedisActivityStore struct {
	client *redis.Client
	limit  int
}

type redisActivityItem struct {
	ActivityID     string `json:"id"`
	ActingUserID   uint   `json:"acting_user_id"`
	ActingUserName string `json:"acting_user_name"`
	Timestamp      int64  `json:"ts"`
}

// NewRedisActivityStore создает хранилище лент в Redis
func NewRedisActivityStore(client *redis.Client, limit int) *RedisActivityStore {
	return &RedisActivityStore{client: client, limit: limit}
}

func feedKey(userID uint) string {
	return fmt.Sprintf("activity:feed:%d", userID)
}

func lastSeenKey(userID uint) string {
	return fmt.Sprintf("activity:last_seen:%d", userID)
}

// PushActivity добавляет запись и обрезает ленту в одном MULTI/EXEC
func (s *RedisActivityStore) PushActivity(ctx context.Context, userID uint, record models.ActivityRecord) error {
	ts := record.Timestamp.UTC().UnixMilli()
	member, err := json.Marshal(redisActivityItem{
		ActivityID:     record.ActivityID,
		ActingUserID:   record.ActingUserID,
		ActingUserName: record.ActingUserName,
		Timestamp:      ts,
	})
	if err != nil {
		return err
	}

	key := feedKey(userID)
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZAdd(ctx, key, redis.Z{Score: float64(ts), Member: string(member)})
		// Ранги по возрастанию: удаляем все, кроме limit самых новых
		pipe.ZRemRangeByRank(ctx, key, 0, int64(-s.limit-1))
		pipe.SetNX(ctx, lastSeenKey(userID), models.Epoch.UnixMilli(), 0)
		return nil
	})
	return err
}

// LoadFeed возвращает ленту пользователя или nil, если ее еще нет
func (s *RedisActivityStore) LoadFeed(ctx context.Context, userID uint) (*models.ActivityFeed, error) {
	seen, err := s.client.Get(ctx, lastSeenKey(userID)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	entries, err := s.client.ZRevRangeWithScores(ctx, feedKey(userID), 0, -1).Result()
	if err != nil {
		return nil, err
	}

	feed := &models.ActivityFeed{
		UserID:   userID,
		LastSeen: time.UnixMilli(seen).UTC(),
		Activity: make([]models.ActivityRecord, 0, len(entries)),
	}
	for _, z := range entries {
		raw, ok := z.Member.(string)
		if !ok {
			continue
		}
		var item redisActivityItem
		if err := json.Unmarshal([]byte(raw), &item); err != nil {
			// Битая запись не должна ломать всю ленту
			continue
		}
		feed.Activity = append(feed.Activity, models.ActivityRecord{
			ActivityID:     item.ActivityID,
			ActingUserID:   item.ActingUserID,
			ActingUserName: item.ActingUserName,
			Timestamp:      time.UnixMilli(item.Timestamp).UTC(),
		})
	}
	return feed, nil
}

// AdvanceLastSeen compare-and-set через WATCH
func (s *RedisActivityStore) AdvanceLastSeen(ctx context.Context, userID uint, prev, now time.Time) (bool, error) {
	key := lastSeenKey(userID)
	swapped := false

	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, key).Int64()
		if err != nil {
			return err
		}
		if current != prev.UTC().UnixMilli() {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, now.UTC().UnixMilli(), 0)
			return nil
		})
		if err == nil {
			swapped = true
		}
		return err
	}, key)

	switch {
	case err == nil:
		return swapped, nil
	case errors.Is(err, redis.TxFailedErr), errors.Is(err, redis.Nil):
		return false, nil
	default:
		return false, err
	}
}
