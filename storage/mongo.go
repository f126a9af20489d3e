package storage

import (
	"context"
	"errors"
	"time"

	"fitlog-backend/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ActivityCollection коллекция лент в MongoDB
const ActivityCollection = "user_activities"

type mongoActivityDoc struct {
	UserID    int64               `bson:"userId"`
	Activity  []mongoActivityItem `bson:"activity"`
	UpdatedAt time.Time           `bson:"updatedAt"`
	LastSeen  time.Time           `bson:"lastSeen"`
}

type mongoActivityItem struct {
	ActivityID       string    `bson:"activityId"`
	ActivityUserID   int64     `bson:"activityUserId"`
	ActivityUserName string    `bson:"activityUserName"`
	Timestamp        time.Time `bson:"timestamp"`
}

// MongoActivityStore хранит каждую ленту одним документом.
// Вставка, сортировка и обрезка выполняются одним $push.
type MongoActivityStore struct {
	coll  *mongo.Collection
	limit int
}

// NewMongoActivityStore создает хранилище лент в базе db
func NewMongoActivityStore(db *mongo.Database, limit int) *MongoActivityStore {
	return &MongoActivityStore{
		coll:  db.Collection(ActivityCollection),
		limit: limit,
	}
}

// NewMongoClient подключается к MongoDB и проверяет соединение
func NewMongoClient(ctx context.Context, uri string) (*mongo.Client, error) {
	cli, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := cli.Ping(ctx, nil); err != nil {
		_ = cli.Disconnect(ctx)
		return nil, err
	}
	return cli, nil
}

// EnsureIndexes создает уникальный индекс по userId
func (s *MongoActivityStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "userId", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

// PushActivity добавляет запись, держит ленту отсортированной по убыванию
// времени и не длиннее limit. Документ создается при первой записи.
func (s *MongoActivityStore) PushActivity(ctx context.Context, userID uint, record models.ActivityRecord) error {
	item := mongoActivityItem{
		ActivityID:       record.ActivityID,
		ActivityUserID:   int64(record.ActingUserID),
		ActivityUserName: record.ActingUserName,
		Timestamp:        record.Timestamp.UTC(),
	}

	update := bson.M{
		"$push": bson.M{
			"activity": bson.M{
				"$each":  bson.A{item},
				"$sort":  bson.M{"timestamp": -1},
				"$slice": s.limit,
			},
		},
		"$set":         bson.M{"updatedAt": time.Now().UTC()},
		"$setOnInsert": bson.M{"lastSeen": models.Epoch},
	}

	_, err := s.coll.UpdateOne(ctx,
		bson.M{"userId": int64(userID)},
		update,
		options.Update().SetUpsert(true),
	)
	return err
}

// LoadFeed возвращает ленту пользователя или nil, если документа нет
func (s *MongoActivityStore) LoadFeed(ctx context.Context, userID uint) (*models.ActivityFeed, error) {
	var doc mongoActivityDoc
	err := s.coll.FindOne(ctx, bson.M{"userId": int64(userID)}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}

	feed := &models.ActivityFeed{
		UserID:    uint(doc.UserID),
		LastSeen:  doc.LastSeen.UTC(),
		UpdatedAt: doc.UpdatedAt.UTC(),
		Activity:  make([]models.ActivityRecord, 0, len(doc.Activity)),
	}
	for _, item := range doc.Activity {
		feed.Activity = append(feed.Activity, models.ActivityRecord{
			ActivityID:     item.ActivityID,
			ActingUserID:   uint(item.ActivityUserID),
			ActingUserName: item.ActivityUserName,
			Timestamp:      item.Timestamp.UTC(),
		})
	}
	return feed, nil
}

// AdvanceLastSeen условное обновление lastSeen: срабатывает, только если
// в документе все еще лежит prev
func (s *MongoActivityStore) AdvanceLastSeen(ctx context.Context, userID uint, prev, now time.Time) (bool, error) {
	res, err := s.coll.UpdateOne(ctx,
		bson.M{"userId": int64(userID), "lastSeen": prev.UTC()},
		bson.M{"$set": bson.M{"lastSeen": now.UTC()}},
	)
	if err != nil {
		return false, err
	}
	return res.MatchedCount == 1, nil
}
