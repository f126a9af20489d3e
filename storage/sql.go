package storage

import (
	"context"
	"errors"
	"time"

	"fitlog-backend/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SQLActivityStore хранит ленты в таблицах activity_feeds и activity_records
type SQLActivityStore struct {
	db    *gorm.DB
	limit int
}

// NewSQLActivityStore создает хранилище лент поверх gorm
func NewSQLActivityStore(db *gorm.DB, limit int) *SQLActivityStore {
	return &SQLActivityStore{db: db, limit: limit}
}

// PushActivity добавляет запись в ленту пользователя и обрезает ленту
// до limit самых новых записей. Все происходит в одной транзакции.
func (s *SQLActivityStore) PushActivity(ctx context.Context, userID uint, record models.ActivityRecord) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()

		// Создаем ленту, если ее еще нет
		feed := models.ActivityFeed{UserID: userID, LastSeen: models.Epoch, UpdatedAt: now}
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoNothing: true,
		}).Create(&feed).Error
		if err != nil {
			return err
		}

		// Обновление строки ленты берет блокировку до конца транзакции,
		// поэтому параллельные доставки одному пользователю идут по очереди
		err = tx.Model(&models.ActivityFeed{}).
			Where("user_id = ?", userID).
			Update("updated_at", now).Error
		if err != nil {
			return err
		}

		if err := tx.Where("user_id = ?", userID).First(&feed).Error; err != nil {
			return err
		}

		record.ID = 0
		record.FeedID = feed.ID
		if err := tx.Create(&record).Error; err != nil {
			return err
		}

		keep := tx.Model(&models.ActivityRecord{}).
			Select("id").
			Where("feed_id = ?", feed.ID).
			Order("timestamp DESC").
			Order("id DESC").
			Limit(s.limit)

		return tx.Where("feed_id = ? AND id NOT IN (?)", feed.ID, keep).
			Delete(&models.ActivityRecord{}).Error
	})
}

// LoadFeed возвращает ленту пользователя или nil, если ее еще нет
func (s *SQLActivityStore) LoadFeed(ctx context.Context, userID uint) (*models.ActivityFeed, error) {
	var feed models.ActivityFeed
	err := s.db.WithContext(ctx).
		Preload("Activity", func(db *gorm.DB) *gorm.DB {
			return db.Order("timestamp DESC").Order("id DESC")
		}).
		Where("user_id = ?", userID).
		First(&feed).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	feed.LastSeen = feed.LastSeen.UTC()
	return &feed, nil
}

// AdvanceLastSeen переводит LastSeen с prev на now, только если
// значение в базе все еще равно prev. Возвращает false, если кто-то успел раньше.
func (s *SQLActivityStore) AdvanceLastSeen(ctx context.Context, userID uint, prev, now time.Time) (bool, error) {
	res := s.db.WithContext(ctx).
		Model(&models.ActivityFeed{}).
		Where("user_id = ? AND last_seen = ?", userID, prev.UTC()).
		Update("last_seen", now.UTC())
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
