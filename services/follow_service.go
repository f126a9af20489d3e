package services

import (
	"context"
	"errors"
	"time"

	"fitlog-backend/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FollowService управляет подписками. Оба представления связи
// (подписчики цели и подписки автора) и счетчики меняются в одной транзакции.
type FollowService struct {
	db *gorm.DB
}

// NewFollowService создает новый сервис подписок
func NewFollowService(db *gorm.DB) *FollowService {
	return &FollowService{db: db}
}

// FollowEntry элемент списка подписчиков или подписок
type FollowEntry struct {
	UserID     uint      `json:"user_id"`
	Name       string    `json:"name"`
	FollowedAt time.Time `json:"followed_at"`
}

// Follow подписывает followerID на targetID
func (s *FollowService) Follow(ctx context.Context, followerID, targetID uint) error {
	if followerID == targetID {
		return ErrSelfFollow
	}

	// Проверяем, существует ли пользователь для подписки
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", targetID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrUserNotFound
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing int64
		err := tx.Model(&models.UserFollower{}).
			Where("user_id = ? AND follower_id = ?", targetID, followerID).
			Count(&existing).Error
		if err != nil {
			return err
		}
		if existing > 0 {
			return ErrAlreadyFollowing
		}

		now := time.Now().UTC()
		if err := tx.Create(&models.UserFollower{UserID: targetID, FollowerID: followerID, FollowedAt: now}).Error; err != nil {
			return err
		}
		if err := tx.Create(&models.UserFollowing{UserID: followerID, FolloweeID: targetID, FollowedAt: now}).Error; err != nil {
			return err
		}

		if err := bumpCounter(tx, targetID, "follower_count", 1); err != nil {
			return err
		}
		return bumpCounter(tx, followerID, "following_count", 1)
	})
}

// Unfollow отписывает followerID от targetID
func (s *FollowService) Unfollow(ctx context.Context, followerID, targetID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("user_id = ? AND follower_id = ?", targetID, followerID).Delete(&models.UserFollower{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFollowing
		}

		err := tx.Where("user_id = ? AND followee_id = ?", followerID, targetID).Delete(&models.UserFollowing{}).Error
		if err != nil {
			return err
		}

		if err := bumpCounter(tx, targetID, "follower_count", -1); err != nil {
			return err
		}
		return bumpCounter(tx, followerID, "following_count", -1)
	})
}

// IsFollowing проверяет, подписан ли followerID на targetID
func (s *FollowService) IsFollowing(ctx context.Context, followerID, targetID uint) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.UserFollowing{}).
		Where("user_id = ? AND followee_id = ?", followerID, targetID).
		Count(&count).Error
	return count > 0, err
}

// Followers возвращает ID всех подписчиков пользователя
func (s *FollowService) Followers(ctx context.Context, userID uint) ([]uint, error) {
	ids := []uint{}
	err := s.db.WithContext(ctx).Model(&models.UserFollower{}).
		Where("user_id = ?", userID).
		Pluck("follower_id", &ids).Error
	return ids, err
}

// Following возвращает ID всех, на кого подписан пользователь
func (s *FollowService) Following(ctx context.Context, userID uint) ([]uint, error) {
	ids := []uint{}
	err := s.db.WithContext(ctx).Model(&models.UserFollowing{}).
		Where("user_id = ?", userID).
		Pluck("followee_id", &ids).Error
	return ids, err
}

// ListFollowers возвращает подписчиков с именами и пагинацией
func (s *FollowService) ListFollowers(ctx context.Context, userID uint, page, limit int) ([]FollowEntry, int64, error) {
	return s.list(ctx, "user_followers", "follower_id", userID, page, limit)
}

// ListFollowing возвращает подписки с именами и пагинацией
func (s *FollowService) ListFollowing(ctx context.Context, userID uint, page, limit int) ([]FollowEntry, int64, error) {
	return s.list(ctx, "user_followings", "followee_id", userID, page, limit)
}

func (s *FollowService) list(ctx context.Context, table, otherColumn string, userID uint, page, limit int) ([]FollowEntry, int64, error) {
	entries := []FollowEntry{}

	var total int64
	if err := s.db.WithContext(ctx).Table(table).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := s.db.WithContext(ctx).Table(table).
		Select("users.id AS user_id, users.name AS name, "+table+".followed_at AS followed_at").
		Joins("JOIN users ON users.id = "+table+"."+otherColumn).
		Where(table+".user_id = ?", userID).
		Order(table + ".followed_at DESC").
		Limit(limit).
		Offset((page - 1) * limit).
		Scan(&entries).Error
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

// Stats возвращает кэшированные счетчики
func (s *FollowService) Stats(ctx context.Context, userID uint) (models.FollowStats, error) {
	stats := models.FollowStats{UserID: userID}
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&stats).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return stats, err
	}
	return stats, nil
}

// bumpCounter меняет счетчик на delta, не опуская его ниже нуля
func bumpCounter(tx *gorm.DB, userID uint, column string, delta int) error {
	err := tx.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.FollowStats{UserID: userID, UpdatedAt: time.Now().UTC()}).Error
	if err != nil {
		return err
	}

	q := tx.Model(&models.FollowStats{}).Where("user_id = ?", userID)
	if delta < 0 {
		q = q.Where(column + " > 0")
	}
	return q.Updates(map[string]interface{}{
		column:       gorm.Expr(column+" + ?", delta),
		"updated_at": time.Now().UTC(),
	}).Error
}
