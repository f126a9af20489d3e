package models

import (
	"time"

	"gorm.io/gorm"
)

// UserFollower строка представления "подписчики пользователя":
// FollowerID подписан на UserID
type UserFollower struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	UserID     uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_user_follower"`
	FollowerID uint      `json:"follower_id" gorm:"not null;uniqueIndex:idx_user_follower;index"`
	FollowedAt time.Time `json:"followed_at"`
}

// UserFollowing строка представления "подписки пользователя":
// UserID подписан на FolloweeID
type UserFollowing struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	UserID     uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_user_following"`
	FolloweeID uint      `json:"followee_id" gorm:"not null;uniqueIndex:idx_user_following;index"`
	FollowedAt time.Time `json:"followed_at"`
}

// FollowStats кэшированные счетчики подписчиков и подписок
type FollowStats struct {
	UserID         uint      `json:"user_id" gorm:"primaryKey;autoIncrement:false"`
	FollowerCount  int64     `json:"follower_count" gorm:"not null;default:0"`
	FollowingCount int64     `json:"following_count" gorm:"not null;default:0"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// BeforeCreate хук для установки времени подписки
func (f *UserFollower) BeforeCreate(tx *gorm.DB) error {
	if f.FollowedAt.IsZero() {
		f.FollowedAt = time.Now().UTC()
	}
	return nil
}

// BeforeCreate хук для установки времени подписки
func (f *UserFollowing) BeforeCreate(tx *gorm.DB) error {
	if f.FollowedAt.IsZero() {
		f.FollowedAt = time.Now().UTC()
	}
	return nil
}
