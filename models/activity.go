package models

import (
	"time"

	"github.com/google/uuid"
)

// MaxActivityRecords сколько записей хранится в ленте одного пользователя
const MaxActivityRecords = 50

// Epoch значение LastSeen для новой ленты: вся история считается новой
var Epoch = time.Unix(0, 0).UTC()

// ActivityFeed лента обновлений пользователя. Создается при первой
// доставке записи от одного из тех, на кого он подписан.
type ActivityFeed struct {
	ID        uint             `json:"-" gorm:"primaryKey"`
	UserID    uint             `json:"user_id" gorm:"uniqueIndex;not null"`
	LastSeen  time.Time        `json:"last_seen" gorm:"not null"`
	UpdatedAt time.Time        `json:"updated_at"`
	Activity  []ActivityRecord `json:"activity" gorm:"foreignKey:FeedID;constraint:OnDelete:CASCADE"`
}

// ActivityRecord указатель "пользователь X что-то записал в момент T".
// Текст записи не копируется, ActingUserName снимок имени на момент публикации.
type ActivityRecord struct {
	ID             uint      `json:"-" gorm:"primaryKey"`
	ActivityID     string    `json:"id" gorm:"size:36;not null;index"`
	FeedID         uint      `json:"-" gorm:"not null;index"`
	ActingUserID   uint      `json:"acting_user_id" gorm:"not null"`
	ActingUserName string    `json:"acting_user_name" gorm:"not null"`
	Timestamp      time.Time `json:"timestamp" gorm:"not null;index"`
}

// NewActivityRecord создает запись активности с новым идентификатором
func NewActivityRecord(actingUserID uint, actingUserName string, timestamp time.Time) ActivityRecord {
	return ActivityRecord{
		ActivityID:     uuid.NewString(),
		ActingUserID:   actingUserID,
		ActingUserName: actingUserName,
		Timestamp:      timestamp.UTC(),
	}
}
