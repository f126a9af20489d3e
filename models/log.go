package models

import "time"

// MaxLogEntryLength максимальная длина записи дневника в символах
const MaxLogEntryLength = 1000

// LogCollection дневник тренировок пользователя
type LogCollection struct {
	ID           uint       `json:"id" gorm:"primaryKey"`
	UserID       uint       `json:"user_id" gorm:"uniqueIndex;not null"`
	LastModified time.Time  `json:"last_modified"`
	CreatedAt    time.Time  `json:"created_at"`
	Entries      []LogEntry `json:"entries,omitempty" gorm:"foreignKey:CollectionID;constraint:OnDelete:CASCADE"`
}

// LogEntry запись дневника. Пара (UserID, Timestamp) уникальна
// и служит ключом, по которому лента находит текст записи.
type LogEntry struct {
	ID           uint      `json:"-" gorm:"primaryKey"`
	CollectionID uint      `json:"-" gorm:"not null;index"`
	UserID       uint      `json:"-" gorm:"not null;uniqueIndex:idx_log_user_ts"`
	Entry        string    `json:"entry" gorm:"type:text;not null"`
	Timestamp    time.Time `json:"timestamp" gorm:"not null;uniqueIndex:idx_log_user_ts"`
}
