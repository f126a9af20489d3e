package models

import (
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// User представляет модель пользователя в системе
type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Name         string    `json:"name" gorm:"not null;index"`
	Email        string    `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"not null"` // Скрываем хэш пароля в JSON
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// InitDB инициализирует подключение к базе данных.
// Если задан databaseURL, используется PostgreSQL, иначе файл SQLite.
func InitDB(databaseURL, sqlitePath string) (*gorm.DB, error) {
	if databaseURL != "" {
		// Используем PostgreSQL для продакшена
		return gorm.Open(postgres.Open(databaseURL), &gorm.Config{})
	}

	// Используем SQLite для разработки
	db, err := gorm.Open(sqlite.Open(sqlitePath), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	// SQLite не любит параллельных писателей
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	return db, nil
}

// AutoMigrate создает или обновляет все таблицы приложения
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&UserFollower{},
		&UserFollowing{},
		&FollowStats{},
		&LogCollection{},
		&LogEntry{},
		&Routine{},
		&Exercise{},
		&ActivityFeed{},
		&ActivityRecord{},
	)
}

// BeforeCreate хук для установки времени создания
func (u *User) BeforeCreate(tx *gorm.DB) error {
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now
	return nil
}

// BeforeUpdate хук для обновления времени изменения
func (u *User) BeforeUpdate(tx *gorm.DB) error {
	u.UpdatedAt = time.Now().UTC()
	return nil
}
