package models

import (
	"time"

	"gorm.io/gorm"
)

// Routine представляет программу тренировок пользователя
type Routine struct {
	ID        uint       `json:"id" gorm:"primaryKey"`
	UserID    uint       `json:"user_id" gorm:"not null;index"`
	Name      string     `json:"name" gorm:"not null"`
	Exercises []Exercise `json:"exercises" gorm:"foreignKey:RoutineID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time  `json:"created_at"`
}

// Exercise упражнение внутри программы
type Exercise struct {
	ID        uint    `json:"-" gorm:"primaryKey"`
	RoutineID uint    `json:"-" gorm:"not null;index"`
	Name      string  `json:"name" gorm:"not null"`
	Sets      int     `json:"sets" gorm:"not null"`
	RepLower  int     `json:"rep_lower" gorm:"not null"`
	RepUpper  int     `json:"rep_upper" gorm:"not null"`
	Weight    float64 `json:"weight" gorm:"not null"`
}

// BeforeCreate хук для установки времени создания
func (r *Routine) BeforeCreate(tx *gorm.DB) error {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	return nil
}
