package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"fitlog-backend/models"

	"gorm.io/gorm"
)

// ExerciseInput упражнение во входящем запросе
type ExerciseInput struct {
	Name     string  `json:"name"`
	Sets     int     `json:"sets"`
	RepLower int     `json:"rep_lower"`
	RepUpper int     `json:"rep_upper"`
	Weight   float64 `json:"weight"`
}

// RoutineInput данные для создания или замены программы
type RoutineInput struct {
	Name      string          `json:"name"`
	Exercises []ExerciseInput `json:"exercises"`
}

// Validate проверяет программу и возвращает ее в нормализованном виде
func (in RoutineInput) Validate() (RoutineInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return in, fmt.Errorf("%w: routine name is required", ErrValidation)
	}
	if len(in.Exercises) == 0 {
		return in, fmt.Errorf("%w: routine must have at least one exercise", ErrValidation)
	}

	for i := range in.Exercises {
		ex := &in.Exercises[i]
		ex.Name = strings.TrimSpace(ex.Name)
		switch {
		case ex.Name == "":
			return in, fmt.Errorf("%w: exercise %d: name is required", ErrValidation, i+1)
		case ex.Sets <= 0:
			return in, fmt.Errorf("%w: exercise %d: sets must be positive", ErrValidation, i+1)
		case ex.RepLower <= 0 || ex.RepUpper <= 0:
			return in, fmt.Errorf("%w: exercise %d: reps must be positive", ErrValidation, i+1)
		case ex.RepLower > ex.RepUpper:
			return in, fmt.Errorf("%w: exercise %d: rep_lower cannot exceed rep_upper", ErrValidation, i+1)
		case ex.Weight < 0:
			return in, fmt.Errorf("%w: exercise %d: weight cannot be negative", ErrValidation, i+1)
		}
	}
	return in, nil
}

func (in RoutineInput) exercises() []models.Exercise {
	out := make([]models.Exercise, 0, len(in.Exercises))
	for _, ex := range in.Exercises {
		out = append(out, models.Exercise{
			Name:     ex.Name,
			Sets:     ex.Sets,
			RepLower: ex.RepLower,
			RepUpper: ex.RepUpper,
			Weight:   ex.Weight,
		})
	}
	return out
}

// RoutineService управляет программами тренировок
type RoutineService struct {
	db *gorm.DB
}

// NewRoutineService создает новый сервис программ
func NewRoutineService(db *gorm.DB) *RoutineService {
	return &RoutineService{db: db}
}

// Create сохраняет новую программу пользователя
func (s *RoutineService) Create(ctx context.Context, userID uint, in RoutineInput) (*models.Routine, error) {
	in, err := in.Validate()
	if err != nil {
		return nil, err
	}

	routine := models.Routine{
		UserID:    userID,
		Name:      in.Name,
		Exercises: in.exercises(),
	}
	if err := s.db.WithContext(ctx).Create(&routine).Error; err != nil {
		return nil, err
	}
	return &routine, nil
}

// List возвращает все программы пользователя, новые первыми
func (s *RoutineService) List(ctx context.Context, userID uint) ([]models.Routine, error) {
	routines := []models.Routine{}
	err := s.db.WithContext(ctx).
		Preload("Exercises", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		}).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&routines).Error
	return routines, err
}

// Get возвращает программу, если она принадлежит пользователю
func (s *RoutineService) Get(ctx context.Context, userID, routineID uint) (*models.Routine, error) {
	var routine models.Routine
	err := s.db.WithContext(ctx).
		Preload("Exercises", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		}).
		Where("id = ? AND user_id = ?", routineID, userID).
		First(&routine).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoutineNotFound
		}
		return nil, err
	}
	return &routine, nil
}

// Update заменяет название и упражнения программы
func (s *RoutineService) Update(ctx context.Context, userID, routineID uint, in RoutineInput) (*models.Routine, error) {
	in, err := in.Validate()
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var routine models.Routine
		if err := tx.Where("id = ? AND user_id = ?", routineID, userID).First(&routine).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRoutineNotFound
			}
			return err
		}

		if err := tx.Model(&routine).Update("name", in.Name).Error; err != nil {
			return err
		}
		if err := tx.Where("routine_id = ?", routine.ID).Delete(&models.Exercise{}).Error; err != nil {
			return err
		}

		exercises := in.exercises()
		for i := range exercises {
			exercises[i].RoutineID = routine.ID
		}
		return tx.Create(&exercises).Error
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, userID, routineID)
}

// Delete удаляет программу вместе с упражнениями
func (s *RoutineService) Delete(ctx context.Context, userID, routineID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var routine models.Routine
		if err := tx.Where("id = ? AND user_id = ?", routineID, userID).First(&routine).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRoutineNotFound
			}
			return err
		}

		if err := tx.Where("routine_id = ?", routine.ID).Delete(&models.Exercise{}).Error; err != nil {
			return err
		}
		return tx.Delete(&routine).Error
	})
}
