package services

import (
	"context"
	"errors"
	"strings"

	"fitlog-backend/models"

	"gorm.io/gorm"
)

// SearchLimit сколько пользователей отдает поиск
const SearchLimit = 20

// UserService предоставляет методы для работы с пользователями
type UserService struct {
	db *gorm.DB
}

// NewUserService создает новый сервис пользователей
func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// Create регистрирует пользователя с уже захэшированным паролем
func (s *UserService) Create(ctx context.Context, name, email, passwordHash string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrEmailTaken
	}

	user := models.User{
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: passwordHash,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByID возвращает пользователя по ID
func (s *UserService) GetByID(ctx context.Context, userID uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetByEmail возвращает пользователя по email
func (s *UserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// DisplayName возвращает имя пользователя
func (s *UserService) DisplayName(ctx context.Context, userID uint) (string, error) {
	var names []string
	err := s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Limit(1).
		Pluck("name", &names).Error
	if err != nil {
		return "", err
	}
	if len(names) == 0 {
		return "", ErrUserNotFound
	}
	return names[0], nil
}

// Search ищет пользователей по имени без учета регистра, исключая текущего.
// Пустой запрос возвращает первых пользователей по алфавиту.
func (s *UserService) Search(ctx context.Context, currentUserID uint, query string) ([]models.User, error) {
	users := []models.User{}
	q := s.db.WithContext(ctx).Where("id <> ?", currentUserID)

	query = strings.TrimSpace(query)
	if query != "" {
		q = q.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(query)+"%")
	}

	err := q.Order("name ASC").Limit(SearchLimit).Find(&users).Error
	return users, err
}
