package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"fitlog-backend/models"

	"gorm.io/gorm"
)

// LogService управляет дневниками тренировок. Время записи хранится в UTC
// с точностью до миллисекунды и строго возрастает в пределах одного автора,
// поэтому пара (автор, время) однозначно определяет запись.
type LogService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewLogService создает новый сервис дневников
func NewLogService(db *gorm.DB) *LogService {
	return &LogService{db: db, now: time.Now}
}

// WithClock подменяет источник времени
func (s *LogService) WithClock(now func() time.Time) *LogService {
	s.now = now
	return s
}

// NormalizeTimestamp приводит время к виду, в котором оно хранится
func NormalizeTimestamp(ts time.Time) time.Time {
	return ts.UTC().Truncate(time.Millisecond)
}

// ValidateEntry обрезает пробелы и проверяет длину записи
func ValidateEntry(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("%w: log entry cannot be empty", ErrValidation)
	}
	if utf8.RuneCountInString(text) > models.MaxLogEntryLength {
		return "", fmt.Errorf("%w: log entry cannot exceed %d characters", ErrValidation, models.MaxLogEntryLength)
	}
	return text, nil
}

// Append добавляет запись в дневник пользователя и возвращает ее время
func (s *LogService) Append(ctx context.Context, userID uint, text string) (models.LogEntry, error) {
	text, err := ValidateEntry(text)
	if err != nil {
		return models.LogEntry{}, err
	}

	var entry models.LogEntry
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		collection := models.LogCollection{UserID: userID}
		if err := tx.Where("user_id = ?", userID).FirstOrCreate(&collection).Error; err != nil {
			return err
		}

		ts := NormalizeTimestamp(s.now())

		var last models.LogEntry
		err := tx.Where("user_id = ?", userID).Order("timestamp DESC").Limit(1).Find(&last).Error
		if err != nil {
			return err
		}
		if last.ID != 0 && !ts.After(last.Timestamp) {
			ts = NormalizeTimestamp(last.Timestamp).Add(time.Millisecond)
		}

		entry = models.LogEntry{
			CollectionID: collection.ID,
			UserID:       userID,
			Entry:        text,
			Timestamp:    ts,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}

		return tx.Model(&collection).Update("last_modified", ts).Error
	})
	if err != nil {
		return models.LogEntry{}, err
	}
	return entry, nil
}

// List возвращает записи пользователя от новых к старым
func (s *LogService) List(ctx context.Context, userID uint, page, limit int) ([]models.LogEntry, int64, error) {
	entries := []models.LogEntry{}

	var total int64
	if err := s.db.WithContext(ctx).Model(&models.LogEntry{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("timestamp DESC").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&entries).Error
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

// FindEntry возвращает запись по автору и времени
func (s *LogService) FindEntry(ctx context.Context, userID uint, ts time.Time) (*models.LogEntry, error) {
	var entry models.LogEntry
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND timestamp = ?", userID, NormalizeTimestamp(ts)).
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLogNotFound
		}
		return nil, err
	}
	return &entry, nil
}

// Update меняет текст записи, время записи остается прежним
func (s *LogService) Update(ctx context.Context, userID uint, ts time.Time, text string) (*models.LogEntry, error) {
	text, err := ValidateEntry(text)
	if err != nil {
		return nil, err
	}

	var entry models.LogEntry
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("user_id = ? AND timestamp = ?", userID, NormalizeTimestamp(ts)).First(&entry).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrLogNotFound
			}
			return err
		}

		if err := tx.Model(&entry).Update("entry", text).Error; err != nil {
			return err
		}
		entry.Entry = text

		return tx.Model(&models.LogCollection{}).
			Where("id = ?", entry.CollectionID).
			Update("last_modified", s.now().UTC()).Error
	})
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// Delete удаляет запись. Записи активности в лентах подписчиков не трогаются,
// при чтении ленты вместо текста будет заглушка.
func (s *LogService) Delete(ctx context.Context, userID uint, ts time.Time) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var collection models.LogCollection
		if err := tx.Where("user_id = ?", userID).First(&collection).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNoLogs
			}
			return err
		}

		res := tx.Where("collection_id = ? AND timestamp = ?", collection.ID, NormalizeTimestamp(ts)).
			Delete(&models.LogEntry{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrLogNotFound
		}

		return tx.Model(&collection).Update("last_modified", s.now().UTC()).Error
	})
}

// EntriesFor загружает одним запросом все записи указанных авторов
func (s *LogService) EntriesFor(ctx context.Context, userIDs []uint) (map[LogKey]string, error) {
	result := make(map[LogKey]string)
	if len(userIDs) == 0 {
		return result, nil
	}

	var entries []models.LogEntry
	err := s.db.WithContext(ctx).
		Select("user_id", "entry", "timestamp").
		Where("user_id IN ?", userIDs).
		Find(&entries).Error
	if err != nil {
		return nil, err
	}

	for _, e := range entries {
		result[KeyOf(e.UserID, e.Timestamp)] = e.Entry
	}
	return result, nil
}
