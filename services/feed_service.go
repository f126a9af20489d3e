package services

import (
	"context"
	"sort"
	"time"

	"fitlog-backend/models"

	"go.uber.org/zap"
)

// MissingLogText текст для записи активности, чья запись дневника удалена
const MissingLogText = "Log entry not found"

// maxSeenAttempts сколько раз пробуем сдвинуть lastSeen при гонке просмотров
const maxSeenAttempts = 3

// FeedItem запись ленты, готовая к отображению
type FeedItem struct {
	ID             string    `json:"id"`
	ActingUserID   uint      `json:"acting_user_id"`
	ActingUserName string    `json:"acting_user_name"`
	Entry          string    `json:"entry"`
	Timestamp      time.Time `json:"timestamp"`
	IsNew          bool      `json:"is_new"`
}

// FeedService читает ленту пользователя. Просмотр ленты отмечает все записи
// до текущего момента как просмотренные (единая отсечка lastSeen).
type FeedService struct {
	store ActivityStore
	logs  LogLookup
	log   *zap.Logger
	now   func() time.Time
}

// NewFeedService создает сервис чтения ленты
func NewFeedService(store ActivityStore, logs LogLookup, log *zap.Logger) *FeedService {
	if log == nil {
		log = zap.NewNop()
	}
	return &FeedService{store: store, logs: logs, log: log, now: time.Now}
}

// WithClock подменяет источник времени
func (s *FeedService) WithClock(now func() time.Time) *FeedService {
	s.now = now
	return s
}

// GetUpdates возвращает ленту от новых к старым и сдвигает lastSeen на текущий
// момент. Сдвиг делается через compare-and-set, поэтому из двух одновременных
// просмотров новые записи увидит только один. Если ленты нет, возвращается
// пустой список.
func (s *FeedService) GetUpdates(ctx context.Context, userID uint) ([]FeedItem, error) {
	var items []FeedItem

	for attempt := 0; attempt < maxSeenAttempts; attempt++ {
		feed, err := s.store.LoadFeed(ctx, userID)
		if err != nil {
			return nil, err
		}
		if feed == nil || len(feed.Activity) == 0 {
			return []FeedItem{}, nil
		}

		prev := feed.LastSeen
		items, err = s.resolve(ctx, feed.Activity, prev)
		if err != nil {
			return nil, err
		}

		// Время записи может опережать часы на несколько мс (см. LogService.Append),
		// показанные записи все равно должны считаться просмотренными
		now := NormalizeTimestamp(s.now())
		if now.Before(prev) {
			now = prev
		}
		if newest := items[0].Timestamp; now.Before(newest) {
			now = newest
		}

		ok, err := s.store.AdvanceLastSeen(ctx, userID, prev, now)
		if err != nil {
			return nil, err
		}
		if ok {
			return items, nil
		}

		s.log.Debug("lastSeen changed concurrently, reloading feed",
			zap.Uint("user_id", userID),
			zap.Int("attempt", attempt+1))
	}

	// Другие просмотры все время опережали нас. Отдаем последнее прочитанное
	// состояние, lastSeen уже сдвинут ими.
	s.log.Warn("gave up advancing lastSeen", zap.Uint("user_id", userID))
	return items, nil
}

// UnreadCount сколько записей в ленте новее lastSeen. Ленту не отмечает.
func (s *FeedService) UnreadCount(ctx context.Context, userID uint) (int, error) {
	feed, err := s.store.LoadFeed(ctx, userID)
	if err != nil {
		return 0, err
	}
	if feed == nil {
		return 0, nil
	}

	count := 0
	for _, r := range feed.Activity {
		if r.Timestamp.After(feed.LastSeen) {
			count++
		}
	}
	return count, nil
}

// resolve находит текст записей дневника и отмечает новые записи
func (s *FeedService) resolve(ctx context.Context, records []models.ActivityRecord, lastSeen time.Time) ([]FeedItem, error) {
	seen := make(map[uint]struct{})
	authors := make([]uint, 0, len(records))
	for _, r := range records {
		if _, ok := seen[r.ActingUserID]; ok {
			continue
		}
		seen[r.ActingUserID] = struct{}{}
		authors = append(authors, r.ActingUserID)
	}

	texts, err := s.logs.EntriesFor(ctx, authors)
	if err != nil {
		return nil, err
	}

	items := make([]FeedItem, 0, len(records))
	for _, r := range records {
		text, ok := texts[KeyOf(r.ActingUserID, r.Timestamp)]
		if !ok {
			text = MissingLogText
		}
		items = append(items, FeedItem{
			ID:             r.ActivityID,
			ActingUserID:   r.ActingUserID,
			ActingUserName: r.ActingUserName,
			Entry:          text,
			Timestamp:      r.Timestamp.UTC(),
			IsNew:          r.Timestamp.After(lastSeen),
		})
	}

	// Несколько рассылок могут чередоваться, порядок хранилища не гарантирован
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Timestamp.After(items[j].Timestamp)
	})
	return items, nil
}
