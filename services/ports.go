package services

import (
	"context"
	"time"

	"fitlog-backend/models"
)

// ActivityStore хранилище лент активности. Каждая операция атомарна
// в пределах ленты одного пользователя.
type ActivityStore interface {
	// PushActivity вставляет запись, сортирует ленту по убыванию времени
	// и обрезает ее до лимита. Создает ленту при первой записи.
	PushActivity(ctx context.Context, userID uint, record models.ActivityRecord) error
	// LoadFeed возвращает ленту или nil, если ее еще нет
	LoadFeed(ctx context.Context, userID uint) (*models.ActivityFeed, error)
	// AdvanceLastSeen compare-and-set для LastSeen
	AdvanceLastSeen(ctx context.Context, userID uint, prev, now time.Time) (bool, error)
}

// UserDirectory отдает имя пользователя для снимка в записи активности
type UserDirectory interface {
	DisplayName(ctx context.Context, userID uint) (string, error)
}

// FollowGraph список подписчиков и подписок
type FollowGraph interface {
	Followers(ctx context.Context, userID uint) ([]uint, error)
	Following(ctx context.Context, userID uint) ([]uint, error)
}

// LogLookup массовая загрузка записей дневников для сборки ленты
type LogLookup interface {
	EntriesFor(ctx context.Context, userIDs []uint) (map[LogKey]string, error)
}

// Notifier уведомляет подключенного пользователя о новой записи в ленте
type Notifier interface {
	NotifyActivity(userID uint, record models.ActivityRecord)
}

// FanoutDispatcher передает рассылку в фон. Dispatch не ждет результата.
type FanoutDispatcher interface {
	Dispatch(actingUserID uint, logTimestamp time.Time)
}

// LogKey ключ записи дневника: автор и время с точностью до миллисекунды
type LogKey struct {
	UserID uint
	Millis int64
}

// KeyOf строит ключ записи
func KeyOf(userID uint, ts time.Time) LogKey {
	return LogKey{UserID: userID, Millis: ts.UnixMilli()}
}
