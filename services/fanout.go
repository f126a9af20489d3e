package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"fitlog-backend/models"

	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"
)

// FanoutService рассылает запись активности в ленты подписчиков автора.
// Доставка best-effort: ошибки логируются и не возвращаются, повторов нет.
type FanoutService struct {
	users    UserDirectory
	graph    FollowGraph
	store    ActivityStore
	notifier Notifier
	log      *zap.Logger
	workers  int
}

// NewFanoutService создает сервис рассылки
func NewFanoutService(users UserDirectory, graph FollowGraph, store ActivityStore, log *zap.Logger, workers int) *FanoutService {
	if workers <= 0 {
		workers = 1
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &FanoutService{
		users:   users,
		graph:   graph,
		store:   store,
		log:     log,
		workers: workers,
	}
}

// SetNotifier подключает уведомления онлайн-подписчиков
func (s *FanoutService) SetNotifier(n Notifier) {
	s.notifier = n
}

// PushLogToFollowers доставляет запись о новой записи дневника всем подписчикам
// автора и возвращает число лент, в которые запись попала.
func (s *FanoutService) PushLogToFollowers(ctx context.Context, actingUserID uint, logTimestamp time.Time) int {
	log := s.log.With(zap.Uint("acting_user_id", actingUserID), zap.Time("log_timestamp", logTimestamp))

	name, err := s.users.DisplayName(ctx, actingUserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			log.Warn("fanout skipped: acting user not found")
		} else {
			log.Error("fanout skipped: display name lookup failed", zap.Error(err))
		}
		return 0
	}

	followers, err := s.graph.Followers(ctx, actingUserID)
	if err != nil {
		log.Error("fanout skipped: followers lookup failed", zap.Error(err))
		return 0
	}
	if len(followers) == 0 {
		return 0
	}

	record := models.NewActivityRecord(actingUserID, name, NormalizeTimestamp(logTimestamp))

	var delivered atomic.Int64
	p := pool.New().WithContext(ctx).WithMaxGoroutines(s.workers)
	for _, followerID := range followers {
		followerID := followerID
		p.Go(func(ctx context.Context) error {
			if err := s.store.PushActivity(ctx, followerID, record); err != nil {
				log.Warn("fanout delivery failed", zap.Uint("follower_id", followerID), zap.Error(err))
				return nil
			}
			delivered.Add(1)
			if s.notifier != nil {
				s.notifier.NotifyActivity(followerID, record)
			}
			return nil
		})
	}
	_ = p.Wait()

	n := int(delivered.Load())
	log.Debug("fanout finished", zap.Int("followers", len(followers)), zap.Int("delivered", n))
	return n
}

// AsyncDispatcher запускает рассылку в отдельной горутине. Рассылка не зависит
// от контекста запроса и продолжается после отключения клиента.
type AsyncDispatcher struct {
	fanout *FanoutService
	log    *zap.Logger
	wg     sync.WaitGroup
}

// NewAsyncDispatcher создает диспетчер, работающий в памяти процесса
func NewAsyncDispatcher(fanout *FanoutService, log *zap.Logger) *AsyncDispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &AsyncDispatcher{fanout: fanout, log: log}
}

// Dispatch ставит рассылку и сразу возвращается
func (d *AsyncDispatcher) Dispatch(actingUserID uint, logTimestamp time.Time) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				d.log.Error("fanout panicked", zap.Uint("acting_user_id", actingUserID), zap.Any("panic", r))
			}
		}()
		d.fanout.PushLogToFollowers(context.Background(), actingUserID, logTimestamp)
	}()
}

// Wait ждет завершения запущенных рассылок
func (d *AsyncDispatcher) Wait() {
	d.wg.Wait()
}
