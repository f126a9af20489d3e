package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"fitlog-backend/models"
	"fitlog-backend/services"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTestDB создает тестовую базу данных в памяти
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, models.AutoMigrate(db))
	return db
}

func createUser(t *testing.T, db *gorm.DB, name string) uint {
	t.Helper()
	u, err := services.NewUserService(db).Create(context.Background(), name, name+"@test.com", "hash")
	require.NoError(t, err)
	return u.ID
}

// stepClock часы, которые сдвигаются на step при каждом вызове
func stepClock(start time.Time, step time.Duration) func() time.Time {
	var mu sync.Mutex
	now := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t := now
		now = now.Add(step)
		return t
	}
}

// fixedClock часы, которые можно передвигать вручную
type fixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fixedClock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

var errStore = errors.New("store unavailable")

// fakeStore хранилище лент в памяти с управляемыми ошибками
type fakeStore struct {
	mu       sync.Mutex
	feeds    map[uint]*models.ActivityFeed
	failPush map[uint]bool
	loadErr  error
	// casMisses сколько раз AdvanceLastSeen должен проиграть гонку
	casMisses int
	onCASMiss func(feed *models.ActivityFeed)
	casCalls  int
	loadCalls int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		feeds:    make(map[uint]*models.ActivityFeed),
		failPush: make(map[uint]bool),
	}
}

func (s *fakeStore) PushActivity(_ context.Context, userID uint, record models.ActivityRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failPush[userID] {
		return errStore
	}
	feed, ok := s.feeds[userID]
	if !ok {
		feed = &models.ActivityFeed{UserID: userID, LastSeen: models.Epoch}
		s.feeds[userID] = feed
	}
	feed.Activity = append(feed.Activity, record)
	return nil
}

func (s *fakeStore) LoadFeed(_ context.Context, userID uint) (*models.ActivityFeed, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadCalls++
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	feed, ok := s.feeds[userID]
	if !ok {
		return nil, nil
	}
	cp := *feed
	cp.Activity = append([]models.ActivityRecord(nil), feed.Activity...)
	return &cp, nil
}

func (s *fakeStore) AdvanceLastSeen(_ context.Context, userID uint, prev, now time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.casCalls++
	feed, ok := s.feeds[userID]
	if !ok {
		return false, nil
	}
	if s.casMisses > 0 {
		s.casMisses--
		if s.onCASMiss != nil {
			s.onCASMiss(feed)
		}
		return false, nil
	}
	if !feed.LastSeen.Equal(prev) {
		return false, nil
	}
	feed.LastSeen = now
	return true, nil
}

func (s *fakeStore) records(userID uint) []models.ActivityRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	if feed, ok := s.feeds[userID]; ok {
		return append([]models.ActivityRecord(nil), feed.Activity...)
	}
	return nil
}

// recordingNotifier запоминает уведомления
type recordingNotifier struct {
	mu    sync.Mutex
	calls map[uint]int
}

func (n *recordingNotifier) NotifyActivity(userID uint, _ models.ActivityRecord) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.calls == nil {
		n.calls = make(map[uint]int)
	}
	n.calls[userID]++
}

func (n *recordingNotifier) count(userID uint) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.calls[userID]
}

// staticLogs LogLookup с заранее заданными текстами
type staticLogs map[services.LogKey]string

func (l staticLogs) EntriesFor(_ context.Context, userIDs []uint) (map[services.LogKey]string, error) {
	out := make(map[services.LogKey]string)
	for _, id := range userIDs {
		for k, v := range l {
			if k.UserID == id {
				out[k] = v
			}
		}
	}
	return out, nil
}
