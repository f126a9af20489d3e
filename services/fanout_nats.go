package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// LogCreatedEvent событие о новой записи дневника
type LogCreatedEvent struct {
	UserID    uint      `json:"user_id"`
	Timestamp time.Time `json:"timestamp"`
}

// NATSDispatcher публикует событие в core NATS. Подписчик выполняет рассылку.
// Доставка at-most-once: если подписчика нет, событие теряется.
type NATSDispatcher struct {
	conn    *nats.Conn
	subject string
	log     *zap.Logger
}

// NewNATSDispatcher создает диспетчер поверх соединения NATS
func NewNATSDispatcher(conn *nats.Conn, subject string, log *zap.Logger) *NATSDispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &NATSDispatcher{conn: conn, subject: subject, log: log}
}

// Dispatch публикует событие и не ждет обработки
func (d *NATSDispatcher) Dispatch(actingUserID uint, logTimestamp time.Time) {
	data, err := json.Marshal(LogCreatedEvent{UserID: actingUserID, Timestamp: NormalizeTimestamp(logTimestamp)})
	if err != nil {
		d.log.Error("failed to encode log event", zap.Error(err))
		return
	}
	if err := d.conn.Publish(d.subject, data); err != nil {
		d.log.Warn("failed to publish log event",
			zap.String("subject", d.subject),
			zap.Uint("acting_user_id", actingUserID),
			zap.Error(err))
	}
}

// Wait отправляет буферизованные публикации на сервер
func (d *NATSDispatcher) Wait() {
	if err := d.conn.FlushTimeout(5 * time.Second); err != nil {
		d.log.Warn("nats flush failed", zap.Error(err))
	}
}

// SubscribeFanout подписывает сервис рассылки на события о новых записях.
// Queue group делит события между экземплярами сервера.
func SubscribeFanout(conn *nats.Conn, subject string, fanout *FanoutService) (*nats.Subscription, error) {
	return conn.QueueSubscribe(subject, "fanout", fanout.HandleLogCreated)
}

// HandleLogCreated обработчик сообщения NATS
func (s *FanoutService) HandleLogCreated(msg *nats.Msg) {
	var event LogCreatedEvent
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		s.log.Warn("dropping malformed log event", zap.String("subject", msg.Subject), zap.Error(err))
		return
	}
	if event.UserID == 0 || event.Timestamp.IsZero() {
		s.log.Warn("dropping incomplete log event", zap.String("subject", msg.Subject))
		return
	}
	s.PushLogToFollowers(context.Background(), event.UserID, event.Timestamp)
}
