package services

import (
	"context"
	"sync"
	"time"

	"fitlog-backend/models"
	"fitlog-backend/utils"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Типы сообщений WebSocket
const (
	MessageActivityNew = "activity.new"
	MessageUnread      = "feed.unread"
	MessagePing        = "ping"
	MessagePong        = "pong"
)

// WSMessage представляет сообщение WebSocket
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// UnreadPayload ответ на запрос числа непрочитанных
type UnreadPayload struct {
	Unread int `json:"unread"`
}

// UnreadCounter считает непрочитанные записи ленты
type UnreadCounter interface {
	UnreadCount(ctx context.Context, userID uint) (int, error)
}

// Client представляет подключенного клиента
type Client struct {
	ID       string
	UserID   uint
	Conn     *websocket.Conn
	Send     chan WSMessage
	Hub      *Hub
	LastPing time.Time
}

// Hub управляет всеми подключениями и доставляет подписчикам
// уведомления о новых записях в их лентах
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mutex      sync.RWMutex
	unread     UnreadCounter
	log        *zap.Logger
}

// NewHub создает новый хаб
func NewHub(log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		log:        log,
	}
}

// SetUnreadCounter включает обработку запросов feed.unread
func (h *Hub) SetUnreadCounter(c UnreadCounter) {
	h.unread = c
}

// Run запускает хаб до отмены контекста
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mutex.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				close(client.Send)
			}
			h.mutex.Unlock()
			return

		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.mutex.Unlock()

			h.log.Debug("client connected", zap.Uint("user_id", client.UserID), zap.Int("total", total))

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
			}
			total := len(h.clients)
			h.mutex.Unlock()

			h.log.Debug("client disconnected", zap.Uint("user_id", client.UserID), zap.Int("total", total))
		}
	}
}

// ConnectedClients число подключений пользователя
func (h *Hub) ConnectedClients(userID uint) int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	n := 0
	for client := range h.clients {
		if client.UserID == userID {
			n++
		}
	}
	return n
}

// NotifyActivity отправляет подписчику запись, только что попавшую в его ленту
func (h *Hub) NotifyActivity(userID uint, record models.ActivityRecord) {
	h.SendToUser(userID, WSMessage{
		Type:    MessageActivityNew,
		Payload: record,
	})
}

// SendToUser отправляет сообщение всем подключениям пользователя.
// Клиент с переполненным буфером отключается.
func (h *Hub) SendToUser(userID uint, message WSMessage) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	for client := range h.clients {
		if client.UserID == userID {
			h.deliver(client, message)
		}
	}
}

// reply отвечает одному подключению, а не всем подключениям пользователя
func (h *Hub) reply(client *Client, message WSMessage) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if _, registered := h.clients[client]; registered {
		h.deliver(client, message)
	}
}

// deliver вызывается под h.mutex
func (h *Hub) deliver(client *Client, message WSMessage) {
	select {
	case client.Send <- message:
	default:
		close(client.Send)
		delete(h.clients, client)
		h.log.Warn("dropping slow client", zap.Uint("user_id", client.UserID), zap.String("client_id", client.ID))
	}
}

// HandleWebSocket обрабатывает WebSocket соединение
func (h *Hub) HandleWebSocket(c *websocket.Conn) {
	// JWT токен приходит в query параметре
	tokenString := c.Query("token")
	if tokenString == "" {
		c.Close()
		return
	}

	claims, err := utils.ValidateJWT(tokenString)
	if err != nil {
		c.Close()
		return
	}

	client := &Client{
		ID:       uuid.NewString(),
		UserID:   claims.UserID,
		Conn:     c,
		Send:     make(chan WSMessage, 256),
		Hub:      h,
		LastPing: time.Now(),
	}

	select {
	case h.register <- client:
	case <-h.done:
		c.Close()
		return
	}

	// fiber/websocket закрывает соединение после возврата из обработчика,
	// поэтому чтение идет в текущей горутине
	go client.writePump()
	client.readPump()
}

// readPump читает сообщения из WebSocket
func (c *Client) readPump() {
	defer func() {
		select {
		case c.Hub.unregister <- c:
		case <-c.Hub.done:
		}
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(512)
	c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		c.LastPing = time.Now()
		return nil
	})

	for {
		var message WSMessage
		err := c.Conn.ReadJSON(&message)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Hub.log.Warn("websocket error", zap.Uint("user_id", c.UserID), zap.Error(err))
			}
			break
		}

		c.handleMessage(message)
	}
}

// writePump записывает сообщения в WebSocket
func (c *Client) writePump() {
	ticker := time.NewTicker(54 * time.Second)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Conn.WriteJSON(message); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleMessage обрабатывает входящие сообщения
func (c *Client) handleMessage(message WSMessage) {
	switch message.Type {
	case MessagePing:
		c.Hub.reply(c, WSMessage{
			Type: MessagePong,
			Payload: map[string]interface{}{
				"timestamp": time.Now().Unix(),
			},
		})
	case MessageUnread:
		c.handleUnread()
	}
}

func (c *Client) handleUnread() {
	if c.Hub.unread == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	n, err := c.Hub.unread.UnreadCount(ctx, c.UserID)
	if err != nil {
		c.Hub.log.Warn("unread count failed", zap.Uint("user_id", c.UserID), zap.Error(err))
		return
	}
	c.Hub.reply(c, WSMessage{Type: MessageUnread, Payload: UnreadPayload{Unread: n}})
}
