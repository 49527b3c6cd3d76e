package httpapi

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"produce-vision/internal/domain/entity"
)

const (
	writeWait = 5 * time.Second
	sendQueue = 16 // сообщений в очереди одного клиента
)

// wsClient соединение и его очередь отправки. Писатель у соединения один: writePump.
type wsClient struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub рассылает новые состояния всем подключённым websocket-клиентам.
// Broadcast только ставит сообщение в очереди и не ждёт сеть.
type Hub struct {
	mu      sync.RWMutex
	clients map[*websocket.Conn]*wsClient
	logger  *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[*websocket.Conn]*wsClient),
		logger:  logger,
	}
}

func (h *Hub) Register(conn *websocket.Conn) {
	c := &wsClient{conn: conn, send: make(chan []byte, sendQueue)}

	h.mu.Lock()
	h.clients[conn] = c
	h.mu.Unlock()

	go h.writePump(c)
}

func (h *Hub) Unregister(conn *websocket.Conn) {
	h.mu.Lock()
	if c, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		close(c.send)
	}
	h.mu.Unlock()
	_ = conn.Close()
}

// Clients число подключений
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast ставит состояние в очередь каждого клиента.
// Клиент с переполненной очередью отключается.
func (h *Hub) Broadcast(state entity.UIState) {
	msg, err := json.Marshal(state)
	if err != nil {
		h.logger.Error("failed to marshal state", "err", err)
		return
	}

	var slow []*websocket.Conn
	h.mu.RLock()
	for conn, c := range h.clients {
		select {
		case c.send <- msg:
		default:
			slow = append(slow, conn)
		}
	}
	h.mu.RUnlock()

	for _, conn := range slow {
		h.logger.Debug("dropping slow websocket client", "remote", conn.RemoteAddr().String())
		h.Unregister(conn)
	}
}

func (h *Hub) writePump(c *wsClient) {
	for msg := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			h.logger.Debug("dropping websocket client", "remote", c.conn.RemoteAddr().String(), "err", err)
			h.Unregister(c.conn)
			// очередь закрыта в Unregister, дочитываем её
			for range c.send {
			}
			return
		}
	}
}
