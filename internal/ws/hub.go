package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"busline/internal/response"
	"busline/internal/service"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
	sendBuffer = 256
)

// Hub хранит подключения клиентов, сгруппированные по линии.
type Hub struct {
	clients    map[uint]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan BroadcastMessage
	done       chan struct{}
	mu         sync.RWMutex
	log        *zap.Logger
}

// BroadcastMessage: сообщение для подписчиков одной линии.
type BroadcastMessage struct {
	LineID  uint
	Message []byte
}

// NewHub создаёт Hub. Цикл обработки запускается через Run.
func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[uint]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan BroadcastMessage),
		done:       make(chan struct{}),
		log:        log,
	}
}

// Run обрабатывает каналы хаба до отмены ctx, после чего закрывает все подключения.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.mu.Lock()
			for lineID, clients := range h.clients {
				for client := range clients {
					close(client.Send)
				}
				delete(h.clients, lineID)
			}
			h.mu.Unlock()
			return
		case client := <-h.register:
			h.mu.Lock()
			if h.clients[client.LineID] == nil {
				h.clients[client.LineID] = make(map[*Client]bool)
			}
			h.clients[client.LineID][client] = true
			h.mu.Unlock()
		case client := <-h.unregister:
			h.remove(client)
		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients[message.LineID] {
				select {
				case client.Send <- message.Message:
				default:
					// Медленный клиент отключается.
					close(client.Send)
					delete(h.clients[message.LineID], client)
				}
			}
			h.mu.Unlock()
		}
	}
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	clients, ok := h.clients[client.LineID]
	if !ok {
		return
	}
	if _, ok := clients[client]; ok {
		delete(clients, client)
		close(client.Send)
		if len(clients) == 0 {
			delete(h.clients, client.LineID)
		}
	}
}

// Clients возвращает число подписчиков линии.
func (h *Hub) Clients(lineID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[lineID])
}

// NotifyInterest рассылает событие подписчикам линии события.
func (h *Hub) NotifyInterest(ctx context.Context, evt service.InterestEvent) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	select {
	case h.broadcast <- BroadcastMessage{LineID: evt.LineID, Message: payload}:
		return nil
	case <-h.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Client: одно WebSocket-подключение.
type Client struct {
	Hub    *Hub
	Conn   *websocket.Conn
	Send   chan []byte
	LineID uint
}

// readPump входящие сообщения не обрабатывает, только следит за разрывом соединения.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.Hub.unregister <- c:
		case <-c.Hub.done:
		}
		c.Conn.Close()
	}()
	c.Conn.SetReadLimit(512)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.Hub.log.Debug("WebSocket закрыт клиентом", zap.Uint("line_id", c.LineID), zap.Error(err))
			}
			return
		}
	}
}

// writePump отправляет клиенту сообщения из Send и периодический ping.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// LineWebSocketHandler godoc
// @Summary Поток событий интереса линии
// @Description Открывает WebSocket и присылает события interest_updated и interest_reset по линии
// @Tags lines
// @Param id path int true "ID линии"
// @Success 101
// @Failure 400 {object} response.ErrorResponse
// @Router /api/lines/{id}/ws [get]
func (h *Hub) LineWebSocketHandler(c *gin.Context) {
	lineID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "INVALID_LINE_ID",
			Message: "Некорректный ID линии",
		})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("Ошибка обновления до WebSocket", zap.Error(err))
		return
	}
	client := &Client{
		Hub:    h,
		Conn:   conn,
		Send:   make(chan []byte, sendBuffer),
		LineID: uint(lineID),
	}
	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	go client.writePump()
	client.readPump()
}
