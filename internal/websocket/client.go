package websocket

import (
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// Время, которое разрешено писать сообщение клиенту.
	writeWait = 10 * time.Second

	// Время, которое разрешено клиенту читать следующее сообщение.
	pongWait = 30 * time.Second

	// Периодичность отправки ping-сообщений клиенту.
	pingPeriod = (pongWait * 9) / 10

	// Максимальный размер входящего сообщения
	maxMessageSize = 512

	// Размер буфера канала исходящих сообщений клиента
	clientBufferSize = 64
)

// Client является посредником между WebSocket соединением и hub
type Client struct {
	// ID аутентифицированного участника
	UserID uint

	// Уникальный ID соединения (у одного участника их может быть несколько)
	ConnectionID string

	hub  *Hub
	conn *websocket.Conn

	// Буферизованный канал для исходящих сообщений
	send chan []byte
}

// NewClient создает нового клиента для установленного соединения
func NewClient(hub *Hub, conn *websocket.Conn, userID uint) *Client {
	return &Client{
		UserID:       userID,
		ConnectionID: uuid.New().String(),
		hub:          hub,
		conn:         conn,
		send:         make(chan []byte, clientBufferSize),
	}
}

// StartPumps регистрирует клиента в hub и запускает горутины чтения и записи
func (c *Client) StartPumps() {
	select {
	case c.hub.register <- c:
	case <-c.hub.done:
		c.conn.Close()
		return
	}
	go c.writePump()
	go c.readPump()
}

// readPump читает входящие сообщения соединения.
// Одна горутина чтения на соединение; закрытие соединения завершает ее.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				log.Printf("[WebSocket] Неожиданное закрытие соединения %s: %v", c.ConnectionID, err)
			}
			return
		}

		var msg Envelope
		if err := json.Unmarshal(raw, &msg); err != nil {
			log.Printf("[WebSocket] Не удалось разобрать сообщение от участника #%d: %v", c.UserID, err)
			continue
		}
		c.hub.handleClientMessage(c, &msg)
	}
}

// writePump пишет сообщения из канала send в соединение.
// Одна горутина записи на соединение: websocket не допускает конкурентных записей.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub закрыл канал
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// enqueue кладет сообщение в буфер клиента. При переполненном буфере
// сообщение отбрасывается: медленный клиент не должен блокировать hub.
func (c *Client) enqueue(message []byte) bool {
	select {
	case c.send <- message:
		return true
	default:
		return false
	}
}
