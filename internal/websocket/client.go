package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// Время ожидания записи
	writeWait = 10 * time.Second

	// Время ожидания pong от клиента
	pongWait = 60 * time.Second

	// Интервал отправки ping
	pingPeriod = (pongWait * 9) / 10

	// Максимальный размер сообщения
	maxMessageSize = 64 * 1024

	DefaultSendBuffer = 256

	invalidMessageText = "Invalid message format"
)

// SessionState состояние соединения относительно комнаты
type SessionState uint8

const (
	StateUnbound SessionState = iota
	StateBound
	StateClosed
)

func (s SessionState) String() string {
	switch s {
	case StateUnbound:
		return "unbound"
	case StateBound:
		return "bound"
	default:
		return "closed"
	}
}

// MessageHandler обрабатывает события одного соединения.
// Методы вызываются из ReadPump последовательно.
type MessageHandler interface {
	HandleMessage(client *Client, msg *Message) error
	HandleDisconnect(client *Client)
}

type Client struct {
	ID   string
	Conn *websocket.Conn
	Send chan []byte
	Hub  *Hub

	mu       sync.Mutex
	state    SessionState
	roomCode string
	name     string
}

func NewClient(hub *Hub, conn *websocket.Conn, sendBuffer int) *Client {
	if sendBuffer <= 0 {
		sendBuffer = DefaultSendBuffer
	}
	return &Client{
		ID:   uuid.NewString(),
		Conn: conn,
		Send: make(chan []byte, sendBuffer),
		Hub:  hub,
	}
}

// Bind привязывает соединение к комнате. Привязка возможна один раз.
func (c *Client) Bind(roomCode, name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateUnbound {
		return false
	}
	c.state = StateBound
	c.roomCode = roomCode
	c.name = name
	return true
}

// Binding возвращает текущее состояние и комнату соединения
func (c *Client) Binding() (SessionState, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state, c.roomCode
}

func (c *Client) Name() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.name
}

// MarkClosed переводит соединение в Closed. Возвращает комнату, если
// соединение было к ней привязано до этого вызова.
func (c *Client) MarkClosed() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	wasBound := c.state == StateBound
	c.state = StateClosed
	return c.roomCode, wasBound
}

// ReadPump читает сообщения от клиента
func (c *Client) ReadPump(handler MessageHandler) {
	defer func() {
		handler.HandleDisconnect(c)
		c.Hub.Unregister(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Warn("websocket read error", "connID", c.ID, "error", err)
			}
			return
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil || msg.Event == "" {
			c.SendError(invalidMessageText)
			continue
		}

		if err := handler.HandleMessage(c, &msg); err != nil {
			slog.Debug("event rejected", "connID", c.ID, "event", msg.Event, "error", err)
		}
	}
}

// WritePump отправляет сообщения клиенту
func (c *Client) WritePump() {
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
				// Hub закрыл канал
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

// SendEvent кладет событие в очередь клиента через Hub
func (c *Client) SendEvent(event EventType, payload any) error {
	data, err := Encode(event, payload)
	if err != nil {
		return err
	}
	return c.Hub.SendTo(c.ID, data)
}

func (c *Client) SendError(message string) {
	if err := c.SendEvent(EventRoomError, map[string]string{"message": message}); err != nil {
		slog.Debug("room-error not delivered", "connID", c.ID, "error", err)
	}
}
