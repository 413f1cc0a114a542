package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"
)

// EventType определяет типы сообщений
type EventType string

const (
	// Входящие события
	EventCreateRoom      EventType = "create-room"
	EventJoinRoom        EventType = "join-room"
	EventStartGame       EventType = "start-game"
	EventSelectChallenge EventType = "select-challenge"
	EventNextPlayer      EventType = "next-player"
	EventKickPlayer      EventType = "kick-player"
	EventTransferHost    EventType = "transfer-host"
	EventVoiceToggle     EventType = "voice-toggle"
	EventVoiceMuteToggle EventType = "voice-mute-toggle"

	// События в обе стороны
	EventChatMessage  EventType = "chat-message"
	EventRulesUpdated EventType = "rules-updated"
	EventWebRTCOffer  EventType = "webrtc-offer"
	EventWebRTCAnswer EventType = "webrtc-answer"
	EventICECandidate EventType = "webrtc-ice-candidate"

	// Исходящие события
	EventRoomCreated       EventType = "room-created"
	EventRoomJoined        EventType = "room-joined"
	EventPlayerJoined      EventType = "player-joined"
	EventPlayerLeft        EventType = "player-left"
	EventRoomError         EventType = "room-error"
	EventGameStarted       EventType = "game-started"
	EventChallengeSelected EventType = "challenge-selected"
	EventPlayerChanged     EventType = "player-changed"
	EventKicked            EventType = "kicked"
	EventHostTransferred   EventType = "host-transferred"
	EventVoiceStatus       EventType = "voice-status"
	EventVoiceMuteStatus   EventType = "voice-mute-status"
)

// Message конверт всех сообщений в обе стороны
type Message struct {
	Event   EventType       `json:"event"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Encode собирает конверт с payload
func Encode(event EventType, payload any) ([]byte, error) {
	msg := Message{Event: event}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		msg.Payload = data
	}
	return json.Marshal(msg)
}

// Topic канал рассылки. Каждая комната публикует в свой топик.
type Topic string

func RoomTopic(code string) Topic {
	return Topic("room:" + code)
}

type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
	topics  map[Topic]map[string]*Client
	closed  bool
}

// NewHub создает новый Hub
func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*Client),
		topics:  make(map[Topic]map[string]*Client),
	}
}

// Run ждет отмены контекста и закрывает все соединения
func (h *Hub) Run(ctx context.Context) error {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.Stop()
			return nil
		case <-ticker.C:
			h.mu.RLock()
			slog.Debug("hub stats", "clients", len(h.clients), "topics", len(h.topics))
			h.mu.RUnlock()
		}
	}
}

// Stop отключает всех клиентов. После Stop новые клиенты не принимаются.
func (h *Hub) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	for id, client := range h.clients {
		h.removeLocked(id, client)
	}
}

// Register регистрирует нового клиента
func (h *Hub) Register(client *Client) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return ErrHubClosed
	}
	h.clients[client.ID] = client
	slog.Debug("client registered", "connID", client.ID)
	return nil
}

// Unregister удаляет клиента из хаба и всех топиков. Повторный вызов ничего не делает.
func (h *Hub) Unregister(client *Client) {
	h.Disconnect(client.ID)
}

// Disconnect закрывает очередь отправки клиента. WritePump допишет
// накопленные сообщения и закроет соединение.
func (h *Hub) Disconnect(connID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	client, ok := h.clients[connID]
	if !ok {
		return false
	}
	h.removeLocked(connID, client)
	return true
}

func (h *Hub) removeLocked(connID string, client *Client) {
	for topic, subs := range h.topics {
		delete(subs, connID)
		if len(subs) == 0 {
			delete(h.topics, topic)
		}
	}
	delete(h.clients, connID)
	close(client.Send)
	slog.Debug("client unregistered", "connID", connID)
}

// Subscribe подписывает клиента на топик
func (h *Hub) Subscribe(client *Client, topic Topic) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.ID]; !ok {
		return ErrClientClosed
	}
	subs, ok := h.topics[topic]
	if !ok {
		subs = make(map[string]*Client)
		h.topics[topic] = subs
	}
	subs[client.ID] = client
	return nil
}

func (h *Hub) Unsubscribe(client *Client, topic Topic) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if subs, ok := h.topics[topic]; ok {
		delete(subs, client.ID)
		if len(subs) == 0 {
			delete(h.topics, topic)
		}
	}
}

// Publish рассылает сообщение подписчикам топика, кроме exclude.
// Медленный клиент теряет сообщение, остальные его получают.
func (h *Hub) Publish(topic Topic, message []byte, exclude ...string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for id, client := range h.topics[topic] {
		if excluded(id, exclude) {
			continue
		}
		if h.enqueue(client, message) {
			delivered++
		}
	}
	return delivered
}

// SendTo отправляет сообщение одному соединению
func (h *Hub) SendTo(connID string, message []byte) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	client, ok := h.clients[connID]
	if !ok {
		return ErrClientClosed
	}
	if !h.enqueue(client, message) {
		return ErrClientQueueFull
	}
	return nil
}

// enqueue вызывается под h.mu, поэтому канал не может быть закрыт одновременно
func (h *Hub) enqueue(client *Client, message []byte) bool {
	select {
	case client.Send <- message:
		return true
	default:
		slog.Warn("client send channel full, message dropped", "connID", client.ID)
		return false
	}
}

func (h *Hub) Client(connID string) (*Client, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	c, ok := h.clients[connID]
	return c, ok
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Subscribers количество подписчиков топика
func (h *Hub) Subscribers(topic Topic) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics[topic])
}

func excluded(id string, exclude []string) bool {
	for _, e := range exclude {
		if e == id {
			return true
		}
	}
	return false
}
