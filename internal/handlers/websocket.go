package handlers

import (
	"log/slog"
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	ws "github.com/thereayou/party-rooms/internal/websocket"
)

// WebSocketHandler управляет WebSocket соединениями
type WebSocketHandler struct {
	hub        *ws.Hub
	handler    ws.MessageHandler
	upgrader   websocket.Upgrader
	sendBuffer int
}

// NewWebSocketHandler создает новый WebSocket handler. Пустой allowedOrigins разрешает любой origin.
func NewWebSocketHandler(hub *ws.Hub, handler ws.MessageHandler, sendBuffer int, allowedOrigins []string) *WebSocketHandler {
	return &WebSocketHandler{
		hub:        hub,
		handler:    handler,
		sendBuffer: sendBuffer,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				if len(allowedOrigins) == 0 {
					return true
				}
				return slices.Contains(allowedOrigins, r.Header.Get("Origin"))
			},
		},
	}
}

// HandleWebSocket обрабатывает WebSocket соединения
func (h *WebSocketHandler) HandleWebSocket(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "remote", c.ClientIP(), "error", err)
		return
	}

	client := ws.NewClient(h.hub, conn, h.sendBuffer)
	if err := h.hub.Register(client); err != nil {
		conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
		conn.Close()
		return
	}
	slog.Debug("client connected", "connID", client.ID, "remote", c.ClientIP())

	go client.WritePump()
	go client.ReadPump(h.handler)
}
