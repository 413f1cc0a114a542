package handlers

import (
	"encoding/json"
	"log/slog"

	"github.com/thereayou/party-rooms/internal/handlers/dto"
	"github.com/thereayou/party-rooms/internal/websocket"
)

// relaySignal пересылает сигнал WebRTC соединению to с пометкой from.
// Членство в комнате у получателя не проверяется, недоставленные сигналы теряются.
func (h *GameHandler) relaySignal(event websocket.EventType) eventFunc {
	return func(client *websocket.Client, payload json.RawMessage) error {
		if state, _ := client.Binding(); state != websocket.StateBound {
			return ErrNotInRoom
		}
		req, err := decode[dto.SignalRequest](payload)
		if err != nil {
			return err
		}
		if req.To == "" {
			return nil
		}

		data, err := websocket.Encode(event, dto.Signal{
			From:      client.ID,
			Offer:     req.Offer,
			Answer:    req.Answer,
			Candidate: req.Candidate,
		})
		if err != nil {
			return err
		}
		if err := h.hub.SendTo(req.To, data); err != nil {
			slog.Debug("signal dropped", "event", event, "from", client.ID, "to", req.To, "error", err)
		}
		return nil
	}
}
