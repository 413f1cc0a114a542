package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/thereayou/party-rooms/internal/game"
	"github.com/thereayou/party-rooms/internal/handlers/dto"
	"github.com/thereayou/party-rooms/internal/models"
	"github.com/thereayou/party-rooms/internal/questions"
	"github.com/thereayou/party-rooms/internal/websocket"
)

const (
	maxChatLength = 1000
	kickReason    = "Kicked by host"

	// формат Date.toISOString, его ждут клиенты
	isoMillis = "2006-01-02T15:04:05.000Z07:00"
)

type eventFunc func(client *websocket.Client, payload json.RawMessage) error

// GameHandler ведет соединение от Unbound до Closed и переводит события в операции над комнатами
type GameHandler struct {
	rooms  *game.Registry
	hub    *websocket.Hub
	routes map[websocket.EventType]eventFunc
}

func NewGameHandler(rooms *game.Registry, hub *websocket.Hub) *GameHandler {
	h := &GameHandler{rooms: rooms, hub: hub}
	h.routes = map[websocket.EventType]eventFunc{
		websocket.EventCreateRoom:      h.createRoom,
		websocket.EventJoinRoom:        h.joinRoom,
		websocket.EventStartGame:       h.startGame,
		websocket.EventSelectChallenge: h.selectChallenge,
		websocket.EventNextPlayer:      h.nextPlayer,
		websocket.EventChatMessage:     h.chatMessage,
		websocket.EventVoiceToggle:     h.voiceToggle,
		websocket.EventVoiceMuteToggle: h.voiceMuteToggle,
		websocket.EventKickPlayer:      h.kickPlayer,
		websocket.EventTransferHost:    h.transferHost,
		websocket.EventRulesUpdated:    h.rulesUpdated,
		websocket.EventWebRTCOffer:     h.relaySignal(websocket.EventWebRTCOffer),
		websocket.EventWebRTCAnswer:    h.relaySignal(websocket.EventWebRTCAnswer),
		websocket.EventICECandidate:    h.relaySignal(websocket.EventICECandidate),
	}
	return h
}

func (h *GameHandler) HandleMessage(client *websocket.Client, msg *websocket.Message) error {
	fn, ok := h.routes[msg.Event]
	if !ok {
		slog.Debug("unknown event", "connID", client.ID, "event", msg.Event)
		return nil
	}

	if err := fn(client, msg.Payload); err != nil {
		h.reject(client, msg.Event, err)
		return err
	}
	return nil
}

// HandleDisconnect удаляет игрока из комнаты при закрытии соединения
func (h *GameHandler) HandleDisconnect(client *websocket.Client) {
	code, wasBound := client.MarkClosed()
	if !wasBound {
		return
	}

	res, destroyed, err := h.rooms.Leave(code, client.ID)
	if err != nil {
		// игрока уже исключили
		if !errors.Is(err, game.ErrPlayerNotFound) && !errors.Is(err, game.ErrRoomNotFound) {
			slog.Error("leave room failed", "roomCode", code, "connID", client.ID, "error", err)
		}
		return
	}

	slog.Info("player left", "roomCode", code, "connID", client.ID, "player", res.Player.Name)
	if destroyed {
		slog.Info("room destroyed", "roomCode", code)
		return
	}
	h.announceRemoval(code, res)
}

// TurnExpired рассылает смену хода по таймеру
func (h *GameHandler) TurnExpired(code string, snap game.Snapshot) {
	slog.Info("turn timer expired", "roomCode", code)
	h.publish(code, websocket.EventPlayerChanged, dto.PlayerChanged{
		CurrentPlayer: snap.CurrentPlayer,
		Players:       snap.Players,
	})
}

func (h *GameHandler) createRoom(client *websocket.Client, payload json.RawMessage) error {
	req, err := decode[dto.CreateRoomRequest](payload)
	if err != nil {
		return err
	}
	if state, _ := client.Binding(); state != websocket.StateUnbound {
		return ErrAlreadyInRoom
	}

	room, host, err := h.rooms.Create(client.ID, req.PlayerName)
	if err != nil {
		return err
	}
	if err := h.bind(client, room.Code(), host); err != nil {
		return err
	}

	slog.Info("room created", "roomCode", room.Code(), "connID", client.ID, "player", host.Name)
	return client.SendEvent(websocket.EventRoomCreated, dto.RoomCreated{
		RoomCode:   room.Code(),
		PlayerName: host.Name,
		PlayerID:   host.ID,
	})
}

func (h *GameHandler) joinRoom(client *websocket.Client, payload json.RawMessage) error {
	req, err := decode[dto.JoinRoomRequest](payload)
	if err != nil {
		return err
	}
	if state, _ := client.Binding(); state != websocket.StateUnbound {
		return ErrAlreadyInRoom
	}

	room, ok := h.rooms.Get(req.RoomCode)
	if !ok {
		return game.ErrRoomNotFound
	}
	player, err := room.AddPlayer(client.ID, req.PlayerName)
	if err != nil {
		return err
	}
	if err := h.bind(client, room.Code(), player); err != nil {
		return err
	}

	players := room.Players()
	h.publish(room.Code(), websocket.EventPlayerJoined, dto.PlayerJoined{
		Player:  player,
		Players: players,
	}, client.ID)

	slog.Info("player joined", "roomCode", room.Code(), "connID", client.ID, "player", player.Name)
	return client.SendEvent(websocket.EventRoomJoined, dto.RoomJoined{
		RoomCode: room.Code(),
		Players:  players,
		PlayerID: client.ID,
	})
}

func (h *GameHandler) startGame(client *websocket.Client, payload json.RawMessage) error {
	room, err := h.boundRoom(client)
	if err != nil {
		return err
	}
	req, err := decode[dto.StartGameRequest](payload)
	if err != nil {
		return err
	}

	snap, err := room.Start(client.ID, req.Rules)
	if err != nil {
		return err
	}

	slog.Info("game started", "roomCode", snap.Code, "players", len(snap.Players))
	h.publish(snap.Code, websocket.EventGameStarted, dto.GameStarted{
		CurrentPlayer: snap.CurrentPlayer,
		Players:       snap.Players,
		Rules:         snap.Rules,
	})
	return nil
}

func (h *GameHandler) selectChallenge(client *websocket.Client, payload json.RawMessage) error {
	room, err := h.boundRoom(client)
	if err != nil {
		return err
	}
	req, err := decode[dto.SelectChallengeRequest](payload)
	if err != nil {
		return err
	}
	kind, err := questions.ParseKind(req.Type)
	if err != nil {
		return err
	}

	ch, err := room.SelectChallenge(client.ID, kind)
	if err != nil {
		return err
	}

	h.publish(room.Code(), websocket.EventChallengeSelected, dto.ChallengeSelected{
		Type:     ch.Kind.String(),
		Question: ch.Question,
		Player:   ch.Player,
	})
	return nil
}

func (h *GameHandler) nextPlayer(client *websocket.Client, _ json.RawMessage) error {
	room, err := h.boundRoom(client)
	if err != nil {
		return err
	}

	snap, err := room.AdvanceTurn(client.ID)
	if err != nil {
		return err
	}

	h.publish(snap.Code, websocket.EventPlayerChanged, dto.PlayerChanged{
		CurrentPlayer: snap.CurrentPlayer,
		Players:       snap.Players,
	})
	return nil
}

func (h *GameHandler) chatMessage(client *websocket.Client, payload json.RawMessage) error {
	room, err := h.boundRoom(client)
	if err != nil {
		return err
	}
	req, err := decode[dto.ChatMessageRequest](payload)
	if err != nil {
		return err
	}

	player, ok := room.Player(client.ID)
	if !ok {
		return game.ErrPlayerNotFound
	}
	text := strings.TrimSpace(req.Message)
	if text == "" {
		return nil
	}
	if r := []rune(text); len(r) > maxChatLength {
		text = string(r[:maxChatLength])
	}

	h.publish(room.Code(), websocket.EventChatMessage, dto.ChatMessage{
		Player:    player.Name,
		PlayerID:  player.ID,
		Message:   text,
		Timestamp: time.Now().UTC().Format(isoMillis),
	})
	return nil
}

func (h *GameHandler) voiceToggle(client *websocket.Client, payload json.RawMessage) error {
	room, err := h.boundRoom(client)
	if err != nil {
		return err
	}
	req, err := decode[dto.VoiceToggleRequest](payload)
	if err != nil {
		return err
	}

	player, err := room.SetVoice(client.ID, req.Enabled, req.SelectiveMode)
	if err != nil {
		return err
	}

	h.publish(room.Code(), websocket.EventVoiceStatus, dto.VoiceStatus{
		Player:        player.Name,
		PlayerID:      player.ID,
		Enabled:       player.VoiceEnabled,
		SelectiveMode: player.SelectiveVoice,
	})
	return nil
}

func (h *GameHandler) voiceMuteToggle(client *websocket.Client, payload json.RawMessage) error {
	room, err := h.boundRoom(client)
	if err != nil {
		return err
	}
	req, err := decode[dto.VoiceMuteRequest](payload)
	if err != nil {
		return err
	}

	player, err := room.SetMute(client.ID, req.Muted)
	if err != nil {
		return err
	}

	h.publish(room.Code(), websocket.EventVoiceMuteStatus, dto.VoiceMuteStatus{
		Player:   player.Name,
		PlayerID: player.ID,
		Muted:    player.VoiceMuted,
	})
	return nil
}

func (h *GameHandler) kickPlayer(client *websocket.Client, payload json.RawMessage) error {
	room, err := h.boundRoom(client)
	if err != nil {
		return err
	}
	req, err := decode[dto.TargetRequest](payload)
	if err != nil {
		return err
	}
	targetID, err := resolveTarget(room, req)
	if err != nil {
		return err
	}

	res, err := room.Kick(client.ID, targetID)
	if err != nil {
		return err
	}

	// kicked уходит раньше закрытия очереди, WritePump успеет его записать
	if target, ok := h.hub.Client(targetID); ok {
		target.MarkClosed()
		if err := target.SendEvent(websocket.EventKicked, dto.Kicked{Reason: kickReason}); err != nil {
			slog.Debug("kicked not delivered", "connID", targetID, "error", err)
		}
		h.hub.Disconnect(targetID)
	}

	slog.Info("player kicked", "roomCode", room.Code(), "connID", targetID, "player", res.Player.Name)
	h.announceRemoval(room.Code(), res)
	return nil
}

func (h *GameHandler) transferHost(client *websocket.Client, payload json.RawMessage) error {
	room, err := h.boundRoom(client)
	if err != nil {
		return err
	}
	req, err := decode[dto.TargetRequest](payload)
	if err != nil {
		return err
	}
	targetID, err := resolveTarget(room, req)
	if err != nil {
		return err
	}

	newHost, snap, err := room.TransferHost(client.ID, targetID)
	if err != nil {
		return err
	}

	slog.Info("host transferred", "roomCode", snap.Code, "connID", newHost.ID, "player", newHost.Name)
	h.publish(snap.Code, websocket.EventHostTransferred, dto.HostTransferred{
		NewHost:   newHost.Name,
		NewHostID: newHost.ID,
		Players:   snap.Players,
	})
	return nil
}

func (h *GameHandler) rulesUpdated(client *websocket.Client, payload json.RawMessage) error {
	room, err := h.boundRoom(client)
	if err != nil {
		return err
	}
	req, err := decode[dto.RulesUpdateRequest](payload)
	if err != nil {
		return err
	}

	by, err := room.UpdateRules(client.ID, req.Rules)
	if err != nil {
		return err
	}

	h.publish(room.Code(), websocket.EventRulesUpdated, dto.RulesUpdated{
		Rules:     req.Rules,
		UpdatedBy: by.Name,
	})
	return nil
}

// bind подписывает соединение на топик комнаты и фиксирует привязку.
// При ошибке игрок удаляется из комнаты.
func (h *GameHandler) bind(client *websocket.Client, code string, player models.Player) error {
	err := h.hub.Subscribe(client, websocket.RoomTopic(code))
	if err == nil && !client.Bind(code, player.Name) {
		h.hub.Unsubscribe(client, websocket.RoomTopic(code))
		err = ErrAlreadyInRoom
	}
	if err != nil {
		if _, _, leaveErr := h.rooms.Leave(code, client.ID); leaveErr != nil {
			slog.Warn("rollback join failed", "roomCode", code, "connID", client.ID, "error", leaveErr)
		}
		return err
	}
	return nil
}

func (h *GameHandler) boundRoom(client *websocket.Client) (*game.Room, error) {
	state, code := client.Binding()
	if state != websocket.StateBound {
		return nil, ErrNotInRoom
	}
	room, ok := h.rooms.Get(code)
	if !ok {
		return nil, game.ErrRoomNotFound
	}
	return room, nil
}

func (h *GameHandler) announceRemoval(code string, res game.Removal) {
	h.publish(code, websocket.EventPlayerLeft, dto.PlayerLeft{
		Player:   res.Player.Name,
		PlayerID: res.Player.ID,
		Players:  res.Snapshot.Players,
	})
	if res.NewHost != nil {
		h.publish(code, websocket.EventHostTransferred, dto.HostTransferred{
			NewHost:   res.NewHost.Name,
			NewHostID: res.NewHost.ID,
			Players:   res.Snapshot.Players,
		})
	}
	if res.TurnChanged {
		h.publish(code, websocket.EventPlayerChanged, dto.PlayerChanged{
			CurrentPlayer: res.Snapshot.CurrentPlayer,
			Players:       res.Snapshot.Players,
		})
	}
}

func (h *GameHandler) publish(code string, event websocket.EventType, payload any, exclude ...string) {
	data, err := websocket.Encode(event, payload)
	if err != nil {
		slog.Error("encode event failed", "roomCode", code, "event", event, "error", err)
		return
	}
	h.hub.Publish(websocket.RoomTopic(code), data, exclude...)
}

func (h *GameHandler) reject(client *websocket.Client, event websocket.EventType, err error) {
	msg, known := clientMessage(err)
	if !known {
		slog.Error("event failed", "connID", client.ID, "event", event, "error", err)
	}
	if sendErr := client.SendEvent(websocket.EventRoomError, dto.RoomError{Message: msg}); sendErr != nil {
		slog.Debug("room-error not delivered", "connID", client.ID, "error", sendErr)
	}
}

func resolveTarget(room *game.Room, req dto.TargetRequest) (string, error) {
	if req.PlayerID != "" {
		return req.PlayerID, nil
	}
	if req.PlayerName != "" {
		return room.ResolveTarget(req.PlayerName)
	}
	return "", game.ErrPlayerNotFound
}

func decode[T any](payload json.RawMessage) (T, error) {
	var v T
	if len(payload) == 0 || string(payload) == "null" {
		return v, nil
	}
	if err := json.Unmarshal(payload, &v); err != nil {
		return v, websocket.ErrInvalidMessage
	}
	return v, nil
}
