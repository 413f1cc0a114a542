package dto

import (
	"encoding/json"

	"github.com/thereayou/party-rooms/internal/models"
)

// Входящие payload. roomCode в событиях после привязки игнорируется,
// комната берется из привязки соединения.

type CreateRoomRequest struct {
	PlayerName string `json:"playerName"`
}

type JoinRoomRequest struct {
	RoomCode   string `json:"roomCode"`
	PlayerName string `json:"playerName"`
}

type StartGameRequest struct {
	RoomCode string        `json:"roomCode"`
	Rules    *models.Rules `json:"rules,omitempty"`
}

type SelectChallengeRequest struct {
	RoomCode string `json:"roomCode"`
	Type     string `json:"type"`
}

type ChatMessageRequest struct {
	RoomCode string `json:"roomCode"`
	Message  string `json:"message"`
}

type VoiceToggleRequest struct {
	RoomCode      string `json:"roomCode"`
	Enabled       bool   `json:"enabled"`
	SelectiveMode bool   `json:"selectiveMode"`
}

type VoiceMuteRequest struct {
	RoomCode string `json:"roomCode"`
	Muted    bool   `json:"muted"`
}

// TargetRequest цель kick-player и transfer-host. playerName поддерживается
// для старых клиентов и работает только для однозначного имени.
type TargetRequest struct {
	RoomCode   string `json:"roomCode"`
	PlayerID   string `json:"playerId,omitempty"`
	PlayerName string `json:"playerName,omitempty"`
}

type RulesUpdateRequest struct {
	RoomCode string       `json:"roomCode"`
	Rules    models.Rules `json:"rules"`
}

// SignalRequest webrtc-offer, webrtc-answer и webrtc-ice-candidate
type SignalRequest struct {
	To        string          `json:"to"`
	Offer     json.RawMessage `json:"offer,omitempty"`
	Answer    json.RawMessage `json:"answer,omitempty"`
	Candidate json.RawMessage `json:"candidate,omitempty"`
}

// Исходящие payload

type RoomCreated struct {
	RoomCode   string `json:"roomCode"`
	PlayerName string `json:"playerName"`
	PlayerID   string `json:"playerId"`
}

type RoomJoined struct {
	RoomCode string          `json:"roomCode"`
	Players  []models.Player `json:"players"`
	PlayerID string          `json:"playerId"`
}

type PlayerJoined struct {
	Player  models.Player   `json:"player"`
	Players []models.Player `json:"players"`
}

type PlayerLeft struct {
	Player   string          `json:"player"`
	PlayerID string          `json:"playerId"`
	Players  []models.Player `json:"players"`
}

type RoomError struct {
	Message string `json:"message"`
}

type GameStarted struct {
	CurrentPlayer *models.Player  `json:"currentPlayer"`
	Players       []models.Player `json:"players"`
	Rules         models.Rules    `json:"rules"`
}

type ChallengeSelected struct {
	Type     string        `json:"type"`
	Question string        `json:"question"`
	Player   models.Player `json:"player"`
}

type PlayerChanged struct {
	CurrentPlayer *models.Player  `json:"currentPlayer"`
	Players       []models.Player `json:"players"`
}

type ChatMessage struct {
	Player    string `json:"player"`
	PlayerID  string `json:"playerId"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

type VoiceStatus struct {
	Player        string `json:"player"`
	PlayerID      string `json:"playerId"`
	Enabled       bool   `json:"enabled"`
	SelectiveMode bool   `json:"selectiveMode"`
}

type VoiceMuteStatus struct {
	Player   string `json:"player"`
	PlayerID string `json:"playerId"`
	Muted    bool   `json:"muted"`
}

type Kicked struct {
	Reason string `json:"reason"`
}

type HostTransferred struct {
	NewHost   string          `json:"newHost"`
	NewHostID string          `json:"newHostId"`
	Players   []models.Player `json:"players"`
}

type RulesUpdated struct {
	Rules     models.Rules `json:"rules"`
	UpdatedBy string       `json:"updatedBy"`
}

// Signal пересылаемый получателю сигнал WebRTC
type Signal struct {
	From      string          `json:"from"`
	Offer     json.RawMessage `json:"offer,omitempty"`
	Answer    json.RawMessage `json:"answer,omitempty"`
	Candidate json.RawMessage `json:"candidate,omitempty"`
}
