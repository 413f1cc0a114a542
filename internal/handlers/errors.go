package handlers

import (
	"errors"

	"github.com/thereayou/party-rooms/internal/game"
	"github.com/thereayou/party-rooms/internal/models"
	"github.com/thereayou/party-rooms/internal/questions"
	"github.com/thereayou/party-rooms/internal/websocket"
)

var (
	ErrNotInRoom     = errors.New("connection is not in a room")
	ErrAlreadyInRoom = errors.New("connection is already in a room")
)

// clientMessages тексты room-error для известных ошибок
var clientMessages = []struct {
	err error
	msg string
}{
	{game.ErrRoomNotFound, "Room not found"},
	{game.ErrGameStarted, "Game has already started"},
	{game.ErrGameNotStarted, "Game has not started"},
	{game.ErrNotHost, "Only the host can do that"},
	{game.ErrNotYourTurn, "It is not your turn"},
	{game.ErrPlayerNotFound, "Player not found"},
	{game.ErrTargetIsHost, "Cannot target the host"},
	{game.ErrAmbiguousName, "More than one player has that name"},
	{game.ErrInvalidName, "Player name is required"},
	{game.ErrAlreadyInRoom, "Already in this room"},
	{game.ErrCodeSpaceExhausted, "Could not create a room, try again"},
	{questions.ErrUnknownKind, "Unknown challenge type"},
	{questions.ErrNoQuestions, "No questions available"},
	{models.ErrInvalidRules, "Invalid game rules"},
	{ErrNotInRoom, "Not in a room"},
	{ErrAlreadyInRoom, "Already in a room"},
	{websocket.ErrInvalidMessage, "Invalid message format"},
}

// clientMessage возвращает текст ошибки для клиента и признак известной ошибки
func clientMessage(err error) (string, bool) {
	for _, m := range clientMessages {
		if errors.Is(err, m.err) {
			return m.msg, true
		}
	}
	return "Internal server error", false
}
