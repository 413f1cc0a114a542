package game

import (
	"errors"

	"github.com/thereayou/party-rooms/internal/models"
	"github.com/thereayou/party-rooms/internal/questions"
)

var (
	ErrRoomNotFound       = errors.New("room not found")
	ErrGameStarted        = errors.New("game has already started")
	ErrGameNotStarted     = errors.New("game has not started")
	ErrNotHost            = errors.New("only the host can do that")
	ErrNotYourTurn        = errors.New("it is not your turn")
	ErrPlayerNotFound     = errors.New("player not found")
	ErrTargetIsHost       = errors.New("cannot target the host")
	ErrAmbiguousName      = errors.New("more than one player has that name")
	ErrAlreadyInRoom      = errors.New("already in this room")
	ErrInvalidName        = errors.New("player name is required")
	ErrCodeSpaceExhausted = errors.New("failed to generate unique room code")
)

// Class группа ошибок для ответа клиенту
type Class uint8

const (
	ClassInternal Class = iota
	ClassNotFound
	ClassConflict
	ClassUnauthorized
	ClassInvalid
)

func (c Class) String() string {
	switch c {
	case ClassNotFound:
		return "not_found"
	case ClassConflict:
		return "conflict"
	case ClassUnauthorized:
		return "unauthorized"
	case ClassInvalid:
		return "invalid"
	default:
		return "internal"
	}
}

// Classify относит ошибку к одной из групп
func Classify(err error) Class {
	switch {
	case errors.Is(err, ErrRoomNotFound), errors.Is(err, ErrPlayerNotFound):
		return ClassNotFound
	case errors.Is(err, ErrGameStarted), errors.Is(err, ErrGameNotStarted),
		errors.Is(err, ErrAlreadyInRoom), errors.Is(err, questions.ErrNoQuestions):
		return ClassConflict
	case errors.Is(err, ErrNotHost), errors.Is(err, ErrNotYourTurn), errors.Is(err, ErrTargetIsHost):
		return ClassUnauthorized
	case errors.Is(err, ErrInvalidName), errors.Is(err, ErrAmbiguousName),
		errors.Is(err, questions.ErrUnknownKind), errors.Is(err, models.ErrInvalidRules):
		return ClassInvalid
	default:
		return ClassInternal
	}
}
