package websocket

import "errors"

var (
	ErrClientQueueFull = errors.New("client message queue is full")
	ErrClientClosed    = errors.New("client is not connected")
	ErrInvalidMessage  = errors.New("invalid message format")
	ErrHubClosed       = errors.New("hub is shut down")
)
