package domain

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrSessionClosed = errors.New("session closed")
	ErrNotConnected  = errors.New("not connected")
	ErrWSDisconnect  = errors.New("websocket disconnected")
)
