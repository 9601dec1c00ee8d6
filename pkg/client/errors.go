package client

import (
	"errors"
	"fmt"
)

var (
	// ErrNotConnected is returned when the websocket is not established.
	ErrNotConnected = errors.New("client: not connected")

	// ErrAlreadyConnected is returned by Connect on a connected client.
	// Clients do not reconnect; dial a fresh one instead.
	ErrAlreadyConnected = errors.New("client: already connected")

	// ErrPingTimeout is returned when the daemon does not answer a ping.
	ErrPingTimeout = errors.New("client: ping timed out")
)

// APIError is a non-200 response from the daemon's REST API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("daemon: HTTP %d", e.Status)
	}
	return fmt.Sprintf("daemon: HTTP %d: %s", e.Status, e.Message)
}
