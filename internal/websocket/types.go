// Package websocket is the one C10 consumer that mirrors eventbus events
// to every member connected to a room (spec.md §6.4): schedule-updated,
// suggestion-updated, request-created, request-resolved.
package websocket

import (
	"time"

	"github.com/google/uuid"
)

// WebSocket message types
const (
	MessageTypeJoin      = "join"
	MessageTypeLeave     = "leave"
	MessageTypeEvent     = "event"
	MessageTypeError     = "error"
	MessageTypeHeartbeat = "heartbeat"
)

// Connection limits and timeouts, unchanged from the chat hub this
// package is adapted from.
const (
	MaxConnections  = 10000
	MaxRoomsPerUser = 100

	MaxMessageSize = 4096
	MaxQueueSize   = 256

	WriteTimeout      = 10 * time.Second
	ReadTimeout       = 60 * time.Second
	HeartbeatInterval = 30 * time.Second
	PongTimeout       = 60 * time.Second
)

// WSMessage is the envelope the hub writes to clients: Event/Data carry
// one of the eventbus topics and its payload verbatim. Inbound frames are
// read only to detect disconnects and are otherwise discarded.
type WSMessage struct {
	Type      string      `json:"type"`
	Event     string      `json:"event,omitempty"`
	RoomID    *uuid.UUID  `json:"roomId,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Error     *WSError    `json:"error,omitempty"`
}

// WSError carries a machine code and human message for a rejected frame.
type WSError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// ConnectionInfo describes one live client connection. Hub.Stats reports
// per-room connection counts and does not return it.
type ConnectionInfo struct {
	UserID       uuid.UUID          `json:"userId"`
	ConnectionID string             `json:"connectionId"`
	ConnectedAt  time.Time          `json:"connectedAt"`
	Rooms        map[uuid.UUID]bool `json:"rooms"`
}
