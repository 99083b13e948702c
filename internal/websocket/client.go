package websocket

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Client is one connection, bound to a single room for its lifetime —
// the scheduling/exchange events this bridge mirrors are always
// room-scoped, so unlike the teacher's multi-conversation chat client,
// a client here never needs to join a second room.
type Client struct {
	id     string
	userID uuid.UUID
	roomID uuid.UUID
	conn   *websocket.Conn
	hub    *Hub
	logger *slog.Logger

	send chan WSMessage
}

// NewClient builds a Client already bound to roomID; callers must have
// authorized the join (Hub.CanJoin) before constructing one.
func NewClient(userID, roomID uuid.UUID, conn *websocket.Conn, hub *Hub, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		id:     uuid.NewString(),
		userID: userID,
		roomID: roomID,
		conn:   conn,
		hub:    hub,
		logger: logger,
		send:   make(chan WSMessage, MaxQueueSize),
	}
}

// Run registers the client with the hub and starts its pumps, blocking
// until the connection closes.
func (c *Client) Run() {
	c.hub.register <- c
	go c.writePump()
	c.readPump()
}

// readPump only exists to detect disconnects and heartbeat pings; this
// bridge is a one-way mirror, so inbound application frames are ignored.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(ReadTimeout))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(ReadTimeout))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Warn("websocket read error", "client", c.id, "error", err)
			}
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(HeartbeatInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(WriteTimeout))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				c.logger.Warn("websocket write error", "client", c.id, "error", err)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(WriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
