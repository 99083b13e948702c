package websocket

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/hangawi/coordination-core/internal/dto"
	"github.com/hangawi/coordination-core/internal/utils"
)

// Manager upgrades GET /api/coordination/rooms/:id/ws into a Client
// bound to that room, after verifying the bearer token and membership.
type Manager struct {
	hub       *Hub
	jwtSecret string
	upgrader  websocket.Upgrader
	logger    *slog.Logger
}

// NewManager builds a Manager serving upgrades for hub.
func NewManager(hub *Hub, jwtSecret string, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		hub:       hub,
		jwtSecret: jwtSecret,
		logger:    logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:   1024,
			WriteBufferSize:  1024,
			HandshakeTimeout: 10 * time.Second,
			CheckOrigin:      func(r *http.Request) bool { return true },
		},
	}
}

// HandleUpgrade is the gin.HandlerFunc for the room's websocket route.
// The bearer token is read from the `token` query parameter since
// browsers can't set Authorization headers on a WebSocket handshake.
func (m *Manager) HandleUpgrade(c *gin.Context) {
	roomID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(err, "invalid room id"))
		return
	}

	token := c.Query("token")
	claims, err := utils.ValidateJWT(token, m.jwtSecret)
	if err != nil {
		c.JSON(http.StatusUnauthorized, dto.NewUnauthorizedError("invalid or expired token"))
		return
	}

	if !m.hub.CanJoin(c.Request.Context(), roomID, claims.UserID) {
		c.JSON(http.StatusForbidden, dto.NewForbiddenError("이 방의 멤버가 아닙니다"))
		return
	}

	conn, err := m.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		m.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	client := NewClient(claims.UserID, roomID, conn, m.hub, m.logger)
	client.Run()
}
