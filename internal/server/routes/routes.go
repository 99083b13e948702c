// Package routes wires the /api/coordination surface spec.md §6.1 defines.
package routes

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/hangawi/coordination-core/internal/config"
	"github.com/hangawi/coordination-core/internal/handlers"
	"github.com/hangawi/coordination-core/internal/middlewares"
	"github.com/hangawi/coordination-core/internal/services"
	"github.com/hangawi/coordination-core/internal/websocket"
)

// Setup registers every route in spec.md §6.1 under /api/coordination,
// gating room-scoped operations with AuthMiddleware and RequireRoomMember,
// plus the room's websocket bridge (C10 consumer).
func Setup(router *gin.Engine, cfg *config.Config, coordination *services.CoordinationService, wsManager *websocket.Manager) {
	router.Use(middlewares.CustomCORS())

	coordinationHandler := handlers.NewCoordinationHandler(coordination)

	isMember := func(ctx context.Context, roomID, userID uuid.UUID) (bool, error) {
		return coordination.IsMember(ctx, roomID, userID)
	}

	api := router.Group("/api/coordination")
	api.Use(middlewares.AuthMiddleware(cfg.JWTSecret))

	// Room lifecycle (C1-C7).
	api.POST("/rooms", coordinationHandler.CreateRoom)

	rooms := api.Group("/rooms/:id")
	rooms.Use(middlewares.RequireRoomMember(isMember))
	{
		rooms.GET("", coordinationHandler.GetRoom)
		rooms.POST("/run-schedule", coordinationHandler.RunSchedule)
		rooms.POST("/confirm-schedule", coordinationHandler.ConfirmSchedule)
		rooms.POST("/parse-exchange-request", coordinationHandler.ParseExchangeRequest)
		rooms.POST("/smart-exchange", coordinationHandler.SmartExchange)
	}

	// Request resolution (C9); scoped by request-id, room named in the body.
	requests := api.Group("/requests")
	{
		requests.POST("/:id/approve", coordinationHandler.ApproveRequest)
		requests.POST("/:id/reject", coordinationHandler.RejectRequest)
		requests.DELETE("/:id", coordinationHandler.CancelRequest)
	}

	// Websocket bridge; auth happens inside HandleUpgrade (token query
	// param, browsers can't set Authorization on the handshake), so it
	// sits outside the AuthMiddleware-gated group.
	if wsManager != nil {
		router.GET("/api/coordination/rooms/:id/ws", wsManager.HandleUpgrade)
	}
}
