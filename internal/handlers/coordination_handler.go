// Package handlers implements the Gin HTTP surface for
// /api/coordination/*, translating CoordinationService calls into the
// envelopes spec.md §6.2 defines.
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/hangawi/coordination-core/internal/dto"
	"github.com/hangawi/coordination-core/internal/models"
	"github.com/hangawi/coordination-core/internal/services"
)

// CoordinationHandler handles coordination-room HTTP requests.
type CoordinationHandler struct {
	service *services.CoordinationService
}

// NewCoordinationHandler builds a CoordinationHandler.
func NewCoordinationHandler(service *services.CoordinationService) *CoordinationHandler {
	return &CoordinationHandler{service: service}
}

func currentUserID(c *gin.Context) (uuid.UUID, error) {
	raw, ok := c.Get("user_id")
	if !ok {
		return uuid.Nil, &dto.ErrNotAuthorized{Message: "authentication required"}
	}
	return uuid.Parse(raw.(string))
}

func (h *CoordinationHandler) fail(c *gin.Context, err error) {
	c.JSON(dto.StatusFor(err), dto.NewCoordinationFailure(err))
}

// createRoomRequest is the POST /rooms body.
type createRoomRequest struct {
	Name     string              `json:"name" binding:"required"`
	Settings models.RoomSettings `json:"settings"`
}

// CreateRoom handles POST /rooms.
func (h *CoordinationHandler) CreateRoom(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	var req createRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.CoordinationFailure{Message: err.Error()})
		return
	}

	doc, err := h.service.CreateRoom(c.Request.Context(), req.Name, userID, req.Settings)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.CoordinationSuccess{Success: true, Message: "방이 생성되었습니다", Data: doc})
}

// GetRoom handles GET /rooms/:id.
func (h *CoordinationHandler) GetRoom(c *gin.Context) {
	roomID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.CoordinationFailure{Message: "invalid room id"})
		return
	}
	doc, err := h.service.GetRoom(c.Request.Context(), roomID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.CoordinationSuccess{Success: true, Message: "ok", Data: doc})
}

// runScheduleRequest is the POST /rooms/:id/run-schedule body.
type runScheduleRequest struct {
	WeekStart        string `json:"weekStart" binding:"required"` // "YYYY-MM-DD", the week's Monday
	ClassDurationMin int    `json:"classDurationMin" binding:"required"`
}

// RunSchedule handles POST /rooms/:id/run-schedule.
func (h *CoordinationHandler) RunSchedule(c *gin.Context) {
	roomID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.CoordinationFailure{Message: "invalid room id"})
		return
	}
	var req runScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.CoordinationFailure{Message: err.Error()})
		return
	}
	weekStart, err := time.Parse("2006-01-02", req.WeekStart)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.CoordinationFailure{Message: "weekStart must be YYYY-MM-DD"})
		return
	}

	doc, err := h.service.RunSchedule(c.Request.Context(), roomID, weekStart, req.ClassDurationMin)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.CoordinationSuccess{Success: true, Message: "일정이 배정되었습니다", Data: doc})
}

// ConfirmSchedule handles POST /rooms/:id/confirm-schedule.
func (h *CoordinationHandler) ConfirmSchedule(c *gin.Context) {
	roomID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.CoordinationFailure{Message: "invalid room id"})
		return
	}
	doc, err := h.service.ConfirmSchedule(c.Request.Context(), roomID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.CoordinationSuccess{Success: true, Message: "일정이 확정되었습니다", Data: doc})
}

// parseExchangeRequestBody is the POST /rooms/:id/parse-exchange-request body.
type parseExchangeRequestBody struct {
	Text string `json:"text" binding:"required"`
}

// ParseExchangeRequest handles POST /rooms/:id/parse-exchange-request,
// delegating to the external NL parser (spec.md §1 out-of-scope
// collaborator) and returning the resulting Parsed Intent unapplied.
func (h *CoordinationHandler) ParseExchangeRequest(c *gin.Context) {
	roomID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.CoordinationFailure{Message: "invalid room id"})
		return
	}
	userID, err := currentUserID(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	var req parseExchangeRequestBody
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.CoordinationFailure{Message: err.Error()})
		return
	}

	intent, err := h.service.ParseExchangeRequest(c.Request.Context(), roomID, req.Text, userID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.CoordinationSuccess{Success: true, Message: "ok", Data: intent})
}

// SmartExchange handles POST /rooms/:id/smart-exchange: the body is a
// models.ParsedIntent (normally the output of ParseExchangeRequest,
// round-tripped by the client); RequesterID is always overwritten from
// the authenticated caller, never trusted from the body.
func (h *CoordinationHandler) SmartExchange(c *gin.Context) {
	roomID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.CoordinationFailure{Message: "invalid room id"})
		return
	}
	userID, err := currentUserID(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	var intent models.ParsedIntent
	if err := c.ShouldBindJSON(&intent); err != nil {
		c.JSON(http.StatusBadRequest, dto.CoordinationFailure{Message: err.Error()})
		return
	}
	intent.RequesterID = userID

	outcome, err := h.service.SmartExchange(c.Request.Context(), roomID, intent)
	if err != nil {
		// Conflict-escalated-to-Case-C is not an error in the envelope
		// sense; every other error maps through dto.StatusFor.
		h.fail(c, err)
		return
	}

	resp := dto.CoordinationSuccess{
		Success:    true,
		Message:    outcome.Message,
		TargetDay:  outcome.TargetDate,
		TargetTime: outcome.TargetTime,
	}
	switch outcome.Case {
	case "immediate_swap", "auto_placed":
		resp.ImmediateSwap = boolPtr(true)
	case "yield_request":
		resp.NeedsApproval = boolPtr(true)
	}
	c.JSON(http.StatusOK, resp)
}

func boolPtr(b bool) *bool { return &b }

// ApproveRequest handles POST /requests/:id/approve.
func (h *CoordinationHandler) ApproveRequest(c *gin.Context) {
	h.resolveRequest(c, func(roomID, requestID, userID uuid.UUID) (string, error) {
		outcome, err := h.service.ApproveRequest(c.Request.Context(), roomID, requestID, userID)
		return outcome.Message, err
	})
}

// RejectRequest handles POST /requests/:id/reject.
func (h *CoordinationHandler) RejectRequest(c *gin.Context) {
	h.resolveRequest(c, func(roomID, requestID, userID uuid.UUID) (string, error) {
		outcome, err := h.service.RejectRequest(c.Request.Context(), roomID, requestID, userID)
		return outcome.Message, err
	})
}

// CancelRequest handles DELETE /requests/:id.
func (h *CoordinationHandler) CancelRequest(c *gin.Context) {
	h.resolveRequest(c, func(roomID, requestID, userID uuid.UUID) (string, error) {
		outcome, err := h.service.CancelRequest(c.Request.Context(), roomID, requestID, userID)
		return outcome.Message, err
	})
}

// requestActionBody carries the roomId every request-resolution route
// needs; spec.md's routes are scoped by request-id alone, so the room is
// named in the body rather than the path.
type requestActionBody struct {
	RoomID uuid.UUID `json:"roomId" binding:"required"`
}

func (h *CoordinationHandler) resolveRequest(c *gin.Context, apply func(roomID, requestID, userID uuid.UUID) (string, error)) {
	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.CoordinationFailure{Message: "invalid request id"})
		return
	}
	userID, err := currentUserID(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	var body requestActionBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, dto.CoordinationFailure{Message: err.Error()})
		return
	}

	message, err := apply(body.RoomID, requestID, userID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.CoordinationSuccess{Success: true, Message: message})
}
