// Package requeststate implements the Request State Machine (C9): the
// lifecycle of a pending exchange request (approve/reject/cancel) and the
// stale-request detection spec.md §4.9's concurrency clause requires.
package requeststate

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hangawi/coordination-core/internal/dto"
	"github.com/hangawi/coordination-core/internal/models"
	"github.com/hangawi/coordination-core/internal/ports"
	"github.com/hangawi/coordination-core/internal/recompute"
	"github.com/hangawi/coordination-core/internal/slotstore"
)

// Machine applies approve/reject/cancel transitions to a room's Requests.
type Machine struct {
	recomputer *recompute.Recomputer
	activity   ports.ActivityLogAppender
}

// New builds a Machine.
func New(recomputer *recompute.Recomputer, activity ports.ActivityLogAppender) *Machine {
	return &Machine{recomputer: recomputer, activity: activity}
}

// Outcome describes what Approve/Reject/Cancel did, for the HTTP layer.
type Outcome struct {
	Request models.Request
	Status  models.RequestStatus
	Message string
}

func findRequest(room *models.RoomDocument, requestID uuid.UUID) (int, *models.Request) {
	for i := range room.Requests {
		if room.Requests[i].ID == requestID && room.Requests[i].Status == models.RequestPending {
			return i, &room.Requests[i]
		}
	}
	return -1, nil
}

func removeRequest(room *models.RoomDocument, idx int) {
	room.Requests = append(room.Requests[:idx], room.Requests[idx+1:]...)
}

// Approve implements the approve transition of spec.md §4.9: the target
// user's conflicting slots move to the requester's old window (a mirrored
// Case A), the requester's slots move to the proposed window, both
// affected dates are recomputed, and the Request is removed. If the
// optimistic staleness check fails (the requester's or target's relevant
// slots changed since the Request was created), the approval fails with
// ErrStaleRequest and the Request transitions to rejected instead.
func (m *Machine) Approve(ctx context.Context, room *models.RoomDocument, requestID uuid.UUID, approverID uuid.UUID, now time.Time) (Outcome, error) {
	idx, req := findRequest(room, requestID)
	if req == nil {
		return Outcome{}, &dto.ErrNotFound{Resource: "request", Message: "요청을 찾을 수 없습니다"}
	}
	if req.TargetUserID == nil || *req.TargetUserID != approverID {
		return Outcome{}, &dto.ErrNotAuthorized{Message: "이 요청을 승인할 권한이 없습니다"}
	}

	if stale := m.isStale(room, *req); stale {
		resolved := *req
		resolved.Status = models.RequestRejected
		resolved.ResolutionNote = "stale_request"
		t := now
		resolved.ResolvedAt = &t
		removeRequest(room, idx)
		m.logActivity(ctx, room.ID, approverID, "request_auto_rejected_stale", req.ID.String())
		return Outcome{Request: resolved, Status: models.RequestRejected, Message: "요청이 만료되어 자동으로 거절되었습니다"}, &dto.ErrStaleRequest{Message: "요청 생성 이후 일정이 변경되어 승인할 수 없습니다"}
	}

	mode := room.EffectiveTravelMode()
	store := slotstore.New(room)

	// Move the target user's conflicting slots to the requester's old
	// window (mirrored Case A for the other party).
	oldSourceDate := ""
	if len(req.SourceSlots) > 0 {
		oldSourceDate = req.SourceSlots[0].Date
	}
	targetOccupant := slotsAt(room, req.TargetSlot.Date, req.TargetSlot.StartMin, req.TargetSlot.EndMin, *req.TargetUserID)
	var targetIDs []uuid.UUID
	for _, sl := range targetOccupant {
		targetIDs = append(targetIDs, sl.ID)
	}
	if len(targetOccupant) > 0 && oldSourceDate != "" {
		duration := req.SourceSlots[len(req.SourceSlots)-1].EndMin - req.SourceSlots[0].StartMin
		store.RemoveByID(targetIDs...)
		mirrored := models.Slot{
			ID:       uuid.New(),
			UserID:   *req.TargetUserID,
			Date:     oldSourceDate,
			StartMin: req.SourceSlots[0].StartMin,
			EndMin:   req.SourceSlots[0].StartMin + duration,
			Subject:  models.SubjectExchangeResult,
			Status:   models.SlotProposed,
		}
		if err := store.Add(mirrored); err != nil {
			return Outcome{}, fmt.Errorf("requeststate: mirrored placement conflicts: %w", err)
		}
	}

	// Move the requester's slots to the proposed window.
	var requesterIDs []uuid.UUID
	for _, s := range req.SourceSlots {
		requesterIDs = append(requesterIDs, s.SlotID)
	}
	store.RemoveByID(requesterIDs...)
	newSlot := models.Slot{
		ID:       uuid.New(),
		UserID:   req.RequesterID,
		Date:     req.TargetSlot.Date,
		StartMin: req.TargetSlot.StartMin,
		EndMin:   req.TargetSlot.EndMin,
		Subject:  models.SubjectExchangeResult,
		Status:   models.SlotProposed,
	}
	if err := store.Add(newSlot); err != nil {
		return Outcome{}, fmt.Errorf("requeststate: requester placement conflicts: %w", err)
	}

	if mode != models.TravelModeNone {
		if oldSourceDate != "" {
			if d, err := time.Parse("2006-01-02", oldSourceDate); err == nil {
				if err := m.recomputer.Run(ctx, room, d, mode, recompute.Options{}); err != nil {
					return Outcome{}, err
				}
			}
		}
		if d, err := time.Parse("2006-01-02", req.TargetSlot.Date); err == nil {
			if err := m.recomputer.Run(ctx, room, d, mode, recompute.Options{}); err != nil {
				return Outcome{}, err
			}
		}
	}

	resolved := *req
	resolved.Status = models.RequestApproved
	t := now
	resolved.ResolvedAt = &t
	removeRequest(room, idx)
	m.logActivity(ctx, room.ID, approverID, "request_approved", req.ID.String())

	return Outcome{Request: resolved, Status: models.RequestApproved, Message: "요청이 승인되었습니다"}, nil
}

// Reject implements the reject transition: remove the Request, no slot
// mutation.
func (m *Machine) Reject(ctx context.Context, room *models.RoomDocument, requestID, approverID uuid.UUID, now time.Time) (Outcome, error) {
	idx, req := findRequest(room, requestID)
	if req == nil {
		return Outcome{}, &dto.ErrNotFound{Resource: "request", Message: "요청을 찾을 수 없습니다"}
	}
	if req.TargetUserID == nil || *req.TargetUserID != approverID {
		return Outcome{}, &dto.ErrNotAuthorized{Message: "이 요청을 거절할 권한이 없습니다"}
	}
	resolved := *req
	resolved.Status = models.RequestRejected
	t := now
	resolved.ResolvedAt = &t
	removeRequest(room, idx)
	m.logActivity(ctx, room.ID, approverID, "request_rejected", req.ID.String())
	return Outcome{Request: resolved, Status: models.RequestRejected, Message: "요청이 거절되었습니다"}, nil
}

// Cancel implements the requester-initiated cancel transition: remove the
// Request, no slot mutation.
func (m *Machine) Cancel(ctx context.Context, room *models.RoomDocument, requestID, requesterID uuid.UUID, now time.Time) (Outcome, error) {
	idx, req := findRequest(room, requestID)
	if req == nil {
		return Outcome{}, &dto.ErrNotFound{Resource: "request", Message: "요청을 찾을 수 없습니다"}
	}
	if req.RequesterID != requesterID {
		return Outcome{}, &dto.ErrNotAuthorized{Message: "이 요청을 취소할 권한이 없습니다"}
	}
	resolved := *req
	resolved.Status = models.RequestCancelled
	t := now
	resolved.ResolvedAt = &t
	removeRequest(room, idx)
	m.logActivity(ctx, room.ID, requesterID, "request_cancelled", req.ID.String())
	return Outcome{Request: resolved, Status: models.RequestCancelled, Message: "요청이 취소되었습니다"}, nil
}

// isStale implements the optimistic check: the requester's captured
// source slots, and the target user's occupying slot(s) at the target
// window, must still match what the Request snapshotted (spec.md B3/S6).
func (m *Machine) isStale(room *models.RoomDocument, req models.Request) bool {
	for _, snap := range req.SourceSlots {
		if !slotStillMatches(room, snap) {
			return true
		}
	}
	for _, snap := range req.TargetOccupantSlots {
		if !slotStillMatches(room, snap) {
			return true
		}
	}
	return false
}

func slotStillMatches(room *models.RoomDocument, snap models.SlotSnapshot) bool {
	for _, sl := range room.Slots {
		if sl.ID == snap.SlotID && sl.UserID == snap.UserID && sl.Date == snap.Date && sl.StartMin == snap.StartMin && sl.EndMin == snap.EndMin {
			return true
		}
	}
	return false
}

func slotsAt(room *models.RoomDocument, date string, start, end int, userID uuid.UUID) []models.Slot {
	var out []models.Slot
	for _, sl := range room.Slots {
		if sl.Date == date && sl.UserID == userID && sl.StartMin < end && start < sl.EndMin {
			out = append(out, sl)
		}
	}
	return out
}

func (m *Machine) logActivity(ctx context.Context, roomID, actor uuid.UUID, action, detail string) {
	if m.activity == nil {
		return
	}
	_ = m.activity.Append(ctx, models.ActivityLogEntry{
		RoomID: roomID,
		Actor:  actor,
		Action: action,
		Detail: detail,
		At:     time.Now(),
	})
}
