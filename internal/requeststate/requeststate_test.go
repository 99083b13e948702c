package requeststate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hangawi/coordination-core/internal/dto"
	"github.com/hangawi/coordination-core/internal/models"
	"github.com/hangawi/coordination-core/internal/recompute"
)

type fakeProfiles struct{}

func (fakeProfiles) GetProfile(context.Context, uuid.UUID) (models.UserProfile, error) {
	return models.UserProfile{}, nil
}

var resolveTime = time.Date(2026, time.July, 28, 9, 0, 0, 0, time.UTC)

func pendingRequest(requesterID, targetID, sourceSlotID, targetSlotID uuid.UUID) models.Request {
	return models.Request{
		ID:           uuid.New(),
		Type:         models.RequestTimeChange,
		Status:       models.RequestPending,
		RequesterID:  requesterID,
		TargetUserID: &targetID,
		SourceSlots: []models.SlotSnapshot{
			{SlotID: sourceSlotID, UserID: requesterID, Date: "2026-07-27", StartMin: 9 * 60, EndMin: 10 * 60},
		},
		TargetSlot: models.TargetSlotDescriptor{Date: "2026-07-29", StartMin: 14 * 60, EndMin: 15 * 60},
		TargetOccupantSlots: []models.SlotSnapshot{
			{SlotID: targetSlotID, UserID: targetID, Date: "2026-07-29", StartMin: 14 * 60, EndMin: 15 * 60},
		},
		CreatedAt: resolveTime,
	}
}

func TestApproveSwapsBothSlots(t *testing.T) {
	requester := uuid.New()
	target := uuid.New()
	sourceSlotID := uuid.New()
	targetSlotID := uuid.New()

	room := &models.RoomDocument{
		Slots: []models.Slot{
			{ID: sourceSlotID, UserID: requester, Date: "2026-07-27", StartMin: 9 * 60, EndMin: 10 * 60},
			{ID: targetSlotID, UserID: target, Date: "2026-07-29", StartMin: 14 * 60, EndMin: 15 * 60},
		},
		Requests: []models.Request{pendingRequest(requester, target, sourceSlotID, targetSlotID)},
	}
	requestID := room.Requests[0].ID

	m := New(recompute.New(nil, fakeProfiles{}), nil)
	outcome, err := m.Approve(context.Background(), room, requestID, target, resolveTime)
	require.NoError(t, err)
	assert.Equal(t, models.RequestApproved, outcome.Status)
	assert.Empty(t, room.Requests)

	require.Len(t, room.Slots, 2)
	var requesterSlot, targetSlot models.Slot
	for _, sl := range room.Slots {
		if sl.UserID == requester {
			requesterSlot = sl
		} else {
			targetSlot = sl
		}
	}
	assert.Equal(t, "2026-07-29", requesterSlot.Date)
	assert.Equal(t, 14*60, requesterSlot.StartMin)
	assert.Equal(t, "2026-07-27", targetSlot.Date)
	assert.Equal(t, 9*60, targetSlot.StartMin)
}

func TestApproveRejectsWrongApprover(t *testing.T) {
	requester := uuid.New()
	target := uuid.New()
	sourceSlotID := uuid.New()

	room := &models.RoomDocument{
		Slots: []models.Slot{
			{ID: sourceSlotID, UserID: requester, Date: "2026-07-27", StartMin: 9 * 60, EndMin: 10 * 60},
		},
		Requests: []models.Request{pendingRequest(requester, target, sourceSlotID, uuid.New())},
	}
	requestID := room.Requests[0].ID

	m := New(recompute.New(nil, fakeProfiles{}), nil)
	_, err := m.Approve(context.Background(), room, requestID, uuid.New(), resolveTime)
	require.Error(t, err)
	var notAuth *dto.ErrNotAuthorized
	assert.True(t, errors.As(err, &notAuth))
	assert.Len(t, room.Requests, 1, "an unauthorized approve attempt does not resolve the request")
}

// B3/S6: if the requester's source slot moved (or vanished) since the
// request was created, approval fails and the request auto-rejects.
func TestApproveDetectsStaleRequest(t *testing.T) {
	requester := uuid.New()
	target := uuid.New()
	sourceSlotID := uuid.New()
	targetSlotID := uuid.New()

	room := &models.RoomDocument{
		Slots: []models.Slot{
			// the requester's slot has since moved to a different time
			{ID: sourceSlotID, UserID: requester, Date: "2026-07-27", StartMin: 11 * 60, EndMin: 12 * 60},
			{ID: targetSlotID, UserID: target, Date: "2026-07-29", StartMin: 14 * 60, EndMin: 15 * 60},
		},
		Requests: []models.Request{pendingRequest(requester, target, sourceSlotID, targetSlotID)},
	}
	requestID := room.Requests[0].ID

	m := New(recompute.New(nil, fakeProfiles{}), nil)
	outcome, err := m.Approve(context.Background(), room, requestID, target, resolveTime)
	require.Error(t, err)
	var stale *dto.ErrStaleRequest
	require.True(t, errors.As(err, &stale))
	assert.Equal(t, models.RequestRejected, outcome.Status)
	assert.Empty(t, room.Requests, "the stale request is removed, not left pending")
}

// S6 literal scenario: the requester's own slot is untouched, but the
// target occupant moved the slot the request was yielding on before
// approving it. isStale must catch this side too.
func TestApproveDetectsStaleRequestWhenTargetSlotMoved(t *testing.T) {
	requester := uuid.New()
	target := uuid.New()
	sourceSlotID := uuid.New()
	targetSlotID := uuid.New()

	room := &models.RoomDocument{
		Slots: []models.Slot{
			{ID: sourceSlotID, UserID: requester, Date: "2026-07-27", StartMin: 9 * 60, EndMin: 10 * 60},
			// the target occupant moved this slot elsewhere since the
			// request snapshotted it at 2026-07-29 14:00-15:00
			{ID: targetSlotID, UserID: target, Date: "2026-07-29", StartMin: 16 * 60, EndMin: 17 * 60},
		},
		Requests: []models.Request{pendingRequest(requester, target, sourceSlotID, targetSlotID)},
	}
	requestID := room.Requests[0].ID

	m := New(recompute.New(nil, fakeProfiles{}), nil)
	outcome, err := m.Approve(context.Background(), room, requestID, target, resolveTime)
	require.Error(t, err)
	var stale *dto.ErrStaleRequest
	require.True(t, errors.As(err, &stale))
	assert.Equal(t, models.RequestRejected, outcome.Status)
	assert.Empty(t, room.Requests, "the stale request is removed, not left pending")
	require.Len(t, room.Slots, 2, "no mirrored move happens on a stale approval")
	assert.Equal(t, 9*60, room.Slots[0].StartMin, "requester's slot is untouched")
	assert.Equal(t, 16*60, room.Slots[1].StartMin, "target's moved slot is untouched")
}

func TestApproveNotFound(t *testing.T) {
	room := &models.RoomDocument{}
	m := New(recompute.New(nil, fakeProfiles{}), nil)

	_, err := m.Approve(context.Background(), room, uuid.New(), uuid.New(), resolveTime)
	require.Error(t, err)
	var notFound *dto.ErrNotFound
	assert.True(t, errors.As(err, &notFound))
}

func TestRejectRemovesRequestWithoutTouchingSlots(t *testing.T) {
	requester := uuid.New()
	target := uuid.New()
	sourceSlotID := uuid.New()

	room := &models.RoomDocument{
		Slots: []models.Slot{
			{ID: sourceSlotID, UserID: requester, Date: "2026-07-27", StartMin: 9 * 60, EndMin: 10 * 60},
		},
		Requests: []models.Request{pendingRequest(requester, target, sourceSlotID, uuid.New())},
	}
	requestID := room.Requests[0].ID

	m := New(recompute.New(nil, fakeProfiles{}), nil)
	outcome, err := m.Reject(context.Background(), room, requestID, target, resolveTime)
	require.NoError(t, err)
	assert.Equal(t, models.RequestRejected, outcome.Status)
	assert.Empty(t, room.Requests)
	require.Len(t, room.Slots, 1)
	assert.Equal(t, 9*60, room.Slots[0].StartMin, "reject never moves a slot")
}

func TestCancelRequiresRequester(t *testing.T) {
	requester := uuid.New()
	target := uuid.New()
	sourceSlotID := uuid.New()

	room := &models.RoomDocument{
		Requests: []models.Request{pendingRequest(requester, target, sourceSlotID, uuid.New())},
	}
	requestID := room.Requests[0].ID

	m := New(recompute.New(nil, fakeProfiles{}), nil)
	_, err := m.Cancel(context.Background(), room, requestID, target, resolveTime)
	require.Error(t, err)
	var notAuth *dto.ErrNotAuthorized
	assert.True(t, errors.As(err, &notAuth))

	outcome, err := m.Cancel(context.Background(), room, requestID, requester, resolveTime)
	require.NoError(t, err)
	assert.Equal(t, models.RequestCancelled, outcome.Status)
	assert.Empty(t, room.Requests)
}
