package slotstore

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hangawi/coordination-core/internal/models"
)

func newSlot(userID uuid.UUID, date string, start, end int) models.Slot {
	return models.Slot{ID: uuid.New(), UserID: userID, Date: date, StartMin: start, EndMin: end, Status: models.SlotProposed}
}

// P1: no two non-travel slots for the same user on D overlap.
func TestAddRejectsOverlap(t *testing.T) {
	userID := uuid.New()
	room := &models.RoomDocument{}
	store := New(room)

	require.NoError(t, store.Add(newSlot(userID, "2026-07-29", 9*60, 10*60)))
	err := store.Add(newSlot(userID, "2026-07-29", 9*60+30, 10*60+30))
	assert.ErrorIs(t, err, ErrOverlap)
	assert.Len(t, room.Slots, 1)
}

func TestAddAllowsAdjacentAndDifferentUsers(t *testing.T) {
	userID := uuid.New()
	otherID := uuid.New()
	room := &models.RoomDocument{}
	store := New(room)

	require.NoError(t, store.Add(newSlot(userID, "2026-07-29", 9*60, 10*60)))
	require.NoError(t, store.Add(newSlot(userID, "2026-07-29", 10*60, 11*60)))
	require.NoError(t, store.Add(newSlot(otherID, "2026-07-29", 9*60, 10*60)))
	assert.Len(t, room.Slots, 3)
}

func TestRemoveByIDIsIdempotent(t *testing.T) {
	userID := uuid.New()
	slot := newSlot(userID, "2026-07-29", 9*60, 10*60)
	room := &models.RoomDocument{Slots: []models.Slot{slot}}
	store := New(room)

	store.RemoveByID(slot.ID)
	assert.Empty(t, room.Slots)
	store.RemoveByID(slot.ID) // second call is a no-op, not an error
	assert.Empty(t, room.Slots)
}

func TestReplaceTravelSlotsForDateOnlyTouchesThatDate(t *testing.T) {
	userID := uuid.New()
	room := &models.RoomDocument{
		TravelSlots: []models.Slot{
			newSlot(userID, "2026-07-28", 8*60, 8*60 + 20),
			newSlot(userID, "2026-07-29", 8*60, 8*60 + 20),
		},
	}
	store := New(room)

	replacement := newSlot(userID, "2026-07-29", 9*60, 9*60+10)
	store.ReplaceTravelSlotsForDate("2026-07-29", []models.Slot{replacement})

	require.Len(t, room.TravelSlots, 2)
	var gotDates []string
	for _, sl := range room.TravelSlots {
		gotDates = append(gotDates, sl.Date)
	}
	assert.ElementsMatch(t, []string{"2026-07-28", "2026-07-29"}, gotDates)
}

// "Continuous block" boundary case (spec.md §9): adjacent slots merge
// into one block for selection purposes even with different subjects.
func TestFindContinuousBlocksMergesAdjacentSlots(t *testing.T) {
	userID := uuid.New()
	room := &models.RoomDocument{
		Slots: []models.Slot{
			{ID: uuid.New(), UserID: userID, Date: "2026-07-29", StartMin: 9 * 60, EndMin: 10 * 60, Subject: "자동 배정"},
			{ID: uuid.New(), UserID: userID, Date: "2026-07-29", StartMin: 10 * 60, EndMin: 11 * 60, Subject: "수동 배정"},
			{ID: uuid.New(), UserID: userID, Date: "2026-07-29", StartMin: 13 * 60, EndMin: 14 * 60, Subject: "자동 배정"},
		},
	}
	store := New(room)

	blocks := store.FindContinuousBlocks(userID)
	require.Len(t, blocks, 2)
	assert.Len(t, blocks[0], 2)
	assert.Len(t, blocks[1], 1)
}

func TestBlockContainingFindsEnclosingBlock(t *testing.T) {
	userID := uuid.New()
	room := &models.RoomDocument{
		Slots: []models.Slot{
			{ID: uuid.New(), UserID: userID, Date: "2026-07-29", StartMin: 9 * 60, EndMin: 10 * 60},
			{ID: uuid.New(), UserID: userID, Date: "2026-07-29", StartMin: 10 * 60, EndMin: 11 * 60},
		},
	}
	store := New(room)

	block := store.BlockContaining(userID, "2026-07-29", 9*60+30)
	require.Len(t, block, 2)

	block = store.BlockContaining(userID, "2026-07-29", -1)
	require.Len(t, block, 2)

	assert.Nil(t, store.BlockContaining(userID, "2026-07-30", 9*60))
}
