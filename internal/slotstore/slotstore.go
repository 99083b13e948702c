// Package slotstore implements the Slot Store (C5): the canonical set of
// class-slots and travel-slots for a room, with invariant-checked CRUD.
// It operates on an in-memory models.RoomDocument. Outside it,
// internal/recompute writes shifted class slots back into Slots directly.
package slotstore

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/hangawi/coordination-core/internal/models"
)

// ErrOverlap is returned by Add when the new slot overlaps an existing
// non-travel slot of the same user on the same date.
var ErrOverlap = fmt.Errorf("slotstore: overlaps an existing slot")

// Store wraps a room's slot slices, giving every mutation a single
// choke point so the invariants of spec.md §3/§4.5 hold afterward.
type Store struct {
	room *models.RoomDocument
}

// New wraps a room document. The store mutates the document in place.
func New(room *models.RoomDocument) *Store {
	return &Store{room: room}
}

// Add inserts a class slot, rejecting overlap with any existing
// non-travel slot of the same user on the same date.
func (s *Store) Add(slot models.Slot) error {
	if !slot.IsTravel {
		for _, existing := range s.room.Slots {
			if existing.UserID == slot.UserID && existing.Overlaps(slot) {
				return ErrOverlap
			}
		}
		s.room.Slots = append(s.room.Slots, slot)
		return nil
	}
	s.room.TravelSlots = append(s.room.TravelSlots, slot)
	return nil
}

// RemoveByID removes every slot (class or travel) whose id is in ids.
// Idempotent: ids not present are silently ignored.
func (s *Store) RemoveByID(ids ...uuid.UUID) {
	match := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		match[id] = true
	}
	s.room.Slots = filterOut(s.room.Slots, match)
	s.room.TravelSlots = filterOut(s.room.TravelSlots, match)
}

func filterOut(slots []models.Slot, match map[uuid.UUID]bool) []models.Slot {
	out := slots[:0:0]
	for _, sl := range slots {
		if !match[sl.ID] {
			out = append(out, sl)
		}
	}
	return out
}

// ReplaceTravelSlotsForDate deletes every travel slot on date and
// replaces them with replacements in one step, used by the Travel
// Recomputer (C6) to keep a reader from ever observing a partially
// rebuilt date.
func (s *Store) ReplaceTravelSlotsForDate(date string, replacements []models.Slot) {
	kept := s.room.TravelSlots[:0:0]
	for _, sl := range s.room.TravelSlots {
		if sl.Date != date {
			kept = append(kept, sl)
		}
	}
	s.room.TravelSlots = append(kept, replacements...)
}

// ListByDate returns class slots on date, sorted by start time.
func (s *Store) ListByDate(date string) []models.Slot {
	var out []models.Slot
	for _, sl := range s.room.Slots {
		if sl.Date == date {
			out = append(out, sl)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartMin < out[j].StartMin })
	return out
}

// ListTravelByDate returns travel slots on date, sorted by start time.
func (s *Store) ListTravelByDate(date string) []models.Slot {
	var out []models.Slot
	for _, sl := range s.room.TravelSlots {
		if sl.Date == date {
			out = append(out, sl)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartMin < out[j].StartMin })
	return out
}

// ListByUser returns every class slot owned by userID across all dates.
func (s *Store) ListByUser(userID uuid.UUID) []models.Slot {
	var out []models.Slot
	for _, sl := range s.room.Slots {
		if sl.UserID == userID {
			out = append(out, sl)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].StartMin < out[j].StartMin
	})
	return out
}

// FindContinuousBlocks returns maximal sequences of the user's slots,
// grouped by date, where each slot's end exactly meets the next slot's
// start (spec.md §4.5 / GLOSSARY "Block").
func (s *Store) FindContinuousBlocks(userID uuid.UUID) [][]models.Slot {
	byDate := map[string][]models.Slot{}
	for _, sl := range s.ListByUser(userID) {
		byDate[sl.Date] = append(byDate[sl.Date], sl)
	}

	var blocks [][]models.Slot
	dates := make([]string, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	for _, d := range dates {
		slots := byDate[d]
		sort.Slice(slots, func(i, j int) bool { return slots[i].StartMin < slots[j].StartMin })
		var cur []models.Slot
		for _, sl := range slots {
			if len(cur) > 0 && cur[len(cur)-1].EndMin != sl.StartMin {
				blocks = append(blocks, cur)
				cur = nil
			}
			cur = append(cur, sl)
		}
		if len(cur) > 0 {
			blocks = append(blocks, cur)
		}
	}
	return blocks
}

// BlockContaining returns the continuous block of userID's slots on date
// that contains minute t, or the first block on that date if t is -1
// (spec.md §4.8.1 "sourceBlock").
func (s *Store) BlockContaining(userID uuid.UUID, date string, t int) []models.Slot {
	var dateBlocks [][]models.Slot
	for _, block := range s.FindContinuousBlocks(userID) {
		if len(block) > 0 && block[0].Date == date {
			dateBlocks = append(dateBlocks, block)
		}
	}
	if len(dateBlocks) == 0 {
		return nil
	}
	if t < 0 {
		return dateBlocks[0]
	}
	for _, block := range dateBlocks {
		for _, sl := range block {
			if sl.StartMin <= t && t < sl.EndMin {
				return block
			}
		}
	}
	return nil
}
