// Package recompute implements the Travel Recomputer (C6): for a given
// date, deletes all travel slots, walks the ordered class slots, re-
// derives travel buffers from C4, and enforces the blocked-interval guard
// by shifting class slots forward when a travel window would land inside
// a blocked interval.
package recompute

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hangawi/coordination-core/internal/blocked"
	"github.com/hangawi/coordination-core/internal/models"
	"github.com/hangawi/coordination-core/internal/ports"
	"github.com/hangawi/coordination-core/internal/slotstore"
	"github.com/hangawi/coordination-core/internal/travel"
)

// Recomputer rebuilds travel slots for a room's date.
type Recomputer struct {
	calculator travel.Calculator
	profiles   ports.UserProfileProvider
}

// New builds a Recomputer.
func New(calculator travel.Calculator, profiles ports.UserProfileProvider) *Recomputer {
	return &Recomputer{calculator: calculator, profiles: profiles}
}

// Options narrows a recompute run, per spec.md §4.6 "onlyForUser".
type Options struct {
	OnlyForUser *uuid.UUID
}

// Run executes the C6 algorithm for room on date d, mutating the room's
// slot store in place. mode is the room's effective travel mode
// (spec.md §9 Q3: confirmed ?? current ?? none), resolved by the caller.
func (r *Recomputer) Run(ctx context.Context, room *models.RoomDocument, d time.Time, mode models.TravelMode, opts Options) error {
	dateKey := d.Format("2006-01-02")
	store := slotstore.New(room)

	if mode == models.TravelModeNone {
		store.ReplaceTravelSlotsForDate(dateKey, nil)
		return nil
	}

	// Step 2: delete every travel slot on D (or only onlyForUser's).
	var survivors []models.Slot
	if opts.OnlyForUser != nil {
		for _, sl := range store.ListTravelByDate(dateKey) {
			if sl.UserID != *opts.OnlyForUser {
				survivors = append(survivors, sl)
			}
		}
	}
	store.ReplaceTravelSlotsForDate(dateKey, nil)

	// Step 3: ordered class slots on D.
	classSlots := store.ListByDate(dateKey)

	owner, err := r.profiles.GetProfile(ctx, room.OwnerID)
	if err != nil {
		return fmt.Errorf("recompute: load owner profile: %w", err)
	}

	idx := blocked.New(room.Settings)
	var newTravelSlots []models.Slot

	for i := range classSlots {
		cur := &classSlots[i]
		if opts.OnlyForUser != nil && cur.UserID != *opts.OnlyForUser {
			continue
		}

		var fromCoords models.Coordinates
		var fromLabel string
		if i > 0 {
			prevProfile, err := r.profiles.GetProfile(ctx, classSlots[i-1].UserID)
			if err != nil {
				return fmt.Errorf("recompute: load prev profile: %w", err)
			}
			fromCoords = prevProfile.Coordinates
			fromLabel = prevProfile.DisplayName
		} else {
			fromCoords = owner.Coordinates
			fromLabel = owner.DisplayName
		}

		curProfile, err := r.profiles.GetProfile(ctx, cur.UserID)
		if err != nil {
			return fmt.Errorf("recompute: load current profile: %w", err)
		}
		toCoords := curProfile.Coordinates

		travelMin, err := r.calculator.TravelMinutes(ctx, fromCoords, toCoords, mode)
		if err != nil {
			return fmt.Errorf("recompute: travel minutes: %w", err)
		}
		if travelMin == 0 {
			continue
		}

		travelStart := cur.StartMin - travelMin
		travelEnd := cur.StartMin

		// Blocked-interval guard: shift cur forward until both the travel
		// window and the class slot itself clear every blocked interval.
		for {
			blockedTravel, reason1 := idx.IsBlocked(d, travelStart, travelEnd)
			blockedClass, reason2 := idx.IsBlocked(d, travelEnd, cur.EndMin)
			if !blockedTravel && !blockedClass {
				break
			}
			var reasonEnd int
			if blockedTravel {
				reasonEnd = reason1.EndMin
			} else {
				reasonEnd = reason2.EndMin
			}
			duration := cur.Duration()
			travelStart = reasonEnd
			cur.StartMin = reasonEnd + travelMin
			cur.EndMin = cur.StartMin + duration
			travelEnd = cur.StartMin
		}

		newTravelSlots = append(newTravelSlots, models.Slot{
			ID:       uuid.New(),
			UserID:   cur.UserID,
			Date:     dateKey,
			StartMin: travelStart,
			EndMin:   travelEnd,
			Weekday:  cur.Weekday,
			Subject:  models.SubjectTravelTime,
			Status:   cur.Status,
			IsTravel: true,
			Color:    cur.Color,
			TravelInfo: &models.TravelInfo{
				FromLabel:    fromLabel,
				ToLabel:      curProfile.DisplayName,
				DurationText: fmt.Sprintf("%d분", travelMin),
				Mode:         mode,
			},
		})
	}

	// Persist any shifted class slots back into the room's class-slot list.
	for _, updated := range classSlots {
		for j := range room.Slots {
			if room.Slots[j].ID == updated.ID {
				room.Slots[j] = updated
			}
		}
	}

	if opts.OnlyForUser != nil {
		newTravelSlots = append(newTravelSlots, survivors...)
	}
	store.ReplaceTravelSlotsForDate(dateKey, newTravelSlots)
	return nil
}
