// Package scheduler implements the Scheduling Engine (C7): building a
// proposed week's assignment of class slots from the intersection of
// owner and member preferences, with travel feasibility enforced via C6.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hangawi/coordination-core/internal/blocked"
	"github.com/hangawi/coordination-core/internal/models"
	"github.com/hangawi/coordination-core/internal/ports"
	"github.com/hangawi/coordination-core/internal/preference"
	"github.com/hangawi/coordination-core/internal/recompute"
	"github.com/hangawi/coordination-core/internal/slotstore"
)

// Engine builds proposed assignments for a room's week.
type Engine struct {
	profiles   ports.UserProfileProvider
	recomputer *recompute.Recomputer
}

// New builds a scheduling Engine.
func New(profiles ports.UserProfileProvider, recomputer *recompute.Recomputer) *Engine {
	return &Engine{profiles: profiles, recomputer: recomputer}
}

// Options configures one ProposeWeek call.
type Options struct {
	ClassDurationMin int
	// MemberOrder overrides the default insertion order (spec.md §4.7 step 2).
	MemberOrder []uuid.UUID
}

// maxCandidateWindowsPerMember bounds the retry-to-next-window loop
// (Open Question Q2) so a pathological week can't spin forever.
const maxCandidateWindowsPerMember = 64

// ProposeWeek runs the C7 procedure for week (the 7 consecutive dates
// starting at weekStart), mutating room's slot store with proposed slots.
func (e *Engine) ProposeWeek(ctx context.Context, room *models.RoomDocument, weekStart time.Time, opts Options) error {
	if opts.ClassDurationMin <= 0 {
		return fmt.Errorf("scheduler: classDurationMin must be positive")
	}

	owner, err := e.profiles.GetProfile(ctx, room.OwnerID)
	if err != nil {
		return fmt.Errorf("scheduler: load owner profile: %w", err)
	}

	order := opts.MemberOrder
	if len(order) == 0 {
		for _, m := range room.Members {
			order = append(order, m.UserID)
		}
	}

	dates := make([]time.Time, 7)
	for i := range dates {
		dates[i] = weekStart.AddDate(0, 0, i)
	}

	idx := blocked.New(room.Settings)
	store := slotstore.New(room)
	mode := room.EffectiveTravelMode()

	for _, memberID := range order {
		member, err := e.profiles.GetProfile(ctx, memberID)
		if err != nil {
			return fmt.Errorf("scheduler: load member profile %s: %w", memberID, err)
		}

		placed := false
		for _, d := range dates {
			if idx.ClosedAllDay(d) {
				continue
			}
			common, err := commonWindow(owner, member, d, idx)
			if err != nil {
				return err
			}

			attempts := 0
			for _, w := range common {
				if attempts >= maxCandidateWindowsPerMember {
					break
				}
				start := w.StartMin
				for start+opts.ClassDurationMin <= w.EndMin && attempts < maxCandidateWindowsPerMember {
					attempts++
					candidate := models.Slot{
						ID:       uuid.New(),
						UserID:   memberID,
						Date:     d.Format("2006-01-02"),
						StartMin: start,
						EndMin:   start + opts.ClassDurationMin,
						Weekday:  models.Weekday(d.Weekday()),
						Subject:  models.SubjectAutoAssigned,
						Status:   models.SlotProposed,
					}
					ok, err := e.tryPlace(ctx, room, store, candidate, mode, owner, member, common)
					if err != nil {
						return err
					}
					if ok {
						placed = true
						break
					}
					start += 30 // step by 30-minute increments on retry
				}
				if placed {
					break
				}
			}
			if placed {
				break
			}
		}
	}
	return nil
}

// tryPlace inserts candidate, runs C6 for its date if travel mode is
// active, and undoes the proposal if the recompute pushed the class slot
// outside the common window (Open Question Q2's retry-to-next-window
// policy).
func (e *Engine) tryPlace(ctx context.Context, room *models.RoomDocument, store *slotstore.Store, candidate models.Slot, mode models.TravelMode, owner, member models.UserProfile, common []preference.Window) (bool, error) {
	if err := store.Add(candidate); err != nil {
		return false, nil // overlap with an existing slot: not placeable here, try next window
	}

	if mode == models.TravelModeNone {
		return true, nil
	}

	d, err := time.Parse("2006-01-02", candidate.Date)
	if err != nil {
		return false, fmt.Errorf("scheduler: parse date: %w", err)
	}
	if err := e.recomputer.Run(ctx, room, d, mode, recompute.Options{}); err != nil {
		store.RemoveByID(candidate.ID)
		return false, err
	}

	// Find cur's (possibly shifted) final position.
	var final models.Slot
	found := false
	for _, sl := range room.Slots {
		if sl.ID == candidate.ID {
			final = sl
			found = true
			break
		}
	}
	if !found {
		return false, fmt.Errorf("scheduler: candidate slot vanished during recompute")
	}

	inCommon := false
	for _, w := range common {
		if final.StartMin >= w.StartMin && final.EndMin <= w.EndMin {
			inCommon = true
			break
		}
	}
	if !inCommon {
		store.RemoveByID(candidate.ID)
		d2, _ := time.Parse("2006-01-02", candidate.Date)
		_ = e.recomputer.Run(ctx, room, d2, mode, recompute.Options{})
		return false, nil
	}
	return true, nil
}

func commonWindow(owner, member models.UserProfile, d time.Time, idx blocked.Index) ([]preference.Window, error) {
	ownerPref, err := preference.ForDate(owner, d)
	if err != nil {
		return nil, err
	}
	memberPref, err := preference.ForDate(member, d)
	if err != nil {
		return nil, err
	}
	common := preference.Intersect(ownerPref, memberPref)

	var cuts []preference.Window
	for _, iv := range idx.Intervals(d) {
		cuts = append(cuts, preference.Window{StartMin: iv.StartMin, EndMin: iv.EndMin})
	}
	return preference.Subtract(common, cuts), nil
}
