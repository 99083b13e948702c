package exchange

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hangawi/coordination-core/internal/blocked"
	"github.com/hangawi/coordination-core/internal/dto"
	"github.com/hangawi/coordination-core/internal/models"
	"github.com/hangawi/coordination-core/internal/preference"
	"github.com/hangawi/coordination-core/internal/recompute"
	"github.com/hangawi/coordination-core/internal/slotstore"
	"github.com/hangawi/coordination-core/internal/timeutil"
)

func parseHHMM(s string) (int, error) {
	return timeutil.ToMinutes(s)
}

func minutesToHHMM(m int) string {
	return timeutil.FromMinutes(m)
}

func windowContains(windows []preference.Window, start, end int) bool {
	for _, w := range windows {
		if start >= w.StartMin && end <= w.EndMin {
			return true
		}
	}
	return false
}

func windowsText(windows []preference.Window) string {
	if len(windows) == 0 {
		return "없음"
	}
	out := ""
	for i, w := range windows {
		if i > 0 {
			out += ", "
		}
		out += fmt.Sprintf("%s-%s", minutesToHHMM(w.StartMin), minutesToHHMM(w.EndMin))
	}
	return out
}

func sourceBlockAlreadyAtTarget(r resolved) bool {
	if len(r.sourceBlock) == 0 {
		return false
	}
	dateKey := r.targetDate.Format("2006-01-02")
	return r.sourceBlock[0].Date == dateKey &&
		r.sourceBlock[0].StartMin == r.newStart &&
		r.sourceBlock[len(r.sourceBlock)-1].EndMin == r.newEnd
}

func slotsOverlapping(slots []models.Slot, date string, start, end int) []models.Slot {
	var out []models.Slot
	for _, sl := range slots {
		if sl.Date == date && timeutil.Overlaps(sl.StartMin, sl.EndMin, start, end) {
			out = append(out, sl)
		}
	}
	return out
}

// classify implements spec.md §4.8.3's Case A/B/C decision.
func classify(sourceBlock, targetSlots []models.Slot, requesterID uuid.UUID, explicitTargetTime bool) OutcomeCase {
	if len(targetSlots) == 0 {
		return CaseImmediateSwap
	}
	if sameSlotSet(sourceBlock, targetSlots) {
		return CaseImmediateSwap
	}

	allRequesters := true
	for _, sl := range targetSlots {
		if sl.UserID != requesterID {
			allRequesters = false
			break
		}
	}
	if allRequesters && !explicitTargetTime {
		return CaseAutoPlaced
	}
	return CaseYieldRequest
}

func sameSlotSet(a, b []models.Slot) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[uuid.UUID]bool, len(a))
	for _, sl := range a {
		seen[sl.ID] = true
	}
	for _, sl := range b {
		if !seen[sl.ID] {
			return false
		}
	}
	return true
}

// applyCaseA deletes sourceBlock, inserts the new class slot at
// [newStart,newEnd) on targetDateKey, recomputes travel for both the old
// and new dates, and reports the outcome (spec.md §4.8.3 Case A).
func (p *Planner) applyCaseA(ctx context.Context, room *models.RoomDocument, store *slotstore.Store, r resolved, mode models.TravelMode, targetDateKey string) (Outcome, error) {
	if len(r.sourceBlock) == 0 {
		return Outcome{}, dto.NewInvalidIntent("exchange: cannot apply with an empty source block")
	}
	requesterID := r.sourceBlock[0].UserID
	subject := models.SubjectExchangeResult
	priority := r.sourceBlock[0].Priority
	color := r.sourceBlock[0].Color

	oldDateKey := r.sourceBlock[0].Date
	ids := make([]uuid.UUID, len(r.sourceBlock))
	for i, sl := range r.sourceBlock {
		ids[i] = sl.ID
	}
	store.RemoveByID(ids...)

	newSlot := models.Slot{
		ID:       uuid.New(),
		UserID:   requesterID,
		Date:     targetDateKey,
		StartMin: r.newStart,
		EndMin:   r.newEnd,
		Weekday:  models.Weekday(r.targetDate.Weekday()),
		Subject:  subject,
		Status:   models.SlotProposed,
		Priority: priority,
		Color:    color,
	}
	if err := store.Add(newSlot); err != nil {
		return Outcome{}, &dto.ErrConflict{Message: "대상 시간에 이미 다른 일정이 있습니다"}
	}

	if mode != models.TravelModeNone {
		if oldDateKey != targetDateKey {
			oldDate, _ := time.Parse("2006-01-02", oldDateKey)
			if err := p.recomputer.Run(ctx, room, oldDate, mode, recompute.Options{}); err != nil {
				return Outcome{}, err
			}
		}
		if err := p.recomputer.Run(ctx, room, r.targetDate, mode, recompute.Options{}); err != nil {
			return Outcome{}, err
		}
	}

	return Outcome{
		Case:       CaseImmediateSwap,
		Message:    fmt.Sprintf("%s %s로 일정을 변경했습니다", targetDateKey, minutesToHHMM(r.newStart)),
		TargetDate: targetDateKey,
		TargetTime: minutesToHHMM(r.newStart),
	}, nil
}

// findAutoPlaceWindow searches targetDateKey for the earliest free window
// of the source block's duration, stepping by 30 minutes (spec.md §4.8.3
// Case B).
func (p *Planner) findAutoPlaceWindow(ctx context.Context, room *models.RoomDocument, r resolved, owner, requester models.UserProfile, targetDateKey string) ([2]int, bool, error) {
	duration := r.newEnd - r.newStart
	ownerPref, err := preference.ForDate(owner, r.targetDate)
	if err != nil {
		return [2]int{}, false, err
	}
	requesterPref, err := preference.ForDate(requester, r.targetDate)
	if err != nil {
		return [2]int{}, false, err
	}
	common := preference.Intersect(ownerPref, requesterPref)
	existing := slotsOnDate(room.Slots, targetDateKey)

	for _, w := range common {
		start := w.StartMin
		steps := 0
		for start+duration <= w.EndMin && steps < autoPlaceMaxSteps {
			steps++
			end := start + duration
			if !anyOverlap(existing, start, end) {
				return [2]int{start, end}, true, nil
			}
			start += autoPlaceStepMin
		}
	}
	return [2]int{}, false, nil
}

func slotsOnDate(slots []models.Slot, date string) []models.Slot {
	var out []models.Slot
	for _, sl := range slots {
		if sl.Date == date {
			out = append(out, sl)
		}
	}
	return out
}

func anyOverlap(slots []models.Slot, start, end int) bool {
	for _, sl := range slots {
		if timeutil.Overlaps(sl.StartMin, sl.EndMin, start, end) {
			return true
		}
	}
	return false
}

// createYieldRequest implements Case C: construct a pending Request,
// mutate nothing, publish request-created (left to the caller's service
// layer, which owns the event bus).
func (p *Planner) createYieldRequest(ctx context.Context, room *models.RoomDocument, r resolved, intent models.ParsedIntent, targetSlots []models.Slot) (Outcome, error) {
	if len(targetSlots) == 0 {
		return Outcome{}, dto.NewInvalidIntent("exchange: cannot create a yield request with no conflicting slot")
	}
	firstConflicting := targetSlots[0]
	targetUser := firstConflicting.UserID

	snapshots := make([]models.SlotSnapshot, len(r.sourceBlock))
	for i, sl := range r.sourceBlock {
		snapshots[i] = models.SlotSnapshot{SlotID: sl.ID, UserID: sl.UserID, Date: sl.Date, StartMin: sl.StartMin, EndMin: sl.EndMin, Subject: sl.Subject}
	}
	targetSnapshots := make([]models.SlotSnapshot, len(targetSlots))
	for i, sl := range targetSlots {
		targetSnapshots[i] = models.SlotSnapshot{SlotID: sl.ID, UserID: sl.UserID, Date: sl.Date, StartMin: sl.StartMin, EndMin: sl.EndMin, Subject: sl.Subject}
	}

	req := models.Request{
		ID:           uuid.New(),
		Type:         models.RequestTimeChange,
		Status:       models.RequestPending,
		RequesterID:  intent.RequesterID,
		TargetUserID: &targetUser,
		SourceSlots:  snapshots,
		TargetSlot: models.TargetSlotDescriptor{
			Date:     r.targetDate.Format("2006-01-02"),
			StartMin: r.newStart,
			EndMin:   r.newEnd,
			Subject:  models.SubjectExchangeResult,
		},
		TargetOccupantSlots: targetSnapshots,
		CreatedAt:           time.Now(),
	}
	room.Requests = append(room.Requests, req)
	p.logActivity(ctx, room.ID, intent.RequesterID, "yield_request_created", fmt.Sprintf("requested %s %s from %s", req.TargetSlot.Date, minutesToHHMM(req.TargetSlot.StartMin), targetUser))

	return Outcome{
		Case:       CaseYieldRequest,
		Message:    "상대방의 승인이 필요합니다",
		TargetDate: req.TargetSlot.Date,
		TargetTime: minutesToHHMM(req.TargetSlot.StartMin),
		CreatedRequest: &req,
	}, nil
}

// travelPreflight runs the simulation of spec.md §4.8.2: temporarily
// apply the move on a scratch copy of the room and verify the class slot
// stays inside owner ∩ requester preferences and the implied travel slot
// clears every blocked interval.
func (p *Planner) travelPreflight(ctx context.Context, room *models.RoomDocument, r resolved, owner, requester models.UserProfile, mode models.TravelMode) error {
	scratch := cloneRoomForDate(room)
	store := slotstore.New(scratch)

	requesterID := requester.ID
	probe := models.Slot{
		ID:       uuid.New(),
		UserID:   requesterID,
		Date:     r.targetDate.Format("2006-01-02"),
		StartMin: r.newStart,
		EndMin:   r.newEnd,
		Status:   models.SlotProposed,
	}
	if err := store.Add(probe); err != nil {
		return &dto.ErrConflict{Message: "대상 시간에 이미 다른 일정이 있습니다"}
	}

	if err := p.recomputer.Run(ctx, scratch, r.targetDate, mode, recompute.Options{}); err != nil {
		return fmt.Errorf("exchange: travel preflight recompute: %w", err)
	}

	var final models.Slot
	found := false
	for _, sl := range scratch.Slots {
		if sl.ID == probe.ID {
			final = sl
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("exchange: travel preflight lost the probe slot")
	}

	ownerPref, err := preference.ForDate(owner, r.targetDate)
	if err != nil {
		return err
	}
	requesterPref, err := preference.ForDate(requester, r.targetDate)
	if err != nil {
		return err
	}
	common := preference.Intersect(ownerPref, requesterPref)

	if !windowContains(common, final.StartMin, final.EndMin) {
		suggestion := earliestFeasibleStart(common, final.EndMin-final.StartMin)
		return &dto.ErrTravelInfeasible{
			Reason:            dto.ReasonTravelOwnerPreferenceConflict,
			Message:           fmt.Sprintf("이동 시간을 고려하면 선호 시간 범위를 벗어납니다: %s", windowsText(common)),
			SuggestedStartMin: suggestion,
		}
	}

	idx := blocked.New(scratch.Settings)
	for _, travelSlot := range scratch.TravelSlots {
		if travelSlot.UserID != requesterID || travelSlot.Date != final.Date {
			continue
		}
		if bad, reason := idx.IsBlocked(r.targetDate, travelSlot.StartMin, travelSlot.EndMin); bad {
			return &dto.ErrTravelInfeasible{
				Reason:  dto.ReasonTravelConflict,
				Message: fmt.Sprintf("이동 시간이 차단된 구간과 겹칩니다: %s", reason.Reason),
			}
		}
	}

	return nil
}

func earliestFeasibleStart(windows []preference.Window, duration int) *int {
	for _, w := range windows {
		if w.EndMin-w.StartMin >= duration {
			start := w.StartMin
			return &start
		}
	}
	return nil
}

// cloneRoomForDate makes a shallow copy of room sufficient for the
// travel-preflight simulation: slots/travel slots are deep-copied so the
// probe's mutation never touches the real room.
func cloneRoomForDate(room *models.RoomDocument) *models.RoomDocument {
	clone := *room
	clone.Slots = append([]models.Slot(nil), room.Slots...)
	clone.TravelSlots = append([]models.Slot(nil), room.TravelSlots...)
	clone.Requests = append([]models.Request(nil), room.Requests...)
	return &clone
}

