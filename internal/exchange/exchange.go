// Package exchange implements the Exchange Planner (C8): consumes a
// validated Parsed Intent and classifies/applies the outcome as an
// immediate swap, an auto-placement, or a pending yield request.
package exchange

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hangawi/coordination-core/internal/blocked"
	"github.com/hangawi/coordination-core/internal/dto"
	"github.com/hangawi/coordination-core/internal/models"
	"github.com/hangawi/coordination-core/internal/ports"
	"github.com/hangawi/coordination-core/internal/preference"
	"github.com/hangawi/coordination-core/internal/recompute"
	"github.com/hangawi/coordination-core/internal/slotstore"
)

// OutcomeCase names which of Case A/B/C (spec.md §4.8.3) was applied.
type OutcomeCase string

const (
	CaseImmediateSwap OutcomeCase = "immediate_swap"
	CaseAutoPlaced    OutcomeCase = "auto_placed"
	CaseYieldRequest  OutcomeCase = "yield_request"
)

// Outcome is what Apply returns: enough for the HTTP layer to build the
// envelope of spec.md §6.2.
type Outcome struct {
	Case          OutcomeCase
	Message       string
	TargetDate    string
	TargetTime    string
	AlreadyAtTarget bool
	CreatedRequest *models.Request
}

// autoPlaceStepMin is the Case-B search step (spec.md §4.8.3).
const autoPlaceStepMin = 30

// autoPlaceMaxSteps bounds the Case-B scan of one day.
const autoPlaceMaxSteps = 48 // 24h / 30min

// Planner applies parsed intents against a room.
type Planner struct {
	profiles   ports.UserProfileProvider
	recomputer *recompute.Recomputer
	activity   ports.ActivityLogAppender
}

// New builds a Planner.
func New(profiles ports.UserProfileProvider, recomputer *recompute.Recomputer, activity ports.ActivityLogAppender) *Planner {
	return &Planner{profiles: profiles, recomputer: recomputer, activity: activity}
}

// Apply executes C8 for intent against room at time now, mutating room in
// place on success (Case A/B) or appending a pending Request (Case C).
func (p *Planner) Apply(ctx context.Context, room *models.RoomDocument, intent models.ParsedIntent, now time.Time) (Outcome, error) {
	switch intent.Kind {
	case models.IntentTimeChange:
		return p.applyTimeOrDateChange(ctx, room, intent, now, true)
	case models.IntentDateChange:
		return p.applyTimeOrDateChange(ctx, room, intent, now, false)
	default:
		return Outcome{}, dto.NewInvalidIntent("exchange: intent kind %q is not handled by the planner (confirm/reject belong to the request state machine)", intent.Kind)
	}
}

type resolved struct {
	sourceDate time.Time
	targetDate time.Time
	sourceBlock []models.Slot
	newStart   int
	newEnd     int
	explicitTargetTime bool
}

func (p *Planner) applyTimeOrDateChange(ctx context.Context, room *models.RoomDocument, intent models.ParsedIntent, now time.Time, isTimeChange bool) (Outcome, error) {
	r, err := p.resolve(room, intent, now, isTimeChange)
	if err != nil {
		return Outcome{}, err
	}

	owner, err := p.profiles.GetProfile(ctx, room.OwnerID)
	if err != nil {
		return Outcome{}, fmt.Errorf("exchange: load owner profile: %w", err)
	}
	requester, err := p.profiles.GetProfile(ctx, intent.RequesterID)
	if err != nil {
		return Outcome{}, fmt.Errorf("exchange: load requester profile: %w", err)
	}

	if err := p.validate(room, r, owner, requester, intent); err != nil {
		return Outcome{}, err
	}

	targetDateKey := r.targetDate.Format("2006-01-02")

	// Idempotence (spec.md §4.8.4).
	if sourceBlockAlreadyAtTarget(r) {
		return Outcome{
			Case:       CaseImmediateSwap,
			Message:    "already at target",
			TargetDate: targetDateKey,
			TargetTime: minutesToHHMM(r.newStart),
			AlreadyAtTarget: true,
		}, nil
	}

	mode := room.EffectiveTravelMode()
	if mode != models.TravelModeNone {
		if err := p.travelPreflight(ctx, room, r, owner, requester, mode); err != nil {
			return Outcome{}, err
		}
	}

	store := slotstore.New(room)
	targetSlots := slotsOverlapping(room.Slots, targetDateKey, r.newStart, r.newEnd)

	switch classify(r.sourceBlock, targetSlots, intent.RequesterID, r.explicitTargetTime) {
	case CaseImmediateSwap:
		outcome, err := p.applyCaseA(ctx, room, store, r, mode, targetDateKey)
		if err == nil {
			p.logActivity(ctx, room.ID, intent.RequesterID, "time_change_applied", outcome.Message)
		}
		return outcome, err

	case CaseAutoPlaced:
		window, found, err := p.findAutoPlaceWindow(ctx, room, r, owner, requester, targetDateKey)
		if err != nil {
			return Outcome{}, err
		}
		if !found {
			return p.createYieldRequest(ctx, room, r, intent, targetSlots)
		}
		r.newStart, r.newEnd = window[0], window[1]
		outcome, err := p.applyCaseA(ctx, room, store, r, mode, targetDateKey)
		if err == nil {
			outcome.Case = CaseAutoPlaced
			p.logActivity(ctx, room.ID, intent.RequesterID, "time_change_auto_placed", outcome.Message)
		}
		return outcome, err

	default: // CaseYieldRequest
		return p.createYieldRequest(ctx, room, r, intent, targetSlots)
	}
}

func (p *Planner) resolve(room *models.RoomDocument, intent models.ParsedIntent, now time.Time, isTimeChange bool) (resolved, error) {
	var sourceDate, targetDate time.Time
	var explicitTarget bool

	if isTimeChange {
		sourceDate = resolveSourceDate(now, intent)
		td, ok := resolveTargetDate(now, intent)
		if !ok {
			return resolved{}, dto.NewInvalidIntent("exchange: time_change requires targetDay")
		}
		targetDate = td
	} else {
		sd, ok := resolveDateChangeDate(now, intent.SourceMonth, intent.SourceDate, intent.SourceYear)
		if !ok {
			sd = truncateToDay(now)
		}
		sourceDate = sd
		td, ok := resolveDateChangeDate(now, intent.TargetMonth, intent.TargetDate, intent.TargetYear)
		if !ok {
			return resolved{}, dto.NewInvalidIntent("exchange: date_change requires targetMonth and targetDate")
		}
		targetDate = td
	}

	var sourceTimeMin int = -1
	if isTimeChange {
		// time_change has no explicit sourceTime field in spec.md §3;
		// sourceTimeMin stays -1, so the first block on sourceDate is used.
	} else if intent.SourceTime != nil {
		m, err := parseHHMM(*intent.SourceTime)
		if err != nil {
			return resolved{}, dto.NewInvalidIntent("exchange: malformed sourceTime: %v", err)
		}
		sourceTimeMin = m
	}

	store := slotstore.New(room)
	sourceBlock := store.BlockContaining(intent.RequesterID, sourceDate.Format("2006-01-02"), sourceTimeMin)

	newStart := 0
	duration := 60
	if len(sourceBlock) > 0 {
		newStart = sourceBlock[0].StartMin
		duration = sourceBlock[len(sourceBlock)-1].EndMin - sourceBlock[0].StartMin
	}
	if intent.TargetTime != nil {
		m, err := parseHHMM(*intent.TargetTime)
		if err != nil {
			return resolved{}, dto.NewInvalidIntent("exchange: malformed targetTime: %v", err)
		}
		newStart = m
		explicitTarget = true
	}
	newEnd := newStart + duration

	return resolved{
		sourceDate:  sourceDate,
		targetDate:  targetDate,
		sourceBlock: sourceBlock,
		newStart:    newStart,
		newEnd:      newEnd,
		explicitTargetTime: explicitTarget,
	}, nil
}

func (p *Planner) validate(room *models.RoomDocument, r resolved, owner, requester models.UserProfile, intent models.ParsedIntent) error {
	// V1: target weekday must be Mon-Fri.
	wd := r.targetDate.Weekday()
	if wd == time.Saturday || wd == time.Sunday {
		return &dto.ErrPreferenceViolation{
			Rule:    dto.RuleV1TargetWeekday,
			Message: fmt.Sprintf("%s는 평일이 아닙니다", r.targetDate.Format("2006-01-02")),
		}
	}

	// V2: sourceBlock must be non-empty.
	if len(r.sourceBlock) == 0 {
		return &dto.ErrPreferenceViolation{
			Rule:    dto.RuleV2SourceBlockEmpty,
			Message: "이동할 기존 일정을 찾을 수 없습니다",
		}
	}

	ownerPref, err := preference.ForDate(owner, r.targetDate)
	if err != nil {
		return err
	}
	requesterPref, err := preference.ForDate(requester, r.targetDate)
	if err != nil {
		return err
	}

	// V3: targetDate must intersect owner's preferred windows; if
	// targetTime set, [newStart,newEnd) must lie entirely inside one.
	if len(ownerPref) == 0 {
		return &dto.ErrPreferenceViolation{Rule: dto.RuleV3OwnerWindow, Message: "호스트가 해당 요일에 가능한 시간이 없습니다"}
	}
	if r.explicitTargetTime && !windowContains(ownerPref, r.newStart, r.newEnd) {
		return &dto.ErrPreferenceViolation{
			Rule:            dto.RuleV3OwnerWindow,
			Message:         fmt.Sprintf("호스트의 가능 시간 범위를 벗어났습니다: %s", windowsText(ownerPref)),
			PermissibleText: windowsText(ownerPref),
		}
	}

	// V4: targetDate must intersect requester's preferred windows.
	// preference.ForDate already scopes scheduleExceptions/personalTimes to
	// the exact target date, so "thisWeek only" holds by construction.
	if len(requesterPref) == 0 {
		return &dto.ErrPreferenceViolation{Rule: dto.RuleV4RequesterWindow, Message: "요청자가 해당 요일에 가능한 시간이 없습니다"}
	}

	// V5: [newStart,newEnd) must lie entirely inside owner ∩ requester.
	common := preference.Intersect(ownerPref, requesterPref)
	if !windowContains(common, r.newStart, r.newEnd) {
		return &dto.ErrPreferenceViolation{
			Rule:            dto.RuleV5CommonWindow,
			Message:         fmt.Sprintf("공통 가능 시간 범위를 벗어났습니다: %s", windowsText(common)),
			PermissibleText: windowsText(common),
		}
	}

	// V6: must not overlap any blocked interval on targetDate.
	idx := blocked.New(room.Settings)
	if bad, reason := idx.IsBlocked(r.targetDate, r.newStart, r.newEnd); bad {
		return &dto.ErrPreferenceViolation{
			Rule:    dto.RuleV6BlockedInterval,
			Message: fmt.Sprintf("차단된 시간과 겹칩니다: %s", reason.Reason),
		}
	}

	return nil
}

func (p *Planner) logActivity(ctx context.Context, roomID, actor uuid.UUID, action, detail string) {
	if p.activity == nil {
		return
	}
	_ = p.activity.Append(ctx, models.ActivityLogEntry{
		RoomID: roomID,
		Actor:  actor,
		Action: action,
		Detail: detail,
		At:     time.Now(),
	})
}
