package exchange

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

type fakeProfiles struct {
	byID map[uuid.UUID]models.UserProfile
}

func (f *fakeProfiles) GetProfile(_ context.Context, userID uuid.UUID) (models.UserProfile, error) {
	return f.byID[userID], nil
}

type recordingActivity struct {
	entries []models.ActivityLogEntry
}

func (r *recordingActivity) Append(_ context.Context, entry models.ActivityLogEntry) error {
	r.entries = append(r.entries, entry)
	return nil
}

func weekdayPtr(w models.Weekday) *models.Weekday { return &w }
func intPtr(i int) *int                           { return &i }
func strPtr(s string) *string                     { return &s }

// 2026-07-27 is a Monday; 2026-07-29 is the Wednesday of the same week.
var now = time.Date(2026, time.July, 27, 10, 0, 0, 0, time.UTC)

func allDaySchedule(start, end string) []models.ScheduleEntry {
	var out []models.ScheduleEntry
	for wd := models.Monday; wd <= models.Friday; wd++ {
		out = append(out, models.ScheduleEntry{DayOfWeek: weekdayPtr(wd), StartTime: start, EndTime: end})
	}
	return out
}

func TestApplyTimeChangeImmediateSwap(t *testing.T) {
	owner := uuid.New()
	requester := uuid.New()
	profiles := &fakeProfiles{byID: map[uuid.UUID]models.UserProfile{
		owner:     {ID: owner, DefaultSchedule: allDaySchedule("09:00", "18:00")},
		requester: {ID: requester, DefaultSchedule: allDaySchedule("09:00", "18:00")},
	}}
	activity := &recordingActivity{}
	planner := New(profiles, recompute.New(nil, profiles), activity)

	sourceSlotID := uuid.New()
	room := &models.RoomDocument{
		OwnerID: owner,
		Slots: []models.Slot{
			{ID: sourceSlotID, UserID: requester, Date: "2026-07-27", StartMin: 9 * 60, EndMin: 10 * 60},
		},
	}

	intent := models.ParsedIntent{
		Kind:        models.IntentTimeChange,
		RequesterID: requester,
		TargetDay:   weekdayPtr(models.Wednesday),
		TargetTime:  strPtr("14:00"),
	}

	outcome, err := planner.Apply(context.Background(), room, intent, now)
	require.NoError(t, err)
	assert.Equal(t, CaseImmediateSwap, outcome.Case)
	assert.Equal(t, "2026-07-29", outcome.TargetDate)
	assert.Equal(t, "14:00", outcome.TargetTime)
	assert.False(t, outcome.AlreadyAtTarget)

	require.Len(t, room.Slots, 1)
	moved := room.Slots[0]
	assert.Equal(t, "2026-07-29", moved.Date)
	assert.Equal(t, 14*60, moved.StartMin)
	assert.NotEqual(t, sourceSlotID, moved.ID, "the old slot is removed and a new one inserted")
	assert.NotEmpty(t, activity.entries)
}

// L1: applying a move to where the block already sits is a no-op that
// reports AlreadyAtTarget rather than erroring or duplicating the slot.
func TestApplyTimeChangeIdempotentAtTarget(t *testing.T) {
	owner := uuid.New()
	requester := uuid.New()
	profiles := &fakeProfiles{byID: map[uuid.UUID]models.UserProfile{
		owner:     {ID: owner, DefaultSchedule: allDaySchedule("09:00", "18:00")},
		requester: {ID: requester, DefaultSchedule: allDaySchedule("09:00", "18:00")},
	}}
	planner := New(profiles, recompute.New(nil, profiles), nil)

	room := &models.RoomDocument{
		OwnerID: owner,
		Slots: []models.Slot{
			{ID: uuid.New(), UserID: requester, Date: "2026-07-27", StartMin: 9 * 60, EndMin: 10 * 60},
		},
	}

	intent := models.ParsedIntent{
		Kind:        models.IntentTimeChange,
		RequesterID: requester,
		TargetDay:   weekdayPtr(models.Monday),
		TargetTime:  strPtr("09:00"),
	}

	outcome, err := planner.Apply(context.Background(), room, intent, now)
	require.NoError(t, err)
	assert.True(t, outcome.AlreadyAtTarget)
	require.Len(t, room.Slots, 1, "no duplicate slot is created")
}

func TestApplyTimeChangeYieldsRequestWhenTargetOccupied(t *testing.T) {
	owner := uuid.New()
	requester := uuid.New()
	occupant := uuid.New()
	profiles := &fakeProfiles{byID: map[uuid.UUID]models.UserProfile{
		owner:     {ID: owner, DefaultSchedule: allDaySchedule("09:00", "18:00")},
		requester: {ID: requester, DefaultSchedule: allDaySchedule("09:00", "18:00")},
	}}
	planner := New(profiles, recompute.New(nil, profiles), nil)

	room := &models.RoomDocument{
		OwnerID: owner,
		Slots: []models.Slot{
			{ID: uuid.New(), UserID: requester, Date: "2026-07-27", StartMin: 9 * 60, EndMin: 10 * 60},
			{ID: uuid.New(), UserID: occupant, Date: "2026-07-29", StartMin: 14 * 60, EndMin: 15 * 60},
		},
	}

	intent := models.ParsedIntent{
		Kind:        models.IntentTimeChange,
		RequesterID: requester,
		TargetDay:   weekdayPtr(models.Wednesday),
		TargetTime:  strPtr("14:00"),
	}

	outcome, err := planner.Apply(context.Background(), room, intent, now)
	require.NoError(t, err)
	assert.Equal(t, CaseYieldRequest, outcome.Case)
	require.NotNil(t, outcome.CreatedRequest)
	assert.Equal(t, models.RequestPending, outcome.CreatedRequest.Status)
	assert.Equal(t, occupant, *outcome.CreatedRequest.TargetUserID)
	require.Len(t, room.Requests, 1)
	// the occupied slot and the requester's source slot are both untouched
	assert.Len(t, room.Slots, 2)
}

func TestApplyTimeChangeRejectsWeekendTarget(t *testing.T) {
	owner := uuid.New()
	requester := uuid.New()
	profiles := &fakeProfiles{byID: map[uuid.UUID]models.UserProfile{
		owner:     {ID: owner},
		requester: {ID: requester},
	}}
	planner := New(profiles, recompute.New(nil, profiles), nil)

	room := &models.RoomDocument{
		OwnerID: owner,
		Slots: []models.Slot{
			{ID: uuid.New(), UserID: requester, Date: "2026-07-27", StartMin: 9 * 60, EndMin: 10 * 60},
		},
	}

	intent := models.ParsedIntent{
		Kind:        models.IntentTimeChange,
		RequesterID: requester,
		TargetDay:   weekdayPtr(models.Saturday),
		TargetTime:  strPtr("10:00"),
	}

	_, err := planner.Apply(context.Background(), room, intent, now)
	require.Error(t, err)
	var pv *dto.ErrPreferenceViolation
	require.True(t, errors.As(err, &pv))
	assert.Equal(t, dto.RuleV1TargetWeekday, pv.Rule)
}

func TestApplyTimeChangeRejectsOutsideCommonWindow(t *testing.T) {
	owner := uuid.New()
	requester := uuid.New()
	profiles := &fakeProfiles{byID: map[uuid.UUID]models.UserProfile{
		owner:     {ID: owner, DefaultSchedule: allDaySchedule("09:00", "18:00")},
		requester: {ID: requester, DefaultSchedule: allDaySchedule("09:00", "13:00")},
	}}
	planner := New(profiles, recompute.New(nil, profiles), nil)

	room := &models.RoomDocument{
		OwnerID: owner,
		Slots: []models.Slot{
			{ID: uuid.New(), UserID: requester, Date: "2026-07-27", StartMin: 9 * 60, EndMin: 10 * 60},
		},
	}

	intent := models.ParsedIntent{
		Kind:        models.IntentTimeChange,
		RequesterID: requester,
		TargetDay:   weekdayPtr(models.Wednesday),
		TargetTime:  strPtr("14:00"),
	}

	_, err := planner.Apply(context.Background(), room, intent, now)
	require.Error(t, err)
	var pv *dto.ErrPreferenceViolation
	require.True(t, errors.As(err, &pv))
	assert.Equal(t, dto.RuleV5CommonWindow, pv.Rule, "owner covers the target time alone but the requester's window does not reach it")
}

func TestApplyDateChangeUsesExplicitDates(t *testing.T) {
	owner := uuid.New()
	requester := uuid.New()
	profiles := &fakeProfiles{byID: map[uuid.UUID]models.UserProfile{
		owner:     {ID: owner, DefaultSchedule: allDaySchedule("09:00", "18:00")},
		requester: {ID: requester, DefaultSchedule: allDaySchedule("09:00", "18:00")},
	}}
	planner := New(profiles, recompute.New(nil, profiles), nil)

	room := &models.RoomDocument{
		OwnerID: owner,
		Slots: []models.Slot{
			{ID: uuid.New(), UserID: requester, Date: "2026-07-27", StartMin: 9 * 60, EndMin: 10 * 60},
		},
	}

	intent := models.ParsedIntent{
		Kind:        models.IntentDateChange,
		RequesterID: requester,
		SourceMonth: intPtr(7), SourceDate: intPtr(27),
		TargetMonth: intPtr(7), TargetDate: intPtr(29),
		TargetTime: strPtr("11:00"),
	}

	outcome, err := planner.Apply(context.Background(), room, intent, now)
	require.NoError(t, err)
	assert.Equal(t, CaseImmediateSwap, outcome.Case)
	assert.Equal(t, "2026-07-29", outcome.TargetDate)
}

func TestApplyRejectsConfirmIntent(t *testing.T) {
	profiles := &fakeProfiles{byID: map[uuid.UUID]models.UserProfile{}}
	planner := New(profiles, recompute.New(nil, profiles), nil)
	room := &models.RoomDocument{}

	_, err := planner.Apply(context.Background(), room, models.ParsedIntent{Kind: models.IntentConfirm}, now)
	assert.Error(t, err)
}
