package preference

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hangawi/coordination-core/internal/models"
)

func weekdayPtr(w models.Weekday) *models.Weekday { return &w }

func TestForDateRecurringEntry(t *testing.T) {
	// 2026-07-29 is a Wednesday.
	d := time.Date(2026, time.July, 29, 0, 0, 0, 0, time.UTC)
	profile := models.UserProfile{
		DefaultSchedule: []models.ScheduleEntry{
			{DayOfWeek: weekdayPtr(models.Wednesday), StartTime: "09:00", EndTime: "12:00", Priority: 2},
		},
	}

	windows, err := ForDate(profile, d)
	require.NoError(t, err)
	require.Len(t, windows, 1)
	assert.Equal(t, 9*60, windows[0].StartMin)
	assert.Equal(t, 12*60, windows[0].EndMin)
	assert.True(t, windows[0].Preferred())
}

func TestForDateHolidayExceptionClearsPreference(t *testing.T) {
	d := time.Date(2026, time.July, 29, 0, 0, 0, 0, time.UTC)
	profile := models.UserProfile{
		DefaultSchedule: []models.ScheduleEntry{
			{DayOfWeek: weekdayPtr(models.Wednesday), StartTime: "09:00", EndTime: "12:00", Priority: 2},
		},
		ScheduleExceptions: []models.ScheduleException{
			{SpecificDate: "2026-07-29", IsHoliday: true},
		},
	}

	windows, err := ForDate(profile, d)
	require.NoError(t, err)
	assert.Empty(t, windows)
}

func TestForDateExceptionAddsToRecurring(t *testing.T) {
	d := time.Date(2026, time.July, 29, 0, 0, 0, 0, time.UTC)
	profile := models.UserProfile{
		DefaultSchedule: []models.ScheduleEntry{
			{DayOfWeek: weekdayPtr(models.Wednesday), StartTime: "09:00", EndTime: "12:00", Priority: 1},
		},
		ScheduleExceptions: []models.ScheduleException{
			{SpecificDate: "2026-07-29", StartTime: "14:00", EndTime: "16:00"},
		},
	}

	windows, err := ForDate(profile, d)
	require.NoError(t, err)
	// Non-overlapping: both the recurring window and the exception window survive.
	require.Len(t, windows, 2)
	assert.Equal(t, 9*60, windows[0].StartMin)
	assert.Equal(t, 14*60, windows[1].StartMin)
}

func TestForDatePersonalTimeBlocksPreference(t *testing.T) {
	d := time.Date(2026, time.July, 29, 0, 0, 0, 0, time.UTC)
	profile := models.UserProfile{
		DefaultSchedule: []models.ScheduleEntry{
			{DayOfWeek: weekdayPtr(models.Wednesday), StartTime: "09:00", EndTime: "12:00", Priority: 2},
		},
		PersonalTimes: []models.PersonalTime{
			{Days: []models.Weekday{models.Wednesday}, StartTime: "10:00", EndTime: "10:30"},
		},
	}

	windows, err := ForDate(profile, d)
	require.NoError(t, err)
	require.Len(t, windows, 2)
	assert.Equal(t, [2]int{9 * 60, 10 * 60}, [2]int{windows[0].StartMin, windows[0].EndMin})
	assert.Equal(t, [2]int{10*60 + 30, 12 * 60}, [2]int{windows[1].StartMin, windows[1].EndMin})
}

// B1: a personal-time block that crosses midnight blocks the evening of
// D and the morning of D+1.
func TestForDatePersonalTimeSpillsIntoNextMorning(t *testing.T) {
	tuesday := time.Date(2026, time.July, 28, 0, 0, 0, 0, time.UTC)
	wednesday := time.Date(2026, time.July, 29, 0, 0, 0, 0, time.UTC)
	profile := models.UserProfile{
		DefaultSchedule: []models.ScheduleEntry{
			{DayOfWeek: weekdayPtr(models.Tuesday), StartTime: "20:00", EndTime: "24:00", Priority: 2},
			{DayOfWeek: weekdayPtr(models.Wednesday), StartTime: "00:00", EndTime: "06:00", Priority: 2},
		},
		PersonalTimes: []models.PersonalTime{
			{Days: []models.Weekday{models.Tuesday}, StartTime: "23:00", EndTime: "02:00"},
		},
	}

	tuesdayWindows, err := ForDate(profile, tuesday)
	require.NoError(t, err)
	require.Len(t, tuesdayWindows, 1)
	assert.Equal(t, 20*60, tuesdayWindows[0].StartMin)
	assert.Equal(t, 23*60, tuesdayWindows[0].EndMin, "blocked from 23:00 through the rest of Tuesday")

	wednesdayWindows, err := ForDate(profile, wednesday)
	require.NoError(t, err)
	require.Len(t, wednesdayWindows, 1)
	assert.Equal(t, 2*60, wednesdayWindows[0].StartMin, "Tuesday night's block spills into Wednesday 00:00-02:00")
	assert.Equal(t, 6*60, wednesdayWindows[0].EndMin)
}

func TestIntersect(t *testing.T) {
	a := []Window{{StartMin: 9 * 60, EndMin: 12 * 60, Priority: 2}}
	b := []Window{{StartMin: 10 * 60, EndMin: 14 * 60, Priority: 1}}

	got := Intersect(a, b)
	require.Len(t, got, 1)
	assert.Equal(t, 10*60, got[0].StartMin)
	assert.Equal(t, 12*60, got[0].EndMin)
	assert.Equal(t, 2, got[0].Priority)
}

func TestSubtract(t *testing.T) {
	windows := []Window{{StartMin: 9 * 60, EndMin: 12 * 60}}
	cuts := []Window{{StartMin: 10 * 60, EndMin: 10*60 + 30}}

	got := Subtract(windows, cuts)
	require.Len(t, got, 2)
	assert.Equal(t, 9*60, got[0].StartMin)
	assert.Equal(t, 10*60, got[0].EndMin)
	assert.Equal(t, 10*60+30, got[1].StartMin)
	assert.Equal(t, 12*60, got[1].EndMin)
}
