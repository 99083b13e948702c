package recurrence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hangawi/coordination-core/internal/models"
)

func weekdayPtr(w models.Weekday) *models.Weekday { return &w }

func TestExpandWeeklyOnReturnsEveryOccurrence(t *testing.T) {
	from := time.Date(2026, time.July, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, time.July, 31, 0, 0, 0, 0, time.UTC)

	dates, err := ExpandWeeklyOn(models.Wednesday, from, to)
	require.NoError(t, err)
	require.Len(t, dates, 5) // 2026-07: Wednesdays on 1, 8, 15, 22, 29

	for _, d := range dates {
		assert.Equal(t, time.Wednesday, d.Weekday())
	}
	assert.Equal(t, "2026-07-01", dates[0].Format("2006-01-02"))
	assert.Equal(t, "2026-07-29", dates[len(dates)-1].Format("2006-01-02"))
}

func TestExpandWeeklyOnRejectsUnknownWeekday(t *testing.T) {
	from := time.Date(2026, time.July, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, time.July, 31, 0, 0, 0, 0, time.UTC)

	_, err := ExpandWeeklyOn(models.Weekday(99), from, to)
	assert.Error(t, err)
}

func TestExpandRoomExceptionsMergesRecurringAndSpecific(t *testing.T) {
	from := time.Date(2026, time.July, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, time.July, 31, 0, 0, 0, 0, time.UTC)

	exceptions := []models.RoomException{
		{Recurring: true, DayOfWeek: weekdayPtr(models.Wednesday), Closed: true, Label: "no class Wednesdays"},
		{SpecificDate: "2026-07-15", Closed: true, Label: "holiday"},
	}

	out, err := ExpandRoomExceptions(exceptions, from, to)
	require.NoError(t, err)

	// the specific-date exception for 2026-07-15 overrides the recurring
	// Wednesday exception for that same date.
	assert.Equal(t, "holiday", out["2026-07-15"].Label)
	assert.Equal(t, "no class Wednesdays", out["2026-07-01"].Label)
	assert.Equal(t, "no class Wednesdays", out["2026-07-29"].Label)
	_, thursdayPresent := out["2026-07-02"]
	assert.False(t, thursdayPresent)
}

func TestExpandRoomExceptionsExpandsMultiDayRange(t *testing.T) {
	from := time.Date(2026, time.July, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, time.July, 31, 0, 0, 0, 0, time.UTC)

	exceptions := []models.RoomException{
		{SpecificDate: "2026-07-10", EndDate: "2026-07-12", Closed: true, Label: "retreat"},
	}

	out, err := ExpandRoomExceptions(exceptions, from, to)
	require.NoError(t, err)
	assert.Equal(t, "retreat", out["2026-07-10"].Label)
	assert.Equal(t, "retreat", out["2026-07-11"].Label)
	assert.Equal(t, "retreat", out["2026-07-12"].Label)
	_, beforePresent := out["2026-07-09"]
	assert.False(t, beforePresent)
	_, afterPresent := out["2026-07-13"]
	assert.False(t, afterPresent)
}

func TestExpandRoomExceptionsSkipsRecurringWithoutWeekday(t *testing.T) {
	from := time.Date(2026, time.July, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, time.July, 31, 0, 0, 0, 0, time.UTC)

	out, err := ExpandRoomExceptions([]models.RoomException{{Recurring: true}}, from, to)
	require.NoError(t, err)
	assert.Empty(t, out)
}
