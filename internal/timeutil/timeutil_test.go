package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToMinutesFromMinutesRoundTrip(t *testing.T) {
	m, err := ToMinutes("09:30")
	require.NoError(t, err)
	assert.Equal(t, 9*60+30, m)
	assert.Equal(t, "09:30", FromMinutes(m))
}

func TestToMinutesRejectsMalformed(t *testing.T) {
	_, err := ToMinutes("9:5:30")
	assert.Error(t, err)

	_, err = ToMinutes("09:75")
	assert.Error(t, err)

	_, err = ToMinutes("notatime")
	assert.Error(t, err)
}

func TestOverlaps(t *testing.T) {
	assert.True(t, Overlaps(60, 120, 90, 150))
	assert.True(t, Overlaps(60, 120, 0, 61))
	assert.False(t, Overlaps(60, 120, 120, 180))
	assert.False(t, Overlaps(60, 120, 0, 60))
}

func TestContains(t *testing.T) {
	assert.True(t, Contains(60, 120, 60))
	assert.True(t, Contains(60, 120, 119))
	assert.False(t, Contains(60, 120, 120))
	assert.False(t, Contains(60, 120, 59))
}

// B1: a personal time crossing midnight blocks both the evening of D and
// the morning of D+1.
func TestSplitAtMidnightCrossesDay(t *testing.T) {
	today, spills, tomorrow := SplitAtMidnight(23*60, 25*60)
	assert.Equal(t, [2]int{23 * 60, MinutesPerDay}, today)
	assert.True(t, spills)
	assert.Equal(t, [2]int{0, 60}, tomorrow)
}

func TestSplitAtMidnightSameDay(t *testing.T) {
	today, spills, _ := SplitAtMidnight(9*60, 10*60)
	assert.Equal(t, [2]int{9 * 60, 10 * 60}, today)
	assert.False(t, spills)
}

func TestRoundUpTo10(t *testing.T) {
	assert.Equal(t, 0, RoundUpTo10(0))
	assert.Equal(t, 10, RoundUpTo10(1))
	assert.Equal(t, 20, RoundUpTo10(11))
	assert.Equal(t, 30, RoundUpTo10(30))
}

func TestWeekdayOf(t *testing.T) {
	d := time.Date(2026, time.July, 29, 0, 0, 0, 0, time.UTC) // a Wednesday
	assert.Equal(t, time.Wednesday, time.Weekday(WeekdayOf(d)))
}

func TestDateKey(t *testing.T) {
	d := time.Date(2026, time.January, 5, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, "2026-01-05", DateKey(d))
}
