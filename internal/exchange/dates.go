package exchange

import (
	"time"

	"github.com/hangawi/coordination-core/internal/models"
)

// mondayOf returns the Monday 00:00 of t's local week.
func mondayOf(t time.Time) time.Time {
	wd := int(t.Weekday())
	daysFromMonday := (wd + 6) % 7
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location()).AddDate(0, 0, -daysFromMonday)
}

// dateForWeekday resolves the date in the week `weekOffset` weeks from
// now's week that falls on weekday wd.
func dateForWeekday(now time.Time, weekOffset int, wd models.Weekday) time.Time {
	monday := mondayOf(now).AddDate(0, 0, weekOffset*7)
	offset := (int(wd) + 6) % 7
	return monday.AddDate(0, 0, offset)
}

// resolveSourceDate implements the time_change sourceDate resolution of
// spec.md §4.8.1: "sourceWeekOffset + sourceDay; defaults: today."
func resolveSourceDate(now time.Time, intent models.ParsedIntent) time.Time {
	if intent.SourceDay == nil {
		return truncateToDay(now)
	}
	offset := 0
	if intent.SourceWeekOffset != nil {
		offset = *intent.SourceWeekOffset
	}
	return dateForWeekday(now, offset, *intent.SourceDay)
}

// resolveTargetDate implements the time_change targetDate resolution:
// weekOffset/weekNumber + targetDay.
func resolveTargetDate(now time.Time, intent models.ParsedIntent) (time.Time, bool) {
	if intent.TargetDay == nil {
		return time.Time{}, false
	}
	offset := 0
	switch {
	case intent.WeekOffset != nil:
		offset = *intent.WeekOffset
	case intent.WeekNumber != nil:
		// weekNumber is 1-based relative to the current month's first week.
		firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		return dateForWeekday(firstOfMonth, *intent.WeekNumber-1, *intent.TargetDay), true
	}
	return dateForWeekday(now, offset, *intent.TargetDay), true
}

// resolveDateChangeDate implements date_change's explicit month/day/year
// resolution.
func resolveDateChangeDate(now time.Time, month, day, year *int) (time.Time, bool) {
	if month == nil || day == nil {
		return time.Time{}, false
	}
	y := now.Year()
	if year != nil {
		y = *year
	}
	return time.Date(y, time.Month(*month), *day, 0, 0, 0, 0, now.Location()), true
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
