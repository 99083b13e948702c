// Package blocked implements the Blocked-Interval Index (C3): room-wide
// blocked times, daily-recurring and date-specific room exceptions, and
// the absolute 17:00-24:00 block that always applies.
package blocked

import (
	"fmt"
	"time"

	"github.com/hangawi/coordination-core/internal/models"
	"github.com/hangawi/coordination-core/internal/timeutil"
)

// AbsoluteBlockStartMin is 17:00 in minutes-since-midnight.
const AbsoluteBlockStartMin = 17 * 60

// AbsoluteBlockEndMin is 24:00 (end of day) in minutes-since-midnight.
const AbsoluteBlockEndMin = timeutil.MinutesPerDay

// Interval is a blocked range with a human-readable reason.
type Interval struct {
	StartMin int
	EndMin   int
	Reason   string
}

// Index answers isBlocked queries for a room on a given date.
type Index struct {
	settings models.RoomSettings
}

// New builds a Index over a room's settings.
func New(settings models.RoomSettings) Index {
	return Index{settings: settings}
}

// IsBlocked reports whether [startMin,endMin) intersects any blocked
// interval on date d, returning the first offending interval found.
func (idx Index) IsBlocked(d time.Time, startMin, endMin int) (bool, *Interval) {
	for _, iv := range idx.intervalsFor(d) {
		if timeutil.Overlaps(startMin, endMin, iv.StartMin, iv.EndMin) {
			cp := iv
			return true, &cp
		}
	}
	return false, nil
}

// Intervals returns every blocked interval applicable on date d, for
// callers (e.g. the scheduler) that need to subtract them in bulk rather
// than query point-by-point.
func (idx Index) Intervals(d time.Time) []Interval {
	return idx.intervalsFor(d)
}

// intervalsFor returns every blocked interval applicable on date d.
func (idx Index) intervalsFor(d time.Time) []Interval {
	dateKey := timeutil.DateKey(d)
	weekday := timeutil.WeekdayOf(d)

	var out []Interval

	for _, bt := range idx.settings.BlockedTimes {
		matches := bt.SpecificDate == dateKey
		if !matches && bt.SpecificDate == "" && bt.DayOfWeek != nil && *bt.DayOfWeek == weekday {
			matches = true
		}
		if !matches {
			continue
		}
		start, err := timeutil.ToMinutes(bt.StartTime)
		if err != nil {
			continue
		}
		end, err := timeutil.ToMinutes(bt.EndTime)
		if err != nil {
			continue
		}
		label := bt.Label
		if label == "" {
			label = "blocked time"
		}
		out = append(out, Interval{start, end, label})
	}

	for _, ex := range idx.settings.RoomExceptions {
		if ex.Closed {
			continue // handled as a full-day closure by the caller, not an interval
		}
		matches := ex.Recurring && ex.DayOfWeek != nil && *ex.DayOfWeek == weekday
		if !matches && dateInRange(dateKey, ex.SpecificDate, ex.EndDate) {
			matches = true
		}
		if !matches || ex.StartTime == "" || ex.EndTime == "" {
			continue
		}
		start, err := timeutil.ToMinutes(ex.StartTime)
		if err != nil {
			continue
		}
		end, err := timeutil.ToMinutes(ex.EndTime)
		if err != nil {
			continue
		}
		label := ex.Label
		if label == "" {
			label = "room exception"
		}
		out = append(out, Interval{start, end, label})
	}

	out = append(out, Interval{AbsoluteBlockStartMin, AbsoluteBlockEndMin, fmt.Sprintf("absolute block %s-24:00", timeutil.FromMinutes(AbsoluteBlockStartMin))})

	return out
}

// ClosedAllDay reports whether a room exception closes the entire date.
func (idx Index) ClosedAllDay(d time.Time) bool {
	dateKey := timeutil.DateKey(d)
	weekday := timeutil.WeekdayOf(d)
	for _, ex := range idx.settings.RoomExceptions {
		if !ex.Closed {
			continue
		}
		if dateInRange(dateKey, ex.SpecificDate, ex.EndDate) {
			return true
		}
		if ex.Recurring && ex.DayOfWeek != nil && *ex.DayOfWeek == weekday {
			return true
		}
	}
	return false
}

// dateInRange reports whether dateKey falls within [start,end] inclusive,
// treating an empty end as a single-day range ("YYYY-MM-DD" keys compare
// correctly as plain strings).
func dateInRange(dateKey, start, end string) bool {
	if start == "" {
		return false
	}
	if end == "" {
		end = start
	}
	return dateKey >= start && dateKey <= end
}
