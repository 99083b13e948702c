// Package timeutil implements the time/date primitives every other
// coordination component builds on: HH:MM <-> minute conversions, local
// date keys, weekday arithmetic, and interval overlap/containment
// predicates. All operations here are pure.
package timeutil

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/hangawi/coordination-core/internal/models"
)

const MinutesPerDay = 24 * 60

// ToMinutes parses an "HH:MM" string into minutes since midnight.
func ToMinutes(hhmm string) (int, error) {
	parts := strings.SplitN(hhmm, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("timeutil: malformed time %q", hhmm)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("timeutil: malformed hour in %q: %w", hhmm, err)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("timeutil: malformed minute in %q: %w", hhmm, err)
	}
	if h < 0 || m < 0 || m > 59 {
		return 0, fmt.Errorf("timeutil: out-of-range time %q", hhmm)
	}
	return h*60 + m, nil
}

// FromMinutes renders minutes-since-midnight as "HH:MM". Values beyond
// 24:00 wrap onto the next day's clock face; callers that care about
// day-crossing must track that separately (see SplitAtMidnight).
func FromMinutes(min int) string {
	m := min % MinutesPerDay
	if m < 0 {
		m += MinutesPerDay
	}
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// DateKey renders a time.Time as a local "YYYY-MM-DD" key.
func DateKey(d time.Time) string {
	return d.Format("2006-01-02")
}

// WeekdayOf returns the Weekday of a date in its own location.
func WeekdayOf(d time.Time) models.Weekday {
	return models.Weekday(d.Weekday())
}

// AddMinutes returns d advanced by m minutes (m may be negative).
func AddMinutes(d time.Time, m int) time.Time {
	return d.Add(time.Duration(m) * time.Minute)
}

// Overlaps reports whether half-open ranges [a1,a2) and [b1,b2) intersect.
func Overlaps(a1, a2, b1, b2 int) bool {
	return a1 < b2 && b1 < a2
}

// Contains reports whether x lies in the half-open range [start,end).
func Contains(start, end, x int) bool {
	return x >= start && x < end
}

// SplitAtMidnight splits a possibly midnight-crossing [startMin,endMin)
// range into at most two contiguous half-day ranges: the remainder of the
// starting day, and the portion that spills into the next day (returned
// with its own 0-based minutes). Used for personal-time blockers per
// spec.md §4.1.
func SplitAtMidnight(startMin, endMin int) (today [2]int, spillsIntoNextDay bool, tomorrow [2]int) {
	if endMin <= MinutesPerDay {
		return [2]int{startMin, endMin}, false, [2]int{}
	}
	return [2]int{startMin, MinutesPerDay}, true, [2]int{0, endMin - MinutesPerDay}
}

// RoundUpTo10 rounds a positive duration up to the next 10-minute boundary.
func RoundUpTo10(minutes int) int {
	if minutes <= 0 {
		return 0
	}
	rem := minutes % 10
	if rem == 0 {
		return minutes
	}
	return minutes + (10 - rem)
}
