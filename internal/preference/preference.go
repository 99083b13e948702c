// Package preference implements the Preference Model (C2): merging a
// user's recurring and date-specific preferred intervals for a given date
// into a canonical, non-overlapping set of windows, with personal-time
// blockers subtracted.
package preference

import (
	"sort"
	"time"

	"github.com/hangawi/coordination-core/internal/models"
	"github.com/hangawi/coordination-core/internal/timeutil"
)

// Window is a canonical non-overlapping preferred interval on one date.
type Window struct {
	StartMin int
	EndMin   int
	Priority int // highest priority among the entries that produced this window
}

// Preferred reports whether the window counts as "preferred" for UI
// shading purposes (spec.md §4.2: priority >= 2).
func (w Window) Preferred() bool {
	return w.Priority >= 2
}

type rawInterval struct {
	start, end, priority int
}

// ForDate computes the canonical preferred windows for profile on date d,
// per the four-step algorithm in spec.md §4.2.
func ForDate(profile models.UserProfile, d time.Time) ([]Window, error) {
	dateKey := timeutil.DateKey(d)
	weekday := timeutil.WeekdayOf(d)

	var raw []rawInterval

	// Step 1: defaultSchedule entries matching this date, either by
	// explicit specificDate or by recurring dayOfWeek (specificDate absent).
	for _, e := range profile.DefaultSchedule {
		matches := e.SpecificDate == dateKey
		if !matches && e.SpecificDate == "" && e.DayOfWeek != nil && *e.DayOfWeek == weekday {
			matches = true
		}
		if !matches {
			continue
		}
		start, err := timeutil.ToMinutes(e.StartTime)
		if err != nil {
			return nil, err
		}
		end, err := timeutil.ToMinutes(e.EndTime)
		if err != nil {
			return nil, err
		}
		priority := e.Priority
		if priority == 0 {
			priority = 1
		}
		raw = append(raw, rawInterval{start, end, priority})
	}

	// Step 2: scheduleExceptions for this exact date, override/augment.
	for _, ex := range profile.ScheduleExceptions {
		if ex.SpecificDate != dateKey {
			continue
		}
		if ex.IsHoliday {
			continue // a holiday exception removes preference entirely for the date
		}
		start, err := timeutil.ToMinutes(ex.StartTime)
		if err != nil {
			return nil, err
		}
		end, err := timeutil.ToMinutes(ex.EndTime)
		if err != nil {
			return nil, err
		}
		raw = append(raw, rawInterval{start, end, 2})
	}

	isHoliday := false
	for _, ex := range profile.ScheduleExceptions {
		if ex.SpecificDate == dateKey && ex.IsHoliday {
			isHoliday = true
		}
	}
	if isHoliday {
		raw = nil
	}

	// Step 3: personalTimes matching the date are blockers, collected
	// separately; specificDate wins over recurring days[]. A block that
	// crosses midnight also blocks the morning of D+1 (spec.md B1), so a
	// blocker rooted on D-1 is pulled in here too, contributing only its
	// spillover portion.
	var blockers []rawInterval
	for _, p := range profile.PersonalTimes {
		if !personalTimeMatchesDate(p, dateKey, weekday) {
			continue
		}
		start, end, err := personalTimeRange(p)
		if err != nil {
			return nil, err
		}
		today, _, _ := timeutil.SplitAtMidnight(start, end)
		blockers = append(blockers, rawInterval{today[0], today[1], 0})
	}

	prevDate := d.AddDate(0, 0, -1)
	prevDateKey := timeutil.DateKey(prevDate)
	prevWeekday := timeutil.WeekdayOf(prevDate)
	for _, p := range profile.PersonalTimes {
		if !personalTimeMatchesDate(p, prevDateKey, prevWeekday) {
			continue
		}
		start, end, err := personalTimeRange(p)
		if err != nil {
			return nil, err
		}
		_, spills, tomorrow := timeutil.SplitAtMidnight(start, end)
		if spills {
			blockers = append(blockers, rawInterval{tomorrow[0], tomorrow[1], 0})
		}
	}

	// Step 4: merge preferences by start, coalescing overlap/adjacency.
	merged := coalesce(raw)

	// Subtract blockers.
	result := subtractAll(merged, blockers)

	return result, nil
}

func personalTimeMatchesDate(p models.PersonalTime, dateKey string, weekday models.Weekday) bool {
	if p.SpecificDate != "" {
		return p.SpecificDate == dateKey
	}
	for _, dw := range p.Days {
		if dw == weekday {
			return true
		}
	}
	return false
}

func personalTimeRange(p models.PersonalTime) (start, end int, err error) {
	start, err = timeutil.ToMinutes(p.StartTime)
	if err != nil {
		return 0, 0, err
	}
	end, err = timeutil.ToMinutes(p.EndTime)
	if err != nil {
		return 0, 0, err
	}
	if end <= start {
		end += timeutil.MinutesPerDay
	}
	return start, end, nil
}

func coalesce(intervals []rawInterval) []rawInterval {
	if len(intervals) == 0 {
		return nil
	}
	sorted := append([]rawInterval(nil), intervals...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].start < sorted[j].start })

	out := []rawInterval{sorted[0]}
	for _, cur := range sorted[1:] {
		last := &out[len(out)-1]
		if cur.start <= last.end {
			if cur.end > last.end {
				last.end = cur.end
			}
			if cur.priority > last.priority {
				last.priority = cur.priority
			}
			continue
		}
		out = append(out, cur)
	}
	return out
}

// subtractAll removes every blocker interval from every preferred
// interval, splitting preferred intervals as needed.
func subtractAll(preferred, blockers []rawInterval) []Window {
	windows := make([]rawInterval, len(preferred))
	copy(windows, preferred)

	for _, b := range blockers {
		var next []rawInterval
		for _, w := range windows {
			if b.end <= w.start || b.start >= w.end {
				next = append(next, w)
				continue
			}
			if b.start > w.start {
				next = append(next, rawInterval{w.start, b.start, w.priority})
			}
			if b.end < w.end {
				next = append(next, rawInterval{b.end, w.end, w.priority})
			}
		}
		windows = next
	}

	sort.Slice(windows, func(i, j int) bool { return windows[i].start < windows[j].start })
	out := make([]Window, 0, len(windows))
	for _, w := range windows {
		if w.end > w.start {
			out = append(out, Window{StartMin: w.start, EndMin: w.end, Priority: w.priority})
		}
	}
	return out
}

// Intersect returns the overlap of two canonical window sets, as a new
// canonical window set (used to build owner ∩ member common windows).
func Intersect(a, b []Window) []Window {
	var out []Window
	for _, wa := range a {
		for _, wb := range b {
			start := max(wa.StartMin, wb.StartMin)
			end := min(wa.EndMin, wb.EndMin)
			if end > start {
				p := wa.Priority
				if wb.Priority > p {
					p = wb.Priority
				}
				out = append(out, Window{StartMin: start, EndMin: end, Priority: p})
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartMin < out[j].StartMin })
	return out
}

// Subtract removes every interval in cuts from every window in windows.
func Subtract(windows []Window, cuts []Window) []Window {
	raw := make([]rawInterval, len(windows))
	for i, w := range windows {
		raw[i] = rawInterval{w.StartMin, w.EndMin, w.Priority}
	}
	cutRaw := make([]rawInterval, len(cuts))
	for i, c := range cuts {
		cutRaw[i] = rawInterval{c.StartMin, c.EndMin, 0}
	}
	return subtractAll(raw, cutRaw)
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
