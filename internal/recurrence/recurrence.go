// Package recurrence expands daily_recurring room exceptions and weekly
// defaultSchedule entries into concrete dates using an RRULE engine
// rather than hand-rolled date walking.
package recurrence

import (
	"fmt"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/hangawi/coordination-core/internal/models"
)

var weekdayToRRule = map[models.Weekday]rrule.Weekday{
	models.Sunday:    rrule.SU,
	models.Monday:    rrule.MO,
	models.Tuesday:   rrule.TU,
	models.Wednesday: rrule.WE,
	models.Thursday:  rrule.TH,
	models.Friday:    rrule.FR,
	models.Saturday:  rrule.SA,
}

// ExpandWeeklyOn returns every occurrence of weekday wd between from and
// to (inclusive), used to expand a recurring `RoomException` or
// `defaultSchedule` entry over a window (e.g. a run-schedule call for a
// target week, or a UI calendar range).
func ExpandWeeklyOn(wd models.Weekday, from, to time.Time) ([]time.Time, error) {
	rw, ok := weekdayToRRule[wd]
	if !ok {
		return nil, fmt.Errorf("recurrence: unknown weekday %v", wd)
	}
	rule, err := rrule.NewRRule(rrule.ROption{
		Freq:      rrule.WEEKLY,
		Byweekday: []rrule.Weekday{rw},
		Dtstart:   from,
	})
	if err != nil {
		return nil, fmt.Errorf("recurrence: build rule: %w", err)
	}
	return rule.Between(from, to, true), nil
}

// ExpandRoomExceptions resolves every recurring RoomException into its
// concrete dates within [from,to], alongside the date-specific ones,
// expanding each [SpecificDate,EndDate] range (spec.md §4.3 C3) day by day.
func ExpandRoomExceptions(exceptions []models.RoomException, from, to time.Time) (map[string]models.RoomException, error) {
	out := make(map[string]models.RoomException)
	for _, ex := range exceptions {
		if !ex.Recurring {
			if ex.SpecificDate == "" {
				continue
			}
			start, err := time.Parse("2006-01-02", ex.SpecificDate)
			if err != nil {
				return nil, fmt.Errorf("recurrence: malformed specificDate %q: %w", ex.SpecificDate, err)
			}
			end := start
			if ex.EndDate != "" {
				end, err = time.Parse("2006-01-02", ex.EndDate)
				if err != nil {
					return nil, fmt.Errorf("recurrence: malformed endDate %q: %w", ex.EndDate, err)
				}
			}
			for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
				out[d.Format("2006-01-02")] = ex
			}
			continue
		}
		if ex.DayOfWeek == nil {
			continue
		}
		dates, err := ExpandWeeklyOn(*ex.DayOfWeek, from, to)
		if err != nil {
			return nil, err
		}
		for _, d := range dates {
			out[d.Format("2006-01-02")] = ex
		}
	}
	return out, nil
}
