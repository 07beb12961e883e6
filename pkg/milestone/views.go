package milestone

import (
	"fmt"
	"math"
	"time"

	"github.com/spencer-p/sunsetdash/pkg/sunset"
	"github.com/spencer-p/sunsetdash/pkg/timetricks"
)

// Countdown breaks down the time from now until the primary milestone's
// sunset. ok is false when there is no milestone or its sunset is not in the
// future.
func (e *Engine) Countdown(loc sunset.Location, now time.Time) (b Breakdown, ok bool) {
	next, err := e.NextMilestone(loc, now)
	if err != nil {
		return Breakdown{}, false
	}
	return Until(now, next.Match.Sunset)
}

// Until breaks down the time from now to target. ok is false unless target is
// strictly after now.
func Until(now, target time.Time) (b Breakdown, ok bool) {
	if !target.After(now) {
		return Breakdown{}, false
	}
	ms := target.Sub(now).Milliseconds()
	b = Breakdown{
		TotalMinutes: ms / 60000,
		Target:       target,
	}
	b.Days, ms = ms/86400000, ms%86400000
	b.Hours, ms = ms/3600000, ms%3600000
	b.Minutes, ms = ms/60000, ms%60000
	b.Seconds = ms / 1000
	return b, true
}

// Calendar resolves each target, given in fractional hours, to the next day
// sunset reaches it. Output keeps the order of hours; targets that are never
// reached, or that are not a time of day, get a nil Date. An invalid location
// is an error rather than a calendar of misses.
func (e *Engine) Calendar(loc sunset.Location, start time.Time, hours []float64) ([]CalendarEntry, error) {
	if err := loc.Validate(); err != nil {
		return nil, err
	}
	zone := e.Querier.ZoneFor(loc)
	result := make([]CalendarEntry, 0, len(hours))
	for _, h := range hours {
		c, ok := clockOfHours(h)
		entry := CalendarEntry{
			Label:       fmt.Sprintf("%gh", h),
			DaysFromNow: -1,
		}
		if !ok {
			result = append(result, entry)
			continue
		}

		entry.Label = c.String()
		if match, err := e.Search(loc, c, start, e.horizon()); err == nil {
			entry.Date = &match.Date
			entry.Sunset = &match.Sunset
			entry.DaysFromNow = timetricks.DaysBetween(start, match.Date, zone)
		}
		result = append(result, entry)
	}
	return result, nil
}

// clockOfHours converts fractional hours to a clock within one day.
func clockOfHours(h float64) (timetricks.Clock, bool) {
	if math.IsNaN(h) || h < 0 || h >= 24 {
		return timetricks.Clock{}, false
	}
	c := timetricks.ClockFromHours(h)
	return c, c.Valid()
}
