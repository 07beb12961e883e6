package milestone

import (
	"errors"
	"fmt"
	"time"

	"github.com/spencer-p/sunsetdash/pkg/sunset"
	"github.com/spencer-p/sunsetdash/pkg/timetricks"
)

// Ladder is the range of clock times milestones are drawn from, aligned to
// Step.
type Ladder struct {
	Start, End timetricks.Clock
	Step       time.Duration
}

// DefaultLadder runs from 4 PM to 9 PM in half hours.
var DefaultLadder = Ladder{
	Start: timetricks.Clock{Hour: 16},
	End:   timetricks.Clock{Hour: 21},
	Step:  30 * time.Minute,
}

func (l Ladder) step() int {
	if m := int(l.Step / time.Minute); m > 0 {
		return m
	}
	return 30
}

// Milestones lists every rung from Start to End inclusive.
func (l Ladder) Milestones() []Milestone {
	var result []Milestone
	step := l.step()
	first := (l.Start.Minutes() + step - 1) / step * step
	for m := first; m <= l.End.Minutes(); m += step {
		result = append(result, newMilestone(timetricks.ClockFromMinutes(m), false))
	}
	return result
}

// After is the first boundary strictly after c. A clock already on a
// boundary moves to the following one.
func (l Ladder) After(c timetricks.Clock) timetricks.Clock {
	step := l.step()
	return timetricks.ClockFromMinutes((c.Minutes()/step + 1) * step)
}

// Markers are the day's informational milestones: the exact sunset and the
// start of golden hour.
func (l Ladder) Markers(info sunset.Info) []Milestone {
	set := timetricks.ClockOf(info.Sunset)
	golden := timetricks.ClockOf(info.GoldenHour())
	return []Milestone{{
		Clock: golden,
		Kind:  GoldenHour,
		Label: fmt.Sprintf("golden hour %s", golden),
	}, {
		Clock: set,
		Kind:  ExactSunset,
		Label: fmt.Sprintf("sunset %s", set),
	}}
}

// NextMilestone finds the boundary just after today's sunset and the day
// sunset first reaches it. Failures of today's query are returned unchanged.
func (e *Engine) NextMilestone(loc sunset.Location, now time.Time) (Next, error) {
	today, err := e.Querier.Query(loc, now)
	if err != nil {
		return Next{}, err
	}
	zone := e.Querier.ZoneFor(loc)

	target := e.Ladder.After(timetricks.ClockOf(today.Sunset.In(zone)))
	entry, err := e.resolve(loc, target, now, true)
	if err != nil {
		return Next{}, fmt.Errorf("next milestone after %s: %w", today.Sunset.Format("15:04"), err)
	}
	return Next{Entry: entry, Today: today}, nil
}

// UpcomingMilestones lists up to count milestones after the primary one, a
// step apart and no later than the ladder's End. Rungs sunset never reaches
// are left out.
func (e *Engine) UpcomingMilestones(loc sunset.Location, now time.Time, count int) ([]Entry, error) {
	if count <= 0 {
		return []Entry{}, nil
	}
	next, err := e.NextMilestone(loc, now)
	if err != nil {
		return nil, err
	}
	return e.UpcomingAfter(loc, next, now, count)
}

// UpcomingAfter is UpcomingMilestones for a primary milestone the caller has
// already resolved with NextMilestone(loc, now).
func (e *Engine) UpcomingAfter(loc sunset.Location, next Next, now time.Time, count int) ([]Entry, error) {
	result := []Entry{}
	step := time.Duration(e.Ladder.step()) * time.Minute
	for c := next.Milestone.Clock.Add(step); len(result) < count && c.Minutes() <= e.Ladder.End.Minutes(); c = c.Add(step) {
		entry, err := e.resolve(loc, c, now, false)
		if errors.Is(err, ErrNotFound) {
			continue
		} else if err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, nil
}

func (e *Engine) resolve(loc sunset.Location, c timetricks.Clock, now time.Time, primary bool) (Entry, error) {
	if !c.Valid() {
		return Entry{}, ErrNotFound
	}
	match, err := e.Search(loc, c, now, e.horizon())
	if err != nil {
		return Entry{}, err
	}
	return Entry{
		Milestone: newMilestone(c, primary),
		Match:     match,
		DaysUntil: timetricks.DaysBetween(now, match.Date, e.Querier.ZoneFor(loc)),
	}, nil
}
