// Package milestone finds the days on which sunset first reaches chosen clock
// times, and builds the ladder, countdown and calendar views on top of that
// search.
package milestone

import (
	"time"

	"github.com/spencer-p/sunsetdash/pkg/sunset"
	"github.com/spencer-p/sunsetdash/pkg/timetricks"
)

const (
	// DefaultHorizon is how many days a search scans before giving up.
	DefaultHorizon = 365
)

// Engine runs milestone searches against a Querier.
type Engine struct {
	Querier *sunset.Querier
	Ladder  Ladder
	Horizon int

	// OnSearch, if set, is told how many days each search scanned.
	OnSearch func(scanned int, found bool)
}

// NewEngine returns an Engine with the default ladder and horizon.
func NewEngine(q *sunset.Querier) *Engine {
	return &Engine{
		Querier: q,
		Ladder:  DefaultLadder,
		Horizon: DefaultHorizon,
	}
}

// Search scans forward one calendar day at a time from start's day, for at
// most maxDays days, and returns the first day whose sunset clock is at or
// after target. Days without a sunset are skipped.
//
// Sunset only drifts quasi-monotonically (it wobbles near the solstices), so
// the scan is linear rather than a bisection.
func (e *Engine) Search(loc sunset.Location, target timetricks.Clock, start time.Time, maxDays int) (Match, error) {
	if err := loc.Validate(); err != nil {
		return Match{}, err
	}
	if !target.Valid() {
		return Match{}, ErrNotFound
	}
	zone := e.Querier.ZoneFor(loc)

	offset := 0
	for ; offset < maxDays; offset++ {
		day := timetricks.AddDays(start, offset, zone)
		info, err := e.Querier.Query(loc, day)
		if err != nil {
			continue
		}
		if !info.Sunset.Before(timetricks.SetClock(info.Date, target, zone)) {
			e.observe(offset+1, true)
			return Match{Date: info.Date, Sunset: info.Sunset}, nil
		}
	}
	e.observe(offset, false)
	return Match{}, ErrNotFound
}

func (e *Engine) observe(scanned int, found bool) {
	if e.OnSearch != nil {
		e.OnSearch(scanned, found)
	}
}

func (e *Engine) horizon() int {
	if e.Horizon <= 0 {
		return DefaultHorizon
	}
	return e.Horizon
}
