package sunset

import (
	"fmt"
	"iter"
	"math"
	"time"

	"github.com/spencer-p/sunsetdash/pkg/timetricks"
)

// Querier answers single day sun questions. All calendar arithmetic happens
// in Zone; a nil Zone approximates one from each location's longitude.
type Querier struct {
	Oracle Oracle
	Zone   *time.Location
}

// NewQuerier builds a Querier. A nil oracle means Keep94.
func NewQuerier(o Oracle, zone *time.Location) *Querier {
	if o == nil {
		o = Keep94{}
	}
	return &Querier{Oracle: o, Zone: zone}
}

// ZoneFor is the time zone used for loc.
func (q *Querier) ZoneFor(loc Location) *time.Location {
	if q.Zone != nil {
		return q.Zone
	}
	return ApproximateZone(loc.Long)
}

// ApproximateZone is the fixed UTC offset of round(longitude/15) hours.
func ApproximateZone(long float64) *time.Location {
	hours := int(math.Round(long / 15))
	return time.FixedZone(fmt.Sprintf("UTC%+d", hours), hours*60*60)
}

// Query computes the sunrise and sunset on date's calendar day at loc. The
// error is ErrInvalidLocation, ErrOracleFailure or a *PolarError; Info is
// empty whenever the error is set.
func (q *Querier) Query(loc Location, date time.Time) (Info, error) {
	if err := loc.Validate(); err != nil {
		return Info{}, err
	}
	zone := q.ZoneFor(loc)
	day := timetricks.StartOfDay(date, zone)

	rise, set, err := sunTimes(q.Oracle, loc, day)
	if err != nil {
		return Info{}, err
	}
	return Info{
		Date:     day,
		Sunrise:  rise.In(zone),
		Sunset:   set.In(zone),
		Zone:     zoneLabel(zone, set),
		Location: loc,
	}, nil
}

// Progression lazily queries dayCount consecutive days beginning with start's
// day. Each iteration starts over from the first day.
func (q *Querier) Progression(loc Location, start time.Time, dayCount int) iter.Seq[Result] {
	return func(yield func(Result) bool) {
		zone := q.ZoneFor(loc)
		first := timetricks.StartOfDay(start, zone)
		for i := 0; i < dayCount; i++ {
			day := timetricks.AddDays(first, i, zone)
			info, err := q.Query(loc, day)
			if !yield(Result{Date: day, Info: info, Err: err}) {
				return
			}
		}
	}
}

// zoneLabel prefers the zone's name. The host zone is only known as "Local",
// so it falls back to the abbreviation in effect at t.
func zoneLabel(zone *time.Location, t time.Time) string {
	if name := zone.String(); name != "Local" && name != "" {
		return name
	}
	abbrev, _ := t.In(zone).Zone()
	return abbrev
}
