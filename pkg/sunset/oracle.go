package sunset

import (
	"fmt"
	"time"

	"github.com/keep94/sunrise"
	gosunrise "github.com/nathan-osman/go-sunrise"

	"github.com/spencer-p/sunsetdash/pkg/timetricks"
)

// An Oracle computes the sunrise and sunset for the calendar day starting at
// day (local midnight). ok is false when it has no value for that day.
type Oracle interface {
	SunriseSunset(lat, long float64, day time.Time) (rise, set time.Time, ok bool)
}

// OracleFunc adapts a function to the Oracle interface.
type OracleFunc func(lat, long float64, day time.Time) (rise, set time.Time, ok bool)

func (f OracleFunc) SunriseSunset(lat, long float64, day time.Time) (time.Time, time.Time, bool) {
	return f(lat, long, day)
}

// Keep94 is the default Oracle, backed by github.com/keep94/sunrise.
type Keep94 struct{}

func (Keep94) SunriseSunset(lat, long float64, day time.Time) (time.Time, time.Time, bool) {
	zone := day.Location()
	var s sunrise.Sunrise
	s.Around(lat, long, day.Add(12*time.Hour))

	// The sunrise package is not very clean with its dates, so walk it onto
	// the right one. Where the sun never rises the times are garbage and this
	// gives up.
	for i := 0; i < 3 && !timetricks.SameDay(day, s.Sunrise(), zone); i++ {
		if s.Sunrise().Before(day) {
			s.AddDays(1)
		} else {
			s.AddDays(-1)
		}
	}
	rise, set := s.Sunrise(), s.Sunset()
	if !timetricks.SameDay(day, rise, zone) {
		return time.Time{}, time.Time{}, false
	}
	return rise.In(zone), set.In(zone), true
}

// Osman is an alternate Oracle backed by github.com/nathan-osman/go-sunrise,
// which reports zero times for days without a sunrise.
type Osman struct{}

func (Osman) SunriseSunset(lat, long float64, day time.Time) (time.Time, time.Time, bool) {
	rise, set := gosunrise.SunriseSunset(lat, long, day.Year(), day.Month(), day.Day())
	if rise.IsZero() || set.IsZero() {
		return time.Time{}, time.Time{}, false
	}
	return rise.In(day.Location()), set.In(day.Location()), true
}

// OracleByName picks an Oracle by its configuration name.
func OracleByName(name string) (Oracle, error) {
	switch name {
	case "", "keep94":
		return Keep94{}, nil
	case "osman":
		return Osman{}, nil
	default:
		return nil, fmt.Errorf("unknown sun oracle %q", name)
	}
}

// consult calls the oracle and folds panics and nonsense answers into "no
// value". Both times must fall on day's calendar day in day's location; a
// sunset after local midnight belongs to no day at all.
func consult(o Oracle, lat, long float64, day time.Time) (rise, set time.Time, ok bool) {
	defer func() {
		if recover() != nil {
			rise, set, ok = time.Time{}, time.Time{}, false
		}
	}()

	rise, set, ok = o.SunriseSunset(lat, long, day)
	if !ok || rise.IsZero() || set.IsZero() {
		return time.Time{}, time.Time{}, false
	}
	if length := set.Sub(rise); length <= 0 || length >= 24*time.Hour {
		return time.Time{}, time.Time{}, false
	}
	zone := day.Location()
	if !timetricks.SameDay(rise, day, zone) || !timetricks.SameDay(set, day, zone) {
		return time.Time{}, time.Time{}, false
	}
	return rise, set, true
}
