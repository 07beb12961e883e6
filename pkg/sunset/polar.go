package sunset

import (
	"math"
	"time"
)

// Above this latitude a day without sunset or sunrise is plausible.
const polarCircle = 66.5

// Day of year windows taken as "around" each northern solstice. These are
// fixed windows, not true solstice dates.
const (
	summerFrom, summerTo = 150, 200
	winterFrom, winterTo = 340, 50 // wraps through the new year
)

func candidatePolar(lat float64) bool {
	return math.Abs(lat) > polarCircle
}

// classify names the polar condition for a day the oracle could not answer.
func classify(lat float64, day time.Time) Condition {
	doy := day.YearDay()
	north := lat > 0
	switch {
	case doy >= summerFrom && doy <= summerTo:
		if north {
			return MidnightSun
		}
		return PolarNight
	case doy >= winterFrom || doy <= winterTo:
		if north {
			return PolarNight
		}
		return MidnightSun
	default:
		return PolarUnknown
	}
}

// sunTimes wraps the oracle. The oracle is consulted at every latitude, since
// polar latitudes still see real sunsets on most days; only its failure is
// interpreted.
func sunTimes(o Oracle, loc Location, day time.Time) (rise, set time.Time, err error) {
	rise, set, ok := consult(o, loc.Lat, loc.Long, day)
	if ok {
		return rise, set, nil
	}
	if candidatePolar(loc.Lat) {
		return time.Time{}, time.Time{}, &PolarError{
			Condition: classify(loc.Lat, day),
			Date:      day,
			Lat:       loc.Lat,
		}
	}
	return time.Time{}, time.Time{}, ErrOracleFailure
}
