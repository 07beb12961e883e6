package sunset

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Provenance records where a Location came from.
type Provenance string

const (
	FromSensor Provenance = "sensor"
	FromManual Provenance = "manual"
	FromSearch Provenance = "search"
)

// Location is a lat/long coordinate on the Earth.
type Location struct {
	Lat    float64    `json:"latitude" validate:"gte=-90,lte=90"`
	Long   float64    `json:"longitude" validate:"gte=-180,lte=180"`
	Name   string     `json:"name,omitempty"`
	Source Provenance `json:"source,omitempty"`
}

var (
	SantaCruz = Location{
		Lat:    36.9741,
		Long:   -122.0308,
		Name:   "Santa Cruz",
		Source: FromManual,
	}

	validate = validator.New()
)

// Validate fails with ErrInvalidLocation when the coordinates are out of range
// or not numbers at all.
func (l Location) Validate() error {
	if err := validate.Struct(l); err != nil {
		return fmt.Errorf("%w (%g, %g): %v", ErrInvalidLocation, l.Lat, l.Long, err)
	}
	return nil
}

func (l Location) String() string {
	if l.Name != "" {
		return fmt.Sprintf("%s (%.4f, %.4f)", l.Name, l.Lat, l.Long)
	}
	return fmt.Sprintf("(%.4f, %.4f)", l.Lat, l.Long)
}

var (
	// ErrInvalidLocation is returned before the oracle is consulted.
	ErrInvalidLocation = errors.New("invalid coordinates")
	// ErrOracleFailure means the oracle produced nothing away from the poles,
	// which points at the oracle or its input rather than the sky.
	ErrOracleFailure = errors.New("sunset calculation failed")
)

// Condition classifies a day without a sunset at high latitude.
type Condition int

const (
	// PolarUnknown is a polar latitude outside both solstice windows.
	PolarUnknown Condition = iota
	MidnightSun
	PolarNight
)

func (c Condition) String() string {
	switch c {
	case MidnightSun:
		return "midnight-sun"
	case PolarNight:
		return "polar-night"
	default:
		return "polar"
	}
}

// PolarError reports that the sun does not set or rise at all.
type PolarError struct {
	Condition Condition
	Date      time.Time
	Lat       float64
}

func (e *PolarError) Error() string {
	return fmt.Sprintf("%s at latitude %.2f on %s",
		e.Condition, e.Lat, e.Date.Format("2006-01-02"))
}

// Info is the outcome of a successful single day query. Sunrise and Sunset
// belong to Date at Location.
type Info struct {
	Date     time.Time `json:"date"`
	Sunrise  time.Time `json:"sunrise"`
	Sunset   time.Time `json:"sunset"`
	Zone     string    `json:"time_zone"`
	Location Location  `json:"location"`
}

// DayLength is the time between sunrise and sunset.
func (i Info) DayLength() time.Duration {
	return i.Sunset.Sub(i.Sunrise)
}

// GoldenHour is when the last hour of light before sunset begins.
func (i Info) GoldenHour() time.Time {
	return i.Sunset.Add(-time.Hour)
}

func (i Info) String() string {
	return fmt.Sprintf("%s sunrise %s sunset %s (%s)",
		i.Date.Format("Mon 02 Jan 06"),
		i.Sunrise.Format("15:04"),
		i.Sunset.Format("15:04"),
		i.Zone)
}

// Result is one day of a progression. Exactly one of Info and Err is set.
type Result struct {
	Date time.Time
	Info Info
	Err  error
}

// OK reports whether the day produced sun times.
func (r Result) OK() bool {
	return r.Err == nil
}
