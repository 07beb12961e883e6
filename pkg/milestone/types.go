package milestone

import (
	"errors"
	"fmt"
	"time"

	"github.com/spencer-p/sunsetdash/pkg/sunset"
	"github.com/spencer-p/sunsetdash/pkg/timetricks"
)

// ErrNotFound means sunset never reached the target within the horizon.
var ErrNotFound = errors.New("sunset does not reach target within horizon")

// Kind classifies a milestone.
type Kind int

const (
	Hour Kind = iota
	HalfHour
	ExactSunset
	GoldenHour
)

func (k Kind) String() string {
	switch k {
	case Hour:
		return "hour"
	case HalfHour:
		return "half-hour"
	case ExactSunset:
		return "exact-sunset"
	case GoldenHour:
		return "golden-hour"
	default:
		return "invalid"
	}
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(text []byte) error {
	for _, candidate := range []Kind{Hour, HalfHour, ExactSunset, GoldenHour} {
		if candidate.String() == string(text) {
			*k = candidate
			return nil
		}
	}
	return fmt.Errorf("invalid milestone kind %q", text)
}

// Milestone is a clock time that sunset is counted towards.
type Milestone struct {
	Clock   timetricks.Clock `json:"clock"`
	Kind    Kind             `json:"kind"`
	Label   string           `json:"label"`
	Primary bool             `json:"primary"`
}

func newMilestone(c timetricks.Clock, primary bool) Milestone {
	kind := HalfHour
	if c.Minute == 0 {
		kind = Hour
	}
	return Milestone{
		Clock:   c,
		Kind:    kind,
		Label:   c.String(),
		Primary: primary,
	}
}

// Match is the first day on or after a search start whose sunset reaches the
// target.
type Match struct {
	Date   time.Time `json:"date"`
	Sunset time.Time `json:"sunset"`
}

// Entry is a milestone resolved to the day sunset reaches it.
type Entry struct {
	Milestone Milestone `json:"milestone"`
	Match     Match     `json:"match"`
	DaysUntil int       `json:"days_until"`
}

func (e Entry) String() string {
	return fmt.Sprintf("%d days until sunset is past %s (%s, sunset %s)",
		e.DaysUntil,
		e.Milestone.Label,
		e.Match.Date.Format("Mon Jan 2"),
		e.Match.Sunset.Format("3:04 PM"))
}

// Next is the primary milestone together with the day it was computed from.
type Next struct {
	Entry
	Today sunset.Info `json:"today"`
}

// Breakdown is the time remaining until a target, split into units.
type Breakdown struct {
	Days         int64     `json:"days"`
	Hours        int64     `json:"hours"`
	Minutes      int64     `json:"minutes"`
	Seconds      int64     `json:"seconds"`
	TotalMinutes int64     `json:"total_minutes"`
	Target       time.Time `json:"target"`
}

func (b Breakdown) String() string {
	return fmt.Sprintf("%dd %02dh %02dm %02ds", b.Days, b.Hours, b.Minutes, b.Seconds)
}

// CalendarEntry is when sunset will next reach one target. Date is nil and
// DaysFromNow is -1 when it never does within the horizon.
type CalendarEntry struct {
	Label       string     `json:"label"`
	Date        *time.Time `json:"date"`
	Sunset      *time.Time `json:"sunset,omitempty"`
	DaysFromNow int        `json:"days_from_now"`
}

func (c CalendarEntry) String() string {
	if c.Date == nil {
		return fmt.Sprintf("%s: not within horizon", c.Label)
	}
	return fmt.Sprintf("%s: %s (%d days)", c.Label, c.Date.Format("Mon Jan 2 2006"), c.DaysFromNow)
}
