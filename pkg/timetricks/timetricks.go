package timetricks

import (
	"fmt"
	"math"
	"time"
)

const (
	dayFormat   = "20060102"
	shortFormat = "01/02"
	clockFormat = "3:04 PM"

	minutesPerDay = 24 * 60
)

// SameDay reports whether t and t2 fall on the same calendar day in zone.
func SameDay(t, t2 time.Time, zone *time.Location) bool {
	return UniqueDay(t, zone) == UniqueDay(t2, zone)
}

// StartOfDay returns midnight of t's calendar day in zone.
func StartOfDay(t time.Time, zone *time.Location) time.Time {
	y, m, d := t.In(zone).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, zone)
}

// AddDays moves t by n calendar days in zone, keeping the wall clock.
func AddDays(t time.Time, n int, zone *time.Location) time.Time {
	return t.In(zone).AddDate(0, 0, n)
}

// DaysBetween counts calendar days from from's day to to's day. Daylight
// saving shifts do not change the count.
func DaysBetween(from, to time.Time, zone *time.Location) int {
	a := StartOfDay(from, zone)
	b := StartOfDay(to, zone)
	return int(math.Round(b.Sub(a).Hours() / 24))
}

// SetClock returns the instant on t's calendar day in zone when the wall
// clock reads c.
func SetClock(t time.Time, c Clock, zone *time.Location) time.Time {
	y, m, d := t.In(zone).Date()
	return time.Date(y, m, d, c.Hour, c.Minute, 0, 0, zone)
}

// WithinWeek reports whether t lands in the seven calendar days starting with
// now's day.
func WithinWeek(t, now time.Time, zone *time.Location) bool {
	d := DaysBetween(now, t, zone)
	return d >= 0 && d < 7
}

// DayLabel names t's day relative to now: "Today", "Tomorrow", a weekday for
// the rest of the week, and a month/day otherwise.
func DayLabel(t, now time.Time, zone *time.Location) string {
	switch d := DaysBetween(now, t, zone); {
	case d == 0:
		return "Today"
	case d == 1:
		return "Tomorrow"
	case WithinWeek(t, now, zone):
		return t.In(zone).Weekday().String()
	default:
		return t.In(zone).Format(shortFormat)
	}
}

// UniqueDay keys t by its calendar day in zone, as "20060102".
func UniqueDay(t time.Time, zone *time.Location) string {
	return t.In(zone).Format(dayFormat)
}

// Clock is a wall clock time of day with minute resolution.
type Clock struct {
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
}

// ClockOf extracts the wall clock of t in its own location. Seconds are
// dropped.
func ClockOf(t time.Time) Clock {
	h, m, _ := t.Clock()
	return Clock{h, m}
}

// ClockFromMinutes builds a Clock from minutes past midnight.
func ClockFromMinutes(min int) Clock {
	return Clock{min / 60, min % 60}
}

// ClockFromHours converts fractional hours, so 18.5 is 6:30 PM.
func ClockFromHours(hours float64) Clock {
	return ClockFromMinutes(int(math.Round(hours * 60)))
}

// ParseClock reads a 24 hour "15:04" clock.
func ParseClock(s string) (Clock, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return Clock{}, fmt.Errorf("clock %q not in 15:04 form: %w", s, err)
	}
	return ClockOf(t), nil
}

// Minutes is the clock as minutes past midnight; this is the only ordering
// used between clocks.
func (c Clock) Minutes() int {
	return c.Hour*60 + c.Minute
}

// Add returns the clock d later. The result is not wrapped at midnight.
func (c Clock) Add(d time.Duration) Clock {
	return ClockFromMinutes(c.Minutes() + int(d/time.Minute))
}

// Valid reports whether the clock falls inside a single day.
func (c Clock) Valid() bool {
	return c.Hour >= 0 && c.Minute >= 0 && c.Minute < 60 && c.Minutes() < minutesPerDay
}

func (c Clock) String() string {
	return time.Date(2000, time.January, 1, c.Hour, c.Minute, 0, 0, time.UTC).Format(clockFormat)
}
