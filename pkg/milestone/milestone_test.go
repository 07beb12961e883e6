package milestone

import (
	"errors"
	"fmt"
	"math"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/google/go-cmp/cmp"

	"github.com/spencer-p/sunsetdash/pkg/sunset"
	"github.com/spencer-p/sunsetdash/pkg/timetricks"
)

var (
	epoch = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	noon  = epoch.Add(12 * time.Hour)

	somewhere = sunset.Location{Lat: 40, Long: 0, Name: "somewhere"}
	seattle   = sunset.Location{Lat: 47.6, Long: -122.3321, Name: "Seattle"}
)

// drifting sets the sun at 5 PM on January 1st and two minutes later each
// following day, until it stalls at 10 PM.
var drifting = sunset.OracleFunc(func(lat, long float64, day time.Time) (time.Time, time.Time, bool) {
	days := timetricks.DaysBetween(epoch, day, time.UTC)
	set := 17*time.Hour + time.Duration(2*days)*time.Minute
	if set > 22*time.Hour {
		set = 22 * time.Hour
	}
	return day.Add(6 * time.Hour), day.Add(set), true
})

func testEngine(o sunset.Oracle) *Engine {
	return NewEngine(sunset.NewQuerier(o, time.UTC))
}

func ExampleEngine_Calendar() {
	e := testEngine(drifting)
	entries, err := e.Calendar(somewhere, noon, []float64{18, 17.5, 17, 22.5})
	if err != nil {
		panic(err)
	}
	for _, entry := range entries {
		fmt.Println(entry)
	}
	// Output:
	// 6:00 PM: Wed Jan 31 2024 (30 days)
	// 5:30 PM: Tue Jan 16 2024 (15 days)
	// 5:00 PM: Mon Jan 1 2024 (0 days)
	// 10:30 PM: not within horizon
}

func TestSearch(t *testing.T) {
	e := testEngine(drifting)
	table := []struct {
		target timetricks.Clock
		want   time.Time
	}{
		{timetricks.Clock{Hour: 17}, epoch},
		{timetricks.Clock{Hour: 17, Minute: 1}, epoch.AddDate(0, 0, 1)},
		{timetricks.Clock{Hour: 18}, epoch.AddDate(0, 0, 30)},
		{timetricks.Clock{Hour: 21}, epoch.AddDate(0, 0, 120)},
	}
	for _, tc := range table {
		t.Run(tc.target.String(), func(t *testing.T) {
			got, err := e.Search(somewhere, tc.target, noon, DefaultHorizon)
			if err != nil {
				t.Fatalf("unexpected: %v", err)
			}
			if !got.Date.Equal(tc.want) {
				t.Errorf("matched %s, wanted %s", got.Date, tc.want)
			}
			if c := timetricks.ClockOf(got.Sunset); c.Minutes() < tc.target.Minutes() {
				t.Errorf("sunset %v is before target", c)
			}
		})
	}

	t.Run("horizon", func(t *testing.T) {
		if _, err := e.Search(somewhere, timetricks.Clock{Hour: 18}, noon, 30); !errors.Is(err, ErrNotFound) {
			t.Errorf("got %v, wanted not found with the match one day past the horizon", err)
		}
		if _, err := e.Search(somewhere, timetricks.Clock{Hour: 18}, noon, 31); err != nil {
			t.Errorf("got %v, wanted a match on the last day of the horizon", err)
		}
		if _, err := e.Search(somewhere, timetricks.Clock{Hour: 17}, noon, 0); !errors.Is(err, ErrNotFound) {
			t.Errorf("got %v, wanted not found for an empty horizon", err)
		}
	})

	t.Run("invalid location", func(t *testing.T) {
		_, err := e.Search(sunset.Location{Lat: 999, Long: 999}, timetricks.Clock{Hour: 18}, noon, DefaultHorizon)
		if !errors.Is(err, sunset.ErrInvalidLocation) {
			t.Errorf("got %v, wanted invalid location", err)
		}
	})
}

func TestSearchSkipsFailedDays(t *testing.T) {
	// Every other day has no value; the answer lands on the next good day.
	gappy := sunset.OracleFunc(func(lat, long float64, day time.Time) (time.Time, time.Time, bool) {
		if day.YearDay()%2 == 0 {
			return time.Time{}, time.Time{}, false
		}
		return drifting(lat, long, day)
	})
	var scanned int
	e := testEngine(gappy)
	e.OnSearch = func(n int, found bool) { scanned = n }

	// 6:01 PM is first reached on February 1st, yearday 32, which has no
	// value, so the match moves to the next day.
	got, err := e.Search(sunset.Location{Lat: 80, Long: 0}, timetricks.Clock{Hour: 18, Minute: 1}, noon, DefaultHorizon)
	if err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	if want := epoch.AddDate(0, 0, 32); !got.Date.Equal(want) {
		t.Errorf("matched %s, wanted %s", got.Date, want)
	}
	if scanned != 33 {
		t.Errorf("scanned %d days, wanted 33", scanned)
	}
}

func TestSearchFirstCrossing(t *testing.T) {
	zone, err := time.LoadLocation("America/Los_Angeles")
	if err != nil {
		t.Fatal(err)
	}
	e := NewEngine(sunset.NewQuerier(sunset.Keep94{}, zone))
	start := time.Date(2024, time.January, 15, 9, 0, 0, 0, zone)
	target := timetricks.Clock{Hour: 19}

	match, err := e.Search(seattle, target, start, DefaultHorizon)
	if err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	if match.Date.Before(timetricks.StartOfDay(start, zone)) {
		t.Errorf("match %s before start", match.Date)
	}
	for day := start; timetricks.DaysBetween(day, match.Date, zone) > 0; day = day.AddDate(0, 0, 1) {
		info, err := e.Querier.Query(seattle, day)
		if err != nil {
			continue
		}
		if timetricks.ClockOf(info.Sunset).Minutes() >= target.Minutes() {
			t.Errorf("%s already reaches %s, earlier than the match %s", day, target, match.Date)
		}
	}
}

func TestSearchNeverLateEnough(t *testing.T) {
	zone, err := time.LoadLocation("America/Los_Angeles")
	if err != nil {
		t.Fatal(err)
	}
	e := NewEngine(sunset.NewQuerier(sunset.Keep94{}, zone))
	_, err = e.Search(seattle, timetricks.Clock{Hour: 23}, time.Date(2024, time.March, 1, 12, 0, 0, 0, zone), DefaultHorizon)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("got %v, wanted not found", err)
	}
}

func TestLadder(t *testing.T) {
	var labels []string
	for _, m := range DefaultLadder.Milestones() {
		labels = append(labels, fmt.Sprintf("%s/%s", m.Label, m.Kind))
	}
	want := []string{
		"4:00 PM/hour", "4:30 PM/half-hour",
		"5:00 PM/hour", "5:30 PM/half-hour",
		"6:00 PM/hour", "6:30 PM/half-hour",
		"7:00 PM/hour", "7:30 PM/half-hour",
		"8:00 PM/hour", "8:30 PM/half-hour",
		"9:00 PM/hour",
	}
	if diff := cmp.Diff(want, labels); diff != "" {
		t.Errorf("wrong ladder (-want,+got):\n%s", diff)
	}

	afters := []struct {
		in, want timetricks.Clock
	}{
		{timetricks.Clock{Hour: 17, Minute: 12}, timetricks.Clock{Hour: 17, Minute: 30}},
		{timetricks.Clock{Hour: 17, Minute: 30}, timetricks.Clock{Hour: 18}},
		{timetricks.Clock{Hour: 17}, timetricks.Clock{Hour: 17, Minute: 30}},
		{timetricks.Clock{Hour: 17, Minute: 59}, timetricks.Clock{Hour: 18}},
	}
	for _, tc := range afters {
		if got := DefaultLadder.After(tc.in); got != tc.want {
			t.Errorf("After(%s) = %s, wanted %s", tc.in, got, tc.want)
		}
	}
}

func TestMarkers(t *testing.T) {
	info := sunset.Info{Sunset: time.Date(2024, time.May, 1, 20, 3, 0, 0, time.UTC)}
	got := DefaultLadder.Markers(info)
	want := []Milestone{
		{Clock: timetricks.Clock{Hour: 19, Minute: 3}, Kind: GoldenHour, Label: "golden hour 7:03 PM"},
		{Clock: timetricks.Clock{Hour: 20, Minute: 3}, Kind: ExactSunset, Label: "sunset 8:03 PM"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("wrong markers (-want,+got):\n%s", diff)
	}
}

func TestNextMilestone(t *testing.T) {
	e := testEngine(drifting)
	// Today's sunset is exactly 5:00 PM, so the next milestone is 5:30 PM.
	next, err := e.NextMilestone(somewhere, noon)
	if err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	want := Entry{
		Milestone: Milestone{
			Clock:   timetricks.Clock{Hour: 17, Minute: 30},
			Kind:    HalfHour,
			Label:   "5:30 PM",
			Primary: true,
		},
		Match: Match{
			Date:   epoch.AddDate(0, 0, 15),
			Sunset: epoch.AddDate(0, 0, 15).Add(17*time.Hour + 30*time.Minute),
		},
		DaysUntil: 15,
	}
	if diff := cmp.Diff(want, next.Entry); diff != "" {
		t.Errorf("wrong next milestone (-want,+got):\n%s", diff)
	}
	if !next.Today.Date.Equal(epoch) {
		t.Errorf("today is %s", next.Today.Date)
	}

	t.Run("propagates today's failure", func(t *testing.T) {
		_, err := e.NextMilestone(sunset.Location{Lat: 999, Long: 999}, noon)
		if !errors.Is(err, sunset.ErrInvalidLocation) {
			t.Errorf("got %v, wanted invalid location", err)
		}
		polar := testEngine(sunset.OracleFunc(func(float64, float64, time.Time) (time.Time, time.Time, bool) {
			return time.Time{}, time.Time{}, false
		}))
		var perr *sunset.PolarError
		if _, err := polar.NextMilestone(sunset.Location{Lat: 75, Long: 20}, time.Date(2024, time.June, 21, 0, 0, 0, 0, time.UTC)); !errors.As(err, &perr) || perr.Condition != sunset.MidnightSun {
			t.Errorf("got %v, wanted midnight sun", err)
		}
	})

	t.Run("stalled sunset", func(t *testing.T) {
		// Sunset has stalled at 10 PM; 10:30 PM never comes.
		late := epoch.AddDate(0, 0, 200).Add(12 * time.Hour)
		if _, err := e.NextMilestone(somewhere, late); !errors.Is(err, ErrNotFound) {
			t.Errorf("got %v, wanted not found", err)
		}
	})
}

func TestUpcomingMilestones(t *testing.T) {
	e := testEngine(drifting)

	table := []struct {
		count int
		want  []string
	}{
		{0, []string{}},
		{3, []string{"6:00 PM 30", "6:30 PM 45", "7:00 PM 60"}},
		{100, []string{
			"6:00 PM 30", "6:30 PM 45", "7:00 PM 60", "7:30 PM 75",
			"8:00 PM 90", "8:30 PM 105", "9:00 PM 120",
		}},
	}
	for _, tc := range table {
		t.Run(fmt.Sprint(tc.count), func(t *testing.T) {
			entries, err := e.UpcomingMilestones(somewhere, noon, tc.count)
			if err != nil {
				t.Fatalf("unexpected: %v", err)
			}
			got := []string{}
			for _, entry := range entries {
				if entry.Milestone.Primary {
					t.Errorf("%s marked primary", entry.Milestone.Label)
				}
				got = append(got, fmt.Sprintf("%s %d", entry.Milestone.Label, entry.DaysUntil))
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("wrong milestones (-want,+got):\n%s", diff)
			}
		})
	}

	t.Run("unreachable rungs omitted", func(t *testing.T) {
		e := testEngine(drifting)
		e.Ladder.End = timetricks.Clock{Hour: 23}
		e.Horizon = 100
		entries, err := e.UpcomingMilestones(somewhere, noon, 100)
		if err != nil {
			t.Fatalf("unexpected: %v", err)
		}
		// A 100 day horizon reaches 8:18 PM at best.
		if n := len(entries); n != 5 {
			t.Errorf("got %d entries, wanted 5", n)
		}
	})
}

func TestUpcomingAfterReusesNext(t *testing.T) {
	e := testEngine(drifting)
	searches := 0
	e.OnSearch = func(int, bool) { searches++ }

	next, err := e.NextMilestone(somewhere, noon)
	if err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	entries, err := e.UpcomingAfter(somewhere, next, noon, 2)
	if err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	// One search for the primary milestone and one per upcoming rung.
	if searches != 3 {
		t.Errorf("ran %d searches, wanted 3", searches)
	}

	searches = 0
	again, err := e.UpcomingMilestones(somewhere, noon, 2)
	if err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	if diff := cmp.Diff(again, entries); diff != "" {
		t.Errorf("UpcomingAfter differs from UpcomingMilestones (-want,+got):\n%s", diff)
	}
	if searches != 3 {
		t.Errorf("UpcomingMilestones ran %d searches, wanted 3", searches)
	}
	if none, err := e.UpcomingAfter(somewhere, next, noon, 0); err != nil || len(none) != 0 {
		t.Errorf("got %v, %v for no milestones", none, err)
	}
}

func TestCountdown(t *testing.T) {
	e := testEngine(drifting)
	got, ok := e.Countdown(somewhere, noon)
	if !ok {
		t.Fatalf("no countdown")
	}
	want := Breakdown{
		Days:         15,
		Hours:        5,
		Minutes:      30,
		Seconds:      0,
		TotalMinutes: 15*24*60 + 5*60 + 30,
		Target:       epoch.AddDate(0, 0, 15).Add(17*time.Hour + 30*time.Minute),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("wrong countdown (-want,+got):\n%s", diff)
	}

	if _, ok := e.Countdown(sunset.Location{Lat: 999, Long: 999}, noon); ok {
		t.Errorf("countdown for an invalid location")
	}
}

func TestUntil(t *testing.T) {
	now := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	for _, d := range []time.Duration{
		time.Millisecond,
		59 * time.Second,
		time.Hour + 59*time.Minute + 59*time.Second + 999*time.Millisecond,
		23 * time.Hour,
		400*24*time.Hour + 7*time.Second,
	} {
		b, ok := Until(now, now.Add(d))
		if !ok {
			t.Fatalf("%s: no breakdown", d)
		}
		if b.Days < 0 || b.Hours < 0 || b.Hours > 23 || b.Minutes < 0 || b.Minutes > 59 || b.Seconds < 0 || b.Seconds > 59 {
			t.Errorf("%s: component out of range: %+v", d, b)
		}
		total := time.Duration(b.Days)*24*time.Hour + time.Duration(b.Hours)*time.Hour +
			time.Duration(b.Minutes)*time.Minute + time.Duration(b.Seconds)*time.Second
		if d-total >= time.Second || d < total {
			t.Errorf("%s: breakdown adds up to %s", d, total)
		}
	}

	for _, d := range []time.Duration{0, -time.Minute} {
		if _, ok := Until(now, now.Add(d)); ok {
			t.Errorf("%s: breakdown for a target not in the future", d)
		}
	}
}

func TestCalendarMidLatitude(t *testing.T) {
	zone, err := time.LoadLocation("America/Los_Angeles")
	if err != nil {
		t.Fatal(err)
	}
	e := NewEngine(sunset.NewQuerier(sunset.Keep94{}, zone))
	start := time.Date(2024, time.January, 10, 8, 0, 0, 0, zone)

	entries, err := e.Calendar(seattle, start, []float64{17, 18, 19})
	if err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	var labels []string
	for _, entry := range entries {
		labels = append(labels, entry.Label)
		if entry.Date == nil {
			t.Errorf("%s never reached", entry.Label)
			continue
		}
		if entry.DaysFromNow < 0 {
			t.Errorf("%s is %d days away", entry.Label, entry.DaysFromNow)
		}
	}
	if diff := cmp.Diff([]string{"5:00 PM", "6:00 PM", "7:00 PM"}, labels); diff != "" {
		t.Errorf("wrong labels (-want,+got):\n%s", diff)
	}
	if len(entries) == 3 && entries[0].Date != nil && entries[2].Date != nil && !entries[0].Date.Before(*entries[2].Date) {
		t.Errorf("5 PM reached after 7 PM")
	}

	if got, err := e.Calendar(seattle, start, nil); err != nil || len(got) != 0 {
		t.Errorf("got %d entries, %v for no targets", len(got), err)
	}
}

func TestCalendarRejects(t *testing.T) {
	calls := 0
	counted := sunset.OracleFunc(func(lat, long float64, day time.Time) (time.Time, time.Time, bool) {
		calls++
		return drifting(lat, long, day)
	})
	e := testEngine(counted)

	if _, err := e.Calendar(sunset.Location{Lat: 999, Long: 0}, noon, []float64{17}); !errors.Is(err, sunset.ErrInvalidLocation) {
		t.Errorf("got %v, wanted invalid location", err)
	}

	entries, err := e.Calendar(somewhere, noon, []float64{25, -0.5, 23.9999, math.NaN(), math.Inf(1)})
	if err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	var got []string
	for _, entry := range entries {
		got = append(got, entry.String())
	}
	want := []string{
		"25h: not within horizon",
		"-0.5h: not within horizon",
		"23.9999h: not within horizon",
		"NaNh: not within horizon",
		"+Infh: not within horizon",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("wrong entries (-want,+got):\n%s", diff)
	}
	if calls != 0 {
		t.Errorf("oracle consulted %d times for targets outside the day", calls)
	}
}
