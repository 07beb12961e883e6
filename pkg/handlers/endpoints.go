package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"slices"
	"time"

	"github.com/spencer-p/sunsetdash/pkg/logging"
	"github.com/spencer-p/sunsetdash/pkg/milestone"
	"github.com/spencer-p/sunsetdash/pkg/sunset"
	"github.com/spencer-p/sunsetdash/pkg/visualize"
)

var errNoCountdown = errors.New("no upcoming milestone to count down to")

type sunsetResponse struct {
	Info      sunset.Info           `json:"info"`
	DayLength string                `json:"day_length"`
	Markers   []milestone.Milestone `json:"markers"`
}

func (s sunsetResponse) WriteText(w io.Writer) {
	fmt.Fprintf(w, "%s\n", s.Info.String())
	fmt.Fprintf(w, "day length %s\n", s.DayLength)
	for _, m := range s.Markers {
		fmt.Fprintf(w, "%s\n", m.Label)
	}
}

func (s *Server) sunset(w http.ResponseWriter, r *http.Request) (response, error) {
	loc, err := s.location(r)
	if err != nil {
		return nil, err
	}
	date, err := s.day(r, "date", loc)
	if err != nil {
		return nil, err
	}
	info, err := s.engine.Querier.Query(loc, date)
	if err != nil {
		return nil, err
	}
	return sunsetResponse{
		Info:      info,
		DayLength: dayLength(info),
		Markers:   s.engine.Ladder.Markers(info),
	}, nil
}

// dayLength renders the time between sunrise and sunset as "13h05m".
func dayLength(info sunset.Info) string {
	d := info.DayLength().Round(time.Minute)
	return fmt.Sprintf("%dh%02dm", int(d.Hours()), int(d.Minutes())%60)
}

type progressionDay struct {
	Date  string       `json:"date"`
	Info  *sunset.Info `json:"info,omitempty"`
	Error string       `json:"error,omitempty"`
}

type progressionResponse struct {
	Days []progressionDay `json:"days"`
}

func (p progressionResponse) WriteText(w io.Writer) {
	for _, d := range p.Days {
		if d.Info != nil {
			fmt.Fprintf(w, "%s\n", d.Info.String())
		} else {
			fmt.Fprintf(w, "%s %s\n", d.Date, d.Error)
		}
	}
}

func (s *Server) progression(w http.ResponseWriter, r *http.Request) (response, error) {
	loc, err := s.location(r)
	if err != nil {
		return nil, err
	}
	if err := loc.Validate(); err != nil {
		return nil, err
	}
	start, err := s.day(r, "start", loc)
	if err != nil {
		return nil, err
	}
	days, err := intParam(r, "days", defaultDays, 0, maxDays)
	if err != nil {
		return nil, err
	}

	resp := progressionResponse{Days: []progressionDay{}}
	for res := range s.engine.Querier.Progression(loc, start, days) {
		d := progressionDay{Date: res.Date.Format(dateFormat)}
		if res.OK() {
			info := res.Info
			d.Info = &info
		} else {
			d.Error = res.Err.Error()
		}
		resp.Days = append(resp.Days, d)
	}
	return resp, nil
}

type milestoneResponse struct {
	Next     milestone.Next    `json:"next"`
	Upcoming []milestone.Entry `json:"upcoming"`
}

func (m milestoneResponse) WriteText(w io.Writer) {
	fmt.Fprintf(w, "%s\n", m.Next.Entry.String())
	for _, e := range m.Upcoming {
		fmt.Fprintf(w, "%s\n", e.String())
	}
}

func (s *Server) milestone(w http.ResponseWriter, r *http.Request) (response, error) {
	loc, err := s.location(r)
	if err != nil {
		return nil, err
	}
	count, err := intParam(r, "count", s.upcoming, 0, 48)
	if err != nil {
		return nil, err
	}
	now := s.now()
	next, err := s.engine.NextMilestone(loc, now)
	if err != nil {
		return nil, err
	}
	upcoming, err := s.engine.UpcomingAfter(loc, next, now, count)
	if err != nil {
		return nil, err
	}
	return milestoneResponse{next, upcoming}, nil
}

type countdownResponse struct {
	milestone.Breakdown
	Milestone milestone.Milestone `json:"milestone"`
	Location  sunset.Location     `json:"location"`
}

func (c countdownResponse) WriteText(w io.Writer) {
	fmt.Fprintf(w, "%d days until sunset is past %s (%s)\n", c.Days, c.Milestone.Label, c.Breakdown.String())
}

func (s *Server) countdown(w http.ResponseWriter, r *http.Request) (response, error) {
	loc, err := s.location(r)
	if err != nil {
		return nil, err
	}
	now := s.now()
	next, err := s.engine.NextMilestone(loc, now)
	if err != nil {
		return nil, err
	}
	b, ok := milestone.Until(now, next.Match.Sunset)
	if !ok {
		return nil, errNoCountdown
	}
	return countdownResponse{b, next.Milestone, loc}, nil
}

type calendarResponse struct {
	Entries []milestone.CalendarEntry `json:"entries"`
}

func (c calendarResponse) WriteText(w io.Writer) {
	for _, e := range c.Entries {
		fmt.Fprintf(w, "%s\n", e.String())
	}
}

func (s *Server) calendar(w http.ResponseWriter, r *http.Request) (response, error) {
	loc, err := s.location(r)
	if err != nil {
		return nil, err
	}
	start, err := s.day(r, "start", loc)
	if err != nil {
		return nil, err
	}
	hours, err := hoursParam(r, "hours")
	if err != nil {
		return nil, err
	}
	if hours == nil {
		for _, m := range s.engine.Ladder.Milestones() {
			hours = append(hours, float64(m.Clock.Minutes())/60)
		}
	}
	entries, err := s.engine.Calendar(loc, start, hours)
	if err != nil {
		return nil, err
	}
	return calendarResponse{entries}, nil
}

type placesResponse struct {
	Places []sunset.Location `json:"places"`
}

func (p placesResponse) WriteText(w io.Writer) {
	for _, l := range p.Places {
		fmt.Fprintf(w, "%s\n", l.String())
	}
}

func (s *Server) searchPlaces(w http.ResponseWriter, r *http.Request) (response, error) {
	limit, err := intParam(r, "limit", 10, 1, 100)
	if err != nil {
		return nil, err
	}
	found := s.places.Search(r.FormValue("q"), limit)
	if found == nil {
		found = []sunset.Location{}
	}
	return placesResponse{found}, nil
}

// chart serves an SVG of sunset times over a progression.
func (s *Server) chart() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := fmt.Sprintf("%s %s", r.Method, r.URL)
		if c, ok := s.cache.Get(key); ok && pinned(r) {
			w.Header().Add("Content-Type", c.contentType)
			w.Write(c.body)
			return
		}

		loc, err := s.location(r)
		if err == nil {
			err = loc.Validate()
		}
		if err != nil {
			s.fail(w, r, err)
			return
		}
		start, err := s.day(r, "start", loc)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		days, err := intParam(r, "days", 90, 2, maxDays)
		if err != nil {
			s.fail(w, r, err)
			return
		}

		results := slices.Collect(s.engine.Querier.Progression(loc, start, days))
		img := visualize.NewSunsets(results, s.engine.Ladder.Milestones())
		var b bytes.Buffer
		if _, err := img.Encode(&b); err != nil {
			s.fail(w, r, err)
			return
		}

		w.Header().Add("Content-Type", "image/svg+xml")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(b.Bytes()); err != nil {
			logging.L().Warnw("failed to write chart", "error", err)
		}
		if pinned(r) {
			s.cache.Set(key, cached{"image/svg+xml", b.Bytes()})
		}
	})
}
