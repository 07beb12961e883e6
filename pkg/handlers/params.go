package handlers

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/spencer-p/sunsetdash/pkg/locations"
	"github.com/spencer-p/sunsetdash/pkg/logging"
	"github.com/spencer-p/sunsetdash/pkg/sunset"
)

const dateFormat = "2006-01-02"

// location picks the location a request is about: explicit lat/lon first,
// then the session's saved location, then the server default.
func (s *Server) location(r *http.Request) (sunset.Location, error) {
	latStr, lonStr := r.FormValue("lat"), r.FormValue("lon")
	if latStr != "" || lonStr != "" {
		lat, err := strconv.ParseFloat(latStr, 64)
		if err != nil {
			return sunset.Location{}, badRequest{fmt.Errorf("lat %q: %w", latStr, err)}
		}
		lon, err := strconv.ParseFloat(lonStr, 64)
		if err != nil {
			return sunset.Location{}, badRequest{fmt.Errorf("lon %q: %w", lonStr, err)}
		}
		loc := sunset.Location{Lat: lat, Long: lon, Name: r.FormValue("name"), Source: sunset.FromManual}
		return loc, loc.Validate()
	}

	if key := s.sessionLocationKey(r); key != "" && s.store != nil {
		p := locations.NewProvider(s.store, s.places)
		loc, err := p.Load(r.Context(), key)
		if err == nil {
			return loc, nil
		}
		logging.L().Warnw("failed to load session location", "key", key, "error", err)
	}
	return s.fallback, nil
}

// day reads a date parameter as a calendar day in loc's zone, defaulting to
// now. RFC3339 timestamps are accepted too.
func (s *Server) day(r *http.Request, name string, loc sunset.Location) (time.Time, error) {
	v := r.FormValue(name)
	if v == "" {
		return s.now(), nil
	}
	zone := s.engine.Querier.ZoneFor(loc)
	if t, err := time.ParseInLocation(dateFormat, v, zone); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, badRequest{fmt.Errorf("%s %q is neither %s nor RFC3339", name, v, dateFormat)}
	}
	return t, nil
}

func intParam(r *http.Request, name string, def, min, max int) (int, error) {
	v := r.FormValue(name)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, badRequest{fmt.Errorf("%s %q: %w", name, v, err)}
	}
	if n < min || n > max {
		return 0, badRequest{fmt.Errorf("%s %d not in [%d, %d]", name, n, min, max)}
	}
	return n, nil
}

// hoursParam reads comma separated fractional hours, such as "17,18.5".
func hoursParam(r *http.Request, name string) ([]float64, error) {
	v := r.FormValue(name)
	if v == "" {
		return nil, nil
	}
	var hours []float64
	for _, field := range strings.Split(v, ",") {
		h, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
		if err != nil {
			return nil, badRequest{fmt.Errorf("%s entry %q: %w", name, field, err)}
		}
		if math.IsNaN(h) || math.IsInf(h, 0) {
			return nil, badRequest{fmt.Errorf("%s entry %q is not a number of hours", name, field)}
		}
		hours = append(hours, h)
	}
	if len(hours) > 48 {
		return nil, badRequest{errors.New("too many hours")}
	}
	return hours, nil
}
