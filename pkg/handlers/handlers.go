package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/sessions"

	"github.com/spencer-p/sunsetdash/pkg/cache"
	"github.com/spencer-p/sunsetdash/pkg/locations"
	"github.com/spencer-p/sunsetdash/pkg/logging"
	"github.com/spencer-p/sunsetdash/pkg/milestone"
	"github.com/spencer-p/sunsetdash/pkg/places"
	"github.com/spencer-p/sunsetdash/pkg/sunset"
)

const (
	defaultDays = 7
	maxDays     = 366
)

// Options configures a Server.
type Options struct {
	Engine   *milestone.Engine
	Places   *places.Directory
	Store    locations.Store
	Sessions sessions.Store
	Default  sunset.Location
	Upcoming int
	CacheTTL time.Duration

	// Now replaces the wall clock in tests.
	Now func() time.Time
}

// Server serves the sunset API.
type Server struct {
	engine   *milestone.Engine
	places   *places.Directory
	store    locations.Store
	sessions sessions.Store
	fallback sunset.Location
	upcoming int
	cache    *cache.Timed[cached]
	now      func() time.Time
}

// cached is a rendered response.
type cached struct {
	contentType string
	body        []byte
}

func New(o Options) *Server {
	s := &Server{
		engine:   o.Engine,
		places:   o.Places,
		store:    o.Store,
		sessions: o.Sessions,
		fallback: o.Default,
		upcoming: o.Upcoming,
		// cache for slightly less than one day so daily clients don't see stale
		// data
		cache: cache.NewTimed[cached](o.CacheTTL),
		now:   o.Now,
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.places == nil {
		s.places = places.Default()
	}
	return s
}

// Register adds the API routes to r.
func (s *Server) Register(r *mux.Router) {
	r.Handle("/", s.handle(s.countdown, never)).Methods(http.MethodGet)
	r.Handle("/api/v1/sunset", s.handle(s.sunset, pinned)).Methods(http.MethodGet)
	r.Handle("/api/v1/progression", s.handle(s.progression, pinned)).Methods(http.MethodGet)
	r.Handle("/api/v1/milestone", s.handle(s.milestone, never)).Methods(http.MethodGet)
	r.Handle("/api/v1/countdown", s.handle(s.countdown, never)).Methods(http.MethodGet)
	r.Handle("/api/v1/calendar", s.handle(s.calendar, pinned)).Methods(http.MethodGet)
	r.Handle("/api/v1/places", s.handle(s.searchPlaces, always)).Methods(http.MethodGet)
	r.Handle("/api/v1/location", s.handle(s.setLocation, never)).Methods(http.MethodPost)
	r.Handle("/api/v1/chart", s.chart()).Methods(http.MethodGet)
}

// response is anything an endpoint returns. It is encoded as JSON when the
// client asks with o=json and as text otherwise.
type response interface {
	WriteText(w io.Writer)
}

type endpoint func(w http.ResponseWriter, r *http.Request) (response, error)

// Cache policies. Only responses that depend on nothing but the URL may be
// cached.
func never(*http.Request) bool  { return false }
func always(*http.Request) bool { return true }
func pinned(r *http.Request) bool {
	q := r.URL.Query()
	return q.Has("lat") && q.Has("lon") && (q.Has("date") || q.Has("start"))
}

func (s *Server) handle(ep endpoint, cacheable func(*http.Request) bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// cache based on method and URL, which should encapsulate the query
		key := fmt.Sprintf("%s %s", r.Method, r.URL)
		useCache := cacheable(r)
		if useCache {
			if c, ok := s.cache.Get(key); ok {
				w.Header().Add("Content-Type", c.contentType)
				w.WriteHeader(http.StatusOK)
				w.Write(c.body)
				return
			}
		}

		resp, err := ep(w, r)
		if err != nil {
			s.fail(w, r, err)
			return
		}

		var body bytes.Buffer
		contentType := "text/plain"
		if r.FormValue("o") == "json" {
			contentType = "application/json"
			if err := json.NewEncoder(&body).Encode(resp); err != nil {
				s.fail(w, r, fmt.Errorf("failed to encode JSON result: %w", err))
				return
			}
		} else {
			resp.WriteText(&body)
		}

		w.Header().Add("Content-Type", contentType)
		w.WriteHeader(http.StatusOK)
		w.Write(body.Bytes())

		if useCache {
			s.cache.Set(key, cached{contentType, body.Bytes()})
		}
	})
}

// badRequest marks errors caused by malformed parameters.
type badRequest struct{ error }

func statusOf(err error) int {
	var polar *sunset.PolarError
	var bad badRequest
	switch {
	case errors.As(err, &bad), errors.Is(err, sunset.ErrInvalidLocation), errors.Is(err, locations.ErrNoMatch):
		return http.StatusBadRequest
	case errors.As(err, &polar), errors.Is(err, milestone.ErrNotFound), errors.Is(err, errNoCountdown):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	code := statusOf(err)
	if code >= http.StatusInternalServerError {
		logging.L().Errorw("request failed", "method", r.Method, "url", r.URL.String(), "error", err)
	} else {
		logging.L().Debugw("request rejected", "method", r.Method, "url", r.URL.String(), "code", code, "error", err)
	}

	if r.FormValue("o") == "json" {
		w.Header().Add("Content-Type", "application/json")
		w.WriteHeader(code)
		json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
		return
	}
	w.Header().Add("Content-Type", "text/plain")
	w.WriteHeader(code)
	fmt.Fprintf(w, "Failed: %v\n", err)
}
