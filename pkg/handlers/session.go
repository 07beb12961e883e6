package handlers

import (
	"crypto/sha1"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"golang.org/x/crypto/pbkdf2"

	"github.com/spencer-p/sunsetdash/pkg/locations"
	"github.com/spencer-p/sunsetdash/pkg/logging"
	"github.com/spencer-p/sunsetdash/pkg/sunset"
)

const (
	sessionName      = "sunsetdash"
	locationKeyValue = "location-key"
	// See https://developer.chrome.com/blog/cookie-max-age-expires.
	defaultMaxAge = 60 * 60 * 24 * 400 // 400 days in seconds.
)

// NewSessionStore builds the cookie store. The encryption key is stretched
// from a password with pbkdf2.
func NewSessionStore(sessionKey, encryptionPassword string, secure bool) *sessions.CookieStore {
	store := &sessions.CookieStore{
		Codecs: securecookie.CodecsFromPairs(
			[]byte(sessionKey),
			pbkdf2.Key([]byte(encryptionPassword), []byte(sessionName), 4096, 32, sha1.New),
		),
		Options: &sessions.Options{
			Path:     "/",
			MaxAge:   defaultMaxAge,
			Secure:   secure,
			HttpOnly: true,
		},
	}
	store.MaxAge(defaultMaxAge)
	return store
}

// sessionLocationKey is the saved location key in the request's session, if
// any.
func (s *Server) sessionLocationKey(r *http.Request) string {
	if s.sessions == nil {
		return ""
	}
	session, err := s.sessions.Get(r, sessionName)
	if err != nil {
		return ""
	}
	key, _ := session.Values[locationKeyValue].(string)
	return key
}

type locationResponse struct {
	Location sunset.Location `json:"location"`
	Key      string          `json:"key"`
}

func (l locationResponse) WriteText(w io.Writer) {
	fmt.Fprintf(w, "Saved %s from %s\n", l.Location.String(), l.Location.Source)
}

// setLocation saves a manual, sensor or searched location for the session.
// Later requests without lat/lon use it.
func (s *Server) setLocation(w http.ResponseWriter, r *http.Request) (response, error) {
	if s.store == nil || s.sessions == nil {
		return nil, fmt.Errorf("locations cannot be saved on this server")
	}
	if err := r.ParseForm(); err != nil {
		return nil, badRequest{fmt.Errorf("failed to parse form: %w", err)}
	}

	p := locations.NewProvider(s.store, s.places)
	if key := s.sessionLocationKey(r); key != "" {
		// Reuse the session's key; a stale one is simply replaced.
		if _, err := p.Load(r.Context(), key); err != nil {
			logging.L().Debugw("session location not loaded", "key", key, "error", err)
		}
	}

	var err error
	switch {
	case r.PostForm.Get("q") != "":
		_, err = p.SetFromSearch(r.PostForm.Get("q"))
	default:
		lat, latErr := strconv.ParseFloat(r.PostForm.Get("lat"), 64)
		lon, lonErr := strconv.ParseFloat(r.PostForm.Get("lon"), 64)
		if latErr != nil || lonErr != nil {
			return nil, badRequest{fmt.Errorf("need q, or lat and lon")}
		}
		if r.PostForm.Get("source") == string(sunset.FromSensor) {
			_, err = p.SetFromSensor(sunset.Location{Lat: lat, Long: lon, Name: r.PostForm.Get("name")})
		} else {
			_, err = p.SetManual(lat, lon, r.PostForm.Get("name"))
		}
	}
	if err != nil {
		return nil, err
	}

	key, err := p.Save(r.Context())
	if err != nil {
		return nil, err
	}
	session, _ := s.sessions.Get(r, sessionName)
	session.Values[locationKeyValue] = key
	if err := session.Save(r, w); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}
	loc, _ := p.Current()
	logging.L().Infow("saved location", "key", key, "location", loc.String(), "source", loc.Source)
	return locationResponse{loc, key}, nil
}
