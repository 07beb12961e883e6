// Package places is a small directory of named places for text search.
package places

import (
	"sort"
	"strings"

	"github.com/spencer-p/sunsetdash/pkg/sunset"
)

// Place is a named coordinate.
type Place struct {
	Name    string
	Country string
	Lat     float64
	Long    float64
}

// Location converts the place into a searched Location.
func (p Place) Location() sunset.Location {
	return sunset.Location{
		Lat:    p.Lat,
		Long:   p.Long,
		Name:   p.Name,
		Source: sunset.FromSearch,
	}
}

// Directory searches a fixed list of places.
type Directory struct {
	places []Place
}

// New builds a Directory over ps.
func New(ps []Place) *Directory {
	return &Directory{places: ps}
}

// Default is a directory of well known cities.
func Default() *Directory {
	return New(cities)
}

// Search matches query case-insensitively against names and countries.
// Names starting with the query come first, then other matches, each
// alphabetically. limit <= 0 means no limit.
func (d *Directory) Search(query string, limit int) []sunset.Location {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}

	type hit struct {
		p      Place
		prefix bool
	}
	var hits []hit
	for _, p := range d.places {
		name := strings.ToLower(p.Name)
		switch {
		case strings.HasPrefix(name, q):
			hits = append(hits, hit{p, true})
		case strings.Contains(name, q), strings.Contains(strings.ToLower(p.Country), q):
			hits = append(hits, hit{p, false})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].prefix != hits[j].prefix {
			return hits[i].prefix
		}
		return hits[i].p.Name < hits[j].p.Name
	})

	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	result := make([]sunset.Location, len(hits))
	for i, h := range hits {
		result[i] = h.p.Location()
	}
	return result
}

var cities = []Place{
	{"Amsterdam", "Netherlands", 52.3676, 4.9041},
	{"Anchorage", "United States", 61.2181, -149.9003},
	{"Auckland", "New Zealand", -36.8485, 174.7633},
	{"Buenos Aires", "Argentina", -34.6037, -58.3816},
	{"Cape Town", "South Africa", -33.9249, 18.4241},
	{"Chicago", "United States", 41.8781, -87.6298},
	{"Denver", "United States", 39.7392, -104.9903},
	{"Honolulu", "United States", 21.3069, -157.8583},
	{"London", "United Kingdom", 51.5074, -0.1278},
	{"Longyearbyen", "Norway", 78.2232, 15.6267},
	{"Los Angeles", "United States", 34.0522, -118.2437},
	{"McMurdo Station", "Antarctica", -77.8419, 166.6863},
	{"Miami", "United States", 25.7617, -80.1918},
	{"New York", "United States", 40.7128, -74.0060},
	{"Oslo", "Norway", 59.9139, 10.7522},
	{"Reykjavik", "Iceland", 64.1466, -21.9426},
	{"San Francisco", "United States", 37.7749, -122.4194},
	{"Santa Cruz", "United States", 36.9741, -122.0308},
	{"Seattle", "United States", 47.6062, -122.3321},
	{"Sydney", "Australia", -33.8688, 151.2093},
	{"Tokyo", "Japan", 35.6762, 139.6503},
	{"Tromsø", "Norway", 69.6492, 18.9553},
	{"Utqiagvik", "United States", 71.2906, -156.7886},
}
