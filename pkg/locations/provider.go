// Package locations tracks the location a session is asking about. A
// Provider is created by its owner and passed along explicitly; there is no
// shared instance.
package locations

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/spencer-p/sunsetdash/pkg/places"
	"github.com/spencer-p/sunsetdash/pkg/sunset"
)

var (
	// ErrNoLocation means nothing has been set or loaded yet.
	ErrNoLocation = errors.New("no location set")
	// ErrNoMatch means a place search found nothing.
	ErrNoMatch = errors.New("no place matches")
)

// Store persists locations under opaque keys.
type Store interface {
	Load(ctx context.Context, key string) (sunset.Location, error)
	Save(ctx context.Context, key string, loc sunset.Location) error
}

// Provider holds one session's current location. It is not safe for
// concurrent use.
type Provider struct {
	store   Store
	places  *places.Directory
	key     string
	current *sunset.Location
}

// NewProvider returns an empty Provider. store and dir may be nil, disabling
// persistence and search respectively.
func NewProvider(store Store, dir *places.Directory) *Provider {
	return &Provider{store: store, places: dir}
}

// Current is the location last set or loaded.
func (p *Provider) Current() (sunset.Location, error) {
	if p.current == nil {
		return sunset.Location{}, ErrNoLocation
	}
	return *p.current, nil
}

// Key is the storage key, empty until saved or loaded.
func (p *Provider) Key() string {
	return p.key
}

// SetManual sets a typed in coordinate.
func (p *Provider) SetManual(lat, long float64, name string) (sunset.Location, error) {
	return p.set(sunset.Location{Lat: lat, Long: long, Name: name, Source: sunset.FromManual})
}

// SetFromSensor sets a reading from a positioning device.
func (p *Provider) SetFromSensor(loc sunset.Location) (sunset.Location, error) {
	loc.Source = sunset.FromSensor
	return p.set(loc)
}

// SetFromSearch sets the best place matching query.
func (p *Provider) SetFromSearch(query string) (sunset.Location, error) {
	if p.places == nil {
		return sunset.Location{}, fmt.Errorf("%w: no directory", ErrNoMatch)
	}
	found := p.places.Search(query, 1)
	if len(found) == 0 {
		return sunset.Location{}, fmt.Errorf("%w %q", ErrNoMatch, query)
	}
	return p.set(found[0])
}

func (p *Provider) set(loc sunset.Location) (sunset.Location, error) {
	if err := loc.Validate(); err != nil {
		return sunset.Location{}, err
	}
	p.current = &loc
	return loc, nil
}

// Save persists the current location, minting a key on first save.
func (p *Provider) Save(ctx context.Context) (string, error) {
	if p.store == nil {
		return "", errors.New("no location store")
	}
	loc, err := p.Current()
	if err != nil {
		return "", err
	}
	if p.key == "" {
		p.key = uuid.NewString()
	}
	if err := p.store.Save(ctx, p.key, loc); err != nil {
		return "", fmt.Errorf("failed to save location: %w", err)
	}
	return p.key, nil
}

// Load restores the location saved under key.
func (p *Provider) Load(ctx context.Context, key string) (sunset.Location, error) {
	if p.store == nil {
		return sunset.Location{}, errors.New("no location store")
	}
	loc, err := p.store.Load(ctx, key)
	if err != nil {
		return sunset.Location{}, err
	}
	p.key = key
	return p.set(loc)
}
