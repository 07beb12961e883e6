// Package config reads the server configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/spencer-p/sunsetdash/pkg/milestone"
	"github.com/spencer-p/sunsetdash/pkg/sunset"
	"github.com/spencer-p/sunsetdash/pkg/timetricks"
)

const (
	// ApproxZone selects a longitude derived fixed offset instead of a named
	// zone.
	ApproxZone = "approx"
	// LocalZone selects the host zone.
	LocalZone = "local"
)

type Config struct {
	Port   string `default:"8080"`
	Prefix string `default:"/"`
	Debug  bool   `default:"false"`

	// TimeZone is an IANA name, ApproxZone or LocalZone. Empty means the host
	// zone.
	TimeZone string `split_words:"true" default:"approx"`
	Oracle   string `default:"keep94" validate:"oneof=keep94 osman"`

	DefaultLat  float64 `split_words:"true" default:"36.9741" validate:"gte=-90,lte=90"`
	DefaultLon  float64 `split_words:"true" default:"-122.0308" validate:"gte=-180,lte=180"`
	DefaultName string  `split_words:"true" default:"Santa Cruz"`

	HorizonDays   int           `split_words:"true" default:"365" validate:"min=1,max=3660"`
	LadderStart   string        `split_words:"true" default:"16:00"`
	LadderEnd     string        `split_words:"true" default:"21:00"`
	UpcomingCount int           `split_words:"true" default:"4" validate:"min=0,max=48"`
	CacheTTL      time.Duration `envconfig:"CACHE_TTL" default:"23h"`

	// DatabaseURL is a postgres DSN. Empty keeps saved locations in memory.
	DatabaseURL   string `envconfig:"DATABASE_URL"`
	SessionKey    string `split_words:"true" default:"deadbeef"`
	EncryptionKey string `split_words:"true" default:"deadbeef"`
}

// Load reads an optional .env file, then the environment, and validates the
// result.
func Load() (*Config, error) {
	// A missing .env is normal outside development.
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}
	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if _, err := cfg.Ladder(); err != nil {
		return nil, err
	}
	if _, err := cfg.Zone(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Zone resolves TimeZone. A nil zone asks the querier to approximate one per
// location.
func (c *Config) Zone() (*time.Location, error) {
	switch c.TimeZone {
	case "", LocalZone:
		return time.Local, nil
	case ApproxZone:
		return nil, nil
	}
	zone, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("bad TIME_ZONE %q: %w", c.TimeZone, err)
	}
	return zone, nil
}

// Ladder is the configured milestone ladder.
func (c *Config) Ladder() (milestone.Ladder, error) {
	start, err := timetricks.ParseClock(c.LadderStart)
	if err != nil {
		return milestone.Ladder{}, fmt.Errorf("bad LADDER_START: %w", err)
	}
	end, err := timetricks.ParseClock(c.LadderEnd)
	if err != nil {
		return milestone.Ladder{}, fmt.Errorf("bad LADDER_END: %w", err)
	}
	if end.Minutes() < start.Minutes() {
		return milestone.Ladder{}, fmt.Errorf("ladder ends at %s before it starts at %s", end, start)
	}
	l := milestone.DefaultLadder
	l.Start, l.End = start, end
	return l, nil
}

// DefaultLocation is used when a request names no location.
func (c *Config) DefaultLocation() sunset.Location {
	return sunset.Location{
		Lat:    c.DefaultLat,
		Long:   c.DefaultLon,
		Name:   c.DefaultName,
		Source: sunset.FromManual,
	}
}

// Engine wires an oracle, the zone and the ladder into a milestone engine.
func (c *Config) Engine(wrap func(sunset.Oracle) sunset.Oracle) (*milestone.Engine, error) {
	oracle, err := sunset.OracleByName(c.Oracle)
	if err != nil {
		return nil, err
	}
	if wrap != nil {
		oracle = wrap(oracle)
	}
	zone, err := c.Zone()
	if err != nil {
		return nil, err
	}
	ladder, err := c.Ladder()
	if err != nil {
		return nil, err
	}
	e := milestone.NewEngine(sunset.NewQuerier(oracle, zone))
	e.Ladder = ladder
	e.Horizon = c.HorizonDays
	return e, nil
}
