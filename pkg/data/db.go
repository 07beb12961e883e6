package data

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/spencer-p/sunsetdash/pkg/sunset"
)

// ErrNotFound means no location is saved under a key.
var ErrNotFound = errors.New("no saved location")

// SavedLocation is a location remembered for a session key.
type SavedLocation struct {
	gorm.Model
	Key       string `gorm:"uniqueIndex;size:64"`
	Latitude  float64
	Longitude float64
	Name      string
	Source    string
}

func (s SavedLocation) location() sunset.Location {
	return sunset.Location{
		Lat:    s.Latitude,
		Long:   s.Longitude,
		Name:   s.Name,
		Source: sunset.Provenance(s.Source),
	}
}

// DB keeps saved locations in postgres.
type DB struct {
	db *gorm.DB
}

// OpenPostgres connects to dsn and migrates the schema.
func OpenPostgres(dsn string) (*DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return New(db)
}

// New wraps an open gorm handle, migrating the schema.
func New(db *gorm.DB) (*DB, error) {
	if err := db.AutoMigrate(&SavedLocation{}); err != nil {
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}
	return &DB{db: db}, nil
}

func (d *DB) Load(ctx context.Context, key string) (sunset.Location, error) {
	var row SavedLocation
	err := d.db.WithContext(ctx).Where(&SavedLocation{Key: key}).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sunset.Location{}, ErrNotFound
	} else if err != nil {
		return sunset.Location{}, err
	}
	return row.location(), nil
}

func (d *DB) Save(ctx context.Context, key string, loc sunset.Location) error {
	var row SavedLocation
	return d.db.WithContext(ctx).
		Where(SavedLocation{Key: key}).
		Assign(SavedLocation{
			Latitude:  loc.Lat,
			Longitude: loc.Long,
			Name:      loc.Name,
			Source:    string(loc.Source),
		}).
		FirstOrCreate(&row).Error
}
