package data

import (
	"context"
	"sync"

	"github.com/spencer-p/sunsetdash/pkg/sunset"
)

// Memory keeps saved locations in process. It is safe for concurrent use.
type Memory struct {
	mu   sync.Mutex
	locs map[string]sunset.Location
}

func NewMemory() *Memory {
	return &Memory{locs: make(map[string]sunset.Location)}
}

func (m *Memory) Load(ctx context.Context, key string) (sunset.Location, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	loc, ok := m.locs[key]
	if !ok {
		return sunset.Location{}, ErrNotFound
	}
	return loc, nil
}

func (m *Memory) Save(ctx context.Context, key string, loc sunset.Location) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.locs[key] = loc
	return nil
}
