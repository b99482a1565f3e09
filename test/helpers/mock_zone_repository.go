package helpers

import (
	"context"
	"sort"
	"sync"

	"github.com/andrescamacho/remoteminer-go/internal/domain/remote"
	"github.com/andrescamacho/remoteminer-go/internal/domain/shared"
	"github.com/andrescamacho/remoteminer-go/internal/domain/territory"
)

// MockZoneRepository is an in-memory territory.ZoneRepository
type MockZoneRepository struct {
	mu    sync.RWMutex
	zones map[string]*territory.Zone
}

// NewMockZoneRepository creates an empty zone repository
func NewMockZoneRepository() *MockZoneRepository {
	return &MockZoneRepository{zones: make(map[string]*territory.Zone)}
}

// AddZone registers a zone with the given status and nodes, panicking on invalid input
func (m *MockZoneRepository) AddZone(name string, status territory.Status, nodes ...shared.Position) *territory.Zone {
	zone, err := territory.NewZone(name, status, nodes)
	if err != nil {
		panic(err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.zones[name] = zone
	return zone
}

// MarkHostile flags a zone as hostile
func (m *MockZoneRepository) MarkHostile(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if z, ok := m.zones[name]; ok {
		z.Hostile = true
	}
}

func (m *MockZoneRepository) FindByName(ctx context.Context, name string) (*territory.Zone, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	zone, ok := m.zones[name]
	if !ok {
		return nil, nil
	}
	return zone, nil
}

func (m *MockZoneRepository) Save(ctx context.Context, zone *territory.Zone) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.zones[zone.Name] = zone
	return nil
}

func (m *MockZoneRepository) List(ctx context.Context) ([]*territory.Zone, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*territory.Zone, 0, len(m.zones))
	for _, z := range m.zones {
		out = append(out, z)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// MockBaseRepository is an in-memory remote.BaseRepository
type MockBaseRepository struct {
	mu    sync.RWMutex
	bases map[string]*remote.Base
}

// NewMockBaseRepository creates an empty base repository
func NewMockBaseRepository() *MockBaseRepository {
	return &MockBaseRepository{bases: make(map[string]*remote.Base)}
}

// AddBase registers a base staged at the centre of its zone
func (m *MockBaseRepository) AddBase(name string, level int) *remote.Base {
	base, err := remote.NewBase(name, shared.Position{X: 25, Y: 25, Zone: name}, level)
	if err != nil {
		panic(err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bases[name] = base
	return base
}

func (m *MockBaseRepository) FindByName(ctx context.Context, name string) (*remote.Base, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	base, ok := m.bases[name]
	if !ok {
		return nil, nil
	}
	return base, nil
}

func (m *MockBaseRepository) Save(ctx context.Context, base *remote.Base) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bases[base.Name] = base
	return nil
}

func (m *MockBaseRepository) List(ctx context.Context) ([]*remote.Base, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*remote.Base, 0, len(m.bases))
	for _, b := range m.bases {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
