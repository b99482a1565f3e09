package territory

import (
	"context"

	"github.com/andrescamacho/remoteminer-go/internal/domain/shared"
)

// Status is the occupation status of a zone as last observed by reconnaissance
type Status string

const (
	StatusVacant          Status = "VACANT"
	StatusReservedMe      Status = "RESERVED_ME"
	StatusReservedHostile Status = "RESERVED_HOSTILE"
	StatusOwnedMe         Status = "OWNED_ME"
	StatusOwnedHostile    Status = "OWNED_HOSTILE"
)

// IsValid reports whether s is a known status
func (s Status) IsValid() bool {
	switch s {
	case StatusVacant, StatusReservedMe, StatusReservedHostile, StatusOwnedMe, StatusOwnedHostile:
		return true
	}
	return false
}

// StatusSet is a small set of statuses
type StatusSet map[Status]bool

// NewStatusSet builds a set from a list of statuses
func NewStatusSet(statuses ...Status) StatusSet {
	set := make(StatusSet, len(statuses))
	for _, s := range statuses {
		set[s] = true
	}
	return set
}

// Has reports membership
func (s StatusSet) Has(status Status) bool {
	return s[status]
}

// Terrain tile codes
const (
	TerrainPlain = '0'
	TerrainWall  = '1'
	TerrainSwamp = '2'
)

// Zone is a discovered grid cell of the world. Zones are never deleted, only
// re-classified by reconnaissance.
type Zone struct {
	Name    string
	Status  Status
	Hostile bool
	Nodes   []shared.Position
	// Terrain is ZoneSize*ZoneSize tile codes in row-major order; empty means all plains
	Terrain string
}

// NewZone validates and creates a zone
func NewZone(name string, status Status, nodes []shared.Position) (*Zone, error) {
	if _, ok := ParseZone(name); !ok {
		return nil, shared.NewValidationError("name", "invalid zone identifier "+name)
	}
	if !status.IsValid() {
		return nil, shared.NewValidationError("status", "unknown zone status "+string(status))
	}
	for _, n := range nodes {
		if n.Zone != name {
			return nil, shared.NewValidationError("nodes", "node "+n.Encode()+" does not belong to zone "+name)
		}
	}

	copied := make([]shared.Position, len(nodes))
	copy(copied, nodes)

	return &Zone{Name: name, Status: status, Nodes: copied}, nil
}

// NodeIDs returns the identifiers of every resource node in the zone
func (z *Zone) NodeIDs() []shared.NodeID {
	ids := make([]shared.NodeID, 0, len(z.Nodes))
	for _, n := range z.Nodes {
		ids = append(ids, shared.NodeIDFor(n))
	}
	return ids
}

// TerrainAt returns the tile code at (x, y); out-of-range tiles are walls
func (z *Zone) TerrainAt(x, y int) byte {
	if x < 0 || y < 0 || x >= shared.ZoneSize || y >= shared.ZoneSize {
		return TerrainWall
	}
	if len(z.Terrain) != shared.ZoneSize*shared.ZoneSize {
		return TerrainPlain
	}
	return z.Terrain[y*shared.ZoneSize+x]
}

// ZoneRepository provides zone records gathered by reconnaissance
type ZoneRepository interface {
	// FindByName returns nil, nil when the zone has never been observed
	FindByName(ctx context.Context, name string) (*Zone, error)
	Save(ctx context.Context, zone *Zone) error
	List(ctx context.Context) ([]*Zone, error)
}
