package remote

import (
	"context"

	"github.com/andrescamacho/remoteminer-go/internal/domain/shared"
	"github.com/andrescamacho/remoteminer-go/internal/domain/territory"
)

// Base is a home base that sends crews out to remote nodes
type Base struct {
	Name string
	// Staging is the canonical departure point for outbound routes
	Staging shared.Position
	// Level is the development tier of the base
	Level int
}

// NewBase validates and creates a base
func NewBase(name string, staging shared.Position, level int) (*Base, error) {
	if _, ok := territory.ParseZone(name); !ok {
		return nil, shared.NewValidationError("name", "invalid zone identifier "+name)
	}
	if staging.Zone != name {
		return nil, shared.NewValidationError("staging", "staging position must lie in the base zone")
	}
	if level < 0 || level > 8 {
		return nil, shared.NewValidationError("level", "must be between 0 and 8")
	}
	return &Base{Name: name, Staging: staging, Level: level}, nil
}

// StagingPosition returns the base's departure point
func (b *Base) StagingPosition() shared.Position {
	return b.Staging
}

// BaseRepository provides home bases
type BaseRepository interface {
	// FindByName returns nil, nil when the base does not exist
	FindByName(ctx context.Context, name string) (*Base, error)
	Save(ctx context.Context, base *Base) error
	List(ctx context.Context) ([]*Base, error)
}
