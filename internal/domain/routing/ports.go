package routing

import (
	"context"

	"github.com/andrescamacho/remoteminer-go/internal/domain/shared"
	"github.com/andrescamacho/remoteminer-go/internal/domain/territory"
)

// RouteProvider computes a path plus its aggregate traversal cost. It is a
// synchronous, bounded computation; an Incomplete route means no path exists
// under the given constraints and is not an error.
type RouteProvider interface {
	ComputeRoute(ctx context.Context, origin, destination shared.Position, opts RouteOptions) (*Route, error)
}

// RouteOptions constrains a route request
type RouteOptions struct {
	// AllowedStatuses limits which zones the path may cross
	AllowedStatuses territory.StatusSet
	// IgnoreExistingInfrastructure prices previously stored road tiles like
	// bare terrain instead of discounting them
	IgnoreExistingInfrastructure bool
	// DestinationProximity is how close to the destination the path must end
	DestinationProximity int
}

// RouteStore is the shared route cache keyed by (origin, destination)
type RouteStore interface {
	SaveRoute(ctx context.Context, route *Route) error
	// FindRoute returns nil, nil on a cache miss
	FindRoute(ctx context.Context, origin, destination shared.Position) (*Route, error)
	// RoadTiles lists every tile of zone that lies on a stored route
	RoadTiles(ctx context.Context, zone string) ([]shared.Position, error)
}
