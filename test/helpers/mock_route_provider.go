package helpers

import (
	"context"
	"sync"

	"github.com/andrescamacho/remoteminer-go/internal/domain/routing"
	"github.com/andrescamacho/remoteminer-go/internal/domain/shared"
)

// RouteSpec describes the path the mock returns for one destination
type RouteSpec struct {
	Length int // steps before the mining position
	Cost   float64
	// StableCost is returned when existing infrastructure is not ignored; 0 means Cost
	StableCost float64
}

// RouteCall records one ComputeRoute invocation
type RouteCall struct {
	Origin      shared.Position
	Destination shared.Position
	Options     routing.RouteOptions
}

// MockRouteProvider returns canned routes keyed by destination node.
// Destinations without a spec produce an incomplete route.
type MockRouteProvider struct {
	mu sync.Mutex

	specs map[shared.NodeID]RouteSpec
	err   error
	calls []RouteCall
}

// NewMockRouteProvider creates an empty provider
func NewMockRouteProvider() *MockRouteProvider {
	return &MockRouteProvider{specs: make(map[shared.NodeID]RouteSpec)}
}

// SetRoute configures the route to node
func (m *MockRouteProvider) SetRoute(node shared.Position, spec RouteSpec) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.specs[shared.NodeIDFor(node)] = spec
}

// RemoveRoute makes node unreachable
func (m *MockRouteProvider) RemoveRoute(node shared.Position) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.specs, shared.NodeIDFor(node))
}

// SetError makes every call fail
func (m *MockRouteProvider) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns a copy of the recorded calls
func (m *MockRouteProvider) Calls() []RouteCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]RouteCall, len(m.calls))
	copy(out, m.calls)
	return out
}

// ComputeRoute implements routing.RouteProvider
func (m *MockRouteProvider) ComputeRoute(ctx context.Context, origin, destination shared.Position, opts routing.RouteOptions) (*routing.Route, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, RouteCall{Origin: origin, Destination: destination, Options: opts})

	if m.err != nil {
		return nil, m.err
	}

	spec, ok := m.specs[shared.NodeIDFor(destination)]
	if !ok {
		return routing.NewIncompleteRoute(origin, destination), nil
	}

	cost := spec.Cost
	if !opts.IgnoreExistingInfrastructure && spec.StableCost > 0 {
		cost = spec.StableCost
	}

	return &routing.Route{
		Origin:      origin,
		Destination: destination,
		Positions:   StraightPath(destination, spec.Length),
		Cost:        cost,
	}, nil
}

// StraightPath builds length tiles ending next to destination, followed by the
// mining position itself (length+1 positions in total)
func StraightPath(destination shared.Position, length int) []shared.Position {
	positions := make([]shared.Position, 0, length+1)
	for i := 0; i < length; i++ {
		positions = append(positions, shared.Position{
			X:    1 + i%(shared.ZoneSize-2),
			Y:    1 + (i/(shared.ZoneSize-2))%(shared.ZoneSize-2),
			Zone: destination.Zone,
		})
	}
	miningX := destination.X - 1
	if miningX < 0 {
		miningX = destination.X + 1
	}
	positions = append(positions, shared.Position{X: miningX, Y: destination.Y, Zone: destination.Zone})
	return positions
}
