package routing_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/remoteminer-go/internal/adapters/routing"
	"github.com/andrescamacho/remoteminer-go/internal/domain/economy"
	domainRouting "github.com/andrescamacho/remoteminer-go/internal/domain/routing"
	"github.com/andrescamacho/remoteminer-go/internal/domain/shared"
	"github.com/andrescamacho/remoteminer-go/internal/domain/territory"
	"github.com/andrescamacho/remoteminer-go/test/helpers"
)

var (
	staging = shared.Position{X: 47, Y: 10, Zone: "W1N1"}
	node    = shared.Position{X: 3, Y: 10, Zone: "W0N1"}
)

// roadStore serves fixed road tiles
type roadStore struct {
	tiles []shared.Position
}

func (s *roadStore) SaveRoute(ctx context.Context, route *domainRouting.Route) error { return nil }
func (s *roadStore) FindRoute(ctx context.Context, origin, destination shared.Position) (*domainRouting.Route, error) {
	return nil, nil
}
func (s *roadStore) RoadTiles(ctx context.Context, zone string) ([]shared.Position, error) {
	return domainRouting.SegmentsByZone(s.tiles)[zone], nil
}

func twoZoneWorld(remoteStatus territory.Status) *helpers.MockZoneRepository {
	zones := helpers.NewMockZoneRepository()
	zones.AddZone("W1N1", territory.StatusOwnedMe)
	zones.AddZone("W0N1", remoteStatus, node)
	return zones
}

func roadOptions(ignore bool) domainRouting.RouteOptions {
	return domainRouting.RouteOptions{
		AllowedStatuses:              territory.NewStatusSet(territory.StatusOwnedMe, territory.StatusReservedMe, territory.StatusVacant),
		IgnoreExistingInfrastructure: ignore,
		DestinationProximity:         1,
	}
}

func TestComputeRoute_CrossesZoneEdge(t *testing.T) {
	// Arrange
	router := routing.NewGridRouter(twoZoneWorld(territory.StatusVacant), nil,
		territory.NewTopology(0), routing.DefaultTileCosts(), 0)

	// Act
	route, err := router.ComputeRoute(context.Background(), staging, node, roadOptions(true))

	// Assert
	require.NoError(t, err)
	require.False(t, route.Incomplete)
	assert.Equal(t, 5, route.Len())
	assert.Equal(t, 10.0, route.Cost)
	assert.Equal(t, []string{"W1N1", "W0N1"}, route.Zones())

	last, _ := route.Last()
	assert.True(t, last.IsNear(node, 1))
	assert.NotEqual(t, node, last)
	for _, p := range route.Positions {
		assert.NotEqual(t, staging, p, "origin is not part of the path")
	}
}

func TestComputeRoute_StoredRoadsAreDiscounted(t *testing.T) {
	roads := &roadStore{tiles: []shared.Position{
		{X: 48, Y: 10, Zone: "W1N1"},
		{X: 49, Y: 10, Zone: "W1N1"},
		{X: 0, Y: 10, Zone: "W0N1"},
		{X: 1, Y: 10, Zone: "W0N1"},
		{X: 2, Y: 10, Zone: "W0N1"},
	}}
	router := routing.NewGridRouter(twoZoneWorld(territory.StatusVacant), roads,
		territory.NewTopology(0), routing.DefaultTileCosts(), 0)

	stable, err := router.ComputeRoute(context.Background(), staging, node, roadOptions(false))
	require.NoError(t, err)
	raw, err := router.ComputeRoute(context.Background(), staging, node, roadOptions(true))
	require.NoError(t, err)

	assert.Equal(t, 5.0, stable.Cost)
	assert.Equal(t, 10.0, raw.Cost)
}

func TestComputeRoute_DisallowedZoneIsIncomplete(t *testing.T) {
	tests := []struct {
		name   string
		status territory.Status
		mutate func(z *helpers.MockZoneRepository)
	}{
		{name: "hostile owner", status: territory.StatusOwnedHostile},
		{name: "hostile reservation", status: territory.StatusReservedHostile},
		{
			name:   "hostile flag",
			status: territory.StatusVacant,
			mutate: func(z *helpers.MockZoneRepository) { z.MarkHostile("W0N1") },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			zones := twoZoneWorld(tt.status)
			if tt.mutate != nil {
				tt.mutate(zones)
			}
			router := routing.NewGridRouter(zones, nil, territory.NewTopology(0), routing.DefaultTileCosts(), 0)

			route, err := router.ComputeRoute(context.Background(), staging, node, roadOptions(true))

			require.NoError(t, err)
			assert.True(t, route.Incomplete)
		})
	}
}

func TestComputeRoute_WallsAndSwamps(t *testing.T) {
	// column x=1 of W0N1 is solid wall, the rest swamp
	var terrain strings.Builder
	for y := 0; y < shared.ZoneSize; y++ {
		for x := 0; x < shared.ZoneSize; x++ {
			if x == 1 {
				terrain.WriteByte(territory.TerrainWall)
			} else {
				terrain.WriteByte(territory.TerrainSwamp)
			}
		}
	}

	zones := twoZoneWorld(territory.StatusVacant)
	remote, _ := zones.FindByName(context.Background(), "W0N1")
	remote.Terrain = terrain.String()
	router := routing.NewGridRouter(zones, nil, territory.NewTopology(0), routing.DefaultTileCosts(), 0)

	blocked, err := router.ComputeRoute(context.Background(), staging, node, roadOptions(true))
	require.NoError(t, err)
	assert.True(t, blocked.Incomplete)

	near := shared.Position{X: 0, Y: 20, Zone: "W0N1"}
	zones.AddZone("W0N1", territory.StatusVacant, near)
	remote, _ = zones.FindByName(context.Background(), "W0N1")
	remote.Terrain = terrain.String()

	swampy, err := router.ComputeRoute(context.Background(), shared.Position{X: 48, Y: 20, Zone: "W1N1"}, near, roadOptions(true))
	require.NoError(t, err)
	require.False(t, swampy.Incomplete)
	assert.Equal(t, 2, swampy.Len(), "one plain step to the edge, one swamp step across it")
	assert.Equal(t, 12.0, swampy.Cost)
}

func TestComputeRoute_SearchBudget(t *testing.T) {
	router := routing.NewGridRouter(twoZoneWorld(territory.StatusVacant), nil,
		territory.NewTopology(0), routing.DefaultTileCosts(), 3)

	route, err := router.ComputeRoute(context.Background(), staging, node, roadOptions(true))

	require.NoError(t, err)
	assert.True(t, route.Incomplete)
}

func TestComputeRoute_FeedsSimulator(t *testing.T) {
	router := routing.NewGridRouter(twoZoneWorld(territory.StatusVacant), nil,
		territory.NewTopology(0), routing.DefaultTileCosts(), 0)
	simulator := economy.NewSimulator(economy.DefaultConstants(), router)

	profile, err := simulator.Evaluate(context.Background(), node, staging, true)

	require.NoError(t, err)
	assert.Equal(t, 4, profile.RoadLength)
	assert.InDelta(t, 1.5, profile.RoadMaintenance, 1e-9)
	assert.True(t, profile.MiningPosition.IsNear(node, 1))
	assert.Equal(t, 1, profile.HaulerCount)
}
