package worldgen_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/remoteminer-go/internal/adapters/routing"
	"github.com/andrescamacho/remoteminer-go/internal/adapters/worldgen"
	domainRouting "github.com/andrescamacho/remoteminer-go/internal/domain/routing"
	"github.com/andrescamacho/remoteminer-go/internal/domain/shared"
	"github.com/andrescamacho/remoteminer-go/internal/domain/territory"
	"github.com/andrescamacho/remoteminer-go/test/helpers"
)

func seeded(seed int64) worldgen.Config {
	cfg := worldgen.DefaultConfig()
	cfg.Seed = seed
	return cfg
}

func TestGenerate_IsDeterministicForSeed(t *testing.T) {
	a, err := worldgen.Generate(seeded(42))
	require.NoError(t, err)
	b, err := worldgen.Generate(seeded(42))
	require.NoError(t, err)

	outA, err := a.Marshal()
	require.NoError(t, err)
	outB, err := b.Marshal()
	require.NoError(t, err)
	assert.Equal(t, string(outA), string(outB))
}

func TestGenerate_Shape(t *testing.T) {
	world, err := worldgen.Generate(seeded(7))
	require.NoError(t, err)

	require.Len(t, world.Zones, 49)
	require.Len(t, world.Bases, 1)
	base := world.Bases[0]
	assert.Equal(t, "W2N2", base.Name)

	for _, z := range world.Zones {
		require.Len(t, z.Terrain, shared.ZoneSize*shared.ZoneSize, z.Name)

		if z.Name == base.Name {
			assert.Equal(t, territory.StatusOwnedMe, z.Status)
			assert.Equal(t, byte(territory.TerrainPlain), z.TerrainAt(base.Staging.X, base.Staging.Y))
		}
		if territory.IsHighYieldZone(z.Name) {
			assert.Len(t, z.Nodes, 3, z.Name)
			assert.Equal(t, territory.StatusVacant, z.Status, z.Name)
		} else {
			assert.NotEmpty(t, z.Nodes, z.Name)
		}

		for _, n := range z.Nodes {
			assert.Equal(t, z.Name, n.Zone)
			assert.Equal(t, byte(territory.TerrainPlain), z.TerrainAt(n.X+1, n.Y), "node %s needs a free neighbour", n)
		}
		for i := 20; i <= 29; i++ {
			assert.NotEqual(t, byte(territory.TerrainWall), z.TerrainAt(0, i))
			assert.NotEqual(t, byte(territory.TerrainWall), z.TerrainAt(i, shared.ZoneSize-1))
		}
	}
}

func TestGenerate_RejectsBadInput(t *testing.T) {
	cfg := worldgen.DefaultConfig()
	cfg.Center = "nowhere"
	_, err := worldgen.Generate(cfg)
	assert.Error(t, err)

	cfg = worldgen.DefaultConfig()
	cfg.Radius = -1
	_, err = worldgen.Generate(cfg)
	assert.Error(t, err)
}

func TestGenerate_OpenWorldIsRoutable(t *testing.T) {
	cfg := seeded(3)
	cfg.Radius = 1
	cfg.WallLevel = 2
	cfg.ReservedLevel = 2
	cfg.HostileLevel = 2
	world, err := worldgen.Generate(cfg)
	require.NoError(t, err)

	zones := helpers.NewMockZoneRepository()
	bases := helpers.NewMockBaseRepository()
	require.NoError(t, world.Import(context.Background(), zones, bases))

	router := routing.NewGridRouter(zones, nil, territory.NewTopology(0), routing.DefaultTileCosts(), 0)
	base := world.Bases[0]
	remoteZone := territory.AdjacentZone(base.Name, territory.Left)
	zone, err := zones.FindByName(context.Background(), remoteZone)
	require.NoError(t, err)
	require.NotNil(t, zone)

	route, err := router.ComputeRoute(context.Background(), base.Staging, zone.Nodes[0], domainRouting.RouteOptions{
		AllowedStatuses:      territory.NewStatusSet(territory.StatusOwnedMe, territory.StatusVacant),
		DestinationProximity: 1,
	})
	require.NoError(t, err)
	assert.False(t, route.Incomplete)
	zonesCrossed := route.Zones()
	assert.Equal(t, base.Name, zonesCrossed[0])
	last, _ := route.Last()
	assert.Equal(t, remoteZone, last.Zone)
	assert.Contains(t, zonesCrossed, remoteZone)
}
