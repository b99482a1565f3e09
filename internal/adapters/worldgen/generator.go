// Package worldgen synthesises sandbox worlds from layered simplex noise
package worldgen

import (
	"fmt"
	"math/rand"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/andrescamacho/remoteminer-go/internal/adapters/worldfile"
	"github.com/andrescamacho/remoteminer-go/internal/domain/remote"
	"github.com/andrescamacho/remoteminer-go/internal/domain/shared"
	"github.com/andrescamacho/remoteminer-go/internal/domain/territory"
)

// Config holds generation parameters. Noise thresholds are in [0,1].
type Config struct {
	Center    string
	Radius    int
	Seed      int64 // 0 picks a random seed
	BaseLevel int

	WallLevel     float64 // tiles above become walls
	SwampLevel    float64 // tiles below become swamp
	ReservedLevel float64 // zones above are reserved by a rival
	HostileLevel  float64 // zones above are owned by a rival
}

// DefaultConfig returns a small world around W2N2
func DefaultConfig() Config {
	return Config{
		Center:        "W2N2",
		Radius:        3,
		BaseLevel:     4,
		WallLevel:     0.72,
		SwampLevel:    0.28,
		ReservedLevel: 0.68,
		HostileLevel:  0.78,
	}
}

// gateway rows and columns along each edge are always plain
const (
	gatewayFrom = 20
	gatewayTo   = 29
	nodeMargin  = 5
)

// Generate builds a world with one base at the center zone
func Generate(cfg Config) (*worldfile.World, error) {
	center, ok := territory.ParseZone(cfg.Center)
	if !ok {
		return nil, shared.NewValidationError("center", "invalid zone identifier "+cfg.Center)
	}
	if cfg.Radius < 0 {
		return nil, shared.NewValidationError("radius", "must not be negative")
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Int63()
	}

	terrainNoise := opensimplex.NewNormalized(seed)
	statusNoise := opensimplex.NewNormalized(seed + 1)
	rng := rand.New(rand.NewSource(seed))
	topology := territory.NewTopology(0)

	staging := shared.Position{X: shared.ZoneSize / 2, Y: shared.ZoneSize / 2, Zone: cfg.Center}
	base, err := remote.NewBase(cfg.Center, staging, cfg.BaseLevel)
	if err != nil {
		return nil, err
	}

	world := &worldfile.World{Bases: []*remote.Base{base}}

	for dy := cfg.Radius; dy >= -cfg.Radius; dy-- {
		for dx := -cfg.Radius; dx <= cfg.Radius; dx++ {
			coords := territory.Coordinates{X: center.X + dx, Y: center.Y + dy}
			name := coords.Name()
			if !topology.Contains(name) {
				continue
			}

			zone, err := generateZone(cfg, name, coords, terrainNoise, statusNoise, rng)
			if err != nil {
				return nil, fmt.Errorf("failed to generate %s: %w", name, err)
			}
			if name == cfg.Center {
				zone.Status = territory.StatusOwnedMe
				clearAround(zone, staging, 2)
			}
			world.Zones = append(world.Zones, zone)
		}
	}

	return world, nil
}

func generateZone(
	cfg Config,
	name string,
	coords territory.Coordinates,
	terrainNoise, statusNoise opensimplex.Noise,
	rng *rand.Rand,
) (*territory.Zone, error) {
	status := territory.StatusVacant
	if !territory.IsHighYieldZone(name) {
		n := statusNoise.Eval2(float64(coords.X)*0.45, float64(coords.Y)*0.45)
		switch {
		case n > cfg.HostileLevel:
			status = territory.StatusOwnedHostile
		case n > cfg.ReservedLevel:
			status = territory.StatusReservedHostile
		}
	}

	zone, err := territory.NewZone(name, status, nil)
	if err != nil {
		return nil, err
	}
	zone.Terrain = string(terrainFor(cfg, coords, terrainNoise))

	count := 1 + rng.Intn(2)
	if territory.IsHighYieldZone(name) {
		count = 3
	}
	for len(zone.Nodes) < count {
		pos := shared.Position{
			X:    nodeMargin + rng.Intn(shared.ZoneSize-2*nodeMargin),
			Y:    nodeMargin + rng.Intn(shared.ZoneSize-2*nodeMargin),
			Zone: name,
		}
		if pos.IsNear(shared.Position{X: shared.ZoneSize / 2, Y: shared.ZoneSize / 2, Zone: name}, 3) || hasNodeNear(zone, pos) {
			continue
		}
		zone.Nodes = append(zone.Nodes, pos)
		clearAround(zone, pos, 1)
	}

	return zone, nil
}

// terrainFor samples noise in world tile space so terrain is continuous across
// zone edges
func terrainFor(cfg Config, coords territory.Coordinates, noise opensimplex.Noise) []byte {
	tiles := make([]byte, shared.ZoneSize*shared.ZoneSize)
	last := shared.ZoneSize - 1

	for y := 0; y < shared.ZoneSize; y++ {
		for x := 0; x < shared.ZoneSize; x++ {
			gx := float64(coords.X*shared.ZoneSize + x)
			gy := float64(-coords.Y*shared.ZoneSize + y)
			n := octaveNoise(noise, gx, gy, 3, 0.06, 0.5)

			tile := byte(territory.TerrainPlain)
			switch {
			case n > cfg.WallLevel:
				tile = territory.TerrainWall
			case n < cfg.SwampLevel:
				tile = territory.TerrainSwamp
			}

			onEdge := x == 0 || y == 0 || x == last || y == last
			inGateway := (x >= gatewayFrom && x <= gatewayTo) || (y >= gatewayFrom && y <= gatewayTo)
			if onEdge && tile == territory.TerrainWall && inGateway {
				tile = territory.TerrainPlain
			}
			tiles[y*shared.ZoneSize+x] = tile
		}
	}
	return tiles
}

func clearAround(zone *territory.Zone, pos shared.Position, r int) {
	tiles := []byte(zone.Terrain)
	for y := pos.Y - r; y <= pos.Y+r; y++ {
		for x := pos.X - r; x <= pos.X+r; x++ {
			if x < 0 || y < 0 || x >= shared.ZoneSize || y >= shared.ZoneSize {
				continue
			}
			tiles[y*shared.ZoneSize+x] = territory.TerrainPlain
		}
	}
	zone.Terrain = string(tiles)
}

func hasNodeNear(zone *territory.Zone, pos shared.Position) bool {
	for _, n := range zone.Nodes {
		if n.IsNear(pos, 2) {
			return true
		}
	}
	return false
}

// octaveNoise layers frequencies for natural-looking terrain
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}
