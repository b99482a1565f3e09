// Package worldfile loads and writes reconnaissance snapshots: the zones seen
// so far and the home bases that operate from them.
package worldfile

import (
	"context"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/andrescamacho/remoteminer-go/internal/domain/remote"
	"github.com/andrescamacho/remoteminer-go/internal/domain/shared"
	"github.com/andrescamacho/remoteminer-go/internal/domain/territory"
)

// File is the on-disk layout
type File struct {
	Bases []BaseEntry `yaml:"bases"`
	Zones []ZoneEntry `yaml:"zones"`
}

// BaseEntry describes one home base
type BaseEntry struct {
	Name    string `yaml:"name"`
	Staging string `yaml:"staging"`
	Level   int    `yaml:"level"`
}

// ZoneEntry describes one observed zone. Terrain is one string per row;
// omitted terrain means all plains.
type ZoneEntry struct {
	Name    string   `yaml:"name"`
	Status  string   `yaml:"status"`
	Hostile bool     `yaml:"hostile,omitempty"`
	Nodes   []string `yaml:"nodes,omitempty"`
	Terrain []string `yaml:"terrain,omitempty"`
}

// World is a validated snapshot
type World struct {
	Zones []*territory.Zone
	Bases []*remote.Base
}

// Load reads and validates a world file
func Load(path string) (*World, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read world file %s: %w", path, err)
	}
	return Parse(data)
}

// Parse validates a YAML snapshot. A base whose zone is not listed is recorded
// as an OWNED_ME zone without nodes.
func Parse(data []byte) (*World, error) {
	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse world file: %w", err)
	}

	world := &World{}
	seen := make(map[string]bool, len(file.Zones))

	for i, entry := range file.Zones {
		zone, err := entry.toDomain()
		if err != nil {
			return nil, fmt.Errorf("zone #%d (%s): %w", i+1, entry.Name, err)
		}
		if seen[zone.Name] {
			return nil, fmt.Errorf("zone %s listed twice", zone.Name)
		}
		seen[zone.Name] = true
		world.Zones = append(world.Zones, zone)
	}

	for i, entry := range file.Bases {
		staging, err := shared.ParsePosition(entry.Staging)
		if err != nil {
			return nil, fmt.Errorf("base #%d (%s): %w", i+1, entry.Name, err)
		}
		base, err := remote.NewBase(entry.Name, staging, entry.Level)
		if err != nil {
			return nil, fmt.Errorf("base #%d (%s): %w", i+1, entry.Name, err)
		}
		world.Bases = append(world.Bases, base)

		if !seen[base.Name] {
			zone, err := territory.NewZone(base.Name, territory.StatusOwnedMe, nil)
			if err != nil {
				return nil, err
			}
			seen[base.Name] = true
			world.Zones = append(world.Zones, zone)
		}
	}

	return world, nil
}

// Import saves every zone and base of the snapshot
func (w *World) Import(ctx context.Context, zones territory.ZoneRepository, bases remote.BaseRepository) error {
	for _, z := range w.Zones {
		if err := zones.Save(ctx, z); err != nil {
			return err
		}
	}
	for _, b := range w.Bases {
		if err := bases.Save(ctx, b); err != nil {
			return err
		}
	}
	return nil
}

// Marshal renders the snapshot as YAML
func (w *World) Marshal() ([]byte, error) {
	file := File{
		Bases: make([]BaseEntry, 0, len(w.Bases)),
		Zones: make([]ZoneEntry, 0, len(w.Zones)),
	}
	for _, b := range w.Bases {
		file.Bases = append(file.Bases, BaseEntry{Name: b.Name, Staging: b.Staging.Encode(), Level: b.Level})
	}
	for _, z := range w.Zones {
		file.Zones = append(file.Zones, zoneEntryFrom(z))
	}

	out, err := yaml.Marshal(&file)
	if err != nil {
		return nil, fmt.Errorf("failed to render world file: %w", err)
	}
	return out, nil
}

// Save writes the snapshot to path
func (w *World) Save(path string) error {
	data, err := w.Marshal()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write world file %s: %w", path, err)
	}
	return nil
}

func (e ZoneEntry) toDomain() (*territory.Zone, error) {
	nodes := make([]shared.Position, 0, len(e.Nodes))
	for _, n := range e.Nodes {
		pos, err := shared.ParsePosition(n)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, pos)
	}

	zone, err := territory.NewZone(e.Name, territory.Status(strings.ToUpper(e.Status)), nodes)
	if err != nil {
		return nil, err
	}
	zone.Hostile = e.Hostile

	if len(e.Terrain) > 0 {
		terrain, err := joinTerrain(e.Terrain)
		if err != nil {
			return nil, err
		}
		zone.Terrain = terrain
	}
	return zone, nil
}

func joinTerrain(rows []string) (string, error) {
	if len(rows) != shared.ZoneSize {
		return "", shared.NewValidationError("terrain", fmt.Sprintf("expected %d rows, got %d", shared.ZoneSize, len(rows)))
	}

	var b strings.Builder
	b.Grow(shared.ZoneSize * shared.ZoneSize)
	for y, row := range rows {
		if len(row) != shared.ZoneSize {
			return "", shared.NewValidationError("terrain", fmt.Sprintf("row %d has %d tiles", y, len(row)))
		}
		for i := 0; i < len(row); i++ {
			switch row[i] {
			case territory.TerrainPlain, territory.TerrainWall, territory.TerrainSwamp:
			default:
				return "", shared.NewValidationError("terrain", fmt.Sprintf("unknown tile %q at %d,%d", row[i], i, y))
			}
		}
		b.WriteString(row)
	}
	return b.String(), nil
}

func zoneEntryFrom(z *territory.Zone) ZoneEntry {
	entry := ZoneEntry{
		Name:    z.Name,
		Status:  string(z.Status),
		Hostile: z.Hostile,
	}
	for _, n := range z.Nodes {
		entry.Nodes = append(entry.Nodes, n.Encode())
	}
	if len(z.Terrain) == shared.ZoneSize*shared.ZoneSize {
		for y := 0; y < shared.ZoneSize; y++ {
			entry.Terrain = append(entry.Terrain, z.Terrain[y*shared.ZoneSize:(y+1)*shared.ZoneSize])
		}
	}
	return entry
}
