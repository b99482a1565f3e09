package territory

import (
	"fmt"
	"regexp"
	"strconv"
)

// Direction is one of the four cardinal zone edges
type Direction int

const (
	Top Direction = iota + 1
	Right
	Bottom
	Left
)

// AllDirections lists the edges in a fixed order (top, right, bottom, left)
var AllDirections = []Direction{Top, Right, Bottom, Left}

func (d Direction) String() string {
	switch d {
	case Top:
		return "TOP"
	case Right:
		return "RIGHT"
	case Bottom:
		return "BOTTOM"
	case Left:
		return "LEFT"
	default:
		return "UNKNOWN"
	}
}

// DefaultWorldRadius bounds the grid to zones W59..E59 and S59..N59
const DefaultWorldRadius = 60

var zoneNamePattern = regexp.MustCompile(`^([WE])(\d+)([NS])(\d+)$`)

// Coordinates is the signed grid location of a zone. X grows eastward and Y
// grows northward; W0 is x=-1 and S0 is y=-1.
type Coordinates struct {
	X int
	Y int
}

// ParseZone converts a zone identifier such as "W7N3" into grid coordinates
func ParseZone(name string) (Coordinates, bool) {
	m := zoneNamePattern.FindStringSubmatch(name)
	if m == nil {
		return Coordinates{}, false
	}

	h, _ := strconv.Atoi(m[2])
	v, _ := strconv.Atoi(m[4])

	c := Coordinates{X: h, Y: v}
	if m[1] == "W" {
		c.X = -h - 1
	}
	if m[3] == "S" {
		c.Y = -v - 1
	}
	return c, true
}

// Name renders coordinates back into a zone identifier
func (c Coordinates) Name() string {
	h, ew := c.X, "E"
	if c.X < 0 {
		h, ew = -c.X-1, "W"
	}
	v, ns := c.Y, "N"
	if c.Y < 0 {
		v, ns = -c.Y-1, "S"
	}
	return fmt.Sprintf("%s%d%s%d", ew, h, ns, v)
}

// sectorOffsets returns the position of the zone inside its 10x10 sector
func sectorOffsets(name string) (int, int, bool) {
	m := zoneNamePattern.FindStringSubmatch(name)
	if m == nil {
		return 0, 0, false
	}
	h, _ := strconv.Atoi(m[2])
	v, _ := strconv.Atoi(m[4])
	return h % 10, v % 10, true
}

// IsResourceRichZone reports whether the zone is the center of its sector.
// Invalid identifiers are never resource-rich.
func IsResourceRichZone(name string) bool {
	x, y, ok := sectorOffsets(name)
	return ok && x == 5 && y == 5
}

// IsGuardedZone reports whether the zone is one of the eight keeper-guarded
// zones surrounding a sector center
func IsGuardedZone(name string) bool {
	x, y, ok := sectorOffsets(name)
	if !ok {
		return false
	}
	if x == 5 && y == 5 {
		return false
	}
	return x >= 4 && x <= 6 && y >= 4 && y <= 6
}

// IsHighYieldZone covers both guarded and resource-rich zones
func IsHighYieldZone(name string) bool {
	return IsGuardedZone(name) || IsResourceRichZone(name)
}

// AdjacentZone returns the zone across the given edge, or "" for an invalid
// identifier or direction
func AdjacentZone(name string, dir Direction) string {
	c, ok := ParseZone(name)
	if !ok {
		return ""
	}
	switch dir {
	case Top:
		c.Y++
	case Bottom:
		c.Y--
	case Right:
		c.X++
	case Left:
		c.X--
	default:
		return ""
	}
	return c.Name()
}

// Topology describes the static shape of the zone grid
type Topology struct {
	Radius int
}

// NewTopology creates a topology bounded to the given radius
func NewTopology(radius int) Topology {
	if radius <= 0 {
		radius = DefaultWorldRadius
	}
	return Topology{Radius: radius}
}

// Contains reports whether the zone lies inside the world bounds
func (t Topology) Contains(name string) bool {
	c, ok := ParseZone(name)
	if !ok {
		return false
	}
	return c.X >= -t.Radius && c.X < t.Radius && c.Y >= -t.Radius && c.Y < t.Radius
}

// ExitDirections lists the edges of the zone that lead to another zone inside
// the world. Invalid identifiers have no exits.
func (t Topology) ExitDirections(name string) []Direction {
	if !t.Contains(name) {
		return nil
	}
	exits := make([]Direction, 0, len(AllDirections))
	for _, dir := range AllDirections {
		if t.Contains(AdjacentZone(name, dir)) {
			exits = append(exits, dir)
		}
	}
	return exits
}

// ExitDirections uses the default world bounds
func ExitDirections(name string) []Direction {
	return NewTopology(DefaultWorldRadius).ExitDirections(name)
}
