package routing

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/andrescamacho/remoteminer-go/internal/domain/shared"
)

// Route is an ordered path from a base's staging point toward a node. The last
// position is where the path stopped (within the requested proximity).
type Route struct {
	Origin      shared.Position
	Destination shared.Position
	Positions   []shared.Position
	Cost        float64
	Incomplete  bool
}

// NewIncompleteRoute is the "no path" outcome
func NewIncompleteRoute(origin, destination shared.Position) *Route {
	return &Route{Origin: origin, Destination: destination, Incomplete: true}
}

// Len returns the number of steps in the route
func (r *Route) Len() int {
	return len(r.Positions)
}

// Last returns the final position of the route
func (r *Route) Last() (shared.Position, bool) {
	if len(r.Positions) == 0 {
		return shared.Position{}, false
	}
	return r.Positions[len(r.Positions)-1], true
}

// Zones lists the distinct zones the route crosses, in traversal order
func (r *Route) Zones() []string {
	seen := make(map[string]bool)
	zones := make([]string, 0, 4)
	for _, p := range r.Positions {
		if !seen[p.Zone] {
			seen[p.Zone] = true
			zones = append(zones, p.Zone)
		}
	}
	return zones
}

// Key identifies a route in the cache
func Key(origin, destination shared.Position) string {
	return origin.Encode() + ">" + destination.Encode()
}

// Encode serializes positions grouped by zone: "W1N1:10,12;11,12|W1N2:..."
func Encode(positions []shared.Position) string {
	var b strings.Builder
	current := ""
	for i, p := range positions {
		if p.Zone != current || i == 0 {
			if i > 0 {
				b.WriteByte('|')
			}
			b.WriteString(p.Zone)
			b.WriteByte(':')
			current = p.Zone
		} else {
			b.WriteByte(';')
		}
		b.WriteString(strconv.Itoa(p.X))
		b.WriteByte(',')
		b.WriteString(strconv.Itoa(p.Y))
	}
	return b.String()
}

// Decode parses the format produced by Encode
func Decode(encoded string) ([]shared.Position, error) {
	if encoded == "" {
		return []shared.Position{}, nil
	}

	var positions []shared.Position
	for _, segment := range strings.Split(encoded, "|") {
		zone, tiles, ok := strings.Cut(segment, ":")
		if !ok || zone == "" {
			return nil, fmt.Errorf("malformed route segment %q", segment)
		}
		for _, tile := range strings.Split(tiles, ";") {
			xs, ys, ok := strings.Cut(tile, ",")
			if !ok {
				return nil, fmt.Errorf("malformed route tile %q in zone %s", tile, zone)
			}
			x, errX := strconv.Atoi(xs)
			y, errY := strconv.Atoi(ys)
			if errX != nil || errY != nil {
				return nil, fmt.Errorf("malformed route tile %q in zone %s", tile, zone)
			}
			pos, err := shared.NewPosition(x, y, zone)
			if err != nil {
				return nil, err
			}
			positions = append(positions, pos)
		}
	}
	return positions, nil
}

// SegmentsByZone splits positions into per-zone tile lists
func SegmentsByZone(positions []shared.Position) map[string][]shared.Position {
	segments := make(map[string][]shared.Position)
	for _, p := range positions {
		segments[p.Zone] = append(segments[p.Zone], p)
	}
	return segments
}
