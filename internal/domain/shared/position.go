package shared

import (
	"fmt"
	"strconv"
	"strings"
)

// ZoneSize is the width and height of a zone in tiles
const ZoneSize = 50

// Position is an immutable tile location inside a zone
type Position struct {
	X    int    `json:"x" yaml:"x"`
	Y    int    `json:"y" yaml:"y"`
	Zone string `json:"zone" yaml:"zone"`
}

// NewPosition creates a position with bounds validation
func NewPosition(x, y int, zone string) (Position, error) {
	if zone == "" {
		return Position{}, NewValidationError("zone", "cannot be empty")
	}
	if x < 0 || x >= ZoneSize || y < 0 || y >= ZoneSize {
		return Position{}, NewValidationError("position", fmt.Sprintf("(%d,%d) outside zone bounds", x, y))
	}
	return Position{X: x, Y: y, Zone: zone}, nil
}

// Encode returns the "x.y.zone" form used as storage key and node identifier
func (p Position) Encode() string {
	return fmt.Sprintf("%d.%d.%s", p.X, p.Y, p.Zone)
}

func (p Position) String() string {
	return p.Encode()
}

// IsNear reports whether other is within Chebyshev distance r in the same zone
func (p Position) IsNear(other Position, r int) bool {
	if p.Zone != other.Zone {
		return false
	}
	dx := p.X - other.X
	if dx < 0 {
		dx = -dx
	}
	dy := p.Y - other.Y
	if dy < 0 {
		dy = -dy
	}
	return dx <= r && dy <= r
}

// ParsePosition decodes an "x.y.zone" string
func ParsePosition(encoded string) (Position, error) {
	parts := strings.SplitN(encoded, ".", 3)
	if len(parts) != 3 {
		return Position{}, NewValidationError("position", fmt.Sprintf("malformed position %q", encoded))
	}

	x, err := strconv.Atoi(parts[0])
	if err != nil {
		return Position{}, NewValidationError("position", fmt.Sprintf("malformed x in %q", encoded))
	}
	y, err := strconv.Atoi(parts[1])
	if err != nil {
		return Position{}, NewValidationError("position", fmt.Sprintf("malformed y in %q", encoded))
	}

	return NewPosition(x, y, parts[2])
}

// NodeID identifies a resource node by its encoded position
type NodeID string

// NodeIDFor returns the identifier of the node at pos
func NodeIDFor(pos Position) NodeID {
	return NodeID(pos.Encode())
}

// Position decodes the node's location
func (id NodeID) Position() (Position, error) {
	return ParsePosition(string(id))
}

// Zone returns the zone segment of the identifier, or "" if malformed
func (id NodeID) Zone() string {
	parts := strings.SplitN(string(id), ".", 3)
	if len(parts) != 3 {
		return ""
	}
	return parts[2]
}

func (id NodeID) String() string {
	return string(id)
}
