package economy

import (
	"fmt"

	"github.com/andrescamacho/remoteminer-go/internal/domain/routing"
	"github.com/andrescamacho/remoteminer-go/internal/domain/shared"
)

// Profile is the economic picture of mining one node from one base. Every
// figure is per regeneration period. A Profile is immutable once computed.
type Profile struct {
	NodeID shared.NodeID

	SourceYield float64

	RoadLength      int
	RoadMaintenance float64

	ContainerMaintenance float64

	HarvesterWork   int
	HarvesterMove   int
	HarvesterUpkeep float64

	HaulerCount  int
	HaulerUpkeep float64 // per hauler

	ReservationRequired bool
	ReserverUpkeep      float64

	NetIncome float64

	MiningPosition shared.Position
	// Route runs from the base staging point up to, but excluding, the mining position
	Route *routing.Route
}

// TotalUpkeep is the sum of the five cost components
func (p *Profile) TotalUpkeep() float64 {
	return p.RoadMaintenance +
		p.ContainerMaintenance +
		p.HarvesterUpkeep +
		p.ReserverUpkeep +
		float64(p.HaulerCount)*p.HaulerUpkeep
}

// IsHighYield reports whether the node belongs to the high yield tier
func (p *Profile) IsHighYield(c Constants) bool {
	return p.SourceYield >= c.SourceYieldHigh
}

func (p *Profile) String() string {
	return fmt.Sprintf("Profile[node=%s, yield=%.0f, road=%d, haulers=%d, net=%.1f]",
		p.NodeID, p.SourceYield, p.RoadLength, p.HaulerCount, p.NetIncome)
}
