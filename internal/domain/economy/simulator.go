package economy

import (
	"context"
	"math"

	"github.com/andrescamacho/remoteminer-go/internal/domain/routing"
	"github.com/andrescamacho/remoteminer-go/internal/domain/shared"
	"github.com/andrescamacho/remoteminer-go/internal/domain/territory"
)

// RoadStatuses are the zone statuses a remote road may cross
var RoadStatuses = []territory.Status{
	territory.StatusOwnedMe,
	territory.StatusReservedMe,
	territory.StatusVacant,
}

// Simulator converts a node and a base staging point into a Profile
type Simulator struct {
	constants Constants
	routes    routing.RouteProvider
}

// NewSimulator creates a simulator over the given constants table
func NewSimulator(constants Constants, routes routing.RouteProvider) *Simulator {
	return &Simulator{constants: constants, routes: routes}
}

// Constants exposes the table the simulator was built with
func (s *Simulator) Constants() Constants {
	return s.constants
}

// Evaluate computes the profile of mining node from staging.
//
// Business Rules:
//   - yield = high tier for guarded/resource-rich zones, standard otherwise
//   - road maintenance = (route cost / 2) / road decay period * regen period
//   - harvester work = ceil(yield / harvest power / regen) + 1, move = ceil((work+1)/2)
//   - container maintenance = decay / repair power / decay period * regen
//   - haulers = max(1, ceil(road length * trip multiplier / ticks to fill container))
//   - reserver upkeep only when the zone needs an active reservation
//   - net income = yield - (road + container + harvester + reserver + haulers * hauler upkeep)
//
// Returns an *shared.UnreachableError when no route exists, and an
// *shared.EvaluationError when the route provider fails.
func (s *Simulator) Evaluate(
	ctx context.Context,
	node shared.Position,
	staging shared.Position,
	ignoreInfrastructure bool,
) (*Profile, error) {
	nodeID := shared.NodeIDFor(node)

	if _, ok := territory.ParseZone(node.Zone); !ok {
		return nil, shared.NewEvaluationError(nodeID.String(), shared.NewValidationError("node", "invalid zone "+node.Zone))
	}
	if _, ok := territory.ParseZone(staging.Zone); !ok {
		return nil, shared.NewEvaluationError(nodeID.String(), shared.NewValidationError("staging", "invalid zone "+staging.Zone))
	}

	route, err := s.routes.ComputeRoute(ctx, staging, node, routing.RouteOptions{
		AllowedStatuses:              territory.NewStatusSet(RoadStatuses...),
		IgnoreExistingInfrastructure: ignoreInfrastructure,
		DestinationProximity:         1,
	})
	if err != nil {
		return nil, shared.NewEvaluationError(nodeID.String(), err)
	}
	if route == nil || route.Incomplete || route.Len() == 0 {
		return nil, shared.NewUnreachableError(nodeID.String(), staging.Zone)
	}

	return s.price(nodeID, node, staging, route), nil
}

// EvaluateRoute prices a previously stored road from staging to the mining
// position of node without consulting the route provider. The road is the
// form persisted with a claim: its positions stop short of the mining
// position, which is the road's destination.
func (s *Simulator) EvaluateRoute(node, staging shared.Position, road *routing.Route) (*Profile, error) {
	nodeID := shared.NodeIDFor(node)
	if road == nil || road.Incomplete {
		return nil, shared.NewUnreachableError(nodeID.String(), staging.Zone)
	}
	if road.Origin != staging || !road.Destination.IsNear(node, 1) {
		return nil, shared.NewEvaluationError(nodeID.String(), shared.NewValidationError("route",
			"stored route "+road.Origin.Encode()+" -> "+road.Destination.Encode()+" does not serve this node"))
	}

	full := &routing.Route{
		Origin:      road.Origin,
		Destination: node,
		Positions:   append(append([]shared.Position(nil), road.Positions...), road.Destination),
		Cost:        road.Cost,
	}
	return s.price(nodeID, node, staging, full), nil
}

// price builds the profile of a complete route whose last position is the
// mining position
func (s *Simulator) price(nodeID shared.NodeID, node, staging shared.Position, route *routing.Route) *Profile {
	c := s.constants

	// 1. Yield tier
	highYield := territory.IsHighYieldZone(node.Zone)
	yield := c.SourceYieldStandard
	if highYield {
		yield = c.SourceYieldHigh
	}

	// 2-3. Road
	miningPos, _ := route.Last()
	road := &routing.Route{
		Origin:      staging,
		Destination: miningPos,
		Positions:   append([]shared.Position(nil), route.Positions[:route.Len()-1]...),
		Cost:        route.Cost,
	}
	roadLength := road.Len()
	if roadLength < 1 {
		roadLength = 1
	}

	// 4. Road upkeep
	roadMaintenance := (route.Cost / 2) / c.RoadDecayPeriod * c.RegenerationPeriod

	// 5. Harvester
	harvesterWork := int(math.Ceil(yield/c.HarvestPower/c.RegenerationPeriod)) + 1
	harvesterMove := int(math.Ceil(float64(harvesterWork+1) / 2))
	harvesterBody := Body{
		PartCarry: c.HarvesterCarryParts,
		PartWork:  harvesterWork,
		PartMove:  harvesterMove,
	}
	harvesterUpkeep := harvesterBody.Cost(c.PartCost) / c.WorkerLifetime * c.RegenerationPeriod

	// 6. Container
	containerMaintenance := c.ContainerDecay / c.RepairPower / c.ContainerDecayPeriod * c.RegenerationPeriod

	// 7. Haulers
	fillRate := float64(harvesterWork) * c.HarvestPower
	ticksToFill := math.Ceil(c.ContainerCapacity / fillRate)
	tripDuration := float64(roadLength) * c.TripMultiplier
	haulerCount := int(math.Ceil(tripDuration / ticksToFill))
	if haulerCount < 1 {
		haulerCount = 1
	}
	haulerUpkeep := c.HaulerBody.Cost(c.PartCost) / c.WorkerLifetime * c.RegenerationPeriod

	// 8. Reserver
	reservationRequired := !highYield
	reserverUpkeep := 0.0
	if reservationRequired {
		reserverUpkeep = c.ReserverBody.Cost(c.PartCost) / c.ClaimLifetime * c.RegenerationPeriod
	}

	profile := &Profile{
		NodeID:               nodeID,
		SourceYield:          yield,
		RoadLength:           roadLength,
		RoadMaintenance:      roadMaintenance,
		ContainerMaintenance: containerMaintenance,
		HarvesterWork:        harvesterWork,
		HarvesterMove:        harvesterMove,
		HarvesterUpkeep:      harvesterUpkeep,
		HaulerCount:          haulerCount,
		HaulerUpkeep:         haulerUpkeep,
		ReservationRequired:  reservationRequired,
		ReserverUpkeep:       reserverUpkeep,
		MiningPosition:       miningPos,
		Route:                road,
	}

	// 9. Net income
	profile.NetIncome = yield - profile.TotalUpkeep()

	return profile
}
