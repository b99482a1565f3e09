package economy_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/remoteminer-go/internal/domain/economy"
	"github.com/andrescamacho/remoteminer-go/internal/domain/routing"
	"github.com/andrescamacho/remoteminer-go/internal/domain/shared"
	"github.com/andrescamacho/remoteminer-go/internal/domain/territory"
	"github.com/andrescamacho/remoteminer-go/test/helpers"
)

var staging = shared.Position{X: 25, Y: 25, Zone: "W2N1"}

func newSimulator(routes *helpers.MockRouteProvider) *economy.Simulator {
	return economy.NewSimulator(economy.DefaultConstants(), routes)
}

func TestEvaluate_StandardNodeWithTwentyStepRoad(t *testing.T) {
	// Arrange
	node := shared.Position{X: 10, Y: 10, Zone: "W1N1"}
	routes := helpers.NewMockRouteProvider()
	routes.SetRoute(node, helpers.RouteSpec{Length: 20, Cost: 40})

	// Act
	profile, err := newSimulator(routes).Evaluate(context.Background(), node, staging, true)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 3000.0, profile.SourceYield)
	assert.Equal(t, 20, profile.RoadLength)
	assert.InDelta(t, 6.0, profile.RoadMaintenance, 1e-9)
	assert.InDelta(t, 150.0, profile.ContainerMaintenance, 1e-9)
	assert.Equal(t, 6, profile.HarvesterWork)
	assert.Equal(t, 4, profile.HarvesterMove)
	assert.InDelta(t, 170.0, profile.HarvesterUpkeep, 1e-9)
	assert.Equal(t, 1, profile.HaulerCount)
	assert.InDelta(t, 520.0, profile.HaulerUpkeep, 1e-9)
	assert.True(t, profile.ReservationRequired)
	assert.InDelta(t, 325.0, profile.ReserverUpkeep, 1e-9)
	assert.InDelta(t, 1829.0, profile.NetIncome, 1e-9)
	assert.Greater(t, profile.NetIncome, 0.0)

	assert.Equal(t, shared.Position{X: 9, Y: 10, Zone: "W1N1"}, profile.MiningPosition)
	assert.Equal(t, 20, profile.Route.Len())
	assert.Equal(t, staging, profile.Route.Origin)
	assert.Equal(t, profile.MiningPosition, profile.Route.Destination)
}

func TestEvaluate_NetIncomeIsYieldMinusFiveComponents(t *testing.T) {
	routes := helpers.NewMockRouteProvider()
	nodes := []shared.Position{
		{X: 10, Y: 10, Zone: "W1N1"},
		{X: 30, Y: 12, Zone: "W4N4"},
		{X: 5, Y: 40, Zone: "W5N5"},
	}
	for i, n := range nodes {
		routes.SetRoute(n, helpers.RouteSpec{Length: 15 + 40*i, Cost: float64(37 + 91*i)})
	}

	sim := newSimulator(routes)
	for _, n := range nodes {
		profile, err := sim.Evaluate(context.Background(), n, staging, true)
		require.NoError(t, err)

		components := profile.RoadMaintenance +
			profile.ContainerMaintenance +
			profile.HarvesterUpkeep +
			profile.ReserverUpkeep +
			float64(profile.HaulerCount)*profile.HaulerUpkeep
		assert.Equal(t, profile.SourceYield-components, profile.NetIncome, n.Encode())
	}
}

func TestEvaluate_HighYieldZonesSkipReservation(t *testing.T) {
	node := shared.Position{X: 30, Y: 12, Zone: "W4N4"}
	routes := helpers.NewMockRouteProvider()
	routes.SetRoute(node, helpers.RouteSpec{Length: 20, Cost: 40})

	profile, err := newSimulator(routes).Evaluate(context.Background(), node, staging, true)

	require.NoError(t, err)
	assert.Equal(t, 4000.0, profile.SourceYield)
	assert.Equal(t, 8, profile.HarvesterWork)
	assert.Equal(t, 5, profile.HarvesterMove)
	assert.InDelta(t, 220.0, profile.HarvesterUpkeep, 1e-9)
	assert.False(t, profile.ReservationRequired)
	assert.Zero(t, profile.ReserverUpkeep)
	assert.True(t, profile.IsHighYield(economy.DefaultConstants()))
}

func TestEvaluate_LongRoadsNeedMoreHaulers(t *testing.T) {
	node := shared.Position{X: 10, Y: 10, Zone: "W1N1"}
	routes := helpers.NewMockRouteProvider()
	routes.SetRoute(node, helpers.RouteSpec{Length: 100, Cost: 200})

	profile, err := newSimulator(routes).Evaluate(context.Background(), node, staging, true)

	require.NoError(t, err)
	// 300 tick round trip against a container that fills in 167 ticks
	assert.Equal(t, 2, profile.HaulerCount)
}

func TestEvaluate_AdjacentNodeClampsRoadLength(t *testing.T) {
	node := shared.Position{X: 27, Y: 25, Zone: "W2N1"}
	routes := helpers.NewMockRouteProvider()
	routes.SetRoute(node, helpers.RouteSpec{Length: 0, Cost: 2})

	profile, err := newSimulator(routes).Evaluate(context.Background(), node, staging, true)

	require.NoError(t, err)
	assert.Equal(t, 1, profile.RoadLength)
	assert.Equal(t, 1, profile.HaulerCount)
}

func TestEvaluate_UnreachableNodeIsTypedResult(t *testing.T) {
	node := shared.Position{X: 10, Y: 10, Zone: "W9N9"}
	routes := helpers.NewMockRouteProvider()

	var profile *economy.Profile
	var err error
	assert.NotPanics(t, func() {
		profile, err = newSimulator(routes).Evaluate(context.Background(), node, staging, true)
	})

	assert.Nil(t, profile)
	var unreachable *shared.UnreachableError
	require.True(t, errors.As(err, &unreachable))
	assert.Equal(t, node.Encode(), unreachable.NodeID)
}

func TestEvaluate_PassesRouteConstraints(t *testing.T) {
	node := shared.Position{X: 10, Y: 10, Zone: "W1N1"}
	routes := helpers.NewMockRouteProvider()
	routes.SetRoute(node, helpers.RouteSpec{Length: 20, Cost: 40, StableCost: 20})

	sim := newSimulator(routes)
	raw, err := sim.Evaluate(context.Background(), node, staging, true)
	require.NoError(t, err)
	stable, err := sim.Evaluate(context.Background(), node, staging, false)
	require.NoError(t, err)

	assert.Greater(t, stable.NetIncome, raw.NetIncome)

	calls := routes.Calls()
	require.Len(t, calls, 2)
	opts := calls[0].Options
	assert.True(t, opts.IgnoreExistingInfrastructure)
	assert.False(t, calls[1].Options.IgnoreExistingInfrastructure)
	assert.Equal(t, 1, opts.DestinationProximity)
	assert.True(t, opts.AllowedStatuses.Has(territory.StatusVacant))
	assert.True(t, opts.AllowedStatuses.Has(territory.StatusReservedMe))
	assert.True(t, opts.AllowedStatuses.Has(territory.StatusOwnedMe))
	assert.False(t, opts.AllowedStatuses.Has(territory.StatusReservedHostile))
	assert.False(t, opts.AllowedStatuses.Has(territory.StatusOwnedHostile))
}

func TestEvaluate_ProviderFailureIsEvaluationError(t *testing.T) {
	node := shared.Position{X: 10, Y: 10, Zone: "W1N1"}
	routes := helpers.NewMockRouteProvider()
	routes.SetError(errors.New("search budget exhausted"))

	_, err := newSimulator(routes).Evaluate(context.Background(), node, staging, true)

	var evalErr *shared.EvaluationError
	require.True(t, errors.As(err, &evalErr))
	assert.Contains(t, err.Error(), "search budget exhausted")
}

func TestEvaluate_InvalidZoneIsEvaluationError(t *testing.T) {
	routes := helpers.NewMockRouteProvider()

	_, err := newSimulator(routes).Evaluate(context.Background(), shared.Position{X: 1, Y: 1, Zone: "sim"}, staging, true)

	var evalErr *shared.EvaluationError
	assert.True(t, errors.As(err, &evalErr))
	assert.Empty(t, routes.Calls())
}

func TestEvaluateRoute_PricesStoredRoadWithoutProvider(t *testing.T) {
	// Arrange
	node := shared.Position{X: 10, Y: 10, Zone: "W1N1"}
	routes := helpers.NewMockRouteProvider()
	routes.SetRoute(node, helpers.RouteSpec{Length: 20, Cost: 40})
	sim := newSimulator(routes)
	fresh, err := sim.Evaluate(context.Background(), node, staging, false)
	require.NoError(t, err)
	routes.SetError(errors.New("provider must not be called"))

	// Act
	cached, err := sim.EvaluateRoute(node, staging, fresh.Route)

	// Assert
	require.NoError(t, err)
	assert.Len(t, routes.Calls(), 1)
	assert.Equal(t, fresh.NetIncome, cached.NetIncome)
	assert.Equal(t, fresh.RoadLength, cached.RoadLength)
	assert.Equal(t, fresh.MiningPosition, cached.MiningPosition)
	assert.Equal(t, fresh.Route.Positions, cached.Route.Positions)
}

func TestEvaluateRoute_RejectsForeignRoute(t *testing.T) {
	node := shared.Position{X: 10, Y: 10, Zone: "W1N1"}
	elsewhere := &routing.Route{
		Origin:      staging,
		Destination: shared.Position{X: 40, Y: 40, Zone: "W1N1"},
		Positions:   helpers.StraightPath(shared.Position{X: 41, Y: 40, Zone: "W1N1"}, 5)[:5],
		Cost:        10,
	}

	_, err := newSimulator(helpers.NewMockRouteProvider()).EvaluateRoute(node, staging, elsewhere)

	var evalErr *shared.EvaluationError
	assert.True(t, errors.As(err, &evalErr))

	_, err = newSimulator(helpers.NewMockRouteProvider()).EvaluateRoute(node, staging, nil)
	var unreachable *shared.UnreachableError
	assert.True(t, errors.As(err, &unreachable))
}

func TestConstants_Validate(t *testing.T) {
	assert.NoError(t, economy.DefaultConstants().Validate())

	broken := economy.DefaultConstants()
	broken.RegenerationPeriod = 0
	assert.Error(t, broken.Validate())
}
