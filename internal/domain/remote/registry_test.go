package remote_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/remoteminer-go/internal/domain/economy"
	"github.com/andrescamacho/remoteminer-go/internal/domain/remote"
	"github.com/andrescamacho/remoteminer-go/internal/domain/shared"
	"github.com/andrescamacho/remoteminer-go/internal/domain/territory"
	"github.com/andrescamacho/remoteminer-go/test/helpers"
)

var (
	standardNode = shared.Position{X: 10, Y: 10, Zone: "W1N1"}
	siblingNode  = shared.Position{X: 40, Y: 8, Zone: "W1N1"}
	guardedNode  = shared.Position{X: 30, Y: 12, Zone: "W4N4"}
)

type registryFixture struct {
	registry  *remote.Registry
	store     *helpers.MockAssignmentStore
	bases     *helpers.MockBaseRepository
	zones     *helpers.MockZoneRepository
	routes    *helpers.MockRouteProvider
	publisher *helpers.RecordingPublisher
	clock     *shared.ManualTickClock
}

func newTestStore() *helpers.MockAssignmentStore {
	return helpers.NewMockAssignmentStore()
}

func newRegistryFixture() *registryFixture {
	f := &registryFixture{
		store:     newTestStore(),
		bases:     helpers.NewMockBaseRepository(),
		zones:     helpers.NewMockZoneRepository(),
		routes:    helpers.NewMockRouteProvider(),
		publisher: helpers.NewRecordingPublisher(),
		clock:     shared.NewManualTickClock(1200),
	}
	f.bases.AddBase("W2N1", 5)
	f.bases.AddBase("W1N2", 5)
	f.bases.AddBase("W4N3", 8)

	f.zones.AddZone("W1N1", territory.StatusVacant, standardNode, siblingNode)
	f.zones.AddZone("W4N4", territory.StatusVacant, guardedNode)

	f.routes.SetRoute(standardNode, helpers.RouteSpec{Length: 20, Cost: 40})
	f.routes.SetRoute(siblingNode, helpers.RouteSpec{Length: 30, Cost: 60})
	f.routes.SetRoute(guardedNode, helpers.RouteSpec{Length: 25, Cost: 70})

	simulator := economy.NewSimulator(economy.DefaultConstants(), f.routes)
	f.registry = remote.NewRegistry(f.store, f.bases, f.zones, f.store, simulator, f.publisher, f.clock)
	return f
}

func TestClaim_WritesGlobalEntryRecordRouteAndMetadata(t *testing.T) {
	// Arrange
	f := newRegistryFixture()
	ctx := context.Background()
	nodeID := shared.NodeIDFor(standardNode)

	// Act
	assignment, err := f.registry.Claim(ctx, nodeID, "W2N1")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, nodeID, assignment.NodeID())
	assert.Equal(t, "W2N1", assignment.Base())
	assert.Equal(t, remote.Unassigned, assignment.Harvester())
	assert.Equal(t, []string{remote.Unassigned}, assignment.Haulers())
	assert.Equal(t, remote.SetupBuildingContainer, assignment.SetupStatus())
	assert.Equal(t, shared.Position{X: 9, Y: 10, Zone: "W1N1"}, assignment.MiningPosition())
	assert.Equal(t, 1200, assignment.AssignedAt())

	owner, _ := f.store.OwnerOf(ctx, nodeID)
	assert.Equal(t, "W2N1", owner)
	record, _ := f.store.FindAssignment(ctx, "W2N1", nodeID)
	require.NotNil(t, record)
	assert.Len(t, f.store.Routes(), 1)

	md, _ := f.store.FindZoneMetadata(ctx, "W1N1")
	require.NotNil(t, md)
	assert.Equal(t, remote.ThreatSafe, md.ThreatLevel)
	require.NotNil(t, md.ReservationState)
	assert.Equal(t, remote.ReservationLow, *md.ReservationState)
	require.NotNil(t, md.Reserver)
	assert.Equal(t, remote.Unassigned, *md.Reserver)
	assert.Nil(t, md.KeeperExterminator)
	assert.Nil(t, md.MineralMiner)

	calls := f.routes.Calls()
	require.Len(t, calls, 1)
	assert.False(t, calls[0].Options.IgnoreExistingInfrastructure, "claims use the stable route estimate")
}

func TestClaim_GuardedZoneMetadata(t *testing.T) {
	f := newRegistryFixture()
	ctx := context.Background()

	_, err := f.registry.Claim(ctx, shared.NodeIDFor(guardedNode), "W4N3")

	require.NoError(t, err)
	md, _ := f.store.FindZoneMetadata(ctx, "W4N4")
	require.NotNil(t, md)
	assert.Nil(t, md.ReservationState)
	assert.Nil(t, md.Reserver)
	require.NotNil(t, md.KeeperExterminator)
	require.NotNil(t, md.MineralMiner)
	require.NotNil(t, md.MineralAvailableAt)
	assert.Equal(t, 1200, *md.MineralAvailableAt)
}

func TestClaim_ExistingMetadataIsKept(t *testing.T) {
	f := newRegistryFixture()
	ctx := context.Background()
	_, err := f.registry.Claim(ctx, shared.NodeIDFor(standardNode), "W2N1")
	require.NoError(t, err)

	md, _ := f.store.FindZoneMetadata(ctx, "W1N1")
	md.SetThreat(remote.ThreatInvaderCore)
	require.NoError(t, f.store.SaveZoneMetadata(ctx, md))

	_, err = f.registry.Claim(ctx, shared.NodeIDFor(siblingNode), "W2N1")
	require.NoError(t, err)

	md, _ = f.store.FindZoneMetadata(ctx, "W1N1")
	assert.Equal(t, remote.ThreatInvaderCore, md.ThreatLevel)
}

func TestClaim_TwiceBySameBaseIsNoop(t *testing.T) {
	f := newRegistryFixture()
	ctx := context.Background()
	nodeID := shared.NodeIDFor(standardNode)

	first, err := f.registry.Claim(ctx, nodeID, "W2N1")
	require.NoError(t, err)
	second, err := f.registry.Claim(ctx, nodeID, "W2N1")
	require.NoError(t, err)

	assert.Equal(t, first.Data(), second.Data())
	assert.Equal(t, 1, f.store.Commits())
	all, _ := f.store.ListAll(ctx)
	assert.Len(t, all, 1)
}

func TestClaim_ReassignsFromAnotherBase(t *testing.T) {
	f := newRegistryFixture()
	ctx := context.Background()
	nodeID := shared.NodeIDFor(standardNode)

	_, err := f.registry.Claim(ctx, nodeID, "W2N1")
	require.NoError(t, err)
	_, err = f.registry.AssignWorker(ctx, nodeID, remote.RoleHarvester, 0, "harvester-7")
	require.NoError(t, err)

	assignment, err := f.registry.Claim(ctx, nodeID, "W1N2")

	require.NoError(t, err)
	assert.Equal(t, "W1N2", assignment.Base())
	owner, _ := f.store.OwnerOf(ctx, nodeID)
	assert.Equal(t, "W1N2", owner)
	old, _ := f.store.FindAssignment(ctx, "W2N1", nodeID)
	assert.Nil(t, old)

	events := f.publisher.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "harvester-7", events[0].Worker)
	assert.Equal(t, "W2N1", events[0].Base)
	assert.Equal(t, remote.ReasonReassigned, events[0].Reason)
	assert.NotEmpty(t, events[0].EventID)
	require.NoError(t, f.registry.VerifyConsistency(ctx))
}

func TestClaim_UnreachableWritesNothing(t *testing.T) {
	f := newRegistryFixture()
	ctx := context.Background()
	nowhere := shared.Position{X: 10, Y: 10, Zone: "W9N9"}
	f.zones.AddZone("W9N9", territory.StatusVacant, nowhere)

	_, err := f.registry.Claim(ctx, shared.NodeIDFor(nowhere), "W2N1")

	var unreachable *shared.UnreachableError
	require.ErrorAs(t, err, &unreachable)
	assert.Equal(t, 0, f.store.Commits())
	owners, _ := f.store.Owners(ctx)
	assert.Empty(t, owners)
	md, _ := f.store.FindZoneMetadata(ctx, "W9N9")
	assert.Nil(t, md)
}

func TestClaim_UnknownBaseAndMalformedNode(t *testing.T) {
	f := newRegistryFixture()
	ctx := context.Background()

	_, err := f.registry.Claim(ctx, shared.NodeIDFor(standardNode), "E9S9")
	var evalErr *shared.EvaluationError
	assert.ErrorAs(t, err, &evalErr)

	_, err = f.registry.Claim(ctx, shared.NodeID("not-a-node"), "W2N1")
	assert.ErrorAs(t, err, &evalErr)
}

func TestClaim_RequiresAKnownResourceNode(t *testing.T) {
	tests := []struct {
		name string
		node shared.Position
	}{
		{name: "walkable tile that is not a node", node: shared.Position{X: 20, Y: 20, Zone: "W1N1"}},
		{name: "zone never observed", node: shared.Position{X: 10, Y: 10, Zone: "W6N6"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newRegistryFixture()
			ctx := context.Background()
			f.routes.SetRoute(tt.node, helpers.RouteSpec{Length: 10, Cost: 20})

			assignment, err := f.registry.Claim(ctx, shared.NodeIDFor(tt.node), "W2N1")

			assert.Nil(t, assignment)
			var evalErr *shared.EvaluationError
			require.ErrorAs(t, err, &evalErr)
			assert.Equal(t, shared.NodeIDFor(tt.node).String(), evalErr.NodeID)
			assert.Equal(t, 0, f.store.Commits())
			assert.Empty(t, f.routes.Calls(), "no route is computed for a missing node")
		})
	}
}

func TestClaim_CommitFailureLeavesStateUntouched(t *testing.T) {
	f := newRegistryFixture()
	ctx := context.Background()
	nodeID := shared.NodeIDFor(standardNode)
	_, err := f.registry.Claim(ctx, nodeID, "W2N1")
	require.NoError(t, err)
	_, err = f.registry.AssignWorker(ctx, nodeID, remote.RoleHarvester, 0, "harvester-1")
	require.NoError(t, err)

	f.store.FailCommits(true)
	_, err = f.registry.Claim(ctx, nodeID, "W1N2")

	var persistErr *shared.PersistenceError
	require.ErrorAs(t, err, &persistErr)
	owner, _ := f.store.OwnerOf(ctx, nodeID)
	assert.Equal(t, "W2N1", owner)
	assert.Empty(t, f.publisher.Events(), "no disposal before a successful commit")
	require.NoError(t, f.registry.VerifyConsistency(ctx))
}

func TestClaim_RecordWithoutGlobalEntryIsInconsistent(t *testing.T) {
	f := newRegistryFixture()
	ctx := context.Background()
	orphan := existingAssignment("W2N1", standardNode.X, standardNode.Y, standardNode.Zone)
	f.store.PutRecordOnly(orphan)

	_, err := f.registry.Claim(ctx, orphan.NodeID(), "W2N1")

	var inconsistent *shared.InconsistentRegistryError
	assert.ErrorAs(t, err, &inconsistent)
}

func TestClaim_RecordUnderAnotherBaseWithoutGlobalEntryIsInconsistent(t *testing.T) {
	f := newRegistryFixture()
	ctx := context.Background()
	orphan := existingAssignment("W1N2", standardNode.X, standardNode.Y, standardNode.Zone)
	f.store.PutRecordOnly(orphan)

	_, err := f.registry.Claim(ctx, orphan.NodeID(), "W2N1")

	var inconsistent *shared.InconsistentRegistryError
	require.ErrorAs(t, err, &inconsistent)
	assert.Equal(t, "W1N2", inconsistent.Base)
	assert.Equal(t, 0, f.store.Commits())
	owner, _ := f.store.OwnerOf(ctx, orphan.NodeID())
	assert.Empty(t, owner)
}

func TestRelease_RemovesBothRecordsAndDisposesHarvester(t *testing.T) {
	f := newRegistryFixture()
	ctx := context.Background()
	nodeID := shared.NodeIDFor(standardNode)
	_, err := f.registry.Claim(ctx, nodeID, "W2N1")
	require.NoError(t, err)
	_, err = f.registry.AssignWorker(ctx, nodeID, remote.RoleHarvester, 0, "harvester-3")
	require.NoError(t, err)

	require.NoError(t, f.registry.Release(ctx, nodeID))

	owner, _ := f.store.OwnerOf(ctx, nodeID)
	assert.Empty(t, owner)
	record, _ := f.store.FindAssignment(ctx, "W2N1", nodeID)
	assert.Nil(t, record)
	md, _ := f.store.FindZoneMetadata(ctx, "W1N1")
	assert.NotNil(t, md, "zone metadata survives release")

	events := f.publisher.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "harvester-3", events[0].Worker)
	assert.Equal(t, remote.ReasonReleased, events[0].Reason)
	assert.Equal(t, 1200, events[0].Tick)
}

func TestRelease_TwiceIsIdempotent(t *testing.T) {
	f := newRegistryFixture()
	ctx := context.Background()
	nodeID := shared.NodeIDFor(standardNode)
	_, err := f.registry.Claim(ctx, nodeID, "W2N1")
	require.NoError(t, err)

	require.NoError(t, f.registry.Release(ctx, nodeID))
	require.NoError(t, f.registry.Release(ctx, nodeID))

	assert.Equal(t, 2, f.store.Commits())
	assert.Empty(t, f.publisher.Events(), "no harvester was staffed")
}

func TestRelease_GlobalEntryWithoutRecordIsInconsistent(t *testing.T) {
	f := newRegistryFixture()
	nodeID := shared.NodeIDFor(standardNode)
	f.store.PutOwnerOnly(nodeID, "W2N1")

	err := f.registry.Release(context.Background(), nodeID)

	var inconsistent *shared.InconsistentRegistryError
	assert.ErrorAs(t, err, &inconsistent)
}

func TestVerifyConsistency_ReportsEveryDivergence(t *testing.T) {
	f := newRegistryFixture()
	ctx := context.Background()
	_, err := f.registry.Claim(ctx, shared.NodeIDFor(standardNode), "W2N1")
	require.NoError(t, err)
	require.NoError(t, f.registry.VerifyConsistency(ctx))

	f.store.PutOwnerOnly(shared.NodeID("1.1.W3N1"), "W2N1")
	f.store.PutRecordOnly(existingAssignment("W1N2", 2, 2, "W1N3"))

	err = f.registry.VerifyConsistency(ctx)

	var inconsistent *shared.InconsistentRegistryError
	require.ErrorAs(t, err, &inconsistent)
	assert.Contains(t, err.Error(), "1.1.W3N1")
	assert.Contains(t, err.Error(), "2.2.W1N3")
}

func TestReevaluate_ReportsDeltas(t *testing.T) {
	f := newRegistryFixture()
	ctx := context.Background()
	nodeID := shared.NodeIDFor(standardNode)
	original, err := f.registry.Claim(ctx, nodeID, "W2N1")
	require.NoError(t, err)

	f.routes.SetRoute(standardNode, helpers.RouteSpec{Length: 100, Cost: 200})
	result, err := f.registry.Recompute(ctx, nodeID)

	require.NoError(t, err)
	assert.False(t, result.FromCache)
	assert.Equal(t, 2, result.Profile.HaulerCount)
	assert.Equal(t, 1, result.HaulerDelta)
	assert.Less(t, result.NetIncomeDelta, 0.0)
	assert.InDelta(t, result.Profile.NetIncome-original.NetIncome(), result.NetIncomeDelta, 1e-9)
	assert.False(t, result.MiningPositionChanged)

	record, _ := f.store.FindAssignment(ctx, "W2N1", nodeID)
	assert.Equal(t, original.Data(), record.Data(), "reevaluation does not modify the registry")
}

func TestReevaluate_PricesStoredRouteWithoutProvider(t *testing.T) {
	// Arrange
	f := newRegistryFixture()
	ctx := context.Background()
	nodeID := shared.NodeIDFor(standardNode)
	original, err := f.registry.Claim(ctx, nodeID, "W2N1")
	require.NoError(t, err)
	f.routes.SetError(errors.New("route provider offline"))

	// Act
	result, err := f.registry.Reevaluate(ctx, nodeID)

	// Assert
	require.NoError(t, err)
	assert.True(t, result.FromCache)
	assert.Len(t, f.routes.Calls(), 1, "only the claim consulted the provider")
	assert.InDelta(t, 0.0, result.NetIncomeDelta, 1e-9)
	assert.Equal(t, 0, result.HaulerDelta)
	assert.Equal(t, original.MiningPosition(), result.Profile.MiningPosition)
}

func TestReevaluate_CacheMissFallsBackToProvider(t *testing.T) {
	f := newRegistryFixture()
	ctx := context.Background()
	nodeID := shared.NodeIDFor(standardNode)
	_, err := f.registry.Claim(ctx, nodeID, "W2N1")
	require.NoError(t, err)
	f.store.DropRoutes()

	result, err := f.registry.Reevaluate(ctx, nodeID)

	require.NoError(t, err)
	assert.False(t, result.FromCache)
	calls := f.routes.Calls()
	require.Len(t, calls, 2)
	assert.False(t, calls[1].Options.IgnoreExistingInfrastructure)
}

func TestReevaluate_UnassignedNode(t *testing.T) {
	f := newRegistryFixture()

	_, err := f.registry.Reevaluate(context.Background(), shared.NodeIDFor(standardNode))

	var validation *shared.ValidationError
	assert.ErrorAs(t, err, &validation)
}

func TestRoster_AssignVacateAndMarkOperational(t *testing.T) {
	f := newRegistryFixture()
	ctx := context.Background()
	nodeID := shared.NodeIDFor(standardNode)
	_, err := f.registry.Claim(ctx, nodeID, "W2N1")
	require.NoError(t, err)

	_, err = f.registry.AssignWorker(ctx, nodeID, remote.RoleHauler, 0, "hauler-1")
	require.NoError(t, err)
	_, err = f.registry.AssignWorker(ctx, nodeID, remote.RoleHauler, 3, "hauler-2")
	var validation *shared.ValidationError
	assert.ErrorAs(t, err, &validation)

	a, err := f.registry.MarkOperational(ctx, nodeID)
	require.NoError(t, err)
	assert.Equal(t, remote.SetupOperational, a.SetupStatus())
	_, err = f.registry.MarkOperational(ctx, nodeID)
	assert.Error(t, err)

	a, err = f.registry.VacateWorker(ctx, nodeID, "hauler-1")
	require.NoError(t, err)
	assert.Equal(t, []string{remote.Unassigned}, a.Haulers())

	record, _ := f.store.FindAssignment(ctx, "W2N1", nodeID)
	assert.Equal(t, remote.SetupOperational, record.SetupStatus())
	assert.Equal(t, []string{remote.Unassigned}, record.Haulers())
}

func TestObserveReservation_UpdatesMetadata(t *testing.T) {
	f := newRegistryFixture()
	ctx := context.Background()
	_, err := f.registry.Claim(ctx, shared.NodeIDFor(standardNode), "W2N1")
	require.NoError(t, err)

	md, changed, err := f.registry.ObserveReservation(ctx, "W1N1", 4800)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, remote.ReservationStable, *md.ReservationState)

	_, changed, err = f.registry.ObserveReservation(ctx, "W1N1", 3000)
	require.NoError(t, err)
	assert.False(t, changed, "between thresholds the status holds")

	stored, _ := f.store.FindZoneMetadata(ctx, "W1N1")
	assert.Equal(t, remote.ReservationStable, *stored.ReservationState)

	_, _, err = f.registry.ObserveReservation(ctx, "W7N7", 100)
	assert.Error(t, err)
}

func TestObserveReservation_IgnoresZonesWithoutReserver(t *testing.T) {
	f := newRegistryFixture()
	ctx := context.Background()
	_, err := f.registry.Claim(ctx, shared.NodeIDFor(guardedNode), "W4N3")
	require.NoError(t, err)

	md, changed, err := f.registry.ObserveReservation(ctx, "W4N4", 300)

	require.NoError(t, err)
	assert.False(t, changed)
	assert.Nil(t, md.ReservationState)
	stored, _ := f.store.FindZoneMetadata(ctx, "W4N4")
	assert.Nil(t, stored.ReservationState, "guarded zones are never reserved")
}

func TestObserveThreat_UpdatesMetadata(t *testing.T) {
	f := newRegistryFixture()
	ctx := context.Background()
	_, err := f.registry.Claim(ctx, shared.NodeIDFor(standardNode), "W2N1")
	require.NoError(t, err)

	md, changed, err := f.registry.ObserveThreat(ctx, "W1N1", remote.ThreatEnemyAttackCreeps)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, remote.ThreatEnemyAttackCreeps, md.ThreatLevel)

	_, changed, err = f.registry.ObserveThreat(ctx, "W1N1", remote.ThreatEnemyAttackCreeps)
	require.NoError(t, err)
	assert.False(t, changed)

	stored, _ := f.store.FindZoneMetadata(ctx, "W1N1")
	assert.Equal(t, remote.ThreatEnemyAttackCreeps, stored.ThreatLevel)

	var validation *shared.ValidationError
	_, _, err = f.registry.ObserveThreat(ctx, "W1N1", remote.ThreatLevel("DRAGONS"))
	assert.ErrorAs(t, err, &validation)
	_, _, err = f.registry.ObserveThreat(ctx, "W7N7", remote.ThreatSafe)
	assert.ErrorAs(t, err, &validation)
}
