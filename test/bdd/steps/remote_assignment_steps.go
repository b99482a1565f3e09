package steps

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/cucumber/godog"
	"github.com/cucumber/messages/go/v21"

	"github.com/andrescamacho/remoteminer-go/internal/adapters/persistence"
	"github.com/andrescamacho/remoteminer-go/internal/domain/economy"
	"github.com/andrescamacho/remoteminer-go/internal/domain/remote"
	"github.com/andrescamacho/remoteminer-go/internal/domain/shared"
	"github.com/andrescamacho/remoteminer-go/internal/domain/territory"
	"github.com/andrescamacho/remoteminer-go/test/helpers"
)

type remoteAssignmentContext struct {
	zones     *persistence.GormZoneRepository
	bases     *persistence.GormBaseRepository
	store     *persistence.GormAssignmentStore
	routes    *helpers.MockRouteProvider
	publisher *helpers.RecordingPublisher
	finder    *remote.CandidateFinder
	selector  *remote.Selector
	registry  *remote.Registry

	candidates []remote.Candidate
	best       *remote.RankedCandidate
	assignment *remote.Assignment
	err        error
}

func (ctx *remoteAssignmentContext) reset() error {
	if err := helpers.TruncateAllTables(); err != nil {
		return err
	}

	db := helpers.SharedTestDB
	ctx.zones = persistence.NewGormZoneRepository(db)
	ctx.bases = persistence.NewGormBaseRepository(db)
	ctx.store = persistence.NewGormAssignmentStore(db)
	ctx.routes = helpers.NewMockRouteProvider()
	ctx.publisher = helpers.NewRecordingPublisher()

	simulator := economy.NewSimulator(economy.DefaultConstants(), ctx.routes)
	ctx.finder = remote.NewCandidateFinder(ctx.zones, ctx.store, territory.NewTopology(0), remote.DefaultSearchDepth)
	ctx.selector = remote.NewSelector(ctx.store, simulator, remote.DefaultSelectionPolicy())
	ctx.registry = remote.NewRegistry(ctx.store, ctx.bases, ctx.zones, persistence.NewGormRouteRepository(db), simulator, ctx.publisher, shared.NewManualTickClock(0))

	ctx.candidates = nil
	ctx.best = nil
	ctx.assignment = nil
	ctx.err = nil
	return nil
}

// InitializeRemoteAssignmentScenario registers the registry, reachability and
// selection steps
func InitializeRemoteAssignmentScenario(sc *godog.ScenarioContext) {
	ra := &remoteAssignmentContext{}

	sc.Before(func(c context.Context, s *godog.Scenario) (context.Context, error) {
		return c, ra.reset()
	})

	sc.Step(`^a base "([^"]*)" of level (\d+) staging at "([^"]*)"$`, ra.aBaseOfLevelStagingAt)
	sc.Step(`^a ([A-Z_]+) zone "([^"]*)" with nodes "([^"]*)"$`, ra.aZoneWithNodes)
	sc.Step(`^zone "([^"]*)" is hostile$`, ra.zoneIsHostile)
	sc.Step(`^node "([^"]*)" is (\d+) steps from its base$`, ra.nodeIsStepsFromItsBase)
	sc.Step(`^node "([^"]*)" cannot be reached$`, ra.nodeCannotBeReached)
	sc.Step(`^the following road lengths:$`, ra.theFollowingRoadLengths)

	sc.Step(`^I search candidates for base "([^"]*)"$`, ra.iSearchCandidatesForBase)
	sc.Step(`^the candidates should be "([^"]*)"$`, ra.theCandidatesShouldBe)
	sc.Step(`^I select the best node for base "([^"]*)"$`, ra.iSelectTheBestNodeForBase)
	sc.Step(`^the best node should be "([^"]*)"$`, ra.theBestNodeShouldBe)

	sc.Step(`^base "([^"]*)" claims node "([^"]*)"$`, ra.baseClaimsNode)
	sc.Step(`^"([^"]*)" staffs node "([^"]*)" as harvester$`, ra.staffsNodeAsHarvester)
	sc.Step(`^node "([^"]*)" is released$`, ra.nodeIsReleased)
	sc.Step(`^the registry entry for "([^"]*)" is lost$`, ra.theRegistryEntryIsLost)

	sc.Step(`^the (?:claim|release) should succeed$`, ra.theOperationShouldSucceed)
	sc.Step(`^the claim should fail as unreachable$`, ra.theClaimShouldFailAsUnreachable)
	sc.Step(`^the claim should fail as not evaluable$`, ra.theClaimShouldFailAsNotEvaluable)
	sc.Step(`^the claim should fail as inconsistent$`, ra.theClaimShouldFailAsInconsistent)
	sc.Step(`^node "([^"]*)" should be owned by "([^"]*)"$`, ra.nodeShouldBeOwnedBy)
	sc.Step(`^node "([^"]*)" should be unassigned$`, ra.nodeShouldBeUnassigned)
	sc.Step(`^base "([^"]*)" should hold (\d+) assignments?$`, ra.baseShouldHoldAssignments)
	sc.Step(`^(\d+) routes? should be cached$`, ra.routesShouldBeCached)
	sc.Step(`^the registry should be consistent$`, ra.theRegistryShouldBeConsistent)
	sc.Step(`^the registry should report (\d+) inconsistenc(?:y|ies)$`, ra.theRegistryShouldReportInconsistencies)
	sc.Step(`^a disposal of "([^"]*)" should be requested with reason "([^"]*)"$`, ra.aDisposalShouldBeRequested)
	sc.Step(`^no disposal should be requested$`, ra.noDisposalShouldBeRequested)
}

// Givens

func (ctx *remoteAssignmentContext) aBaseOfLevelStagingAt(name string, level int, staging string) error {
	pos, err := shared.ParsePosition(staging)
	if err != nil {
		return err
	}

	existing, err := ctx.zones.FindByName(context.Background(), name)
	if err != nil {
		return err
	}
	if existing == nil {
		zone, err := territory.NewZone(name, territory.StatusOwnedMe, nil)
		if err != nil {
			return err
		}
		if err := ctx.zones.Save(context.Background(), zone); err != nil {
			return err
		}
	}

	base, err := remote.NewBase(name, pos, level)
	if err != nil {
		return err
	}
	return ctx.bases.Save(context.Background(), base)
}

func (ctx *remoteAssignmentContext) aZoneWithNodes(status, name, nodes string) error {
	var positions []shared.Position
	for _, id := range splitList(nodes) {
		pos, err := shared.NodeID(id).Position()
		if err != nil {
			return err
		}
		positions = append(positions, pos)
	}

	zone, err := territory.NewZone(name, territory.Status(status), positions)
	if err != nil {
		return err
	}
	return ctx.zones.Save(context.Background(), zone)
}

func (ctx *remoteAssignmentContext) zoneIsHostile(name string) error {
	zone, err := ctx.zones.FindByName(context.Background(), name)
	if err != nil {
		return err
	}
	if zone == nil {
		return fmt.Errorf("zone %s not found", name)
	}
	zone.Hostile = true
	return ctx.zones.Save(context.Background(), zone)
}

func (ctx *remoteAssignmentContext) nodeIsStepsFromItsBase(node string, steps int) error {
	pos, err := shared.NodeID(node).Position()
	if err != nil {
		return err
	}
	ctx.routes.SetRoute(pos, helpers.RouteSpec{Length: steps, Cost: float64(2 * steps)})
	return nil
}

func (ctx *remoteAssignmentContext) theFollowingRoadLengths(table *godog.Table) error {
	for _, row := range table.Rows[1:] {
		var steps int
		if _, err := fmt.Sscanf(cellValue(table, row, "steps"), "%d", &steps); err != nil {
			return fmt.Errorf("bad steps for %s: %w", cellValue(table, row, "node"), err)
		}
		if err := ctx.nodeIsStepsFromItsBase(cellValue(table, row, "node"), steps); err != nil {
			return err
		}
	}
	return nil
}

func (ctx *remoteAssignmentContext) nodeCannotBeReached(node string) error {
	pos, err := shared.NodeID(node).Position()
	if err != nil {
		return err
	}
	ctx.routes.RemoveRoute(pos)
	return nil
}

// Whens

func (ctx *remoteAssignmentContext) loadBase(name string) (*remote.Base, error) {
	base, err := ctx.bases.FindByName(context.Background(), name)
	if err != nil {
		return nil, err
	}
	if base == nil {
		return nil, fmt.Errorf("base %s not found", name)
	}
	return base, nil
}

func (ctx *remoteAssignmentContext) iSearchCandidatesForBase(name string) error {
	base, err := ctx.loadBase(name)
	if err != nil {
		return err
	}
	ctx.candidates, err = ctx.finder.FindCandidates(context.Background(), base)
	return err
}

func (ctx *remoteAssignmentContext) iSelectTheBestNodeForBase(name string) error {
	base, err := ctx.loadBase(name)
	if err != nil {
		return err
	}
	candidates, err := ctx.finder.FindCandidates(context.Background(), base)
	if err != nil {
		return err
	}
	ctx.best, err = ctx.selector.SelectBest(context.Background(), base, candidates, false)
	return err
}

func (ctx *remoteAssignmentContext) baseClaimsNode(base, node string) error {
	ctx.assignment, ctx.err = ctx.registry.Claim(context.Background(), shared.NodeID(node), base)
	return nil
}

func (ctx *remoteAssignmentContext) staffsNodeAsHarvester(worker, node string) error {
	_, err := ctx.registry.AssignWorker(context.Background(), shared.NodeID(node), remote.RoleHarvester, 0, worker)
	return err
}

func (ctx *remoteAssignmentContext) nodeIsReleased(node string) error {
	ctx.err = ctx.registry.Release(context.Background(), shared.NodeID(node))
	return nil
}

func (ctx *remoteAssignmentContext) theRegistryEntryIsLost(node string) error {
	return helpers.SharedTestDB.
		Where("node_id = ?", node).
		Delete(&persistence.RemoteAssignmentModel{}).Error
}

// Thens

func (ctx *remoteAssignmentContext) theCandidatesShouldBe(expected string) error {
	got := make([]string, 0, len(ctx.candidates))
	for _, c := range ctx.candidates {
		got = append(got, c.NodeID.String())
	}
	want := splitList(expected)
	sort.Strings(got)
	sort.Strings(want)

	if strings.Join(got, ",") != strings.Join(want, ",") {
		return fmt.Errorf("expected candidates %v, got %v", want, got)
	}
	return nil
}

func (ctx *remoteAssignmentContext) theBestNodeShouldBe(node string) error {
	if ctx.best == nil {
		return fmt.Errorf("expected %s to be selected, nothing was", node)
	}
	if ctx.best.NodeID.String() != node {
		return fmt.Errorf("expected %s to be selected, got %s", node, ctx.best.NodeID)
	}
	return nil
}

func (ctx *remoteAssignmentContext) theOperationShouldSucceed() error {
	if ctx.err != nil {
		return fmt.Errorf("expected success, got %w", ctx.err)
	}
	return nil
}

func (ctx *remoteAssignmentContext) theClaimShouldFailAsUnreachable() error {
	var unreachable *shared.UnreachableError
	if !errors.As(ctx.err, &unreachable) {
		return fmt.Errorf("expected an unreachable error, got %v", ctx.err)
	}
	return nil
}

func (ctx *remoteAssignmentContext) theClaimShouldFailAsNotEvaluable() error {
	var evalErr *shared.EvaluationError
	if !errors.As(ctx.err, &evalErr) {
		return fmt.Errorf("expected an evaluation error, got %v", ctx.err)
	}
	return nil
}

func (ctx *remoteAssignmentContext) theClaimShouldFailAsInconsistent() error {
	var inconsistent *shared.InconsistentRegistryError
	if !errors.As(ctx.err, &inconsistent) {
		return fmt.Errorf("expected an inconsistent registry error, got %v", ctx.err)
	}
	return nil
}

func (ctx *remoteAssignmentContext) nodeShouldBeOwnedBy(node, base string) error {
	owner, err := ctx.registry.OwnerOf(context.Background(), shared.NodeID(node))
	if err != nil {
		return err
	}
	if owner != base {
		return fmt.Errorf("expected %s to be owned by %s, got %q", node, base, owner)
	}
	return nil
}

func (ctx *remoteAssignmentContext) nodeShouldBeUnassigned(node string) error {
	return ctx.nodeShouldBeOwnedBy(node, "")
}

func (ctx *remoteAssignmentContext) baseShouldHoldAssignments(base string, count int) error {
	records, err := ctx.store.ListByBase(context.Background(), base)
	if err != nil {
		return err
	}
	if len(records) != count {
		return fmt.Errorf("expected %s to hold %d assignments, got %d", base, count, len(records))
	}
	return nil
}

func (ctx *remoteAssignmentContext) routesShouldBeCached(count int) error {
	var stored int64
	if err := helpers.SharedTestDB.Model(&persistence.RouteModel{}).Count(&stored).Error; err != nil {
		return err
	}
	if int(stored) != count {
		return fmt.Errorf("expected %d cached routes, got %d", count, stored)
	}
	return nil
}

func (ctx *remoteAssignmentContext) theRegistryShouldBeConsistent() error {
	return ctx.registry.VerifyConsistency(context.Background())
}

func (ctx *remoteAssignmentContext) theRegistryShouldReportInconsistencies(count int) error {
	err := ctx.registry.VerifyConsistency(context.Background())
	if err == nil {
		if count == 0 {
			return nil
		}
		return fmt.Errorf("expected %d inconsistencies, registry is consistent", count)
	}

	problems := []error{err}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		problems = joined.Unwrap()
	}
	for _, p := range problems {
		var inconsistent *shared.InconsistentRegistryError
		if !errors.As(p, &inconsistent) {
			return fmt.Errorf("unexpected audit failure: %w", p)
		}
	}
	if len(problems) != count {
		return fmt.Errorf("expected %d inconsistencies, got %d: %v", count, len(problems), err)
	}
	return nil
}

func (ctx *remoteAssignmentContext) aDisposalShouldBeRequested(worker, reason string) error {
	for _, e := range ctx.publisher.Events() {
		if e.Worker == worker && e.Reason == reason {
			return nil
		}
	}
	return fmt.Errorf("no disposal of %s with reason %s among %v", worker, reason, ctx.publisher.Events())
}

func (ctx *remoteAssignmentContext) noDisposalShouldBeRequested() error {
	if events := ctx.publisher.Events(); len(events) > 0 {
		return fmt.Errorf("expected no disposal, got %v", events)
	}
	return nil
}

// cellValue reads a column of a data table row by header name
func cellValue(table *godog.Table, row *messages.PickleTableRow, column string) string {
	if len(table.Rows) == 0 {
		return ""
	}
	for i, header := range table.Rows[0].Cells {
		if header.Value == column && i < len(row.Cells) {
			return row.Cells[i].Value
		}
	}
	return ""
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
