package setup

import (
	"reflect"

	"github.com/andrescamacho/remoteminer-go/internal/application/mediator"
	"github.com/andrescamacho/remoteminer-go/internal/application/remote/commands"
	"github.com/andrescamacho/remoteminer-go/internal/application/remote/queries"
	"github.com/andrescamacho/remoteminer-go/internal/domain/remote"
	"github.com/andrescamacho/remoteminer-go/internal/domain/shared"
	"github.com/andrescamacho/remoteminer-go/internal/domain/territory"
)

// HandlerRegistry holds all application dependencies for handler creation
type HandlerRegistry struct {
	zones     territory.ZoneRepository
	bases     remote.BaseRepository
	store     remote.AssignmentStore
	evaluator remote.Evaluator
	finder    *remote.CandidateFinder
	selector  *remote.Selector
	registry  *remote.Registry
	clock     *shared.ManualTickClock
	planner   commands.PlannerSettings
}

// NewHandlerRegistry creates a new handler registry with required dependencies
func NewHandlerRegistry(
	zones territory.ZoneRepository,
	bases remote.BaseRepository,
	store remote.AssignmentStore,
	evaluator remote.Evaluator,
	finder *remote.CandidateFinder,
	selector *remote.Selector,
	registry *remote.Registry,
	clock *shared.ManualTickClock,
	planner commands.PlannerSettings,
) *HandlerRegistry {
	// Default to a manual clock at tick 0 if not provided
	if clock == nil {
		clock = shared.NewManualTickClock(0)
	}

	return &HandlerRegistry{
		zones:     zones,
		bases:     bases,
		store:     store,
		evaluator: evaluator,
		finder:    finder,
		selector:  selector,
		registry:  registry,
		clock:     clock,
		planner:   planner,
	}
}

// RegisterRemoteHandlers registers the assignment engine's commands with the mediator
//
// This method registers:
//   - ClaimRemoteSourceCommand / ReleaseRemoteSourceCommand → registry mutations
//   - AssignBestRemoteCommand → find, rank and claim with fall-through
//   - UpdateReservationCommand → zone reservation health
//   - UpdateThreatCommand → zone threat level
//   - AssignWorkerCommand / VacateWorkerCommand / MarkOperationalCommand → roster
//   - RunPlannerCommand → periodic reevaluation and auto assignment
func (r *HandlerRegistry) RegisterRemoteHandlers(m mediator.Mediator) error {
	staff := commands.NewStaffRemoteSourceHandler(r.registry)

	handlers := []struct {
		request interface{}
		handler mediator.RequestHandler
	}{
		{&commands.ClaimRemoteSourceCommand{}, commands.NewClaimRemoteSourceHandler(r.registry)},
		{&commands.ReleaseRemoteSourceCommand{}, commands.NewReleaseRemoteSourceHandler(r.registry)},
		{&commands.AssignBestRemoteCommand{}, commands.NewAssignBestRemoteHandler(r.bases, r.finder, r.selector, r.registry)},
		{&commands.UpdateReservationCommand{}, commands.NewUpdateReservationHandler(r.registry)},
		{&commands.UpdateThreatCommand{}, commands.NewUpdateThreatHandler(r.registry)},
		{&commands.AssignWorkerCommand{}, staff},
		{&commands.VacateWorkerCommand{}, staff},
		{&commands.MarkOperationalCommand{}, staff},
		{&commands.RunPlannerCommand{}, commands.NewRunPlannerHandler(m, r.bases, r.store, r.clock, r.planner)},
	}

	for _, h := range handlers {
		if err := m.Register(reflect.TypeOf(h.request), h.handler); err != nil {
			return err
		}
	}
	return nil
}

// RegisterRemoteQueryHandlers registers the read side of the assignment engine
//
// This method registers:
//   - EvaluateRemoteSourceQuery → economic profile of one node
//   - FindRemoteCandidatesQuery → reachability search
//   - SelectBestRemoteQuery → ranked candidates, nothing claimed
//   - ReevaluateRemoteSourcesQuery → fresh profiles of existing assignments
//   - ListRemoteAssignmentsQuery → assignment records with zone metadata
//   - CheckConsistencyQuery → registry audit
func (r *HandlerRegistry) RegisterRemoteQueryHandlers(m mediator.Mediator) error {
	handlers := []struct {
		request interface{}
		handler mediator.RequestHandler
	}{
		{&queries.EvaluateRemoteSourceQuery{}, queries.NewEvaluateRemoteSourceHandler(r.zones, r.bases, r.evaluator)},
		{&queries.FindRemoteCandidatesQuery{}, queries.NewFindRemoteCandidatesHandler(r.bases, r.finder)},
		{&queries.SelectBestRemoteQuery{}, queries.NewSelectBestRemoteHandler(r.bases, r.finder, r.selector)},
		{&queries.ReevaluateRemoteSourcesQuery{}, queries.NewReevaluateRemoteSourcesHandler(r.registry, r.store)},
		{&queries.ListRemoteAssignmentsQuery{}, queries.NewListRemoteAssignmentsHandler(r.store)},
		{&queries.CheckConsistencyQuery{}, queries.NewCheckConsistencyHandler(r.registry)},
	}

	for _, h := range handlers {
		if err := m.Register(reflect.TypeOf(h.request), h.handler); err != nil {
			return err
		}
	}
	return nil
}

// RegisterAll registers every command and query handler
func (r *HandlerRegistry) RegisterAll(m mediator.Mediator) error {
	if err := r.RegisterRemoteHandlers(m); err != nil {
		return err
	}
	return r.RegisterRemoteQueryHandlers(m)
}
