package helpers

import (
	"context"

	"github.com/andrescamacho/remoteminer-go/internal/application/common"
	"github.com/andrescamacho/remoteminer-go/internal/application/mediator"
	"github.com/andrescamacho/remoteminer-go/internal/application/remote/commands"
	"github.com/andrescamacho/remoteminer-go/internal/application/setup"
	"github.com/andrescamacho/remoteminer-go/internal/domain/economy"
	"github.com/andrescamacho/remoteminer-go/internal/domain/remote"
	"github.com/andrescamacho/remoteminer-go/internal/domain/shared"
	"github.com/andrescamacho/remoteminer-go/internal/domain/territory"
)

// TestEngine wires the assignment engine over in-memory doubles and a real
// mediator, simulator, finder, selector and registry
type TestEngine struct {
	Zones     *MockZoneRepository
	Bases     *MockBaseRepository
	Store     *MockAssignmentStore
	Routes    *MockRouteProvider
	Publisher *RecordingPublisher
	Logger    *RecordingLogger
	Clock     *shared.ManualTickClock

	Simulator *economy.Simulator
	Finder    *remote.CandidateFinder
	Selector  *remote.Selector
	Registry  *remote.Registry
	Mediator  mediator.Mediator
}

// DefaultPlannerSettings runs ticks back to back with a budget of 2 jobs
func DefaultPlannerSettings() commands.PlannerSettings {
	return commands.PlannerSettings{EvaluationsPerTick: 2, Burst: 2, DriftThreshold: 100}
}

// NewTestEngine builds an engine with empty repositories
func NewTestEngine(planner commands.PlannerSettings) *TestEngine {
	e := &TestEngine{
		Zones:     NewMockZoneRepository(),
		Bases:     NewMockBaseRepository(),
		Store:     NewMockAssignmentStore(),
		Routes:    NewMockRouteProvider(),
		Publisher: NewRecordingPublisher(),
		Logger:    &RecordingLogger{},
		Clock:     shared.NewManualTickClock(0),
	}

	e.Simulator = economy.NewSimulator(economy.DefaultConstants(), e.Routes)
	e.Finder = remote.NewCandidateFinder(e.Zones, e.Store, territory.NewTopology(0), remote.DefaultSearchDepth)
	e.Selector = remote.NewSelector(e.Store, e.Simulator, remote.DefaultSelectionPolicy())
	e.Registry = remote.NewRegistry(e.Store, e.Bases, e.Zones, e.Store, e.Simulator, e.Publisher, e.Clock)

	e.Mediator = mediator.NewMediator()
	registry := setup.NewHandlerRegistry(e.Zones, e.Bases, e.Store, e.Simulator, e.Finder, e.Selector, e.Registry, e.Clock, planner)
	if err := registry.RegisterAll(e.Mediator); err != nil {
		panic(err)
	}
	return e
}

// Context returns a context carrying the engine's recording logger
func (e *TestEngine) Context() context.Context {
	return common.WithLogger(context.Background(), e.Logger)
}

// Send dispatches a request with the engine's context
func (e *TestEngine) Send(request common.Request) (common.Response, error) {
	return e.Mediator.Send(e.Context(), request)
}
