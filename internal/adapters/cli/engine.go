package cli

import (
	"context"
	"fmt"
	"io"

	"gorm.io/gorm"

	"github.com/andrescamacho/remoteminer-go/internal/adapters/logging"
	"github.com/andrescamacho/remoteminer-go/internal/adapters/metrics"
	"github.com/andrescamacho/remoteminer-go/internal/adapters/persistence"
	"github.com/andrescamacho/remoteminer-go/internal/adapters/routing"
	"github.com/andrescamacho/remoteminer-go/internal/application/common"
	"github.com/andrescamacho/remoteminer-go/internal/application/mediator"
	"github.com/andrescamacho/remoteminer-go/internal/application/remote/commands"
	"github.com/andrescamacho/remoteminer-go/internal/application/remote/events"
	"github.com/andrescamacho/remoteminer-go/internal/application/setup"
	"github.com/andrescamacho/remoteminer-go/internal/domain/economy"
	"github.com/andrescamacho/remoteminer-go/internal/domain/remote"
	"github.com/andrescamacho/remoteminer-go/internal/domain/shared"
	"github.com/andrescamacho/remoteminer-go/internal/domain/territory"
	"github.com/andrescamacho/remoteminer-go/internal/infrastructure/config"
	"github.com/andrescamacho/remoteminer-go/internal/infrastructure/database"
)

// Engine is the assignment engine wired over the configured database
type Engine struct {
	Config   *config.Config
	DB       *gorm.DB
	Zones    *persistence.GormZoneRepository
	Bases    *persistence.GormBaseRepository
	Store    *persistence.GormAssignmentStore
	Routes   *persistence.GormRouteRepository
	Events   *events.WorkerEventBus
	Logger   *logging.CharmLogger
	Clock    *shared.ManualTickClock
	Mediator mediator.Mediator
}

// NewEngine opens and migrates the database and registers every handler.
// Logs go to logOut when set, otherwise to the configured output.
func NewEngine(cfg *config.Config, logOut io.Writer) (*Engine, error) {
	var (
		logger *logging.CharmLogger
		err    error
	)
	if logOut != nil {
		logger = logging.NewCharmLoggerWithWriter(logOut, cfg.Logging)
	} else {
		logger, err = logging.NewCharmLogger(cfg.Logging)
		if err != nil {
			return nil, err
		}
	}

	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		_ = logger.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		_ = database.Close(db)
		_ = logger.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	e := &Engine{
		Config: cfg,
		DB:     db,
		Zones:  persistence.NewGormZoneRepository(db),
		Bases:  persistence.NewGormBaseRepository(db),
		Store:  persistence.NewGormAssignmentStore(db),
		Routes: persistence.NewGormRouteRepository(db),
		Events: events.NewWorkerEventBus(0),
		Logger: logger,
		Clock:  shared.NewManualTickClock(0),
	}

	topology := territory.NewTopology(cfg.Routing.WorldRadius)
	router := routing.NewGridRouter(e.Zones, e.Routes, topology, routing.TileCosts{
		Plain: cfg.Routing.PlainCost,
		Swamp: cfg.Routing.SwampCost,
		Road:  cfg.Routing.RoadCost,
	}, cfg.Routing.MaxOps)

	simulator := economy.NewSimulator(cfg.Economy.ToConstants(), router)
	finder := remote.NewCandidateFinder(e.Zones, e.Store, topology, cfg.Selection.MaxDepth)
	selector := remote.NewSelector(e.Store, simulator, remote.SelectionPolicy{
		MaxHighYieldAssignments: cfg.Selection.MaxHighYieldAssignments,
		MinHighYieldLevel:       cfg.Selection.MinHighYieldLevel,
	})
	registry := remote.NewRegistry(e.Store, e.Bases, e.Zones, e.Routes, simulator, e.Events, e.Clock)

	e.Mediator = mediator.NewMediator()
	if cfg.Metrics.Enabled {
		if err := e.enableMetrics(); err != nil {
			_ = e.Close()
			return nil, err
		}
	}

	handlers := setup.NewHandlerRegistry(e.Zones, e.Bases, e.Store, simulator, finder, selector, registry, e.Clock,
		commands.PlannerSettings{
			TickInterval:       cfg.Planner.TickInterval,
			EvaluationsPerTick: cfg.Planner.EvaluationsPerTick,
			Burst:              cfg.Planner.Burst,
			DriftThreshold:     cfg.Planner.DriftThreshold,
		})
	if err := handlers.RegisterAll(e.Mediator); err != nil {
		_ = e.Close()
		return nil, fmt.Errorf("failed to register handlers: %w", err)
	}

	return e, nil
}

func (e *Engine) enableMetrics() error {
	metrics.InitRegistry()

	remoteCollector := metrics.NewRemoteMetricsCollector()
	if err := remoteCollector.Register(); err != nil {
		return fmt.Errorf("failed to register remote metrics: %w", err)
	}
	metrics.SetGlobalRemoteCollector(remoteCollector)

	commandCollector := metrics.NewCommandMetricsCollector()
	if err := commandCollector.Register(); err != nil {
		return fmt.Errorf("failed to register command metrics: %w", err)
	}
	e.Mediator.RegisterMiddleware(metrics.PrometheusMiddleware(commandCollector))
	return nil
}

// Context attaches the engine's logger
func (e *Engine) Context(ctx context.Context) context.Context {
	return common.WithLogger(ctx, e.Logger)
}

// Send dispatches a request through the mediator
func (e *Engine) Send(ctx context.Context, request common.Request) (common.Response, error) {
	return e.Mediator.Send(e.Context(ctx), request)
}

// Close releases the database and the log output
func (e *Engine) Close() error {
	dbErr := database.Close(e.DB)
	logErr := e.Logger.Close()
	if dbErr != nil {
		return dbErr
	}
	return logErr
}
