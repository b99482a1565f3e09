package commands

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/andrescamacho/remoteminer-go/internal/adapters/metrics"
	"github.com/andrescamacho/remoteminer-go/internal/application/common"
	"github.com/andrescamacho/remoteminer-go/internal/application/remote/queries"
	"github.com/andrescamacho/remoteminer-go/internal/domain/remote"
	"github.com/andrescamacho/remoteminer-go/internal/domain/shared"
)

// RunPlannerCommand runs the planning loop for a number of ticks
type RunPlannerCommand struct {
	// Ticks to run; 0 runs until the context is cancelled
	Ticks      int
	AutoAssign bool
}

// PlannerDrift is a reevaluation that moved past the drift threshold
type PlannerDrift struct {
	Tick                  int
	Base                  string
	NodeID                string
	NetIncomeDelta        float64
	HaulerDelta           int
	MiningPositionChanged bool
}

// RunPlannerResponse summarises a planner run
type RunPlannerResponse struct {
	RunID       string
	Ticks       int
	Evaluations int
	Claims      int
	// Deferred counts jobs still queued when the run ended
	Deferred int
	Drifts   []PlannerDrift
}

// PlannerSettings bound the planner's work
type PlannerSettings struct {
	// TickInterval is the wall time between ticks; 0 runs ticks back to back
	TickInterval time.Duration
	// EvaluationsPerTick is the steady job budget per tick
	EvaluationsPerTick int
	// Burst is the most jobs a single tick may run
	Burst          int
	DriftThreshold float64
}

type jobKind int

const (
	jobReevaluate jobKind = iota
	jobAssign
)

type plannerJob struct {
	kind   jobKind
	base   string
	nodeID shared.NodeID
}

// RunPlannerHandler drives periodic reevaluation and auto assignment. Each
// tick advances the clock, refills the job queue once it drains and runs
// jobs until the evaluation budget of the tick is spent; the rest carry over.
type RunPlannerHandler struct {
	mediator common.Mediator
	bases    remote.BaseRepository
	store    remote.AssignmentStore
	clock    *shared.ManualTickClock
	settings PlannerSettings
}

// NewRunPlannerHandler creates a new handler. Jobs are dispatched through
// mediator as AssignBestRemoteCommand and ReevaluateRemoteSourcesQuery.
func NewRunPlannerHandler(
	mediator common.Mediator,
	bases remote.BaseRepository,
	store remote.AssignmentStore,
	clock *shared.ManualTickClock,
	settings PlannerSettings,
) *RunPlannerHandler {
	if settings.EvaluationsPerTick <= 0 {
		settings.EvaluationsPerTick = 1
	}
	if settings.Burst < settings.EvaluationsPerTick {
		settings.Burst = settings.EvaluationsPerTick
	}
	return &RunPlannerHandler{
		mediator: mediator,
		bases:    bases,
		store:    store,
		clock:    clock,
		settings: settings,
	}
}

// Handle runs the loop
func (h *RunPlannerHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*RunPlannerCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *RunPlannerCommand")
	}
	if cmd.Ticks < 0 {
		return nil, shared.NewValidationError("ticks", "must not be negative")
	}

	logger := common.LoggerFromContext(ctx)
	response := &RunPlannerResponse{RunID: uuid.New().String()}

	// One tick is one second of limiter time, decoupled from wall time
	limiter := rate.NewLimiter(rate.Limit(h.settings.EvaluationsPerTick), h.settings.Burst)
	epoch := time.Unix(0, 0)

	var ticker *time.Ticker
	if h.settings.TickInterval > 0 {
		ticker = time.NewTicker(h.settings.TickInterval)
		defer ticker.Stop()
	}

	logger.Log("INFO", "Planner started", map[string]interface{}{
		"run_id":      response.RunID,
		"ticks":       cmd.Ticks,
		"auto_assign": cmd.AutoAssign,
	})

	var queue []plannerJob
	for cmd.Ticks == 0 || response.Ticks < cmd.Ticks {
		if err := ctx.Err(); err != nil {
			break
		}

		h.clock.Advance(1)
		response.Ticks++
		now := epoch.Add(time.Duration(response.Ticks) * time.Second)

		if len(queue) == 0 {
			var err error
			queue, err = h.plan(ctx, cmd.AutoAssign)
			if err != nil {
				return nil, err
			}
		}

		ran := 0
		for len(queue) > 0 && limiter.AllowN(now, 1) {
			job := queue[0]
			queue = queue[1:]
			ran++

			if err := h.runJob(ctx, job, response); err != nil {
				return nil, err
			}
		}
		response.Evaluations += ran
		metrics.RecordPlannerTick(ran, len(queue))

		if ticker != nil && (cmd.Ticks == 0 || response.Ticks < cmd.Ticks) {
			select {
			case <-ctx.Done():
			case <-ticker.C:
			}
		}
	}

	response.Deferred = len(queue)
	logger.Log("INFO", "Planner stopped", map[string]interface{}{
		"run_id":      response.RunID,
		"ticks":       response.Ticks,
		"evaluations": response.Evaluations,
		"claims":      response.Claims,
		"drifts":      len(response.Drifts),
	})
	return response, nil
}

// plan builds one pass over every base: reevaluate each assignment, then
// look for a new one when the base has no setup in progress
func (h *RunPlannerHandler) plan(ctx context.Context, autoAssign bool) ([]plannerJob, error) {
	bases, err := h.bases.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list bases: %w", err)
	}

	var jobs []plannerJob
	for _, base := range bases {
		assignments, err := h.store.ListByBase(ctx, base.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to list assignments of %s: %w", base.Name, err)
		}

		pending := false
		for _, a := range assignments {
			jobs = append(jobs, plannerJob{kind: jobReevaluate, base: base.Name, nodeID: a.NodeID()})
			if a.SetupStatus() != remote.SetupOperational {
				pending = true
			}
		}

		if autoAssign && !pending {
			jobs = append(jobs, plannerJob{kind: jobAssign, base: base.Name})
		}
	}
	return jobs, nil
}

func (h *RunPlannerHandler) runJob(ctx context.Context, job plannerJob, response *RunPlannerResponse) error {
	logger := common.LoggerFromContext(ctx)

	switch job.kind {
	case jobAssign:
		resp, err := h.mediator.Send(ctx, &AssignBestRemoteCommand{Base: job.base})
		if err != nil {
			if !IsRecoverable(err) {
				return err
			}
			logger.Log("WARNING", "Auto assignment failed", map[string]interface{}{
				"run_id": response.RunID,
				"base":   job.base,
				"error":  err.Error(),
			})
			return nil
		}
		if result, ok := resp.(*AssignBestRemoteResponse); ok && result.Assignment != nil {
			response.Claims++
		}

	case jobReevaluate:
		resp, err := h.mediator.Send(ctx, &queries.ReevaluateRemoteSourcesQuery{NodeID: job.nodeID.String(), Recompute: true})
		if err != nil {
			if !IsRecoverable(err) {
				return err
			}
			logger.Log("WARNING", "Reevaluation failed", map[string]interface{}{
				"run_id": response.RunID,
				"base":   job.base,
				"node":   job.nodeID.String(),
				"error":  err.Error(),
			})
			return nil
		}
		result, ok := resp.(*queries.ReevaluateRemoteSourcesResponse)
		if !ok || len(result.Reevaluations) == 0 {
			return nil
		}
		h.recordDrift(ctx, job, result.Reevaluations[0], response)
	}
	return nil
}

func (h *RunPlannerHandler) recordDrift(ctx context.Context, job plannerJob, r *remote.Reevaluation, response *RunPlannerResponse) {
	if math.Abs(r.NetIncomeDelta) < h.settings.DriftThreshold && r.HaulerDelta == 0 && !r.MiningPositionChanged {
		return
	}

	drift := PlannerDrift{
		Tick:                  h.clock.Tick(),
		Base:                  job.base,
		NodeID:                job.nodeID.String(),
		NetIncomeDelta:        r.NetIncomeDelta,
		HaulerDelta:           r.HaulerDelta,
		MiningPositionChanged: r.MiningPositionChanged,
	}
	response.Drifts = append(response.Drifts, drift)

	metrics.RecordDrift(job.base)
	metrics.RecordNetIncome(job.base, drift.NodeID, r.Profile.NetIncome)
	common.LoggerFromContext(ctx).Log("INFO", "Profile drift", map[string]interface{}{
		"run_id":          response.RunID,
		"base":            drift.Base,
		"node":            drift.NodeID,
		"net_income":      r.Profile.NetIncome,
		"net_income_diff": drift.NetIncomeDelta,
		"hauler_diff":     drift.HaulerDelta,
		"mining_moved":    drift.MiningPositionChanged,
	})
}
