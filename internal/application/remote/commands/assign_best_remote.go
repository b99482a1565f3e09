package commands

import (
	"context"
	"fmt"

	"github.com/andrescamacho/remoteminer-go/internal/adapters/metrics"
	"github.com/andrescamacho/remoteminer-go/internal/application/common"
	"github.com/andrescamacho/remoteminer-go/internal/domain/remote"
)

// AssignBestRemoteCommand finds, ranks and claims the most profitable
// unassigned node reachable from a base
type AssignBestRemoteCommand struct {
	Base             string
	ExcludeHighYield bool
}

// AssignBestRemoteResponse reports the claimed record, if any
type AssignBestRemoteResponse struct {
	// Assignment is nil when no candidate could be claimed
	Assignment *remote.Assignment
	Candidates int
	Ranked     int
	// Failed lists the nodes whose claim failed before one succeeded
	Failed []string
}

// AssignBestRemoteHandler handles AssignBestRemoteCommand
type AssignBestRemoteHandler struct {
	resolver *common.BaseResolver
	finder   *remote.CandidateFinder
	selector *remote.Selector
	registry *remote.Registry
}

// NewAssignBestRemoteHandler creates a new handler
func NewAssignBestRemoteHandler(
	bases remote.BaseRepository,
	finder *remote.CandidateFinder,
	selector *remote.Selector,
	registry *remote.Registry,
) *AssignBestRemoteHandler {
	return &AssignBestRemoteHandler{
		resolver: common.NewBaseResolver(bases),
		finder:   finder,
		selector: selector,
		registry: registry,
	}
}

// Handle walks the ranked list and claims the first candidate whose claim
// commits. A failed claim leaves the node available and moves on.
func (h *AssignBestRemoteHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*AssignBestRemoteCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *AssignBestRemoteCommand")
	}

	logger := common.LoggerFromContext(ctx)

	base, err := h.resolver.ResolveBase(ctx, cmd.Base)
	if err != nil {
		return nil, err
	}

	candidates, err := h.finder.FindCandidates(ctx, base)
	if err != nil {
		return nil, fmt.Errorf("failed to find candidates for %s: %w", base.Name, err)
	}

	ranked, err := h.selector.Rank(ctx, base, candidates, cmd.ExcludeHighYield)
	if err != nil {
		return nil, fmt.Errorf("failed to rank candidates for %s: %w", base.Name, err)
	}

	response := &AssignBestRemoteResponse{Candidates: len(candidates), Ranked: len(ranked)}

	for _, candidate := range ranked {
		assignment, err := h.registry.Claim(ctx, candidate.NodeID, base.Name)
		if err != nil {
			metrics.RecordClaim(base.Name, claimOutcome(err))
			if !IsRecoverable(err) {
				return nil, err
			}
			logger.Log("WARNING", "Claim failed, trying next candidate", map[string]interface{}{
				"node":  candidate.NodeID.String(),
				"base":  base.Name,
				"error": err.Error(),
			})
			response.Failed = append(response.Failed, candidate.NodeID.String())
			continue
		}

		metrics.RecordClaim(base.Name, metrics.OutcomeSuccess)
		metrics.RecordNetIncome(base.Name, candidate.NodeID.String(), assignment.NetIncome())
		logger.Log("INFO", "Best remote source claimed", map[string]interface{}{
			"node":       candidate.NodeID.String(),
			"base":       base.Name,
			"net_income": assignment.NetIncome(),
			"depth":      candidate.Depth,
		})
		response.Assignment = assignment
		return response, nil
	}

	logger.Log("INFO", "No remote source to claim", map[string]interface{}{
		"base":       base.Name,
		"candidates": len(candidates),
	})
	return response, nil
}
