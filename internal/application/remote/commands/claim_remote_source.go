package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/andrescamacho/remoteminer-go/internal/adapters/metrics"
	"github.com/andrescamacho/remoteminer-go/internal/application/common"
	"github.com/andrescamacho/remoteminer-go/internal/domain/remote"
	"github.com/andrescamacho/remoteminer-go/internal/domain/shared"
)

// ClaimRemoteSourceCommand reserves a node for a base
type ClaimRemoteSourceCommand struct {
	NodeID string // e.g. "10.10.W1N1"
	Base   string // base zone name
}

// ClaimRemoteSourceResponse carries the committed record
type ClaimRemoteSourceResponse struct {
	Assignment *remote.Assignment
}

// ClaimRemoteSourceHandler handles ClaimRemoteSourceCommand
type ClaimRemoteSourceHandler struct {
	registry *remote.Registry
}

// NewClaimRemoteSourceHandler creates a new handler
func NewClaimRemoteSourceHandler(registry *remote.Registry) *ClaimRemoteSourceHandler {
	return &ClaimRemoteSourceHandler{registry: registry}
}

// Handle executes the claim
func (h *ClaimRemoteSourceHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*ClaimRemoteSourceCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *ClaimRemoteSourceCommand")
	}

	logger := common.LoggerFromContext(ctx)

	assignment, err := h.registry.Claim(ctx, shared.NodeID(cmd.NodeID), cmd.Base)
	if err != nil {
		metrics.RecordClaim(cmd.Base, claimOutcome(err))
		logger.Log("WARNING", "Claim failed", map[string]interface{}{
			"node":  cmd.NodeID,
			"base":  cmd.Base,
			"error": err.Error(),
		})
		return nil, err
	}

	metrics.RecordClaim(cmd.Base, metrics.OutcomeSuccess)
	metrics.RecordNetIncome(cmd.Base, cmd.NodeID, assignment.NetIncome())
	logger.Log("INFO", "Remote source claimed", map[string]interface{}{
		"node":       cmd.NodeID,
		"base":       cmd.Base,
		"net_income": assignment.NetIncome(),
		"haulers":    len(assignment.Haulers()),
	})

	return &ClaimRemoteSourceResponse{Assignment: assignment}, nil
}

// claimOutcome separates expected negative results from faults
func claimOutcome(err error) string {
	var unreachable *shared.UnreachableError
	if errors.As(err, &unreachable) {
		return metrics.OutcomeSkipped
	}
	return metrics.OutcomeError
}

// IsRecoverable reports whether a failed claim leaves the registry usable for
// the next candidate. Inconsistent registry errors are not recoverable.
func IsRecoverable(err error) bool {
	var inconsistent *shared.InconsistentRegistryError
	return !errors.As(err, &inconsistent)
}
