package commands

import (
	"context"
	"fmt"

	"github.com/andrescamacho/remoteminer-go/internal/adapters/metrics"
	"github.com/andrescamacho/remoteminer-go/internal/application/common"
	"github.com/andrescamacho/remoteminer-go/internal/domain/remote"
	"github.com/andrescamacho/remoteminer-go/internal/domain/shared"
)

// ReleaseRemoteSourceCommand drops the claim on a node
type ReleaseRemoteSourceCommand struct {
	NodeID string
}

// ReleaseRemoteSourceResponse reports which base held the node
type ReleaseRemoteSourceResponse struct {
	// Base is empty when the node was not assigned
	Base     string
	Released bool
}

// ReleaseRemoteSourceHandler handles ReleaseRemoteSourceCommand
type ReleaseRemoteSourceHandler struct {
	registry *remote.Registry
}

// NewReleaseRemoteSourceHandler creates a new handler
func NewReleaseRemoteSourceHandler(registry *remote.Registry) *ReleaseRemoteSourceHandler {
	return &ReleaseRemoteSourceHandler{registry: registry}
}

// Handle executes the release
func (h *ReleaseRemoteSourceHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*ReleaseRemoteSourceCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *ReleaseRemoteSourceCommand")
	}

	nodeID := shared.NodeID(cmd.NodeID)
	owner, err := h.registry.OwnerOf(ctx, nodeID)
	if err != nil {
		return nil, err
	}
	if owner == "" {
		return &ReleaseRemoteSourceResponse{}, nil
	}

	if err := h.registry.Release(ctx, nodeID); err != nil {
		return nil, err
	}

	metrics.RecordRelease(owner)
	metrics.ClearNetIncome(owner, cmd.NodeID)
	common.LoggerFromContext(ctx).Log("INFO", "Remote source released", map[string]interface{}{
		"node": cmd.NodeID,
		"base": owner,
	})

	return &ReleaseRemoteSourceResponse{Base: owner, Released: true}, nil
}
