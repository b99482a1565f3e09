package queries

import (
	"context"
	"fmt"

	"github.com/andrescamacho/remoteminer-go/internal/adapters/metrics"
	"github.com/andrescamacho/remoteminer-go/internal/application/common"
	"github.com/andrescamacho/remoteminer-go/internal/domain/economy"
	"github.com/andrescamacho/remoteminer-go/internal/domain/remote"
	"github.com/andrescamacho/remoteminer-go/internal/domain/shared"
	"github.com/andrescamacho/remoteminer-go/internal/domain/territory"
)

// EvaluateRemoteSourceQuery runs the economic simulation for one node
type EvaluateRemoteSourceQuery struct {
	NodeID string
	Base   string
	// Stable discounts stored roads; the default is the raw estimate
	Stable bool
}

// EvaluateRemoteSourceResponse carries the computed profile
type EvaluateRemoteSourceResponse struct {
	Profile *economy.Profile
}

// EvaluateRemoteSourceHandler handles EvaluateRemoteSourceQuery
type EvaluateRemoteSourceHandler struct {
	zones     territory.ZoneRepository
	resolver  *common.BaseResolver
	evaluator remote.Evaluator
}

// NewEvaluateRemoteSourceHandler creates a new handler
func NewEvaluateRemoteSourceHandler(zones territory.ZoneRepository, bases remote.BaseRepository, evaluator remote.Evaluator) *EvaluateRemoteSourceHandler {
	return &EvaluateRemoteSourceHandler{
		zones:     zones,
		resolver:  common.NewBaseResolver(bases),
		evaluator: evaluator,
	}
}

// Handle executes the query
func (h *EvaluateRemoteSourceHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	query, ok := request.(*EvaluateRemoteSourceQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *EvaluateRemoteSourceQuery")
	}

	base, err := h.resolver.ResolveBase(ctx, query.Base)
	if err != nil {
		return nil, err
	}

	node, err := remote.LocateNode(ctx, h.zones, shared.NodeID(query.NodeID))
	if err != nil {
		return nil, err
	}

	mode := "raw"
	if query.Stable {
		mode = "stable"
	}

	profile, err := h.evaluator.Evaluate(ctx, node, base.Staging, !query.Stable)
	if err != nil {
		metrics.RecordEvaluation(mode, metrics.OutcomeError)
		return nil, err
	}
	metrics.RecordEvaluation(mode, metrics.OutcomeSuccess)

	return &EvaluateRemoteSourceResponse{Profile: profile}, nil
}
