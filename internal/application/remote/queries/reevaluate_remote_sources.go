package queries

import (
	"context"
	"fmt"

	"github.com/andrescamacho/remoteminer-go/internal/adapters/metrics"
	"github.com/andrescamacho/remoteminer-go/internal/application/common"
	"github.com/andrescamacho/remoteminer-go/internal/domain/remote"
	"github.com/andrescamacho/remoteminer-go/internal/domain/shared"
)

// ReevaluateRemoteSourcesQuery reruns the simulation for existing assignments.
// With NodeID set only that node is reevaluated, otherwise every assignment
// of Base. Stored routes are reused unless Recompute asks the route provider
// for fresh ones.
type ReevaluateRemoteSourcesQuery struct {
	Base      string
	NodeID    string
	Recompute bool
}

// ReevaluationFailure records an assignment whose reevaluation failed
type ReevaluationFailure struct {
	NodeID string
	Error  string
}

// ReevaluateRemoteSourcesResponse carries one reevaluation per assignment
type ReevaluateRemoteSourcesResponse struct {
	Reevaluations []*remote.Reevaluation
	Failures      []ReevaluationFailure
}

// ReevaluateRemoteSourcesHandler handles ReevaluateRemoteSourcesQuery
type ReevaluateRemoteSourcesHandler struct {
	registry *remote.Registry
	store    remote.AssignmentStore
}

// NewReevaluateRemoteSourcesHandler creates a new handler
func NewReevaluateRemoteSourcesHandler(registry *remote.Registry, store remote.AssignmentStore) *ReevaluateRemoteSourcesHandler {
	return &ReevaluateRemoteSourcesHandler{registry: registry, store: store}
}

// Handle executes the query. An unreachable assignment is reported as a
// failure of that assignment; registry faults abort the query.
func (h *ReevaluateRemoteSourcesHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	query, ok := request.(*ReevaluateRemoteSourcesQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *ReevaluateRemoteSourcesQuery")
	}

	if query.NodeID != "" {
		result, err := h.reevaluate(ctx, shared.NodeID(query.NodeID), query.Recompute)
		if err != nil {
			metrics.RecordEvaluation("stable", metrics.OutcomeError)
			return nil, err
		}
		metrics.RecordEvaluation("stable", metrics.OutcomeSuccess)
		return &ReevaluateRemoteSourcesResponse{Reevaluations: []*remote.Reevaluation{result}}, nil
	}

	if query.Base == "" {
		return nil, shared.NewValidationError("base", "either base or node must be provided")
	}

	assignments, err := h.store.ListByBase(ctx, query.Base)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments of %s: %w", query.Base, err)
	}

	response := &ReevaluateRemoteSourcesResponse{}
	for _, a := range assignments {
		result, err := h.reevaluate(ctx, a.NodeID(), query.Recompute)
		if err != nil {
			metrics.RecordEvaluation("stable", metrics.OutcomeError)
			if !isAssignmentLocal(err) {
				return nil, err
			}
			response.Failures = append(response.Failures, ReevaluationFailure{
				NodeID: a.NodeID().String(),
				Error:  err.Error(),
			})
			continue
		}
		metrics.RecordEvaluation("stable", metrics.OutcomeSuccess)
		response.Reevaluations = append(response.Reevaluations, result)
	}

	return response, nil
}

func (h *ReevaluateRemoteSourcesHandler) reevaluate(ctx context.Context, nodeID shared.NodeID, recompute bool) (*remote.Reevaluation, error) {
	if recompute {
		return h.registry.Recompute(ctx, nodeID)
	}
	return h.registry.Reevaluate(ctx, nodeID)
}
