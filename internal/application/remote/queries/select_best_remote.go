package queries

import (
	"context"
	"fmt"

	"github.com/andrescamacho/remoteminer-go/internal/application/common"
	"github.com/andrescamacho/remoteminer-go/internal/domain/remote"
)

// SelectBestRemoteQuery ranks the reachable candidates of a base without
// claiming anything
type SelectBestRemoteQuery struct {
	Base             string
	ExcludeHighYield bool
}

// SelectBestRemoteResponse carries the ranking
type SelectBestRemoteResponse struct {
	// Best is nil when nothing qualifies
	Best   *remote.RankedCandidate
	Ranked []remote.RankedCandidate
}

// SelectBestRemoteHandler handles SelectBestRemoteQuery
type SelectBestRemoteHandler struct {
	resolver *common.BaseResolver
	finder   *remote.CandidateFinder
	selector *remote.Selector
}

// NewSelectBestRemoteHandler creates a new handler
func NewSelectBestRemoteHandler(
	bases remote.BaseRepository,
	finder *remote.CandidateFinder,
	selector *remote.Selector,
) *SelectBestRemoteHandler {
	return &SelectBestRemoteHandler{
		resolver: common.NewBaseResolver(bases),
		finder:   finder,
		selector: selector,
	}
}

// Handle executes the query
func (h *SelectBestRemoteHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	query, ok := request.(*SelectBestRemoteQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *SelectBestRemoteQuery")
	}

	base, err := h.resolver.ResolveBase(ctx, query.Base)
	if err != nil {
		return nil, err
	}

	candidates, err := h.finder.FindCandidates(ctx, base)
	if err != nil {
		return nil, fmt.Errorf("failed to find candidates for %s: %w", base.Name, err)
	}

	ranked, err := h.selector.Rank(ctx, base, candidates, query.ExcludeHighYield)
	if err != nil {
		return nil, fmt.Errorf("failed to rank candidates for %s: %w", base.Name, err)
	}

	response := &SelectBestRemoteResponse{Ranked: ranked}
	if len(ranked) > 0 {
		best := ranked[0]
		response.Best = &best
	}
	return response, nil
}
