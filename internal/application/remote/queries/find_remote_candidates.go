package queries

import (
	"context"
	"fmt"

	"github.com/andrescamacho/remoteminer-go/internal/application/common"
	"github.com/andrescamacho/remoteminer-go/internal/domain/remote"
)

// FindRemoteCandidatesQuery lists unassigned nodes reachable from a base
type FindRemoteCandidatesQuery struct {
	Base string
}

// FindRemoteCandidatesResponse carries the candidates in search order
type FindRemoteCandidatesResponse struct {
	Candidates []remote.Candidate
}

// FindRemoteCandidatesHandler handles FindRemoteCandidatesQuery
type FindRemoteCandidatesHandler struct {
	resolver *common.BaseResolver
	finder   *remote.CandidateFinder
}

// NewFindRemoteCandidatesHandler creates a new handler
func NewFindRemoteCandidatesHandler(bases remote.BaseRepository, finder *remote.CandidateFinder) *FindRemoteCandidatesHandler {
	return &FindRemoteCandidatesHandler{
		resolver: common.NewBaseResolver(bases),
		finder:   finder,
	}
}

// Handle executes the query
func (h *FindRemoteCandidatesHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	query, ok := request.(*FindRemoteCandidatesQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *FindRemoteCandidatesQuery")
	}

	base, err := h.resolver.ResolveBase(ctx, query.Base)
	if err != nil {
		return nil, err
	}

	candidates, err := h.finder.FindCandidates(ctx, base)
	if err != nil {
		return nil, fmt.Errorf("failed to find candidates for %s: %w", base.Name, err)
	}

	return &FindRemoteCandidatesResponse{Candidates: candidates}, nil
}
