package queries

import (
	"context"
	"fmt"

	"github.com/andrescamacho/remoteminer-go/internal/application/common"
	"github.com/andrescamacho/remoteminer-go/internal/domain/remote"
)

// ListRemoteAssignmentsQuery lists assignment records; an empty Base lists all
type ListRemoteAssignmentsQuery struct {
	Base string
}

// ListRemoteAssignmentsResponse carries the records and their zones' metadata
type ListRemoteAssignmentsResponse struct {
	Assignments    []*remote.Assignment
	ZoneMetadata   map[string]*remote.ZoneMetadata
	TotalNetIncome float64
}

// ListRemoteAssignmentsHandler handles ListRemoteAssignmentsQuery
type ListRemoteAssignmentsHandler struct {
	store remote.AssignmentStore
}

// NewListRemoteAssignmentsHandler creates a new handler
func NewListRemoteAssignmentsHandler(store remote.AssignmentStore) *ListRemoteAssignmentsHandler {
	return &ListRemoteAssignmentsHandler{store: store}
}

// Handle executes the query
func (h *ListRemoteAssignmentsHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	query, ok := request.(*ListRemoteAssignmentsQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *ListRemoteAssignmentsQuery")
	}

	var (
		assignments []*remote.Assignment
		err         error
	)
	if query.Base != "" {
		assignments, err = h.store.ListByBase(ctx, query.Base)
	} else {
		assignments, err = h.store.ListAll(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}

	response := &ListRemoteAssignmentsResponse{
		Assignments:  assignments,
		ZoneMetadata: make(map[string]*remote.ZoneMetadata),
	}
	for _, a := range assignments {
		response.TotalNetIncome += a.NetIncome()

		zone := a.Zone()
		if _, seen := response.ZoneMetadata[zone]; seen {
			continue
		}
		md, err := h.store.FindZoneMetadata(ctx, zone)
		if err != nil {
			return nil, fmt.Errorf("failed to load metadata of %s: %w", zone, err)
		}
		response.ZoneMetadata[zone] = md
	}

	return response, nil
}
