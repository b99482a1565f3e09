package commands

import (
	"context"
	"fmt"

	"github.com/andrescamacho/remoteminer-go/internal/application/common"
	"github.com/andrescamacho/remoteminer-go/internal/domain/remote"
	"github.com/andrescamacho/remoteminer-go/internal/domain/shared"
)

// AssignWorkerCommand staffs a roster slot of an assignment
type AssignWorkerCommand struct {
	NodeID string
	Role   remote.WorkerRole
	// Slot indexes the hauler roster; ignored for the harvester
	Slot   int
	Worker string
}

// VacateWorkerCommand frees every slot a worker holds on an assignment
type VacateWorkerCommand struct {
	NodeID string
	Worker string
}

// MarkOperationalCommand records that an assignment's container is built
type MarkOperationalCommand struct {
	NodeID string
}

// StaffResponse carries the updated record
type StaffResponse struct {
	Assignment *remote.Assignment
}

// StaffRemoteSourceHandler handles the roster commands
type StaffRemoteSourceHandler struct {
	registry *remote.Registry
}

// NewStaffRemoteSourceHandler creates a handler for AssignWorkerCommand,
// VacateWorkerCommand and MarkOperationalCommand
func NewStaffRemoteSourceHandler(registry *remote.Registry) *StaffRemoteSourceHandler {
	return &StaffRemoteSourceHandler{registry: registry}
}

// Handle dispatches on the command type
func (h *StaffRemoteSourceHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	var (
		assignment *remote.Assignment
		err        error
		node       string
		action     string
	)

	switch cmd := request.(type) {
	case *AssignWorkerCommand:
		node, action = cmd.NodeID, "assign "+string(cmd.Role)
		assignment, err = h.registry.AssignWorker(ctx, shared.NodeID(cmd.NodeID), cmd.Role, cmd.Slot, cmd.Worker)
	case *VacateWorkerCommand:
		node, action = cmd.NodeID, "vacate "+cmd.Worker
		assignment, err = h.registry.VacateWorker(ctx, shared.NodeID(cmd.NodeID), cmd.Worker)
	case *MarkOperationalCommand:
		node, action = cmd.NodeID, "mark operational"
		assignment, err = h.registry.MarkOperational(ctx, shared.NodeID(cmd.NodeID))
	default:
		return nil, fmt.Errorf("invalid request type: %T", request)
	}
	if err != nil {
		return nil, err
	}

	common.LoggerFromContext(ctx).Log("DEBUG", "Roster updated", map[string]interface{}{
		"node":   node,
		"action": action,
	})
	return &StaffResponse{Assignment: assignment}, nil
}
