package commands

import (
	"context"
	"fmt"

	"github.com/andrescamacho/remoteminer-go/internal/application/common"
	"github.com/andrescamacho/remoteminer-go/internal/domain/remote"
)

// UpdateReservationCommand feeds an observed reservation timer into a zone
type UpdateReservationCommand struct {
	Zone string
	// TicksToEnd is 0 when the zone is not reserved
	TicksToEnd int
}

// UpdateReservationResponse carries the zone metadata after the update
type UpdateReservationResponse struct {
	Metadata *remote.ZoneMetadata
	Changed  bool
}

// UpdateReservationHandler handles UpdateReservationCommand
type UpdateReservationHandler struct {
	registry *remote.Registry
}

// NewUpdateReservationHandler creates a new handler
func NewUpdateReservationHandler(registry *remote.Registry) *UpdateReservationHandler {
	return &UpdateReservationHandler{registry: registry}
}

// Handle executes the update
func (h *UpdateReservationHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*UpdateReservationCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *UpdateReservationCommand")
	}

	metadata, changed, err := h.registry.ObserveReservation(ctx, cmd.Zone, cmd.TicksToEnd)
	if err != nil {
		return nil, err
	}

	if changed {
		state := ""
		if metadata.ReservationState != nil {
			state = string(*metadata.ReservationState)
		}
		common.LoggerFromContext(ctx).Log("INFO", "Reservation state changed", map[string]interface{}{
			"zone":         cmd.Zone,
			"state":        state,
			"ticks_to_end": cmd.TicksToEnd,
		})
	}

	return &UpdateReservationResponse{Metadata: metadata, Changed: changed}, nil
}
