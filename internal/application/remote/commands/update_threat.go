package commands

import (
	"context"
	"fmt"

	"github.com/andrescamacho/remoteminer-go/internal/application/common"
	"github.com/andrescamacho/remoteminer-go/internal/domain/remote"
)

// UpdateThreatCommand records the threat level a scout saw in a zone
type UpdateThreatCommand struct {
	Zone  string
	Level remote.ThreatLevel
}

// UpdateThreatResponse carries the zone metadata after the update
type UpdateThreatResponse struct {
	Metadata *remote.ZoneMetadata
	Changed  bool
}

// UpdateThreatHandler handles UpdateThreatCommand
type UpdateThreatHandler struct {
	registry *remote.Registry
}

// NewUpdateThreatHandler creates a new handler
func NewUpdateThreatHandler(registry *remote.Registry) *UpdateThreatHandler {
	return &UpdateThreatHandler{registry: registry}
}

// Handle executes the update
func (h *UpdateThreatHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*UpdateThreatCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *UpdateThreatCommand")
	}

	metadata, changed, err := h.registry.ObserveThreat(ctx, cmd.Zone, cmd.Level)
	if err != nil {
		return nil, err
	}

	if changed {
		common.LoggerFromContext(ctx).Log("WARNING", "Zone threat changed", map[string]interface{}{
			"zone":  cmd.Zone,
			"level": string(metadata.ThreatLevel),
		})
	}

	return &UpdateThreatResponse{Metadata: metadata, Changed: changed}, nil
}
