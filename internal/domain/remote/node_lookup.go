package remote

import (
	"context"
	"fmt"

	"github.com/andrescamacho/remoteminer-go/internal/domain/shared"
	"github.com/andrescamacho/remoteminer-go/internal/domain/territory"
)

// LocateNode resolves nodeID to a resource node of an observed zone. Malformed
// ids, zones without data and positions that are not nodes are all reported
// as *shared.EvaluationError.
func LocateNode(ctx context.Context, zones territory.ZoneRepository, nodeID shared.NodeID) (shared.Position, error) {
	pos, err := nodeID.Position()
	if err != nil {
		return shared.Position{}, shared.NewEvaluationError(nodeID.String(), err)
	}

	zone, err := zones.FindByName(ctx, pos.Zone)
	if err != nil {
		return shared.Position{}, shared.NewEvaluationError(nodeID.String(), fmt.Errorf("failed to load zone %s: %w", pos.Zone, err))
	}
	if zone == nil {
		return shared.Position{}, shared.NewEvaluationError(nodeID.String(),
			shared.NewValidationError("zone", "no data for zone "+pos.Zone))
	}

	for _, n := range zone.Nodes {
		if n == pos {
			return pos, nil
		}
	}
	return shared.Position{}, shared.NewEvaluationError(nodeID.String(),
		shared.NewValidationError("node", "zone "+pos.Zone+" has no resource node at "+pos.Encode()))
}
