package queries

import (
	"context"
	"errors"
	"fmt"

	"github.com/andrescamacho/remoteminer-go/internal/application/common"
	"github.com/andrescamacho/remoteminer-go/internal/domain/remote"
	"github.com/andrescamacho/remoteminer-go/internal/domain/shared"
)

// CheckConsistencyQuery audits the assignment registry
type CheckConsistencyQuery struct{}

// CheckConsistencyResponse lists every divergence found
type CheckConsistencyResponse struct {
	Consistent bool
	Issues     []*shared.InconsistentRegistryError
}

// CheckConsistencyHandler handles CheckConsistencyQuery
type CheckConsistencyHandler struct {
	registry *remote.Registry
}

// NewCheckConsistencyHandler creates a new handler
func NewCheckConsistencyHandler(registry *remote.Registry) *CheckConsistencyHandler {
	return &CheckConsistencyHandler{registry: registry}
}

// Handle executes the audit. Divergences are reported, never repaired.
func (h *CheckConsistencyHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	if _, ok := request.(*CheckConsistencyQuery); !ok {
		return nil, fmt.Errorf("invalid request type: expected *CheckConsistencyQuery")
	}

	err := h.registry.VerifyConsistency(ctx)
	if err == nil {
		return &CheckConsistencyResponse{Consistent: true}, nil
	}

	issues := inconsistencies(err)
	if len(issues) == 0 {
		return nil, err
	}

	common.LoggerFromContext(ctx).Log("ERROR", "Assignment registry is inconsistent", map[string]interface{}{
		"issues": len(issues),
	})
	return &CheckConsistencyResponse{Issues: issues}, nil
}

// inconsistencies unpacks a joined audit error
func inconsistencies(err error) []*shared.InconsistentRegistryError {
	var joined interface{ Unwrap() []error }
	if errors.As(err, &joined) {
		var out []*shared.InconsistentRegistryError
		for _, e := range joined.Unwrap() {
			out = append(out, inconsistencies(e)...)
		}
		return out
	}

	var issue *shared.InconsistentRegistryError
	if errors.As(err, &issue) {
		return []*shared.InconsistentRegistryError{issue}
	}
	return nil
}

// isAssignmentLocal reports whether err concerns a single assignment only
func isAssignmentLocal(err error) bool {
	var unreachable *shared.UnreachableError
	var evalErr *shared.EvaluationError
	return errors.As(err, &unreachable) || errors.As(err, &evalErr)
}
