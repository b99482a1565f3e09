package common

import (
	"context"
	"fmt"

	"github.com/andrescamacho/remoteminer-go/internal/domain/remote"
	"github.com/andrescamacho/remoteminer-go/internal/domain/shared"
)

// BaseResolver loads the base a request refers to.
//
// Business rules:
//   - The base name must be provided
//   - A base that does not exist is a validation error, not a lookup failure
type BaseResolver struct {
	bases remote.BaseRepository
}

// NewBaseResolver creates a new base resolver
func NewBaseResolver(bases remote.BaseRepository) *BaseResolver {
	return &BaseResolver{bases: bases}
}

// ResolveBase returns the named base
func (r *BaseResolver) ResolveBase(ctx context.Context, name string) (*remote.Base, error) {
	if name == "" {
		return nil, shared.NewValidationError("base", "must be provided")
	}

	base, err := r.bases.FindByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to find base %s: %w", name, err)
	}
	if base == nil {
		return nil, shared.NewValidationError("base", "unknown base "+name)
	}
	return base, nil
}
