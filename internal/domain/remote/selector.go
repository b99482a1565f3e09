package remote

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/andrescamacho/remoteminer-go/internal/domain/economy"
	"github.com/andrescamacho/remoteminer-go/internal/domain/shared"
	"github.com/andrescamacho/remoteminer-go/internal/domain/territory"
)

// SelectionPolicy holds the portfolio limits of the Selector
type SelectionPolicy struct {
	// MaxHighYieldAssignments caps active assignments in guarded/resource-rich zones
	MaxHighYieldAssignments int
	// MinHighYieldLevel is the base level from which high-yield zones are considered
	MinHighYieldLevel int
}

// DefaultSelectionPolicy allows two high-yield assignments from level 7 upward
func DefaultSelectionPolicy() SelectionPolicy {
	return SelectionPolicy{MaxHighYieldAssignments: 2, MinHighYieldLevel: 7}
}

// RankedCandidate is a candidate together with its evaluated profile
type RankedCandidate struct {
	Candidate
	Profile *economy.Profile
}

// Selector filters and ranks candidates for a base
type Selector struct {
	store     AssignmentStore
	evaluator Evaluator
	policy    SelectionPolicy
}

// NewSelector creates a selector
func NewSelector(store AssignmentStore, evaluator Evaluator, policy SelectionPolicy) *Selector {
	return &Selector{store: store, evaluator: evaluator, policy: policy}
}

// SelectBest returns the most profitable candidate, or nil when nothing qualifies
func (s *Selector) SelectBest(
	ctx context.Context,
	base *Base,
	candidates []Candidate,
	excludeHighYield bool,
) (*RankedCandidate, error) {
	ranked, err := s.Rank(ctx, base, candidates, excludeHighYield)
	if err != nil {
		return nil, err
	}
	if len(ranked) == 0 {
		return nil, nil
	}
	best := ranked[0]
	return &best, nil
}

// Rank filters candidates by the base's capability and portfolio, evaluates
// them against raw route costs and orders them by net income, highest first.
// Candidates with equal net income keep their input order. Unreachable
// candidates and candidates rejected as invalid input are dropped; any other
// evaluation failure (route provider, storage) fails the ranking.
func (s *Selector) Rank(
	ctx context.Context,
	base *Base,
	candidates []Candidate,
	excludeHighYield bool,
) ([]RankedCandidate, error) {
	if base == nil {
		return nil, shared.NewValidationError("base", "cannot be nil")
	}

	standardOnly, err := s.standardOnly(ctx, base, excludeHighYield)
	if err != nil {
		return nil, err
	}

	ranked := make([]RankedCandidate, 0, len(candidates))
	for _, c := range candidates {
		if standardOnly && territory.IsHighYieldZone(c.Zone) {
			continue
		}

		profile, err := s.evaluator.Evaluate(ctx, c.Position, base.Staging, true)
		if err != nil {
			if skippable(err) {
				continue
			}
			return nil, fmt.Errorf("failed to evaluate candidate %s: %w", c.NodeID, err)
		}

		ranked = append(ranked, RankedCandidate{Candidate: c, Profile: profile})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Profile.NetIncome > ranked[j].Profile.NetIncome
	})

	return ranked, nil
}

// standardOnly decides whether high-yield candidates are filtered out
func (s *Selector) standardOnly(ctx context.Context, base *Base, excludeHighYield bool) (bool, error) {
	if excludeHighYield || base.Level < s.policy.MinHighYieldLevel {
		return true, nil
	}

	active, err := s.store.ListByBase(ctx, base.Name)
	if err != nil {
		return false, fmt.Errorf("failed to list assignments of base %s: %w", base.Name, err)
	}

	highYield := 0
	for _, a := range active {
		if territory.IsHighYieldZone(a.Zone()) {
			highYield++
		}
	}

	return highYield >= s.policy.MaxHighYieldAssignments, nil
}

// skippable reports whether an evaluation failure only rules out the candidate
func skippable(err error) bool {
	var unreachable *shared.UnreachableError
	if errors.As(err, &unreachable) {
		return true
	}
	var evalErr *shared.EvaluationError
	var validation *shared.ValidationError
	return errors.As(err, &evalErr) && errors.As(evalErr.Cause, &validation)
}
