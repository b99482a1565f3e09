package remote_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/remoteminer-go/internal/domain/economy"
	"github.com/andrescamacho/remoteminer-go/internal/domain/remote"
	"github.com/andrescamacho/remoteminer-go/internal/domain/routing"
	"github.com/andrescamacho/remoteminer-go/internal/domain/shared"
)

// stubEvaluator returns fixed net incomes per node
type stubEvaluator struct {
	incomes map[shared.NodeID]float64
	errs    map[shared.NodeID]error
	ignored []bool
}

func newStubEvaluator() *stubEvaluator {
	return &stubEvaluator{incomes: map[shared.NodeID]float64{}, errs: map[shared.NodeID]error{}}
}

func (s *stubEvaluator) Evaluate(ctx context.Context, node, staging shared.Position, ignoreInfrastructure bool) (*economy.Profile, error) {
	s.ignored = append(s.ignored, ignoreInfrastructure)
	id := shared.NodeIDFor(node)
	if err, ok := s.errs[id]; ok {
		return nil, err
	}
	return &economy.Profile{NodeID: id, NetIncome: s.incomes[id], HaulerCount: 1, MiningPosition: node}, nil
}

func (s *stubEvaluator) EvaluateRoute(node, staging shared.Position, road *routing.Route) (*economy.Profile, error) {
	return s.Evaluate(context.Background(), node, staging, false)
}

func candidate(x, y int, zone string) remote.Candidate {
	pos := shared.Position{X: x, Y: y, Zone: zone}
	return remote.Candidate{NodeID: shared.NodeIDFor(pos), Position: pos, Zone: zone, Depth: 1}
}

func existingAssignment(base string, x, y int, zone string) *remote.Assignment {
	pos := shared.Position{X: x, Y: y, Zone: zone}
	return remote.NewAssignment(base, &economy.Profile{NodeID: shared.NodeIDFor(pos), HaulerCount: 1}, 0)
}

func TestSelectBest_PicksHighestNetIncome(t *testing.T) {
	// Arrange
	a := candidate(10, 10, "W1N1")
	b := candidate(20, 20, "W1N2")
	eval := newStubEvaluator()
	eval.incomes[a.NodeID] = 800
	eval.incomes[b.NodeID] = 650
	base := &remote.Base{Name: "W2N1", Staging: shared.Position{X: 25, Y: 25, Zone: "W2N1"}, Level: 4}
	selector := remote.NewSelector(newTestStore(), eval, remote.DefaultSelectionPolicy())

	// Act
	best, err := selector.SelectBest(context.Background(), base, []remote.Candidate{b, a}, false)

	// Assert
	require.NoError(t, err)
	require.NotNil(t, best)
	assert.Equal(t, a.NodeID, best.NodeID)
	assert.Equal(t, 800.0, best.Profile.NetIncome)
	assert.Equal(t, []bool{true, true}, eval.ignored, "selection uses raw route costs")
}

func TestSelectBest_EmptyInputYieldsNil(t *testing.T) {
	base := &remote.Base{Name: "W2N1", Staging: shared.Position{X: 25, Y: 25, Zone: "W2N1"}, Level: 8}
	selector := remote.NewSelector(newTestStore(), newStubEvaluator(), remote.DefaultSelectionPolicy())

	best, err := selector.SelectBest(context.Background(), base, nil, false)

	require.NoError(t, err)
	assert.Nil(t, best)
}

func TestRank_TiesKeepInputOrder(t *testing.T) {
	a := candidate(10, 10, "W1N1")
	b := candidate(11, 11, "W1N1")
	c := candidate(12, 12, "W1N1")
	eval := newStubEvaluator()
	eval.incomes[a.NodeID] = 500
	eval.incomes[b.NodeID] = 900
	eval.incomes[c.NodeID] = 500
	base := &remote.Base{Name: "W2N1", Staging: shared.Position{X: 25, Y: 25, Zone: "W2N1"}, Level: 4}

	ranked, err := remote.NewSelector(newTestStore(), eval, remote.DefaultSelectionPolicy()).
		Rank(context.Background(), base, []remote.Candidate{a, b, c}, false)

	require.NoError(t, err)
	require.Len(t, ranked, 3)
	assert.Equal(t, b.NodeID, ranked[0].NodeID)
	assert.Equal(t, a.NodeID, ranked[1].NodeID)
	assert.Equal(t, c.NodeID, ranked[2].NodeID)
}

func TestRank_DropsUnreachableAndInvalid(t *testing.T) {
	a := candidate(10, 10, "W1N1")
	b := candidate(20, 20, "W1N2")
	c := candidate(30, 30, "W1N3")
	eval := newStubEvaluator()
	eval.incomes[a.NodeID] = 100
	eval.errs[b.NodeID] = shared.NewUnreachableError(b.NodeID.String(), "W2N1")
	eval.errs[c.NodeID] = shared.NewEvaluationError(c.NodeID.String(), shared.NewValidationError("node", "invalid zone"))
	base := &remote.Base{Name: "W2N1", Staging: shared.Position{X: 25, Y: 25, Zone: "W2N1"}, Level: 4}

	ranked, err := remote.NewSelector(newTestStore(), eval, remote.DefaultSelectionPolicy()).
		Rank(context.Background(), base, []remote.Candidate{a, b, c}, false)

	require.NoError(t, err)
	require.Len(t, ranked, 1)
	assert.Equal(t, a.NodeID, ranked[0].NodeID)
}

func TestRank_ProviderFailureFailsRanking(t *testing.T) {
	a := candidate(10, 10, "W1N1")
	c := candidate(30, 30, "W1N3")
	eval := newStubEvaluator()
	eval.incomes[a.NodeID] = 100
	eval.errs[c.NodeID] = shared.NewEvaluationError(c.NodeID.String(), errors.New("provider down"))
	base := &remote.Base{Name: "W2N1", Staging: shared.Position{X: 25, Y: 25, Zone: "W2N1"}, Level: 4}

	ranked, err := remote.NewSelector(newTestStore(), eval, remote.DefaultSelectionPolicy()).
		Rank(context.Background(), base, []remote.Candidate{a, c}, false)

	assert.Nil(t, ranked)
	var evalErr *shared.EvaluationError
	require.True(t, errors.As(err, &evalErr))
	assert.Contains(t, err.Error(), "provider down")
	assert.Contains(t, err.Error(), c.NodeID.String())
}

func TestRank_HighYieldFiltering(t *testing.T) {
	guarded := candidate(30, 12, "W4N4")
	standard := candidate(10, 10, "W3N3")

	tests := []struct {
		name             string
		level            int
		excludeHighYield bool
		existing         []*remote.Assignment
		wantGuarded      bool
	}{
		{name: "mature base without high-yield work", level: 8, wantGuarded: true},
		{name: "level below threshold", level: 6, wantGuarded: false},
		{name: "caller excludes high-yield", level: 8, excludeHighYield: true, wantGuarded: false},
		{
			name:  "one high-yield assignment leaves room",
			level: 7,
			existing: []*remote.Assignment{
				existingAssignment("W3N4", 5, 5, "W5N5"),
			},
			wantGuarded: true,
		},
		{
			name:  "cap reached",
			level: 8,
			existing: []*remote.Assignment{
				existingAssignment("W3N4", 5, 5, "W5N5"),
				existingAssignment("W3N4", 6, 6, "W5N5"),
			},
			wantGuarded: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newTestStore()
			for _, a := range tt.existing {
				store.PutOwnerOnly(a.NodeID(), a.Base())
				store.PutRecordOnly(a)
			}
			eval := newStubEvaluator()
			eval.incomes[guarded.NodeID] = 2500
			eval.incomes[standard.NodeID] = 1500
			base := &remote.Base{Name: "W3N4", Staging: shared.Position{X: 25, Y: 25, Zone: "W3N4"}, Level: tt.level}

			ranked, err := remote.NewSelector(store, eval, remote.DefaultSelectionPolicy()).
				Rank(context.Background(), base, []remote.Candidate{guarded, standard}, tt.excludeHighYield)

			require.NoError(t, err)
			ids := make([]shared.NodeID, 0, len(ranked))
			for _, r := range ranked {
				ids = append(ids, r.NodeID)
			}
			assert.Contains(t, ids, standard.NodeID)
			if tt.wantGuarded {
				assert.Equal(t, guarded.NodeID, ids[0])
			} else {
				assert.NotContains(t, ids, guarded.NodeID)
			}
		})
	}
}
