package remote

import (
	"context"
	"fmt"

	"github.com/andrescamacho/remoteminer-go/internal/domain/shared"
	"github.com/andrescamacho/remoteminer-go/internal/domain/territory"
)

// DefaultSearchDepth is how many zone hops away from a base remotes are sought
const DefaultSearchDepth = 3

// TraversableStatuses are the statuses a zone needs to be admitted to the search
var TraversableStatuses = []territory.Status{
	territory.StatusVacant,
	territory.StatusReservedMe,
	territory.StatusReservedHostile,
}

// Candidate is an unassigned node found by the reachability search
type Candidate struct {
	NodeID   shared.NodeID
	Position shared.Position
	Zone     string
	Depth    int
}

// IsHighYield reports whether the candidate lies in a guarded or resource-rich zone
func (c Candidate) IsHighYield() bool {
	return territory.IsHighYieldZone(c.Zone)
}

// CandidateFinder runs the bounded breadth-first zone search
type CandidateFinder struct {
	zones    territory.ZoneRepository
	store    AssignmentStore
	topology territory.Topology
	maxDepth int
	admitted territory.StatusSet
}

// NewCandidateFinder creates a finder. maxDepth <= 0 falls back to DefaultSearchDepth.
func NewCandidateFinder(
	zones territory.ZoneRepository,
	store AssignmentStore,
	topology territory.Topology,
	maxDepth int,
) *CandidateFinder {
	if maxDepth <= 0 {
		maxDepth = DefaultSearchDepth
	}
	return &CandidateFinder{
		zones:    zones,
		store:    store,
		topology: topology,
		maxDepth: maxDepth,
		admitted: territory.NewStatusSet(TraversableStatuses...),
	}
}

// FindCandidates returns every unassigned node in zones reachable from the base
// within maxDepth hops through admitted zones. Results come depth-major, then in
// zone discovery order; callers must not depend on it.
func (f *CandidateFinder) FindCandidates(ctx context.Context, base *Base) ([]Candidate, error) {
	if base == nil {
		return nil, shared.NewValidationError("base", "cannot be nil")
	}

	depths, err := f.reachableZones(ctx, base.Name)
	if err != nil {
		return nil, err
	}

	owners, err := f.store.Owners(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load assignment registry: %w", err)
	}

	candidates := []Candidate{}
	for depth, zones := range depths {
		for _, zone := range zones {
			for _, node := range zone.Nodes {
				id := shared.NodeIDFor(node)
				if _, taken := owners[id]; taken {
					continue
				}
				candidates = append(candidates, Candidate{
					NodeID:   id,
					Position: node,
					Zone:     zone.Name,
					Depth:    depth + 1,
				})
			}
		}
	}

	return candidates, nil
}

// reachableZones returns the admitted zones per depth (index 0 is depth 1).
// A zone is admitted once, at the shallowest depth it is found.
func (f *CandidateFinder) reachableZones(ctx context.Context, home string) ([][]*territory.Zone, error) {
	visited := map[string]bool{home: true}
	frontier := []string{home}
	depths := make([][]*territory.Zone, 0, f.maxDepth)

	for depth := 1; depth <= f.maxDepth && len(frontier) > 0; depth++ {
		var admitted []*territory.Zone
		var next []string

		for _, from := range frontier {
			for _, dir := range f.topology.ExitDirections(from) {
				name := territory.AdjacentZone(from, dir)
				if visited[name] {
					continue
				}
				visited[name] = true

				zone, err := f.zones.FindByName(ctx, name)
				if err != nil {
					return nil, fmt.Errorf("failed to load zone %s: %w", name, err)
				}
				if !f.isAdmitted(zone) {
					continue
				}

				admitted = append(admitted, zone)
				next = append(next, name)
			}
		}

		depths = append(depths, admitted)
		frontier = next
	}

	return depths, nil
}

func (f *CandidateFinder) isAdmitted(zone *territory.Zone) bool {
	return zone != nil && !zone.Hostile && f.admitted.Has(zone.Status)
}
