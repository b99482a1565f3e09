package remote

import (
	"context"

	"github.com/andrescamacho/remoteminer-go/internal/domain/economy"
	"github.com/andrescamacho/remoteminer-go/internal/domain/routing"
	"github.com/andrescamacho/remoteminer-go/internal/domain/shared"
)

// Evaluator produces the economic profile of a node for a base staging point
type Evaluator interface {
	Evaluate(ctx context.Context, node shared.Position, staging shared.Position, ignoreInfrastructure bool) (*economy.Profile, error)
	// EvaluateRoute prices a road taken from the route cache
	EvaluateRoute(node shared.Position, staging shared.Position, road *routing.Route) (*economy.Profile, error)
}

// ClaimPlan is everything a claim writes. The store commits it as one unit.
type ClaimPlan struct {
	// Release is a prior claim on the same node that is dropped first (may be nil)
	Release *Assignment
	// Route is persisted into the shared route cache
	Route *routing.Route
	// Assignment goes into the global map and the owning base's records
	Assignment *Assignment
	// ZoneMetadata is inserted only if the zone has none yet (may be nil)
	ZoneMetadata *ZoneMetadata
}

// AssignmentStore persists the global node->base map, each base's assignment
// records and zone metadata. CommitClaim and CommitRelease are atomic.
type AssignmentStore interface {
	// OwnerOf returns the owning base or "" when the node is unassigned
	OwnerOf(ctx context.Context, nodeID shared.NodeID) (string, error)

	// Owners returns the entire global map
	Owners(ctx context.Context) (map[shared.NodeID]string, error)

	// FindAssignment returns nil, nil when the base holds no record for the node
	FindAssignment(ctx context.Context, base string, nodeID shared.NodeID) (*Assignment, error)

	ListByBase(ctx context.Context, base string) ([]*Assignment, error)

	ListAll(ctx context.Context) ([]*Assignment, error)

	// UpdateAssignment saves roster/setup changes of an existing record
	UpdateAssignment(ctx context.Context, assignment *Assignment) error

	// FindZoneMetadata returns nil, nil when the zone has no metadata
	FindZoneMetadata(ctx context.Context, zone string) (*ZoneMetadata, error)

	SaveZoneMetadata(ctx context.Context, metadata *ZoneMetadata) error

	CommitClaim(ctx context.Context, plan *ClaimPlan) error

	// CommitRelease deletes the base-local record and the global entry together
	CommitRelease(ctx context.Context, base string, nodeID shared.NodeID) error
}

// WorkerDisposalRequested asks the execution layer to dispose of a worker
// whose assignment was released
type WorkerDisposalRequested struct {
	EventID string
	Worker  string
	NodeID  shared.NodeID
	Base    string
	Reason  string
	Tick    int
}

// WorkerEventPublisher delivers disposal requests; fire-and-forget
type WorkerEventPublisher interface {
	PublishDisposal(event WorkerDisposalRequested)
}
