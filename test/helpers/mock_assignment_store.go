package helpers

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/andrescamacho/remoteminer-go/internal/domain/remote"
	"github.com/andrescamacho/remoteminer-go/internal/domain/routing"
	"github.com/andrescamacho/remoteminer-go/internal/domain/shared"
)

// ErrInjectedCommitFailure is returned by MockAssignmentStore when commits are set to fail
var ErrInjectedCommitFailure = errors.New("injected commit failure")

// MockAssignmentStore is an in-memory remote.AssignmentStore that doubles as
// the routing.RouteStore the claims write into. Commits apply all-or-nothing;
// FailCommits makes them fail without touching state.
type MockAssignmentStore struct {
	mu sync.RWMutex

	owners   map[shared.NodeID]string
	records  map[string]map[shared.NodeID]remote.AssignmentData
	metadata map[string]remote.ZoneMetadata
	routes   map[string]*routing.Route

	failCommits bool
	failNodes   map[shared.NodeID]bool
	commits     int
}

// NewMockAssignmentStore creates an empty store
func NewMockAssignmentStore() *MockAssignmentStore {
	return &MockAssignmentStore{
		owners:    make(map[shared.NodeID]string),
		records:   make(map[string]map[shared.NodeID]remote.AssignmentData),
		metadata:  make(map[string]remote.ZoneMetadata),
		routes:    make(map[string]*routing.Route),
		failNodes: make(map[shared.NodeID]bool),
	}
}

// FailCommits toggles commit failure injection
func (m *MockAssignmentStore) FailCommits(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failCommits = fail
}

// FailCommitsFor makes claim commits of the given nodes fail
func (m *MockAssignmentStore) FailCommitsFor(nodeIDs ...shared.NodeID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range nodeIDs {
		m.failNodes[id] = true
	}
}

// Commits returns how many commits succeeded
func (m *MockAssignmentStore) Commits() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.commits
}

// Routes returns the persisted routes keyed by routing.Key
func (m *MockAssignmentStore) Routes() map[string]*routing.Route {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]*routing.Route, len(m.routes))
	for k, v := range m.routes {
		out[k] = v
	}
	return out
}

// SaveRoute implements routing.RouteStore over the routes written by claims
func (m *MockAssignmentStore) SaveRoute(ctx context.Context, route *routing.Route) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.routes[routing.Key(route.Origin, route.Destination)] = route
	return nil
}

// FindRoute implements routing.RouteStore
func (m *MockAssignmentStore) FindRoute(ctx context.Context, origin, destination shared.Position) (*routing.Route, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.routes[routing.Key(origin, destination)], nil
}

// RoadTiles implements routing.RouteStore
func (m *MockAssignmentStore) RoadTiles(ctx context.Context, zone string) ([]shared.Position, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var tiles []shared.Position
	for _, r := range m.routes {
		tiles = append(tiles, routing.SegmentsByZone(r.Positions)[zone]...)
	}
	return tiles, nil
}

// DropRoutes empties the route cache
func (m *MockAssignmentStore) DropRoutes() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.routes = make(map[string]*routing.Route)
}

// PutOwnerOnly writes a global entry without a base record (corruption)
func (m *MockAssignmentStore) PutOwnerOnly(nodeID shared.NodeID, base string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.owners[nodeID] = base
}

// PutRecordOnly writes a base record without a global entry (corruption)
func (m *MockAssignmentStore) PutRecordOnly(a *remote.Assignment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.putRecord(a.Data())
}

func (m *MockAssignmentStore) OwnerOf(ctx context.Context, nodeID shared.NodeID) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.owners[nodeID], nil
}

func (m *MockAssignmentStore) Owners(ctx context.Context) (map[shared.NodeID]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[shared.NodeID]string, len(m.owners))
	for k, v := range m.owners {
		out[k] = v
	}
	return out, nil
}

func (m *MockAssignmentStore) FindAssignment(ctx context.Context, base string, nodeID shared.NodeID) (*remote.Assignment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.records[base][nodeID]
	if !ok {
		return nil, nil
	}
	return remote.ReconstructAssignment(data), nil
}

func (m *MockAssignmentStore) ListByBase(ctx context.Context, base string) ([]*remote.Assignment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return sortedAssignments(m.records[base]), nil
}

func (m *MockAssignmentStore) ListAll(ctx context.Context) ([]*remote.Assignment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*remote.Assignment
	bases := make([]string, 0, len(m.records))
	for b := range m.records {
		bases = append(bases, b)
	}
	sort.Strings(bases)
	for _, b := range bases {
		out = append(out, sortedAssignments(m.records[b])...)
	}
	return out, nil
}

func (m *MockAssignmentStore) UpdateAssignment(ctx context.Context, a *remote.Assignment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[a.Base()][a.NodeID()]; !ok {
		return errors.New("assignment not found")
	}
	m.putRecord(a.Data())
	return nil
}

func (m *MockAssignmentStore) FindZoneMetadata(ctx context.Context, zone string) (*remote.ZoneMetadata, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	md, ok := m.metadata[zone]
	if !ok {
		return nil, nil
	}
	return &md, nil
}

func (m *MockAssignmentStore) SaveZoneMetadata(ctx context.Context, md *remote.ZoneMetadata) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.metadata[md.Zone] = *md
	return nil
}

func (m *MockAssignmentStore) CommitClaim(ctx context.Context, plan *remote.ClaimPlan) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failCommits || m.failNodes[plan.Assignment.NodeID()] {
		return ErrInjectedCommitFailure
	}

	if plan.Release != nil {
		m.deleteRecord(plan.Release.Base(), plan.Release.NodeID())
		delete(m.owners, plan.Release.NodeID())
	}
	if plan.Route != nil {
		m.routes[routing.Key(plan.Route.Origin, plan.Route.Destination)] = plan.Route
	}
	a := plan.Assignment
	m.owners[a.NodeID()] = a.Base()
	m.putRecord(a.Data())
	if plan.ZoneMetadata != nil {
		if _, exists := m.metadata[plan.ZoneMetadata.Zone]; !exists {
			m.metadata[plan.ZoneMetadata.Zone] = *plan.ZoneMetadata
		}
	}

	m.commits++
	return nil
}

func (m *MockAssignmentStore) CommitRelease(ctx context.Context, base string, nodeID shared.NodeID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failCommits {
		return ErrInjectedCommitFailure
	}

	m.deleteRecord(base, nodeID)
	delete(m.owners, nodeID)
	m.commits++
	return nil
}

func (m *MockAssignmentStore) putRecord(data remote.AssignmentData) {
	if m.records[data.Base] == nil {
		m.records[data.Base] = make(map[shared.NodeID]remote.AssignmentData)
	}
	m.records[data.Base][data.NodeID] = data
}

func (m *MockAssignmentStore) deleteRecord(base string, nodeID shared.NodeID) {
	delete(m.records[base], nodeID)
	if len(m.records[base]) == 0 {
		delete(m.records, base)
	}
}

func sortedAssignments(records map[shared.NodeID]remote.AssignmentData) []*remote.Assignment {
	ids := make([]string, 0, len(records))
	for id := range records {
		ids = append(ids, string(id))
	}
	sort.Strings(ids)
	out := make([]*remote.Assignment, 0, len(ids))
	for _, id := range ids {
		out = append(out, remote.ReconstructAssignment(records[shared.NodeID(id)]))
	}
	return out
}

// RecordingPublisher captures disposal requests
type RecordingPublisher struct {
	mu     sync.Mutex
	events []remote.WorkerDisposalRequested
}

// NewRecordingPublisher creates an empty recorder
func NewRecordingPublisher() *RecordingPublisher {
	return &RecordingPublisher{}
}

func (p *RecordingPublisher) PublishDisposal(event remote.WorkerDisposalRequested) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

// Events returns a copy of the captured requests
func (p *RecordingPublisher) Events() []remote.WorkerDisposalRequested {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]remote.WorkerDisposalRequested, len(p.events))
	copy(out, p.events)
	return out
}
