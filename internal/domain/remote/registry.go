package remote

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/andrescamacho/remoteminer-go/internal/domain/economy"
	"github.com/andrescamacho/remoteminer-go/internal/domain/routing"
	"github.com/andrescamacho/remoteminer-go/internal/domain/shared"
	"github.com/andrescamacho/remoteminer-go/internal/domain/territory"
)

// Release reasons attached to disposal requests
const (
	ReasonReleased   = "released"
	ReasonReassigned = "reassigned"
)

// Registry is the single entry point for mutating remote assignments. It keeps
// the global node->base map and the base-local records in lockstep: every write
// goes through one atomic store commit, and any divergence it observes is
// reported as an InconsistentRegistryError instead of being repaired.
type Registry struct {
	store     AssignmentStore
	bases     BaseRepository
	zones     territory.ZoneRepository
	routes    routing.RouteStore
	evaluator Evaluator
	events    WorkerEventPublisher
	clock     shared.TickClock
}

// NewRegistry creates a registry. routes is the route cache read by Reevaluate;
// when nil every reevaluation goes to the route provider. A nil clock starts a
// manual clock at tick 0.
func NewRegistry(
	store AssignmentStore,
	bases BaseRepository,
	zones territory.ZoneRepository,
	routes routing.RouteStore,
	evaluator Evaluator,
	events WorkerEventPublisher,
	clock shared.TickClock,
) *Registry {
	if clock == nil {
		clock = shared.NewManualTickClock(0)
	}
	return &Registry{
		store:     store,
		bases:     bases,
		zones:     zones,
		routes:    routes,
		evaluator: evaluator,
		events:    events,
		clock:     clock,
	}
}

// Claim reserves node for base. Claiming a node the base already holds is a
// no-op that returns the existing record. A node held by another base is
// released as part of the same commit.
//
// Failures:
//   - *shared.EvaluationError: malformed node, unknown zone, no resource node at
//     the position, unknown base, route provider failure
//   - *shared.UnreachableError: no route under the allowed zone statuses
//   - *shared.PersistenceError: the commit failed; nothing was written
//   - *shared.InconsistentRegistryError: global and local records disagree
func (r *Registry) Claim(ctx context.Context, nodeID shared.NodeID, baseName string) (*Assignment, error) {
	pos, err := LocateNode(ctx, r.zones, nodeID)
	if err != nil {
		return nil, err
	}

	base, err := r.bases.FindByName(ctx, baseName)
	if err != nil {
		return nil, shared.NewEvaluationError(nodeID.String(), fmt.Errorf("failed to load base %s: %w", baseName, err))
	}
	if base == nil {
		return nil, shared.NewEvaluationError(nodeID.String(), fmt.Errorf("unknown base %s", baseName))
	}

	owner, err := r.store.OwnerOf(ctx, nodeID)
	if err != nil {
		return nil, shared.NewPersistenceError("read registry", err)
	}

	var prior *Assignment
	switch owner {
	case base.Name:
		existing, err := r.requireRecord(ctx, owner, nodeID)
		if err != nil {
			return nil, err
		}
		return existing, nil
	case "":
		if err := r.requireNoOrphan(ctx, nodeID); err != nil {
			return nil, err
		}
	default:
		prior, err = r.requireRecord(ctx, owner, nodeID)
		if err != nil {
			return nil, err
		}
	}

	profile, err := r.evaluator.Evaluate(ctx, pos, base.Staging, false)
	if err != nil {
		return nil, err
	}

	metadata, err := r.store.FindZoneMetadata(ctx, pos.Zone)
	if err != nil {
		return nil, shared.NewPersistenceError("read zone metadata", err)
	}
	var newMetadata *ZoneMetadata
	if metadata == nil {
		newMetadata = NewZoneMetadata(pos.Zone, r.clock.Tick())
	}

	assignment := NewAssignment(base.Name, profile, r.clock.Tick())
	plan := &ClaimPlan{
		Release:      prior,
		Route:        profile.Route,
		Assignment:   assignment,
		ZoneMetadata: newMetadata,
	}

	if err := r.store.CommitClaim(ctx, plan); err != nil {
		return nil, asPersistenceError("commit claim", err)
	}

	if prior != nil {
		r.disposeHarvester(prior, ReasonReassigned)
	}

	return assignment, nil
}

// Release drops the claim on node. Releasing an unassigned node is a no-op.
// The incumbent harvester, if any, is handed to the execution layer for
// disposal. Zone metadata is kept.
func (r *Registry) Release(ctx context.Context, nodeID shared.NodeID) error {
	owner, err := r.store.OwnerOf(ctx, nodeID)
	if err != nil {
		return shared.NewPersistenceError("read registry", err)
	}
	if owner == "" {
		return nil
	}

	assignment, err := r.requireRecord(ctx, owner, nodeID)
	if err != nil {
		return err
	}

	if err := r.store.CommitRelease(ctx, owner, nodeID); err != nil {
		return asPersistenceError("commit release", err)
	}

	r.disposeHarvester(assignment, ReasonReleased)
	return nil
}

// OwnerOf returns the base holding node, or "" when it is unassigned
func (r *Registry) OwnerOf(ctx context.Context, nodeID shared.NodeID) (string, error) {
	owner, err := r.store.OwnerOf(ctx, nodeID)
	if err != nil {
		return "", shared.NewPersistenceError("read registry", err)
	}
	return owner, nil
}

// Reevaluation compares an assignment's record with a fresh profile
type Reevaluation struct {
	Assignment            *Assignment
	Profile               *economy.Profile
	NetIncomeDelta        float64
	HaulerDelta           int
	MiningPositionChanged bool
	// FromCache is set when the profile was priced from the stored route
	FromCache bool
}

// Reevaluate reruns the economic simulation for an existing assignment against
// its stored route from the base staging point to the mining position. The
// route provider is only consulted when the route cache has no entry. It does
// not modify the registry; acting on the outcome is the caller's decision.
func (r *Registry) Reevaluate(ctx context.Context, nodeID shared.NodeID) (*Reevaluation, error) {
	return r.reevaluate(ctx, nodeID, false)
}

// Recompute is Reevaluate with a fresh route from the provider, with stored
// infrastructure discounted. It picks up roads built and zones lost since the
// claim. The route cache is left untouched.
func (r *Registry) Recompute(ctx context.Context, nodeID shared.NodeID) (*Reevaluation, error) {
	return r.reevaluate(ctx, nodeID, true)
}

func (r *Registry) reevaluate(ctx context.Context, nodeID shared.NodeID, recompute bool) (*Reevaluation, error) {
	owner, err := r.store.OwnerOf(ctx, nodeID)
	if err != nil {
		return nil, shared.NewPersistenceError("read registry", err)
	}
	if owner == "" {
		return nil, shared.NewValidationError("node", fmt.Sprintf("node %s is not assigned", nodeID))
	}

	assignment, err := r.requireRecord(ctx, owner, nodeID)
	if err != nil {
		return nil, err
	}

	base, err := r.bases.FindByName(ctx, owner)
	if err != nil || base == nil {
		return nil, shared.NewEvaluationError(nodeID.String(), fmt.Errorf("owning base %s unavailable: %v", owner, err))
	}

	pos, err := nodeID.Position()
	if err != nil {
		return nil, shared.NewEvaluationError(nodeID.String(), err)
	}

	var profile *economy.Profile
	fromCache := false
	if !recompute && r.routes != nil {
		stored, err := r.routes.FindRoute(ctx, base.Staging, assignment.MiningPosition())
		if err != nil {
			return nil, shared.NewPersistenceError("read route", err)
		}
		if stored != nil {
			profile, err = r.evaluator.EvaluateRoute(pos, base.Staging, stored)
			if err != nil {
				return nil, err
			}
			fromCache = true
		}
	}
	if profile == nil {
		profile, err = r.evaluator.Evaluate(ctx, pos, base.Staging, false)
		if err != nil {
			return nil, err
		}
	}

	return &Reevaluation{
		Assignment:            assignment,
		Profile:               profile,
		NetIncomeDelta:        profile.NetIncome - assignment.NetIncome(),
		HaulerDelta:           profile.HaulerCount - len(assignment.Haulers()),
		MiningPositionChanged: profile.MiningPosition != assignment.MiningPosition(),
		FromCache:             fromCache,
	}, nil
}

// AssignWorker staffs a roster slot of an existing assignment
func (r *Registry) AssignWorker(ctx context.Context, nodeID shared.NodeID, role WorkerRole, slot int, worker string) (*Assignment, error) {
	return r.updateRecord(ctx, nodeID, func(a *Assignment) error {
		return a.AssignWorker(role, slot, worker)
	})
}

// VacateWorker frees every slot held by a worker that died or was retasked
func (r *Registry) VacateWorker(ctx context.Context, nodeID shared.NodeID, worker string) (*Assignment, error) {
	return r.updateRecord(ctx, nodeID, func(a *Assignment) error {
		if !a.VacateWorker(worker) {
			return shared.NewValidationError("worker", fmt.Sprintf("%s holds no slot on %s", worker, nodeID))
		}
		return nil
	})
}

// MarkOperational records that the node's container is built
func (r *Registry) MarkOperational(ctx context.Context, nodeID shared.NodeID) (*Assignment, error) {
	return r.updateRecord(ctx, nodeID, func(a *Assignment) error {
		return a.MarkOperational()
	})
}

// ObserveReservation feeds reservation ticks into the zone's metadata
func (r *Registry) ObserveReservation(ctx context.Context, zone string, ticksToEnd int) (*ZoneMetadata, bool, error) {
	metadata, err := r.store.FindZoneMetadata(ctx, zone)
	if err != nil {
		return nil, false, shared.NewPersistenceError("read zone metadata", err)
	}
	if metadata == nil {
		return nil, false, shared.NewValidationError("zone", "no metadata for zone "+zone)
	}

	changed := metadata.ObserveReservation(ticksToEnd)
	if changed {
		if err := r.store.SaveZoneMetadata(ctx, metadata); err != nil {
			return nil, false, shared.NewPersistenceError("save zone metadata", err)
		}
	}
	return metadata, changed, nil
}

// ObserveThreat records the threat level last seen in a zone
func (r *Registry) ObserveThreat(ctx context.Context, zone string, level ThreatLevel) (*ZoneMetadata, bool, error) {
	if !level.IsValid() {
		return nil, false, shared.NewValidationError("threat", "unknown threat level "+string(level))
	}

	metadata, err := r.store.FindZoneMetadata(ctx, zone)
	if err != nil {
		return nil, false, shared.NewPersistenceError("read zone metadata", err)
	}
	if metadata == nil {
		return nil, false, shared.NewValidationError("zone", "no metadata for zone "+zone)
	}

	changed := metadata.SetThreat(level)
	if changed {
		if err := r.store.SaveZoneMetadata(ctx, metadata); err != nil {
			return nil, false, shared.NewPersistenceError("save zone metadata", err)
		}
	}
	return metadata, changed, nil
}

// VerifyConsistency audits the whole registry: every global entry must have a
// matching record under its base and every record must be in the global map
func (r *Registry) VerifyConsistency(ctx context.Context) error {
	owners, err := r.store.Owners(ctx)
	if err != nil {
		return shared.NewPersistenceError("read registry", err)
	}
	records, err := r.store.ListAll(ctx)
	if err != nil {
		return shared.NewPersistenceError("read assignments", err)
	}

	var problems []error
	seen := make(map[shared.NodeID]string, len(records))
	for _, a := range records {
		if other, dup := seen[a.NodeID()]; dup {
			problems = append(problems, shared.NewInconsistentRegistryError(a.NodeID().String(), a.Base(),
				"also recorded under base "+other))
			continue
		}
		seen[a.NodeID()] = a.Base()

		owner, ok := owners[a.NodeID()]
		switch {
		case !ok:
			problems = append(problems, shared.NewInconsistentRegistryError(a.NodeID().String(), a.Base(),
				"base record exists without a registry entry"))
		case owner != a.Base():
			problems = append(problems, shared.NewInconsistentRegistryError(a.NodeID().String(), a.Base(),
				"registry names base "+owner))
		}
	}

	for nodeID, owner := range owners {
		if _, ok := seen[nodeID]; !ok {
			problems = append(problems, shared.NewInconsistentRegistryError(nodeID.String(), owner,
				"registry entry has no base record"))
		}
	}

	return errors.Join(problems...)
}

func (r *Registry) updateRecord(ctx context.Context, nodeID shared.NodeID, mutate func(*Assignment) error) (*Assignment, error) {
	owner, err := r.store.OwnerOf(ctx, nodeID)
	if err != nil {
		return nil, shared.NewPersistenceError("read registry", err)
	}
	if owner == "" {
		return nil, shared.NewValidationError("node", fmt.Sprintf("node %s is not assigned", nodeID))
	}

	assignment, err := r.requireRecord(ctx, owner, nodeID)
	if err != nil {
		return nil, err
	}
	if err := mutate(assignment); err != nil {
		return nil, err
	}
	if err := r.store.UpdateAssignment(ctx, assignment); err != nil {
		return nil, shared.NewPersistenceError("update assignment", err)
	}
	return assignment, nil
}

// requireNoOrphan fails when any base holds a record for a node that has no
// global entry
func (r *Registry) requireNoOrphan(ctx context.Context, nodeID shared.NodeID) error {
	records, err := r.store.ListAll(ctx)
	if err != nil {
		return shared.NewPersistenceError("read assignments", err)
	}
	for _, a := range records {
		if a.NodeID() == nodeID {
			return shared.NewInconsistentRegistryError(nodeID.String(), a.Base(), "base record exists without a registry entry")
		}
	}
	return nil
}

// requireRecord loads the base-local record behind a global entry
func (r *Registry) requireRecord(ctx context.Context, owner string, nodeID shared.NodeID) (*Assignment, error) {
	record, err := r.store.FindAssignment(ctx, owner, nodeID)
	if err != nil {
		return nil, shared.NewPersistenceError("read assignment", err)
	}
	if record == nil {
		return nil, shared.NewInconsistentRegistryError(nodeID.String(), owner, "registry entry has no base record")
	}
	return record, nil
}

func (r *Registry) disposeHarvester(a *Assignment, reason string) {
	if r.events == nil || !a.HasHarvester() {
		return
	}
	r.events.PublishDisposal(WorkerDisposalRequested{
		EventID: uuid.New().String(),
		Worker:  a.Harvester(),
		NodeID:  a.NodeID(),
		Base:    a.Base(),
		Reason:  reason,
		Tick:    r.clock.Tick(),
	})
}

func asPersistenceError(operation string, err error) error {
	var persistErr *shared.PersistenceError
	var inconsistent *shared.InconsistentRegistryError
	if errors.As(err, &persistErr) || errors.As(err, &inconsistent) {
		return err
	}
	return shared.NewPersistenceError(operation, err)
}
