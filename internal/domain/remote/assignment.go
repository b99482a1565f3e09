package remote

import (
	"fmt"

	"github.com/andrescamacho/remoteminer-go/internal/domain/economy"
	"github.com/andrescamacho/remoteminer-go/internal/domain/shared"
)

// Unassigned marks an empty roster slot
const Unassigned = "unassigned"

// SetupStatus tracks the infrastructure build-out of an assignment
type SetupStatus string

const (
	SetupBuildingContainer SetupStatus = "BUILDING_CONTAINER"
	SetupOperational       SetupStatus = "OPERATIONAL"
)

// WorkerRole is a labor role staffed on an assignment
type WorkerRole string

const (
	RoleHarvester WorkerRole = "harvester"
	RoleHauler    WorkerRole = "hauler"
)

// Assignment is the base-local record of a claimed node: who owns it, who is
// staffed on it and how far its setup has progressed
type Assignment struct {
	nodeID         shared.NodeID
	base           string
	harvester      string
	haulers        []string
	miningPosition shared.Position
	setupStatus    SetupStatus
	netIncome      float64
	roadLength     int
	assignedAt     int
}

// AssignmentData is the flat form of an Assignment used by persistence
type AssignmentData struct {
	NodeID         shared.NodeID
	Base           string
	Harvester      string
	Haulers        []string
	MiningPosition shared.Position
	SetupStatus    SetupStatus
	NetIncome      float64
	RoadLength     int
	AssignedAt     int
}

// NewAssignment creates a fresh record with every roster slot unassigned and a
// hauler slot per hauler the profile calls for
func NewAssignment(base string, profile *economy.Profile, tick int) *Assignment {
	haulers := make([]string, profile.HaulerCount)
	for i := range haulers {
		haulers[i] = Unassigned
	}

	return &Assignment{
		nodeID:         profile.NodeID,
		base:           base,
		harvester:      Unassigned,
		haulers:        haulers,
		miningPosition: profile.MiningPosition,
		setupStatus:    SetupBuildingContainer,
		netIncome:      profile.NetIncome,
		roadLength:     profile.RoadLength,
		assignedAt:     tick,
	}
}

// ReconstructAssignment rebuilds a record from persisted data
func ReconstructAssignment(data AssignmentData) *Assignment {
	haulers := make([]string, len(data.Haulers))
	copy(haulers, data.Haulers)

	harvester := data.Harvester
	if harvester == "" {
		harvester = Unassigned
	}
	status := data.SetupStatus
	if status == "" {
		status = SetupBuildingContainer
	}

	return &Assignment{
		nodeID:         data.NodeID,
		base:           data.Base,
		harvester:      harvester,
		haulers:        haulers,
		miningPosition: data.MiningPosition,
		setupStatus:    status,
		netIncome:      data.NetIncome,
		roadLength:     data.RoadLength,
		assignedAt:     data.AssignedAt,
	}
}

// Getters

func (a *Assignment) NodeID() shared.NodeID           { return a.nodeID }
func (a *Assignment) Base() string                    { return a.base }
func (a *Assignment) Harvester() string               { return a.harvester }
func (a *Assignment) MiningPosition() shared.Position { return a.miningPosition }
func (a *Assignment) SetupStatus() SetupStatus        { return a.setupStatus }
func (a *Assignment) NetIncome() float64              { return a.netIncome }
func (a *Assignment) RoadLength() int                 { return a.roadLength }
func (a *Assignment) AssignedAt() int                 { return a.assignedAt }

// Haulers returns a copy of the hauler slots
func (a *Assignment) Haulers() []string {
	out := make([]string, len(a.haulers))
	copy(out, a.haulers)
	return out
}

// Zone returns the zone the node lies in
func (a *Assignment) Zone() string {
	return a.nodeID.Zone()
}

// HasHarvester reports whether the harvester slot is staffed
func (a *Assignment) HasHarvester() bool {
	return a.harvester != Unassigned && a.harvester != ""
}

// Data flattens the record for persistence
func (a *Assignment) Data() AssignmentData {
	return AssignmentData{
		NodeID:         a.nodeID,
		Base:           a.base,
		Harvester:      a.harvester,
		Haulers:        a.Haulers(),
		MiningPosition: a.miningPosition,
		SetupStatus:    a.setupStatus,
		NetIncome:      a.netIncome,
		RoadLength:     a.roadLength,
		AssignedAt:     a.assignedAt,
	}
}

// Roster operations

// AssignWorker staffs a slot. slot is ignored for the harvester role.
func (a *Assignment) AssignWorker(role WorkerRole, slot int, worker string) error {
	if worker == "" || worker == Unassigned {
		return shared.NewValidationError("worker", "cannot be empty")
	}

	switch role {
	case RoleHarvester:
		a.harvester = worker
	case RoleHauler:
		if slot < 0 || slot >= len(a.haulers) {
			return shared.NewValidationError("slot", fmt.Sprintf("hauler slot %d out of range [0,%d)", slot, len(a.haulers)))
		}
		a.haulers[slot] = worker
	default:
		return shared.NewValidationError("role", "unknown worker role "+string(role))
	}
	return nil
}

// VacateWorker clears every slot held by worker and reports whether any was held
func (a *Assignment) VacateWorker(worker string) bool {
	vacated := false
	if a.harvester == worker {
		a.harvester = Unassigned
		vacated = true
	}
	for i, h := range a.haulers {
		if h == worker {
			a.haulers[i] = Unassigned
			vacated = true
		}
	}
	return vacated
}

// MarkOperational transitions the setup from building to operational
func (a *Assignment) MarkOperational() error {
	if a.setupStatus != SetupBuildingContainer {
		return fmt.Errorf("cannot mark assignment operational in %s state", a.setupStatus)
	}
	a.setupStatus = SetupOperational
	return nil
}

func (a *Assignment) String() string {
	return fmt.Sprintf("Assignment[node=%s, base=%s, haulers=%d, status=%s]",
		a.nodeID, a.base, len(a.haulers), a.setupStatus)
}
