package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/andrescamacho/remoteminer-go/internal/domain/remote"
	"github.com/andrescamacho/remoteminer-go/internal/domain/shared"
)

// GormAssignmentStore implements remote.AssignmentStore. The global map lives
// in remote_assignments, base-local records in remote_sources.
type GormAssignmentStore struct {
	db *gorm.DB
}

// NewGormAssignmentStore creates a new GORM assignment store
func NewGormAssignmentStore(db *gorm.DB) *GormAssignmentStore {
	return &GormAssignmentStore{db: db}
}

// OwnerOf returns the base holding nodeID, or "" when unassigned
func (s *GormAssignmentStore) OwnerOf(ctx context.Context, nodeID shared.NodeID) (string, error) {
	var model RemoteAssignmentModel
	err := s.db.WithContext(ctx).Where("node_id = ?", nodeID.String()).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read owner of %s: %w", nodeID, err)
	}
	return model.Base, nil
}

// Owners returns the global map
func (s *GormAssignmentStore) Owners(ctx context.Context) (map[shared.NodeID]string, error) {
	var models []RemoteAssignmentModel
	if err := s.db.WithContext(ctx).Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to read assignment registry: %w", err)
	}

	owners := make(map[shared.NodeID]string, len(models))
	for _, m := range models {
		owners[shared.NodeID(m.NodeID)] = m.Base
	}
	return owners, nil
}

// FindAssignment retrieves a base-local record
func (s *GormAssignmentStore) FindAssignment(ctx context.Context, base string, nodeID shared.NodeID) (*remote.Assignment, error) {
	var model RemoteSourceModel
	err := s.db.WithContext(ctx).
		Where("base = ? AND node_id = ?", base, nodeID.String()).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find assignment %s of %s: %w", nodeID, base, err)
	}
	return sourceModelToDomain(&model)
}

// ListByBase returns the records of one base ordered by node id
func (s *GormAssignmentStore) ListByBase(ctx context.Context, base string) ([]*remote.Assignment, error) {
	var models []RemoteSourceModel
	err := s.db.WithContext(ctx).Where("base = ?", base).Order("node_id").Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments of %s: %w", base, err)
	}
	return sourceModelsToDomain(models)
}

// ListAll returns every base-local record
func (s *GormAssignmentStore) ListAll(ctx context.Context) ([]*remote.Assignment, error) {
	var models []RemoteSourceModel
	if err := s.db.WithContext(ctx).Order("base, node_id").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}
	return sourceModelsToDomain(models)
}

// UpdateAssignment saves roster and setup changes of an existing record
func (s *GormAssignmentStore) UpdateAssignment(ctx context.Context, a *remote.Assignment) error {
	model, err := sourceDomainToModel(a)
	if err != nil {
		return err
	}

	result := s.db.WithContext(ctx).
		Model(&RemoteSourceModel{}).
		Where("base = ? AND node_id = ?", model.Base, model.NodeID).
		Updates(map[string]interface{}{
			"harvester":    model.Harvester,
			"haulers":      model.Haulers,
			"setup_status": model.SetupStatus,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update assignment %s: %w", model.NodeID, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("assignment %s of %s not found", model.NodeID, model.Base)
	}
	return nil
}

// FindZoneMetadata retrieves the metadata of a zone
func (s *GormAssignmentStore) FindZoneMetadata(ctx context.Context, zone string) (*remote.ZoneMetadata, error) {
	var model RemoteZoneModel
	err := s.db.WithContext(ctx).Where("zone = ?", zone).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find metadata of %s: %w", zone, err)
	}
	return zoneModelToDomain(&model), nil
}

// SaveZoneMetadata upserts zone metadata
func (s *GormAssignmentStore) SaveZoneMetadata(ctx context.Context, md *remote.ZoneMetadata) error {
	model := zoneDomainToModel(md)
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "zone"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"threat_level", "reservation_state", "reserver",
				"keeper_exterminator", "mineral_miner", "mineral_available_at",
			}),
		}).
		Create(model).Error
	if err != nil {
		return fmt.Errorf("failed to save metadata of %s: %w", md.Zone, err)
	}
	return nil
}

// CommitClaim writes a claim plan in a single transaction: the prior claim is
// removed, the route upserted, the global entry and base record inserted and
// the zone metadata inserted unless present
func (s *GormAssignmentStore) CommitClaim(ctx context.Context, plan *remote.ClaimPlan) error {
	source, err := sourceDomainToModel(plan.Assignment)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if plan.Release != nil {
			if err := deleteClaim(tx, plan.Release.Base(), plan.Release.NodeID()); err != nil {
				return err
			}
		}

		if plan.Route != nil {
			if err := saveRoute(tx, plan.Route); err != nil {
				return err
			}
		}

		entry := &RemoteAssignmentModel{
			NodeID:    source.NodeID,
			Base:      source.Base,
			CreatedAt: time.Now(),
		}
		if err := tx.Create(entry).Error; err != nil {
			return fmt.Errorf("failed to insert registry entry %s: %w", source.NodeID, err)
		}
		if err := tx.Create(source).Error; err != nil {
			return fmt.Errorf("failed to insert assignment %s: %w", source.NodeID, err)
		}

		if plan.ZoneMetadata != nil {
			err := tx.Clauses(clause.OnConflict{DoNothing: true}).
				Create(zoneDomainToModel(plan.ZoneMetadata)).Error
			if err != nil {
				return fmt.Errorf("failed to insert metadata of %s: %w", plan.ZoneMetadata.Zone, err)
			}
		}

		return nil
	})
}

// CommitRelease deletes the base record and the global entry together
func (s *GormAssignmentStore) CommitRelease(ctx context.Context, base string, nodeID shared.NodeID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return deleteClaim(tx, base, nodeID)
	})
}

func deleteClaim(tx *gorm.DB, base string, nodeID shared.NodeID) error {
	if err := tx.Where("base = ? AND node_id = ?", base, nodeID.String()).
		Delete(&RemoteSourceModel{}).Error; err != nil {
		return fmt.Errorf("failed to delete assignment %s of %s: %w", nodeID, base, err)
	}
	if err := tx.Where("node_id = ?", nodeID.String()).
		Delete(&RemoteAssignmentModel{}).Error; err != nil {
		return fmt.Errorf("failed to delete registry entry %s: %w", nodeID, err)
	}
	return nil
}

func sourceModelsToDomain(models []RemoteSourceModel) ([]*remote.Assignment, error) {
	out := make([]*remote.Assignment, 0, len(models))
	for i := range models {
		a, err := sourceModelToDomain(&models[i])
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

func sourceModelToDomain(model *RemoteSourceModel) (*remote.Assignment, error) {
	var haulers []string
	if model.Haulers != "" {
		if err := json.Unmarshal([]byte(model.Haulers), &haulers); err != nil {
			return nil, fmt.Errorf("failed to unmarshal haulers of %s: %w", model.NodeID, err)
		}
	}

	return remote.ReconstructAssignment(remote.AssignmentData{
		NodeID:         shared.NodeID(model.NodeID),
		Base:           model.Base,
		Harvester:      model.Harvester,
		Haulers:        haulers,
		MiningPosition: shared.Position{X: model.MiningX, Y: model.MiningY, Zone: model.MiningZone},
		SetupStatus:    remote.SetupStatus(model.SetupStatus),
		NetIncome:      model.NetIncome,
		RoadLength:     model.RoadLength,
		AssignedAt:     model.AssignedAt,
	}), nil
}

func sourceDomainToModel(a *remote.Assignment) (*RemoteSourceModel, error) {
	data := a.Data()
	haulersJSON, err := json.Marshal(data.Haulers)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal haulers: %w", err)
	}

	return &RemoteSourceModel{
		Base:        data.Base,
		NodeID:      data.NodeID.String(),
		Harvester:   data.Harvester,
		Haulers:     string(haulersJSON),
		MiningX:     data.MiningPosition.X,
		MiningY:     data.MiningPosition.Y,
		MiningZone:  data.MiningPosition.Zone,
		SetupStatus: string(data.SetupStatus),
		NetIncome:   data.NetIncome,
		RoadLength:  data.RoadLength,
		AssignedAt:  data.AssignedAt,
	}, nil
}

func zoneModelToDomain(model *RemoteZoneModel) *remote.ZoneMetadata {
	md := &remote.ZoneMetadata{
		Zone:               model.Zone,
		ThreatLevel:        remote.ThreatLevel(model.ThreatLevel),
		Reserver:           model.Reserver,
		KeeperExterminator: model.KeeperExterminator,
		MineralMiner:       model.MineralMiner,
		MineralAvailableAt: model.MineralAvailableAt,
	}
	if model.ReservationState != nil {
		state := remote.ReservationStatus(*model.ReservationState)
		md.ReservationState = &state
	}
	return md
}

func zoneDomainToModel(md *remote.ZoneMetadata) *RemoteZoneModel {
	model := &RemoteZoneModel{
		Zone:               md.Zone,
		ThreatLevel:        string(md.ThreatLevel),
		Reserver:           md.Reserver,
		KeeperExterminator: md.KeeperExterminator,
		MineralMiner:       md.MineralMiner,
		MineralAvailableAt: md.MineralAvailableAt,
	}
	if md.ReservationState != nil {
		state := string(*md.ReservationState)
		model.ReservationState = &state
	}
	return model
}
