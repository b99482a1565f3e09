package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/andrescamacho/remoteminer-go/internal/domain/shared"
	"github.com/andrescamacho/remoteminer-go/internal/domain/territory"
)

// GormZoneRepository implements territory.ZoneRepository using GORM
type GormZoneRepository struct {
	db *gorm.DB
}

// NewGormZoneRepository creates a new GORM zone repository
func NewGormZoneRepository(db *gorm.DB) *GormZoneRepository {
	return &GormZoneRepository{db: db}
}

// FindByName retrieves a zone, returning nil when it was never observed
func (r *GormZoneRepository) FindByName(ctx context.Context, name string) (*territory.Zone, error) {
	var model ZoneModel
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find zone %s: %w", name, err)
	}
	return r.modelToDomain(&model)
}

// Save upserts a zone
func (r *GormZoneRepository) Save(ctx context.Context, zone *territory.Zone) error {
	model, err := r.domainToModel(zone)
	if err != nil {
		return err
	}

	err = r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"status", "hostile", "nodes", "terrain", "updated_at"}),
		}).
		Create(model).Error
	if err != nil {
		return fmt.Errorf("failed to save zone %s: %w", zone.Name, err)
	}
	return nil
}

// List returns every known zone ordered by name
func (r *GormZoneRepository) List(ctx context.Context) ([]*territory.Zone, error) {
	var models []ZoneModel
	if err := r.db.WithContext(ctx).Order("name").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list zones: %w", err)
	}

	zones := make([]*territory.Zone, 0, len(models))
	for i := range models {
		z, err := r.modelToDomain(&models[i])
		if err != nil {
			return nil, err
		}
		zones = append(zones, z)
	}
	return zones, nil
}

func (r *GormZoneRepository) modelToDomain(model *ZoneModel) (*territory.Zone, error) {
	var nodes []shared.Position
	if model.Nodes != "" {
		if err := json.Unmarshal([]byte(model.Nodes), &nodes); err != nil {
			return nil, fmt.Errorf("failed to unmarshal nodes of zone %s: %w", model.Name, err)
		}
	}

	zone, err := territory.NewZone(model.Name, territory.Status(model.Status), nodes)
	if err != nil {
		return nil, fmt.Errorf("stored zone %s is invalid: %w", model.Name, err)
	}
	zone.Hostile = model.Hostile
	zone.Terrain = model.Terrain
	return zone, nil
}

func (r *GormZoneRepository) domainToModel(zone *territory.Zone) (*ZoneModel, error) {
	nodes := zone.Nodes
	if nodes == nil {
		nodes = []shared.Position{}
	}
	nodesJSON, err := json.Marshal(nodes)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal nodes: %w", err)
	}

	return &ZoneModel{
		Name:      zone.Name,
		Status:    string(zone.Status),
		Hostile:   zone.Hostile,
		Nodes:     string(nodesJSON),
		Terrain:   zone.Terrain,
		UpdatedAt: time.Now(),
	}, nil
}
