package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/andrescamacho/remoteminer-go/internal/domain/remote"
	"github.com/andrescamacho/remoteminer-go/internal/domain/shared"
)

// GormBaseRepository implements remote.BaseRepository using GORM
type GormBaseRepository struct {
	db *gorm.DB
}

// NewGormBaseRepository creates a new GORM base repository
func NewGormBaseRepository(db *gorm.DB) *GormBaseRepository {
	return &GormBaseRepository{db: db}
}

// FindByName retrieves a base by its zone name
func (r *GormBaseRepository) FindByName(ctx context.Context, name string) (*remote.Base, error) {
	var model BaseModel
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find base %s: %w", name, err)
	}
	return baseModelToDomain(&model), nil
}

// Save upserts a base
func (r *GormBaseRepository) Save(ctx context.Context, base *remote.Base) error {
	model := &BaseModel{
		Name:      base.Name,
		StagingX:  base.Staging.X,
		StagingY:  base.Staging.Y,
		Level:     base.Level,
		CreatedAt: time.Now(),
	}

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"staging_x", "staging_y", "level"}),
		}).
		Create(model).Error
	if err != nil {
		return fmt.Errorf("failed to save base %s: %w", base.Name, err)
	}
	return nil
}

// List returns every base ordered by name
func (r *GormBaseRepository) List(ctx context.Context) ([]*remote.Base, error) {
	var models []BaseModel
	if err := r.db.WithContext(ctx).Order("name").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list bases: %w", err)
	}

	bases := make([]*remote.Base, 0, len(models))
	for i := range models {
		bases = append(bases, baseModelToDomain(&models[i]))
	}
	return bases, nil
}

func baseModelToDomain(model *BaseModel) *remote.Base {
	return &remote.Base{
		Name:    model.Name,
		Staging: shared.Position{X: model.StagingX, Y: model.StagingY, Zone: model.Name},
		Level:   model.Level,
	}
}
