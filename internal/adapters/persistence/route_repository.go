package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/andrescamacho/remoteminer-go/internal/domain/routing"
	"github.com/andrescamacho/remoteminer-go/internal/domain/shared"
)

// GormRouteRepository implements routing.RouteStore using GORM
type GormRouteRepository struct {
	db *gorm.DB
}

// NewGormRouteRepository creates a new GORM route repository
func NewGormRouteRepository(db *gorm.DB) *GormRouteRepository {
	return &GormRouteRepository{db: db}
}

// SaveRoute upserts a route keyed by its origin and destination
func (r *GormRouteRepository) SaveRoute(ctx context.Context, route *routing.Route) error {
	return saveRoute(r.db.WithContext(ctx), route)
}

// FindRoute retrieves a cached route
func (r *GormRouteRepository) FindRoute(ctx context.Context, origin, destination shared.Position) (*routing.Route, error) {
	var model RouteModel
	err := r.db.WithContext(ctx).
		Where("route_key = ?", routing.Key(origin, destination)).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find route: %w", err)
	}
	return routeModelToDomain(&model)
}

// RoadTiles returns every tile of zone covered by a stored route, deduplicated
func (r *GormRouteRepository) RoadTiles(ctx context.Context, zone string) ([]shared.Position, error) {
	var models []RouteModel
	err := r.db.WithContext(ctx).
		Where("zones LIKE ?", "%|"+zone+"|%").
		Order("route_key").
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load routes through %s: %w", zone, err)
	}

	seen := make(map[shared.Position]bool)
	var tiles []shared.Position
	for i := range models {
		route, err := routeModelToDomain(&models[i])
		if err != nil {
			return nil, err
		}
		for _, p := range routing.SegmentsByZone(route.Positions)[zone] {
			if !seen[p] {
				seen[p] = true
				tiles = append(tiles, p)
			}
		}
	}
	return tiles, nil
}

func saveRoute(db *gorm.DB, route *routing.Route) error {
	if route == nil || route.Incomplete {
		return errors.New("cannot store an incomplete route")
	}

	model := &RouteModel{
		RouteKey:    routing.Key(route.Origin, route.Destination),
		Origin:      route.Origin.Encode(),
		Destination: route.Destination.Encode(),
		Path:        routing.Encode(route.Positions),
		Zones:       "|" + strings.Join(route.Zones(), "|") + "|",
		Cost:        route.Cost,
		UpdatedAt:   time.Now(),
	}

	err := db.
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "route_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"path", "zones", "cost", "updated_at"}),
		}).
		Create(model).Error
	if err != nil {
		return fmt.Errorf("failed to save route %s: %w", model.RouteKey, err)
	}
	return nil
}

func routeModelToDomain(model *RouteModel) (*routing.Route, error) {
	origin, err := shared.ParsePosition(model.Origin)
	if err != nil {
		return nil, fmt.Errorf("stored route %s has a bad origin: %w", model.RouteKey, err)
	}
	destination, err := shared.ParsePosition(model.Destination)
	if err != nil {
		return nil, fmt.Errorf("stored route %s has a bad destination: %w", model.RouteKey, err)
	}
	positions, err := routing.Decode(model.Path)
	if err != nil {
		return nil, fmt.Errorf("stored route %s has a bad path: %w", model.RouteKey, err)
	}

	return &routing.Route{
		Origin:      origin,
		Destination: destination,
		Positions:   positions,
		Cost:        model.Cost,
	}, nil
}
