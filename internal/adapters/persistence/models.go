package persistence

import (
	"time"
)

// ZoneModel represents the zones table
type ZoneModel struct {
	Name      string    `gorm:"column:name;primaryKey"`
	Status    string    `gorm:"column:status;not null"`
	Hostile   bool      `gorm:"column:hostile;not null;default:false"`
	Nodes     string    `gorm:"column:nodes;type:text"`   // JSON array of positions
	Terrain   string    `gorm:"column:terrain;type:text"` // ZoneSize^2 tile codes, empty = plains
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (ZoneModel) TableName() string {
	return "zones"
}

// BaseModel represents the bases table
type BaseModel struct {
	Name      string    `gorm:"column:name;primaryKey"`
	StagingX  int       `gorm:"column:staging_x;not null"`
	StagingY  int       `gorm:"column:staging_y;not null"`
	Level     int       `gorm:"column:level;not null;default:0"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (BaseModel) TableName() string {
	return "bases"
}

// RemoteAssignmentModel is the global node -> base map. A node id appears at
// most once.
type RemoteAssignmentModel struct {
	NodeID    string    `gorm:"column:node_id;primaryKey"`
	Base      string    `gorm:"column:base;not null;index"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (RemoteAssignmentModel) TableName() string {
	return "remote_assignments"
}

// RemoteSourceModel is a base-local assignment record
type RemoteSourceModel struct {
	Base        string  `gorm:"column:base;primaryKey"`
	NodeID      string  `gorm:"column:node_id;primaryKey"`
	Harvester   string  `gorm:"column:harvester;not null"`
	Haulers     string  `gorm:"column:haulers;type:text"` // JSON array of worker names
	MiningX     int     `gorm:"column:mining_x;not null"`
	MiningY     int     `gorm:"column:mining_y;not null"`
	MiningZone  string  `gorm:"column:mining_zone;not null"`
	SetupStatus string  `gorm:"column:setup_status;not null"`
	NetIncome   float64 `gorm:"column:net_income"`
	RoadLength  int     `gorm:"column:road_length"`
	AssignedAt  int     `gorm:"column:assigned_at"` // tick
}

func (RemoteSourceModel) TableName() string {
	return "remote_sources"
}

// RemoteZoneModel holds long-lived metadata of zones that host assignments
type RemoteZoneModel struct {
	Zone               string  `gorm:"column:zone;primaryKey"`
	ThreatLevel        string  `gorm:"column:threat_level;not null"`
	ReservationState   *string `gorm:"column:reservation_state"`
	Reserver           *string `gorm:"column:reserver"`
	KeeperExterminator *string `gorm:"column:keeper_exterminator"`
	MineralMiner       *string `gorm:"column:mineral_miner"`
	MineralAvailableAt *int    `gorm:"column:mineral_available_at"`
}

func (RemoteZoneModel) TableName() string {
	return "remote_zones"
}

// RouteModel represents the shared route cache
type RouteModel struct {
	RouteKey    string    `gorm:"column:route_key;primaryKey"`
	Origin      string    `gorm:"column:origin;not null"`
	Destination string    `gorm:"column:destination;not null"`
	Path        string    `gorm:"column:path;type:text;not null"` // routing.Encode format
	Zones       string    `gorm:"column:zones;type:text;index"`   // "|W1N1|W0N1|" for LIKE lookups
	Cost        float64   `gorm:"column:cost"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (RouteModel) TableName() string {
	return "routes"
}

// AllModels lists every model for auto-migration
func AllModels() []interface{} {
	return []interface{}{
		&ZoneModel{},
		&BaseModel{},
		&RemoteAssignmentModel{},
		&RemoteSourceModel{},
		&RemoteZoneModel{},
		&RouteModel{},
	}
}
