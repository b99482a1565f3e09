package config

// RoutingConfig tunes the in-process grid router
type RoutingConfig struct {
	// MaxOps bounds the number of tile expansions per route search
	MaxOps int `mapstructure:"max_ops" validate:"min=1"`

	// Tile costs
	PlainCost float64 `mapstructure:"plain_cost" validate:"gt=0"`
	SwampCost float64 `mapstructure:"swamp_cost" validate:"gt=0"`
	RoadCost  float64 `mapstructure:"road_cost" validate:"gt=0"`

	// WorldRadius bounds the zone grid in each direction from the origin
	WorldRadius int `mapstructure:"world_radius" validate:"min=1"`
}
