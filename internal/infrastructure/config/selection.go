package config

// SelectionConfig holds the candidate search and portfolio limits
type SelectionConfig struct {
	// MaxHighYieldAssignments caps assignments in guarded/resource-rich zones per base
	MaxHighYieldAssignments int `mapstructure:"max_high_yield_assignments" validate:"min=0"`

	// MinHighYieldLevel is the base level from which high-yield zones are considered
	MinHighYieldLevel int `mapstructure:"min_high_yield_level" validate:"min=0,max=8"`

	// MaxDepth is the zone-hop limit of the reachability search
	MaxDepth int `mapstructure:"max_depth" validate:"min=1,max=10"`
}
