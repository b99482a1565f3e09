package config

import "time"

// PlannerConfig holds settings of the periodic planning loop
type PlannerConfig struct {
	// TickInterval is the wall time between planner passes
	TickInterval time.Duration `mapstructure:"tick_interval" validate:"required"`

	// EvaluationsPerTick is the steady-state budget of route evaluations
	EvaluationsPerTick int `mapstructure:"evaluations_per_tick" validate:"min=1"`

	// Burst allows short spikes above the per-tick budget
	Burst int `mapstructure:"burst" validate:"min=1"`

	// DriftThreshold is the net income change that is reported as drift
	DriftThreshold float64 `mapstructure:"drift_threshold" validate:"min=0"`

	// AutoAssign claims the best candidate for bases that have none pending
	AutoAssign bool `mapstructure:"auto_assign"`

	// PIDFile locks the planner to one process per database; empty disables it
	PIDFile string `mapstructure:"pid_file"`
}
