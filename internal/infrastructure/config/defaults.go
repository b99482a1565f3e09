package config

import "time"

// SetDefaults sets default values for all configuration fields
func SetDefaults(cfg *Config) {
	// Database defaults
	if cfg.Database.Type == "" {
		cfg.Database.Type = "sqlite"
	}
	if cfg.Database.Type == "sqlite" && cfg.Database.Path == "" {
		cfg.Database.Path = "remoteminer.db"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "remoteminer"
	}
	if cfg.Database.Name == "" {
		cfg.Database.Name = "remoteminer"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.Pool.MaxOpen == 0 {
		cfg.Database.Pool.MaxOpen = 25
	}
	if cfg.Database.Pool.MaxIdle == 0 {
		cfg.Database.Pool.MaxIdle = 5
	}
	if cfg.Database.Pool.MaxLifetime == 0 {
		cfg.Database.Pool.MaxLifetime = 5 * time.Minute
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stderr"
	}

	// Metrics defaults
	if cfg.Metrics.Port == 0 {
		cfg.Metrics.Port = 9090
	}
	if cfg.Metrics.Host == "" {
		cfg.Metrics.Host = "localhost"
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}

	// Economy defaults
	economyDefaults(&cfg.Economy)

	// Selection defaults
	if cfg.Selection.MaxHighYieldAssignments == 0 {
		cfg.Selection.MaxHighYieldAssignments = 2
	}
	if cfg.Selection.MinHighYieldLevel == 0 {
		cfg.Selection.MinHighYieldLevel = 7
	}
	if cfg.Selection.MaxDepth == 0 {
		cfg.Selection.MaxDepth = 3
	}

	// Planner defaults
	if cfg.Planner.TickInterval == 0 {
		cfg.Planner.TickInterval = 2 * time.Second
	}
	if cfg.Planner.EvaluationsPerTick == 0 {
		cfg.Planner.EvaluationsPerTick = 20
	}
	if cfg.Planner.Burst == 0 {
		cfg.Planner.Burst = cfg.Planner.EvaluationsPerTick
	}
	if cfg.Planner.DriftThreshold == 0 {
		cfg.Planner.DriftThreshold = 100
	}

	// Routing defaults
	if cfg.Routing.MaxOps == 0 {
		cfg.Routing.MaxOps = 20000
	}
	if cfg.Routing.PlainCost == 0 {
		cfg.Routing.PlainCost = 2
	}
	if cfg.Routing.SwampCost == 0 {
		cfg.Routing.SwampCost = 10
	}
	if cfg.Routing.RoadCost == 0 {
		cfg.Routing.RoadCost = 1
	}
	if cfg.Routing.WorldRadius == 0 {
		cfg.Routing.WorldRadius = 60
	}
}
