package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the main configuration struct combining all sub-configs
type Config struct {
	Database  DatabaseConfig  `mapstructure:"database"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Economy   EconomyConfig   `mapstructure:"economy"`
	Selection SelectionConfig `mapstructure:"selection"`
	Planner   PlannerConfig   `mapstructure:"planner"`
	Routing   RoutingConfig   `mapstructure:"routing"`
}

// LoadConfig loads configuration from multiple sources with priority:
// 1. Environment variables (highest priority)
// 2. Config file (config.yaml)
// 3. Defaults (lowest priority)
func LoadConfig(configPath string) (*Config, error) {
	// Load .env file if it exists (doesn't error if missing)
	_ = godotenv.Load()

	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/remoteminer")
	}

	v.SetEnvPrefix("RM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnvKeys(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// DATABASE_URL is honoured without the RM_ prefix
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		v.Set("database.url", dbURL)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	SetDefaults(&cfg)

	if err := ValidateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// bindEnvKeys registers the keys most often overridden from the environment;
// AutomaticEnv alone only resolves keys viper already knows about
func bindEnvKeys(v *viper.Viper) {
	for _, key := range []string{
		"database.type", "database.path", "database.url",
		"logging.level", "logging.format", "logging.output", "logging.file_path",
		"metrics.enabled", "metrics.port",
		"selection.max_high_yield_assignments", "selection.min_high_yield_level", "selection.max_depth",
		"planner.evaluations_per_tick", "planner.tick_interval",
	} {
		_ = v.BindEnv(key)
	}
}

// LoadConfigOrDefault loads configuration or returns a default config on error
func LoadConfigOrDefault(configPath string) *Config {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return DefaultConfig()
	}
	return cfg
}

// DefaultConfig returns a configuration with every default applied
func DefaultConfig() *Config {
	cfg := &Config{}
	SetDefaults(cfg)
	return cfg
}

// MustLoadConfig loads configuration and panics on error (for use in main.go)
func MustLoadConfig(configPath string) *Config {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}
	return cfg
}
