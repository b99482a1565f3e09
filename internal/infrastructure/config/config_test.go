package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/remoteminer-go/internal/domain/economy"
	"github.com/andrescamacho/remoteminer-go/internal/infrastructure/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefaultConfig_MatchesStockWorldRules(t *testing.T) {
	cfg := config.DefaultConfig()

	assert.Equal(t, economy.DefaultConstants(), cfg.Economy.ToConstants())
	assert.Equal(t, 2, cfg.Selection.MaxHighYieldAssignments)
	assert.Equal(t, 7, cfg.Selection.MinHighYieldLevel)
	assert.Equal(t, 3, cfg.Selection.MaxDepth)
	assert.Equal(t, "sqlite", cfg.Database.Type)
	assert.NoError(t, config.ValidateConfig(cfg))
}

func TestLoadConfig_FileOverridesDefaults(t *testing.T) {
	// Arrange
	path := writeConfig(t, `
database:
  type: sqlite
  path: ":memory:"
economy:
  trip_multiplier: 2.5
  hauler_body:
    carry: 20
    move: 10
selection:
  max_depth: 4
planner:
  tick_interval: 500ms
logging:
  format: json
`)

	// Act
	cfg, err := config.LoadConfig(path)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, ":memory:", cfg.Database.Path)
	assert.Equal(t, 2.5, cfg.Economy.TripMultiplier)
	assert.Equal(t, economy.Body{economy.PartCarry: 20, economy.PartMove: 10}, cfg.Economy.ToConstants().HaulerBody)
	assert.Equal(t, 3000.0, cfg.Economy.SourceYieldStandard)
	assert.Equal(t, 4, cfg.Selection.MaxDepth)
	assert.Equal(t, 500*time.Millisecond, cfg.Planner.TickInterval)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoadConfig_EnvironmentWins(t *testing.T) {
	path := writeConfig(t, "selection:\n  max_depth: 4\n")
	t.Setenv("RM_SELECTION_MAX_DEPTH", "2")
	t.Setenv("RM_LOGGING_LEVEL", "debug")

	cfg, err := config.LoadConfig(path)

	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Selection.MaxDepth)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadConfig_RejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "unknown database", content: "database:\n  type: oracle\n"},
		{name: "file output without path", content: "logging:\n  output: file\n"},
		{name: "depth too large", content: "selection:\n  max_depth: 50\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.LoadConfig(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestValidator_ZoneAndPositionRules(t *testing.T) {
	type input struct {
		Base    string `validate:"required,zone"`
		Staging string `validate:"required,position"`
	}
	v := config.NewValidator()

	assert.NoError(t, v.Validate(input{Base: "W7N3", Staging: "25.25.W7N3"}))
	assert.Error(t, v.Validate(input{Base: "X7N3", Staging: "25.25.W7N3"}))
	assert.Error(t, v.Validate(input{Base: "W7N3", Staging: "25.99.W7N3"}))
}

func TestUserConfig_DefaultBaseRoundTrip(t *testing.T) {
	h, err := config.NewUserConfigHandlerAt(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, h.SetDefaultBase("W2N1"))
	cfg, err := h.Load()
	require.NoError(t, err)
	assert.Equal(t, "W2N1", cfg.DefaultBase)

	require.NoError(t, h.ClearDefaultBase())
	cfg, err = h.Load()
	require.NoError(t, err)
	assert.Empty(t, cfg.DefaultBase)
}

func TestDatabaseConfig_DSN(t *testing.T) {
	tests := []struct {
		name     string
		cfg      config.DatabaseConfig
		dsn      string
		inMemory bool
	}{
		{"sqlite default", config.DatabaseConfig{Type: "sqlite"}, config.MemoryPath, true},
		{"sqlite file", config.DatabaseConfig{Type: "sqlite", Path: "/var/lib/remoteminer.db"}, "/var/lib/remoteminer.db", false},
		{"postgres url", config.DatabaseConfig{Type: "postgres", URL: "postgresql://miner@db/remoteminer", Host: "ignored"}, "postgresql://miner@db/remoteminer", false},
		{
			"postgres fields",
			config.DatabaseConfig{Type: "postgres", Host: "db", Port: 5432, User: "miner", Password: "pw", Name: "remoteminer", SSLMode: "disable"},
			"host=db port=5432 user=miner password=pw dbname=remoteminer sslmode=disable",
			false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.dsn, tt.cfg.DSN())
			assert.Equal(t, tt.inMemory, tt.cfg.InMemory())
		})
	}
}

func TestMetricsConfig_AddressUsesDefaults(t *testing.T) {
	cfg := config.DefaultConfig()

	assert.Equal(t, "localhost:9090", cfg.Metrics.Address())
	assert.Equal(t, "[::1]:9100", config.MetricsConfig{Host: "::1", Port: 9100}.Address())
}
