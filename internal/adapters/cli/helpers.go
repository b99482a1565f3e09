package cli

import (
	"fmt"
	"math"

	"github.com/dustin/go-humanize"

	"github.com/andrescamacho/remoteminer-go/internal/infrastructure/config"
)

// loadConfig loads the system config, applying global flags
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}
	return cfg, nil
}

// openEngine loads configuration and wires the engine
func openEngine() (*Engine, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return NewEngine(cfg, nil)
}

// resolveBase resolves the base from flags or defaults
// Priority: --base flag > user config default
func resolveBase() (string, error) {
	if baseName != "" {
		return baseName, nil
	}

	userConfigHandler, err := config.NewUserConfigHandler()
	if err != nil {
		return "", fmt.Errorf("no base specified and failed to load user config: %w", err)
	}
	userCfg, err := userConfigHandler.Load()
	if err != nil {
		return "", fmt.Errorf("no base specified and failed to load user config: %w", err)
	}
	if userCfg.DefaultBase != "" {
		return userCfg.DefaultBase, nil
	}

	return "", fmt.Errorf("no base specified: use --base, or set a default with 'remoteminer config set-base'")
}

// formatEnergy renders an energy-per-tick figure with thousands separators
func formatEnergy(v float64) string {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return fmt.Sprintf("%v", v)
	}
	return humanize.FormatFloat("#,###.##", v)
}

// formatDelta renders a signed change
func formatDelta(v float64) string {
	if v > 0 {
		return "+" + formatEnergy(v)
	}
	return formatEnergy(v)
}

// yesNo renders a flag for tables
func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
