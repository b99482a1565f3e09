package cli

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/remoteminer-go/internal/domain/territory"
	"github.com/andrescamacho/remoteminer-go/internal/infrastructure/config"
)

// NewConfigCommand creates the config command with subcommands
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration settings",
		Long: `Manage remoteminer configuration settings.

Configuration is loaded from multiple sources with priority:
1. Environment variables (RM_* prefix)
2. Config file (config.yaml)
3. Default values

User preferences (default base) are stored in ~/.remoteminer/config.json

Examples:
  remoteminer config show
  remoteminer config set-base W2N1
  remoteminer config clear-base`,
	}

	// Add subcommands
	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigSetBaseCommand())
	cmd.AddCommand(newConfigClearBaseCommand())

	return cmd
}

// newConfigShowCommand creates the config show subcommand
func newConfigShowCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			// Load system config
			cfg, err := loadConfig()
			if err != nil {
				fmt.Fprintf(out, "Warning: %v\n", err)
				fmt.Fprintln(out, "Using default configuration.")
				cfg = config.DefaultConfig()
			}

			// Load user config
			userConfigHandler, err := config.NewUserConfigHandler()
			if err != nil {
				return fmt.Errorf("failed to create user config handler: %w", err)
			}
			userCfg, err := userConfigHandler.Load()
			if err != nil {
				fmt.Fprintf(out, "Warning: Failed to load user config: %v\n\n", err)
				userCfg = &config.UserConfig{}
			}

			fmt.Fprintln(out, "remoteminer Configuration")
			fmt.Fprintln(out, "=========================")

			fmt.Fprintln(out, "User Preferences:")
			fmt.Fprintf(out, "  Config file:      %s\n", userConfigHandler.GetConfigPath())
			if userCfg.DefaultBase != "" {
				fmt.Fprintf(out, "  Default Base:     %s\n", userCfg.DefaultBase)
			} else {
				fmt.Fprintf(out, "  Default Base:     (not set)\n")
			}

			fmt.Fprintln(out, "\nDatabase:")
			fmt.Fprintf(out, "  Type:             %s\n", cfg.Database.Type)
			switch {
			case cfg.Database.Type == "sqlite":
				fmt.Fprintf(out, "  Path:             %s\n", cfg.Database.Path)
			case cfg.Database.URL != "":
				fmt.Fprintf(out, "  URL:              %s\n", maskPassword(cfg.Database.URL))
			default:
				fmt.Fprintf(out, "  Host:             %s\n", cfg.Database.Host)
				fmt.Fprintf(out, "  Port:             %d\n", cfg.Database.Port)
				fmt.Fprintf(out, "  Database:         %s\n", cfg.Database.Name)
				fmt.Fprintf(out, "  User:             %s\n", cfg.Database.User)
			}

			fmt.Fprintln(out, "\nSelection:")
			fmt.Fprintf(out, "  Search Depth:     %d\n", cfg.Selection.MaxDepth)
			fmt.Fprintf(out, "  High-Yield Cap:   %d (from level %d)\n",
				cfg.Selection.MaxHighYieldAssignments, cfg.Selection.MinHighYieldLevel)

			fmt.Fprintln(out, "\nPlanner:")
			fmt.Fprintf(out, "  Tick Interval:    %s\n", cfg.Planner.TickInterval)
			fmt.Fprintf(out, "  Budget:           %d/tick (burst: %d)\n",
				cfg.Planner.EvaluationsPerTick, cfg.Planner.Burst)
			fmt.Fprintf(out, "  Drift Threshold:  %s\n", formatEnergy(cfg.Planner.DriftThreshold))

			fmt.Fprintln(out, "\nRouting:")
			fmt.Fprintf(out, "  Max Ops:          %d\n", cfg.Routing.MaxOps)
			fmt.Fprintf(out, "  Tile Costs:       plain=%g swamp=%g road=%g\n",
				cfg.Routing.PlainCost, cfg.Routing.SwampCost, cfg.Routing.RoadCost)

			fmt.Fprintln(out, "\nLogging:")
			fmt.Fprintf(out, "  Level:            %s\n", cfg.Logging.Level)
			fmt.Fprintf(out, "  Format:           %s\n", cfg.Logging.Format)
			fmt.Fprintf(out, "  Output:           %s\n", cfg.Logging.Output)

			fmt.Fprintln(out, "\nMetrics:")
			fmt.Fprintf(out, "  Enabled:          %s\n", yesNo(cfg.Metrics.Enabled))
			fmt.Fprintf(out, "  Endpoint:         %s:%d%s\n", cfg.Metrics.Host, cfg.Metrics.Port, cfg.Metrics.Path)

			return nil
		},
	}

	return cmd
}

// newConfigSetBaseCommand creates the config set-base subcommand
func newConfigSetBaseCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set-base <zone>",
		Short: "Set default base",
		Long: `Set the default base used when --base is omitted.

The base must already exist in the database.

Example:
  remoteminer config set-base W2N1`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			if _, ok := territory.ParseZone(name); !ok {
				return fmt.Errorf("invalid zone identifier %s", name)
			}

			engine, err := openEngine()
			if err != nil {
				return err
			}
			defer engine.Close()

			base, err := engine.Bases.FindByName(cmd.Context(), name)
			if err != nil {
				return err
			}
			if base == nil {
				return fmt.Errorf("base %s not found", name)
			}

			userConfigHandler, err := config.NewUserConfigHandler()
			if err != nil {
				return fmt.Errorf("failed to create user config handler: %w", err)
			}
			if err := userConfigHandler.SetDefaultBase(name); err != nil {
				return fmt.Errorf("failed to set default base: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✓ Default base set to %s (level %d)\n", base.Name, base.Level)
			return nil
		},
	}

	return cmd
}

// newConfigClearBaseCommand creates the config clear-base subcommand
func newConfigClearBaseCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear-base",
		Short: "Clear default base setting",
		RunE: func(cmd *cobra.Command, args []string) error {
			userConfigHandler, err := config.NewUserConfigHandler()
			if err != nil {
				return fmt.Errorf("failed to create user config handler: %w", err)
			}
			if err := userConfigHandler.ClearDefaultBase(); err != nil {
				return fmt.Errorf("failed to clear default base: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), "✓ Default base cleared")
			return nil
		},
	}

	return cmd
}

// maskPassword hides the password of a connection URL
func maskPassword(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	return u.Redacted()
}
