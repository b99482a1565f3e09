package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	configPath string
	baseName   string
	verbose    bool
)

// NewRootCommand creates the root command for the CLI
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "remoteminer",
		Short: "Remote resource assignment engine",
		Long: `remoteminer decides which remote resource nodes each home base should
exploit, keeps the assignment registry consistent and caches the roads
those assignments need.

Examples:
  remoteminer world import world.yaml
  remoteminer remote candidates --base W2N1
  remoteminer remote best --base W2N1
  remoteminer remote claim --node 10.10.W1N1 --base W2N1
  remoteminer remote list
  remoteminer planner run --ticks 100 --auto-assign`,
		SilenceUsage: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Path to config file (default: ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&baseName, "base", "",
		"Home base zone (default: the base set with 'config set-base')")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable debug logging")

	// Add command groups
	rootCmd.AddCommand(NewConfigCommand())
	rootCmd.AddCommand(NewWorldCommand())
	rootCmd.AddCommand(NewZoneCommand())
	rootCmd.AddCommand(NewBaseCommand())
	rootCmd.AddCommand(NewRemoteCommand())
	rootCmd.AddCommand(NewPlannerCommand())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
