package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/remoteminer-go/internal/adapters/worldfile"
	"github.com/andrescamacho/remoteminer-go/internal/adapters/worldgen"
	"github.com/andrescamacho/remoteminer-go/internal/domain/remote"
	"github.com/andrescamacho/remoteminer-go/internal/domain/shared"
	"github.com/andrescamacho/remoteminer-go/internal/domain/territory"
)

// NewWorldCommand creates the world command with subcommands
func NewWorldCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "world",
		Short: "Load or generate reconnaissance data",
		Long: `Load reconnaissance snapshots into the database.

Examples:
  remoteminer world import world.yaml
  remoteminer world generate --center W2N2 --radius 3 --seed 42
  remoteminer world export world.yaml`,
	}

	cmd.AddCommand(newWorldImportCommand())
	cmd.AddCommand(newWorldGenerateCommand())
	cmd.AddCommand(newWorldExportCommand())

	return cmd
}

func newWorldImportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.yaml>",
		Short: "Import zones and bases from a world file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			world, err := worldfile.Load(args[0])
			if err != nil {
				return err
			}

			engine, err := openEngine()
			if err != nil {
				return err
			}
			defer engine.Close()

			if err := world.Import(cmd.Context(), engine.Zones, engine.Bases); err != nil {
				return fmt.Errorf("failed to import world: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✓ Imported %d zones and %d bases\n", len(world.Zones), len(world.Bases))
			return nil
		},
	}
}

func newWorldGenerateCommand() *cobra.Command {
	cfg := worldgen.DefaultConfig()
	var outPath string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a sandbox world around a base",
		Long: `Generate terrain, resource nodes and zone statuses from simplex noise and
store them together with a base at the center zone.

Example:
  remoteminer world generate --center W2N2 --radius 3 --seed 42 --out world.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			world, err := worldgen.Generate(cfg)
			if err != nil {
				return err
			}

			if outPath != "" {
				if err := world.Save(outPath); err != nil {
					return err
				}
			}

			engine, err := openEngine()
			if err != nil {
				return err
			}
			defer engine.Close()

			if err := world.Import(cmd.Context(), engine.Zones, engine.Bases); err != nil {
				return fmt.Errorf("failed to store generated world: %w", err)
			}

			nodes := 0
			for _, z := range world.Zones {
				nodes += len(z.Nodes)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Generated %d zones with %d nodes around base %s\n",
				len(world.Zones), nodes, cfg.Center)
			return nil
		},
	}

	cmd.Flags().StringVar(&cfg.Center, "center", cfg.Center, "Zone of the generated base")
	cmd.Flags().IntVar(&cfg.Radius, "radius", cfg.Radius, "Zones generated in each direction")
	cmd.Flags().Int64Var(&cfg.Seed, "seed", 0, "Noise seed (0 picks one at random)")
	cmd.Flags().IntVar(&cfg.BaseLevel, "level", cfg.BaseLevel, "Level of the generated base")
	cmd.Flags().StringVar(&outPath, "out", "", "Also write the world to this YAML file")

	return cmd
}

func newWorldExportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "export <file.yaml>",
		Short: "Write every stored zone and base to a world file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := openEngine()
			if err != nil {
				return err
			}
			defer engine.Close()

			zones, err := engine.Zones.List(cmd.Context())
			if err != nil {
				return err
			}
			bases, err := engine.Bases.List(cmd.Context())
			if err != nil {
				return err
			}

			world := &worldfile.World{Zones: zones, Bases: bases}
			if err := world.Save(args[0]); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✓ Exported %d zones and %d bases to %s\n", len(zones), len(bases), args[0])
			return nil
		},
	}
}

// NewZoneCommand creates the zone command with subcommands
func NewZoneCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "zone",
		Short: "Inspect observed zones",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List every observed zone",
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := openEngine()
			if err != nil {
				return err
			}
			defer engine.Close()

			zones, err := engine.Zones.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(zones) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No zones observed.")
				fmt.Fprintln(cmd.OutOrStdout(), "\nLoad some with: remoteminer world import <file.yaml>")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ZONE\tSTATUS\tHOSTILE\tCLASS\tNODES")
			fmt.Fprintln(w, "----\t------\t-------\t-----\t-----")
			for _, z := range zones {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n",
					z.Name, z.Status, yesNo(z.Hostile), zoneClass(z.Name), len(z.Nodes))
			}
			return w.Flush()
		},
	})

	return cmd
}

func zoneClass(name string) string {
	switch {
	case territory.IsResourceRichZone(name):
		return "resource-rich"
	case territory.IsGuardedZone(name):
		return "guarded"
	default:
		return "standard"
	}
}

// NewBaseCommand creates the base command with subcommands
func NewBaseCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "base",
		Short: "Manage home bases",
	}

	cmd.AddCommand(newBaseAddCommand())
	cmd.AddCommand(newBaseListCommand())

	return cmd
}

func newBaseAddCommand() *cobra.Command {
	var (
		name    string
		staging string
		level   int
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add or update a home base",
		Long: `Add a home base. Its zone is recorded as OWNED_ME.

Example:
  remoteminer base add --name W2N1 --staging 25.25.W2N1 --level 5`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if name == "" {
				return fmt.Errorf("--name flag is required")
			}
			if staging == "" {
				staging = fmt.Sprintf("%d.%d.%s", shared.ZoneSize/2, shared.ZoneSize/2, name)
			}

			pos, err := shared.ParsePosition(staging)
			if err != nil {
				return err
			}
			base, err := remote.NewBase(name, pos, level)
			if err != nil {
				return err
			}

			engine, err := openEngine()
			if err != nil {
				return err
			}
			defer engine.Close()

			ctx := cmd.Context()
			zone, err := engine.Zones.FindByName(ctx, base.Name)
			if err != nil {
				return err
			}
			if zone == nil {
				zone, err = territory.NewZone(base.Name, territory.StatusOwnedMe, nil)
				if err != nil {
					return err
				}
			}
			zone.Status = territory.StatusOwnedMe
			if err := engine.Zones.Save(ctx, zone); err != nil {
				return err
			}
			if err := engine.Bases.Save(ctx, base); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✓ Base %s saved (staging %s, level %d)\n", base.Name, base.Staging, base.Level)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Base zone (required)")
	cmd.Flags().StringVar(&staging, "staging", "", "Staging position x.y.zone (default: zone center)")
	cmd.Flags().IntVar(&level, "level", 1, "Base level 0-8")

	return cmd
}

func newBaseListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List home bases",
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := openEngine()
			if err != nil {
				return err
			}
			defer engine.Close()

			bases, err := engine.Bases.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(bases) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No bases.")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "BASE\tSTAGING\tLEVEL")
			fmt.Fprintln(w, "----\t-------\t-----")
			for _, b := range bases {
				fmt.Fprintf(w, "%s\t%s\t%d\n", b.Name, b.Staging, b.Level)
			}
			return w.Flush()
		},
	}
}
