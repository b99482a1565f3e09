package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/remoteminer-go/internal/application/remote/commands"
	"github.com/andrescamacho/remoteminer-go/internal/application/remote/queries"
	"github.com/andrescamacho/remoteminer-go/internal/domain/economy"
	"github.com/andrescamacho/remoteminer-go/internal/domain/remote"
)

// NewRemoteCommand creates the remote command with subcommands
func NewRemoteCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remote",
		Short: "Find, evaluate and assign remote resource nodes",
		Long: `Find, evaluate and assign remote resource nodes to home bases.

Examples:
  remoteminer remote candidates --base W2N1 --tree
  remoteminer remote evaluate --node 10.10.W1N1 --base W2N1
  remoteminer remote best --base W2N1 --no-guarded
  remoteminer remote assign --base W2N1
  remoteminer remote claim --node 10.10.W1N1 --base W2N1
  remoteminer remote release --node 10.10.W1N1
  remoteminer remote list
  remoteminer remote reevaluate --base W2N1
  remoteminer remote check`,
	}

	cmd.AddCommand(newRemoteCandidatesCommand())
	cmd.AddCommand(newRemoteEvaluateCommand())
	cmd.AddCommand(newRemoteBestCommand())
	cmd.AddCommand(newRemoteAssignCommand())
	cmd.AddCommand(newRemoteClaimCommand())
	cmd.AddCommand(newRemoteReleaseCommand())
	cmd.AddCommand(newRemoteListCommand())
	cmd.AddCommand(newRemoteReevaluateCommand())
	cmd.AddCommand(newRemoteCheckCommand())
	cmd.AddCommand(newRemoteReservationCommand())
	cmd.AddCommand(newRemoteThreatCommand())
	cmd.AddCommand(newRemoteStaffCommand())
	cmd.AddCommand(newRemoteVacateCommand())
	cmd.AddCommand(newRemoteOperationalCommand())

	return cmd
}

func newRemoteCandidatesCommand() *cobra.Command {
	var tree bool

	cmd := &cobra.Command{
		Use:   "candidates",
		Short: "List unassigned nodes reachable from a base",
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := resolveBase()
			if err != nil {
				return err
			}
			engine, err := openEngine()
			if err != nil {
				return err
			}
			defer engine.Close()

			response, err := engine.Send(cmd.Context(), &queries.FindRemoteCandidatesQuery{Base: base})
			if err != nil {
				return err
			}
			candidates := response.(*queries.FindRemoteCandidatesResponse).Candidates

			out := cmd.OutOrStdout()
			formatter := NewTreeFormatter(false)
			if len(candidates) == 0 {
				fmt.Fprintf(out, "No candidates reachable from %s.\n", base)
				return nil
			}
			if tree {
				fmt.Fprint(out, formatter.FormatTree(base, candidates))
				fmt.Fprintln(out, formatter.FormatTreeSummary(candidates))
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NODE\tZONE\tHOPS\tHIGH-YIELD")
			fmt.Fprintln(w, "----\t----\t----\t----------")
			for _, c := range candidates {
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", c.NodeID, c.Zone, c.Depth, yesNo(c.IsHighYield()))
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Fprintln(out, formatter.FormatTreeSummary(candidates))
			return nil
		},
	}

	cmd.Flags().BoolVar(&tree, "tree", false, "Render candidates as a hop/zone tree")
	return cmd
}

func newRemoteEvaluateCommand() *cobra.Command {
	var (
		node   string
		stable bool
	)

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Show the economic profile of a node",
		Long: `Run the economic simulation for one node from a base.

By default the route is priced as if no road existed yet; --stable discounts
roads already cached for other assignments.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if node == "" {
				return fmt.Errorf("--node flag is required")
			}
			base, err := resolveBase()
			if err != nil {
				return err
			}
			engine, err := openEngine()
			if err != nil {
				return err
			}
			defer engine.Close()

			response, err := engine.Send(cmd.Context(), &queries.EvaluateRemoteSourceQuery{
				NodeID: node,
				Base:   base,
				Stable: stable,
			})
			if err != nil {
				return err
			}

			printProfile(cmd.OutOrStdout(), response.(*queries.EvaluateRemoteSourceResponse).Profile)
			return nil
		},
	}

	cmd.Flags().StringVar(&node, "node", "", "Node id x.y.zone (required)")
	cmd.Flags().BoolVar(&stable, "stable", false, "Discount existing roads")
	return cmd
}

func newRemoteBestCommand() *cobra.Command {
	var noGuarded bool

	cmd := &cobra.Command{
		Use:   "best",
		Short: "Rank candidates without claiming anything",
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := resolveBase()
			if err != nil {
				return err
			}
			engine, err := openEngine()
			if err != nil {
				return err
			}
			defer engine.Close()

			response, err := engine.Send(cmd.Context(), &queries.SelectBestRemoteQuery{
				Base:             base,
				ExcludeHighYield: noGuarded,
			})
			if err != nil {
				return err
			}
			result := response.(*queries.SelectBestRemoteResponse)

			out := cmd.OutOrStdout()
			if result.Best == nil {
				fmt.Fprintf(out, "No profitable remote source for %s.\n", base)
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "RANK\tNODE\tHOPS\tROAD\tHAULERS\tNET INCOME")
			fmt.Fprintln(w, "----\t----\t----\t----\t-------\t----------")
			for i, r := range result.Ranked {
				fmt.Fprintf(w, "%d\t%s\t%d\t%d\t%d\t%s\n",
					i+1, r.NodeID, r.Depth, r.Profile.RoadLength, r.Profile.HaulerCount, formatEnergy(r.Profile.NetIncome))
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(out, "\nBest: %s (%s per cycle)\n", result.Best.NodeID, formatEnergy(result.Best.Profile.NetIncome))
			return nil
		},
	}

	cmd.Flags().BoolVar(&noGuarded, "no-guarded", false, "Skip guarded and resource-rich zones")
	return cmd
}

func newRemoteAssignCommand() *cobra.Command {
	var noGuarded bool

	cmd := &cobra.Command{
		Use:   "assign",
		Short: "Claim the best candidate, falling through on failure",
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := resolveBase()
			if err != nil {
				return err
			}
			engine, err := openEngine()
			if err != nil {
				return err
			}
			defer engine.Close()

			response, err := engine.Send(cmd.Context(), &commands.AssignBestRemoteCommand{
				Base:             base,
				ExcludeHighYield: noGuarded,
			})
			if err != nil {
				return err
			}
			result := response.(*commands.AssignBestRemoteResponse)

			out := cmd.OutOrStdout()
			for _, failed := range result.Failed {
				fmt.Fprintf(out, "✗ %s could not be claimed\n", failed)
			}
			if result.Assignment == nil {
				fmt.Fprintf(out, "No remote source claimed for %s (%d candidates, %d ranked).\n",
					base, result.Candidates, result.Ranked)
				return nil
			}
			fmt.Fprintln(out, "✓ Remote source claimed")
			printAssignment(out, result.Assignment)
			return nil
		},
	}

	cmd.Flags().BoolVar(&noGuarded, "no-guarded", false, "Skip guarded and resource-rich zones")
	return cmd
}

func newRemoteClaimCommand() *cobra.Command {
	var node string

	cmd := &cobra.Command{
		Use:   "claim",
		Short: "Claim a node for a base",
		Long: `Claim a node for a base. A node held by another base is moved over in
the same transaction and its harvester is released.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if node == "" {
				return fmt.Errorf("--node flag is required")
			}
			base, err := resolveBase()
			if err != nil {
				return err
			}
			engine, err := openEngine()
			if err != nil {
				return err
			}
			defer engine.Close()

			response, err := engine.Send(cmd.Context(), &commands.ClaimRemoteSourceCommand{NodeID: node, Base: base})
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "✓ Remote source claimed")
			printAssignment(cmd.OutOrStdout(), response.(*commands.ClaimRemoteSourceResponse).Assignment)
			return nil
		},
	}

	cmd.Flags().StringVar(&node, "node", "", "Node id x.y.zone (required)")
	return cmd
}

func newRemoteReleaseCommand() *cobra.Command {
	var node string

	cmd := &cobra.Command{
		Use:   "release",
		Short: "Release a claimed node",
		RunE: func(cmd *cobra.Command, args []string) error {
			if node == "" {
				return fmt.Errorf("--node flag is required")
			}
			engine, err := openEngine()
			if err != nil {
				return err
			}
			defer engine.Close()

			response, err := engine.Send(cmd.Context(), &commands.ReleaseRemoteSourceCommand{NodeID: node})
			if err != nil {
				return err
			}
			result := response.(*commands.ReleaseRemoteSourceResponse)

			if !result.Released {
				fmt.Fprintf(cmd.OutOrStdout(), "%s was not assigned.\n", node)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Released %s from %s\n", node, result.Base)
			return nil
		},
	}

	cmd.Flags().StringVar(&node, "node", "", "Node id x.y.zone (required)")
	return cmd
}

func newRemoteListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List assignments (of --base, or of every base)",
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := openEngine()
			if err != nil {
				return err
			}
			defer engine.Close()

			response, err := engine.Send(cmd.Context(), &queries.ListRemoteAssignmentsQuery{Base: baseName})
			if err != nil {
				return err
			}
			result := response.(*queries.ListRemoteAssignmentsResponse)

			out := cmd.OutOrStdout()
			if len(result.Assignments) == 0 {
				fmt.Fprintln(out, "No remote assignments.")
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NODE\tBASE\tSETUP\tHARVESTER\tHAULERS\tRESERVATION\tNET INCOME")
			fmt.Fprintln(w, "----\t----\t-----\t---------\t-------\t-----------\t----------")
			for _, a := range result.Assignments {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
					a.NodeID(), a.Base(), a.SetupStatus(), a.Harvester(), len(a.Haulers()),
					reservationLabel(result.ZoneMetadata[a.Zone()]), formatEnergy(a.NetIncome()))
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(out, "\nTotal net income: %s per cycle\n", formatEnergy(result.TotalNetIncome))
			return nil
		},
	}
}

func reservationLabel(md *remote.ZoneMetadata) string {
	if md == nil || md.ReservationState == nil {
		return "-"
	}
	return string(*md.ReservationState)
}

func newRemoteReevaluateCommand() *cobra.Command {
	var (
		node      string
		recompute bool
	)

	cmd := &cobra.Command{
		Use:   "reevaluate",
		Short: "Recompute profiles of existing assignments",
		RunE: func(cmd *cobra.Command, args []string) error {
			query := &queries.ReevaluateRemoteSourcesQuery{NodeID: node, Recompute: recompute}
			if node == "" {
				base, err := resolveBase()
				if err != nil {
					return err
				}
				query.Base = base
			}

			engine, err := openEngine()
			if err != nil {
				return err
			}
			defer engine.Close()

			response, err := engine.Send(cmd.Context(), query)
			if err != nil {
				return err
			}
			result := response.(*queries.ReevaluateRemoteSourcesResponse)

			out := cmd.OutOrStdout()
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NODE\tNET INCOME\tDELTA\tHAULERS\tMINING POSITION")
			fmt.Fprintln(w, "----\t----------\t-----\t-------\t---------------")
			for _, r := range result.Reevaluations {
				moved := r.Profile.MiningPosition.String()
				if r.MiningPositionChanged {
					moved += " (moved)"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%d (%+d)\t%s\n",
					r.Assignment.NodeID(), formatEnergy(r.Profile.NetIncome), formatDelta(r.NetIncomeDelta),
					r.Profile.HaulerCount, r.HaulerDelta, moved)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			for _, f := range result.Failures {
				fmt.Fprintf(out, "✗ %s: %s\n", f.NodeID, f.Error)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&node, "node", "", "Reevaluate a single node instead of a whole base")
	cmd.Flags().BoolVar(&recompute, "recompute", false, "Ask the router for fresh routes instead of the stored ones")
	return cmd
}

func newRemoteCheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Audit the assignment registry for divergence",
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := openEngine()
			if err != nil {
				return err
			}
			defer engine.Close()

			response, err := engine.Send(cmd.Context(), &queries.CheckConsistencyQuery{})
			if err != nil {
				return err
			}
			result := response.(*queries.CheckConsistencyResponse)

			out := cmd.OutOrStdout()
			if result.Consistent {
				fmt.Fprintln(out, "✓ Registry is consistent")
				return nil
			}
			for _, issue := range result.Issues {
				fmt.Fprintf(out, "✗ %s\n", issue)
			}
			return fmt.Errorf("registry has %d inconsistencies", len(result.Issues))
		},
	}
}

func newRemoteReservationCommand() *cobra.Command {
	var (
		zone  string
		ticks int
	)

	cmd := &cobra.Command{
		Use:   "reservation",
		Short: "Record an observed reservation timer for a zone",
		RunE: func(cmd *cobra.Command, args []string) error {
			if zone == "" {
				return fmt.Errorf("--zone flag is required")
			}
			engine, err := openEngine()
			if err != nil {
				return err
			}
			defer engine.Close()

			response, err := engine.Send(cmd.Context(), &commands.UpdateReservationCommand{Zone: zone, TicksToEnd: ticks})
			if err != nil {
				return err
			}
			result := response.(*commands.UpdateReservationResponse)

			state := reservationLabel(result.Metadata)
			if result.Changed {
				fmt.Fprintf(cmd.OutOrStdout(), "✓ %s reservation is now %s\n", zone, state)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%s reservation unchanged (%s)\n", zone, state)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&zone, "zone", "", "Zone (required)")
	cmd.Flags().IntVar(&ticks, "ticks", 0, "Ticks until the reservation ends")
	return cmd
}

func newRemoteThreatCommand() *cobra.Command {
	var (
		zone  string
		level string
	)

	cmd := &cobra.Command{
		Use:   "threat",
		Short: "Record the threat level observed in a zone",
		RunE: func(cmd *cobra.Command, args []string) error {
			if zone == "" {
				return fmt.Errorf("--zone flag is required")
			}
			engine, err := openEngine()
			if err != nil {
				return err
			}
			defer engine.Close()

			response, err := engine.Send(cmd.Context(), &commands.UpdateThreatCommand{
				Zone:  zone,
				Level: remote.ThreatLevel(strings.ToUpper(level)),
			})
			if err != nil {
				return err
			}
			result := response.(*commands.UpdateThreatResponse)

			if result.Changed {
				fmt.Fprintf(cmd.OutOrStdout(), "✓ %s threat is now %s\n", zone, result.Metadata.ThreatLevel)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%s threat unchanged (%s)\n", zone, result.Metadata.ThreatLevel)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&zone, "zone", "", "Zone (required)")
	cmd.Flags().StringVar(&level, "level", string(remote.ThreatSafe), "SAFE, ENEMY_INVADER_CORE or ENEMY_ATTACK_CREEPS")
	return cmd
}

func newRemoteStaffCommand() *cobra.Command {
	var (
		node   string
		role   string
		slot   int
		worker string
	)

	cmd := &cobra.Command{
		Use:   "staff",
		Short: "Put a worker into a roster slot",
		RunE: func(cmd *cobra.Command, args []string) error {
			if node == "" || worker == "" {
				return fmt.Errorf("--node and --worker flags are required")
			}
			engine, err := openEngine()
			if err != nil {
				return err
			}
			defer engine.Close()

			response, err := engine.Send(cmd.Context(), &commands.AssignWorkerCommand{
				NodeID: node,
				Role:   remote.WorkerRole(role),
				Slot:   slot,
				Worker: worker,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✓ %s staffed as %s\n", worker, role)
			printAssignment(cmd.OutOrStdout(), response.(*commands.StaffResponse).Assignment)
			return nil
		},
	}

	cmd.Flags().StringVar(&node, "node", "", "Node id x.y.zone (required)")
	cmd.Flags().StringVar(&role, "role", string(remote.RoleHarvester), "harvester or hauler")
	cmd.Flags().IntVar(&slot, "slot", 0, "Hauler slot index")
	cmd.Flags().StringVar(&worker, "worker", "", "Worker name (required)")
	return cmd
}

func newRemoteVacateCommand() *cobra.Command {
	var node, worker string

	cmd := &cobra.Command{
		Use:   "vacate",
		Short: "Free every slot a worker holds on a node",
		RunE: func(cmd *cobra.Command, args []string) error {
			if node == "" || worker == "" {
				return fmt.Errorf("--node and --worker flags are required")
			}
			engine, err := openEngine()
			if err != nil {
				return err
			}
			defer engine.Close()

			if _, err := engine.Send(cmd.Context(), &commands.VacateWorkerCommand{NodeID: node, Worker: worker}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ %s removed from %s\n", worker, node)
			return nil
		},
	}

	cmd.Flags().StringVar(&node, "node", "", "Node id x.y.zone (required)")
	cmd.Flags().StringVar(&worker, "worker", "", "Worker name (required)")
	return cmd
}

func newRemoteOperationalCommand() *cobra.Command {
	var node string

	cmd := &cobra.Command{
		Use:   "operational",
		Short: "Mark a node's container as built",
		RunE: func(cmd *cobra.Command, args []string) error {
			if node == "" {
				return fmt.Errorf("--node flag is required")
			}
			engine, err := openEngine()
			if err != nil {
				return err
			}
			defer engine.Close()

			if _, err := engine.Send(cmd.Context(), &commands.MarkOperationalCommand{NodeID: node}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ %s is operational\n", node)
			return nil
		},
	}

	cmd.Flags().StringVar(&node, "node", "", "Node id x.y.zone (required)")
	return cmd
}

func printProfile(out io.Writer, p *economy.Profile) {
	fmt.Fprintf(out, "Node:              %s\n", p.NodeID)
	fmt.Fprintf(out, "Source Yield:      %s\n", formatEnergy(p.SourceYield))
	fmt.Fprintf(out, "Mining Position:   %s\n", p.MiningPosition)
	fmt.Fprintf(out, "Road Length:       %d\n", p.RoadLength)
	fmt.Fprintf(out, "Road Maintenance:  %s\n", formatEnergy(p.RoadMaintenance))
	fmt.Fprintf(out, "Container Upkeep:  %s\n", formatEnergy(p.ContainerMaintenance))
	fmt.Fprintf(out, "Harvester:         %d WORK / %d MOVE, %s\n", p.HarvesterWork, p.HarvesterMove, formatEnergy(p.HarvesterUpkeep))
	fmt.Fprintf(out, "Haulers:           %d x %s\n", p.HaulerCount, formatEnergy(p.HaulerUpkeep))
	if p.ReservationRequired {
		fmt.Fprintf(out, "Reserver:          %s\n", formatEnergy(p.ReserverUpkeep))
	}
	fmt.Fprintf(out, "Total Upkeep:      %s\n", formatEnergy(p.TotalUpkeep()))
	fmt.Fprintf(out, "Net Income:        %s per cycle\n", formatEnergy(p.NetIncome))
}

func printAssignment(out io.Writer, a *remote.Assignment) {
	fmt.Fprintf(out, "  Node:        %s\n", a.NodeID())
	fmt.Fprintf(out, "  Base:        %s\n", a.Base())
	fmt.Fprintf(out, "  Setup:       %s\n", a.SetupStatus())
	fmt.Fprintf(out, "  Harvester:   %s\n", a.Harvester())
	fmt.Fprintf(out, "  Haulers:     %v\n", a.Haulers())
	fmt.Fprintf(out, "  Road Length: %d\n", a.RoadLength())
	fmt.Fprintf(out, "  Net Income:  %s per cycle\n", formatEnergy(a.NetIncome()))
}
