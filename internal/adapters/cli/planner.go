package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/remoteminer-go/internal/adapters/metrics"
	"github.com/andrescamacho/remoteminer-go/internal/application/remote/commands"
	"github.com/andrescamacho/remoteminer-go/internal/domain/remote"
	"github.com/andrescamacho/remoteminer-go/internal/infrastructure/pidfile"
)

// NewPlannerCommand creates the planner command with subcommands
func NewPlannerCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "planner",
		Short: "Run the periodic planning loop",
	}

	cmd.AddCommand(newPlannerRunCommand())
	return cmd
}

func newPlannerRunCommand() *cobra.Command {
	var (
		ticks      int
		autoAssign bool
		interval   time.Duration
		budget     int
		pidPath    string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Reevaluate assignments and claim new sources tick by tick",
		Long: `Run the planner. Each tick it reevaluates existing assignments, reports
profile drift and, with --auto-assign, claims the best remote source for
bases whose assignments are all operational. Work per tick is capped by the
evaluation budget; the rest carries over.

--ticks 0 runs until interrupted.

Example:
  remoteminer planner run --ticks 100 --auto-assign --interval 0`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("interval") {
				cfg.Planner.TickInterval = interval
			}
			if cmd.Flags().Changed("budget") {
				cfg.Planner.EvaluationsPerTick = budget
				if cfg.Planner.Burst < budget {
					cfg.Planner.Burst = budget
				}
			}
			if cmd.Flags().Changed("auto-assign") {
				cfg.Planner.AutoAssign = autoAssign
			}
			if cmd.Flags().Changed("pid-file") {
				cfg.Planner.PIDFile = pidPath
			}

			if cfg.Planner.PIDFile != "" {
				lock := pidfile.New(cfg.Planner.PIDFile)
				if err := lock.Acquire(); err != nil {
					return err
				}
				defer lock.Release()
			}

			engine, err := NewEngine(cfg, nil)
			if err != nil {
				return err
			}
			defer engine.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if cfg.Metrics.Enabled {
				server := metrics.NewServer(cfg.Metrics.Address(), cfg.Metrics.Path)
				serveErr := server.Start()
				defer func() {
					shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					_ = server.Shutdown(shutdownCtx)
				}()
				go func() {
					if err := <-serveErr; err != nil {
						engine.Logger.Log("ERROR", "Metrics server failed", map[string]interface{}{"error": err.Error()})
					}
				}()
			}

			disposals := engine.Events.Subscribe("")
			defer engine.Events.Unsubscribe("", disposals)

			response, err := engine.Send(ctx, &commands.RunPlannerCommand{
				Ticks:      ticks,
				AutoAssign: cfg.Planner.AutoAssign,
			})
			if err != nil {
				return err
			}
			printPlannerRun(cmd, response.(*commands.RunPlannerResponse), drain(disposals))
			return nil
		},
	}

	cmd.Flags().IntVar(&ticks, "ticks", 1, "Ticks to run (0 runs until interrupted)")
	cmd.Flags().BoolVar(&autoAssign, "auto-assign", false, "Claim new sources for idle bases")
	cmd.Flags().DurationVar(&interval, "interval", 0, "Wall time between ticks (default from config)")
	cmd.Flags().IntVar(&budget, "budget", 0, "Evaluations per tick (default from config)")
	cmd.Flags().StringVar(&pidPath, "pid-file", "", "Refuse to start while another planner holds this file")

	return cmd
}

func drain(ch <-chan remote.WorkerDisposalRequested) []remote.WorkerDisposalRequested {
	var out []remote.WorkerDisposalRequested
	for {
		select {
		case event, ok := <-ch:
			if !ok {
				return out
			}
			out = append(out, event)
		default:
			return out
		}
	}
}

func printPlannerRun(cmd *cobra.Command, result *commands.RunPlannerResponse, disposals []remote.WorkerDisposalRequested) {
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "Planner run %s\n", result.RunID)
	fmt.Fprintf(out, "  Ticks:        %d\n", result.Ticks)
	fmt.Fprintf(out, "  Evaluations:  %d\n", result.Evaluations)
	fmt.Fprintf(out, "  Claims:       %d\n", result.Claims)
	fmt.Fprintf(out, "  Deferred:     %d\n", result.Deferred)

	if len(result.Drifts) > 0 {
		fmt.Fprintln(out, "\nDrift:")
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "TICK\tBASE\tNODE\tNET INCOME\tHAULERS\tMOVED")
		for _, d := range result.Drifts {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%+d\t%s\n",
				d.Tick, d.Base, d.NodeID, formatDelta(d.NetIncomeDelta), d.HaulerDelta, yesNo(d.MiningPositionChanged))
		}
		_ = w.Flush()
	}

	for _, d := range disposals {
		fmt.Fprintf(out, "Dispose %s from %s (%s)\n", d.Worker, d.NodeID, d.Reason)
	}
}
