package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"alertsmoke/internal/smoke"

	"github.com/spf13/cobra"
)

var (
	runTimeout    time.Duration
	runVerbose    bool
	runDebug      bool
	runConfigPath string
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run [all|fast|slow]",
	Short: "Run integration smoke suites against a live alert-center",
	Long: `The run command executes the integration smoke suites against a running
alert-center instance reachable at the configured API base URL.

Suites:
- fast: resource CRUD round-trips (templates, channels, data sources,
  silences, tickets, users, batch import/export, read-only summaries)
- slow: full alert lifecycles (firing and resolution observed through
  alert history and webhook delivery, SLA breach materialization,
  WebSocket push notifications, on-call scheduling, correlation reads,
  escalation accept/reject across two principals)
- all (default): fast followed by slow, stopping at the first failing
  group

The harness starts four local stub listeners emulating the platform's
outbound integrations before any scenario runs, and tears them down
after cleanup. Every resource created during a run is deleted again on
a best-effort basis, even when scenarios fail along the way.

Example usage:
  alertsmoke run                     # Run both suites
  alertsmoke run fast                # Resource CRUD only
  alertsmoke run slow --verbose      # Lifecycle suite with live progress
  alertsmoke run --config=ci.yaml    # Override endpoints and timeouts`,
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"all", "fast", "slow"},
	RunE:      runSmoke,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().DurationVar(&runTimeout, "timeout", 20*time.Minute, "Overall run timeout across all selected suites")
	runCmd.Flags().BoolVar(&runVerbose, "verbose", false, "Enable per-scenario progress output")
	runCmd.Flags().BoolVar(&runDebug, "debug", false, "Enable debug logging of every API call")
	runCmd.Flags().StringVar(&runConfigPath, "config", "", "Path to a YAML file overriding harness defaults")
}

// suitesForMode maps the positional selector onto the suites to execute,
// in execution order.
func suitesForMode(mode string) ([]smoke.Suite, error) {
	switch mode {
	case "all":
		return []smoke.Suite{smoke.SuiteFast, smoke.SuiteSlow}, nil
	case "fast":
		return []smoke.Suite{smoke.SuiteFast}, nil
	case "slow":
		return []smoke.Suite{smoke.SuiteSlow}, nil
	default:
		return nil, fmt.Errorf("invalid mode %q, must be one of: all, fast, slow", mode)
	}
}

func runSmoke(cmd *cobra.Command, args []string) error {
	mode := "all"
	if len(args) > 0 {
		mode = args[0]
	}
	suites, err := suitesForMode(mode)
	if err != nil {
		return err
	}

	// Create context with signal handling
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\nReceived interrupt signal, stopping smoke run gracefully...")
		cancel()
	}()

	cfg, err := smoke.LoadConfig(runConfigPath)
	if err != nil {
		return fmt.Errorf("failed to load harness config: %w", err)
	}

	timeoutCtx, timeoutCancel := context.WithTimeout(ctx, runTimeout)
	defer timeoutCancel()

	logger := smoke.NewStdoutLogger(runVerbose, runDebug)

	// The outer selector fails fast: the first failing group stops the run
	// and its exit status propagates.
	for _, suite := range suites {
		fmt.Printf("🚀 Running %s suite against %s\n", suite, cfg.APIBase)

		runner := smoke.NewRunner(cfg, logger)
		outcomes, err := runner.Run(timeoutCtx, suite)
		if err != nil {
			// Setup failures are fatal to the whole run; any outcomes that
			// were recorded before the abort still get reported.
			if len(outcomes) > 0 {
				report, _ := smoke.Summarize(outcomes)
				fmt.Print(report)
			}
			return err
		}

		report, ok := smoke.Summarize(outcomes)
		fmt.Print(report)
		if !ok {
			os.Exit(ExitCodeError)
		}
	}

	fmt.Println("All smoke suites passed")
	return nil
}
