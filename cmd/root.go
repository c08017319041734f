package cmd

import (
	"errors"
	"os"

	"alertsmoke/internal/smoke"

	"github.com/spf13/cobra"
)

// Exit codes for CLI commands.
const (
	// ExitCodeSuccess indicates every scenario passed.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a general error (scenario failures, invalid arguments).
	ExitCodeError = 1
	// ExitCodeSetupFailed indicates the run could not even start: the admin
	// login failed or a required seed resource was missing.
	ExitCodeSetupFailed = 2
)

// rootCmd represents the base command for the alertsmoke application.
// It is the entry point when the application is called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "alertsmoke",
	Short: "Integration smoke tests for the alert-center platform",
	Long: `alertsmoke drives a running alert-center instance through its public
HTTP API and WebSocket channel. It emulates every external system the
platform notifies (generic webhook receivers, a Telegram-style bot API,
a Lark-style webhook, a Prometheus-style metrics source) so that alert
lifecycles can be exercised deterministically and without network access.`,
	// SilenceUsage prevents Cobra from printing the usage message on errors
	// that are handled by the application.
	SilenceUsage: true,
}

// SetVersion sets the version for the root command.
// This function is typically called from the main package to inject the
// application version at build time.
func SetVersion(v string) {
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application.
// It initializes and executes the root command, which in turn handles
// subcommands and flags. This function is called by main.main().
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "alertsmoke version %s\n" .Version}}`)

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(getExitCode(err))
	}
}

// getExitCode determines the appropriate exit code based on the error type.
// This provides semantic exit codes for scripting and CI pipelines.
func getExitCode(err error) int {
	if err == nil {
		return ExitCodeSuccess
	}
	var setup *smoke.SetupError
	if errors.As(err, &setup) {
		return ExitCodeSetupFailed
	}
	return ExitCodeError
}

func init() {
	rootCmd.AddCommand(newVersionCmd())
}
