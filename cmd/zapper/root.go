package main

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"zapper/internal/display"
	"zapper/internal/orchestrator"
	"zapper/internal/zerrors"
	"zapper/pkg/logging"
)

// Exit codes follow common CLI conventions.
const (
	ExitCodeSuccess = 0
	ExitCodeError   = 1
	ExitCodeNotFound = 2
)

var (
	flagOutput     string
	flagQuiet      bool
	flagDebug      bool
	flagConfigPath string
	flagHTTP       bool
	flagSSH        bool
	flagInstance   string
)

var orch = orchestrator.New()

var rootCmd = &cobra.Command{
	Use:   "zapper",
	Short: "Reconcile local dev-service processes and containers",
	Long: `zapper starts, stops, and restarts a project's native processes and
docker containers in dependency order, tracking their running state
across invocations.`,
	SilenceUsage:      true,
	PersistentPreRunE: rootPersistentPreRun,
}

func rootPersistentPreRun(cmd *cobra.Command, args []string) error {
	level := logging.LevelInfo
	if flagDebug {
		level = logging.LevelDebug
	}
	logging.InitForCLI(level, os.Stderr)

	if cmd.Name() == "version" {
		return nil
	}

	return orch.LoadConfig(orchestrator.CLIOverrides{
		ConfigPath:      flagConfigPath,
		GitMethodHTTP:   flagHTTP,
		GitMethodSSH:    flagSSH,
		InstanceID:      flagInstance,
		SuppressWarning: flagQuiet,
	})
}

func outputOptions() display.Options {
	return display.Options{Format: display.OutputFormat(flagOutput), Quiet: flagQuiet}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagOutput, "output", "o", "table", "Output format (table, console, json, yaml)")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress decorative output")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&flagConfigPath, "config-path", "", "Path to zapper.yaml (default: search upward from cwd)")
	rootCmd.PersistentFlags().BoolVar(&flagHTTP, "http", false, "Force git operations over HTTPS")
	rootCmd.PersistentFlags().BoolVar(&flagSSH, "ssh", false, "Force git operations over SSH")
	rootCmd.PersistentFlags().StringVar(&flagInstance, "instance", "", "Isolate this invocation under a specific instance id")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newStartCmd())
	rootCmd.AddCommand(newStopCmd())
	rootCmd.AddCommand(newRestartCmd())
	rootCmd.AddCommand(newStatusCmd())
	rootCmd.AddCommand(newLogsCmd())
	rootCmd.AddCommand(newResetCmd())
	rootCmd.AddCommand(newCloneCmd())
	rootCmd.AddCommand(newTaskCmd())
	rootCmd.AddCommand(newGitCmd())
	rootCmd.AddCommand(newGraphCmd())
}

// Execute runs the root command and maps returned errors to exit codes.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(exitCodeFor(err))
	}
}

func exitCodeFor(err error) int {
	var notFound *zerrors.ServiceNotFound
	if errors.As(err, &notFound) {
		return ExitCodeNotFound
	}
	var notLoaded *zerrors.ContextNotLoaded
	if errors.As(err, &notLoaded) {
		return ExitCodeNotFound
	}
	return ExitCodeError
}
