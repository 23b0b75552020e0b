package main

import (
	"github.com/spf13/cobra"
)

var (
	startForce   bool
	startProfile string
)

func newStartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start [service...]",
		Short: "Start every not-running service, or just the named ones",
		RunE:  runStart,
	}
	cmd.Flags().BoolVar(&startForce, "force", false, "Restart services that are already running")
	cmd.Flags().StringVar(&startProfile, "profile", "", "Active profile to select services by")
	return cmd
}

func runStart(cmd *cobra.Command, args []string) error {
	if startProfile != "" {
		if err := orch.SetActiveProfile(startProfile); err != nil {
			return err
		}
	}
	return withSpinner("Starting services...", func() error {
		return orch.StartProcesses(cmd.Context(), args, startForce)
	})
}
