package main

import "github.com/spf13/cobra"

func newStopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stop [service...]",
		Short: "Stop every running service, or just the named ones",
		RunE:  runStop,
	}
}

func runStop(cmd *cobra.Command, args []string) error {
	return orch.StopProcesses(cmd.Context(), args)
}
