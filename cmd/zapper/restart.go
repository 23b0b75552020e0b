package main

import "github.com/spf13/cobra"

func newRestartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restart [service...]",
		Short: "Stop then start every service, or just the named ones",
		RunE:  runRestart,
	}
}

func runRestart(cmd *cobra.Command, args []string) error {
	return orch.RestartProcesses(cmd.Context(), args)
}
