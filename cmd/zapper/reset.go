package main

import "github.com/spf13/cobra"

var resetForce bool

func newResetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Stop every service and clear persisted state",
		RunE:  runReset,
	}
	cmd.Flags().BoolVar(&resetForce, "force", false, "Also remove wrapper scripts and log files")
	return cmd
}

func runReset(cmd *cobra.Command, args []string) error {
	return orch.Reset(cmd.Context(), resetForce)
}
