package main

import "github.com/spf13/cobra"

func newCloneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clone [service...]",
		Short: "Clone every service's declared repo that isn't checked out yet",
		RunE:  runClone,
	}
}

func runClone(cmd *cobra.Command, args []string) error {
	return withSpinner("Cloning repositories...", func() error {
		return orch.CloneRepos(cmd.Context(), args)
	})
}
