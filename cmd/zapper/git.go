package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"zapper/internal/display"
)

func newGitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "git",
		Short: "Git operations across every service with a declared repo",
	}
	cmd.AddCommand(newGitCheckoutCmd())
	cmd.AddCommand(newGitPullCmd())
	cmd.AddCommand(newGitStatusCmd())
	return cmd
}

func newGitCheckoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "checkout <branch>",
		Short: "Check out branch in every repo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return orch.GitCheckoutAll(cmd.Context(), args[0])
		},
	}
}

func newGitPullCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pull",
		Short: "Fast-forward pull every repo",
		RunE: func(cmd *cobra.Command, args []string) error {
			return orch.GitPullAll(cmd.Context())
		},
	}
}

func newGitStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show git status for every repo",
		RunE:  runGitStatus,
	}
}

func runGitStatus(cmd *cobra.Command, args []string) error {
	statuses, err := orch.GitStatusAll(cmd.Context())
	if err != nil {
		return err
	}

	rows := make([]display.GitRow, len(statuses))
	for i, s := range statuses {
		rows[i] = display.GitRow{Name: s.Dir, Branch: s.Branch, Dirty: s.Dirty, Ahead: s.Ahead, Behind: s.Behind}
	}

	formatter := display.NewFactory().CreateFormatter(outputOptions())
	fmt.Println(formatter.FormatGitList(rows))
	return nil
}
