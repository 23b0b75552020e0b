package main

import (
	"bufio"
	"fmt"

	"github.com/spf13/cobra"
)

var logsFollow bool

func newLogsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logs <service>",
		Short: "Show a service's log",
		Args:  cobra.ExactArgs(1),
		RunE:  runLogs,
	}
	cmd.Flags().BoolVarP(&logsFollow, "follow", "f", false, "Follow the log as it grows")
	return cmd
}

func runLogs(cmd *cobra.Command, args []string) error {
	rc, err := orch.ShowLogs(cmd.Context(), args[0], logsFollow)
	if err != nil {
		return err
	}
	defer rc.Close()

	scanner := bufio.NewScanner(rc)
	for scanner.Scan() {
		fmt.Println(scanner.Text())
	}
	return scanner.Err()
}
