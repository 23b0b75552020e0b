package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"zapper/internal/display"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show every declared service's current running state",
		RunE:  runStatus,
	}
}

func runStatus(cmd *cobra.Command, args []string) error {
	statuses, err := orch.Status(cmd.Context())
	if err != nil {
		return err
	}

	rows := make([]display.ServiceRow, len(statuses))
	for i, s := range statuses {
		rows[i] = display.ServiceRow{Name: s.Name, Kind: s.Kind.String(), Running: s.Running, Pid: s.Pid}
	}

	formatter := display.NewFactory().CreateFormatter(outputOptions())
	fmt.Println(formatter.FormatServiceList(rows))
	return nil
}
