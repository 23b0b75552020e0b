package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"zapper/internal/display"
)

var taskParams map[string]string

func newTaskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Run or list one-off project tasks",
	}
	cmd.AddCommand(newTaskRunCmd())
	cmd.AddCommand(newTaskListCmd())
	return cmd
}

func newTaskRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <name>",
		Short: "Run the named task",
		Args:  cobra.ExactArgs(1),
		RunE:  runTaskRun,
	}
	cmd.Flags().StringToStringVar(&taskParams, "param", nil, "Task parameter as key=value (repeatable)")
	return cmd
}

func runTaskRun(cmd *cobra.Command, args []string) error {
	return orch.RunTask(cmd.Context(), args[0], taskParams)
}

func newTaskListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every declared task",
		RunE:  runTaskList,
	}
}

func runTaskList(cmd *cobra.Command, args []string) error {
	names := orch.TaskNames()
	rows := make([]display.TaskRow, len(names))
	for i, n := range names {
		rows[i] = display.TaskRow{Name: n}
	}
	formatter := display.NewFactory().CreateFormatter(outputOptions())
	fmt.Println(formatter.FormatTaskList(rows))
	return nil
}
