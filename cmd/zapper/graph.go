package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newGraphCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "graph",
		Short: "Print each service's declared dependencies",
		RunE:  runGraph,
	}
}

func runGraph(cmd *cobra.Command, args []string) error {
	for _, edge := range orch.DependencyEdges() {
		if len(edge.DependsOn) == 0 {
			fmt.Println(edge.Name)
			continue
		}
		fmt.Printf("%s -> %s\n", edge.Name, strings.Join(edge.DependsOn, ", "))
	}
	return nil
}
