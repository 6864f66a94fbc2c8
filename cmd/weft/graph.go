package main

import (
	"fmt"

	"github.com/aretw0/weft/internal/compiler"
	"github.com/aretw0/weft/internal/presentation/graph"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph <program.yaml>",
	Short: "Export the program graph visualization",
	Long:  `Compiles the program and outputs a Mermaid diagram (graph TD) of its node graph.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		prog, err := compiler.ParseFile(args[0])
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(prog.Graph, nil))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}
