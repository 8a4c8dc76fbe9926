package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/phobologic/callmap/internal/dot"
)

var graphOutputFlag string
var graphKindFlag string

// graphCmd represents the graph command.
var graphCmd = newGraphCmd()

func newGraphCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "graph [path]",
		Short: "Render the analysis as Graphviz DOT",
		Long: `Graph runs the same analysis as scan and renders it as DOT text for the
Graphviz dot tool. --kind calls draws the weighted function call graph;
--kind classes draws the class inheritance hierarchy.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if graphKindFlag != "calls" && graphKindFlag != "classes" {
				return fmt.Errorf("unknown graph kind %q (want calls or classes)", graphKindFlag)
			}

			result, err := runAnalysis(cmd, args)
			if err != nil {
				return err
			}

			var out string
			if graphKindFlag == "classes" {
				out = dot.ClassHierarchy(result.Files)
			} else {
				out = dot.CallGraph(result.Edges)
			}

			return writeOutput(cmd, graphOutputFlag, []byte(out))
		},
	}

	cmd.Flags().StringVarP(&graphOutputFlag, "output", "o", "", "write DOT to this file instead of stdout")
	cmd.Flags().StringVar(&graphKindFlag, "kind", "calls", "graph to render: calls or classes")

	return cmd
}

func init() {
	rootCmd.AddCommand(graphCmd)
}
