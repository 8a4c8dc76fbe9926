package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var scanOutputFlag string
var scanPrettyFlag bool

// scanCmd represents the scan command.
var scanCmd = newScanCmd()

func newScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan [path]",
		Short: "Analyze a Python tree and emit JSON",
		Long: `Scan walks the given directory (default: current directory), parses every
Python file, and writes the per-file records plus the weighted call graph
as a single JSON document. Files that fail to parse are reported inside
the document; they never abort the scan.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := runAnalysis(cmd, args)
			if err != nil {
				return err
			}

			var data []byte
			if scanPrettyFlag {
				data, err = json.MarshalIndent(result, "", "  ")
			} else {
				data, err = json.Marshal(result)
			}
			if err != nil {
				return fmt.Errorf("encoding result: %w", err)
			}
			data = append(data, '\n')

			return writeOutput(cmd, scanOutputFlag, data)
		},
	}

	cmd.Flags().StringVarP(&scanOutputFlag, "output", "o", "", "write JSON to this file instead of stdout")
	cmd.Flags().BoolVar(&scanPrettyFlag, "pretty", false, "indent the JSON output")

	return cmd
}

func init() {
	rootCmd.AddCommand(scanCmd)
}
