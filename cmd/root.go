// Package cmd provides the root command and CLI setup for callmap.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/phobologic/callmap/internal/analyze"
	"github.com/phobologic/callmap/internal/model"
)

var ignoreDirsFlag []string
var workersFlag int
var maxFileSizeFlag int
var gitignoreFlag bool
var logFileFlag string
var verboseFlag bool

const rootLongDescription = `Callmap statically analyzes a Python source tree. It records every
function and class declaration, resolves call expressions to dotted names,
and links callers to callees by declared name across the whole tree.

The scan command emits the per-file records and the weighted call graph as
JSON; the graph command renders the same analysis as Graphviz DOT text.`

// rootCmd represents the base command when called without any subcommands.
var rootCmd = baseRootCmd()

func baseRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "callmap",
		Short: "Python call graph and symbol index generator",
		Long:  rootLongDescription,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			configureLogger(logFileFlag, verboseFlag)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	configureRootFlags(cmd)
	return cmd
}

func configureRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringSliceVar(&ignoreDirsFlag, ignoreDirsFlagName, viper.GetStringSlice(ignoreDirsConfigKey), "directory basenames to skip while walking")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(ignoreDirsFlagName), ignoreDirsConfigKey)

	cmd.PersistentFlags().IntVar(&workersFlag, workersFlagName, viper.GetInt(workersConfigKey), "parse worker count (0 = number of CPUs)")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(workersFlagName), workersConfigKey)

	cmd.PersistentFlags().IntVar(&maxFileSizeFlag, maxFileSizeFlagName, viper.GetInt(maxFileSizeConfigKey), "record files larger than this many bytes as failures")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(maxFileSizeFlagName), maxFileSizeConfigKey)

	cmd.PersistentFlags().BoolVar(&gitignoreFlag, gitignoreFlagName, viper.GetBool(gitignoreConfigKey), "additionally filter walked files through the root .gitignore")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(gitignoreFlagName), gitignoreConfigKey)

	cmd.PersistentFlags().StringVar(&logFileFlag, "log-file", "", "log file path (default "+defaultLogFilename+")")
	cmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "log at debug level")
}

// bindFlagToConfig wires a Cobra flag to a Viper key so config/env values feed the flag.
func bindFlagToConfig(flag *pflag.Flag, key string) {
	if flag == nil {
		cobra.CheckErr(fmt.Errorf("flag for config key %q not found", key))
		return
	}

	cobra.CheckErr(viper.BindPFlag(key, flag))
}

// analyzeOptions assembles pipeline options from config plus the optional
// positional root argument.
func analyzeOptions(args []string) analyze.Options {
	root := "."
	if len(args) > 0 {
		root = args[0]
	}

	var ignore []string
	if dirs := viper.GetStringSlice(ignoreDirsConfigKey); len(dirs) > 0 {
		ignore = dirs
	}

	return analyze.Options{
		Root:         root,
		IgnoreDirs:   ignore,
		Workers:      viper.GetInt(workersConfigKey),
		MaxFileSize:  viper.GetInt(maxFileSizeConfigKey),
		UseGitignore: viper.GetBool(gitignoreConfigKey),
	}
}

// runAnalysis runs the pipeline for the given positional args and logs a
// summary. The summary goes to the log sink only; stdout carries nothing
// but the requested artifact.
func runAnalysis(cmd *cobra.Command, args []string) (*model.Result, error) {
	result, err := analyze.Run(cmd.Context(), analyzeOptions(args))
	if err != nil {
		return nil, err
	}

	var failures, functions, classes int
	for _, rec := range result.Files {
		if !rec.Success {
			failures++
			continue
		}
		functions += len(rec.Functions)
		classes += len(rec.Classes)
	}
	slog.Info("analysis complete",
		"root", result.Root,
		"files", len(result.Files),
		"failures", failures,
		"functions", functions,
		"classes", classes,
		"edges", len(result.Edges))

	return result, nil
}

// writeOutput writes data to path, or to the command's stdout when path is
// empty.
func writeOutput(cmd *cobra.Command, path string, data []byte) error {
	if path == "" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
