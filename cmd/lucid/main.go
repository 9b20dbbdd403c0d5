// main.go bootstraps lucid: it builds the root Cobra command, wires config
// binding, and executes with a signal-aware context.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	rootCmd := newRootCommand()
	err := rootCmd.ExecuteContext(ctx)
	handleError(err)
	if err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	logLevel := "info"
	cmd := &cobra.Command{
		Use:           "lucid",
		Short:         "Rule extraction from trained neural networks",
		Long:          "lucid trains a feed-forward network on a tabular dataset and distills its decision function\ninto a compact conjunctive rule set via quantile thresholding and the cg-extract solver.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", logLevel, "Log level for lucid output (debug, info, warn, or error)")

	runCmd := newRunCommand(&logLevel)
	gridCmd := newGridCommand(&logLevel)
	validateCmd := newValidateCommand()
	reportCmd := newReportCommand()
	vizCmd := newVizCommand()
	diffCmd := newDiffCommand()
	cmd.AddCommand(runCmd, gridCmd, validateCmd, reportCmd, vizCmd, diffCmd, newVersionCommand())

	cmd.Example = `  # Run the XOR experiment end to end
  lucid run -c configs/xor.yaml

  # Sweep the MAGIC grid with four workers
  lucid grid -c configs/magic.yaml --workers 4

  # Inspect recent runs for an output directory
  lucid report --output-dir results/magic --days 7`
	bindViper(cmd, runCmd, gridCmd, validateCmd, reportCmd, vizCmd, diffCmd)
	return cmd
}

// bindViper layers LUCID_* environment variables and an optional config file
// (LUCID_CONFIG) underneath any flag the user did not set explicitly.
func bindViper(commands ...*cobra.Command) {
	if len(commands) == 0 {
		return
	}
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.SetEnvPrefix("LUCID")
	v.AutomaticEnv()
	if configFile := os.Getenv("LUCID_CONFIG"); configFile != "" {
		v.SetConfigFile(configFile)
	}

	cobra.OnInitialize(func() {
		for _, cmd := range commands {
			if err := v.BindPFlags(cmd.Flags()); err != nil {
				cobra.CheckErr(err)
			}
			if err := v.BindPFlags(cmd.PersistentFlags()); err != nil {
				cobra.CheckErr(err)
			}
		}
		if v.ConfigFileUsed() != "" {
			if err := v.ReadInConfig(); err != nil {
				cobra.CheckErr(err)
			}
		}
		for _, cmd := range commands {
			for _, fs := range []*pflag.FlagSet{cmd.Flags(), cmd.PersistentFlags()} {
				fs.VisitAll(func(f *pflag.Flag) {
					if f.Changed || !v.IsSet(f.Name) {
						return
					}
					if val := fmt.Sprintf("%v", v.Get(f.Name)); val != "" {
						_ = f.Value.Set(val)
					}
				})
			}
		}
	})
}

func handleError(err error) {
	if err == nil || errors.Is(err, pflag.ErrHelp) {
		return
	}
	message := err.Error()
	switch {
	case errors.Is(err, context.Canceled):
		message = fmt.Sprintf("%s\nHint: the run was interrupted before completing; partial history was not recorded.", err)
	case errors.Is(err, os.ErrNotExist):
		message = fmt.Sprintf("%s\nHint: check dataset_file and output_dir paths in the experiment config.", err)
	}
	fmt.Fprintf(os.Stderr, "Error: %s\n", message)
}
