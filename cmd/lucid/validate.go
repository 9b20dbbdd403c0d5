// validate.go registers 'lucid validate', schema checking for experiment configs.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/lucid/internal/expconfig"
)

func newValidateCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate an experiment config without running it",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := expconfig.Load(configPath)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid experiment config: %w", err)
			}
			if _, err := os.Stat(cfg.DatasetFile); err != nil {
				color.Yellow("Warning: dataset_file %s is not readable: %v", cfg.DatasetFile, err)
			}
			color.Green("%s is valid", configPath)
			fmt.Printf("  dataset: %s (%s)\n", cfg.DatasetName, cfg.DatasetFile)
			fmt.Printf("  extractor: %s, scoring: %s, folds: %d, seed: %d\n",
				cfg.RuleExtractor, cfg.RuleScoreMechanism, cfg.NFolds, cfg.RandomSeed)
			if cfg.GridSearchParams.Enabled {
				fmt.Printf("  grid search: enabled\n")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to the experiment YAML config (required)")
	_ = cmd.MarkFlagRequired("config")
	return cmd
}
