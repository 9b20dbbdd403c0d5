// run.go registers 'lucid run', the single-experiment train/extract/evaluate flow.
package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/example/lucid/internal/dataset"
	"github.com/example/lucid/internal/evalx"
	"github.com/example/lucid/internal/expconfig"
	"github.com/example/lucid/internal/logging"
	"github.com/example/lucid/internal/pipeline"
)

func newRunCommand(logLevel *string) *cobra.Command {
	var configPath string
	var outputDir string
	var seed int64

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one experiment: train, extract rules, evaluate across folds",
		Long: `Loads the experiment config, trains the network per fold, extracts a rule set with
the configured solver, and reports cross-validated fidelity and accuracy. The final
rule set (fit on the full dataset) is written to the output directory alongside the
run history database.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger, err := logging.New(*logLevel)
			if err != nil {
				return err
			}
			defer logger.Sync()

			cfg, err := expconfig.Load(configPath)
			if err != nil {
				return err
			}
			if outputDir != "" {
				cfg.OutputDir = outputDir
			}
			if seed != 0 {
				cfg.RandomSeed = seed
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid experiment config: %w", err)
			}

			ds, err := dataset.LoadCSV(cfg.DatasetFile, cfg.DatasetName)
			if err != nil {
				return err
			}
			logger.Info("dataset loaded",
				zap.String("dataset", ds.Name),
				zap.Int("samples", ds.Len()),
				zap.Int("features", ds.NumFeatures()),
				zap.Int("classes", ds.NumClasses()),
			)

			outcome, err := pipeline.Run(ctx, cfg, ds, logger)
			if err != nil {
				return err
			}

			rulesetPath := filepath.Join(cfg.OutputDir, fmt.Sprintf("%s-ruleset.yaml", cfg.DatasetName))
			if err := outcome.Ruleset.Save(rulesetPath); err != nil {
				return fmt.Errorf("write ruleset artifact: %w", err)
			}

			history, err := evalx.OpenHistory(cfg.OutputDir)
			if err != nil {
				return err
			}
			defer history.Close()
			record := evalx.RunRecord{
				Dataset:   cfg.DatasetName,
				Extractor: cfg.RuleExtractor,
				Mechanism: cfg.RuleScoreMechanism,
				Seed:      cfg.RandomSeed,
				Candidate: -1,
				Aggregate: outcome.Aggregate,
				Folds:     outcome.Folds,
				Scorecard: outcome.Scorecard,
			}
			if err := history.Append(ctx, record); err != nil {
				return fmt.Errorf("record run history: %w", err)
			}

			printFolds(outcome.Folds)
			printScorecard(outcome.Scorecard)
			printTopTerms(outcome.Ruleset, 5)
			fmt.Printf("\nRuleset written to %s (%d clauses)\n", rulesetPath, outcome.Ruleset.NumClauses())
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to the experiment YAML config (required)")
	cmd.Flags().StringVar(&outputDir, "output-dir", "", "Override the config's output_dir")
	cmd.Flags().Int64Var(&seed, "seed", 0, "Override the config's random_seed")
	_ = cmd.MarkFlagRequired("config")
	return cmd
}
