// grid.go registers 'lucid grid', the hyperparameter sweep over n-fold runs.
package main

import (
	"fmt"
	"path/filepath"
	"runtime"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/example/lucid/internal/dataset"
	"github.com/example/lucid/internal/evalx"
	"github.com/example/lucid/internal/expconfig"
	"github.com/example/lucid/internal/gridsearch"
	"github.com/example/lucid/internal/logging"
)

func newGridCommand(logLevel *string) *cobra.Command {
	var configPath string
	var workers int

	cmd := &cobra.Command{
		Use:   "grid",
		Short: "Grid-search hyperparameters with cross-validated scoring",
		Long: `Expands grid_search_params into every candidate configuration, runs the full
cross-validated pipeline for each (in parallel, bounded by --workers), and selects
the candidate with the highest mean fidelity. Every candidate is recorded in the
run history; the winner's rule set is written to the output directory.`,
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
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid experiment config: %w", err)
			}
			ds, err := dataset.LoadCSV(cfg.DatasetFile, cfg.DatasetName)
			if err != nil {
				return err
			}

			candidates := gridsearch.Expand(cfg)
			logger.Info("grid expanded",
				zap.Int("candidates", len(candidates)),
				zap.Int("workers", workers),
			)

			results, best, err := gridsearch.Run(ctx, cfg, ds, workers, logger)
			if err != nil {
				return err
			}
			if best < 0 {
				return fmt.Errorf("grid search produced no usable candidate")
			}

			history, err := evalx.OpenHistory(cfg.OutputDir)
			if err != nil {
				return err
			}
			defer history.Close()
			for _, result := range results {
				record := evalx.RunRecord{
					Dataset:     cfg.DatasetName,
					Extractor:   cfg.RuleExtractor,
					Mechanism:   cfg.RuleScoreMechanism,
					Seed:        result.Candidate.Config.RandomSeed,
					Candidate:   result.Candidate.Index,
					Description: result.Candidate.Describe(),
					Aggregate:   result.Outcome.Aggregate,
					Folds:       result.Outcome.Folds,
					Scorecard:   result.Outcome.Scorecard,
				}
				if err := history.Append(ctx, record); err != nil {
					return fmt.Errorf("record candidate %d: %w", result.Candidate.Index, err)
				}
			}

			winner := results[best]
			rulesetPath := filepath.Join(cfg.OutputDir, fmt.Sprintf("%s-ruleset.yaml", cfg.DatasetName))
			if err := winner.Outcome.Ruleset.Save(rulesetPath); err != nil {
				return fmt.Errorf("write winning ruleset: %w", err)
			}

			printGridResults(results, best)
			fmt.Printf("\nWinner: candidate %d (%s)\n", winner.Candidate.Index, winner.Candidate.Describe())
			fmt.Printf("Ruleset written to %s (%d clauses)\n", rulesetPath, winner.Outcome.Ruleset.NumClauses())
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to the experiment YAML config (required)")
	cmd.Flags().IntVar(&workers, "workers", runtime.NumCPU(), "Maximum candidates evaluated concurrently")
	_ = cmd.MarkFlagRequired("config")
	return cmd
}
