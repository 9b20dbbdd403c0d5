// gridsearch.go expands grid_search_params and sweeps candidates in parallel.

// Package gridsearch runs the hyperparameter sweep: cartesian expansion of
// the configured value lists, one full cross-validated pipeline run per
// candidate, and deterministic best-candidate selection.
package gridsearch

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/example/lucid/internal/dataset"
	"github.com/example/lucid/internal/evalx"
	"github.com/example/lucid/internal/expconfig"
	"github.com/example/lucid/internal/pipeline"
)

// Candidate is one point in the hyperparameter grid.
type Candidate struct {
	Index  int
	Config expconfig.Config
}

// Result pairs a candidate with its cross-validated outcome.
type Result struct {
	Candidate Candidate
	Outcome   *pipeline.Outcome
}

// Describe renders the fields that vary across the sweep.
func (c Candidate) Describe() string {
	hp := c.Config.Hyperparameters
	return fmt.Sprintf("epochs=%d batch=%d lr=%g units=%v num_thresh=%d min_cases=%d",
		hp.Epochs, hp.BatchSize, hp.LearningRate, hp.LayerUnits,
		c.Config.ExtractorParams.NumThresh, c.Config.ExtractorParams.MinCases)
}

// Expand produces the cartesian product of the configured grid lists. Lists
// left empty contribute the base configuration's value. A disabled grid
// yields the base configuration as the only candidate.
func Expand(cfg expconfig.Config) []Candidate {
	grid := cfg.GridSearchParams
	if !grid.Enabled {
		return []Candidate{{Index: 0, Config: cfg}}
	}
	epochs := orInts(grid.Epochs, cfg.Hyperparameters.Epochs)
	batches := orInts(grid.BatchSize, cfg.Hyperparameters.BatchSize)
	rates := orFloats(grid.LearningRate, cfg.Hyperparameters.LearningRate)
	units := grid.LayerUnits
	if len(units) == 0 {
		units = [][]int{cfg.Hyperparameters.LayerUnits}
	}
	threshes := orInts(grid.NumThresh, cfg.ExtractorParams.NumThresh)
	cases := orInts(grid.MinCases, cfg.ExtractorParams.MinCases)

	var candidates []Candidate
	for _, e := range epochs {
		for _, b := range batches {
			for _, lr := range rates {
				for _, u := range units {
					for _, nt := range threshes {
						for _, mc := range cases {
							c := cfg
							c.Hyperparameters.Epochs = e
							c.Hyperparameters.BatchSize = b
							c.Hyperparameters.LearningRate = lr
							c.Hyperparameters.LayerUnits = u
							c.ExtractorParams.NumThresh = nt
							c.ExtractorParams.MinCases = mc
							// Each candidate derives its own seed so folds
							// stay reproducible per candidate index.
							c.RandomSeed = cfg.RandomSeed + int64(len(candidates))*104729
							candidates = append(candidates, Candidate{Index: len(candidates), Config: c})
						}
					}
				}
			}
		}
	}
	return candidates
}

func orInts(values []int, fallback int) []int {
	if len(values) == 0 {
		return []int{fallback}
	}
	return values
}

func orFloats(values []float64, fallback float64) []float64 {
	if len(values) == 0 {
		return []float64{fallback}
	}
	return values
}

// Run sweeps every candidate with at most workers running concurrently and
// returns results in candidate order plus the winner's index.
func Run(ctx context.Context, cfg expconfig.Config, ds *dataset.Dataset, workers int, logger *zap.Logger) ([]Result, int, error) {
	candidates := Expand(cfg)
	if logger == nil {
		logger = zap.NewNop()
	}
	if workers <= 0 {
		workers = 1
	}
	results := make([]Result, len(candidates))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(workers)
	for _, candidate := range candidates {
		candidate := candidate
		group.Go(func() error {
			candLogger := logger.With(zap.Int("candidate", candidate.Index))
			candLogger.Info("candidate started", zap.String("params", candidate.Describe()))
			outcome, err := pipeline.Run(groupCtx, candidate.Config, ds, candLogger)
			if err != nil {
				return fmt.Errorf("candidate %d (%s): %w", candidate.Index, candidate.Describe(), err)
			}
			results[candidate.Index] = Result{Candidate: candidate, Outcome: outcome}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, -1, err
	}
	return results, Best(results), nil
}

// Best picks the winner: highest mean fidelity, ties broken by fewer rules,
// then by candidate order.
func Best(results []Result) int {
	best := -1
	for i, result := range results {
		if result.Outcome == nil {
			continue
		}
		if best == -1 || betterAggregate(result.Outcome.Aggregate, results[best].Outcome.Aggregate) {
			best = i
		}
	}
	return best
}

func betterAggregate(a, b evalx.Aggregate) bool {
	if a.FidelityMean != b.FidelityMean {
		return a.FidelityMean > b.FidelityMean
	}
	return a.RuleCountMean < b.RuleCountMean
}
