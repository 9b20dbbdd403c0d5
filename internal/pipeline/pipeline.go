// pipeline.go orchestrates one experiment: fold construction, network
// training, rule extraction, and evaluation.

// Package pipeline ties the dataset, nn, extract, and evalx packages into
// the end-to-end run that 'lucid run' and each grid candidate execute.
package pipeline

import (
	"context"
	"fmt"
	"math/rand"

	"go.uber.org/zap"

	"github.com/example/lucid/internal/dataset"
	"github.com/example/lucid/internal/evalx"
	"github.com/example/lucid/internal/expconfig"
	"github.com/example/lucid/internal/extract"
	"github.com/example/lucid/internal/nn"
	"github.com/example/lucid/internal/rules"
)

// Outcome is the result of one full experiment run.
type Outcome struct {
	Folds     []evalx.FoldMetrics
	Aggregate evalx.Aggregate
	Scorecard evalx.Scorecard
	// Ruleset is extracted from a final network fit on the entire dataset;
	// fold metrics remain the honest generalization estimate.
	Ruleset *rules.Ruleset
}

// Run executes the configured experiment over the given dataset.
func Run(ctx context.Context, cfg expconfig.Config, ds *dataset.Dataset, logger *zap.Logger) (*Outcome, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	rng := rand.New(rand.NewSource(cfg.RandomSeed))
	folds, err := dataset.StratifiedFolds(ds, cfg.NFolds, rng)
	if err != nil {
		return nil, fmt.Errorf("build folds: %w", err)
	}

	outcome := &Outcome{}
	for i, fold := range folds {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		foldLogger := logger.With(zap.Int("fold", i))
		metrics, err := runFold(ctx, cfg, ds, fold, i, cfg.RandomSeed+int64(i)*7919, foldLogger)
		if err != nil {
			return nil, fmt.Errorf("fold %d: %w", i, err)
		}
		foldLogger.Info("fold complete",
			zap.Float64("net_accuracy", metrics.NetAccuracy),
			zap.Float64("rule_accuracy", metrics.RuleAccuracy),
			zap.Float64("fidelity", metrics.Fidelity),
			zap.Int("rules", metrics.RuleCount),
		)
		outcome.Folds = append(outcome.Folds, metrics)
	}
	outcome.Aggregate = evalx.Summarize(outcome.Folds)
	outcome.Scorecard = evalx.BuildScorecard(outcome.Aggregate)

	all := make([]int, ds.Len())
	for i := range all {
		all[i] = i
	}
	final, err := fitAndExtract(ctx, cfg, ds, all, cfg.RandomSeed, logger.With(zap.String("stage", "final")))
	if err != nil {
		return nil, fmt.Errorf("final fit: %w", err)
	}
	outcome.Ruleset = final
	return outcome, nil
}

func runFold(ctx context.Context, cfg expconfig.Config, ds *dataset.Dataset, fold dataset.Fold, foldIdx int, seed int64, logger *zap.Logger) (evalx.FoldMetrics, error) {
	net, err := trainNetwork(ctx, cfg, ds, fold.Train, seed, logger)
	if err != nil {
		return evalx.FoldMetrics{}, err
	}
	trainSamples, trainLabels := ds.Select(fold.Train)
	rs, err := extract.Extract(ctx, extract.Input{
		Samples:   trainSamples,
		NetLabels: net.PredictBatch(trainSamples),
		Labels:    trainLabels,
		Dataset:   ds.Name,
		Features:  ds.FeatureNames,
		Classes:   ds.ClassNames,
	}, cfg)
	if err != nil {
		return evalx.FoldMetrics{}, err
	}
	testSamples, testLabels := ds.Select(fold.Test)
	return evalx.EvaluateFold(foldIdx, rs, testSamples, testLabels, net.PredictBatch(testSamples)), nil
}

func fitAndExtract(ctx context.Context, cfg expconfig.Config, ds *dataset.Dataset, indices []int, seed int64, logger *zap.Logger) (*rules.Ruleset, error) {
	net, err := trainNetwork(ctx, cfg, ds, indices, seed, logger)
	if err != nil {
		return nil, err
	}
	samples, labels := ds.Select(indices)
	return extract.Extract(ctx, extract.Input{
		Samples:   samples,
		NetLabels: net.PredictBatch(samples),
		Labels:    labels,
		Dataset:   ds.Name,
		Features:  ds.FeatureNames,
		Classes:   ds.ClassNames,
	}, cfg)
}

func trainNetwork(ctx context.Context, cfg expconfig.Config, ds *dataset.Dataset, indices []int, seed int64, logger *zap.Logger) (*nn.Network, error) {
	hp := cfg.Hyperparameters
	net, err := nn.New(nn.Config{
		Inputs:       ds.NumFeatures(),
		Outputs:      ds.NumClasses(),
		LayerUnits:   hp.LayerUnits,
		Activation:   hp.Activation,
		LearningRate: hp.LearningRate,
		Momentum:     hp.Momentum,
		Dropout:      hp.Dropout,
		Epochs:       hp.Epochs,
		BatchSize:    hp.BatchSize,
		Seed:         seed,
	})
	if err != nil {
		return nil, err
	}
	splitRng := rand.New(rand.NewSource(seed ^ 0x5f3759df))
	trainIdx, valIdx := dataset.HoldoutSplit(indices, hp.ValidationSplit, splitRng)
	trainX, trainY := ds.Select(trainIdx)
	valX, valY := ds.Select(valIdx)
	if err := net.Train(ctx, trainX, trainY, valX, valY, logger); err != nil {
		return nil, err
	}
	return net, nil
}
