package pipeline

import (
	"context"
	"math/rand"
	"testing"

	"github.com/example/lucid/internal/dataset"
	"github.com/example/lucid/internal/expconfig"
)

// blobDataset builds two tight, well-separated clusters so both the network
// and the extracted rules can reach high accuracy quickly.
func blobDataset(perClass int, seed int64) *dataset.Dataset {
	rng := rand.New(rand.NewSource(seed))
	ds := &dataset.Dataset{
		Name:         "blobs",
		FeatureNames: []string{"x", "y"},
		ClassNames:   []string{"low", "high"},
	}
	for i := 0; i < perClass; i++ {
		ds.Samples = append(ds.Samples, []float64{rng.NormFloat64() * 0.2, rng.NormFloat64() * 0.2})
		ds.Labels = append(ds.Labels, 0)
		ds.Samples = append(ds.Samples, []float64{5 + rng.NormFloat64()*0.2, 5 + rng.NormFloat64()*0.2})
		ds.Labels = append(ds.Labels, 1)
	}
	return ds
}

func blobConfig() expconfig.Config {
	cfg := expconfig.Default()
	cfg.DatasetFile = "blobs.csv"
	cfg.DatasetName = "blobs"
	cfg.RandomSeed = 11
	cfg.NFolds = 3
	cfg.Hyperparameters.Epochs = 40
	cfg.Hyperparameters.BatchSize = 8
	cfg.Hyperparameters.LearningRate = 0.05
	cfg.Hyperparameters.LayerUnits = []int{8}
	cfg.Hyperparameters.Dropout = 0
	cfg.Hyperparameters.ValidationSplit = 0
	cfg.ExtractorParams.NumThresh = 5
	cfg.ExtractorParams.MinCases = 3
	cfg.ExtractorParams.MinPrecision = 0.8
	return cfg
}

func TestRunEndToEnd(t *testing.T) {
	ds := blobDataset(30, 5)
	outcome, err := Run(context.Background(), blobConfig(), ds, nil)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if len(outcome.Folds) != 3 {
		t.Fatalf("expected 3 fold metrics, got %d", len(outcome.Folds))
	}
	if outcome.Aggregate.Folds != 3 {
		t.Fatalf("aggregate should cover all folds: %+v", outcome.Aggregate)
	}
	if outcome.Aggregate.FidelityMean < 0.8 {
		t.Fatalf("separable blobs should yield high fidelity, got %.2f", outcome.Aggregate.FidelityMean)
	}
	if outcome.Ruleset == nil || len(outcome.Ruleset.Rules) == 0 {
		t.Fatalf("final fit should produce a rule set")
	}
	if len(outcome.Scorecard.Checks) != 3 {
		t.Fatalf("scorecard should carry 3 checks, got %d", len(outcome.Scorecard.Checks))
	}
}

func TestRunDeterministicForSeed(t *testing.T) {
	ds := blobDataset(20, 9)
	first, err := Run(context.Background(), blobConfig(), ds, nil)
	if err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	second, err := Run(context.Background(), blobConfig(), ds, nil)
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if len(first.Folds) != len(second.Folds) {
		t.Fatalf("fold counts differ: %d vs %d", len(first.Folds), len(second.Folds))
	}
	for i := range first.Folds {
		if first.Folds[i] != second.Folds[i] {
			t.Fatalf("fold %d differs across identical runs:\n%+v\n%+v", i, first.Folds[i], second.Folds[i])
		}
	}
	if len(first.Ruleset.Rules) != len(second.Ruleset.Rules) {
		t.Fatalf("final rule sets differ in size")
	}
}

func TestRunHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Run(ctx, blobConfig(), blobDataset(10, 1), nil); err == nil {
		t.Fatalf("expected cancellation error")
	}
}

func TestRunRejectsImpossibleFolds(t *testing.T) {
	cfg := blobConfig()
	cfg.NFolds = 50
	if _, err := Run(context.Background(), cfg, blobDataset(10, 1), nil); err == nil {
		t.Fatalf("expected fold construction error")
	}
}
