package gridsearch

import (
	"strings"
	"testing"

	"github.com/example/lucid/internal/evalx"
	"github.com/example/lucid/internal/expconfig"
	"github.com/example/lucid/internal/pipeline"
)

func gridConfig() expconfig.Config {
	cfg := expconfig.Default()
	cfg.DatasetFile = "d.csv"
	cfg.DatasetName = "D"
	cfg.RandomSeed = 42
	cfg.GridSearchParams = expconfig.GridSearchParams{
		Enabled:      true,
		Epochs:       []int{50, 100},
		LearningRate: []float64{0.001, 0.01, 0.1},
		LayerUnits:   [][]int{{16}, {16, 8}},
	}
	return cfg
}

func TestExpandCartesianProduct(t *testing.T) {
	candidates := Expand(gridConfig())
	if len(candidates) != 12 {
		t.Fatalf("2 epochs x 3 rates x 2 unit shapes should give 12 candidates, got %d", len(candidates))
	}
	seen := map[string]bool{}
	for i, c := range candidates {
		if c.Index != i {
			t.Fatalf("candidate %d carries index %d", i, c.Index)
		}
		desc := c.Describe()
		if seen[desc] {
			t.Fatalf("duplicate candidate %q", desc)
		}
		seen[desc] = true
	}
}

func TestExpandDerivesDistinctSeeds(t *testing.T) {
	candidates := Expand(gridConfig())
	seeds := map[int64]bool{}
	for _, c := range candidates {
		if seeds[c.Config.RandomSeed] {
			t.Fatalf("seed %d reused", c.Config.RandomSeed)
		}
		seeds[c.Config.RandomSeed] = true
	}
	if candidates[0].Config.RandomSeed != 42 {
		t.Fatalf("first candidate should keep the base seed, got %d", candidates[0].Config.RandomSeed)
	}
	again := Expand(gridConfig())
	for i := range candidates {
		if candidates[i].Config.RandomSeed != again[i].Config.RandomSeed {
			t.Fatalf("expansion should be deterministic")
		}
	}
}

func TestExpandDisabledGrid(t *testing.T) {
	cfg := gridConfig()
	cfg.GridSearchParams.Enabled = false
	candidates := Expand(cfg)
	if len(candidates) != 1 || candidates[0].Index != 0 {
		t.Fatalf("disabled grid should yield the base config only, got %d candidates", len(candidates))
	}
	if candidates[0].Config.Hyperparameters.Epochs != cfg.Hyperparameters.Epochs {
		t.Fatalf("disabled grid must not rewrite hyperparameters")
	}
}

func TestExpandEmptyListsFallBack(t *testing.T) {
	cfg := gridConfig()
	cfg.GridSearchParams = expconfig.GridSearchParams{Enabled: true, Epochs: []int{10, 20}}
	candidates := Expand(cfg)
	if len(candidates) != 2 {
		t.Fatalf("only epochs vary, expected 2 candidates, got %d", len(candidates))
	}
	for _, c := range candidates {
		if c.Config.Hyperparameters.LearningRate != cfg.Hyperparameters.LearningRate {
			t.Fatalf("unlisted dimension should keep the base value")
		}
	}
}

func TestDescribeNamesVaryingFields(t *testing.T) {
	candidates := Expand(gridConfig())
	desc := candidates[0].Describe()
	for _, field := range []string{"epochs=", "lr=", "units=", "num_thresh="} {
		if !strings.Contains(desc, field) {
			t.Fatalf("description %q missing %q", desc, field)
		}
	}
}

func TestBestPrefersFidelityThenCompactness(t *testing.T) {
	outcome := func(fidelity, ruleCount float64) *pipeline.Outcome {
		return &pipeline.Outcome{Aggregate: evalx.Aggregate{FidelityMean: fidelity, RuleCountMean: ruleCount}}
	}
	results := []Result{
		{Candidate: Candidate{Index: 0}, Outcome: outcome(0.90, 10)},
		{Candidate: Candidate{Index: 1}, Outcome: outcome(0.95, 30)},
		{Candidate: Candidate{Index: 2}, Outcome: outcome(0.95, 12)},
		{Candidate: Candidate{Index: 3}, Outcome: outcome(0.95, 12)},
	}
	if got := Best(results); got != 2 {
		t.Fatalf("expected candidate 2 (highest fidelity, fewest rules, earliest), got %d", got)
	}
	if got := Best(nil); got != -1 {
		t.Fatalf("no results should give -1, got %d", got)
	}
}
