// config.go loads and validates the YAML experiment documents that drive lucid runs.

// Package expconfig defines the experiment configuration schema: dataset
// selection, network hyperparameters, cg-extract solver parameters, rule set
// compression, and grid-search ranges.
package expconfig

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Supported rule extractors and score mechanisms.
const (
	ExtractorCGExtract = "cg-extract"

	ScoreMajority   = "majority"
	ScoreAccuracy   = "accuracy"
	ScoreConfidence = "confidence"
)

// Hyperparameters configures the feed-forward network trainer.
type Hyperparameters struct {
	Epochs          int     `yaml:"epochs"`
	BatchSize       int     `yaml:"batch_size"`
	LearningRate    float64 `yaml:"learning_rate"`
	Momentum        float64 `yaml:"momentum"`
	LayerUnits      []int   `yaml:"layer_units"`
	Activation      string  `yaml:"activation"`
	Dropout         float64 `yaml:"dropout"`
	ValidationSplit float64 `yaml:"validation_split"`
}

// ExtractorParams configures the cg-extract conjunctive-generation solver.
type ExtractorParams struct {
	NumThresh    int     `yaml:"num_thresh"`
	MinCases     int     `yaml:"min_cases"`
	MaxTerms     int     `yaml:"max_terms"`
	BeamWidth    int     `yaml:"beam_width"`
	MinPrecision float64 `yaml:"min_precision"`
}

// CompressionParams configures post-extraction rule set compression.
type CompressionParams struct {
	MinScore float64 `yaml:"min_score"`
	MaxRules int     `yaml:"max_rules"`
	Merge    bool    `yaml:"merge"`
}

// GridSearchParams lists candidate values swept by 'lucid grid'. Empty lists
// fall back to the configured hyperparameter/extractor value.
type GridSearchParams struct {
	Enabled      bool      `yaml:"enabled"`
	Epochs       []int     `yaml:"epochs"`
	BatchSize    []int     `yaml:"batch_size"`
	LearningRate []float64 `yaml:"learning_rate"`
	LayerUnits   [][]int   `yaml:"layer_units"`
	NumThresh    []int     `yaml:"num_thresh"`
	MinCases     []int     `yaml:"min_cases"`
}

// Config is one experiment document.
type Config struct {
	DatasetFile        string            `yaml:"dataset_file"`
	DatasetName        string            `yaml:"dataset_name"`
	OutputDir          string            `yaml:"output_dir"`
	RandomSeed         int64             `yaml:"random_seed"`
	NFolds             int               `yaml:"n_folds"`
	RuleExtractor      string            `yaml:"rule_extractor"`
	RuleScoreMechanism string            `yaml:"rule_score_mechanism"`
	Hyperparameters    Hyperparameters   `yaml:"hyperparameters"`
	ExtractorParams    ExtractorParams   `yaml:"extractor_params"`
	CompressionParams  CompressionParams `yaml:"compression_params"`
	GridSearchParams   GridSearchParams  `yaml:"grid_search_params"`
}

// Default returns the baseline configuration applied underneath loaded files.
func Default() Config {
	return Config{
		OutputDir:          "results",
		RandomSeed:         42,
		NFolds:             5,
		RuleExtractor:      ExtractorCGExtract,
		RuleScoreMechanism: ScoreMajority,
		Hyperparameters: Hyperparameters{
			Epochs:          50,
			BatchSize:       16,
			LearningRate:    0.01,
			Momentum:        0.9,
			LayerUnits:      []int{64, 32},
			Activation:      "relu",
			ValidationSplit: 0.1,
		},
		ExtractorParams: ExtractorParams{
			NumThresh:    3,
			MinCases:     5,
			MaxTerms:     5,
			BeamWidth:    8,
			MinPrecision: 0.8,
		},
		CompressionParams: CompressionParams{
			MinScore: 0.0,
			MaxRules: 0,
			Merge:    true,
		},
	}
}

// Load reads one experiment file decoded on top of the defaults. Only keys
// present in the document override a default, so explicit zero values such as
// "merge: false" or "momentum: 0.0" are honored.
func Load(path string) (Config, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Config{}, fmt.Errorf("load experiment config: config path cannot be empty")
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("load experiment config: %w", err)
	}
	cfg := Default()
	dec := yaml.NewDecoder(strings.NewReader(string(raw)))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// Validate ensures the configuration is coherent before a run starts.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.DatasetFile) == "" {
		return fmt.Errorf("dataset_file is required")
	}
	if strings.TrimSpace(c.DatasetName) == "" {
		return fmt.Errorf("dataset_name is required")
	}
	if strings.TrimSpace(c.OutputDir) == "" {
		return fmt.Errorf("output_dir is required")
	}
	if c.NFolds < 1 {
		return fmt.Errorf("n_folds must be >= 1, got %d", c.NFolds)
	}
	if c.RuleExtractor != ExtractorCGExtract {
		return fmt.Errorf("unknown rule_extractor %q (supported: %s)", c.RuleExtractor, ExtractorCGExtract)
	}
	switch c.RuleScoreMechanism {
	case ScoreMajority, ScoreAccuracy, ScoreConfidence:
	default:
		return fmt.Errorf("unknown rule_score_mechanism %q (supported: %s, %s, %s)",
			c.RuleScoreMechanism, ScoreMajority, ScoreAccuracy, ScoreConfidence)
	}
	if err := c.Hyperparameters.validate(); err != nil {
		return err
	}
	if err := c.ExtractorParams.validate(); err != nil {
		return err
	}
	if c.CompressionParams.MinScore < 0 || c.CompressionParams.MinScore > 1 {
		return fmt.Errorf("compression_params.min_score must be within [0, 1], got %g", c.CompressionParams.MinScore)
	}
	if c.CompressionParams.MaxRules < 0 {
		return fmt.Errorf("compression_params.max_rules cannot be negative")
	}
	return nil
}

func (h *Hyperparameters) validate() error {
	if h.Epochs <= 0 {
		return fmt.Errorf("hyperparameters.epochs must be positive, got %d", h.Epochs)
	}
	if h.BatchSize <= 0 {
		return fmt.Errorf("hyperparameters.batch_size must be positive, got %d", h.BatchSize)
	}
	if h.LearningRate <= 0 {
		return fmt.Errorf("hyperparameters.learning_rate must be positive, got %g", h.LearningRate)
	}
	if h.Momentum < 0 || h.Momentum >= 1 {
		return fmt.Errorf("hyperparameters.momentum must be within [0, 1), got %g", h.Momentum)
	}
	if len(h.LayerUnits) == 0 {
		return fmt.Errorf("hyperparameters.layer_units requires at least one hidden layer")
	}
	for i, units := range h.LayerUnits {
		if units <= 0 {
			return fmt.Errorf("hyperparameters.layer_units[%d] must be positive, got %d", i, units)
		}
	}
	switch strings.ToLower(h.Activation) {
	case "relu", "tanh", "sigmoid":
	default:
		return fmt.Errorf("unknown activation %q (supported: relu, tanh, sigmoid)", h.Activation)
	}
	if h.Dropout < 0 || h.Dropout >= 1 {
		return fmt.Errorf("hyperparameters.dropout must be within [0, 1), got %g", h.Dropout)
	}
	if h.ValidationSplit < 0 || h.ValidationSplit >= 1 {
		return fmt.Errorf("hyperparameters.validation_split must be within [0, 1), got %g", h.ValidationSplit)
	}
	return nil
}

func (p *ExtractorParams) validate() error {
	if p.NumThresh <= 0 {
		return fmt.Errorf("extractor_params.num_thresh must be positive, got %d", p.NumThresh)
	}
	if p.MinCases <= 0 {
		return fmt.Errorf("extractor_params.min_cases must be positive, got %d", p.MinCases)
	}
	if p.MaxTerms <= 0 {
		return fmt.Errorf("extractor_params.max_terms must be positive, got %d", p.MaxTerms)
	}
	if p.BeamWidth <= 0 {
		return fmt.Errorf("extractor_params.beam_width must be positive, got %d", p.BeamWidth)
	}
	if p.MinPrecision <= 0 || p.MinPrecision > 1 {
		return fmt.Errorf("extractor_params.min_precision must be within (0, 1], got %g", p.MinPrecision)
	}
	return nil
}
