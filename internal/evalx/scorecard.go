// scorecard.go models the pass/warn/fail scoring shown after a run.
package evalx

import (
	"fmt"
	"math"
	"time"
)

// Scorecard captures the high-level quality posture of one experiment run.
type Scorecard struct {
	GeneratedAt time.Time    `json:"generatedAt"`
	Average     float64      `json:"average"`
	Checks      []ScoreCheck `json:"checks"`
}

// ScoreCheck is a single quality dimension (fidelity, accuracy, compactness).
type ScoreCheck struct {
	Key     string      `json:"key"`
	Name    string      `json:"name"`
	Score   float64     `json:"score"`
	Status  ScoreStatus `json:"status"`
	Summary string      `json:"summary"`
}

// ScoreStatus communicates whether a check is healthy, warning, or failed.
type ScoreStatus string

const (
	ScoreStatusPass ScoreStatus = "pass"
	ScoreStatusWarn ScoreStatus = "warn"
	ScoreStatusFail ScoreStatus = "fail"
)

// compactnessBudget is the clause count at which the compactness score
// reaches zero; smaller rule sets score proportionally higher.
const compactnessBudget = 100.0

// BuildScorecard derives the run scorecard from aggregated fold metrics.
func BuildScorecard(agg Aggregate) Scorecard {
	card := Scorecard{GeneratedAt: time.Now().UTC()}
	fidelity := clampScore(agg.FidelityMean * 100)
	accuracy := clampScore(agg.RuleAccuracyMean * 100)
	compact := clampScore(100 - agg.RuleCountMean/compactnessBudget*100)
	card.Checks = []ScoreCheck{
		{
			Key:     "fidelity",
			Name:    "Fidelity",
			Score:   fidelity,
			Status:  statusForScore(fidelity),
			Summary: fmt.Sprintf("rules agree with the network on %.1f%% ± %.1f%% of held-out samples", agg.FidelityMean*100, agg.FidelityStd*100),
		},
		{
			Key:     "accuracy",
			Name:    "Rule Accuracy",
			Score:   accuracy,
			Status:  statusForScore(accuracy),
			Summary: fmt.Sprintf("rules match ground truth on %.1f%% ± %.1f%% (network: %.1f%%)", agg.RuleAccuracyMean*100, agg.RuleAccuracyStd*100, agg.NetAccuracyMean*100),
		},
		{
			Key:     "compactness",
			Name:    "Compactness",
			Score:   compact,
			Status:  statusForScore(compact),
			Summary: fmt.Sprintf("%.1f clauses on average, %.1f terms per clause", agg.RuleCountMean, agg.AvgTermsMean),
		},
	}
	card.Average = averageScore(card.Checks)
	return card
}

func averageScore(checks []ScoreCheck) float64 {
	if len(checks) == 0 {
		return 0
	}
	var total float64
	for _, check := range checks {
		total += check.Score
	}
	return math.Round(total/float64(len(checks))*10) / 10
}

func clampScore(val float64) float64 {
	switch {
	case math.IsNaN(val):
		return 0
	case val < 0:
		return 0
	case val > 100:
		return 100
	default:
		return val
	}
}

func statusForScore(score float64) ScoreStatus {
	switch {
	case score >= 90:
		return ScoreStatusPass
	case score >= 75:
		return ScoreStatusWarn
	default:
		return ScoreStatusFail
	}
}
