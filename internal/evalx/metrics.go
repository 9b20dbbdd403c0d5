// metrics.go computes per-fold and aggregate quality metrics.

// Package evalx measures extracted rule sets: accuracy against ground truth,
// fidelity against the network, compactness, and the scorecard/history
// plumbing behind 'lucid report'.
package evalx

import (
	"math"

	"github.com/example/lucid/internal/rules"
)

// FoldMetrics captures one cross-validation fold.
type FoldMetrics struct {
	Fold         int
	NetAccuracy  float64
	RuleAccuracy float64
	Fidelity     float64
	RuleCount    int
	AvgTerms     float64
}

// Aggregate summarizes fold metrics with mean and population std-dev.
type Aggregate struct {
	Folds            int
	NetAccuracyMean  float64
	NetAccuracyStd   float64
	RuleAccuracyMean float64
	RuleAccuracyStd  float64
	FidelityMean     float64
	FidelityStd      float64
	RuleCountMean    float64
	AvgTermsMean     float64
}

// Accuracy reports the share of positions where pred equals want.
func Accuracy(pred, want []int) float64 {
	if len(pred) == 0 || len(pred) != len(want) {
		return 0
	}
	correct := 0
	for i := range pred {
		if pred[i] == want[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(pred))
}

// EvaluateFold scores one fold's rule set on held-out samples. netLabels are
// the network's predictions on the same samples; fidelity is agreement with
// them rather than with ground truth.
func EvaluateFold(fold int, rs *rules.Ruleset, samples [][]float64, labels, netLabels []int) FoldMetrics {
	rulePred := make([]int, len(samples))
	for i, sample := range samples {
		rulePred[i] = rs.Predict(sample)
	}
	return FoldMetrics{
		Fold:         fold,
		NetAccuracy:  Accuracy(netLabels, labels),
		RuleAccuracy: Accuracy(rulePred, labels),
		Fidelity:     Accuracy(rulePred, netLabels),
		RuleCount:    rs.NumClauses(),
		AvgTerms:     rs.AvgTerms(),
	}
}

// Summarize aggregates fold metrics.
func Summarize(folds []FoldMetrics) Aggregate {
	agg := Aggregate{Folds: len(folds)}
	if len(folds) == 0 {
		return agg
	}
	var netAcc, ruleAcc, fid, count, terms []float64
	for _, f := range folds {
		netAcc = append(netAcc, f.NetAccuracy)
		ruleAcc = append(ruleAcc, f.RuleAccuracy)
		fid = append(fid, f.Fidelity)
		count = append(count, float64(f.RuleCount))
		terms = append(terms, f.AvgTerms)
	}
	agg.NetAccuracyMean, agg.NetAccuracyStd = meanStd(netAcc)
	agg.RuleAccuracyMean, agg.RuleAccuracyStd = meanStd(ruleAcc)
	agg.FidelityMean, agg.FidelityStd = meanStd(fid)
	agg.RuleCountMean, _ = meanStd(count)
	agg.AvgTermsMean, _ = meanStd(terms)
	return agg
}

func meanStd(values []float64) (mean, std float64) {
	if len(values) == 0 {
		return 0, 0
	}
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))
	var variance float64
	for _, v := range values {
		d := v - mean
		variance += d * d
	}
	variance /= float64(len(values))
	return mean, math.Sqrt(variance)
}
