// quantize.go discretizes continuous features at training-distribution quantiles.

// Package quantize builds the candidate term space the cg-extract solver
// searches: num_thresh quantile cut points per feature, each contributing a
// "<=" and a ">" term.
package quantize

import (
	"math"
	"sort"

	"github.com/example/lucid/internal/rules"
)

// Thresholds returns numThresh evenly spaced quantile cut points for the
// given values, using linear interpolation between order statistics.
// Duplicate cut points collapse, so fewer thresholds may be returned for
// low-cardinality features.
func Thresholds(values []float64, numThresh int) []float64 {
	if len(values) == 0 || numThresh <= 0 {
		return nil
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	var cuts []float64
	for i := 1; i <= numThresh; i++ {
		q := float64(i) / float64(numThresh+1)
		cut := quantile(sorted, q)
		if len(cuts) == 0 || cut != cuts[len(cuts)-1] {
			cuts = append(cuts, cut)
		}
	}
	return cuts
}

func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// Binarize evaluates every candidate term against one sample, producing the
// binary feature vector the solver's term space induces.
func Binarize(sample []float64, terms []rules.Term) []bool {
	out := make([]bool, len(terms))
	for i, term := range terms {
		out[i] = term.Covers(sample)
	}
	return out
}

// CandidateTerms computes the full candidate term space over the training
// samples: for each feature and each of its quantile cuts, one OpLE and one
// OpGT term.
func CandidateTerms(samples [][]float64, numFeatures, numThresh int) []rules.Term {
	var terms []rules.Term
	column := make([]float64, len(samples))
	for feature := 0; feature < numFeatures; feature++ {
		for i, sample := range samples {
			column[i] = sample[feature]
		}
		for _, cut := range Thresholds(column, numThresh) {
			terms = append(terms,
				rules.Term{Feature: feature, Op: rules.OpLE, Threshold: cut},
				rules.Term{Feature: feature, Op: rules.OpGT, Threshold: cut},
			)
		}
	}
	return terms
}
