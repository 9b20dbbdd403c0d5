// extract.go implements the cg-extract conjunctive-generation solver.

// Package extract turns a trained network's decisions over a binarized
// feature space into a compact rule set: per-class sequential covering with
// beam-searched clause growth, followed by score-based compression.
package extract

import (
	"context"
	"fmt"
	"sort"

	"github.com/example/lucid/internal/expconfig"
	"github.com/example/lucid/internal/quantize"
	"github.com/example/lucid/internal/rules"
)

// Input bundles everything the solver consumes for one fold.
type Input struct {
	Samples   [][]float64
	NetLabels []int // network predictions; the function being approximated
	Labels    []int // ground truth; used only by the accuracy mechanism
	Dataset   string
	Features  []string
	Classes   []string
}

// Extract runs the configured solver and returns the compressed rule set.
func Extract(ctx context.Context, in Input, cfg expconfig.Config) (*rules.Ruleset, error) {
	if cfg.RuleExtractor != expconfig.ExtractorCGExtract {
		return nil, fmt.Errorf("unknown rule_extractor %q (supported: %s)", cfg.RuleExtractor, expconfig.ExtractorCGExtract)
	}
	if len(in.Samples) == 0 {
		return nil, fmt.Errorf("cannot extract rules from an empty training set")
	}
	if len(in.Samples) != len(in.NetLabels) || len(in.Samples) != len(in.Labels) {
		return nil, fmt.Errorf("sample/label length mismatch: %d samples, %d net labels, %d labels",
			len(in.Samples), len(in.NetLabels), len(in.Labels))
	}
	candidates := quantize.CandidateTerms(in.Samples, len(in.Features), cfg.ExtractorParams.NumThresh)
	if len(candidates) == 0 {
		return nil, fmt.Errorf("quantile thresholding produced no candidate terms")
	}
	// Binarize once up front; clause growth then tests bits instead of
	// re-evaluating thresholds per beam expansion.
	bits := make([][]bool, len(in.Samples))
	for i, sample := range in.Samples {
		bits[i] = quantize.Binarize(sample, candidates)
	}

	rs := &rules.Ruleset{
		DatasetName:  in.Dataset,
		FeatureNames: in.Features,
		ClassNames:   in.Classes,
		DefaultClass: majorityLabel(in.NetLabels, len(in.Classes)),
	}
	for class := range in.Classes {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		clauses := coverClass(in, class, candidates, bits, cfg.ExtractorParams)
		for i := range clauses {
			scoreClause(&clauses[i], in, class, cfg.RuleScoreMechanism)
		}
		clauses = Compress(clauses, cfg.CompressionParams)
		if len(clauses) > 0 {
			rs.Rules = append(rs.Rules, rules.Rule{Premise: clauses, Conclusion: class})
		}
	}
	return rs, nil
}

func majorityLabel(labels []int, numClasses int) int {
	counts := make([]int, numClasses)
	for _, label := range labels {
		counts[label]++
	}
	best := 0
	for i, c := range counts {
		if c > counts[best] {
			best = i
		}
	}
	return best
}

// coverClass runs sequential covering for one target class: grow the best
// acceptable clause over the remaining samples, remove what it covers,
// repeat until no positives remain or nothing acceptable can be grown.
func coverClass(in Input, class int, candidates []rules.Term, bits [][]bool, params expconfig.ExtractorParams) []rules.Clause {
	remaining := make([]int, len(in.Samples))
	for i := range remaining {
		remaining[i] = i
	}
	var clauses []rules.Clause
	for {
		positives := 0
		for _, idx := range remaining {
			if in.NetLabels[idx] == class {
				positives++
			}
		}
		if positives < params.MinCases {
			break
		}
		clause, ok := growClause(in, class, remaining, candidates, bits, params)
		if !ok {
			break
		}
		clauses = append(clauses, clause)
		var next []int
		for _, idx := range remaining {
			if !clause.Covers(in.Samples[idx]) {
				next = append(next, idx)
			}
		}
		remaining = next
	}
	return clauses
}

// beamEntry is one candidate clause during growth.
type beamEntry struct {
	clause    rules.Clause
	covered   []int
	precision float64
	positives int
}

// growClause beam-searches for the clause with the best precision (then
// coverage) over the remaining samples. ok is false when nothing reaches
// min_precision with min_cases positives.
func growClause(in Input, class int, remaining []int, candidates []rules.Term, bits [][]bool, params expconfig.ExtractorParams) (rules.Clause, bool) {
	root := beamEntry{covered: remaining}
	root.positives, root.precision = classStats(in, class, remaining)
	beam := []beamEntry{root}

	var best beamEntry
	haveBest := false
	consider := func(entry beamEntry) {
		if entry.precision < params.MinPrecision || entry.positives < params.MinCases {
			return
		}
		if !haveBest || better(entry, best) {
			best = entry
			haveBest = true
		}
	}
	consider(root)

	for depth := 0; depth < params.MaxTerms; depth++ {
		var expanded []beamEntry
		for _, entry := range beam {
			for ti, term := range candidates {
				if hasFeatureOp(entry.clause.Terms, term) {
					continue
				}
				covered := filterCovered(bits, entry.covered, ti)
				if len(covered) == 0 || len(covered) == len(entry.covered) {
					continue
				}
				next := beamEntry{
					clause:  rules.Clause{Terms: appendTerm(entry.clause.Terms, term)},
					covered: covered,
				}
				next.positives, next.precision = classStats(in, class, covered)
				if next.positives < params.MinCases {
					continue
				}
				expanded = append(expanded, next)
			}
		}
		if len(expanded) == 0 {
			break
		}
		sort.Slice(expanded, func(i, j int) bool { return better(expanded[i], expanded[j]) })
		if len(expanded) > params.BeamWidth {
			expanded = expanded[:params.BeamWidth]
		}
		beam = expanded
		for _, entry := range beam {
			consider(entry)
		}
	}
	if !haveBest {
		return rules.Clause{}, false
	}
	best.clause.Confidence = best.precision
	return best.clause, true
}

func better(a, b beamEntry) bool {
	if a.precision != b.precision {
		return a.precision > b.precision
	}
	return a.positives > b.positives
}

func classStats(in Input, class int, covered []int) (positives int, precision float64) {
	for _, idx := range covered {
		if in.NetLabels[idx] == class {
			positives++
		}
	}
	if len(covered) == 0 {
		return 0, 0
	}
	return positives, float64(positives) / float64(len(covered))
}

func filterCovered(bits [][]bool, covered []int, term int) []int {
	var out []int
	for _, idx := range covered {
		if bits[idx][term] {
			out = append(out, idx)
		}
	}
	return out
}

// hasFeatureOp rejects a second term with the same feature and direction;
// tightening an existing bound never helps the beam.
func hasFeatureOp(terms []rules.Term, term rules.Term) bool {
	for _, t := range terms {
		if t.Feature == term.Feature && t.Op == term.Op {
			return true
		}
	}
	return false
}

func appendTerm(terms []rules.Term, term rules.Term) []rules.Term {
	out := make([]rules.Term, 0, len(terms)+1)
	out = append(out, terms...)
	return append(out, term)
}
