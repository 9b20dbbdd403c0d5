// rules.go models the symbolic rule sets produced by the cg-extract solver.

// Package rules defines terms, conjunctive clauses, rules, and rule sets,
// plus vote-based prediction over them.
package rules

import (
	"fmt"
	"sort"
	"strings"
)

// Op is a threshold comparison operator.
type Op string

const (
	OpLE Op = "<="
	OpGT Op = ">"
)

// Term is a single threshold condition on one feature.
type Term struct {
	Feature   int
	Op        Op
	Threshold float64
}

// Covers reports whether the sample satisfies the term.
func (t Term) Covers(sample []float64) bool {
	if t.Op == OpLE {
		return sample[t.Feature] <= t.Threshold
	}
	return sample[t.Feature] > t.Threshold
}

// Render formats the term using the given feature names.
func (t Term) Render(featureNames []string) string {
	name := fmt.Sprintf("x%d", t.Feature)
	if t.Feature >= 0 && t.Feature < len(featureNames) {
		name = featureNames[t.Feature]
	}
	return fmt.Sprintf("%s %s %g", name, t.Op, t.Threshold)
}

// Clause is a conjunction of terms. A clause with no terms covers everything.
type Clause struct {
	Terms      []Term
	Confidence float64
	Score      float64
}

// Covers reports whether the sample satisfies every term in the clause.
func (c Clause) Covers(sample []float64) bool {
	for _, term := range c.Terms {
		if !term.Covers(sample) {
			return false
		}
	}
	return true
}

// Render formats the clause as "a AND b AND c".
func (c Clause) Render(featureNames []string) string {
	if len(c.Terms) == 0 {
		return "TRUE"
	}
	parts := make([]string, len(c.Terms))
	for i, term := range c.Terms {
		parts[i] = term.Render(featureNames)
	}
	return strings.Join(parts, " AND ")
}

// sortedTerms returns the clause terms in canonical order.
func (c Clause) sortedTerms() []Term {
	out := append([]Term(nil), c.Terms...)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Feature != out[j].Feature {
			return out[i].Feature < out[j].Feature
		}
		if out[i].Op != out[j].Op {
			return out[i].Op < out[j].Op
		}
		return out[i].Threshold < out[j].Threshold
	})
	return out
}

// Key returns a canonical identity string for duplicate detection.
func (c Clause) Key() string {
	terms := c.sortedTerms()
	parts := make([]string, len(terms))
	for i, t := range terms {
		parts[i] = fmt.Sprintf("%d%s%g", t.Feature, t.Op, t.Threshold)
	}
	return strings.Join(parts, "&")
}

// Subsumes reports whether c's terms are a subset of other's terms: any
// sample covered by other is covered by c.
func (c Clause) Subsumes(other Clause) bool {
	if len(c.Terms) > len(other.Terms) {
		return false
	}
	have := make(map[Term]struct{}, len(other.Terms))
	for _, t := range other.Terms {
		have[t] = struct{}{}
	}
	for _, t := range c.Terms {
		if _, ok := have[t]; !ok {
			return false
		}
	}
	return true
}

// Rule maps a disjunction of clauses to one conclusion class.
type Rule struct {
	Premise    []Clause
	Conclusion int
}

// Ruleset is the full extracted model for one dataset.
type Ruleset struct {
	DatasetName  string
	FeatureNames []string
	ClassNames   []string
	DefaultClass int
	Rules        []Rule
}

// Predict returns the class whose covering clauses accumulate the highest
// score for the sample. Samples covered by nothing fall back to the default
// class; score ties resolve to the lower class index.
func (rs *Ruleset) Predict(sample []float64) int {
	votes := make([]float64, len(rs.ClassNames))
	covered := false
	for _, rule := range rs.Rules {
		for _, clause := range rule.Premise {
			if clause.Covers(sample) {
				votes[rule.Conclusion] += clause.Score
				covered = true
			}
		}
	}
	if !covered {
		return rs.DefaultClass
	}
	best := 0
	for i := 1; i < len(votes); i++ {
		if votes[i] > votes[best] {
			best = i
		}
	}
	return best
}

// NumClauses counts every clause across all rules.
func (rs *Ruleset) NumClauses() int {
	total := 0
	for _, rule := range rs.Rules {
		total += len(rule.Premise)
	}
	return total
}

// AvgTerms reports the mean clause width.
func (rs *Ruleset) AvgTerms() float64 {
	clauses := rs.NumClauses()
	if clauses == 0 {
		return 0
	}
	total := 0
	for _, rule := range rs.Rules {
		for _, clause := range rule.Premise {
			total += len(clause.Terms)
		}
	}
	return float64(total) / float64(clauses)
}

// TermCounts returns all distinct terms sorted by descending use count,
// together with the per-term counts. Count ties resolve in canonical term
// order.
func (rs *Ruleset) TermCounts() ([]Term, map[Term]int) {
	counts := make(map[Term]int)
	for _, rule := range rs.Rules {
		for _, clause := range rule.Premise {
			for _, term := range clause.Terms {
				counts[term]++
			}
		}
	}
	terms := make([]Term, 0, len(counts))
	for term := range counts {
		terms = append(terms, term)
	}
	sort.Slice(terms, func(i, j int) bool {
		if counts[terms[i]] != counts[terms[j]] {
			return counts[terms[i]] > counts[terms[j]]
		}
		if terms[i].Feature != terms[j].Feature {
			return terms[i].Feature < terms[j].Feature
		}
		if terms[i].Op != terms[j].Op {
			return terms[i].Op < terms[j].Op
		}
		return terms[i].Threshold < terms[j].Threshold
	})
	return terms, counts
}
