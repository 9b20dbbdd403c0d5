// rulediff.go compares two rule set artifacts for 'lucid diff'.

// Package rulediff renders rule sets into canonical text and diffs them,
// summarizing clause-level drift per class.
package rulediff

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/example/lucid/internal/rules"
)

// Summary aggregates clause-level change counts.
type Summary struct {
	Added   int
	Removed int
	Common  int
}

// Diff produces a unified diff between two rule sets plus a clause summary.
func Diff(left, right *rules.Ruleset, leftName, rightName string) (string, Summary, error) {
	leftLines := Render(left)
	rightLines := Render(right)
	text, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        leftLines,
		B:        rightLines,
		FromFile: leftName,
		ToFile:   rightName,
		Context:  3,
	})
	if err != nil {
		return "", Summary{}, fmt.Errorf("render diff: %w", err)
	}
	return text, summarize(left, right), nil
}

// Render flattens a rule set into stable, comparable lines: one block per
// class, clauses in canonical key order.
func Render(rs *rules.Ruleset) []string {
	var lines []string
	for _, rule := range rs.Rules {
		lines = append(lines, fmt.Sprintf("class %s:\n", rs.ClassNames[rule.Conclusion]))
		clauses := append([]rules.Clause(nil), rule.Premise...)
		sort.Slice(clauses, func(i, j int) bool { return clauses[i].Key() < clauses[j].Key() })
		for _, clause := range clauses {
			lines = append(lines, fmt.Sprintf("  IF %s THEN %s (score %.3f)\n",
				clause.Render(rs.FeatureNames), rs.ClassNames[rule.Conclusion], clause.Score))
		}
	}
	lines = append(lines, fmt.Sprintf("default: %s\n", rs.ClassNames[rs.DefaultClass]))
	return lines
}

// summarize counts clause identities present on one side only. Identity is
// the canonical clause key plus the conclusion class name, so reordered but
// unchanged clauses do not register as drift.
func summarize(left, right *rules.Ruleset) Summary {
	leftKeys := clauseKeys(left)
	rightKeys := clauseKeys(right)
	var sum Summary
	for key := range leftKeys {
		if _, ok := rightKeys[key]; ok {
			sum.Common++
		} else {
			sum.Removed++
		}
	}
	for key := range rightKeys {
		if _, ok := leftKeys[key]; !ok {
			sum.Added++
		}
	}
	return sum
}

func clauseKeys(rs *rules.Ruleset) map[string]struct{} {
	keys := make(map[string]struct{})
	for _, rule := range rs.Rules {
		class := rs.ClassNames[rule.Conclusion]
		for _, clause := range rule.Premise {
			keys[strings.Join([]string{class, clause.Key()}, "|")] = struct{}{}
		}
	}
	return keys
}
