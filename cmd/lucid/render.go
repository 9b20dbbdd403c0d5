// render.go formats fold metrics, scorecards, grid results, and trends into tables.
package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"

	"github.com/example/lucid/internal/evalx"
	"github.com/example/lucid/internal/gridsearch"
	"github.com/example/lucid/internal/rules"
)

func printFolds(folds []evalx.FoldMetrics) {
	if len(folds) == 0 {
		fmt.Println("No folds evaluated.")
		return
	}
	fmt.Println("Folds:")
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "FOLD\tNET ACC\tRULE ACC\tFIDELITY\tRULES\tAVG TERMS")
	for _, fold := range folds {
		fmt.Fprintf(tw, "%d\t%.3f\t%.3f\t%.3f\t%d\t%.1f\n",
			fold.Fold, fold.NetAccuracy, fold.RuleAccuracy, fold.Fidelity, fold.RuleCount, fold.AvgTerms)
	}
	_ = tw.Flush()
}

func printScorecard(card evalx.Scorecard) {
	fmt.Printf("\nScorecard (average %.1f):\n", card.Average)
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CHECK\tSCORE\tSTATUS\tSUMMARY")
	for _, check := range card.Checks {
		fmt.Fprintf(tw, "%s\t%.1f\t%s\t%s\n", check.Name, check.Score, formatStatus(check.Status), check.Summary)
	}
	_ = tw.Flush()
}

func printGridResults(results []gridsearch.Result, best int) {
	if len(results) == 0 {
		fmt.Println("No candidates evaluated.")
		return
	}
	fmt.Println("Candidates:")
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CAND\tFIDELITY\tRULE ACC\tRULES\tPARAMS\t")
	for _, result := range results {
		marker := ""
		if result.Candidate.Index == best {
			marker = color.GreenString("◀ best")
		}
		agg := result.Outcome.Aggregate
		fmt.Fprintf(tw, "%d\t%.3f ± %.3f\t%.3f\t%.1f\t%s\t%s\n",
			result.Candidate.Index, agg.FidelityMean, agg.FidelityStd,
			agg.RuleAccuracyMean, agg.RuleCountMean, result.Candidate.Describe(), marker)
	}
	_ = tw.Flush()
}

// printTopTerms lists the most reused threshold conditions in the final rule
// set, a quick read on which features the extraction leaned on.
func printTopTerms(rs *rules.Ruleset, limit int) {
	terms, counts := rs.TermCounts()
	if len(terms) == 0 {
		return
	}
	if limit > 0 && len(terms) > limit {
		terms = terms[:limit]
	}
	fmt.Println("\nMost used terms:")
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TERM\tUSES")
	for _, term := range terms {
		fmt.Fprintf(tw, "%s\t%d\n", term.Render(rs.FeatureNames), counts[term])
	}
	_ = tw.Flush()
}

func printTrend(entries []evalx.TrendEntry) {
	fmt.Println("Recorded runs (most recent first):")
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RECORDED\tDATASET\tCAND\tAVG SCORE\tFIDELITY\tRULE ACC\tRULES")
	for _, entry := range entries {
		cand := "-"
		if entry.Candidate >= 0 {
			cand = fmt.Sprintf("%d", entry.Candidate)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%.1f\t%.3f\t%.3f\t%.1f\n",
			entry.RecordedAt.Local().Format(time.DateTime), entry.Dataset, cand,
			entry.Average, entry.Aggregate.FidelityMean, entry.Aggregate.RuleAccuracyMean,
			entry.Aggregate.RuleCountMean)
	}
	_ = tw.Flush()
}

func formatStatus(status evalx.ScoreStatus) string {
	switch status {
	case evalx.ScoreStatusPass:
		return color.GreenString("PASS")
	case evalx.ScoreStatusWarn:
		return color.YellowString("WARN")
	case evalx.ScoreStatusFail:
		return color.RedString("FAIL")
	default:
		return string(status)
	}
}
