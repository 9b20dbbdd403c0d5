package evalx

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func sampleRecord(dataset string, candidate int) RunRecord {
	agg := Aggregate{
		Folds:            2,
		NetAccuracyMean:  0.91,
		RuleAccuracyMean: 0.85,
		FidelityMean:     0.93,
		RuleCountMean:    12,
		AvgTermsMean:     2.5,
	}
	return RunRecord{
		Dataset:     dataset,
		Extractor:   "cg-extract",
		Mechanism:   "majority",
		Seed:        42,
		Candidate:   candidate,
		Description: "epochs=100",
		Aggregate:   agg,
		Folds: []FoldMetrics{
			{Fold: 0, NetAccuracy: 0.9, RuleAccuracy: 0.8, Fidelity: 0.92, RuleCount: 11, AvgTerms: 2},
			{Fold: 1, NetAccuracy: 0.92, RuleAccuracy: 0.9, Fidelity: 0.94, RuleCount: 13, AvgTerms: 3},
		},
		Scorecard: BuildScorecard(agg),
	}
}

func TestHistoryAppendAndLoadTrend(t *testing.T) {
	dir := t.TempDir()
	hist, err := OpenHistory(dir)
	if err != nil {
		t.Fatalf("open history: %v", err)
	}
	defer hist.Close()

	ctx := context.Background()
	if err := hist.Append(ctx, sampleRecord("XOR", -1)); err != nil {
		t.Fatalf("append run: %v", err)
	}
	if err := hist.Append(ctx, sampleRecord("XOR", 3)); err != nil {
		t.Fatalf("append candidate: %v", err)
	}

	trend, err := hist.LoadTrend(ctx, 0)
	if err != nil {
		t.Fatalf("load trend: %v", err)
	}
	if len(trend) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(trend))
	}
	for _, entry := range trend {
		if entry.Dataset != "XOR" {
			t.Fatalf("dataset mismatch: %q", entry.Dataset)
		}
		if entry.Aggregate.FidelityMean != 0.93 {
			t.Fatalf("fidelity not round-tripped: %v", entry.Aggregate.FidelityMean)
		}
		if entry.RecordedAt.IsZero() {
			t.Fatalf("timestamp not round-tripped")
		}
	}
	// Newest first: the candidate was appended second.
	if trend[0].Candidate != 3 || trend[1].Candidate != -1 {
		t.Fatalf("trend not newest first: %+v", trend)
	}
}

func TestHistoryWindowExcludesOldRuns(t *testing.T) {
	hist, err := OpenHistory(t.TempDir())
	if err != nil {
		t.Fatalf("open history: %v", err)
	}
	defer hist.Close()
	ctx := context.Background()
	if err := hist.Append(ctx, sampleRecord("MAGIC", -1)); err != nil {
		t.Fatalf("append: %v", err)
	}
	trend, err := hist.LoadTrend(ctx, 7)
	if err != nil {
		t.Fatalf("load trend: %v", err)
	}
	if len(trend) != 1 {
		t.Fatalf("fresh run should be inside the window, got %d entries", len(trend))
	}
}

// Same-second timestamps must still sort chronologically as TEXT: the
// fractional second is fixed width, never trimmed.
func TestHistoryTimestampsSortLexicographically(t *testing.T) {
	earlier := time.Date(2026, 8, 24, 10, 0, 0, 500000000, time.UTC)
	later := earlier.Add(1 * time.Microsecond)
	a := earlier.Format(historyTime)
	b := later.Format(historyTime)
	if !(a < b) {
		t.Fatalf("text order diverges from time order: %q vs %q", a, b)
	}
	parsed, err := time.Parse(historyTime, a)
	if err != nil {
		t.Fatalf("format does not round-trip: %v", err)
	}
	if !parsed.Equal(earlier) {
		t.Fatalf("parsed %v, want %v", parsed, earlier)
	}
}

func TestHistoryReopen(t *testing.T) {
	dir := t.TempDir()
	hist, err := OpenHistory(dir)
	if err != nil {
		t.Fatalf("open history: %v", err)
	}
	if err := hist.Append(context.Background(), sampleRecord("XOR", -1)); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := hist.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "history.db")); err != nil {
		t.Fatalf("history file missing: %v", err)
	}
	hist, err = OpenHistory(dir)
	if err != nil {
		t.Fatalf("reopen history: %v", err)
	}
	defer hist.Close()
	trend, err := hist.LoadTrend(context.Background(), 0)
	if err != nil {
		t.Fatalf("load trend after reopen: %v", err)
	}
	if len(trend) != 1 {
		t.Fatalf("expected the earlier run to survive reopen, got %d", len(trend))
	}
}
