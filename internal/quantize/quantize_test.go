package quantize

import (
	"testing"

	"github.com/example/lucid/internal/rules"
)

func TestThresholdsQuartiles(t *testing.T) {
	// 0..8 with three cuts gives the exact quartiles.
	values := []float64{0, 1, 2, 3, 4, 5, 6, 7, 8}
	cuts := Thresholds(values, 3)
	want := []float64{2, 4, 6}
	if len(cuts) != len(want) {
		t.Fatalf("expected %d cuts, got %v", len(want), cuts)
	}
	for i := range want {
		if cuts[i] != want[i] {
			t.Fatalf("cut %d: got %v, want %v", i, cuts[i], want[i])
		}
	}
}

func TestThresholdsInterpolates(t *testing.T) {
	cuts := Thresholds([]float64{0, 10}, 1)
	if len(cuts) != 1 || cuts[0] != 5 {
		t.Fatalf("median of {0,10} should interpolate to 5, got %v", cuts)
	}
}

func TestThresholdsDedupesConstantFeature(t *testing.T) {
	cuts := Thresholds([]float64{3, 3, 3, 3}, 5)
	if len(cuts) != 1 || cuts[0] != 3 {
		t.Fatalf("constant feature should collapse to one cut, got %v", cuts)
	}
}

func TestThresholdsEmpty(t *testing.T) {
	if cuts := Thresholds(nil, 3); cuts != nil {
		t.Fatalf("no values should give no cuts, got %v", cuts)
	}
	if cuts := Thresholds([]float64{1, 2}, 0); cuts != nil {
		t.Fatalf("zero thresholds should give no cuts, got %v", cuts)
	}
}

func TestCandidateTerms(t *testing.T) {
	samples := [][]float64{
		{0, 7},
		{2, 7},
		{4, 7},
		{6, 7},
		{8, 7},
	}
	terms := CandidateTerms(samples, 2, 3)
	// Feature 0 keeps all three cuts, feature 1 collapses to one: 4 cuts,
	// two directions each.
	if len(terms) != 8 {
		t.Fatalf("expected 8 candidate terms, got %d: %v", len(terms), terms)
	}
	leCount, gtCount := 0, 0
	for _, term := range terms {
		switch term.Op {
		case rules.OpLE:
			leCount++
		case rules.OpGT:
			gtCount++
		default:
			t.Fatalf("unexpected op %q", term.Op)
		}
	}
	if leCount != gtCount {
		t.Fatalf("each cut should emit both directions: %d le vs %d gt", leCount, gtCount)
	}
}

func TestBinarize(t *testing.T) {
	terms := []rules.Term{
		{Feature: 0, Op: rules.OpLE, Threshold: 4},
		{Feature: 0, Op: rules.OpGT, Threshold: 4},
		{Feature: 1, Op: rules.OpLE, Threshold: 7},
	}
	got := Binarize([]float64{3, 9}, terms)
	want := []bool{true, false, false}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("bit %d: got %v, want %v", i, got[i], want[i])
		}
	}
}
