// compress.go shrinks extracted clause lists per compression_params.
package extract

import (
	"sort"

	"github.com/example/lucid/internal/expconfig"
	"github.com/example/lucid/internal/rules"
)

// Compress deduplicates, optionally removes subsumed clauses, filters by
// minimum score, and caps the clause count. Input order is not preserved:
// survivors come back highest score first.
func Compress(clauses []rules.Clause, params expconfig.CompressionParams) []rules.Clause {
	sorted := append([]rules.Clause(nil), clauses...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Score != sorted[j].Score {
			return sorted[i].Score > sorted[j].Score
		}
		return len(sorted[i].Terms) < len(sorted[j].Terms)
	})

	seen := make(map[string]struct{}, len(sorted))
	var kept []rules.Clause
	for _, clause := range sorted {
		key := clause.Key()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		if clause.Score < params.MinScore {
			continue
		}
		if params.Merge && subsumedByKept(kept, clause) {
			continue
		}
		kept = append(kept, clause)
	}
	if params.MaxRules > 0 && len(kept) > params.MaxRules {
		kept = kept[:params.MaxRules]
	}
	return kept
}

// subsumedByKept reports whether an already-kept clause is a generalization
// of the candidate: every sample the candidate covers, the kept clause
// covers too, at equal or better score.
func subsumedByKept(kept []rules.Clause, candidate rules.Clause) bool {
	for _, existing := range kept {
		if existing.Score >= candidate.Score && existing.Subsumes(candidate) {
			return true
		}
	}
	return false
}
