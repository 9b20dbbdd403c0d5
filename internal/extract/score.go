// score.go assigns clause scores under the configured rule_score_mechanism.
package extract

import (
	"github.com/example/lucid/internal/expconfig"
	"github.com/example/lucid/internal/rules"
)

// scoreClause computes the clause score over the full training set.
//
//   - majority: share of covered samples whose network label matches the
//     conclusion (the majority-vote weight used at prediction time).
//   - accuracy: precision against ground-truth labels.
//   - confidence: network-label precision damped by coverage rate, favoring
//     clauses that both agree with the network and fire often.
func scoreClause(clause *rules.Clause, in Input, class int, mechanism string) {
	var covered, netAgree, truthAgree int
	for i, sample := range in.Samples {
		if !clause.Covers(sample) {
			continue
		}
		covered++
		if in.NetLabels[i] == class {
			netAgree++
		}
		if in.Labels[i] == class {
			truthAgree++
		}
	}
	if covered == 0 {
		clause.Score = 0
		return
	}
	switch mechanism {
	case expconfig.ScoreAccuracy:
		clause.Score = float64(truthAgree) / float64(covered)
	case expconfig.ScoreConfidence:
		precision := float64(netAgree) / float64(covered)
		coverage := float64(covered) / float64(len(in.Samples))
		clause.Score = precision * coverage
	default: // expconfig.ScoreMajority
		clause.Score = float64(netAgree) / float64(covered)
	}
}
