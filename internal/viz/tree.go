// tree.go renders a rule set as a greedy n-ary hierarchy tree.

// Package viz groups a rule set's clauses into an n-ary decision tree by
// repeatedly splitting on the most-used term, then annotates every node with
// depth, descendant counts, and per-class leaf counts for display.
package viz

import (
	"sort"
	"strings"

	"github.com/example/lucid/internal/rules"
)

// Node is one hierarchy tree node. Leaves carry the rule conclusion and the
// clause score; split nodes carry the term condition they split on.
type Node struct {
	Name           string         `json:"name"`
	Children       []*Node        `json:"children"`
	Score          *float64       `json:"score,omitempty"`
	Depth          int            `json:"depth"`
	NumDescendants int            `json:"num_descendants"`
	ClassCounts    map[string]int `json:"class_counts"`
}

// unit is one clause/conclusion pair; the tree treats each clause of a
// rule's premise as an independent path to the conclusion.
type unit struct {
	terms      []rules.Term
	score      float64
	conclusion string
}

// HierarchyTree builds the annotated tree for a rule set. When merge is set,
// chains of single-child split nodes collapse into "A AND B" nodes.
func HierarchyTree(rs *rules.Ruleset, merge bool) *Node {
	var units []unit
	for _, rule := range rs.Rules {
		for _, clause := range rule.Premise {
			units = append(units, unit{
				terms:      append([]rules.Term(nil), clause.Terms...),
				score:      clause.Score,
				conclusion: rs.ClassNames[rule.Conclusion],
			})
		}
	}
	root := &Node{
		Name:     "ruleset",
		Children: extractNodes(units, rs.FeatureNames, merge),
	}
	computeProperties(root, 0, merge)
	return root
}

// extractNodes recursively partitions units on their most-used term; units
// containing the term descend with the term removed, the rest stay at this
// level.
func extractNodes(units []unit, features []string, merge bool) []*Node {
	if len(units) == 0 {
		return []*Node{}
	}
	if len(units) == 1 {
		return terminalNodes(units[0], features, merge)
	}
	term, ok := mostUsedTerm(units)
	if !ok {
		// Only empty-premise units remain; emit them all as leaves.
		var out []*Node
		for _, u := range units {
			out = append(out, terminalNodes(u, features, merge)...)
		}
		return out
	}
	var contain, disjoint []unit
	for _, u := range units {
		if idx := indexOfTerm(u.terms, term); idx >= 0 {
			rest := make([]rules.Term, 0, len(u.terms)-1)
			rest = append(rest, u.terms[:idx]...)
			rest = append(rest, u.terms[idx+1:]...)
			contain = append(contain, unit{terms: rest, score: u.score, conclusion: u.conclusion})
		} else {
			disjoint = append(disjoint, u)
		}
	}
	node := &Node{
		Name:     htmlify(term.Render(features)),
		Children: extractNodes(contain, features, merge),
	}
	return append([]*Node{node}, extractNodes(disjoint, features, merge)...)
}

// terminalNodes renders a single remaining unit: its leftover terms become a
// chain (or one merged node) ending in the conclusion leaf.
func terminalNodes(u unit, features []string, merge bool) []*Node {
	score := u.score
	leaf := &Node{
		Name:     htmlify(u.conclusion),
		Children: []*Node{},
		Score:    &score,
	}
	if len(u.terms) == 0 {
		return []*Node{leaf}
	}
	if merge {
		parts := make([]string, len(u.terms))
		for i, term := range u.terms {
			parts[i] = term.Render(features)
		}
		return []*Node{{
			Name:     htmlify(strings.Join(parts, " AND ")),
			Children: []*Node{leaf},
		}}
	}
	var first, current *Node
	for _, term := range u.terms {
		next := &Node{Name: htmlify(term.Render(features)), Children: []*Node{}}
		if current == nil {
			first = next
		} else {
			current.Children = append(current.Children, next)
		}
		current = next
	}
	current.Children = append(current.Children, leaf)
	return []*Node{first}
}

// mostUsedTerm returns the term appearing in the most units, breaking count
// ties with canonical term order so trees are stable across runs.
func mostUsedTerm(units []unit) (rules.Term, bool) {
	counts := make(map[rules.Term]int)
	for _, u := range units {
		for _, term := range u.terms {
			counts[term]++
		}
	}
	if len(counts) == 0 {
		return rules.Term{}, false
	}
	terms := make([]rules.Term, 0, len(counts))
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
	return terms[0], true
}

func indexOfTerm(terms []rules.Term, term rules.Term) int {
	for i, t := range terms {
		if t == term {
			return i
		}
	}
	return -1
}

// computeProperties annotates the subtree with depth, descendant counts, and
// aggregated per-class leaf counts, collapsing single-child chains when
// merge is set.
func computeProperties(node *Node, depth int, merge bool) {
	node.Depth = depth
	if len(node.Children) == 0 {
		node.NumDescendants = 0
		node.ClassCounts = map[string]int{node.Name: 1}
		return
	}
	if depth != 0 && merge && len(node.Children) == 1 && len(node.Children[0].Children) != 0 {
		old := node.Children[0]
		node.Children = old.Children
		node.Name += " AND " + old.Name
	}
	node.NumDescendants = 0
	node.ClassCounts = map[string]int{}
	for _, child := range node.Children {
		computeProperties(child, depth+1, merge)
		node.NumDescendants += child.NumDescendants + 1
		for class, count := range child.ClassCounts {
			node.ClassCounts[class] += count
		}
	}
}

// htmlify substitutes comparison operators with their HTML entities.
func htmlify(s string) string {
	s = strings.ReplaceAll(s, "<=", "&leq;")
	return strings.ReplaceAll(s, ">=", "&geq;")
}
