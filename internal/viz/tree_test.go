package viz

import (
	"strings"
	"testing"

	"github.com/example/lucid/internal/rules"
)

func vizRuleset() *rules.Ruleset {
	shared := rules.Term{Feature: 0, Op: rules.OpGT, Threshold: 5}
	return &rules.Ruleset{
		DatasetName:  "demo",
		FeatureNames: []string{"length", "width"},
		ClassNames:   []string{"gamma", "hadron"},
		Rules: []rules.Rule{
			{Conclusion: 0, Premise: []rules.Clause{
				{Terms: []rules.Term{shared, {Feature: 1, Op: rules.OpLE, Threshold: 2}}, Score: 0.9},
			}},
			{Conclusion: 1, Premise: []rules.Clause{
				{Terms: []rules.Term{shared, {Feature: 1, Op: rules.OpGT, Threshold: 2}}, Score: 0.8},
				{Terms: []rules.Term{{Feature: 0, Op: rules.OpLE, Threshold: 1}}, Score: 0.7},
			}},
		},
	}
}

func findChild(node *Node, name string) *Node {
	for _, child := range node.Children {
		if child.Name == name {
			return child
		}
	}
	return nil
}

func TestHierarchyTreeSplitsOnMostUsedTerm(t *testing.T) {
	root := HierarchyTree(vizRuleset(), false)
	if root.Name != "ruleset" || root.Depth != 0 {
		t.Fatalf("unexpected root: %+v", root)
	}
	// "length > 5" appears in two clauses, so it becomes the first split.
	split := findChild(root, "length > 5")
	if split == nil {
		t.Fatalf("most-used term not promoted to the first split; children: %v", childNames(root))
	}
	if len(split.Children) != 2 {
		t.Fatalf("split should carry both sharing clauses, got %d children", len(split.Children))
	}
}

func TestHierarchyTreeLeafAnnotations(t *testing.T) {
	root := HierarchyTree(vizRuleset(), false)
	leaves := collectLeaves(root)
	if len(leaves) != 3 {
		t.Fatalf("one leaf per clause expected, got %d", len(leaves))
	}
	for _, leaf := range leaves {
		if leaf.Score == nil {
			t.Fatalf("leaf %q should carry the clause score", leaf.Name)
		}
		if leaf.Depth == 0 {
			t.Fatalf("leaf %q should be below the root", leaf.Name)
		}
		if leaf.ClassCounts[leaf.Name] != 1 {
			t.Fatalf("leaf %q should count itself: %v", leaf.Name, leaf.ClassCounts)
		}
	}
	if root.ClassCounts["gamma"] != 1 || root.ClassCounts["hadron"] != 2 {
		t.Fatalf("root class counts should aggregate leaves: %v", root.ClassCounts)
	}
	if root.NumDescendants != countNodes(root)-1 {
		t.Fatalf("descendant count %d does not match tree size %d", root.NumDescendants, countNodes(root))
	}
}

func TestHierarchyTreeMergeCollapsesChains(t *testing.T) {
	rs := &rules.Ruleset{
		FeatureNames: []string{"a", "b"},
		ClassNames:   []string{"x"},
		Rules: []rules.Rule{
			{Conclusion: 0, Premise: []rules.Clause{
				{Terms: []rules.Term{
					{Feature: 0, Op: rules.OpGT, Threshold: 1},
					{Feature: 1, Op: rules.OpGT, Threshold: 2},
				}, Score: 1},
			}},
		},
	}
	merged := HierarchyTree(rs, true)
	if len(merged.Children) != 1 {
		t.Fatalf("expected a single merged child, got %v", childNames(merged))
	}
	if !strings.Contains(merged.Children[0].Name, " AND ") {
		t.Fatalf("merged node should join terms with AND, got %q", merged.Children[0].Name)
	}
	plain := HierarchyTree(rs, false)
	if countNodes(plain) <= countNodes(merged) {
		t.Fatalf("merge should shrink the tree: %d vs %d nodes", countNodes(merged), countNodes(plain))
	}
}

func TestHtmlify(t *testing.T) {
	if got := htmlify("a <= 1 AND b >= 2"); got != "a &leq; 1 AND b &geq; 2" {
		t.Fatalf("htmlify mismatch: %q", got)
	}
	if got := htmlify("a > 1"); got != "a > 1" {
		t.Fatalf("strict comparisons should pass through, got %q", got)
	}
}

func childNames(node *Node) []string {
	var names []string
	for _, child := range node.Children {
		names = append(names, child.Name)
	}
	return names
}

func collectLeaves(node *Node) []*Node {
	if len(node.Children) == 0 {
		return []*Node{node}
	}
	var leaves []*Node
	for _, child := range node.Children {
		leaves = append(leaves, collectLeaves(child)...)
	}
	return leaves
}

func countNodes(node *Node) int {
	total := 1
	for _, child := range node.Children {
		total += countNodes(child)
	}
	return total
}
