// yaml.go serializes rule sets to the on-disk YAML artifact format.
package rules

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type termDoc struct {
	Feature   string  `yaml:"feature"`
	Op        string  `yaml:"op"`
	Threshold float64 `yaml:"threshold"`
}

type clauseDoc struct {
	Terms      []termDoc `yaml:"terms"`
	Confidence float64   `yaml:"confidence"`
	Score      float64   `yaml:"score"`
}

type ruleDoc struct {
	Conclusion string      `yaml:"conclusion"`
	Premise    []clauseDoc `yaml:"premise"`
}

type rulesetDoc struct {
	Dataset      string    `yaml:"dataset"`
	FeatureNames []string  `yaml:"feature_names"`
	ClassNames   []string  `yaml:"class_names"`
	DefaultClass string    `yaml:"default_class"`
	Rules        []ruleDoc `yaml:"rules"`
}

// MarshalYAML renders the ruleset with feature and class names instead of
// indices so artifacts stay readable and stable across runs.
func (rs *Ruleset) MarshalYAML() (interface{}, error) {
	doc := rulesetDoc{
		Dataset:      rs.DatasetName,
		FeatureNames: rs.FeatureNames,
		ClassNames:   rs.ClassNames,
	}
	if rs.DefaultClass < 0 || rs.DefaultClass >= len(rs.ClassNames) {
		return nil, fmt.Errorf("default class %d out of range", rs.DefaultClass)
	}
	doc.DefaultClass = rs.ClassNames[rs.DefaultClass]
	for _, rule := range rs.Rules {
		if rule.Conclusion < 0 || rule.Conclusion >= len(rs.ClassNames) {
			return nil, fmt.Errorf("conclusion class %d out of range", rule.Conclusion)
		}
		rd := ruleDoc{Conclusion: rs.ClassNames[rule.Conclusion]}
		for _, clause := range rule.Premise {
			cd := clauseDoc{Confidence: clause.Confidence, Score: clause.Score}
			for _, term := range clause.sortedTerms() {
				if term.Feature < 0 || term.Feature >= len(rs.FeatureNames) {
					return nil, fmt.Errorf("term feature %d out of range", term.Feature)
				}
				cd.Terms = append(cd.Terms, termDoc{
					Feature:   rs.FeatureNames[term.Feature],
					Op:        string(term.Op),
					Threshold: term.Threshold,
				})
			}
			rd.Premise = append(rd.Premise, cd)
		}
		doc.Rules = append(doc.Rules, rd)
	}
	return doc, nil
}

// UnmarshalYAML rebuilds a ruleset from the artifact format, resolving
// feature and class names back to indices.
func (rs *Ruleset) UnmarshalYAML(value *yaml.Node) error {
	var doc rulesetDoc
	if err := value.Decode(&doc); err != nil {
		return err
	}
	featureIdx := make(map[string]int, len(doc.FeatureNames))
	for i, name := range doc.FeatureNames {
		featureIdx[name] = i
	}
	classIdx := make(map[string]int, len(doc.ClassNames))
	for i, name := range doc.ClassNames {
		classIdx[name] = i
	}
	out := Ruleset{
		DatasetName:  doc.Dataset,
		FeatureNames: doc.FeatureNames,
		ClassNames:   doc.ClassNames,
	}
	def, ok := classIdx[doc.DefaultClass]
	if !ok {
		return fmt.Errorf("default class %q not listed in class_names", doc.DefaultClass)
	}
	out.DefaultClass = def
	for _, rd := range doc.Rules {
		conclusion, ok := classIdx[rd.Conclusion]
		if !ok {
			return fmt.Errorf("conclusion %q not listed in class_names", rd.Conclusion)
		}
		rule := Rule{Conclusion: conclusion}
		for _, cd := range rd.Premise {
			clause := Clause{Confidence: cd.Confidence, Score: cd.Score}
			for _, td := range cd.Terms {
				feature, ok := featureIdx[td.Feature]
				if !ok {
					return fmt.Errorf("term feature %q not listed in feature_names", td.Feature)
				}
				op := Op(td.Op)
				if op != OpLE && op != OpGT {
					return fmt.Errorf("unknown term operator %q", td.Op)
				}
				clause.Terms = append(clause.Terms, Term{Feature: feature, Op: op, Threshold: td.Threshold})
			}
			rule.Premise = append(rule.Premise, clause)
		}
		out.Rules = append(out.Rules, rule)
	}
	*rs = out
	return nil
}

// Save writes the ruleset artifact, creating parent directories as needed.
func (rs *Ruleset) Save(path string) error {
	data, err := yaml.Marshal(rs)
	if err != nil {
		return fmt.Errorf("encode ruleset: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create ruleset directory: %w", err)
		}
	}
	return os.WriteFile(path, data, 0o644)
}

// LoadRuleset reads a ruleset artifact from disk.
func LoadRuleset(path string) (*Ruleset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read ruleset: %w", err)
	}
	var rs Ruleset
	if err := yaml.Unmarshal(data, &rs); err != nil {
		return nil, fmt.Errorf("parse ruleset %s: %w", path, err)
	}
	return &rs, nil
}
