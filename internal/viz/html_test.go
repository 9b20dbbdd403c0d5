package viz

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestWriteJSONRoundTrip(t *testing.T) {
	tree := HierarchyTree(vizRuleset(), false)
	var buf bytes.Buffer
	if err := WriteJSON(&buf, tree); err != nil {
		t.Fatalf("write json: %v", err)
	}
	var decoded Node
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.Name != tree.Name || len(decoded.Children) != len(tree.Children) {
		t.Fatalf("decoded tree differs from the source")
	}
	if !strings.Contains(buf.String(), "num_descendants") {
		t.Fatalf("annotations missing from JSON output")
	}
}

func TestWriteHTML(t *testing.T) {
	tree := HierarchyTree(vizRuleset(), true)
	var buf bytes.Buffer
	if err := WriteHTML(&buf, "demo", tree); err != nil {
		t.Fatalf("write html: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"<!DOCTYPE html>", "<title>demo rule hierarchy</title>", `"name"`, "ruleset"} {
		if !strings.Contains(out, want) {
			t.Fatalf("page missing %q", want)
		}
	}
}
