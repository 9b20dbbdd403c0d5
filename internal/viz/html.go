// html.go writes the self-contained HTML page for a hierarchy tree.
package viz

import (
	"encoding/json"
	"fmt"
	"html/template"
	"io"
)

const pageTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}} rule hierarchy</title>
<style>
body { font-family: sans-serif; margin: 2em; }
ul.tree, ul.tree ul { list-style: none; padding-left: 1.4em; border-left: 1px dotted #999; }
li.split > span { font-weight: 600; }
li.leaf > span { color: #145a32; }
span.score { color: #777; font-weight: 400; font-size: 0.85em; margin-left: 0.5em; }
span.meta { color: #999; font-weight: 400; font-size: 0.8em; margin-left: 0.5em; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<div id="tree"></div>
<script>
const tree = {{.TreeJSON}};
function render(node) {
  const li = document.createElement("li");
  li.className = node.children.length === 0 ? "leaf" : "split";
  const label = document.createElement("span");
  label.innerHTML = node.name;
  li.appendChild(label);
  if (node.score !== undefined) {
    const score = document.createElement("span");
    score.className = "score";
    score.textContent = "score " + node.score.toFixed(3);
    li.appendChild(score);
  }
  if (node.children.length > 0) {
    const meta = document.createElement("span");
    meta.className = "meta";
    meta.textContent = node.num_descendants + " descendants";
    li.appendChild(meta);
    const ul = document.createElement("ul");
    ul.className = "tree";
    for (const child of node.children) ul.appendChild(render(child));
    li.appendChild(ul);
  }
  return li;
}
const root = document.createElement("ul");
root.className = "tree";
root.appendChild(render(tree));
document.getElementById("tree").appendChild(root);
</script>
</body>
</html>
`

var page = template.Must(template.New("hierarchy").Parse(pageTemplate))

// WriteJSON emits the tree as indented JSON.
func WriteJSON(w io.Writer, tree *Node) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(tree)
}

// WriteHTML emits the self-contained page with the tree JSON inlined.
func WriteHTML(w io.Writer, title string, tree *Node) error {
	raw, err := json.Marshal(tree)
	if err != nil {
		return fmt.Errorf("encode tree: %w", err)
	}
	return page.Execute(w, struct {
		Title    string
		TreeJSON template.JS
	}{Title: title, TreeJSON: template.JS(raw)})
}
