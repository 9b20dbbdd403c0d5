// viz.go registers 'lucid viz', rendering a ruleset artifact as a hierarchy tree.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/lucid/internal/rules"
	"github.com/example/lucid/internal/viz"
)

func newVizCommand() *cobra.Command {
	var htmlPath string
	var merge bool

	cmd := &cobra.Command{
		Use:   "viz RULESET",
		Short: "Render a ruleset artifact as a hierarchical tree",
		Long: `Groups the ruleset's clauses into an n-ary tree by greedily splitting on the
most-used term. Prints the tree JSON to stdout, or writes a self-contained HTML
page with --html.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rs, err := rules.LoadRuleset(args[0])
			if err != nil {
				return err
			}
			tree := viz.HierarchyTree(rs, merge)
			if htmlPath == "" {
				return viz.WriteJSON(os.Stdout, tree)
			}
			file, err := os.Create(htmlPath)
			if err != nil {
				return fmt.Errorf("create html output: %w", err)
			}
			defer file.Close()
			if err := viz.WriteHTML(file, rs.DatasetName, tree); err != nil {
				return err
			}
			fmt.Printf("Hierarchy tree written to %s\n", htmlPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&htmlPath, "html", "", "Write a self-contained HTML page to this path instead of JSON on stdout")
	cmd.Flags().BoolVar(&merge, "merge", false, "Collapse single-child branch chains into combined AND nodes")
	return cmd
}
