// diff.go registers 'lucid diff', comparing two ruleset artifacts.
package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/lucid/internal/rulediff"
	"github.com/example/lucid/internal/rules"
)

func newDiffCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diff LEFT RIGHT",
		Short: "Compare two ruleset artifacts",
		Long: `Diffs two ruleset YAML artifacts clause by clause. Useful for checking how a
hyperparameter change or a new extraction run shifted the extracted rules.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			left, err := rules.LoadRuleset(args[0])
			if err != nil {
				return err
			}
			right, err := rules.LoadRuleset(args[1])
			if err != nil {
				return err
			}
			text, summary, err := rulediff.Diff(left, right, args[0], args[1])
			if err != nil {
				return err
			}
			if text == "" {
				color.Green("Rulesets are identical (%d clauses).", summary.Common)
				return nil
			}
			fmt.Print(text)
			fmt.Printf("\n%d added · %d removed · %d unchanged\n", summary.Added, summary.Removed, summary.Common)
			return nil
		},
	}
	return cmd
}
