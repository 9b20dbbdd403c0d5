// report.go registers 'lucid report', the run-history trend view.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/lucid/internal/evalx"
)

func newReportCommand() *cobra.Command {
	var outputDir string
	var days int

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Show recorded runs for an output directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			history, err := evalx.OpenHistory(outputDir)
			if err != nil {
				return err
			}
			defer history.Close()
			trend, err := history.LoadTrend(cmd.Context(), days)
			if err != nil {
				return fmt.Errorf("load run history: %w", err)
			}
			if len(trend) == 0 {
				fmt.Println("No runs recorded yet (run 'lucid run' or 'lucid grid' first).")
				return nil
			}
			printTrend(trend)
			return nil
		},
	}

	cmd.Flags().StringVar(&outputDir, "output-dir", "results", "Output directory whose history to inspect")
	cmd.Flags().IntVar(&days, "days", 0, "Only show runs from the last N days (0 = all)")
	return cmd
}
