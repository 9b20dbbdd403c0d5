// version.go implements 'lucid version'.
package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/example/lucid/internal/version"
)

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := version.Get()
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(w, "Version:\t%s\n", info.Version)
			fmt.Fprintf(w, "Git commit:\t%s\n", info.GitCommit)
			fmt.Fprintf(w, "Built:\t%s\n", info.BuildDate)
			fmt.Fprintf(w, "Go version:\t%s\n", info.GoVersion)
			fmt.Fprintf(w, "Platform:\t%s\n", info.Platform)
			return w.Flush()
		},
	}
}
