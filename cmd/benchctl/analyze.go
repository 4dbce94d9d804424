// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/geremyCohen/arm-benchmarking-sub001/internal/report"
)

var (
	analyzeExitCode int
	analyzeExplain  bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <logfile>",
	Short: "Analyze an existing sweep log",
	Long: `Scan a previously captured sweep log and print the prioritized issue
report for it. A missing log degrades every count to zero; analysis never
fails.

Pass --exit-code when the sweep's exit code is known so the report can apply
the critical-priority rule for failed sweeps.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r := report.FromLog(args[0], analyzeExitCode)
		out := cmd.OutOrStdout()
		r.Render(out)

		if !analyzeExplain {
			return nil
		}
		for _, issue := range r.Actions {
			rendered, err := issue.Render("dark")
			if err != nil {
				return fmt.Errorf("failed to render guidance: %w", err)
			}
			fmt.Fprintln(out, rendered)
		}
		return nil
	},
}

func init() {
	analyzeCmd.Flags().IntVar(&analyzeExitCode, "exit-code", 0, "exit code the sweep finished with")
	analyzeCmd.Flags().BoolVar(&analyzeExplain, "explain", false, "render remediation guidance for each reported issue")
}
