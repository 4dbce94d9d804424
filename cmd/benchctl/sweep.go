// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/geremyCohen/arm-benchmarking-sub001/internal/benchplan"
	"github.com/geremyCohen/arm-benchmarking-sub001/internal/sweep"
)

var sweepPlanFile string

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run the comprehensive benchmark sweep and analyze the log",
	Long: `Run the external benchmark sweep tool across the configured matrix of
run counts, optimization levels, sizes, architecture flag variants and PGO,
capture its combined output to a timestamped log file, and print a
prioritized issue report scanned from that log.

The command's exit code is the sweep tool's exit code, preserved verbatim;
the report is produced either way.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		plan := benchplan.Default()
		if sweepPlanFile != "" {
			plan, err = benchplan.Load(sweepPlanFile)
			if err != nil {
				return err
			}
		}

		logger := log.NewWithOptions(os.Stderr, log.Options{Prefix: "sweep"})
		if verbose {
			logger.SetLevel(log.DebugLevel)
		}

		driver := &sweep.Driver{
			Tool:   cfg.SweepTool,
			Plan:   plan,
			LogDir: cfg.LogDir,
			Echo:   cmd.OutOrStdout(),
			Logger: logger,
		}

		run, err := driver.Run(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out)
		run.Report.Render(out)
		fmt.Fprintln(out)
		fmt.Fprintf(out, "Full log: %s\n", PathStyle.Render(run.LogPath))
		if run.SummaryPath != "" {
			fmt.Fprintf(out, "Summary:  %s\n", PathStyle.Render(run.SummaryPath))
		}

		if run.ExitCode != 0 {
			cmd.SilenceUsage = true
			cmd.SilenceErrors = true
			return &ExitError{Code: run.ExitCode}
		}
		return nil
	},
}

func init() {
	sweepCmd.Flags().StringVar(&sweepPlanFile, "plan", "", "sweep plan file (CUE, default is the built-in comprehensive plan)")
}
