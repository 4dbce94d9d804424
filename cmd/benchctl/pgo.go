// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/geremyCohen/arm-benchmarking-sub001/internal/pgo"
	"github.com/geremyCohen/arm-benchmarking-sub001/internal/toolchain"
)

var pgoCmd = &cobra.Command{
	Use:   "pgo",
	Short: "Verify the profile-guided optimization workflow",
	Long: `Walk through the four-step PGO workflow as a smoke test: compile the
benchmark source with profile instrumentation, run it to collect counters,
recompile consuming the profile, and run the optimized binary.

The probe stops at the first failing stage with a non-zero exit. Its scratch
workspace is removed on success and intentionally left behind on failure so
the intermediate artifacts can be inspected.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		if _, err := os.Stat(cfg.Source); err != nil {
			return fmt.Errorf("benchmark source not found: %s", cfg.Source)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, TitleStyle.Render("PGO verification probe"))
		fmt.Fprintf(out, "Source:   %s\n", PathStyle.Render(cfg.Source))
		fmt.Fprintf(out, "Workload: %s\n", cfg.PGO.Workload)
		fmt.Fprintln(out)

		probe := &pgo.Probe{
			Compiler:      toolchain.NewCompiler(cfg.Compiler),
			Source:        absOrSelf(cfg.Source),
			OptLevel:      cfg.PGO.OptLevel,
			Workload:      cfg.PGO.Workload,
			WorkspaceRoot: cfg.PGO.WorkspaceRoot,
			Out:           out,
		}

		outcome, err := probe.Run(cmd.Context())
		if err != nil {
			var stageErr *pgo.StageError
			if errors.As(err, &stageErr) {
				fmt.Fprintln(cmd.ErrOrStderr(), ErrorStyle.Render("✗ PGO VERIFICATION FAILED: ")+stageErr.Error())
				fmt.Fprintf(cmd.ErrOrStderr(), "Workspace retained for inspection: %s\n", PathStyle.Render(probe.Workspace()))
				cmd.SilenceUsage = true
				cmd.SilenceErrors = true
				return &ExitError{Code: 1, Err: stageErr}
			}
			return err
		}

		fmt.Fprintln(out)
		fmt.Fprintln(out, SuccessStyle.Render("✓ PGO workflow verified"))
		fmt.Fprintf(out, "Profile files collected: %d\n", len(outcome.Profiles))
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Optimized binary output:")
		fmt.Fprint(out, outcome.Output)
		return nil
	},
}

// absOrSelf resolves path against the current directory so compiles keep
// working when run from inside the scratch workspace.
func absOrSelf(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return abs
}
