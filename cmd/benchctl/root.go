// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/geremyCohen/arm-benchmarking-sub001/internal/config"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"

	// verbose enables verbose output
	verbose bool
	// cfgFile allows specifying a custom config file
	cfgFile string

	// rootCmd represents the base command when called without any subcommands
	rootCmd = &cobra.Command{
		Use:   "benchctl",
		Short: "Build-and-measure automation for matrix-multiply benchmarking",
		Long: TitleStyle.Render("benchctl") + SubtitleStyle.Render(" - build-and-measure automation") + `

benchctl orchestrates benchmark builds of a matrix multiplication kernel
under varying GCC optimization levels and profile-guided optimization,
and turns the resulting logs into prioritized issue reports.

` + SubtitleStyle.Render("Examples:") + `
  benchctl sweep                    Run the comprehensive sweep and analyze it
  benchctl analyze logs/issues.log  Re-analyze an existing sweep log
  benchctl pgo                      Verify the four-step PGO workflow
  benchctl dashboard                Serve the results dashboard
  benchctl config show              Show current configuration`,
	}
)

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/benchctl/config.cue)")

	rootCmd.AddCommand(sweepCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(pgoCmd)
	rootCmd.AddCommand(dashboardCmd)
	rootCmd.AddCommand(configCmd)
}

// loadConfig loads the application config, honoring the --config flag.
func loadConfig() (*config.Config, error) {
	return config.Load(cfgFile)
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}
