// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/geremyCohen/arm-benchmarking-sub001/internal/dashboard"
	"github.com/geremyCohen/arm-benchmarking-sub001/internal/sweep"
)

var dashboardAddr string

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Serve the benchmark results dashboard",
	Long: `Serve the dashboard's static assets and JSON API: benchmark results from
the results directory, system information, and an endpoint that launches a
sweep in the background.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		addr := cfg.Dashboard.Addr
		if dashboardAddr != "" {
			addr = dashboardAddr
		}

		logger := log.NewWithOptions(os.Stderr, log.Options{Prefix: "dashboard"})
		if verbose {
			logger.SetLevel(log.DebugLevel)
		}

		server := &dashboard.Server{
			ResultsDir: cfg.ResultsDir,
			LogDir:     cfg.LogDir,
			StaticDir:  cfg.Dashboard.StaticDir,
			Logger:     logger,
			LaunchSweep: func() {
				driver := &sweep.Driver{
					Tool:   cfg.SweepTool,
					LogDir: cfg.LogDir,
					Logger: logger,
				}
				if _, err := driver.Run(context.Background()); err != nil {
					logger.Error("background sweep failed", "err", err)
				}
			},
		}
		return server.ListenAndServe(addr)
	},
}

func init() {
	dashboardCmd.Flags().StringVar(&dashboardAddr, "addr", "", "listen address (overrides config)")
}
