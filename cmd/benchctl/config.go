// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/geremyCohen/arm-benchmarking-sub001/internal/config"
)

// configCmd is the `benchctl config` command tree.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage benchctl configuration",
	Long: `Manage benchctl configuration.

Configuration is stored in:
  - Linux: ~/.config/benchctl/config.cue
  - macOS: ~/Library/Application Support/benchctl/config.cue
  - Windows: %APPDATA%\benchctl\config.cue`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

func init() {
	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, TitleStyle.Render("benchctl configuration"))
			fmt.Fprintf(out, "compiler:       %s\n", cfg.Compiler)
			fmt.Fprintf(out, "source:         %s\n", cfg.Source)
			fmt.Fprintf(out, "sweep tool:     %s\n", cfg.SweepTool)
			fmt.Fprintf(out, "log dir:        %s\n", cfg.LogDir)
			fmt.Fprintf(out, "results dir:    %s\n", cfg.ResultsDir)
			fmt.Fprintf(out, "pgo workload:   %s\n", cfg.PGO.Workload)
			fmt.Fprintf(out, "pgo opt level:  -O%d\n", cfg.PGO.OptLevel)
			fmt.Fprintf(out, "pgo workspace:  %s\n", cfg.PGO.WorkspaceRoot)
			fmt.Fprintf(out, "dashboard addr: %s\n", cfg.Dashboard.Addr)
			return nil
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.WriteDefault()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", SuccessStyle.Render("created"), PathStyle.Render(path))
			return nil
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.ConfigFilePath()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	})
}
