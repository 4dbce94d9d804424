// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for benchctl.
//
// This package implements the Cobra command hierarchy for the benchctl CLI:
// the root command, the sweep driver, the log analyzer, the PGO verification
// probe, the dashboard server, and configuration management.
package cmd
