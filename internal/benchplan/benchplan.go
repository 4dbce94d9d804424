// SPDX-License-Identifier: MPL-2.0

// Package benchplan defines the sweep plan document: the set of run counts,
// optimization levels, sizes and feature toggles forwarded to the external
// benchmark sweep tool. Plans are CUE documents validated against an embedded
// schema.
//
// The plan also carries the version of the contract between benchctl and the
// sweep tool. The analyzer's output markers (the "GFLOPS [...]" success line,
// the "Testing:" attempt line) are only meaningful for a tool speaking the
// supported contract version, so a plan written for a different version is
// rejected up front instead of silently producing zero counts.
package benchplan

import (
	_ "embed"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/geremyCohen/arm-benchmarking-sub001/internal/cueutil"
)

// SupportedContract is the sweep tool contract version this binary was
// built against.
const SupportedContract = 1

//go:embed plan_schema.cue
var planSchema []byte

// Plan describes one sweep of the benchmark tool.
type Plan struct {
	// ContractVersion is the sweep tool contract the plan targets.
	ContractVersion int `json:"contract_version"`
	// Runs lists run counts to test.
	Runs []int `json:"runs"`
	// OptLevels lists GCC optimization levels to test.
	OptLevels []int `json:"opt_levels"`
	// Sizes lists matrix size presets to test.
	Sizes []int `json:"sizes"`
	// ArchFlags includes architecture flag variants.
	ArchFlags bool `json:"arch_flags"`
	// ExtraFlags includes tool-specific extra flag variants.
	ExtraFlags bool `json:"extra_flags"`
	// PGO includes profile-guided optimization builds.
	PGO bool `json:"pgo"`
	// Verbose requests verbose per-combination output.
	Verbose bool `json:"verbose"`
}

// Default returns the comprehensive sweep plan: every optimization level,
// both size presets, arch flag variants, extra flags and PGO, verbose.
func Default() *Plan {
	return &Plan{
		ContractVersion: SupportedContract,
		Runs:            []int{1, 2, 3},
		OptLevels:       []int{0, 1, 2, 3},
		Sizes:           []int{1, 2},
		ArchFlags:       true,
		ExtraFlags:      true,
		PGO:             true,
		Verbose:         true,
	}
}

// Load reads and validates a plan document from path.
func Load(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read plan: %w", err)
	}
	plan, err := cueutil.Decode[Plan](planSchema, data, "#Plan", path)
	if err != nil {
		return nil, err
	}
	if err := plan.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return plan, nil
}

// Validate checks constraints the schema cannot express on its own.
func (p *Plan) Validate() error {
	if p.ContractVersion != SupportedContract {
		return fmt.Errorf("plan targets sweep tool contract v%d, this build supports v%d",
			p.ContractVersion, SupportedContract)
	}
	if len(p.Runs) == 0 {
		return fmt.Errorf("plan has no run counts")
	}
	if len(p.OptLevels) == 0 {
		return fmt.Errorf("plan has no optimization levels")
	}
	if len(p.Sizes) == 0 {
		return fmt.Errorf("plan has no sizes")
	}
	return nil
}

// FlagArgs renders the plan as the sweep tool's command line arguments.
func (p *Plan) FlagArgs() []string {
	args := []string{
		"--runs", joinInts(p.Runs),
		"--opt-levels", joinInts(p.OptLevels),
	}
	if p.ArchFlags {
		args = append(args, "--arch-flags")
	}
	args = append(args, "--sizes", joinInts(p.Sizes))
	if p.ExtraFlags {
		args = append(args, "--extra-flags")
	}
	if p.PGO {
		args = append(args, "--pgo")
	}
	if p.Verbose {
		args = append(args, "--verbose")
	}
	return args
}

// Combinations returns the number of build/test combinations the plan covers.
// Arch flag variants triple the build count (none, detected -march, -mtune),
// and PGO doubles it.
func (p *Plan) Combinations() int {
	n := len(p.Runs) * len(p.OptLevels) * len(p.Sizes)
	if p.ArchFlags {
		n *= 3
	}
	if p.PGO {
		n *= 2
	}
	return n
}

func joinInts(vals []int) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ",")
}
