// SPDX-License-Identifier: MPL-2.0

package report

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// summaryDoc is the machine-readable companion to the text report, written
// next to the sweep log so later tooling does not have to re-scrape it.
type summaryDoc struct {
	GeneratedAt   time.Time `toml:"generated_at"`
	LogPath       string    `toml:"log_path"`
	SweepExitCode int       `toml:"sweep_exit_code"`

	Counts struct {
		Warnings         int `toml:"warnings"`
		Errors           int `toml:"errors"`
		FatalErrors      int `toml:"fatal_errors"`
		MissingProfile   int `toml:"missing_profile"`
		CoverageMismatch int `toml:"coverage_mismatch"`
		PGOFailures      int `toml:"pgo_failures"`
	} `toml:"counts"`

	Performance struct {
		Attempted            int     `toml:"attempted"`
		Successful           int     `toml:"successful"`
		SuccessRate          float64 `toml:"success_rate"`
		SuccessRateAvailable bool    `toml:"success_rate_available"`
	} `toml:"performance"`

	Priorities []string `toml:"priorities"`
}

// WriteSummary persists the report's counts and priorities as TOML at path.
func (r *Report) WriteSummary(path string) error {
	var doc summaryDoc
	doc.GeneratedAt = time.Now().UTC()
	doc.LogPath = r.LogPath
	doc.SweepExitCode = r.SweepExitCode

	doc.Counts.Warnings = r.Summary.Warnings
	doc.Counts.Errors = r.Summary.Errors
	doc.Counts.FatalErrors = r.Summary.FatalErrors
	doc.Counts.MissingProfile = r.Summary.MissingProfile
	doc.Counts.CoverageMismatch = r.Summary.CoverageMismatch
	doc.Counts.PGOFailures = r.Summary.PGOFailures

	doc.Performance.Attempted = r.Summary.Attempted
	doc.Performance.Successful = r.Summary.Successful
	doc.Performance.SuccessRate, doc.Performance.SuccessRateAvailable = r.Summary.SuccessRate()

	for _, issue := range r.Actions {
		doc.Priorities = append(doc.Priorities, string(issue.Priority())+": "+issue.Title())
	}

	data, err := toml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	return nil
}
