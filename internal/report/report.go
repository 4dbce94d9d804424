// SPDX-License-Identifier: MPL-2.0

// Package report turns a scanned sweep log into a prioritized issue report.
//
// Priorities follow fixed thresholds: a failed sweep or any compiler error is
// critical, PGO profile problems are high, and warning volume or a depressed
// success rate is medium. The report never fails to render; whatever the
// analysis could not compute is shown as unavailable.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/geremyCohen/arm-benchmarking-sub001/internal/analysis"
)

// Report thresholds and section limits.
const (
	// MaxErrorLines caps the literal error lines echoed in the report.
	MaxErrorLines = 10
	// MaxMissingProfileLines caps the literal missing-profile lines.
	MaxMissingProfileLines = 5
	// MaxContextLines caps the compilation-failure context section.
	MaxContextLines = 20
	// contextRadius is how many lines before/after a failure marker to show.
	contextRadius = 5
	// maxContextFailures is how many failure sites contribute context.
	maxContextFailures = 2
	// TopWarningPrefixes is how many warning patterns the report lists.
	TopWarningPrefixes = 5
	// WarningThreshold is the warning count above which a medium issue fires.
	WarningThreshold = 50
	// SuccessRateThreshold is the success percentage below which a medium
	// issue fires.
	SuccessRateThreshold = 95.0
)

// Report is the assembled issue report for one sweep.
type Report struct {
	// LogPath is the sweep log the report was built from.
	LogPath string
	// SweepExitCode is the sweep tool's exit code.
	SweepExitCode int
	// Summary holds the scanned counts.
	Summary *analysis.Summary
	// ErrorLines are sample literal error lines from the log.
	ErrorLines []string
	// MissingProfileLines are sample literal missing-profile lines.
	MissingProfileLines []string
	// FailureContext is log context around the first compile failures.
	FailureContext []string
	// WarningPrefixes are the most frequent warning message patterns.
	WarningPrefixes []analysis.PrefixCount
	// Actions are the prioritized issues, most urgent first.
	Actions []*Issue
}

// FromLog builds the full report for the log at path. A missing log yields a
// report with zero counts; building never fails.
func FromLog(path string, sweepExitCode int) *Report {
	summary := analysis.ScanFile(path)
	r := &Report{
		LogPath:             path,
		SweepExitCode:       sweepExitCode,
		Summary:             summary,
		ErrorLines:          analysis.FindLinesInFile(path, analysis.ErrorMarker, MaxErrorLines),
		MissingProfileLines: analysis.FindLinesInFile(path, analysis.MissingProfileMarker, MaxMissingProfileLines),
		FailureContext: analysis.FailureContextInFile(path, analysis.TerminatedMarker,
			contextRadius, contextRadius, MaxContextLines, maxContextFailures),
		WarningPrefixes: analysis.WarningPrefixesInFile(path, TopWarningPrefixes),
	}
	r.Actions = Actions(summary, sweepExitCode)
	return r
}

// Actions returns the prioritized issues for the given counts and sweep exit
// code, most urgent first.
func Actions(s *analysis.Summary, sweepExitCode int) []*Issue {
	var list []*Issue
	if sweepExitCode != 0 {
		list = append(list, Get(SweepFailedId))
	}
	if s.Errors > 0 || s.FatalErrors > 0 {
		list = append(list, Get(CompileErrorsId))
	}
	if s.MissingProfile > 0 {
		list = append(list, Get(MissingProfileId))
	}
	if s.CoverageMismatch > 0 {
		list = append(list, Get(CoverageMismatchId))
	}
	if s.Warnings > WarningThreshold {
		list = append(list, Get(ExcessiveWarningsId))
	}
	if rate, ok := s.SuccessRate(); ok && rate < SuccessRateThreshold {
		list = append(list, Get(LowSuccessRateId))
	}
	sortByPriority(list)
	return list
}

// HasPriority reports whether any action carries the given priority.
func (r *Report) HasPriority(p Priority) bool {
	for _, issue := range r.Actions {
		if issue.priority == p {
			return true
		}
	}
	return false
}

// Render writes the text report to w.
func (r *Report) Render(w io.Writer) {
	s := r.Summary

	fmt.Fprintln(w, "=== Benchmark Sweep Issue Report ===")
	fmt.Fprintf(w, "Log: %s\n", r.LogPath)
	fmt.Fprintf(w, "Sweep exit code: %d\n", r.SweepExitCode)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Issue summary:")
	fmt.Fprintf(w, "  warnings:          %d\n", s.Warnings)
	fmt.Fprintf(w, "  errors:            %d\n", s.Errors)
	fmt.Fprintf(w, "  fatal errors:      %d\n", s.FatalErrors)
	fmt.Fprintf(w, "  missing profile:   %d\n", s.MissingProfile)
	fmt.Fprintf(w, "  coverage mismatch: %d\n", s.CoverageMismatch)
	fmt.Fprintf(w, "  PGO failures:      %d\n", s.PGOFailures)
	fmt.Fprintln(w)

	if len(r.ErrorLines) > 0 {
		fmt.Fprintf(w, "Sample error lines (first %d):\n", len(r.ErrorLines))
		for _, line := range r.ErrorLines {
			fmt.Fprintf(w, "  %s\n", line)
		}
		fmt.Fprintln(w)
	}

	if len(r.MissingProfileLines) > 0 {
		fmt.Fprintf(w, "Sample missing-profile lines (first %d):\n", len(r.MissingProfileLines))
		for _, line := range r.MissingProfileLines {
			fmt.Fprintf(w, "  %s\n", line)
		}
		fmt.Fprintln(w)
	}

	if len(r.FailureContext) > 0 {
		fmt.Fprintln(w, "Context around first compile failures:")
		for _, line := range r.FailureContext {
			fmt.Fprintf(w, "  %s\n", line)
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, "Performance summary:")
	fmt.Fprintf(w, "  combinations attempted:  %d\n", s.Attempted)
	fmt.Fprintf(w, "  combinations successful: %d\n", s.Successful)
	if rate, ok := s.SuccessRate(); ok {
		fmt.Fprintf(w, "  success rate:            %.1f%%\n", rate)
	} else {
		fmt.Fprintln(w, "  success rate:            unavailable")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Prioritized actions:")
	if len(r.Actions) == 0 {
		fmt.Fprintln(w, "  none - sweep looks healthy")
	}
	for _, issue := range r.Actions {
		fmt.Fprintf(w, "  [%s] %s\n", strings.ToUpper(string(issue.Priority())), issue.Title())
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Top warning patterns:")
	if len(r.WarningPrefixes) == 0 {
		fmt.Fprintln(w, "  No warnings found")
		return
	}
	for _, pc := range r.WarningPrefixes {
		fmt.Fprintf(w, "  %4dx %s\n", pc.Count, pc.Prefix)
	}
}
