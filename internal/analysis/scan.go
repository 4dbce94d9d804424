// SPDX-License-Identifier: MPL-2.0

package analysis

import (
	"bufio"
	"io"
	"os"
	"regexp"
	"strings"
)

// Markers recognized in sweep logs. The attempt and success markers are part
// of the sweep tool contract (see the benchplan package); the rest are GCC
// diagnostics.
const (
	WarningMarker          = "warning:"
	ErrorMarker            = "error:"
	FatalErrorMarker       = "fatal error:"
	MissingProfileMarker   = "missing-profile"
	CoverageMismatchMarker = "coverage-mismatch"
	PGOFailureMarker       = "PGO build failed"
	AttemptMarker          = "Testing:"
	TerminatedMarker       = "compilation terminated"
)

// successPattern matches a throughput line: a GFLOPS figure followed by the
// tool's bracketed configuration annotation.
var successPattern = regexp.MustCompile(`GFLOPS.*\[`)

// Summary holds the issue and performance counts scanned from one sweep log.
type Summary struct {
	// Warnings counts lines containing a compiler warning diagnostic.
	Warnings int
	// Errors counts lines containing a compiler error diagnostic
	// (fatal errors match this count too, as they contain "error:").
	Errors int
	// FatalErrors counts lines containing a fatal compiler error.
	FatalErrors int
	// MissingProfile counts missing-profile notices from PGO rebuilds.
	MissingProfile int
	// CoverageMismatch counts coverage-mismatch notices from PGO rebuilds.
	CoverageMismatch int
	// PGOFailures counts explicit PGO build failure notices.
	PGOFailures int
	// Attempted counts build/test combinations the sweep started.
	Attempted int
	// Successful counts combinations that reported a throughput figure.
	Successful int
}

// Scan counts markers over the log text in r.
func Scan(r io.Reader) (*Summary, error) {
	s := &Summary{}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.Contains(line, WarningMarker) {
			s.Warnings++
		}
		if strings.Contains(line, ErrorMarker) {
			s.Errors++
		}
		if strings.Contains(line, FatalErrorMarker) {
			s.FatalErrors++
		}
		if strings.Contains(line, MissingProfileMarker) {
			s.MissingProfile++
		}
		if strings.Contains(line, CoverageMismatchMarker) {
			s.CoverageMismatch++
		}
		if strings.Contains(line, PGOFailureMarker) {
			s.PGOFailures++
		}
		if strings.Contains(line, AttemptMarker) {
			s.Attempted++
		}
		if successPattern.MatchString(line) {
			s.Successful++
		}
	}
	if err := scanner.Err(); err != nil {
		return s, err
	}
	return s, nil
}

// ScanFile scans the log at path. A missing or unreadable file yields an
// all-zero summary, never an error.
func ScanFile(path string) *Summary {
	f, err := os.Open(path)
	if err != nil {
		return &Summary{}
	}
	defer f.Close()

	s, err := Scan(f)
	if err != nil {
		return &Summary{}
	}
	return s
}

// SuccessRate returns the percentage of attempted combinations that reported
// a throughput figure, rounded to one decimal place. ok is false when no
// combinations were attempted and the rate is unavailable.
func (s *Summary) SuccessRate() (rate float64, ok bool) {
	if s.Attempted <= 0 {
		return 0, false
	}
	rate = float64(s.Successful) * 100 / float64(s.Attempted)
	// Round half away from zero to one decimal, matching printf %.1f input.
	rate = float64(int(rate*10+0.5)) / 10
	return rate, true
}
