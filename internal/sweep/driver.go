// SPDX-License-Identifier: MPL-2.0

// Package sweep drives the external benchmark sweep tool: it runs the tool
// with the flags rendered from a sweep plan, tees everything the tool prints
// into a timestamp-named log file, and hands the log to the analysis and
// report layers.
//
// The sweep command line is executed through the embedded shell interpreter
// (mvdan.cc/sh), so the configured tool string may be any shell command and
// does not depend on a system shell being present.
package sweep

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"

	"github.com/geremyCohen/arm-benchmarking-sub001/internal/benchplan"
	"github.com/geremyCohen/arm-benchmarking-sub001/internal/report"
)

type (
	// Driver runs one sweep-and-analyze pass.
	Driver struct {
		// Tool is the sweep tool invocation, e.g. "./benchmark_all.sh".
		Tool string
		// Plan is the sweep plan to forward as tool flags.
		Plan *benchplan.Plan
		// LogDir is where the sweep log and summary are written.
		LogDir string
		// WorkDir is the directory the tool runs in.
		WorkDir string
		// Echo, when non-nil, receives a live copy of the tool's output.
		Echo io.Writer
		// Logger receives driver progress. Nil uses the default logger.
		Logger *log.Logger

		// now is a test seam for the log file timestamp.
		now func() time.Time
	}

	// Run is the outcome of one sweep-and-analyze pass.
	Run struct {
		// ID uniquely identifies this sweep execution.
		ID string
		// LogPath is the captured sweep log.
		LogPath string
		// SummaryPath is the TOML summary written next to the log.
		SummaryPath string
		// ExitCode is the sweep tool's exit code, preserved verbatim.
		ExitCode int
		// Report is the prioritized issue report built from the log.
		Report *report.Report
	}
)

func (d *Driver) logger() *log.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return log.Default()
}

func (d *Driver) timestamp() string {
	now := time.Now
	if d.now != nil {
		now = d.now
	}
	return now().Format("20060102_150405")
}

// Run executes the sweep tool, captures its output, and builds the report.
// The tool's exit code never turns into an error here; the report is built
// regardless and the exit code is preserved in the Run for the caller to
// propagate. An error means the driver itself could not do its job (log file
// not writable, tool string unparsable).
func (d *Driver) Run(ctx context.Context) (*Run, error) {
	if d.Plan == nil {
		d.Plan = benchplan.Default()
	}
	if err := d.Plan.Validate(); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(d.LogDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	logPath := filepath.Join(d.LogDir, fmt.Sprintf("benchmark_issues_%s.log", d.timestamp()))
	logFile, err := os.Create(logPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create sweep log: %w", err)
	}

	var sink io.Writer = logFile
	if d.Echo != nil {
		sink = io.MultiWriter(logFile, d.Echo)
	}

	run := &Run{
		ID:      uuid.NewString(),
		LogPath: logPath,
	}

	d.logger().Info("starting sweep",
		"id", run.ID, "tool", d.Tool, "log", logPath, "combinations", d.Plan.Combinations())

	exitCode, execErr := d.execute(ctx, sink)
	closeErr := logFile.Close()
	if execErr != nil {
		return nil, execErr
	}
	if closeErr != nil {
		return nil, fmt.Errorf("failed to close sweep log: %w", closeErr)
	}
	run.ExitCode = exitCode

	// Analysis happens regardless of how the sweep exited.
	run.Report = report.FromLog(logPath, exitCode)

	run.SummaryPath = strings.TrimSuffix(logPath, ".log") + "_summary.toml"
	if err := run.Report.WriteSummary(run.SummaryPath); err != nil {
		d.logger().Warn("summary not written", "err", err)
		run.SummaryPath = ""
	}

	d.logger().Info("sweep finished", "id", run.ID, "exit", exitCode,
		"attempted", run.Report.Summary.Attempted, "successful", run.Report.Summary.Successful)
	return run, nil
}

// execute runs the tool command line through the embedded shell interpreter
// and returns its exit code.
func (d *Driver) execute(ctx context.Context, sink io.Writer) (int, error) {
	line, err := d.commandLine()
	if err != nil {
		return 0, err
	}

	prog, err := syntax.NewParser().Parse(strings.NewReader(line), "sweep")
	if err != nil {
		return 0, fmt.Errorf("failed to parse sweep command: %w", err)
	}

	runner, err := interp.New(
		interp.Dir(d.WorkDir),
		interp.Env(expand.ListEnviron(os.Environ()...)),
		interp.StdIO(nil, sink, sink),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to create interpreter: %w", err)
	}

	if err := runner.Run(ctx, prog); err != nil {
		var exitStatus interp.ExitStatus
		if errors.As(err, &exitStatus) {
			return int(exitStatus), nil
		}
		return 0, fmt.Errorf("sweep execution failed: %w", err)
	}
	return 0, nil
}

// commandLine renders the tool invocation with the plan's flags, quoting
// each word for the shell.
func (d *Driver) commandLine() (string, error) {
	if strings.TrimSpace(d.Tool) == "" {
		return "", fmt.Errorf("no sweep tool configured")
	}
	words := []string{d.Tool}
	for _, arg := range d.Plan.FlagArgs() {
		quoted, err := syntax.Quote(arg, syntax.LangBash)
		if err != nil {
			return "", fmt.Errorf("failed to quote argument %q: %w", arg, err)
		}
		words = append(words, quoted)
	}
	return strings.Join(words, " "), nil
}
