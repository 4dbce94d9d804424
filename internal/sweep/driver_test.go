// SPDX-License-Identifier: MPL-2.0

package sweep

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/geremyCohen/arm-benchmarking-sub001/internal/benchplan"
)

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

func TestDriver_Run(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	d := &Driver{
		// echo is an interpreter builtin, so the test needs no external
		// binaries: the "sweep" just prints its own flags into the log.
		Tool:   "echo",
		LogDir: dir,
		Logger: quietLogger(),
		now:    func() time.Time { return time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC) },
	}

	run, err := d.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if run.ExitCode != 0 {
		t.Errorf("ExitCode = %d, want 0", run.ExitCode)
	}
	if run.ID == "" {
		t.Error("run should carry an execution ID")
	}
	if filepath.Base(run.LogPath) != "benchmark_issues_20260314_092653.log" {
		t.Errorf("LogPath = %q, want timestamped name", run.LogPath)
	}

	data, err := os.ReadFile(run.LogPath)
	if err != nil {
		t.Fatalf("log file not written: %v", err)
	}
	if !strings.Contains(string(data), "--runs 1,2,3") {
		t.Errorf("log = %q, want the forwarded sweep flags", string(data))
	}

	if run.Report == nil {
		t.Fatal("report should be built even for a trivial log")
	}
	if run.SummaryPath == "" {
		t.Fatal("summary should be written next to the log")
	}
	if _, err := os.Stat(run.SummaryPath); err != nil {
		t.Errorf("summary file missing: %v", err)
	}
}

func TestDriver_PreservesExitCode(t *testing.T) {
	t.Parallel()

	d := &Driver{
		// A shell function swallows the forwarded flags and exits 7.
		Tool:   "sweep_stub() { exit 7; }; sweep_stub",
		LogDir: t.TempDir(),
		Logger: quietLogger(),
	}

	run, err := d.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if run.ExitCode != 7 {
		t.Errorf("ExitCode = %d, want 7 preserved verbatim", run.ExitCode)
	}
	// A failed sweep still gets its report.
	if run.Report == nil {
		t.Fatal("report missing for failed sweep")
	}
	if !run.Report.HasPriority("critical") {
		t.Error("failed sweep should carry a critical action")
	}
}

func TestDriver_EchoesOutput(t *testing.T) {
	t.Parallel()

	var echoed strings.Builder
	d := &Driver{
		Tool:   "echo",
		LogDir: t.TempDir(),
		Echo:   &echoed,
		Logger: quietLogger(),
	}

	if _, err := d.Run(context.Background()); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if !strings.Contains(echoed.String(), "--runs") {
		t.Error("echo writer should receive a live copy of the output")
	}
}

func TestDriver_NoTool(t *testing.T) {
	t.Parallel()

	d := &Driver{Tool: "  ", LogDir: t.TempDir(), Logger: quietLogger()}
	if _, err := d.Run(context.Background()); err == nil {
		t.Error("Run() should fail without a sweep tool")
	}
}

func TestDriver_RejectsForeignPlan(t *testing.T) {
	t.Parallel()

	plan := benchplan.Default()
	plan.ContractVersion = 99

	d := &Driver{Tool: "echo", Plan: plan, LogDir: t.TempDir(), Logger: quietLogger()}
	if _, err := d.Run(context.Background()); err == nil {
		t.Error("Run() should reject a plan for an unsupported contract")
	}
}

func TestDriver_CommandLine(t *testing.T) {
	t.Parallel()

	d := &Driver{Tool: "./benchmark_all.sh", Plan: benchplan.Default()}
	line, err := d.commandLine()
	if err != nil {
		t.Fatalf("commandLine() error: %v", err)
	}
	want := "./benchmark_all.sh --runs 1,2,3 --opt-levels 0,1,2,3 --arch-flags --sizes 1,2 --extra-flags --pgo --verbose"
	if line != want {
		t.Errorf("commandLine() = %q, want %q", line, want)
	}
}
