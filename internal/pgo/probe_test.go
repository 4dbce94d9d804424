// SPDX-License-Identifier: MPL-2.0

package pgo

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/geremyCohen/arm-benchmarking-sub001/internal/toolchain"
)

// fakeRunner simulates the compiler and benchmark binaries. Instrumented
// runs deposit a .gcda file in the working directory, like a real
// profile-generate binary would.
type fakeRunner struct {
	failGccCall      int  // 1-based index of the gcc call to fail, 0 = never
	failRun          bool // fail benchmark binary runs
	failOptimizedRun bool // fail only the optimized binary run
	skipProfile      bool // instrumented run leaves no .gcda behind
	binaryOutput     string

	gccCalls int
}

func (f *fakeRunner) Run(ctx context.Context, workDir string, output io.Writer, name string, args ...string) (int, error) {
	if name == "gcc" {
		f.gccCalls++
		if f.gccCalls == f.failGccCall {
			fmt.Fprintln(output, "matrix.c:1: fatal error: boom")
			return 1, nil
		}
		return 0, nil
	}

	if f.failRun {
		return 1, nil
	}
	if strings.HasSuffix(name, instrumentedBinary) {
		if !f.skipProfile {
			path := filepath.Join(workDir, "optimized_matrix.gcda")
			if err := os.WriteFile(path, []byte("counters"), 0o644); err != nil {
				return 1, err
			}
		}
		return 0, nil
	}
	if f.failOptimizedRun {
		return 1, nil
	}
	fmt.Fprint(output, f.binaryOutput)
	return 0, nil
}

func newProbe(t *testing.T, runner *fakeRunner) *Probe {
	t.Helper()
	return &Probe{
		Compiler:      &toolchain.Compiler{Path: "gcc", Runner: runner},
		Source:        "src/optimized_matrix.c",
		OptLevel:      2,
		Workload:      "small",
		WorkspaceRoot: t.TempDir(),
		Out:           io.Discard,
	}
}

func TestProbe_FullSuccess(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{binaryOutput: "Performance: 2.59 GFLOPS\n"}
	probe := newProbe(t, runner)

	outcome, err := probe.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if outcome.Output != "Performance: 2.59 GFLOPS\n" {
		t.Errorf("Output = %q, want the optimized binary's output", outcome.Output)
	}
	if len(outcome.Profiles) != 1 {
		t.Errorf("Profiles = %v, want one .gcda file", outcome.Profiles)
	}
	if runner.gccCalls != 2 {
		t.Errorf("gcc invoked %d times, want 2 (generate + use)", runner.gccCalls)
	}
	if _, err := os.Stat(probe.Workspace()); !os.IsNotExist(err) {
		t.Error("workspace should be removed after a successful probe")
	}
}

func TestProbe_StageProgress(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	runner := &fakeRunner{binaryOutput: "ok\n"}
	probe := newProbe(t, runner)
	probe.Out = &buf

	if _, err := probe.Run(context.Background()); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	for stage := 1; stage <= 5; stage++ {
		marker := fmt.Sprintf("Stage %d/5", stage)
		if !strings.Contains(buf.String(), marker) {
			t.Errorf("progress output missing %q", marker)
		}
	}
}

func TestProbe_FailuresHaltAndRetainWorkspace(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		runner    *fakeRunner
		wantStage Stage
	}{
		{
			name:      "instrumented compile fails",
			runner:    &fakeRunner{failGccCall: 1},
			wantStage: StageInstrument,
		},
		{
			name:      "instrumented run fails",
			runner:    &fakeRunner{failRun: true},
			wantStage: StageInstrumentedRun,
		},
		{
			name:      "no profile files after successful run",
			runner:    &fakeRunner{skipProfile: true},
			wantStage: StageProfileCheck,
		},
		{
			name:      "profile-guided recompile fails",
			runner:    &fakeRunner{failGccCall: 2},
			wantStage: StageOptimizedBuild,
		},
		{
			name:      "optimized binary run fails",
			runner:    &fakeRunner{failOptimizedRun: true},
			wantStage: StageVerify,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			probe := newProbe(t, tt.runner)

			_, err := probe.Run(context.Background())
			if err == nil {
				t.Fatal("Run() should fail")
			}
			var stageErr *StageError
			if !errors.As(err, &stageErr) {
				t.Fatalf("error %v is not a StageError", err)
			}
			if stageErr.Stage != tt.wantStage {
				t.Errorf("failed at stage %d, want %d", stageErr.Stage, tt.wantStage)
			}
			if _, err := os.Stat(probe.Workspace()); err != nil {
				t.Error("workspace should be retained after a failed probe")
			}
		})
	}
}

func TestStageError_Message(t *testing.T) {
	t.Parallel()

	err := &StageError{Stage: StageProfileCheck, Err: errors.New("no .gcda profile files found")}
	msg := err.Error()
	if !strings.Contains(msg, "stage 3") || !strings.Contains(msg, "profile presence check") {
		t.Errorf("Error() = %q, want stage number and name", msg)
	}
}

func TestProbe_WorkspaceIsPidScoped(t *testing.T) {
	t.Parallel()

	probe := newProbe(t, &fakeRunner{})
	want := fmt.Sprintf("pgo-verify-%d", os.Getpid())
	if filepath.Base(probe.Workspace()) != want {
		t.Errorf("Workspace() = %q, want base %q", probe.Workspace(), want)
	}
}
