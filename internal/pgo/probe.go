// SPDX-License-Identifier: MPL-2.0

// Package pgo implements the profile-guided optimization verification probe:
// a linear instrument → run → profile-check → rebuild → verify sequence
// against a single benchmark source. The probe stops at the first failing
// stage and leaves its scratch workspace behind for post-mortem inspection;
// the workspace is removed only when every stage succeeds.
package pgo

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/geremyCohen/arm-benchmarking-sub001/internal/toolchain"
)

// Stage identifies one step of the probe.
type Stage int

const (
	// StageInstrument compiles the source with profile instrumentation.
	StageInstrument Stage = iota + 1
	// StageInstrumentedRun executes the instrumented binary to collect counters.
	StageInstrumentedRun
	// StageProfileCheck verifies profile counter files were produced.
	StageProfileCheck
	// StageOptimizedBuild recompiles the source consuming the profile.
	StageOptimizedBuild
	// StageVerify executes the profile-guided binary and captures its output.
	StageVerify
)

// String returns the stage name used in diagnostics.
func (s Stage) String() string {
	switch s {
	case StageInstrument:
		return "instrumented compile"
	case StageInstrumentedRun:
		return "instrumented run"
	case StageProfileCheck:
		return "profile presence check"
	case StageOptimizedBuild:
		return "profile-guided recompile"
	case StageVerify:
		return "optimized binary verification"
	}
	return fmt.Sprintf("stage %d", int(s))
}

// StageError reports which stage of the probe failed.
type StageError struct {
	Stage Stage
	Err   error
}

// Error returns the stage-tagged diagnostic.
func (e *StageError) Error() string {
	return fmt.Sprintf("stage %d (%s) failed: %v", int(e.Stage), e.Stage, e.Err)
}

// Unwrap returns the underlying error.
func (e *StageError) Unwrap() error {
	return e.Err
}

type (
	// Probe configures one PGO verification run.
	Probe struct {
		// Compiler invokes the toolchain.
		Compiler *toolchain.Compiler
		// Source is the benchmark C source file.
		Source string
		// OptLevel is the optimization level used for both builds.
		OptLevel int
		// Workload is the size preset argument passed to the binary.
		Workload string
		// WorkspaceRoot is where the scratch workspace is created.
		WorkspaceRoot string
		// Out receives per-stage progress output. Nil discards it.
		Out io.Writer
	}

	// Outcome is the result of a fully successful probe.
	Outcome struct {
		// Workspace is the scratch directory the probe used (removed by
		// the time the Outcome is returned).
		Workspace string
		// Profiles lists the profile counter files stage 3 found.
		Profiles []string
		// Output is the optimized binary's captured output.
		Output string
	}
)

// instrumented and optimized are the binary names inside the workspace.
const (
	instrumentedBinary = "matrix_pgo_gen"
	optimizedBinary    = "matrix_pgo_use"
)

// Workspace returns the scratch directory path for this process. Each
// invocation is namespaced by PID so concurrent probes do not collide.
func (p *Probe) Workspace() string {
	return filepath.Join(p.WorkspaceRoot, fmt.Sprintf("pgo-verify-%d", os.Getpid()))
}

// Run executes the five stages in order. On the first failing stage it
// returns a *StageError and retains the workspace. On success the workspace
// is removed and the optimized binary's output is returned.
func (p *Probe) Run(ctx context.Context) (*Outcome, error) {
	out := p.Out
	if out == nil {
		out = io.Discard
	}

	workspace := p.Workspace()
	if err := os.MkdirAll(workspace, 0o755); err != nil {
		return nil, &StageError{Stage: StageInstrument, Err: fmt.Errorf("failed to create workspace: %w", err)}
	}

	// Stage 1: instrumented compile.
	fmt.Fprintf(out, "Stage 1/5: %s (-O%d -fprofile-generate)\n", StageInstrument, p.OptLevel)
	genBinary := filepath.Join(workspace, instrumentedBinary)
	_, err := p.Compiler.Compile(ctx, toolchain.CompileSpec{
		Source:   p.Source,
		Output:   genBinary,
		OptLevel: p.OptLevel,
		PGO:      toolchain.PGOGenerate,
		WorkDir:  workspace,
	})
	if err != nil {
		return nil, &StageError{Stage: StageInstrument, Err: err}
	}
	fmt.Fprintf(out, "  instrumented binary: %s\n", genBinary)

	// Stage 2: instrumented run, output discarded. The run's side effect is
	// the .gcda counter files deposited in the workspace.
	fmt.Fprintf(out, "Stage 2/5: %s (workload %q)\n", StageInstrumentedRun, p.Workload)
	_, err = p.Compiler.Run(ctx, toolchain.RunSpec{
		Binary:        genBinary,
		Args:          []string{p.Workload},
		WorkDir:       workspace,
		DiscardOutput: true,
	})
	if err != nil {
		return nil, &StageError{Stage: StageInstrumentedRun, Err: err}
	}
	fmt.Fprintln(out, "  profile data collected")

	// Stage 3: profile presence check.
	fmt.Fprintf(out, "Stage 3/5: %s\n", StageProfileCheck)
	profiles, err := filepath.Glob(filepath.Join(workspace, "*.gcda"))
	if err != nil {
		return nil, &StageError{Stage: StageProfileCheck, Err: err}
	}
	if len(profiles) == 0 {
		return nil, &StageError{Stage: StageProfileCheck, Err: fmt.Errorf("no .gcda profile files found in %s", workspace)}
	}
	for _, profile := range profiles {
		fmt.Fprintf(out, "  %s\n", profile)
	}

	// Stage 4: profile-guided recompile.
	fmt.Fprintf(out, "Stage 4/5: %s (-O%d -fprofile-use)\n", StageOptimizedBuild, p.OptLevel)
	useBinary := filepath.Join(workspace, optimizedBinary)
	_, err = p.Compiler.Compile(ctx, toolchain.CompileSpec{
		Source:   p.Source,
		Output:   useBinary,
		OptLevel: p.OptLevel,
		PGO:      toolchain.PGOUse,
		WorkDir:  workspace,
	})
	if err != nil {
		return nil, &StageError{Stage: StageOptimizedBuild, Err: err}
	}
	fmt.Fprintf(out, "  optimized binary: %s\n", useBinary)

	// Stage 5: run the optimized binary, keeping its output as the result.
	fmt.Fprintf(out, "Stage 5/5: %s (workload %q)\n", StageVerify, p.Workload)
	res, err := p.Compiler.Run(ctx, toolchain.RunSpec{
		Binary:  useBinary,
		Args:    []string{p.Workload},
		WorkDir: workspace,
	})
	if err != nil {
		return nil, &StageError{Stage: StageVerify, Err: err}
	}

	// Full success: the workspace has served its purpose.
	if err := os.RemoveAll(workspace); err != nil {
		return nil, fmt.Errorf("probe succeeded but workspace cleanup failed: %w", err)
	}

	return &Outcome{
		Workspace: workspace,
		Profiles:  profiles,
		Output:    res.Output,
	}, nil
}
