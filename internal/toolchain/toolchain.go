// SPDX-License-Identifier: MPL-2.0

// Package toolchain wraps the GCC toolchain invocations benchctl performs:
// compiling the benchmark source at a given optimization level (optionally
// with PGO instrumentation or profile feedback) and running the produced
// binaries.
package toolchain

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"
)

// PGOMode selects the profile-guided optimization flags for a compile.
type PGOMode string

const (
	// PGONone builds without any profile flags.
	PGONone PGOMode = "none"
	// PGOGenerate builds with profile-generation instrumentation.
	PGOGenerate PGOMode = "generate"
	// PGOUse builds consuming previously collected profile data. The
	// coverage-mismatch diagnostic class is suppressed so stale profiles
	// degrade the optimization instead of failing the build.
	PGOUse PGOMode = "use"
)

type (
	// CompileSpec describes one compiler invocation.
	CompileSpec struct {
		// Source is the C source file to compile.
		Source string
		// Output is the binary path to produce.
		Output string
		// OptLevel is the GCC optimization level (0-3).
		OptLevel int
		// ArchFlags are architecture tuning flags (-march, -mtune).
		ArchFlags []string
		// ExtraFlags are appended verbatim after the standard flags.
		ExtraFlags []string
		// PGO selects profile instrumentation or feedback.
		PGO PGOMode
		// WorkDir is the directory to compile in. Profile counter files
		// are written here by instrumented runs.
		WorkDir string
	}

	// RunSpec describes one benchmark binary execution.
	RunSpec struct {
		// Binary is the executable to run.
		Binary string
		// Args are passed to the binary (e.g. the workload size preset).
		Args []string
		// WorkDir is the working directory for the run. Instrumented
		// binaries deposit their .gcda files here.
		WorkDir string
		// DiscardOutput drops stdout/stderr instead of capturing it.
		DiscardOutput bool
	}

	// Result holds the outcome of a toolchain invocation.
	Result struct {
		// ExitCode is the process exit code.
		ExitCode int
		// Output is the captured combined stdout/stderr.
		Output string
		// Duration is the wall time of the invocation.
		Duration time.Duration
	}

	// Runner executes external processes. The default implementation shells
	// out via os/exec; tests substitute a stub.
	Runner interface {
		Run(ctx context.Context, workDir string, output io.Writer, name string, args ...string) (int, error)
	}

	// Compiler invokes GCC.
	Compiler struct {
		// Path is the compiler executable, normally "gcc".
		Path string
		// Runner executes processes. Nil means os/exec.
		Runner Runner
	}
)

// NewCompiler returns a Compiler for the given executable path.
func NewCompiler(path string) *Compiler {
	if path == "" {
		path = "gcc"
	}
	return &Compiler{Path: path}
}

func (c *Compiler) runner() Runner {
	if c.Runner != nil {
		return c.Runner
	}
	return execRunner{}
}

// Flags renders the compiler arguments for spec, excluding the compiler path.
func (c *Compiler) Flags(spec CompileSpec) []string {
	args := []string{fmt.Sprintf("-O%d", spec.OptLevel)}
	args = append(args, spec.ArchFlags...)
	switch spec.PGO {
	case PGOGenerate:
		args = append(args, "-fprofile-generate")
	case PGOUse:
		args = append(args, "-fprofile-use", "-Wno-coverage-mismatch")
	}
	args = append(args, spec.ExtraFlags...)
	args = append(args, "-o", spec.Output, spec.Source)
	return args
}

// Compile runs the compiler for spec. A non-zero compiler exit is returned
// as an error carrying the compiler's diagnostics.
func (c *Compiler) Compile(ctx context.Context, spec CompileSpec) (*Result, error) {
	var buf bytes.Buffer
	start := time.Now()
	code, err := c.runner().Run(ctx, spec.WorkDir, &buf, c.Path, c.Flags(spec)...)
	res := &Result{ExitCode: code, Output: buf.String(), Duration: time.Since(start)}
	if err != nil {
		return res, fmt.Errorf("failed to invoke %s: %w", c.Path, err)
	}
	if code != 0 {
		return res, fmt.Errorf("%s exited with status %d: %s", c.Path, code, firstLine(res.Output))
	}
	return res, nil
}

// Run executes a benchmark binary per spec. A non-zero exit is returned as
// an error; the captured output is still available in the Result.
func (c *Compiler) Run(ctx context.Context, spec RunSpec) (*Result, error) {
	var out io.Writer = io.Discard
	var buf bytes.Buffer
	if !spec.DiscardOutput {
		out = &buf
	}
	start := time.Now()
	code, err := c.runner().Run(ctx, spec.WorkDir, out, spec.Binary, spec.Args...)
	res := &Result{ExitCode: code, Output: buf.String(), Duration: time.Since(start)}
	if err != nil {
		return res, fmt.Errorf("failed to run %s: %w", spec.Binary, err)
	}
	if code != 0 {
		return res, fmt.Errorf("%s exited with status %d", spec.Binary, code)
	}
	return res, nil
}

// execRunner is the production Runner backed by os/exec.
type execRunner struct{}

func (execRunner) Run(ctx context.Context, workDir string, output io.Writer, name string, args ...string) (int, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = workDir
	cmd.Stdout = output
	cmd.Stderr = output
	if err := cmd.Run(); err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return exitErr.ExitCode(), nil
		}
		return 1, err
	}
	return 0, nil
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
