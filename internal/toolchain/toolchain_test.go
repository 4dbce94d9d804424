// SPDX-License-Identifier: MPL-2.0

package toolchain

import (
	"context"
	"fmt"
	"io"
	"reflect"
	"strings"
	"testing"
)

// stubRunner records invocations and plays back canned results.
type stubRunner struct {
	calls    [][]string
	exitCode int
	output   string
	err      error
}

func (r *stubRunner) Run(ctx context.Context, workDir string, output io.Writer, name string, args ...string) (int, error) {
	r.calls = append(r.calls, append([]string{name}, args...))
	if r.output != "" {
		fmt.Fprint(output, r.output)
	}
	return r.exitCode, r.err
}

func TestCompiler_Flags(t *testing.T) {
	t.Parallel()

	c := NewCompiler("gcc")

	tests := []struct {
		name string
		spec CompileSpec
		want []string
	}{
		{
			name: "plain optimization build",
			spec: CompileSpec{Source: "matrix.c", Output: "matrix", OptLevel: 3},
			want: []string{"-O3", "-o", "matrix", "matrix.c"},
		},
		{
			name: "arch and extra flags keep their order",
			spec: CompileSpec{
				Source: "matrix.c", Output: "matrix", OptLevel: 2,
				ArchFlags:  []string{"-march=native"},
				ExtraFlags: []string{"-funroll-loops"},
			},
			want: []string{"-O2", "-march=native", "-funroll-loops", "-o", "matrix", "matrix.c"},
		},
		{
			name: "profile generation",
			spec: CompileSpec{Source: "matrix.c", Output: "matrix", OptLevel: 2, PGO: PGOGenerate},
			want: []string{"-O2", "-fprofile-generate", "-o", "matrix", "matrix.c"},
		},
		{
			name: "profile use suppresses coverage mismatch",
			spec: CompileSpec{Source: "matrix.c", Output: "matrix", OptLevel: 2, PGO: PGOUse},
			want: []string{"-O2", "-fprofile-use", "-Wno-coverage-mismatch", "-o", "matrix", "matrix.c"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := c.Flags(tt.spec); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Flags() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCompiler_Compile(t *testing.T) {
	t.Parallel()

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		runner := &stubRunner{}
		c := &Compiler{Path: "gcc", Runner: runner}
		res, err := c.Compile(context.Background(), CompileSpec{Source: "m.c", Output: "m", OptLevel: 2})
		if err != nil {
			t.Fatalf("Compile() error: %v", err)
		}
		if res.ExitCode != 0 {
			t.Errorf("ExitCode = %d, want 0", res.ExitCode)
		}
		if len(runner.calls) != 1 || runner.calls[0][0] != "gcc" {
			t.Errorf("unexpected invocations: %v", runner.calls)
		}
	})

	t.Run("compiler diagnostics surface in the error", func(t *testing.T) {
		t.Parallel()
		runner := &stubRunner{exitCode: 1, output: "m.c:3: error: expected ';'\nmore detail\n"}
		c := &Compiler{Path: "gcc", Runner: runner}
		res, err := c.Compile(context.Background(), CompileSpec{Source: "m.c", Output: "m"})
		if err == nil {
			t.Fatal("Compile() should fail on non-zero exit")
		}
		if !strings.Contains(err.Error(), "expected ';'") {
			t.Errorf("error %q should carry the first diagnostic line", err)
		}
		if res.ExitCode != 1 {
			t.Errorf("ExitCode = %d, want 1", res.ExitCode)
		}
	})
}

func TestCompiler_Run(t *testing.T) {
	t.Parallel()

	t.Run("captures output", func(t *testing.T) {
		t.Parallel()
		runner := &stubRunner{output: "Performance: 2.59 GFLOPS\n"}
		c := &Compiler{Path: "gcc", Runner: runner}
		res, err := c.Run(context.Background(), RunSpec{Binary: "./matrix", Args: []string{"small"}})
		if err != nil {
			t.Fatalf("Run() error: %v", err)
		}
		if !strings.Contains(res.Output, "GFLOPS") {
			t.Errorf("Output = %q, want captured benchmark output", res.Output)
		}
	})

	t.Run("discards output when asked", func(t *testing.T) {
		t.Parallel()
		runner := &stubRunner{output: "noise\n"}
		c := &Compiler{Path: "gcc", Runner: runner}
		res, err := c.Run(context.Background(), RunSpec{Binary: "./matrix", Args: []string{"small"}, DiscardOutput: true})
		if err != nil {
			t.Fatalf("Run() error: %v", err)
		}
		if res.Output != "" {
			t.Errorf("Output = %q, want empty", res.Output)
		}
	})

	t.Run("non-zero exit is an error", func(t *testing.T) {
		t.Parallel()
		runner := &stubRunner{exitCode: 139}
		c := &Compiler{Path: "gcc", Runner: runner}
		res, err := c.Run(context.Background(), RunSpec{Binary: "./matrix"})
		if err == nil {
			t.Fatal("Run() should fail on non-zero exit")
		}
		if res.ExitCode != 139 {
			t.Errorf("ExitCode = %d, want 139", res.ExitCode)
		}
	})
}

func TestNewCompiler_DefaultsToGcc(t *testing.T) {
	t.Parallel()

	if c := NewCompiler(""); c.Path != "gcc" {
		t.Errorf("Path = %q, want gcc", c.Path)
	}
}
