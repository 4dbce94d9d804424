// SPDX-License-Identifier: MPL-2.0

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	if cfg.Compiler != "gcc" {
		t.Errorf("Compiler = %q, want gcc", cfg.Compiler)
	}
	if cfg.Source == "" || cfg.SweepTool == "" || cfg.LogDir == "" || cfg.ResultsDir == "" {
		t.Error("defaults should populate every path field")
	}
	if cfg.PGO.Workload != "small" {
		t.Errorf("PGO.Workload = %q, want small", cfg.PGO.Workload)
	}
	if cfg.PGO.OptLevel != 2 {
		t.Errorf("PGO.OptLevel = %d, want 2", cfg.PGO.OptLevel)
	}
	if cfg.Dashboard.Addr != ":8080" {
		t.Errorf("Dashboard.Addr = %q, want :8080", cfg.Dashboard.Addr)
	}
}

func TestConfigDir_Override(t *testing.T) {
	t.Cleanup(Reset)

	SetConfigDirOverride("/custom/config/dir")
	dir, err := ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir() error: %v", err)
	}
	if dir != "/custom/config/dir" {
		t.Errorf("ConfigDir() = %q, want override", dir)
	}
}

func TestLoad_DefaultsWhenNoFile(t *testing.T) {
	t.Cleanup(Reset)
	SetConfigDirOverride(t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Compiler != "gcc" {
		t.Errorf("Compiler = %q, want default", cfg.Compiler)
	}
}

func TestLoad_ExplicitFile(t *testing.T) {
	t.Cleanup(Reset)

	path := filepath.Join(t.TempDir(), "config.cue")
	content := `
compiler:   "gcc-13"
sweep_tool: "./scripts/benchmark_all.sh"

pgo: {
	workload:  "medium"
	opt_level: 3
}
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Compiler != "gcc-13" {
		t.Errorf("Compiler = %q, want gcc-13", cfg.Compiler)
	}
	if cfg.PGO.Workload != "medium" {
		t.Errorf("PGO.Workload = %q, want medium", cfg.PGO.Workload)
	}
	if cfg.PGO.OptLevel != 3 {
		t.Errorf("PGO.OptLevel = %d, want 3", cfg.PGO.OptLevel)
	}
	// Untouched fields keep their defaults.
	if cfg.Source != DefaultConfig().Source {
		t.Errorf("Source = %q, want default", cfg.Source)
	}
}

func TestLoad_ExplicitFileMissing(t *testing.T) {
	t.Parallel()

	if _, err := Load(filepath.Join(t.TempDir(), "nope.cue")); err == nil {
		t.Error("Load() should fail for a missing explicit file")
	}
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	t.Cleanup(Reset)

	tests := []struct {
		name    string
		content string
	}{
		{"bad workload", `pgo: workload: "gigantic"` + "\n"},
		{"bad opt level", "pgo: opt_level: 9\n"},
		{"empty compiler", `compiler: ""` + "\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.cue")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); err == nil {
				t.Error("Load() should reject the config")
			}
		})
	}
}

func TestWriteDefault(t *testing.T) {
	t.Cleanup(Reset)
	SetConfigDirOverride(t.TempDir())

	path, err := WriteDefault()
	if err != nil {
		t.Fatalf("WriteDefault() error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "sweep_tool") {
		t.Error("generated config should mention sweep_tool")
	}

	// The generated file must load back cleanly.
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() of generated config failed: %v", err)
	}
	if cfg.Compiler != DefaultConfig().Compiler {
		t.Errorf("Compiler = %q, want default", cfg.Compiler)
	}

	// A second init must refuse to overwrite.
	if _, err := WriteDefault(); err == nil {
		t.Error("WriteDefault() should refuse to overwrite an existing file")
	}
}
