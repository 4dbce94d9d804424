// SPDX-License-Identifier: MPL-2.0

package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/spf13/viper"

	"github.com/geremyCohen/arm-benchmarking-sub001/internal/cueutil"
)

const (
	// AppName is the application name, used for the config directory.
	AppName = "benchctl"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "config"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "cue"
)

//go:embed config_schema.cue
var configSchema []byte

type (
	// PGOConfig holds the PGO verification probe settings.
	PGOConfig struct {
		// Workload is the size preset passed to the benchmark binary.
		Workload string `mapstructure:"workload"`
		// OptLevel is the optimization level for both probe builds.
		OptLevel int `mapstructure:"opt_level"`
		// WorkspaceRoot is where probe scratch workspaces are created.
		WorkspaceRoot string `mapstructure:"workspace_root"`
	}

	// DashboardConfig holds the dashboard server settings.
	DashboardConfig struct {
		// Addr is the listen address, host:port.
		Addr string `mapstructure:"addr"`
		// StaticDir is the directory of static dashboard assets.
		StaticDir string `mapstructure:"static_dir"`
	}

	// Config is the benchctl application configuration.
	Config struct {
		// Compiler is the compiler executable used for builds.
		Compiler string `mapstructure:"compiler"`
		// Source is the benchmark C source file.
		Source string `mapstructure:"source"`
		// SweepTool is the external sweep tool invocation.
		SweepTool string `mapstructure:"sweep_tool"`
		// LogDir is where sweep logs and summaries are written.
		LogDir string `mapstructure:"log_dir"`
		// ResultsDir is where the dashboard reads benchmark results from.
		ResultsDir string `mapstructure:"results_dir"`
		// PGO holds probe settings.
		PGO PGOConfig `mapstructure:"pgo"`
		// Dashboard holds dashboard server settings.
		Dashboard DashboardConfig `mapstructure:"dashboard"`
	}
)

// DefaultConfig returns the built-in defaults, matching the layout of the
// benchmarking project the tool grew up in.
func DefaultConfig() *Config {
	return &Config{
		Compiler:   "gcc",
		Source:     "src/optimized_matrix.c",
		SweepTool:  "./benchmark_all.sh",
		LogDir:     "logs",
		ResultsDir: "results",
		PGO: PGOConfig{
			Workload:      "small",
			OptLevel:      2,
			WorkspaceRoot: os.TempDir(),
		},
		Dashboard: DashboardConfig{
			Addr:      ":8080",
			StaticDir: "dashboard",
		},
	}
}

// ConfigDir returns the benchctl configuration directory using
// platform-specific conventions: Windows uses %APPDATA%, macOS uses
// ~/Library/Application Support, and Linux/others use $XDG_CONFIG_HOME
// (defaulting to ~/.config).
//
//nolint:revive // ConfigDir is more descriptive than Dir for external callers
func ConfigDir() (string, error) {
	// Allow tests to override the config directory
	if configDirOverride != "" {
		return configDirOverride, nil
	}

	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, "Library", "Application Support")
	default: // Linux and others
		configDir = os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			configDir = filepath.Join(home, ".config")
		}
	}

	return filepath.Join(configDir, AppName), nil
}

// ConfigFilePath returns the canonical config file path.
func ConfigFilePath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ConfigFileName+"."+ConfigFileExt), nil
}

// Load resolves and loads the configuration. When explicitPath is non-empty
// that file is used exclusively and must exist. Otherwise the platform config
// directory is tried, then a config.cue in the current directory, then
// defaults.
func Load(explicitPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	switch {
	case explicitPath != "":
		if !fileExists(explicitPath) {
			return nil, fmt.Errorf("config file not found: %s", explicitPath)
		}
		if err := loadCUEIntoViper(v, explicitPath); err != nil {
			return nil, err
		}
	default:
		path, err := ConfigFilePath()
		if err != nil {
			return nil, err
		}
		switch {
		case fileExists(path):
			if err := loadCUEIntoViper(v, path); err != nil {
				return nil, err
			}
		case fileExists(ConfigFileName + "." + ConfigFileExt):
			if err := loadCUEIntoViper(v, ConfigFileName+"."+ConfigFileExt); err != nil {
				return nil, err
			}
		}
		// No config file found: defaults apply.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	defaults := DefaultConfig()
	v.SetDefault("compiler", defaults.Compiler)
	v.SetDefault("source", defaults.Source)
	v.SetDefault("sweep_tool", defaults.SweepTool)
	v.SetDefault("log_dir", defaults.LogDir)
	v.SetDefault("results_dir", defaults.ResultsDir)
	v.SetDefault("pgo.workload", defaults.PGO.Workload)
	v.SetDefault("pgo.opt_level", defaults.PGO.OptLevel)
	v.SetDefault("pgo.workspace_root", defaults.PGO.WorkspaceRoot)
	v.SetDefault("dashboard.addr", defaults.Dashboard.Addr)
	v.SetDefault("dashboard.static_dir", defaults.Dashboard.StaticDir)
}

// loadCUEIntoViper parses a CUE file, validates it against the #Config
// schema, and merges its contents into Viper. The schema is validated
// non-concrete since every config field is optional.
func loadCUEIntoViper(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}

	ctx := cuecontext.New()
	schemaValue := ctx.CompileBytes(configSchema)
	if schemaValue.Err() != nil {
		return fmt.Errorf("internal error: failed to compile config schema: %w", schemaValue.Err())
	}
	schemaRoot := schemaValue.LookupPath(cue.ParsePath("#Config"))
	if schemaRoot.Err() != nil {
		return fmt.Errorf("internal error: #Config definition not found: %w", schemaRoot.Err())
	}

	docValue := ctx.CompileBytes(data, cue.Filename(path))
	if docValue.Err() != nil {
		return cueutil.FormatError(docValue.Err(), path)
	}

	unified := schemaRoot.Unify(docValue)
	if err := unified.Validate(); err != nil {
		return cueutil.FormatError(err, path)
	}

	var values map[string]any
	if err := unified.Decode(&values); err != nil {
		return cueutil.FormatError(err, path)
	}
	return v.MergeConfigMap(values)
}

// WriteDefault creates the canonical config file populated with defaults.
// It refuses to overwrite an existing file.
func WriteDefault() (string, error) {
	path, err := ConfigFilePath()
	if err != nil {
		return "", err
	}
	if fileExists(path) {
		return path, fmt.Errorf("config file already exists: %s", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	defaults := DefaultConfig()
	content := fmt.Sprintf(`// benchctl configuration. Every field is optional.

compiler:    %q
source:      %q
sweep_tool:  %q
log_dir:     %q
results_dir: %q

pgo: {
	workload:       %q
	opt_level:      %d
	workspace_root: %q
}

dashboard: {
	addr:       %q
	static_dir: %q
}
`,
		defaults.Compiler, defaults.Source, defaults.SweepTool,
		defaults.LogDir, defaults.ResultsDir,
		defaults.PGO.Workload, defaults.PGO.OptLevel, defaults.PGO.WorkspaceRoot,
		defaults.Dashboard.Addr, defaults.Dashboard.StaticDir)

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("failed to write config: %w", err)
	}
	return path, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
