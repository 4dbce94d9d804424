// SPDX-License-Identifier: MPL-2.0

// Package config handles application configuration using Viper with CUE as
// the file format.
//
// Configuration is loaded from ~/.config/benchctl/config.cue (or XDG
// equivalent on Linux, ~/Library/Application Support/benchctl/config.cue on
// macOS, %APPDATA%\benchctl\config.cue on Windows), then from a config.cue in
// the current directory, then from built-in defaults. Values are validated
// against a CUE schema (config_schema.cue) before they reach Viper.
package config
