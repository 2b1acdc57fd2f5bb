// SPDX-License-Identifier: MPL-2.0

// Package config handles ngcc-jest configuration using Viper with CUE as the file format.
//
// The first file found is loaded: the --config path, ngcc-jest.cue in the
// working directory, then config.cue in the user config directory
// (~/.config/ngcc-jest on Linux, ~/Library/Application Support/ngcc-jest on
// macOS, %APPDATA%\ngcc-jest on Windows). Missing files mean defaults.
// NGCC_JEST_<SECTION>_<KEY> environment variables override file values.
//
// Files are validated against the embedded CUE schema (config_schema.cue).
package config
