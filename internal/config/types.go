// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/ngccjest/ngccjest/pkg/platform"
)

const (
	// RuntimeNative spawns node directly.
	RuntimeNative RuntimeMode = "native"
	// RuntimeVirtual runs the node command line through the mvdan/sh interpreter.
	RuntimeVirtual RuntimeMode = "virtual"

	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces light color scheme.
	ColorSchemeLight ColorScheme = "light"

	// LogLevelDebug logs everything.
	LogLevelDebug LogLevel = "debug"
	// LogLevelInfo logs informational messages and above.
	LogLevelInfo LogLevel = "info"
	// LogLevelWarn logs warnings and errors.
	LogLevelWarn LogLevel = "warn"
	// LogLevelError logs errors only.
	LogLevelError LogLevel = "error"

	defaultDebounce = "500ms"
)

var (
	// ErrInvalidConfigRuntimeMode is returned when a config RuntimeMode value is not recognized.
	ErrInvalidConfigRuntimeMode = errors.New("invalid runtime mode")
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidLogLevel is returned when a LogLevel value is not recognized.
	ErrInvalidLogLevel = errors.New("invalid log level")
	// ErrInvalidDebounce is returned when watch.debounce is not a positive duration.
	ErrInvalidDebounce = errors.New("invalid debounce")
	// ErrInvalidDirName is returned when dependency.dir_name is not a single
	// portable path segment.
	ErrInvalidDirName = errors.New("invalid dependency directory name")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// RuntimeMode selects the execution backend for node.
	RuntimeMode string

	// InvalidConfigRuntimeModeError is returned when a config RuntimeMode value is not recognized.
	InvalidConfigRuntimeModeError struct {
		Value RuntimeMode
	}

	// ColorScheme specifies the terminal color scheme preference.
	ColorScheme string

	// InvalidColorSchemeError is returned when a ColorScheme value is not recognized.
	InvalidColorSchemeError struct {
		Value ColorScheme
	}

	// LogLevel is the minimum level of diagnostics written to stderr.
	LogLevel string

	// InvalidLogLevelError is returned when a LogLevel value is not recognized.
	InvalidLogLevelError struct {
		Value LogLevel
	}

	// InvalidDebounceError is returned when watch.debounce cannot be parsed
	// or is not positive.
	InvalidDebounceError struct {
		Value string
		Cause error
	}

	// InvalidDirNameError is returned when dependency.dir_name cannot name
	// a directory on every platform.
	InvalidDirNameError struct {
		Value  string
		Reason string
	}

	// InvalidConfigError aggregates field errors found by Config.IsValid.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the ngcc-jest configuration.
	Config struct {
		// Dependency configures the dependency root search.
		Dependency DependencyConfig `json:"dependency" mapstructure:"dependency" toml:"dependency"`
		// Tool configures the ngcc command line.
		Tool ToolConfig `json:"tool" mapstructure:"tool" toml:"tool"`
		// Gate configures when ngcc is skipped.
		Gate GateConfig `json:"gate" mapstructure:"gate" toml:"gate"`
		// Runtime selects how node is spawned.
		Runtime RuntimeMode `json:"runtime" mapstructure:"runtime" toml:"runtime"`
		// Watch configures `ngcc-jest watch`.
		Watch WatchConfig `json:"watch" mapstructure:"watch" toml:"watch"`
		// UI configures the user interface.
		UI UIConfig `json:"ui" mapstructure:"ui" toml:"ui"`
		// Log configures diagnostics.
		Log LogConfig `json:"log" mapstructure:"log" toml:"log"`
	}

	// DependencyConfig configures where packages are looked up.
	DependencyConfig struct {
		// DirName is the directory searched for in every ancestor.
		DirName string `json:"dir_name" mapstructure:"dir_name" toml:"dir_name"`
		// Package must exist under the dependency root for ngcc to run.
		Package string `json:"package" mapstructure:"package" toml:"package"`
	}

	// ToolConfig configures the ngcc invocation.
	ToolConfig struct {
		// Script is the ngcc entry point relative to the dependency root.
		Script string `json:"script" mapstructure:"script" toml:"script"`
		// NodePath overrides the PATH lookup of node.
		NodePath string `json:"node_path" mapstructure:"node_path" toml:"node_path"`
		// Properties are passed to --properties.
		Properties []string `json:"properties" mapstructure:"properties" toml:"properties"`
		// FirstOnly is passed to --first-only.
		FirstOnly bool `json:"first_only" mapstructure:"first_only" toml:"first_only"`
		// Async adds --async.
		Async bool `json:"async" mapstructure:"async" toml:"async"`
	}

	// GateConfig configures the skip flags.
	GateConfig struct {
		// SkipFlags are jest flags that close the gate.
		SkipFlags []string `json:"skip_flags" mapstructure:"skip_flags" toml:"skip_flags"`
		// SkipQuietly makes a skip flag a successful no-op instead of an error.
		SkipQuietly bool `json:"skip_quietly" mapstructure:"skip_quietly" toml:"skip_quietly"`
	}

	// WatchConfig configures watch mode.
	WatchConfig struct {
		// Patterns are doublestar globs relative to the project root.
		Patterns []string `json:"patterns" mapstructure:"patterns" toml:"patterns"`
		// Debounce is a Go duration string such as "500ms".
		Debounce string `json:"debounce" mapstructure:"debounce" toml:"debounce"`
	}

	// UIConfig configures the user interface.
	UIConfig struct {
		// ColorScheme sets the color scheme
		ColorScheme ColorScheme `json:"color_scheme" mapstructure:"color_scheme" toml:"color_scheme"`
		// Verbose enables verbose output
		Verbose bool `json:"verbose" mapstructure:"verbose" toml:"verbose"`
	}

	// LogConfig configures the diagnostics logger.
	LogConfig struct {
		Level LogLevel `json:"level" mapstructure:"level" toml:"level"`
	}
)

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Dependency: DependencyConfig{
			DirName: "node_modules",
			Package: "@angular/core",
		},
		Tool: ToolConfig{
			Script:     "@angular/compiler-cli/ngcc/main-ngcc.js",
			NodePath:   "",
			Properties: []string{"es2015", "main"},
			FirstOnly:  false,
			Async:      true,
		},
		Gate: GateConfig{
			SkipFlags:   []string{"--clearCache", "--help", "--init", "--listTests", "--showConfig"},
			SkipQuietly: false,
		},
		Runtime: RuntimeNative,
		Watch: WatchConfig{
			Patterns: []string{"package.json", "package-lock.json", "yarn.lock", "pnpm-lock.yaml"},
			Debounce: defaultDebounce,
		},
		UI: UIConfig{
			ColorScheme: ColorSchemeAuto,
			Verbose:     false,
		},
		Log: LogConfig{
			Level: LogLevelInfo,
		},
	}
}

// DebounceDuration parses Watch.Debounce. An empty value yields the default.
func (c WatchConfig) DebounceDuration() (time.Duration, error) {
	value := c.Debounce
	if value == "" {
		value = defaultDebounce
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, &InvalidDebounceError{Value: c.Debounce, Cause: err}
	}
	if d <= 0 {
		return 0, &InvalidDebounceError{Value: c.Debounce}
	}
	return d, nil
}

// String returns the string representation of the RuntimeMode.
func (m RuntimeMode) String() string { return string(m) }

// IsValid returns whether the RuntimeMode is one of the defined modes.
// The zero value means native.
func (m RuntimeMode) IsValid() (bool, []error) {
	switch m {
	case "", RuntimeNative, RuntimeVirtual:
		return true, nil
	default:
		return false, []error{&InvalidConfigRuntimeModeError{Value: m}}
	}
}

// Error implements the error interface for InvalidConfigRuntimeModeError.
func (e *InvalidConfigRuntimeModeError) Error() string {
	return fmt.Sprintf("invalid runtime mode %q (valid: native, virtual)", e.Value)
}

// Unwrap returns ErrInvalidConfigRuntimeMode for errors.Is() compatibility.
func (e *InvalidConfigRuntimeModeError) Unwrap() error { return ErrInvalidConfigRuntimeMode }

// String returns the string representation of the ColorScheme.
func (c ColorScheme) String() string { return string(c) }

// IsValid returns whether the ColorScheme is one of the defined schemes.
func (c ColorScheme) IsValid() (bool, []error) {
	switch c {
	case "", ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return true, nil
	default:
		return false, []error{&InvalidColorSchemeError{Value: c}}
	}
}

// Error implements the error interface for InvalidColorSchemeError.
func (e *InvalidColorSchemeError) Error() string {
	return fmt.Sprintf("invalid color scheme %q (valid: auto, dark, light)", e.Value)
}

// Unwrap returns ErrInvalidColorScheme for errors.Is() compatibility.
func (e *InvalidColorSchemeError) Unwrap() error { return ErrInvalidColorScheme }

// String returns the string representation of the LogLevel.
func (l LogLevel) String() string { return string(l) }

// IsValid returns whether the LogLevel is recognized. Matching is case-insensitive.
func (l LogLevel) IsValid() (bool, []error) {
	if l == "" || slices.Contains([]LogLevel{LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError}, LogLevel(strings.ToLower(string(l)))) {
		return true, nil
	}
	return false, []error{&InvalidLogLevelError{Value: l}}
}

// Error implements the error interface for InvalidLogLevelError.
func (e *InvalidLogLevelError) Error() string {
	return fmt.Sprintf("invalid log level %q (valid: debug, info, warn, error)", e.Value)
}

// Unwrap returns ErrInvalidLogLevel for errors.Is() compatibility.
func (e *InvalidLogLevelError) Unwrap() error { return ErrInvalidLogLevel }

// Error implements the error interface for InvalidDebounceError.
func (e *InvalidDebounceError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("invalid watch debounce %q: %v", e.Value, e.Cause)
	}
	return fmt.Sprintf("invalid watch debounce %q: must be positive", e.Value)
}

// Unwrap returns ErrInvalidDebounce for errors.Is() compatibility.
func (e *InvalidDebounceError) Unwrap() error { return ErrInvalidDebounce }

// validateDirName rejects directory names that cannot be looked up as one
// path segment on every supported platform.
func validateDirName(name string) error {
	switch {
	case name == "":
		return &InvalidDirNameError{Value: name, Reason: "must not be empty"}
	case name == "." || name == "..":
		return &InvalidDirNameError{Value: name, Reason: "must not be a relative path element"}
	case strings.ContainsAny(name, `/\`):
		return &InvalidDirNameError{Value: name, Reason: "must not contain path separators"}
	case platform.IsWindowsReservedName(name):
		return &InvalidDirNameError{Value: name, Reason: "is a reserved name on Windows"}
	}
	return nil
}

// Error implements the error interface for InvalidDirNameError.
func (e *InvalidDirNameError) Error() string {
	return fmt.Sprintf("invalid dependency.dir_name %q: %s", e.Value, e.Reason)
}

// Unwrap returns ErrInvalidDirName for errors.Is() compatibility.
func (e *InvalidDirNameError) Unwrap() error { return ErrInvalidDirName }

// IsValid returns whether the Config has valid fields. CUE checks shapes
// and enums on load; this also covers values that arrive through
// environment variables.
func (c Config) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.Runtime.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.UI.ColorScheme.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.Log.Level.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if err := validateDirName(c.Dependency.DirName); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.Watch.DebounceDuration(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	msgs := make([]string, 0, len(e.FieldErrors))
	for _, err := range e.FieldErrors {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("invalid config: %s", strings.Join(msgs, "; "))
}

// Unwrap exposes ErrInvalidConfig and every field error to errors.Is/As.
func (e *InvalidConfigError) Unwrap() []error {
	return append([]error{ErrInvalidConfig}, e.FieldErrors...)
}
