// SPDX-License-Identifier: MPL-2.0

// Package logging builds the charmbracelet/log logger used for ngcc-jest
// diagnostics. User-facing output does not go through it.
package logging

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
)

// Prefix is prepended to every log line.
const Prefix = "ngcc-jest"

// Options configures New.
type Options struct {
	// Level is one of debug, info, warn or error. Empty means info.
	Level string
	// Verbose forces the debug level.
	Verbose bool
}

// ParseLevel converts a configured level name to a log.Level.
func ParseLevel(level string) (log.Level, error) {
	if level == "" {
		return log.InfoLevel, nil
	}
	lvl, err := log.ParseLevel(strings.ToLower(level))
	if err != nil {
		return log.InfoLevel, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return lvl, nil
}

// New creates a logger writing to w. An unknown level falls back to info
// and is reported through the returned logger.
func New(w io.Writer, opts Options) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		Prefix: Prefix,
	})

	lvl, err := ParseLevel(opts.Level)
	if opts.Verbose {
		lvl = log.DebugLevel
	}
	logger.SetLevel(lvl)
	if err != nil {
		logger.Warn("falling back to info level", "err", err)
	}
	return logger
}
