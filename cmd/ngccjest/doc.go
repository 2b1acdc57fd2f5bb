// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the ngcc-jest CLI commands.
//
// The command tree is built around an App that owns the configuration
// provider, the processor factory and the output streams, so every command
// can be exercised in tests without touching the process environment.
package cmd
