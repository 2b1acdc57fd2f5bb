// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// NewRootCommand builds the command tree for app.
func NewRootCommand(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "ngcc-jest",
		Short: "Run Angular's ngcc before jest",
		Long: TitleStyle.Render("ngcc-jest") + SubtitleStyle.Render(" - Run Angular's ngcc before jest") + `

ngcc-jest finds the project's node_modules directory, checks that
@angular/core is installed and that jest was not started only to print
help, list tests or inspect its config, and then runs ngcc with the
arguments jest presets expect.

` + SubtitleStyle.Render("Examples:") + `
  ngcc-jest run -- --ci          Run ngcc for a jest invocation
  ngcc-jest run --dry-run        Show the node command without running it
  ngcc-jest locate               Show what ngcc-jest resolves from here
  ngcc-jest watch                Re-run ngcc when lockfiles change
  ngcc-jest config show          Show the current configuration`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&app.flags.configPath, "config", "", "config file (default is ./ngcc-jest.cue, then $HOME/.config/ngcc-jest/config.cue)")
	rootCmd.PersistentFlags().BoolVarP(&app.flags.verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&app.flags.runtime, "runtime", "", "execution runtime: native or virtual (overrides config)")

	rootCmd.AddCommand(newRunCommand(app))
	rootCmd.AddCommand(newLocateCommand(app))
	rootCmd.AddCommand(newWatchCommand(app))
	rootCmd.AddCommand(newConfigCommand(app))

	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute builds the production App and runs the CLI. It is called by
// main.main and exits the process with the resolved status.
func Execute() {
	app, err := NewApp(Dependencies{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", ErrorStyle.Render("Error:"), err)
		os.Exit(1)
	}

	if err := fang.Execute(
		context.Background(),
		NewRootCommand(app),
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
		fang.WithErrorHandler(handleError),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(int(exitErr.Code))
		}
		os.Exit(1)
	}
}
