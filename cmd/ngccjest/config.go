// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ngccjest/ngccjest/internal/config"
)

// newConfigCommand creates the `ngcc-jest config` command tree.
func newConfigCommand(app *App) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage ngcc-jest configuration",
		Long: `Manage ngcc-jest configuration.

The first existing file is used:
  - the --config flag
  - ./ngcc-jest.cue
  - Linux: ~/.config/ngcc-jest/config.cue
  - macOS: ~/Library/Application Support/ngcc-jest/config.cue
  - Windows: %APPDATA%\ngcc-jest\config.cue

NGCC_JEST_<SECTION>_<KEY> environment variables override file values,
e.g. NGCC_JEST_TOOL_NODE_PATH=/opt/node/bin/node.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.loadConfig(cmd.Context())
			if err != nil {
				return app.fail(err, "")
			}
			path, err := app.configPath()
			if err != nil {
				return app.fail(err, "")
			}
			showConfig(app.stdout, cfg, path)
			return nil
		},
	})

	var format string
	dumpCmd := &cobra.Command{
		Use:   "dump",
		Short: "Output the effective configuration as CUE or TOML",
		RunE: func(cmd *cobra.Command, args []string) error {
			return dumpConfig(cmd.Context(), app, format)
		},
	}
	dumpCmd.Flags().StringVar(&format, "format", "cue", "output format: cue or toml")
	cfgCmd.AddCommand(dumpCmd)

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show the configuration file in use",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := app.configPath()
			if err != nil {
				return app.fail(err, "")
			}
			if path == "" {
				userPath, err := config.UserConfigPath("")
				if err != nil {
					return app.fail(err, "")
				}
				fmt.Fprintf(app.stdout, "%s %s\n", userPath, SubtitleStyle.Render("(not created, using defaults)"))
				return nil
			}
			fmt.Fprintln(app.stdout, path)
			return nil
		},
	})

	var local bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Create a default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			target := ""
			if local {
				target = filepath.Join(app.workDir, config.ProjectConfigFile)
			}
			path, created, err := config.CreateDefaultConfig(target)
			if err != nil {
				return app.fail(err, "")
			}
			if !created {
				fmt.Fprintf(app.stdout, "%s Configuration already exists at %s\n", skipMark, path)
				return nil
			}
			fmt.Fprintf(app.stdout, "%s Created default configuration at %s\n", checkMark, path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&local, "local", false, "create ./ngcc-jest.cue instead of the user config file")
	cfgCmd.AddCommand(initCmd)

	return cfgCmd
}

// configPath returns the file the App loads configuration from, or "".
func (a *App) configPath() (string, error) {
	return config.ResolvePath(config.LoadOptions{
		ConfigFilePath: a.flags.configPath,
		WorkDir:        a.workDir,
	})
}

func dumpConfig(ctx context.Context, app *App, format string) error {
	cfg, err := app.loadConfig(ctx)
	if err != nil {
		return app.fail(err, "")
	}

	switch strings.ToLower(format) {
	case "cue":
		fmt.Fprint(app.stdout, config.GenerateCUE(cfg))
	case "toml":
		data, err := config.EncodeTOML(cfg)
		if err != nil {
			return app.fail(err, cfg.UI.ColorScheme.String())
		}
		fmt.Fprint(app.stdout, string(data))
	default:
		return app.fail(fmt.Errorf("unknown format %q (valid: cue, toml)", format), cfg.UI.ColorScheme.String())
	}
	return nil
}

func showConfig(w io.Writer, cfg *config.Config, path string) {
	fmt.Fprintln(w, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(w)

	if path != "" {
		fmt.Fprintf(w, "%s: %s\n", KeyStyle.Render("Config file"), path)
	} else {
		fmt.Fprintf(w, "%s: %s\n", KeyStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
	}

	section := func(name string, rows ...[2]string) {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "%s:\n", KeyStyle.Render(name))
		for _, row := range rows {
			fmt.Fprintf(w, "  %s: %s\n", row[0], SuccessStyle.Render(row[1]))
		}
	}
	orNone := func(s string) string {
		if s == "" {
			return "(PATH lookup)"
		}
		return s
	}

	section("dependency",
		[2]string{"dir_name", cfg.Dependency.DirName},
		[2]string{"package", cfg.Dependency.Package},
	)
	section("tool",
		[2]string{"script", cfg.Tool.Script},
		[2]string{"node_path", orNone(cfg.Tool.NodePath)},
		[2]string{"properties", strings.Join(cfg.Tool.Properties, ", ")},
		[2]string{"first_only", fmt.Sprint(cfg.Tool.FirstOnly)},
		[2]string{"async", fmt.Sprint(cfg.Tool.Async)},
	)
	section("gate",
		[2]string{"skip_flags", strings.Join(cfg.Gate.SkipFlags, ", ")},
		[2]string{"skip_quietly", fmt.Sprint(cfg.Gate.SkipQuietly)},
	)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s: %s\n", KeyStyle.Render("runtime"), SuccessStyle.Render(cfg.Runtime.String()))
	section("watch",
		[2]string{"patterns", strings.Join(cfg.Watch.Patterns, ", ")},
		[2]string{"debounce", cfg.Watch.Debounce},
	)
	section("ui",
		[2]string{"color_scheme", cfg.UI.ColorScheme.String()},
		[2]string{"verbose", fmt.Sprint(cfg.UI.Verbose)},
	)
	section("log",
		[2]string{"level", cfg.Log.Level.String()},
	)
}
