// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ngccjest/ngccjest/internal/config"
	"github.com/ngccjest/ngccjest/internal/gate"
	"github.com/ngccjest/ngccjest/internal/locate"
	"github.com/ngccjest/ngccjest/internal/ngcc"
	"github.com/ngccjest/ngccjest/pkg/types"
)

func newLocateCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "locate [-- jest args...]",
		Short: "Show the dependency root and whether ngcc would run",
		Long: `Show what ngcc-jest resolves from the current directory: the
dependency root, the gate package, the ngcc entry point and node.

Exits with status 1 when ngcc would not run.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.loadConfig(cmd.Context())
			if err != nil {
				return app.fail(err, "")
			}
			if err := runLocate(app.stdout, types.FilesystemPath(app.workDir), args, cfg); err != nil {
				return app.fail(err, cfg.UI.ColorScheme.String())
			}
			return nil
		},
	}
}

// runLocate reports each resolution step and returns the first error that
// would stop `ngcc-jest run`.
func runLocate(w io.Writer, workDir types.FilesystemPath, args []string, cfg *config.Config) error {
	fmt.Fprintln(w, TitleStyle.Render("ngcc-jest locate"))
	fmt.Fprintln(w)

	depRoot, err := locate.FindDependencyRoot(workDir, cfg.Dependency.DirName)
	if err != nil {
		fmt.Fprintf(w, "  %s %s %s\n", crossMark, KeyStyle.Render("Dependency root:"), SubtitleStyle.Render("(not found)"))
		return err
	}
	fmt.Fprintf(w, "  %s %s %s\n", checkMark, KeyStyle.Render("Dependency root:"), depRoot)
	fmt.Fprintf(w, "    %s %s\n", KeyStyle.Render("Project root:"), locate.ProjectRoot(depRoot))

	pcfg := processorConfig(cfg)
	decision := gate.Decide(args, depRoot, pcfg.Gate)
	if decision.PackagePresent {
		fmt.Fprintf(w, "  %s %s %s\n", checkMark, KeyStyle.Render("Package:"), decision.PackagePath)
	} else {
		fmt.Fprintf(w, "  %s %s %s %s\n", crossMark, KeyStyle.Render("Package:"), decision.PackagePath, SubtitleStyle.Render("(missing)"))
	}
	if decision.SkipFlag != "" {
		fmt.Fprintf(w, "  %s %s %s\n", skipMark, KeyStyle.Render("Skip flag:"), decision.SkipFlag)
	}

	quietSkip := decision.Skipped() && cfg.Gate.SkipQuietly
	var firstErr error
	if !quietSkip {
		firstErr = decision.Err()
	}

	script, scriptErr := ngcc.ResolveScript(depRoot, pcfg.Tool.Script)
	if scriptErr != nil {
		fmt.Fprintf(w, "  %s %s %s\n", crossMark, KeyStyle.Render("ngcc script:"), scriptErr)
		if firstErr == nil {
			firstErr = &ngcc.ToolInvocationFailedError{ExitCode: types.ExitFailure, Cause: scriptErr}
		}
	} else {
		fmt.Fprintf(w, "  %s %s %s\n", checkMark, KeyStyle.Render("ngcc script:"), script)
	}

	node, nodeErr := ngcc.ResolveNode(pcfg.NodePath)
	if nodeErr != nil {
		fmt.Fprintf(w, "  %s %s %s\n", crossMark, KeyStyle.Render("node:"), nodeErr)
		if firstErr == nil {
			firstErr = &ngcc.ToolInvocationFailedError{ExitCode: types.ExitFailure, Cause: nodeErr}
		}
	} else {
		fmt.Fprintf(w, "  %s %s %s\n", checkMark, KeyStyle.Render("node:"), node)
	}

	fmt.Fprintln(w)
	switch {
	case firstErr != nil:
		fmt.Fprintln(w, WarningStyle.Render("ngcc would not run"))
	case quietSkip:
		fmt.Fprintln(w, WarningStyle.Render("ngcc would be skipped"))
	default:
		fmt.Fprintln(w, SuccessStyle.Render("ngcc would run"))
	}
	return firstErr
}
