// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ngccjest/ngccjest/internal/config"
	"github.com/ngccjest/ngccjest/internal/ngcc"
)

func newRunCommand(app *App) *cobra.Command {
	var dryRun bool

	runCmd := &cobra.Command{
		Use:   "run [flags] [-- jest args...]",
		Short: "Run ngcc for a jest invocation",
		Long: `Run ngcc for a jest invocation.

Arguments after -- are the arguments jest was started with. When one of
them only asks jest for metadata (--clearCache, --help, --init,
--listTests, --showConfig) ngcc is not run.

On success exactly one line is written to stdout; ngcc's own output goes
to stderr. When ngcc fails, ngcc-jest exits with ngcc's status.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			proc, cfg, err := app.newProcessor(cmd.Context())
			if err != nil {
				return app.fail(err, "")
			}

			out, err := proc.Run(cmd.Context(), app.request(args, dryRun))
			if err != nil {
				return app.fail(err, cfg.UI.ColorScheme.String())
			}

			switch {
			case out.Skipped:
				fmt.Fprintf(app.stderr, "%s ngcc skipped: jest was invoked with %s\n", skipMark, out.Decision.SkipFlag)
			case dryRun:
				renderDryRun(app.stdout, out, cfg)
			}
			return nil
		},
	}

	runCmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the ngcc command without running it")

	return runCmd
}

// renderDryRun prints what run would execute.
func renderDryRun(w io.Writer, out ngcc.Outcome, cfg *config.Config) {
	fmt.Fprintln(w, TitleStyle.Render("Dry Run"))
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s %s\n", KeyStyle.Render("Dependency root:"), out.DependencyRoot)
	fmt.Fprintf(w, "  %s %s\n", KeyStyle.Render("Package:"), out.Decision.PackagePath)
	fmt.Fprintf(w, "  %s %s\n", KeyStyle.Render("Runtime:"), cfg.Runtime)
	fmt.Fprintf(w, "  %s %s\n", KeyStyle.Render("Node:"), out.Command.Executable)
	fmt.Fprintln(w)
	fmt.Fprintln(w, KeyStyle.Render("  Arguments:"))
	for _, arg := range out.Command.Args {
		fmt.Fprintf(w, "    %s\n", arg)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s\n", SubtitleStyle.Render(strings.TrimSpace(out.Command.String())))
}
