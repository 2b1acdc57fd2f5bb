// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ngccjest/ngccjest/internal/locate"
	"github.com/ngccjest/ngccjest/internal/watch"
)

func newWatchCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "watch [-- jest args...]",
		Short: "Run ngcc, then re-run it whenever package manifests change",
		Long: `Run ngcc once, then watch the project root for changes to
package.json and lockfiles (config watch.patterns) and run it again after
each debounced batch. Failures are reported and watching continues.
Press Ctrl+C to stop.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd.Context(), app, args)
		},
	}
}

func runWatch(ctx context.Context, app *App, args []string) error {
	proc, cfg, err := app.newProcessor(ctx)
	if err != nil {
		return app.fail(err, "")
	}
	scheme := cfg.UI.ColorScheme.String()

	debounce, err := cfg.Watch.DebounceDuration()
	if err != nil {
		return app.fail(err, scheme)
	}

	out, err := proc.Run(ctx, app.request(args, false))
	if err != nil {
		// Without a dependency root there is no project to watch.
		if errors.Is(err, locate.ErrDependencyRootNotFound) {
			return app.fail(err, scheme)
		}
		renderError(app.stderr, err, app.verbose(), scheme)
	}

	patterns := cfg.Watch.Patterns
	if len(patterns) == 0 {
		patterns = watch.DefaultPatterns()
	}

	root := locate.ProjectRoot(out.DependencyRoot)
	w, err := watch.New(watch.Config{
		Root:     root.String(),
		Patterns: patterns,
		Debounce: debounce,
		Logger:   app.newLogger(cfg),
		OnChange: func(ctx context.Context, changed []string) error {
			fmt.Fprintf(app.stderr, "%s %s changed, re-running ngcc\n", skipMark, strings.Join(changed, ", "))
			if _, err := proc.Run(ctx, app.request(args, false)); err != nil {
				renderError(app.stderr, err, app.verbose(), scheme)
			}
			return nil
		},
	})
	if err != nil {
		return app.fail(err, scheme)
	}

	fmt.Fprintf(app.stderr, "%s watching %s for %s\n", checkMark, KeyStyle.Render(w.Root()), strings.Join(patterns, ", "))
	if err := w.Run(ctx); err != nil {
		return app.fail(err, scheme)
	}
	return nil
}
