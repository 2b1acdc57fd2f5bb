// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/fang"

	"github.com/ngccjest/ngccjest/internal/gate"
	"github.com/ngccjest/ngccjest/internal/issue"
	"github.com/ngccjest/ngccjest/internal/locate"
	"github.com/ngccjest/ngccjest/internal/ngcc"
	"github.com/ngccjest/ngccjest/pkg/types"
)

// issueFor maps an error to its catalog entry, or 0 when there is none.
// Causes are checked before ErrToolInvocationFailed, which wraps them.
func issueFor(err error) issue.Id {
	var ae *issue.ActionableError
	switch {
	case errors.As(err, &ae) && ae.IssueID != 0:
		return ae.IssueID
	case errors.Is(err, locate.ErrDependencyRootNotFound):
		return issue.DependencyRootNotFoundId
	case errors.Is(err, gate.ErrGateUnsatisfied):
		return issue.GateUnsatisfiedId
	case errors.Is(err, ngcc.ErrNodeNotFound):
		return issue.NodeNotFoundId
	case errors.Is(err, ngcc.ErrToolScriptNotFound):
		return issue.ToolScriptNotFoundId
	case errors.Is(err, ngcc.ErrToolInvocationFailed):
		return issue.ToolInvocationFailedId
	default:
		return 0
	}
}

// exitCodeFor returns the status ngcc-jest exits with for err. A tool that
// ran and failed passes its own status through.
func exitCodeFor(err error) types.ExitCode {
	var toolErr *ngcc.ToolInvocationFailedError
	if errors.As(err, &toolErr) && toolErr.ExitCode > types.ExitSuccess {
		return toolErr.ExitCode
	}
	return types.ExitFailure
}

// renderError writes err to w. Verbose mode adds the error chain and the
// matching catalog page.
func renderError(w io.Writer, err error, verbose bool, colorScheme string) {
	msg := err.Error()
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		msg = ae.Format(verbose)
	}
	fmt.Fprintf(w, "%s %s\n", ErrorStyle.Render("Error:"), msg)

	if !verbose {
		return
	}
	id := issueFor(err)
	if id == 0 {
		return
	}
	entry := issue.Get(id)
	if entry == nil {
		return
	}
	rendered, renderErr := entry.Render(glamourStyle(colorScheme))
	if renderErr != nil {
		fmt.Fprintf(w, "%s failed to render help: %v\n", WarningStyle.Render("Warning:"), renderErr)
		return
	}
	fmt.Fprint(w, rendered)
}

// fail renders err and wraps it in an ExitError.
func (a *App) fail(err error, colorScheme string) error {
	renderError(a.stderr, err, a.verbose(), colorScheme)
	return &ExitError{Code: exitCodeFor(err), Err: err}
}

// handleError is the fang error handler. Errors already rendered by a
// command are not printed again.
func handleError(w io.Writer, styles fang.Styles, err error) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return
	}
	fang.DefaultErrorHandler(w, styles, err)
}

func glamourStyle(colorScheme string) string {
	switch colorScheme {
	case "dark", "light":
		return colorScheme
	default:
		return "auto"
	}
}
