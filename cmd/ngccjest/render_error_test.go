// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/charmbracelet/fang"

	"github.com/ngccjest/ngccjest/internal/gate"
	"github.com/ngccjest/ngccjest/internal/issue"
	"github.com/ngccjest/ngccjest/internal/locate"
	"github.com/ngccjest/ngccjest/internal/ngcc"
	"github.com/ngccjest/ngccjest/pkg/types"
)

func TestIssueFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want issue.Id
	}{
		{"dependency root", &locate.DependencyRootNotFoundError{}, issue.DependencyRootNotFoundId},
		{"gate", &gate.GateUnsatisfiedError{}, issue.GateUnsatisfiedId},
		{
			"node not found",
			&ngcc.ToolInvocationFailedError{Cause: &ngcc.NodeNotFoundError{Path: "node", Cause: errors.New("x")}},
			issue.NodeNotFoundId,
		},
		{
			"script not found",
			&ngcc.ToolInvocationFailedError{Cause: &ngcc.ToolScriptNotFoundError{Path: "/x.js"}},
			issue.ToolScriptNotFoundId,
		},
		{"tool failed", &ngcc.ToolInvocationFailedError{ExitCode: 2}, issue.ToolInvocationFailedId},
		{"wrapped", fmt.Errorf("step: %w", &gate.GateUnsatisfiedError{}), issue.GateUnsatisfiedId},
		{
			"actionable",
			issue.NewErrorContext().WithOperation("load configuration").WithIssue(issue.ConfigLoadFailedId).Wrap(errors.New("x")).Build(),
			issue.ConfigLoadFailedId,
		},
		{"unknown", errors.New("other"), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := issueFor(tt.err); got != tt.want {
				t.Errorf("issueFor() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExitCodeFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want types.ExitCode
	}{
		{"tool status", &ngcc.ToolInvocationFailedError{ExitCode: 7}, 7},
		{"wrapped tool status", fmt.Errorf("x: %w", &ngcc.ToolInvocationFailedError{ExitCode: 2}), 2},
		{"tool without status", &ngcc.ToolInvocationFailedError{}, types.ExitFailure},
		{"other", errors.New("other"), types.ExitFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := exitCodeFor(tt.err); got != tt.want {
				t.Errorf("exitCodeFor() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestHandleError(t *testing.T) {
	t.Parallel()

	t.Run("exit error is not printed again", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		handleError(&buf, fang.Styles{}, &ExitError{Code: 1, Err: errors.New("rendered")})
		if buf.Len() != 0 {
			t.Errorf("output = %q, want empty", buf.String())
		}
	})

	t.Run("other errors use fang", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		handleError(&buf, fang.Styles{}, errors.New("unknown flag: --nope"))
		if !bytes.Contains(buf.Bytes(), []byte("unknown flag: --nope")) {
			t.Errorf("output = %q", buf.String())
		}
	})
}

func TestExitErrorMessage(t *testing.T) {
	t.Parallel()

	if got := (&ExitError{Code: 4}).Error(); got != "exit status 4" {
		t.Errorf("Error() = %q", got)
	}
	inner := errors.New("inner")
	err := &ExitError{Code: 1, Err: inner}
	if !errors.Is(err, inner) {
		t.Error("ExitError does not unwrap to its cause")
	}
}

func TestGlamourStyle(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]string{"dark": "dark", "light": "light", "auto": "auto", "": "auto"} {
		if got := glamourStyle(in); got != want {
			t.Errorf("glamourStyle(%q) = %q, want %q", in, got, want)
		}
	}
}
