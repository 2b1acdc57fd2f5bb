// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestActionableError_Error(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  *ActionableError
		want string
	}{
		{
			name: "operation only",
			err:  &ActionableError{Operation: "run ngcc"},
			want: "failed to run ngcc",
		},
		{
			name: "with resource",
			err:  &ActionableError{Operation: "locate node_modules", Resource: "/repo/pkg"},
			want: "failed to locate node_modules: /repo/pkg",
		},
		{
			name: "with resource and cause",
			err: &ActionableError{
				Operation: "load configuration",
				Resource:  "ngcc-jest.cue",
				Cause:     errors.New("unexpected token"),
			},
			want: "failed to load configuration: ngcc-jest.cue: unexpected token",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestActionableError_ErrorsIs(t *testing.T) {
	t.Parallel()

	sentinel := errors.New("sentinel")
	err := NewErrorContext().WithOperation("run ngcc").Wrap(fmt.Errorf("spawn: %w", sentinel)).BuildError()
	if !errors.Is(err, sentinel) {
		t.Error("errors.Is should find the sentinel through the cause chain")
	}
}

func TestActionableError_Format(t *testing.T) {
	t.Parallel()

	root := errors.New("permission denied")
	err := &ActionableError{
		Operation:   "run ngcc",
		Suggestions: []string{"Check permissions", "Retry"},
		Cause:       fmt.Errorf("spawn node: %w", root),
	}

	short := err.Format(false)
	if !strings.Contains(short, "  • Check permissions") || !strings.Contains(short, "  • Retry") {
		t.Errorf("Format(false) missing suggestions:\n%s", short)
	}
	if strings.Contains(short, "Error chain") {
		t.Errorf("Format(false) should not include the error chain:\n%s", short)
	}

	long := err.Format(true)
	if !strings.Contains(long, "Error chain:") ||
		!strings.Contains(long, "1. spawn node: permission denied") ||
		!strings.Contains(long, "2. permission denied") {
		t.Errorf("Format(true) missing error chain:\n%s", long)
	}
}

func TestErrorContext_Build(t *testing.T) {
	t.Parallel()

	if got := NewErrorContext().WithResource("x").Build(); got != nil {
		t.Errorf("Build() without operation = %v, want nil", got)
	}
	if got := NewErrorContext().BuildError(); got != nil {
		t.Errorf("BuildError() without operation = %v, want nil", got)
	}

	ae := NewErrorContext().
		WithOperation("run ngcc").
		WithResource("/repo/node_modules").
		WithSuggestion("one").
		WithSuggestion("two").
		WithIssue(ToolInvocationFailedId).
		Build()
	if ae.Operation != "run ngcc" || ae.Resource != "/repo/node_modules" {
		t.Errorf("unexpected fields: %+v", ae)
	}
	if len(ae.Suggestions) != 2 {
		t.Errorf("Suggestions = %v, want 2 entries", ae.Suggestions)
	}
	if ae.IssueID != ToolInvocationFailedId {
		t.Errorf("IssueID = %d, want %d", ae.IssueID, ToolInvocationFailedId)
	}
}

func TestWrapWithOperation(t *testing.T) {
	t.Parallel()

	if WrapWithOperation(nil, "op") != nil {
		t.Error("WrapWithOperation(nil) should return nil")
	}
	cause := errors.New("boom")
	ae := WrapWithOperation(cause, "run ngcc")
	if !errors.Is(ae, cause) {
		t.Error("wrapped error should unwrap to cause")
	}
}
