// SPDX-License-Identifier: MPL-2.0

package ngcc

import (
	"errors"
	"fmt"

	"github.com/ngccjest/ngccjest/pkg/types"
)

var (
	// ErrToolInvocationFailed is the sentinel wrapped by ToolInvocationFailedError.
	ErrToolInvocationFailed = errors.New("tool invocation failed")
	// ErrNodeNotFound is returned when no node executable can be resolved.
	ErrNodeNotFound = errors.New("node executable not found")
	// ErrToolScriptNotFound is returned when the ngcc entry point is missing.
	ErrToolScriptNotFound = errors.New("ngcc entry point not found")
)

type (
	// ToolInvocationFailedError is returned when ngcc could not be spawned or
	// exited with a non-zero status.
	ToolInvocationFailedError struct {
		// ExitCode is the child's status, or 1 when it never started.
		ExitCode types.ExitCode
		// Cause is the spawn error; nil for a plain non-zero exit.
		Cause error
	}

	// NodeNotFoundError is returned when node cannot be resolved.
	NodeNotFoundError struct {
		// Path is the configured path or the bare name looked up on PATH.
		Path  string
		Cause error
	}

	// ToolScriptNotFoundError is returned when the ngcc entry point does not exist.
	ToolScriptNotFoundError struct {
		Path types.FilesystemPath
	}
)

// Error implements the error interface.
func (e *ToolInvocationFailedError) Error() string {
	if e.Cause != nil {
		if msg := e.Cause.Error(); msg != "" {
			return msg + " ngcc failed, see above."
		}
	}
	return "ngcc failed."
}

// Unwrap exposes both ErrToolInvocationFailed and the cause.
func (e *ToolInvocationFailedError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrToolInvocationFailed}
	}
	return []error{ErrToolInvocationFailed, e.Cause}
}

// Error implements the error interface.
func (e *NodeNotFoundError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("cannot find node executable %q: %v.", e.Path, e.Cause)
	}
	return fmt.Sprintf("cannot find node executable %q.", e.Path)
}

// Unwrap returns ErrNodeNotFound for errors.Is.
func (e *NodeNotFoundError) Unwrap() error { return ErrNodeNotFound }

// Error implements the error interface.
func (e *ToolScriptNotFoundError) Error() string {
	return fmt.Sprintf("cannot resolve '%s'.", e.Path)
}

// Unwrap returns ErrToolScriptNotFound for errors.Is.
func (e *ToolScriptNotFoundError) Unwrap() error { return ErrToolScriptNotFound }
