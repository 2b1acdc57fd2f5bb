// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"time"

	"github.com/ngccjest/ngccjest/pkg/types"
)

// waitDelay bounds how long Wait blocks on inherited pipes after the child
// was killed by context cancellation.
const waitDelay = 5 * time.Second

// NativeRuntime spawns commands directly on the host.
type NativeRuntime struct{}

// NewNativeRuntime creates a new native runtime.
func NewNativeRuntime() *NativeRuntime {
	return &NativeRuntime{}
}

// Name returns the runtime name.
func (r *NativeRuntime) Name() string {
	return string(RuntimeTypeNative)
}

// Available returns true: os/exec works everywhere we build.
func (r *NativeRuntime) Available() bool {
	return true
}

// Execute starts the command and waits for it. The child is always reaped
// before returning, including when the context is cancelled.
func (r *NativeRuntime) Execute(ctx *ExecutionContext) *Result {
	if ctx.Command.Executable == "" {
		return NewErrorResult(types.ExitFailure, ErrEmptyCommand)
	}

	cmd := exec.CommandContext(ctx.context(), ctx.Command.Executable, ctx.Command.Args...)
	cmd.Dir = string(ctx.WorkDir)
	cmd.Env = ctx.environ()
	cmd.Stdin, cmd.Stdout, cmd.Stderr = ctx.IO.Stdin, ctx.IO.Stdout, ctx.IO.Stderr
	cmd.WaitDelay = waitDelay

	err := cmd.Run()
	if err == nil {
		return NewExitCodeResult(types.ExitSuccess)
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code := exitErr.ExitCode()
		if code < 0 {
			// Terminated by a signal.
			return NewErrorResult(types.ExitFailure, fmt.Errorf("%s: %w", ctx.Command.Executable, err))
		}
		return NewExitCodeResult(types.ExitCode(code))
	}

	var execErr *exec.Error
	if errors.As(err, &execErr) || errors.Is(err, fs.ErrNotExist) {
		return NewErrorResult(types.ExitCommandNotFound, fmt.Errorf("failed to start %s: %w", ctx.Command.Executable, err))
	}
	return NewErrorResult(types.ExitFailure, fmt.Errorf("failed to run %s: %w", ctx.Command.Executable, err))
}
