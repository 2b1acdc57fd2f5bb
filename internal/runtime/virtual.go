// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ngccjest/ngccjest/pkg/types"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

// VirtualRuntime runs the command line through the mvdan/sh interpreter.
// The interpreter's default exec handler resolves the executable on PATH
// and spawns it, so no system shell is required.
type VirtualRuntime struct{}

// NewVirtualRuntime creates a new virtual runtime.
func NewVirtualRuntime() *VirtualRuntime {
	return &VirtualRuntime{}
}

// Name returns the runtime name.
func (r *VirtualRuntime) Name() string {
	return string(RuntimeTypeVirtual)
}

// Available returns true: the interpreter is built in.
func (r *VirtualRuntime) Available() bool {
	return true
}

// Script renders cmd as a single quoted shell command line.
func Script(cmd Command) (string, error) {
	words := make([]string, 0, 1+len(cmd.Args))
	for _, w := range append([]string{cmd.Executable}, cmd.Args...) {
		quoted, err := syntax.Quote(w, syntax.LangBash)
		if err != nil {
			return "", fmt.Errorf("cannot quote %q: %w", w, err)
		}
		words = append(words, quoted)
	}
	return strings.Join(words, " "), nil
}

// Execute parses and runs the command line in the interpreter.
func (r *VirtualRuntime) Execute(ctx *ExecutionContext) *Result {
	if ctx.Command.Executable == "" {
		return NewErrorResult(types.ExitFailure, ErrEmptyCommand)
	}

	script, err := Script(ctx.Command)
	if err != nil {
		return NewErrorResult(types.ExitFailure, err)
	}
	prog, err := syntax.NewParser().Parse(strings.NewReader(script), "ngcc")
	if err != nil {
		return NewErrorResult(types.ExitFailure, fmt.Errorf("failed to parse command line: %w", err))
	}

	stdin, stdout, stderr := ctx.stdio()
	opts := []interp.RunnerOption{
		interp.Env(expand.ListEnviron(ctx.environ()...)),
		interp.StdIO(stdin, stdout, stderr),
	}
	if ctx.WorkDir != "" {
		opts = append(opts, interp.Dir(string(ctx.WorkDir)))
	}

	runner, err := interp.New(opts...)
	if err != nil {
		return NewErrorResult(types.ExitFailure, fmt.Errorf("failed to create interpreter: %w", err))
	}

	err = runner.Run(ctx.context(), prog)
	if err == nil {
		return NewExitCodeResult(types.ExitSuccess)
	}
	var exitStatus interp.ExitStatus
	if errors.As(err, &exitStatus) {
		return NewExitCodeResult(types.ExitCode(exitStatus))
	}
	return NewErrorResult(types.ExitFailure, fmt.Errorf("command execution failed: %w", err))
}
