// SPDX-License-Identifier: MPL-2.0

// Package runtime runs an external tool as a blocking child process.
//
// Two backends are provided: NativeRuntime spawns the executable directly
// through os/exec, VirtualRuntime passes the same command line through the
// embedded mvdan/sh interpreter.
package runtime

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/ngccjest/ngccjest/pkg/types"
)

const (
	// RuntimeTypeNative spawns the executable directly.
	RuntimeTypeNative RuntimeType = "native"
	// RuntimeTypeVirtual runs the command line through mvdan/sh.
	RuntimeTypeVirtual RuntimeType = "virtual"

	// filteredEnvPrefix marks ngcc-jest's own configuration variables, which
	// are not forwarded to the child.
	filteredEnvPrefix = "NGCC_JEST_"
)

var (
	// ErrUnknownRuntime is returned for runtime names that are not registered.
	ErrUnknownRuntime = errors.New("unknown runtime")
	// ErrEmptyCommand is returned when no executable is set.
	ErrEmptyCommand = errors.New("no executable to run")
)

type (
	// RuntimeType names an execution backend.
	//
	//nolint:revive // RuntimeType reads better than Type for callers
	RuntimeType string

	// Command is an executable plus its arguments, in order.
	Command struct {
		Executable string
		Args       []string
	}

	// IO wires the child's standard streams.
	IO struct {
		Stdin  io.Reader
		Stdout io.Writer
		Stderr io.Writer
	}

	// ExecutionContext contains everything needed to run one command.
	ExecutionContext struct {
		// Context cancels the child; a nil Context means context.Background.
		Context context.Context
		Command Command
		// WorkDir is the child's working directory; empty inherits ours.
		WorkDir types.FilesystemPath
		// Env replaces the inherited environment when non-nil.
		Env []string
		IO  IO
	}

	// Result contains the outcome of a run. Error is set only when the child
	// could not be started or waited for, never for a plain non-zero exit.
	Result struct {
		ExitCode types.ExitCode
		Error    error
	}

	// Runtime executes commands.
	Runtime interface {
		// Name returns the runtime name.
		Name() string
		// Available reports whether the runtime can be used on this host.
		Available() bool
		// Execute runs the command and blocks until it exits.
		Execute(ctx *ExecutionContext) *Result
	}

	// Registry holds the runtimes selectable by name.
	Registry struct {
		runtimes map[RuntimeType]Runtime
	}

	// UnknownRuntimeError is returned by Registry.Get for unregistered names.
	UnknownRuntimeError struct {
		Value RuntimeType
		Known []RuntimeType
	}
)

// String returns the command line with arguments separated by spaces.
func (c Command) String() string {
	return strings.Join(append([]string{c.Executable}, c.Args...), " ")
}

// Success reports whether the run completed with status 0 and no error.
func (r *Result) Success() bool {
	return r.ExitCode.IsSuccess() && r.Error == nil
}

// NewErrorResult creates a Result for a run that failed before or while
// waiting for the child.
func NewErrorResult(code types.ExitCode, err error) *Result {
	return &Result{ExitCode: code, Error: err}
}

// NewExitCodeResult creates a Result for a child that exited on its own.
func NewExitCodeResult(code types.ExitCode) *Result {
	return &Result{ExitCode: code}
}

func (ctx *ExecutionContext) context() context.Context {
	if ctx.Context == nil {
		return context.Background()
	}
	return ctx.Context
}

func (ctx *ExecutionContext) environ() []string {
	if ctx.Env != nil {
		return ctx.Env
	}
	return FilterEnv(os.Environ())
}

func (ctx *ExecutionContext) stdio() (io.Reader, io.Writer, io.Writer) {
	stdin, stdout, stderr := ctx.IO.Stdin, ctx.IO.Stdout, ctx.IO.Stderr
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}
	return stdin, stdout, stderr
}

// FilterEnv drops NGCC_JEST_* variables from environ.
func FilterEnv(environ []string) []string {
	result := make([]string, 0, len(environ))
	for _, e := range environ {
		name, _, _ := strings.Cut(e, "=")
		if strings.HasPrefix(strings.ToUpper(name), filteredEnvPrefix) {
			continue
		}
		result = append(result, e)
	}
	return result
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{runtimes: make(map[RuntimeType]Runtime)}
}

// NewDefaultRegistry creates a registry with the native and virtual runtimes.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(RuntimeTypeNative, NewNativeRuntime())
	r.Register(RuntimeTypeVirtual, NewVirtualRuntime())
	return r
}

// Register adds or replaces a runtime.
func (r *Registry) Register(typ RuntimeType, rt Runtime) {
	r.runtimes[typ] = rt
}

// Get returns the runtime registered under typ. An empty typ selects native.
func (r *Registry) Get(typ RuntimeType) (Runtime, error) {
	if typ == "" {
		typ = RuntimeTypeNative
	}
	rt, ok := r.runtimes[typ]
	if !ok {
		return nil, &UnknownRuntimeError{Value: typ, Known: r.Types()}
	}
	return rt, nil
}

// Types returns the registered runtime names in sorted order.
func (r *Registry) Types() []RuntimeType {
	out := make([]RuntimeType, 0, len(r.runtimes))
	for typ := range r.runtimes {
		out = append(out, typ)
	}
	slices.Sort(out)
	return out
}

// Error implements the error interface.
func (e *UnknownRuntimeError) Error() string {
	known := make([]string, len(e.Known))
	for i, k := range e.Known {
		known[i] = string(k)
	}
	return fmt.Sprintf("runtime %q is not registered (available: %s)", e.Value, strings.Join(known, ", "))
}

// Unwrap returns ErrUnknownRuntime for errors.Is.
func (e *UnknownRuntimeError) Unwrap() error { return ErrUnknownRuntime }
