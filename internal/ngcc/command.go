// SPDX-License-Identifier: MPL-2.0

package ngcc

import (
	"os/exec"
	"strconv"
	"strings"

	"github.com/ngccjest/ngccjest/internal/runtime"
	"github.com/ngccjest/ngccjest/pkg/fspath"
	"github.com/ngccjest/ngccjest/pkg/types"
)

const (
	// DefaultScript is the ngcc entry point relative to the dependency root.
	DefaultScript = "@angular/compiler-cli/ngcc/main-ngcc.js"
	// DefaultNode is looked up on PATH when no node path is configured.
	DefaultNode = "node"
)

// Options controls the ngcc command line.
type Options struct {
	// Script is the slash separated entry point relative to the dependency root.
	Script string
	// Properties are the package.json entry points ngcc processes. A nil
	// slice means es2015 and main; an empty one omits --properties.
	Properties []string
	// FirstOnly is passed as --first-only.
	FirstOnly bool
	// Async adds --async.
	Async bool
}

// DefaultProperties returns the entry points processed when none are configured.
func DefaultProperties() []string {
	return []string{"es2015", "main"}
}

// DefaultOptions returns the command line used by jest presets.
func DefaultOptions() Options {
	return Options{
		Script:     DefaultScript,
		Properties: DefaultProperties(),
		FirstOnly:  false,
		Async:      true,
	}
}

// ResolveScript returns the absolute entry point path under depRoot.
func ResolveScript(depRoot types.FilesystemPath, script string) (types.FilesystemPath, error) {
	if script == "" {
		script = DefaultScript
	}
	path := fspath.JoinStr(depRoot, strings.Split(script, "/")...)
	if !fspath.IsFile(path) {
		return "", &ToolScriptNotFoundError{Path: path}
	}
	return path, nil
}

// ResolveNode finds the node executable. An empty nodePath searches PATH.
func ResolveNode(nodePath string) (string, error) {
	return resolveNode(nodePath, exec.LookPath)
}

func resolveNode(nodePath string, lookPath func(string) (string, error)) (string, error) {
	name := nodePath
	if name == "" {
		name = DefaultNode
	}
	resolved, err := lookPath(name)
	if err != nil {
		return "", &NodeNotFoundError{Path: name, Cause: err}
	}
	return resolved, nil
}

// BuildCommand returns the node invocation for the ngcc entry point under
// depRoot. nodePath must already be resolved.
func BuildCommand(depRoot types.FilesystemPath, nodePath string, opts Options) (runtime.Command, error) {
	script, err := ResolveScript(depRoot, opts.Script)
	if err != nil {
		return runtime.Command{}, err
	}

	properties := opts.Properties
	if properties == nil {
		properties = DefaultProperties()
	}

	args := []string{script.String(), "--source", depRoot.String()}
	if len(properties) > 0 {
		args = append(args, "--properties")
		args = append(args, properties...)
	}
	args = append(args, "--first-only", strconv.FormatBool(opts.FirstOnly))
	if opts.Async {
		args = append(args, "--async")
	}
	return runtime.Command{Executable: nodePath, Args: args}, nil
}
