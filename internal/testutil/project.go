// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/ngccjest/ngccjest/pkg/platform"
)

type (
	// Project is an on-disk fixture shaped like an Angular workspace.
	Project struct {
		// Root is the project directory (parent of NodeModules).
		Root string
		// NodeModules is Root/node_modules.
		NodeModules string
		// CorePath is NodeModules/@angular/core.
		CorePath string
		// ScriptPath is the ngcc entry point inside @angular/compiler-cli.
		ScriptPath string
	}

	// ProjectOptions selects which parts of the fixture are created.
	ProjectOptions struct {
		// WithoutCore leaves @angular/core out.
		WithoutCore bool
		// WithoutScript leaves the ngcc entry point out.
		WithoutScript bool
	}

	// StubNode is a fake node executable that records its arguments.
	StubNode struct {
		// Path is the executable.
		Path string
		// ArgsFile receives one argument per line on every run.
		ArgsFile string
	}
)

// NewProject creates an Angular-like project under a fresh temp directory.
func NewProject(t testing.TB, opts ProjectOptions) Project {
	t.Helper()

	root := t.TempDir()
	// macOS temp dirs live behind a /var -> /private/var symlink.
	if resolved, err := filepath.EvalSymlinks(root); err == nil {
		root = resolved
	}

	p := Project{
		Root:        root,
		NodeModules: filepath.Join(root, "node_modules"),
		CorePath:    filepath.Join(root, "node_modules", "@angular", "core"),
		ScriptPath:  filepath.Join(root, "node_modules", "@angular", "compiler-cli", "ngcc", "main-ngcc.js"),
	}

	MustMkdirAll(t, p.NodeModules)
	MustWriteFile(t, filepath.Join(root, "package.json"), `{"name":"fixture"}`, 0o644)
	if !opts.WithoutCore {
		MustWriteFile(t, filepath.Join(p.CorePath, "package.json"), `{"name":"@angular/core"}`, 0o644)
	}
	if !opts.WithoutScript {
		MustWriteFile(t, p.ScriptPath, "// ngcc entry point\n", 0o644)
	}
	return p
}

// Subdir creates and returns a nested directory inside the project.
func (p Project) Subdir(t testing.TB, elem ...string) string {
	t.Helper()
	dir := filepath.Join(append([]string{p.Root}, elem...)...)
	MustMkdirAll(t, dir)
	return dir
}

// SkipIfNoPOSIXShell skips tests that rely on #!/bin/sh stubs.
func SkipIfNoPOSIXShell(t testing.TB) {
	t.Helper()
	if runtime.GOOS == platform.Windows {
		t.Skip("stub executables are POSIX shell scripts")
	}
}

// WriteStubNode writes an executable named "node" into dir. It records its
// arguments, prints one line to stdout and one to stderr, and exits with
// exitCode.
func WriteStubNode(t testing.TB, dir string, exitCode int) StubNode {
	t.Helper()
	SkipIfNoPOSIXShell(t)

	stub := StubNode{
		Path:     filepath.Join(dir, "node"),
		ArgsFile: filepath.Join(dir, "node-args.txt"),
	}
	script := fmt.Sprintf(`#!/bin/sh
printf '%%s\n' "$@" > '%s'
echo "stub ngcc: processing"
echo "stub ngcc: diagnostics" >&2
exit %d
`, stub.ArgsFile, exitCode)
	MustWriteFile(t, stub.Path, script, 0o755)
	return stub
}

// Args returns the arguments recorded by the last run of the stub.
func (s StubNode) Args(t testing.TB) []string {
	t.Helper()
	data, err := os.ReadFile(s.ArgsFile)
	if err != nil {
		t.Fatalf("stub node was not run: %v", err)
	}
	return strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
}

// Ran reports whether the stub has been executed.
func (s StubNode) Ran() bool {
	_, err := os.Stat(s.ArgsFile)
	return err == nil
}
