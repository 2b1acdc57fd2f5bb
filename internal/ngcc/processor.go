// SPDX-License-Identifier: MPL-2.0

package ngcc

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/charmbracelet/log"

	"github.com/ngccjest/ngccjest/internal/gate"
	"github.com/ngccjest/ngccjest/internal/locate"
	"github.com/ngccjest/ngccjest/internal/runtime"
	"github.com/ngccjest/ngccjest/pkg/types"
)

// RunningMessage is the single line written to stdout before ngcc starts.
const RunningMessage = "ngcc-jest-processor: running ngcc"

type (
	// Config is the processor configuration, usually derived from the
	// ngcc-jest config file.
	Config struct {
		// DirName is the dependency directory searched for, "node_modules" when empty.
		DirName string
		// Gate selects the package and skip flags.
		Gate gate.Options
		// SkipQuietly turns a skip flag into a successful no-op instead of
		// an error. A missing package is still an error.
		SkipQuietly bool
		// NodePath overrides the PATH lookup of node.
		NodePath string
		// Tool shapes the ngcc command line.
		Tool Options
	}

	// Request describes one invocation.
	Request struct {
		// WorkDir is where the search for the dependency root starts. Empty
		// means the current directory.
		WorkDir types.FilesystemPath
		// Args are the jest arguments checked against the skip flags.
		Args []string
		// DryRun stops after the command has been built.
		DryRun bool
	}

	// Outcome reports what Run did, including on error.
	Outcome struct {
		DependencyRoot types.FilesystemPath
		Decision       gate.Decision
		Command        runtime.Command
		// Skipped is true when a skip flag ended the run quietly.
		Skipped bool
		// Executed is true when the child was started.
		Executed bool
		ExitCode types.ExitCode
	}

	// Processor runs ngcc for jest invocations.
	Processor struct {
		cfg      Config
		runtime  runtime.Runtime
		stdin    io.Reader
		stdout   io.Writer
		stderr   io.Writer
		env      []string
		logger   *log.Logger
		lookPath func(string) (string, error)
	}

	// Option configures a Processor.
	Option func(*Processor)
)

// WithIO sets the streams. The child inherits stdin and writes both of its
// output streams to stderr.
func WithIO(stdin io.Reader, stdout, stderr io.Writer) Option {
	return func(p *Processor) {
		p.stdin = stdin
		p.stdout = stdout
		p.stderr = stderr
	}
}

// WithEnv replaces the environment passed to the child.
func WithEnv(env []string) Option {
	return func(p *Processor) { p.env = env }
}

// WithLogger sets the diagnostics logger.
func WithLogger(logger *log.Logger) Option {
	return func(p *Processor) { p.logger = logger }
}

// WithLookPath replaces exec.LookPath for node discovery.
func WithLookPath(lookPath func(string) (string, error)) Option {
	return func(p *Processor) { p.lookPath = lookPath }
}

// New creates a Processor that executes through rt.
func New(cfg Config, rt runtime.Runtime, opts ...Option) *Processor {
	p := &Processor{
		cfg:      cfg,
		runtime:  rt,
		stdin:    os.Stdin,
		stdout:   os.Stdout,
		stderr:   os.Stderr,
		logger:   log.New(io.Discard),
		lookPath: exec.LookPath,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run performs one ngcc step. It blocks until the child exits; cancelling
// ctx kills it.
func (p *Processor) Run(ctx context.Context, req Request) (Outcome, error) {
	var out Outcome

	workDir := req.WorkDir
	if workDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return out, fmt.Errorf("get working directory: %w", err)
		}
		workDir = types.FilesystemPath(wd)
	}

	depRoot, err := locate.FindDependencyRoot(workDir, p.cfg.DirName)
	if err != nil {
		return out, err
	}
	out.DependencyRoot = depRoot
	p.logger.Debug("found dependency root", "path", depRoot)

	out.Decision = gate.Decide(req.Args, depRoot, p.cfg.Gate)
	if out.Decision.Skipped() && p.cfg.SkipQuietly {
		p.logger.Info("skipping ngcc", "flag", out.Decision.SkipFlag)
		out.Skipped = true
		return out, nil
	}
	if err := out.Decision.Err(); err != nil {
		p.logger.Debug("gate closed", "package", out.Decision.PackagePath, "present", out.Decision.PackagePresent, "flag", out.Decision.SkipFlag)
		return out, err
	}

	out.Command, err = p.command(depRoot)
	if err != nil {
		out.ExitCode = types.ExitFailure
		return out, &ToolInvocationFailedError{ExitCode: types.ExitFailure, Cause: err}
	}
	p.logger.Debug("built ngcc command", "runtime", p.runtime.Name(), "command", out.Command.String())
	if req.DryRun {
		return out, nil
	}

	if _, err := fmt.Fprintln(p.stdout, RunningMessage); err != nil {
		return out, fmt.Errorf("write status line: %w", err)
	}

	result := p.runtime.Execute(&runtime.ExecutionContext{
		Context: ctx,
		Command: out.Command,
		WorkDir: req.WorkDir,
		Env:     p.env,
		IO:      runtime.IO{Stdin: p.stdin, Stdout: p.stderr, Stderr: p.stderr},
	})
	out.Executed = true
	out.ExitCode = result.ExitCode
	if result.Success() {
		return out, nil
	}
	p.logger.Debug("ngcc failed", "exit_code", result.ExitCode, "error", result.Error)
	return out, &ToolInvocationFailedError{ExitCode: result.ExitCode, Cause: result.Error}
}

func (p *Processor) command(depRoot types.FilesystemPath) (runtime.Command, error) {
	node, err := resolveNode(p.cfg.NodePath, p.lookPath)
	if err != nil {
		return runtime.Command{}, err
	}
	return BuildCommand(depRoot, node, p.cfg.Tool)
}
