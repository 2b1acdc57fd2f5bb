// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"

	"github.com/ngccjest/ngccjest/internal/config"
	"github.com/ngccjest/ngccjest/internal/gate"
	"github.com/ngccjest/ngccjest/internal/logging"
	"github.com/ngccjest/ngccjest/internal/ngcc"
	"github.com/ngccjest/ngccjest/internal/runtime"
	"github.com/ngccjest/ngccjest/pkg/types"
)

type (
	// App wires CLI services and shared dependencies. It is the composition
	// root for the CLI layer; every Cobra handler receives an App and
	// delegates through its service interfaces.
	App struct {
		Config     ConfigProvider
		Processors ProcessorFactory
		stdin      io.Reader
		stdout     io.Writer
		stderr     io.Writer
		workDir    string
		flags      *rootFlags
	}

	// Dependencies defines the injection points for building an App. Nil
	// fields are replaced with production defaults by NewApp.
	Dependencies struct {
		Config     ConfigProvider
		Processors ProcessorFactory
		Stdin      io.Reader
		Stdout     io.Writer
		Stderr     io.Writer
		// WorkDir replaces the process working directory when set.
		WorkDir string
	}

	// ConfigProvider loads configuration using explicit options.
	ConfigProvider interface {
		Load(ctx context.Context, opts config.LoadOptions) (*config.Config, error)
	}

	// Processor performs one ngcc step.
	Processor interface {
		Run(ctx context.Context, req ngcc.Request) (ngcc.Outcome, error)
	}

	// ProcessorFactory builds a Processor for a loaded configuration.
	ProcessorFactory interface {
		NewProcessor(cfg *config.Config, logger *log.Logger) (Processor, error)
	}

	// rootFlags holds the persistent flags shared by every command.
	rootFlags struct {
		configPath string
		verbose    bool
		runtime    string
	}

	// defaultProcessorFactory selects a runtime from the registry and wires
	// the App streams into the processor.
	defaultProcessorFactory struct {
		registry *runtime.Registry
		stdin    io.Reader
		stdout   io.Writer
		stderr   io.Writer
	}
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) (*App, error) {
	if deps.Stdin == nil {
		deps.Stdin = os.Stdin
	}
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	if deps.Processors == nil {
		deps.Processors = &defaultProcessorFactory{
			registry: runtime.NewDefaultRegistry(),
			stdin:    deps.Stdin,
			stdout:   deps.Stdout,
			stderr:   deps.Stderr,
		}
	}
	if deps.WorkDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("get working directory: %w", err)
		}
		deps.WorkDir = wd
	}

	return &App{
		Config:     deps.Config,
		Processors: deps.Processors,
		stdin:      deps.Stdin,
		stdout:     deps.Stdout,
		stderr:     deps.Stderr,
		workDir:    deps.WorkDir,
		flags:      &rootFlags{},
	}, nil
}

// loadConfig loads configuration for the working directory and applies the
// persistent flag overrides.
func (a *App) loadConfig(ctx context.Context) (*config.Config, error) {
	cfg, err := a.Config.Load(ctx, config.LoadOptions{
		ConfigFilePath: a.flags.configPath,
		WorkDir:        a.workDir,
	})
	if err != nil {
		return nil, err
	}
	if a.flags.verbose {
		cfg.UI.Verbose = true
	}
	if a.flags.runtime != "" {
		mode := config.RuntimeMode(a.flags.runtime)
		if valid, errs := mode.IsValid(); !valid {
			return nil, errs[0]
		}
		cfg.Runtime = mode
	}
	return cfg, nil
}

// verbose reports whether verbose output was requested by flag, since it
// must be known before configuration loads.
func (a *App) verbose() bool {
	return a.flags.verbose
}

// newLogger builds the diagnostics logger for cfg.
func (a *App) newLogger(cfg *config.Config) *log.Logger {
	return logging.New(a.stderr, logging.Options{
		Level:   cfg.Log.Level.String(),
		Verbose: cfg.UI.Verbose,
	})
}

// newProcessor loads configuration and builds a Processor.
func (a *App) newProcessor(ctx context.Context) (Processor, *config.Config, error) {
	cfg, err := a.loadConfig(ctx)
	if err != nil {
		return nil, nil, err
	}
	proc, err := a.Processors.NewProcessor(cfg, a.newLogger(cfg))
	if err != nil {
		return nil, nil, err
	}
	return proc, cfg, nil
}

// request builds a processor request rooted at the App working directory.
func (a *App) request(args []string, dryRun bool) ngcc.Request {
	return ngcc.Request{
		WorkDir: types.FilesystemPath(a.workDir),
		Args:    args,
		DryRun:  dryRun,
	}
}

// NewProcessor implements ProcessorFactory.
func (f *defaultProcessorFactory) NewProcessor(cfg *config.Config, logger *log.Logger) (Processor, error) {
	rt, err := f.registry.Get(runtime.RuntimeType(cfg.Runtime))
	if err != nil {
		return nil, err
	}
	if !rt.Available() {
		return nil, fmt.Errorf("runtime %q is not available on this system", rt.Name())
	}
	return ngcc.New(processorConfig(cfg), rt,
		ngcc.WithIO(f.stdin, f.stdout, f.stderr),
		ngcc.WithLogger(logger),
	), nil
}

// processorConfig maps the file configuration onto the processor settings.
func processorConfig(cfg *config.Config) ngcc.Config {
	return ngcc.Config{
		DirName: cfg.Dependency.DirName,
		Gate: gate.Options{
			Package:   cfg.Dependency.Package,
			SkipFlags: cfg.Gate.SkipFlags,
		},
		SkipQuietly: cfg.Gate.SkipQuietly,
		NodePath:    cfg.Tool.NodePath,
		Tool: ngcc.Options{
			Script:     cfg.Tool.Script,
			Properties: cfg.Tool.Properties,
			FirstOnly:  cfg.Tool.FirstOnly,
			Async:      cfg.Tool.Async,
		},
	}
}
