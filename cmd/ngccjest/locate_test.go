// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/ngccjest/ngccjest/internal/config"
	"github.com/ngccjest/ngccjest/internal/gate"
	"github.com/ngccjest/ngccjest/internal/locate"
	"github.com/ngccjest/ngccjest/internal/ngcc"
	"github.com/ngccjest/ngccjest/internal/testutil"
	"github.com/ngccjest/ngccjest/pkg/types"
)

func locateConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Tool.NodePath = testutil.WriteStubNode(t, t.TempDir(), 0).Path
	return cfg
}

func TestRunLocate(t *testing.T) {
	t.Parallel()

	t.Run("runnable project", func(t *testing.T) {
		t.Parallel()

		project := testutil.NewProject(t, testutil.ProjectOptions{})
		cfg := locateConfig(t)
		var buf bytes.Buffer

		err := runLocate(&buf, types.FilesystemPath(project.Subdir(t, "src", "app")), nil, cfg)
		if err != nil {
			t.Fatalf("runLocate() error = %v", err)
		}
		out := buf.String()
		for _, want := range []string{project.NodeModules, project.CorePath, project.ScriptPath, cfg.Tool.NodePath, "ngcc would run"} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q:\n%s", want, out)
			}
		}
	})

	t.Run("no dependency root", func(t *testing.T) {
		t.Parallel()

		cfg := locateConfig(t)
		cfg.Dependency.DirName = "ngcc_jest_no_such_dir"
		var buf bytes.Buffer

		err := runLocate(&buf, types.FilesystemPath(t.TempDir()), nil, cfg)
		if !errors.Is(err, locate.ErrDependencyRootNotFound) {
			t.Fatalf("runLocate() error = %v, want ErrDependencyRootNotFound", err)
		}
		if !strings.Contains(buf.String(), "(not found)") {
			t.Errorf("output = %q", buf.String())
		}
	})

	t.Run("missing package", func(t *testing.T) {
		t.Parallel()

		project := testutil.NewProject(t, testutil.ProjectOptions{WithoutCore: true})
		var buf bytes.Buffer

		err := runLocate(&buf, types.FilesystemPath(project.Root), nil, locateConfig(t))
		if !errors.Is(err, gate.ErrGateUnsatisfied) {
			t.Fatalf("runLocate() error = %v, want ErrGateUnsatisfied", err)
		}
		out := buf.String()
		if !strings.Contains(out, "(missing)") || !strings.Contains(out, "ngcc would not run") {
			t.Errorf("output = %q", out)
		}
	})

	t.Run("skip flag", func(t *testing.T) {
		t.Parallel()

		project := testutil.NewProject(t, testutil.ProjectOptions{})
		var buf bytes.Buffer

		err := runLocate(&buf, types.FilesystemPath(project.Root), []string{"--showConfig"}, locateConfig(t))
		if !errors.Is(err, gate.ErrGateUnsatisfied) {
			t.Fatalf("runLocate() error = %v, want ErrGateUnsatisfied", err)
		}
		if !strings.Contains(buf.String(), "--showConfig") {
			t.Errorf("output = %q", buf.String())
		}
	})

	t.Run("skip flag with quiet skip", func(t *testing.T) {
		t.Parallel()

		project := testutil.NewProject(t, testutil.ProjectOptions{})
		cfg := locateConfig(t)
		cfg.Gate.SkipQuietly = true
		var buf bytes.Buffer

		if err := runLocate(&buf, types.FilesystemPath(project.Root), []string{"--help"}, cfg); err != nil {
			t.Fatalf("runLocate() error = %v", err)
		}
		if !strings.Contains(buf.String(), "ngcc would be skipped") {
			t.Errorf("output = %q", buf.String())
		}
	})

	t.Run("missing script", func(t *testing.T) {
		t.Parallel()

		project := testutil.NewProject(t, testutil.ProjectOptions{WithoutScript: true})
		var buf bytes.Buffer

		err := runLocate(&buf, types.FilesystemPath(project.Root), nil, locateConfig(t))
		if !errors.Is(err, ngcc.ErrToolScriptNotFound) {
			t.Fatalf("runLocate() error = %v, want ErrToolScriptNotFound", err)
		}
		if !errors.Is(err, ngcc.ErrToolInvocationFailed) {
			t.Errorf("runLocate() error = %v, want ErrToolInvocationFailed", err)
		}
	})

	t.Run("missing node", func(t *testing.T) {
		t.Parallel()

		project := testutil.NewProject(t, testutil.ProjectOptions{})
		cfg := config.DefaultConfig()
		cfg.Tool.NodePath = project.Root + "/no-such-node"
		var buf bytes.Buffer

		err := runLocate(&buf, types.FilesystemPath(project.Root), nil, cfg)
		if !errors.Is(err, ngcc.ErrNodeNotFound) {
			t.Fatalf("runLocate() error = %v, want ErrNodeNotFound", err)
		}
	})
}

func TestLocateCommandExitCode(t *testing.T) {
	t.Parallel()

	ta := newTestApp(t, t.TempDir())
	ta.cfg.cfg.Dependency.DirName = "ngcc_jest_no_such_dir"

	err := ta.execute(t, "locate")
	requireExitCode(t, err, types.ExitFailure)
	if !strings.Contains(ta.stderr.String(), "cannot locate the 'ngcc_jest_no_such_dir' directory") {
		t.Errorf("stderr = %q", ta.stderr.String())
	}
}
