// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ngccjest/ngccjest/internal/locate"
	"github.com/ngccjest/ngccjest/internal/ngcc"
	"github.com/ngccjest/ngccjest/internal/testutil"
	"github.com/ngccjest/ngccjest/pkg/types"
)

// syncBuffer is a bytes.Buffer safe for the watch goroutine and the test.
type syncBuffer struct {
	mu  sync.Mutex
	buf strings.Builder
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestWatchWithoutDependencyRootFails(t *testing.T) {
	t.Parallel()

	ta := newTestApp(t, "")
	ta.proc.err = &locate.DependencyRootNotFoundError{DirName: "node_modules", Start: "/tmp/x"}

	err := ta.execute(t, "watch")
	requireExitCode(t, err, types.ExitFailure)
	if got := ta.proc.calls(); got != 1 {
		t.Errorf("processor ran %d times, want 1", got)
	}
}

func TestWatchStopsOnCancel(t *testing.T) {
	t.Parallel()

	project := testutil.NewProject(t, testutil.ProjectOptions{})
	ta := newTestApp(t, project.Root)
	ta.proc.out = ngcc.Outcome{DependencyRoot: types.FilesystemPath(project.NodeModules)}

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	rootCmd := NewRootCommand(ta.app)
	rootCmd.SetArgs([]string{"watch"})
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		t.Fatalf("watch error = %v", err)
	}
	if !strings.Contains(ta.stderr.String(), "watching "+project.Root) {
		t.Errorf("stderr = %q", ta.stderr.String())
	}
}

func TestWatchRerunsOnManifestChange(t *testing.T) {
	t.Parallel()

	project := testutil.NewProject(t, testutil.ProjectOptions{})
	proc := &fakeProcessor{
		out: ngcc.Outcome{DependencyRoot: types.FilesystemPath(project.NodeModules)},
		err: &ngcc.ToolInvocationFailedError{ExitCode: 2},
	}
	stderr := &syncBuffer{}
	provider := &fakeConfigProvider{cfg: testConfigWithDebounce("50ms")}
	app, err := NewApp(Dependencies{
		Config:     provider,
		Processors: &fakeProcessorFactory{proc: proc},
		Stdin:      strings.NewReader(""),
		Stdout:     &syncBuffer{},
		Stderr:     stderr,
		WorkDir:    project.Root,
	})
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan error, 1)
	go func() {
		rootCmd := NewRootCommand(app)
		rootCmd.SetArgs([]string{"watch", "--", "--ci"})
		done <- rootCmd.ExecuteContext(ctx)
	}()

	waitFor(t, func() bool { return strings.Contains(stderr.String(), "watching") })
	manifest := filepath.Join(project.Root, "package.json")
	if err := os.WriteFile(manifest, []byte(`{"name":"fixture","version":"2.0.0"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool { return proc.calls() >= 2 })

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("watch error = %v", err)
	}

	out := stderr.String()
	if !strings.Contains(out, "package.json changed, re-running ngcc") {
		t.Errorf("stderr = %q", out)
	}
	// A failing run is reported and watching continues.
	if !strings.Contains(out, "ngcc failed.") {
		t.Errorf("stderr = %q", out)
	}
	proc.mu.Lock()
	defer proc.mu.Unlock()
	for _, req := range proc.reqs {
		if strings.Join(req.Args, " ") != "--ci" {
			t.Errorf("Args = %q, want --ci", req.Args)
		}
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met within 5s")
}
