// SPDX-License-Identifier: MPL-2.0

package cli

import (
	"os"
	"slices"
	"strings"
	"testing"
)

// scriptsByRuntime groups testdata scripts by their native_/virtual_ prefix,
// keyed by the name without the prefix.
func scriptsByRuntime(t *testing.T) (native, virtual map[string]bool) {
	t.Helper()

	entries, err := os.ReadDir("testdata")
	if err != nil {
		t.Fatalf("failed to read testdata directory: %v", err)
	}

	native = make(map[string]bool)
	virtual = make(map[string]bool)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".txtar") {
			continue
		}
		if rest, ok := strings.CutPrefix(name, "native_"); ok {
			native[rest] = true
		}
		if rest, ok := strings.CutPrefix(name, "virtual_"); ok {
			virtual[rest] = true
		}
	}
	return native, virtual
}

// TestRuntimeMirrorCoverage requires every runtime-specific script to exist
// for both the native and the virtual runtime, so node is spawned the same
// way by each.
func TestRuntimeMirrorCoverage(t *testing.T) {
	t.Parallel()

	native, virtual := scriptsByRuntime(t)
	if len(virtual) == 0 {
		t.Fatal("no virtual_*.txtar files found in tests/cli/testdata")
	}

	var missing []string
	for name := range virtual {
		if !native[name] {
			missing = append(missing, "native_"+name)
		}
	}
	for name := range native {
		if !virtual[name] {
			missing = append(missing, "virtual_"+name)
		}
	}
	slices.Sort(missing)
	for _, name := range missing {
		t.Errorf("missing runtime mirror %q", name)
	}
}
