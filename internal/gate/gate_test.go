// SPDX-License-Identifier: MPL-2.0

package gate

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ngccjest/ngccjest/pkg/types"
)

func depRoot(t *testing.T, withCore bool) types.FilesystemPath {
	t.Helper()
	root := filepath.Join(t.TempDir(), "node_modules")
	dir := root
	if withCore {
		dir = filepath.Join(root, "@angular", "core")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	return types.FilesystemPath(root)
}

func TestDecide(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		args         []string
		withCore     bool
		wantRunnable bool
		wantSkip     string
	}{
		{name: "no args with package", args: nil, withCore: true, wantRunnable: true},
		{name: "regular run", args: []string{"jest", "--ci", "--coverage"}, withCore: true, wantRunnable: true},
		{name: "package missing", args: []string{"jest"}, withCore: false, wantRunnable: false},
		{name: "clear cache", args: []string{"jest", "--clearCache"}, withCore: true, wantSkip: "--clearCache"},
		{name: "help", args: []string{"--help"}, withCore: true, wantSkip: "--help"},
		{name: "init", args: []string{"--init"}, withCore: true, wantSkip: "--init"},
		{name: "list tests", args: []string{"--listTests"}, withCore: true, wantSkip: "--listTests"},
		{name: "show config", args: []string{"--showConfig"}, withCore: true, wantSkip: "--showConfig"},
		{name: "skip flag and missing package", args: []string{"--help"}, withCore: false, wantSkip: "--help"},
		{name: "prefix is not a match", args: []string{"--helpful", "--showConfig=true"}, withCore: true, wantRunnable: true},
		{name: "first match reported", args: []string{"--init", "--help"}, withCore: true, wantSkip: "--init"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			root := depRoot(t, tt.withCore)
			d := Decide(tt.args, root, Options{})

			if d.Runnable() != tt.wantRunnable {
				t.Errorf("Runnable() = %v, want %v", d.Runnable(), tt.wantRunnable)
			}
			if d.SkipFlag != tt.wantSkip {
				t.Errorf("SkipFlag = %q, want %q", d.SkipFlag, tt.wantSkip)
			}
			if d.PackagePresent != tt.withCore {
				t.Errorf("PackagePresent = %v, want %v", d.PackagePresent, tt.withCore)
			}

			wantPath := types.FilesystemPath(filepath.Join(string(root), "@angular", "core"))
			if d.PackagePath != wantPath {
				t.Errorf("PackagePath = %q, want %q", d.PackagePath, wantPath)
			}

			err := d.Err()
			if tt.wantRunnable {
				if err != nil {
					t.Errorf("Err() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, ErrGateUnsatisfied) {
				t.Fatalf("Err() = %v, want ErrGateUnsatisfied", err)
			}
			// Same message whichever check failed.
			msg := err.Error()
			if !strings.Contains(msg, "resolved as "+string(wantPath)) || !strings.Contains(msg, "root level of your project") {
				t.Errorf("unexpected message: %s", msg)
			}
		})
	}
}

func TestDecision_Skipped(t *testing.T) {
	t.Parallel()

	withCore := depRoot(t, true)
	if !Decide([]string{"--listTests"}, withCore, Options{}).Skipped() {
		t.Error("skip flag with installed package should report Skipped")
	}
	if Decide(nil, withCore, Options{}).Skipped() {
		t.Error("runnable decision should not report Skipped")
	}

	withoutCore := depRoot(t, false)
	if Decide([]string{"--listTests"}, withoutCore, Options{}).Skipped() {
		t.Error("missing package must not be treated as a quiet skip")
	}
}

func TestDecide_CustomOptions(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "@scope", "pkg"), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}

	d := Decide([]string{"--help", "--dry"}, types.FilesystemPath(root), Options{
		Package:   "@scope/pkg",
		SkipFlags: []string{"--dry"},
	})
	if d.SkipFlag != "--dry" {
		t.Errorf("SkipFlag = %q, want --dry", d.SkipFlag)
	}

	d = Decide([]string{"--help"}, types.FilesystemPath(root), Options{
		Package:   "@scope/pkg",
		SkipFlags: []string{},
	})
	if !d.Runnable() {
		t.Error("an explicit empty skip list should never close the gate on flags")
	}
}
