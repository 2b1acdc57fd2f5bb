// SPDX-License-Identifier: MPL-2.0

// Package gate decides whether ngcc should run for one jest invocation.
//
// The decision combines two independent checks into one condition: no
// introspection flag appears in the jest arguments, and the framework
// package is installed under the dependency root. Either failing closes the
// gate, and both causes surface as the same GateUnsatisfiedError.
package gate

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/ngccjest/ngccjest/pkg/fspath"
	"github.com/ngccjest/ngccjest/pkg/types"
)

// DefaultPackage is the package whose presence enables ngcc.
const DefaultPackage = "@angular/core"

// ErrGateUnsatisfied is the sentinel wrapped by GateUnsatisfiedError.
var ErrGateUnsatisfied = errors.New("gate unsatisfied")

// DefaultSkipFlags returns jest flags that only ask for metadata, help,
// cache clearing, test listing or config inspection.
func DefaultSkipFlags() []string {
	return []string{"--clearCache", "--help", "--init", "--listTests", "--showConfig"}
}

type (
	// Options configures a decision. Zero values fall back to defaults.
	Options struct {
		// Package is the slash separated package path, e.g. "@angular/core".
		Package string
		// SkipFlags are matched exactly against every invocation argument.
		SkipFlags []string
	}

	// Decision is the outcome of Decide.
	Decision struct {
		// Package is the package the decision looked for.
		Package string
		// PackagePath is <dependency root>/<namespace>/<package>.
		PackagePath types.FilesystemPath
		// PackagePresent reports whether PackagePath exists.
		PackagePresent bool
		// SkipFlag is the first argument that matched a skip flag, or "".
		SkipFlag string
	}

	// GateUnsatisfiedError is returned by Decision.Err when the gate is closed.
	// The message is the same whichever check failed.
	GateUnsatisfiedError struct {
		Package     string
		PackagePath types.FilesystemPath
		SkipFlag    string
	}
)

// Decide computes the gate for args against depRoot. args may be empty.
func Decide(args []string, depRoot types.FilesystemPath, opts Options) Decision {
	pkg := opts.Package
	if pkg == "" {
		pkg = DefaultPackage
	}
	skipFlags := opts.SkipFlags
	if skipFlags == nil {
		skipFlags = DefaultSkipFlags()
	}

	d := Decision{
		Package:     pkg,
		PackagePath: fspath.JoinStr(depRoot, strings.Split(pkg, "/")...),
	}
	d.PackagePresent = fspath.Exists(d.PackagePath)
	for _, arg := range args {
		if slices.Contains(skipFlags, arg) {
			d.SkipFlag = arg
			break
		}
	}
	return d
}

// Runnable reports whether ngcc should be invoked.
func (d Decision) Runnable() bool {
	return d.SkipFlag == "" && d.PackagePresent
}

// Skipped reports whether the gate is closed only because of a skip flag.
func (d Decision) Skipped() bool {
	return d.SkipFlag != "" && d.PackagePresent
}

// Err returns nil for a runnable decision and a GateUnsatisfiedError otherwise.
func (d Decision) Err() error {
	if d.Runnable() {
		return nil
	}
	return &GateUnsatisfiedError{Package: d.Package, PackagePath: d.PackagePath, SkipFlag: d.SkipFlag}
}

// Error implements the error interface.
func (e *GateUnsatisfiedError) Error() string {
	return fmt.Sprintf("cannot locate the '%s' directory, resolved as %s. Please make sure you are running 'ngcc-jest' from root level of your project", e.Package, e.PackagePath)
}

// Unwrap returns ErrGateUnsatisfied for errors.Is.
func (e *GateUnsatisfiedError) Unwrap() error { return ErrGateUnsatisfied }
