// SPDX-License-Identifier: MPL-2.0

package locate

import (
	"errors"
	"fmt"

	"github.com/ngccjest/ngccjest/pkg/fspath"
	"github.com/ngccjest/ngccjest/pkg/types"
)

// DefaultDirName is the install directory of npm, yarn and pnpm.
const DefaultDirName = "node_modules"

// ErrDependencyRootNotFound is the sentinel wrapped by DependencyRootNotFoundError.
var ErrDependencyRootNotFound = errors.New("dependency root not found")

// DependencyRootNotFoundError is returned when no ancestor of Start holds DirName.
type DependencyRootNotFoundError struct {
	DirName string
	Start   types.FilesystemPath
}

// Error implements the error interface.
func (e *DependencyRootNotFoundError) Error() string {
	return fmt.Sprintf("cannot locate the '%s' directory. Please make sure you are running jest from root level of your project", e.DirName)
}

// Unwrap returns ErrDependencyRootNotFound for errors.Is.
func (e *DependencyRootNotFoundError) Unwrap() error { return ErrDependencyRootNotFound }

// FindDependencyRoot returns <ancestor>/<dirName> for the first ancestor of
// start (start included) that contains a dirName directory. The filesystem
// root itself is not searched. An empty dirName means DefaultDirName.
func FindDependencyRoot(start types.FilesystemPath, dirName string) (types.FilesystemPath, error) {
	if dirName == "" {
		dirName = DefaultDirName
	}
	if err := start.Validate(); err != nil {
		return "", err
	}

	current, err := fspath.Abs(start)
	if err != nil {
		return "", err
	}
	current = fspath.Clean(current)

	for {
		parent, moved := fspath.Parent(current)
		if !moved {
			return "", &DependencyRootNotFoundError{DirName: dirName, Start: start}
		}

		candidate := fspath.JoinStr(current, dirName)
		if fspath.IsDir(candidate) {
			return candidate, nil
		}
		current = parent
	}
}

// ProjectRoot returns the directory holding the dependency root.
func ProjectRoot(depRoot types.FilesystemPath) types.FilesystemPath {
	return fspath.Dir(depRoot)
}
