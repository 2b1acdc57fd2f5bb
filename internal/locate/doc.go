// SPDX-License-Identifier: MPL-2.0

// Package locate finds the dependency install directory (node_modules) by
// walking from a start directory toward the filesystem root. The nearest
// ancestor that contains the directory wins.
package locate
