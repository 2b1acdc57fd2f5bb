// SPDX-License-Identifier: MPL-2.0

// Package ngcc runs Angular's compatibility compiler ahead of a jest run.
//
// A Processor locates the dependency root from the working directory,
// evaluates the gate, builds the node command line for the ngcc entry point
// and executes it through a runtime.Runtime. The child's stdout and stderr
// are both forwarded to the processor's stderr so that the only line written
// to stdout is RunningMessage.
package ngcc
