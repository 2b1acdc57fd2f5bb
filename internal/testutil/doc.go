// SPDX-License-Identifier: MPL-2.0

// Package testutil holds shared test helpers: fail-fast filesystem and
// environment setup, Angular project fixtures, and a stub node executable.
package testutil
