// SPDX-License-Identifier: MPL-2.0

// Package platform centralizes operating system names used in runtime.GOOS
// switches.
package platform
