// SPDX-License-Identifier: MPL-2.0

// Command ngcc-jest runs Angular's ngcc before jest.
package main

import cmd "github.com/ngccjest/ngccjest/cmd/ngccjest"

func main() {
	cmd.Execute()
}
