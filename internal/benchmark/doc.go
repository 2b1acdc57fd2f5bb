// SPDX-License-Identifier: MPL-2.0

// Package benchmark holds benchmarks for PGO profile generation. They cover
// the paths every jest start goes through:
//   - CUE config decoding and schema validation
//   - dependency root discovery and the gate decision
//   - ngcc command construction
//   - native and virtual runtime spawns of a stub node
//   - the end-to-end processor run
//
// To generate a profile:
//
//	go test -run=^$ -bench=. -cpuprofile=default.pgo ./internal/benchmark
package benchmark
