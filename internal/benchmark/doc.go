// SPDX-License-Identifier: MPL-2.0

// Package benchmark holds benchmarks for the packaging hot paths, used to
// generate the PGO profile:
//   - directory collection over the host and in-memory file systems
//   - manifest encoding in every output format
//   - archive build and install
//
// To generate a profile, run:
//
//	go test ./internal/benchmark -run '^$' -bench . -cpuprofile default.pgo
package benchmark
