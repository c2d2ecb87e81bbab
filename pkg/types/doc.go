// SPDX-License-Identifier: MPL-2.0

// Package types defines small value types shared by the collector, the
// manifest and the CLI. It imports only the standard library.
package types
