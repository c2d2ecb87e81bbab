// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the contractpack CLI.
//
// The root command wires configuration, logging and the manifest, check,
// build, install and config subcommands. Commands write their results to
// the App's stdout and diagnostics to its stderr so tests can drive them
// without touching the process streams.
package cmd
