// SPDX-License-Identifier: MPL-2.0

// Package logging builds the charmbracelet/log logger shared by the CLI and
// the packaging libraries.
package logging

import (
	"io"

	"github.com/charmbracelet/log"
)

// Prefix is printed before every log line.
const Prefix = "contractpack"

// New returns a logger writing to w. Verbose lowers the level to Debug so
// skipped directories, symlinks and archive entries are reported.
func New(w io.Writer, verbose bool) *log.Logger {
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}
	return log.NewWithOptions(w, log.Options{
		Prefix:          Prefix,
		Level:           level,
		ReportTimestamp: false,
	})
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return log.New(io.Discard)
}
