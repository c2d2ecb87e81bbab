// SPDX-License-Identifier: MPL-2.0

// Package testutil builds fixture trees of contract files on disk or in an
// afero memory file system, with helpers that fail the test on error.
package testutil
