// SPDX-License-Identifier: MPL-2.0

// Package platform holds OS name constants and the file name portability
// rules applied to packaged contract files.
package platform
