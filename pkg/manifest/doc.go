// SPDX-License-Identifier: MPL-2.0

// Package manifest pairs collected contract files with static package
// metadata. The manifest is what gets printed by `contractpack manifest`
// and embedded as contractpack.toml at the top of every built archive.
//
// All paths held by a Manifest are slash-separated regardless of host OS.
package manifest
