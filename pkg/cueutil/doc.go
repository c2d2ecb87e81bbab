// SPDX-License-Identifier: MPL-2.0

// Package cueutil holds the CUE parsing steps shared by the configuration
// loader and the manifest decoder:
//
//  1. Compile the embedded schema
//  2. Compile user data and unify it with a schema definition
//  3. Validate and decode into a Go value
//
// Errors carry the file name and a JSON-style path to the offending field:
//
//	result, err := cueutil.ParseAndDecode[manifest.Manifest](
//	    schemaBytes, data, "#Manifest",
//	    cueutil.WithFilename("contractpack.cue"),
//	)
package cueutil
