// SPDX-License-Identifier: MPL-2.0

// Package config loads contractpack settings using Viper with CUE as the
// file format.
//
// Settings are layered, later sources overriding earlier ones:
//
//  1. built-in defaults (DefaultConfig)
//  2. config.cue in the user configuration directory (ConfigDir)
//  3. contractpack.cue in the working directory
//  4. CONTRACTPACK_* environment variables, e.g. CONTRACTPACK_ROOT or
//     CONTRACTPACK_METADATA_VERSION
//
// A file passed with --config replaces steps 2 and 3. Every file is
// validated against the embedded config_schema.cue before it is merged.
package config
