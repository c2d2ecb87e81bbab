// SPDX-License-Identifier: MPL-2.0

// Package collect walks a contracts directory and groups every file under
// the directory that directly contains it.
//
// The walk is driven by an explicit work queue over a Lister, so the same
// collector runs against the host file system (OSLister) or any afero.Fs
// (FsLister). Entries are visited in name order, which makes the result
// stable for an unchanged tree:
//
//	files, err := collect.Collect("contracts")
//	// files["contracts/token"] == []string{"contracts/token/ERC20.sol", "contracts/token/ERC721.sol"}
//
// A root that does not exist, is not a directory, or cannot be read yields
// an empty result. A read failure below the root aborts the walk.
package collect
