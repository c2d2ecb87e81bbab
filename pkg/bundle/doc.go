// SPDX-License-Identifier: MPL-2.0

// Package bundle builds and installs contract package archives.
//
// An archive is a ZIP file named "<name>-<version>.zip" with a single
// top-level directory of the same base name. That directory holds the
// manifest as contractpack.toml and every data file at its path relative to
// the parent of the contracts root:
//
//	openzeppelin-contracts-5.1.0/
//	  contractpack.toml
//	  contracts/Ownable.sol
//	  contracts/token/ERC20.sol
package bundle
