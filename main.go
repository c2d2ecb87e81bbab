// SPDX-License-Identifier: MPL-2.0

// Command contractpack packages smart-contract sources for distribution.
package main

import cmd "github.com/contractpack/contractpack/cmd/contractpack"

func main() {
	cmd.Execute()
}
