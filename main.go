// SPDX-License-Identifier: MPL-2.0

package main

import cmd "runx-cli/cmd/runx"

func main() {
	cmd.Execute()
}
