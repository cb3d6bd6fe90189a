// SPDX-License-Identifier: MPL-2.0

package execute

import (
	"os"
	"runtime"
)

// systemShell determines the shell used for call-mode command strings and
// the flag that makes it run a command string.
func systemShell() (shell, commandFlag string) {
	if runtime.GOOS == "windows" {
		if comspec := os.Getenv("COMSPEC"); comspec != "" {
			return comspec, "/C"
		}
		return "cmd.exe", "/C"
	}
	if sh := os.Getenv("SHELL"); sh != "" {
		return sh, "-c"
	}
	return "sh", "-c"
}
