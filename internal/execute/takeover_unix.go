// SPDX-License-Identifier: MPL-2.0

//go:build unix

package execute

import "golang.org/x/sys/unix"

// takeoverSupported reports whether this platform can replace the current
// process image in place.
const takeoverSupported = true

// takeover replaces the current process with argv0. It only returns on
// failure; on success no code after this call executes.
func takeover(argv0 string, argv, env []string) error {
	return unix.Exec(argv0, argv, env)
}
