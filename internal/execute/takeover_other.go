// SPDX-License-Identifier: MPL-2.0

//go:build !unix

package execute

import "errors"

// Process takeover has no equivalent on this platform; the engine degrades
// to spawning a child and forwarding its exit code. This is an intentional
// behavioral difference, not a bug.
const takeoverSupported = false

func takeover(argv0 string, argv, env []string) error {
	return errors.ErrUnsupported
}
