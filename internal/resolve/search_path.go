// SPDX-License-Identifier: MPL-2.0

package resolve

import (
	"errors"
	"fmt"
	"os/exec"

	"runx-cli/pkg/types"
)

// FindOnSearchPath looks up a bare command name using the platform's
// search-path semantics. It distinguishes three outcomes: found (the
// path), absent (CommandNotFoundError, carrying whether installation was
// explicitly disabled), and any other lookup failure (propagated verbatim).
func FindOnSearchPath(name string, installDisabled bool) (types.FilesystemPath, error) {
	path, err := exec.LookPath(name)
	if err == nil {
		return types.FilesystemPath(path), nil
	}
	if errors.Is(err, exec.ErrNotFound) {
		return "", &CommandNotFoundError{Name: name, InstallDisabled: installDisabled}
	}
	return "", fmt.Errorf("looking up %s on PATH: %w", name, err)
}
