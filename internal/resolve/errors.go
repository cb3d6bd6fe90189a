// SPDX-License-Identifier: MPL-2.0

package resolve

import (
	"errors"
	"fmt"

	"runx-cli/pkg/types"
)

// ErrCommandNotFound is the sentinel error wrapped by CommandNotFoundError.
var ErrCommandNotFound = errors.New("command not found")

// CommandNotFoundError is returned when a command name cannot be resolved
// to anything runnable. InstallDisabled records whether the caller had
// explicitly forbidden installation, which decides the exit code: 127 when
// install was off (the shell convention), 1 otherwise.
type CommandNotFoundError struct {
	Name            string
	InstallDisabled bool
}

// Error implements the error interface.
func (e *CommandNotFoundError) Error() string {
	return fmt.Sprintf("command not found: %s", e.Name)
}

// Unwrap returns ErrCommandNotFound for errors.Is() compatibility.
func (e *CommandNotFoundError) Unwrap() error { return ErrCommandNotFound }

// ExitCode returns the exit status this failure maps to.
func (e *CommandNotFoundError) ExitCode() types.ExitCode {
	if e.InstallDisabled {
		return types.ExitCommandNotFound
	}
	return types.ExitFailure
}
