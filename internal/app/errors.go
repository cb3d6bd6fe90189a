// SPDX-License-Identifier: MPL-2.0

package app

import (
	"errors"

	"runx-cli/internal/npm"
	"runx-cli/internal/resolve"
	"runx-cli/pkg/types"
)

var (
	// ErrUsage is the sentinel error wrapped by UsageError.
	ErrUsage = errors.New("usage error")

	// ErrUserDeclined is returned when the install confirmation prompt
	// was answered with no. Surfaced as a terse notice, never a stack.
	ErrUserDeclined = errors.New("installation declined")
)

// UsageError marks an invalid invocation: missing command/package or an
// invalid flag combination.
type UsageError struct {
	Msg string
}

// Error implements the error interface.
func (e *UsageError) Error() string { return e.Msg }

// Unwrap returns ErrUsage for errors.Is() compatibility.
func (e *UsageError) Unwrap() error { return ErrUsage }

// ExitCodeFor maps an invocation error to the caller's exit status:
// command-not-found carries its own 1-vs-127 decision, install failures
// propagate the installer's code, and everything else is the generic 1.
func ExitCodeFor(err error) types.ExitCode {
	if err == nil {
		return types.ExitSuccess
	}

	var notFound *resolve.CommandNotFoundError
	if errors.As(err, &notFound) {
		return notFound.ExitCode()
	}

	var install *npm.InstallError
	if errors.As(err, &install) {
		return install.Code
	}

	return types.ExitFailure
}
