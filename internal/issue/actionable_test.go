// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestActionableError_Error(t *testing.T) {
	t.Parallel()

	err := NewErrorContext().
		WithOperation("install packages").
		WithResource("cowsay").
		Wrap(errors.New("registry unreachable")).
		Build()

	want := "failed to install packages: cowsay: registry unreachable"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestActionableError_Unwrap(t *testing.T) {
	t.Parallel()

	sentinel := errors.New("root cause")
	err := NewErrorContext().
		WithOperation("load configuration").
		Wrap(fmt.Errorf("reading file: %w", sentinel)).
		BuildError()

	if !errors.Is(err, sentinel) {
		t.Error("wrapped sentinel not reachable via errors.Is")
	}
}

func TestActionableError_Format(t *testing.T) {
	t.Parallel()

	err := NewErrorContext().
		WithOperation("locate npm").
		WithSuggestion("Install Node.js").
		WithSuggestion("Pass --npm explicitly").
		Wrap(fmt.Errorf("lookup: %w", errors.New("not found"))).
		Build()

	terse := err.Format(false)
	if !strings.Contains(terse, "• Install Node.js") {
		t.Errorf("Format(false) missing suggestion:\n%s", terse)
	}
	if strings.Contains(terse, "Error chain:") {
		t.Error("Format(false) must not include the error chain")
	}

	verbose := err.Format(true)
	if !strings.Contains(verbose, "Error chain:") {
		t.Error("Format(true) must include the error chain")
	}
	if !strings.Contains(verbose, "2. not found") {
		t.Errorf("Format(true) chain is incomplete:\n%s", verbose)
	}
}

func TestErrorContext_BuildRequiresOperation(t *testing.T) {
	t.Parallel()

	if got := NewErrorContext().WithResource("x").Build(); got != nil {
		t.Errorf("Build() without operation = %v, want nil", got)
	}
	if got := NewErrorContext().BuildError(); got != nil {
		t.Errorf("BuildError() without operation = %v, want nil", got)
	}
}

func TestWrapWithOperation(t *testing.T) {
	t.Parallel()

	if got := WrapWithOperation(nil, "anything"); got != nil {
		t.Errorf("WrapWithOperation(nil) = %v, want nil", got)
	}

	cause := errors.New("boom")
	ae := WrapWithOperation(cause, "resolve command")
	if ae.Operation != "resolve command" || !errors.Is(ae, cause) {
		t.Errorf("WrapWithOperation() = %+v, want operation and cause set", ae)
	}
}
