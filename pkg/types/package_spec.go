// SPDX-License-Identifier: MPL-2.0

package types

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidPackageSpec is the sentinel error wrapped by InvalidPackageSpecError.
var ErrInvalidPackageSpec = errors.New("invalid package spec")

type (
	// PackageSpec is an npm-style package specifier: a package name with an
	// optional version range after a non-leading "@" (e.g. "cowsay",
	// "cowsay@1.5.0", "@scope/pkg@latest"). A valid spec must be non-empty
	// and contain no whitespace.
	PackageSpec string

	// InvalidPackageSpecError is returned when a PackageSpec value is empty
	// or contains whitespace.
	InvalidPackageSpecError struct {
		Value PackageSpec
	}
)

// String returns the string representation of the PackageSpec.
func (s PackageSpec) String() string { return string(s) }

// IsValid returns whether the PackageSpec is valid.
func (s PackageSpec) IsValid() (bool, []error) {
	if s == "" || strings.ContainsAny(string(s), " \t\r\n") {
		return false, []error{&InvalidPackageSpecError{Value: s}}
	}
	return true, nil
}

// Name returns the package name with any trailing version range stripped.
// The leading "@" of a scoped package is not treated as a range separator.
func (s PackageSpec) Name() string {
	spec := string(s)
	if i := strings.LastIndex(spec, "@"); i > 0 {
		return spec[:i]
	}
	return spec
}

// BinaryName returns the command name a package conventionally installs:
// the package name itself, or the trailing path segment for scoped packages
// ("@scope/pkg" installs "pkg").
func (s PackageSpec) BinaryName() string {
	name := s.Name()
	if i := strings.LastIndex(name, "/"); i >= 0 {
		return name[i+1:]
	}
	return name
}

// Error implements the error interface for InvalidPackageSpecError.
func (e *InvalidPackageSpecError) Error() string {
	return fmt.Sprintf("invalid package spec %q: must be non-empty without whitespace", e.Value)
}

// Unwrap returns ErrInvalidPackageSpec for errors.Is() compatibility.
func (e *InvalidPackageSpecError) Unwrap() error { return ErrInvalidPackageSpec }
