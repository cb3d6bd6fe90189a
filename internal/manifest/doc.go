// SPDX-License-Identifier: MPL-2.0

// Package manifest loads npm package descriptors (package.json) and selects
// the executable entry a package directory points at.
package manifest
