// SPDX-License-Identifier: MPL-2.0

// Package issue provides user-facing error context (ActionableError) and a
// catalog of rendered help pages for the failures a runx invocation can hit.
package issue
