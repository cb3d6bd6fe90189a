// SPDX-License-Identifier: MPL-2.0

// Package resolve turns a candidate path or bare command name into a
// concrete executable target: an interpreter script, an opaque binary, a
// package directory entry, or "not found". Resolution is read-only and
// never mutates the search path, so it is safe to call speculatively.
package resolve
