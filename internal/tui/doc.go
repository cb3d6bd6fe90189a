// SPDX-License-Identifier: MPL-2.0

// Package tui holds the small interactive surface runx has: the install
// confirmation prompt.
package tui
