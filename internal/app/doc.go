// SPDX-License-Identifier: MPL-2.0

// Package app orchestrates one runx invocation: the concurrent existence
// check, the optional on-demand provisioning, and the execution hand-off.
package app
