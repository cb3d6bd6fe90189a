// SPDX-License-Identifier: MPL-2.0

// Package provision materializes requested packages into a process-scoped
// ephemeral prefix under the npm cache, guaranteeing the prefix is removed
// on every exit path. It is the only component that mutates PATH.
package provision
