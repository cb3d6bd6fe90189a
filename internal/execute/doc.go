// SPDX-License-Identifier: MPL-2.0

// Package execute hands control to the resolved target: either by
// replacing the current process image with the node runtime (avoiding a
// second runtime startup for interpreter scripts) or by spawning a child
// and translating its outcome into the caller's exit status.
package execute
