// SPDX-License-Identifier: MPL-2.0

// Package npm invokes the external npm binary: config queries, installs
// into a caller-supplied prefix, and run-script environment dumps. It knows
// nothing about ephemeral prefixes or resolution; it only shells out.
package npm
